package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/api"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
)

const sessionCookie = "fintrack_session"

type ctxKey int

const stateKey ctxKey = iota

func withState(ctx context.Context, st *session.State) context.Context {
	return context.WithValue(ctx, stateKey, st)
}

func stateFrom(ctx context.Context) (*session.State, bool) {
	st, ok := ctx.Value(stateKey).(*session.State)
	return st, ok && st != nil
}

// mustState is for handlers mounted behind requireSession.
func mustState(r *http.Request) *session.State {
	st, ok := stateFrom(r.Context())
	if !ok {
		panic("http: handler mounted without requireSession")
	}
	return st
}

// backend returns the API client authenticated as the session's user.
func (s *Server) backend(st *session.State) *api.Client {
	return s.api.WithToken(st.Token())
}

func (s *Server) setSessionCookie(w http.ResponseWriter, st *session.State) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    st.ID(),
		Path:     "/",
		Expires:  st.Session().ExpiresAt,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// lookupSession resolves the cookie. Unknown or expired sessions yield nil
// without an error.
func (s *Server) lookupSession(r *http.Request) (*session.State, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	st, err := s.sessions.Get(r.Context(), c.Value)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return nil, nil
	}
	return st, err
}

// requireSession is the route guard: without a live session the request is
// sent to the login page.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := s.lookupSession(r)
		if err != nil {
			applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
				"Session lookup failed", err, applog.ComponentSession, applog.OpLoad,
				applog.NewFields().WithErrorType(applog.ErrorTypeDatabase))
			s.renderError(w, r, http.StatusServiceUnavailable, "Sessions are unavailable. Please try again later.")
			return
		}
		if st == nil {
			s.clearSessionCookie(w)
			s.redirectToLogin(w, r)
			return
		}

		logger := applog.FromContext(r.Context()).With(
			applog.FieldSessionID, st.ID(),
			applog.FieldUserID, st.User().ID)
		ctx := applog.WithContext(withState(r.Context(), st), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// guestOnly keeps logged-in users away from the login and register pages.
func (s *Server) guestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if st, err := s.lookupSession(r); err == nil && st != nil {
			s.redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// endSession drops the session after the backend rejected its token.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if st, ok := stateFrom(r.Context()); ok {
		if err := s.sessions.Destroy(r.Context(), st.ID()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to destroy session",
				applog.FieldError, err)
		}
	}
	s.clearSessionCookie(w)
	s.redirectToLogin(w, r)
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Authentication required"})
		return
	}
	s.redirect(w, r, "/login")
}

// redirect uses HX-Redirect for HTMX requests so the whole page navigates.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(to).Write(w)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
