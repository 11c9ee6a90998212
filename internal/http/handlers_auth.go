package http

import (
	"errors"
	"net/http"

	"fintrack/internal/api"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

const minPasswordLength = 6

var (
	errEmailRequired    = errors.New("email is required")
	errPasswordRequired = errors.New("password is required")
	errPasswordTooShort = errors.New("password must be at least 6 characters")
	errPasswordMismatch = errors.New("passwords do not match")
)

type authPage struct {
	layout
	Name   string
	Email  string
	Errors map[string]string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", authPage{layout: s.layoutFor(r, "Log in", "login")})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", authPage{layout: s.layoutFor(r, "Create account", "register")})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	page := authPage{
		layout: s.layoutFor(r, "Log in", "login"),
		Email:  formValue(r.PostForm, "email"),
	}
	password := r.PostForm.Get("password")

	var errs core.ValidationErrors
	if page.Email == "" {
		errs = errs.Add("email", errEmailRequired)
	}
	if password == "" {
		errs = errs.Add("password", errPasswordRequired)
	}
	if len(errs) > 0 {
		page.Errors = errs.Messages()
		s.render(w, r, http.StatusUnprocessableEntity, "login", page)
		return
	}

	res, err := s.api.Login(r.Context(), page.Email, password)
	if err != nil {
		s.authFailed(w, r, "login", page, err, "Invalid email or password")
		return
	}
	s.startSession(w, r, res)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	page := authPage{
		layout: s.layoutFor(r, "Create account", "register"),
		Name:   formValue(r.PostForm, "name"),
		Email:  formValue(r.PostForm, "email"),
	}
	password := r.PostForm.Get("password")

	errs := services.ValidateProfile(api.ProfileUpdate{Name: page.Name, Email: page.Email})
	switch {
	case len(password) < minPasswordLength:
		errs = errs.Add("password", errPasswordTooShort)
	case password != r.PostForm.Get("confirm_password"):
		errs = errs.Add("confirm_password", errPasswordMismatch)
	}
	if len(errs) > 0 {
		page.Errors = errs.Messages()
		s.render(w, r, http.StatusUnprocessableEntity, "register", page)
		return
	}

	res, err := s.api.Register(r.Context(), page.Name, page.Email, password)
	if err != nil {
		s.authFailed(w, r, "register", page, err, "Registration failed. Please try again.")
		return
	}
	s.startSession(w, r, res)
}

// authFailed re-renders the form. Backend 4xx answers are the user's fault
// and show the backend's message; anything else is reported as unreachable.
func (s *Server) authFailed(w http.ResponseWriter, r *http.Request, page string, data authPage, err error, fallback string) {
	var apiErr *api.Error
	status := http.StatusBadGateway
	data.Error = "Could not reach the server. Please try again."
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		status = http.StatusUnprocessableEntity
		data.Error = api.UserMessage(err, fallback)
	}
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Authentication failed",
		applog.FieldError, err, applog.FieldOperation, page)
	s.render(w, r, status, page, data)
}

// startSession opens the session, warms both record caches and lands on
// the dashboard. A failed warm-up is retried lazily by the next page.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, res api.AuthResult) {
	ctx := r.Context()
	st, err := s.sessions.Create(ctx, res.User, res.Token)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to create session",
			applog.FieldError, err, applog.FieldOperation, applog.OpLogin)
		s.renderError(w, r, http.StatusInternalServerError, "Could not start your session. Please try again.")
		return
	}
	if err := st.Load(ctx, s.backend(st)); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Initial record load failed",
			applog.FieldError, err, applog.FieldSessionID, st.ID())
	}
	applog.FromContext(ctx).InfoContext(ctx, "User signed in",
		applog.FieldOperation, applog.OpLogin,
		applog.FieldSessionID, st.ID(),
		applog.FieldUserID, res.User.ID)
	s.setSessionCookie(w, st)
	s.redirect(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	if err := s.sessions.Destroy(r.Context(), st.ID()); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to destroy session",
			applog.FieldError, err, applog.FieldOperation, applog.OpLogout)
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "User signed out", applog.FieldOperation, applog.OpLogout)
	s.clearSessionCookie(w)
	s.redirect(w, r, "/login")
}
