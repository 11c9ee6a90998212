package http

import (
	"errors"
	"net/http"

	"fintrack/internal/api"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

type profilePage struct {
	layout
	Name   string
	Email  string
	Errors map[string]string
}

func (s *Server) profilePage(r *http.Request, u core.User) profilePage {
	return profilePage{
		layout: s.layoutFor(r, "Profile", "profile"),
		Name:   u.Name,
		Email:  u.Email,
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	u, err := s.profiles.Refresh(r.Context(), s.backend(st), st)
	if errors.Is(err, api.ErrUnauthorized) {
		s.endSession(w, r)
		return
	}
	page := s.profilePage(r, u)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Profile refresh failed", applog.FieldError, err)
		page = s.profilePage(r, st.User())
		page.Error = "Could not refresh your profile. Showing saved details."
	}
	s.render(w, r, http.StatusOK, "profile", page)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	upd := api.ProfileUpdate{
		Name:  formValue(r.PostForm, "name"),
		Email: formValue(r.PostForm, "email"),
	}

	u, err := s.profiles.Update(r.Context(), s.backend(st), st, upd)
	if verrs, ok := core.AsValidation(err); ok {
		page := s.profilePage(r, core.User{Name: upd.Name, Email: upd.Email})
		page.Errors = verrs.Messages()
		s.render(w, r, http.StatusUnprocessableEntity, "profile", page)
		return
	}
	if err != nil {
		s.writeError(w, r, err, "Failed to update your profile. Please try again.")
		return
	}

	page := s.profilePage(r, u)
	page.Flash = "Profile updated"
	s.render(w, r, http.StatusOK, "profile", page)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	if err := s.profiles.Delete(r.Context(), s.backend(st), st); err != nil {
		s.writeError(w, r, err, "Failed to delete your account. Please try again.")
		return
	}
	s.clearSessionCookie(w)
	s.redirect(w, r, "/login")
}
