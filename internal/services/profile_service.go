package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"fintrack/internal/api"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
)

// ProfileAPI is the backend's account surface.
type ProfileAPI interface {
	Me(ctx context.Context) (core.User, error)
	UpdateMe(ctx context.Context, upd api.ProfileUpdate) (core.User, error)
	DeleteMe(ctx context.Context) error
}

var (
	ErrMissingName  = errors.New("name is required")
	ErrInvalidEmail = errors.New("a valid email is required")
)

// ProfileService edits the logged-in user's account.
type ProfileService struct {
	sessions *session.Manager
	logger   *applog.Logger
}

func NewProfileService(sessions *session.Manager, logger *applog.Logger) *ProfileService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ProfileService{sessions: sessions, logger: logger.WithComponent(applog.ComponentSession)}
}

// ValidateProfile checks the form before it is sent.
func ValidateProfile(upd api.ProfileUpdate) core.ValidationErrors {
	var errs core.ValidationErrors
	if strings.TrimSpace(upd.Name) == "" {
		errs = errs.Add("name", ErrMissingName)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(upd.Email)); err != nil {
		errs = errs.Add("email", ErrInvalidEmail)
	}
	return errs
}

// Refresh reloads the profile from the backend into the session.
func (s *ProfileService) Refresh(ctx context.Context, client ProfileAPI, st *session.State) (core.User, error) {
	u, err := client.Me(ctx)
	if err != nil {
		return core.User{}, err
	}
	if u != st.User() {
		st.SetUser(u)
		if err := s.sessions.Save(ctx, st); err != nil {
			s.logger.WarnContext(ctx, "Failed to persist refreshed profile", applog.FieldError, err)
		}
	}
	return u, nil
}

// Update sends the new name and email and stores the result in the session.
func (s *ProfileService) Update(ctx context.Context, client ProfileAPI, st *session.State, upd api.ProfileUpdate) (core.User, error) {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Email = strings.TrimSpace(upd.Email)
	if errs := ValidateProfile(upd); len(errs) > 0 {
		return core.User{}, errs
	}

	u, err := client.UpdateMe(ctx, upd)
	if err != nil {
		return core.User{}, err
	}
	st.SetUser(u)
	if err := s.sessions.Save(ctx, st); err != nil {
		return u, fmt.Errorf("persist profile: %w", err)
	}
	s.logger.InfoContext(ctx, "Profile updated", applog.NewFields().WithSession(st.ID(), u.ID).ToSlice()...)
	return u, nil
}

// Delete removes the account and ends the session.
func (s *ProfileService) Delete(ctx context.Context, client ProfileAPI, st *session.State) error {
	if err := client.DeleteMe(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Account deleted", applog.NewFields().WithSession(st.ID(), st.User().ID).ToSlice()...)
	return s.sessions.Destroy(ctx, st.ID())
}
