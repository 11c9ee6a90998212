package api

import (
	"context"
	"fmt"
	"net/http"

	"fintrack/internal/core"
)

type userRecord struct {
	MongoID string `json:"_id,omitempty"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

func (u userRecord) user() core.User {
	id := u.MongoID
	if id == "" {
		id = u.ID
	}
	return core.User{ID: id, Name: u.Name, Email: u.Email}
}

// AuthResult is what login and register hand back.
type AuthResult struct {
	User  core.User
	Token string
}

type authResponse struct {
	User  userRecord `json:"user"`
	Token string     `json:"token"`
}

type (
	credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	registration struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// ProfileUpdate carries the editable profile fields.
	ProfileUpdate struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
)

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", registration{Name: name, Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return AuthResult{}, fmt.Errorf("authenticate: %w", err)
	}
	if resp.Token == "" {
		return AuthResult{}, fmt.Errorf("authenticate: backend returned no token")
	}
	return AuthResult{User: resp.User.user(), Token: resp.Token}, nil
}

func (c *Client) Me(ctx context.Context) (core.User, error) {
	var u userRecord
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &u); err != nil {
		return core.User{}, fmt.Errorf("get profile: %w", err)
	}
	return u.user(), nil
}

func (c *Client) UpdateMe(ctx context.Context, upd ProfileUpdate) (core.User, error) {
	var u userRecord
	if err := c.do(ctx, http.MethodPut, "/user/me", upd, &u); err != nil {
		return core.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u.user(), nil
}

func (c *Client) DeleteMe(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/user/me", nil, nil); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
