// Package api implements the application ports over the HTTP transport.
// Each service is a thin endpoint binding; field-name normalization
// happens in domain/model decoding, so nothing above this layer ever
// sees the wire variants.
package api

import (
	"context"

	"blogclient/domain/model"
	"blogclient/infrastructure/transport"
	apperrors "blogclient/pkg/errors"
)

// AuthService talks to the authentication endpoints.
type AuthService struct {
	client *transport.Client
}

// NewAuthService creates an AuthService.
func NewAuthService(client *transport.Client) *AuthService {
	return &AuthService{client: client}
}

// loginResponse tolerates both spellings of the user key.
type loginResponse struct {
	Token   string      `json:"token"`
	Usuario *model.User `json:"usuario"`
	UserAlt *model.User `json:"user"`
}

// Login authenticates and returns the token/user pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp loginResponse
	if err := s.client.Post(ctx, "/api/login", body, &resp); err != nil {
		return model.Session{}, err
	}

	user := resp.Usuario
	if user == nil {
		user = resp.UserAlt
	}
	if resp.Token == "" || user == nil {
		return model.Session{}, apperrors.NewInternalError("login response missing token or user")
	}

	return model.Session{Token: resp.Token, User: *user}, nil
}

// Logout invalidates the session server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Post(ctx, "/api/logout", nil, nil)
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (model.User, error) {
	body := map[string]string{
		"nome":     name,
		"email":    email,
		"password": password,
	}

	var resp struct {
		Usuario *model.User `json:"usuario"`
		ID      int         `json:"id"`
		Name    string      `json:"nome"`
		Email   string      `json:"email"`
	}
	if err := s.client.Post(ctx, "/api/usuarios", body, &resp); err != nil {
		return model.User{}, err
	}

	if resp.Usuario != nil {
		return *resp.Usuario, nil
	}
	return model.User{ID: resp.ID, Name: resp.Name, Email: resp.Email}, nil
}
