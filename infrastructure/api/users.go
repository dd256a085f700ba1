package api

import (
	"context"
	"fmt"

	"blogclient/domain/model"
	"blogclient/infrastructure/transport"
)

// UserService talks to the /api/usuarios endpoints.
type UserService struct {
	client *transport.Client
}

// NewUserService creates a UserService.
func NewUserService(client *transport.Client) *UserService {
	return &UserService{client: client}
}

// Get reads an account by id.
func (s *UserService) Get(ctx context.Context, id int) (model.User, error) {
	var user model.User
	err := s.client.Get(ctx, fmt.Sprintf("/api/usuarios/%d", id), &user)
	return user, err
}

// Update replaces the account's name and email.
func (s *UserService) Update(ctx context.Context, id int, name, email string) (model.User, error) {
	body := map[string]string{"nome": name, "email": email}

	// The server wraps the updated record in {"usuario": ...}; accept a
	// bare record too.
	var resp struct {
		Usuario *model.User `json:"usuario"`
		ID      int         `json:"id"`
		Name    string      `json:"nome"`
		Email   string      `json:"email"`
	}
	if err := s.client.Put(ctx, fmt.Sprintf("/api/usuarios/%d", id), body, &resp); err != nil {
		return model.User{}, err
	}

	if resp.Usuario != nil {
		return *resp.Usuario, nil
	}
	if resp.ID != 0 {
		return model.User{ID: resp.ID, Name: resp.Name, Email: resp.Email}, nil
	}
	// Empty body: trust the request we just made.
	return model.User{ID: id, Name: name, Email: email}, nil
}

// Delete removes the account.
func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/usuarios/%d", id), nil)
}
