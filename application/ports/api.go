// Package ports defines the outbound interfaces the application layer
// depends on. The HTTP implementations live in infrastructure/api;
// tests substitute fakes.
package ports

import (
	"context"
	"io"

	"blogclient/domain/model"
)

// ImageUpload is the file part of a post creation.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

// AuthAPI covers the authentication endpoints.
type AuthAPI interface {
	// Login authenticates and returns the token/user pair.
	Login(ctx context.Context, email, password string) (model.Session, error)
	// Logout invalidates the session server-side.
	Logout(ctx context.Context) error
	// Register creates a new account. It does not log in.
	Register(ctx context.Context, name, email, password string) (model.User, error)
}

// UserAPI covers account read/update/delete.
type UserAPI interface {
	Get(ctx context.Context, id int) (model.User, error)
	Update(ctx context.Context, id int, name, email string) (model.User, error)
	Delete(ctx context.Context, id int) error
}

// PostAPI covers the post collection.
type PostAPI interface {
	List(ctx context.Context) ([]model.Post, error)
	Get(ctx context.Context, id int) (model.Post, error)
	// Create submits the multipart payload (title, body, image).
	Create(ctx context.Context, title, body string, image ImageUpload) (model.Post, error)
	Update(ctx context.Context, id int, title, body string) (model.Post, error)
	Delete(ctx context.Context, id int) error
}

// CommentAPI covers the comment collection.
type CommentAPI interface {
	List(ctx context.Context) ([]model.Comment, error)
	ListByPost(ctx context.Context, postID int) ([]model.Comment, error)
	Create(ctx context.Context, postID int, text string) (model.Comment, error)
	Update(ctx context.Context, id int, text string) (model.Comment, error)
	Delete(ctx context.Context, id int) error
}

// FavoriteAPI covers the favorite join records.
type FavoriteAPI interface {
	List(ctx context.Context) ([]model.Favorite, error)
	Create(ctx context.Context, postID int) (model.Favorite, error)
	Delete(ctx context.Context, id int) error
}

// PasswordResetAPI covers the OTP-based reset flow.
type PasswordResetAPI interface {
	// RequestOTP asks the server to mail a code and returns the
	// short-lived reset token.
	RequestOTP(ctx context.Context, email string) (string, error)
	// VerifyOTP checks the 6-digit code against the token.
	VerifyOTP(ctx context.Context, email, code, token string) error
	// Reset sets the new password.
	Reset(ctx context.Context, email, newPassword, token string) error
}

// TokenHolder is the part of the transport the session layer drives:
// installing and clearing the default Authorization header.
type TokenHolder interface {
	SetToken(token string)
	ClearToken()
}

// SessionStorage is the durable token/user store.
type SessionStorage interface {
	Load() (token, userJSON string, err error)
	Save(token, userJSON string) error
	Clear() error
}
