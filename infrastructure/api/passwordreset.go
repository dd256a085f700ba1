package api

import (
	"context"

	"blogclient/infrastructure/transport"
	apperrors "blogclient/pkg/errors"
)

// PasswordResetService talks to the OTP reset endpoints.
type PasswordResetService struct {
	client *transport.Client
}

// NewPasswordResetService creates a PasswordResetService.
func NewPasswordResetService(client *transport.Client) *PasswordResetService {
	return &PasswordResetService{client: client}
}

// RequestOTP asks the server to mail a verification code and returns
// the short-lived reset token.
func (s *PasswordResetService) RequestOTP(ctx context.Context, email string) (string, error) {
	body := map[string]string{"email": email}

	var resp struct {
		Token string `json:"token"`
	}
	if err := s.client.Post(ctx, "/api/password/solicitar-reset", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apperrors.NewInternalError("reset response missing token")
	}
	return resp.Token, nil
}

// VerifyOTP checks the 6-digit code against the reset token.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code, token string) error {
	body := map[string]string{
		"email":    email,
		"otp_code": code,
		"token":    token,
	}
	return s.client.Post(ctx, "/api/verificacao/verificar-otp", body, nil)
}

// Reset sets the new password.
func (s *PasswordResetService) Reset(ctx context.Context, email, newPassword, token string) error {
	body := map[string]string{
		"email":              email,
		"nova_senha":         newPassword,
		"senha_confirmation": newPassword,
		"token":              token,
	}
	return s.client.Post(ctx, "/api/password/redefinir", body, nil)
}
