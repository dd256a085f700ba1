package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common token inspection errors
var (
	ErrExpiredToken   = errors.New("token has expired")
	ErrMalformedToken = errors.New("token is malformed")
)

// TokenInfo holds the claims the client cares about. The client never
// verifies signatures (that is the server's job); it only inspects
// expiry so a stale session is not restored.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Inspect parses a bearer token without verifying its signature and
// reports whether it is still usable. Opaque (non-JWT) tokens are
// accepted as-is: the server remains the authority on their validity.
func Inspect(token string) (*TokenInfo, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		// Not a JWT. Treat as an opaque token with no client-side
		// expiry knowledge.
		return &TokenInfo{}, nil
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		if time.Now().After(exp.Time) {
			return info, ErrExpiredToken
		}
	}

	return info, nil
}

// Usable reports whether a persisted token should be trusted enough to
// hydrate a session from it.
func Usable(token string) bool {
	if token == "" {
		return false
	}
	_, err := Inspect(token)
	return err == nil
}
