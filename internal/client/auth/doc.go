// Package auth is the client side of the external authentication service.
//
// GoTrueClient is a stateless HTTP client for the service's REST API.
// SessionContext layers the signed-in user's session on top of it and is
// the object the rest of the application receives; nothing reaches for a
// global session.
//
// Errors: ErrUnauthorized (401/403), ErrUnavailable (transport failure or
// 5xx), ErrNoSession, ErrInvalidToken, and *APIError for any other
// rejection. Match them with errors.Is / errors.As.
package auth

import (
	"context"
)

// Provider is the set of auth operations the application consumes.
type Provider interface {
	GetSession(ctx context.Context) (*Session, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*User, error)
	GetUser(ctx context.Context) (*User, error)
	UpdateUser(ctx context.Context, attrs UserAttributes) (*User, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

var _ Provider = (*SessionContext)(nil)
