package auth

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("auth service unavailable")
	ErrNoSession    = errors.New("no active session")
	ErrInvalidToken = errors.New("invalid token")
)

// APIError is an error response from the auth service that does not map to
// one of the sentinels above.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth service error: status %d", e.Status)
	}
	return fmt.Sprintf("auth service error: %s (status %d)", e.Message, e.Status)
}
