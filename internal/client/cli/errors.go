package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/users"
)

// userMessage turns a command error into the single line shown at the
// prompt.
func userMessage(err error) string {
	var apiErr *auth.APIError

	switch {
	case errors.Is(err, users.ErrCreateFailed):
		return users.ErrCreateFailed.Error() + ": " + causeMessage(err)
	case errors.Is(err, auth.ErrNoSession):
		return "not signed in, use 'login' first"
	case errors.Is(err, auth.ErrUnauthorized):
		return "invalid credentials or expired session"
	case errors.Is(err, auth.ErrUnavailable):
		return "the auth service is unreachable, try again later"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}

func causeMessage(err error) string {
	var apiErr *auth.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, auth.ErrUnavailable):
		return "the auth service is unreachable"
	default:
		return "sign-up was refused"
	}
}
