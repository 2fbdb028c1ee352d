package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the server rejected the credentials or
	// the bearer token. The stored token is discarded when this happens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the server asked us to slow down.
	ErrRateLimited = errors.New("rate limited")
)

// APIError carries the server's error payload for non-2xx responses
// that do not map to a sentinel error.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}
