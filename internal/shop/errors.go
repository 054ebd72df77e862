package shop

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the backend could not locate the resource.
var ErrNotFound = errors.New("shop: not found")

// ErrUnauthorized indicates an authenticated call was rejected, which
// means the stored token is missing, stale, or revoked. Callers should
// drop the session and send the user back to login.
var ErrUnauthorized = errors.New("shop: unauthorized")

// StatusError is returned for non-2xx responses that carry a
// backend-supplied message worth showing to the user.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shop: status %d", e.Code)
	}
	return fmt.Sprintf("shop: status %d: %s", e.Code, e.Message)
}

// UserMessage returns the backend-provided message, or fallback when the
// response body had none.
func UserMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
