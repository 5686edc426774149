// internal/adapters/backend/errors.go
package backend

import (
	"errors"
	"fmt"
)

// ErrAuthExpired marks failures that require the caller to
// re-authenticate: the refresh token was missing, rejected, or the
// refresh call itself failed. It is distinct from transport errors so
// callers can route to a login flow instead of a retry affordance.
var ErrAuthExpired = errors.New("authentication expired")

// APIError is the normalized error surfaced by every failed backend
// call. Message and ErrorCode come from the response envelope when one
// was available, otherwise from the transport-level failure.
type APIError struct {
	Message   string
	ErrorCode string
	Status    int

	cause error
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("backend: %s (code=%s, status=%d)", e.Message, e.ErrorCode, e.Status)
	}
	if e.Status != 0 {
		return fmt.Sprintf("backend: %s (status=%d)", e.Message, e.Status)
	}
	return fmt.Sprintf("backend: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// IsAuthError reports whether err requires re-authentication.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}

func transportError(err error) *APIError {
	return &APIError{Message: err.Error(), cause: err}
}

func authError(msg string) *APIError {
	return &APIError{Message: msg, Status: 401, cause: ErrAuthExpired}
}
