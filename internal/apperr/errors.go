// Package apperr holds the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Handlers map these to HTTP status codes.
var (
	// ErrValidation marks missing, malformed or out-of-range input.
	ErrValidation = errors.New("validation error")

	// ErrUnauthenticated marks a missing, invalid or expired session token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden marks an authenticated principal lacking the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks an id that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned for both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrInvalidOrExpiredToken is returned when a password reset token does not match.
	ErrInvalidOrExpiredToken = errors.New("Invalid or expired reset token")

	// ErrWeakPassword is returned for passwords under the minimum length.
	ErrWeakPassword = errors.New("Password must be at least 6 characters")
)

// Error carries a user-facing message on top of a kind sentinel.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// E builds an *Error of the given kind.
func E(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
