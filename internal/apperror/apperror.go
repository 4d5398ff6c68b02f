// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; the HTTP layer translates them to
// status codes (400/401/403/404/409) in one place. Nothing below the
// handlers knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// AppError carries a sentinel (for errors.Is checks) plus a human-readable
// message safe to return to clients.
type AppError struct {
	Err     error  // sentinel from the vars above
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that the target of an operation does not exist.
// HTTP handlers map this to 404.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// ValidationFailed reports missing or malformed input. Mapped to 400.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a duplicate on a unique field. Mapped to 409.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized reports a missing, malformed, or expired credential.
// Mapped to 401. Also used for failed logins: the message deliberately does
// not distinguish "no such email" from "wrong password".
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden reports a valid credential with an insufficient role.
// Mapped to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
