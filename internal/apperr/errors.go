// Package apperr defines the error taxonomy shared by every service. Callers
// classify failures with errors.Is against the sentinels below.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed input the caller can fix.
	ErrValidation = errors.New("validation failed")

	// ErrPermissionDenied is returned when a role or permission gate fails.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a status move is not a direct
	// successor of the document's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned for state conflicts, e.g. a duplicate role
	// name or an attempt to delete a built-in role.
	ErrConflict = errors.New("conflict")

	// ErrDependency is returned when a collaborator (database, notification
	// transport) is unavailable.
	ErrDependency = errors.New("dependency failure")
)

// Error wraps a sentinel with human-readable context.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a wrapped Error from a sentinel and a formatted message.
func E(sentinel error, format string, args ...interface{}) *Error {
	return &Error{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}

// StatusCode maps an error to the HTTP status the handlers should respond
// with. Unclassified errors map to 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidTransition):
		return 400
	case errors.Is(err, ErrPermissionDenied):
		return 403
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict):
		return 409
	case errors.Is(err, ErrDependency):
		return 503
	default:
		return 500
	}
}
