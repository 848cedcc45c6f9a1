package service

import (
	"errors"
	"fmt"
)

// Errors returned by the services. Handlers match them with errors.Is; the
// message of a wrapped ErrValidation is safe to show to the caller.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("no token, authorization denied")
	ErrInvalidToken       = errors.New("token is not valid")
	ErrNotFound           = errors.New("not found")

	// ErrInvalidTaskID is a malformed task id. It is also an ErrNotFound.
	ErrInvalidTaskID = fmt.Errorf("%w: invalid task id", ErrNotFound)
)

// ValidationError carries a caller-facing description of bad input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
