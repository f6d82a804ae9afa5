package services

import "errors"

// Error kinds returned by the account service. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// Error is a caller-recoverable failure with a client-safe message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func notFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func unauthorizedError(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func conflictError(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}
