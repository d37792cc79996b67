package service

import "errors"

// Error kinds. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error carries a message safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error   { return &Error{Kind: ErrValidation, Message: msg} }
func notFoundError(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func unauthorizedError(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }
func forbiddenError(msg string) error    { return &Error{Kind: ErrForbidden, Message: msg} }
