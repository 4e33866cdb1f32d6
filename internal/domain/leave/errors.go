package leave

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("leave request not found")

	// ErrInvalidState means the request's state rules out the attempted
	// action: it left the pending state before the transition landed, or
	// someone other than its owner tried to withdraw it.
	ErrInvalidState = errors.New("request state conflict")

	ErrForbidden = errors.New("forbidden")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
