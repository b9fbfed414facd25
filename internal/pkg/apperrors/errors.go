// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule rejection from the upstream API (for
// example a requested quantity exceeding stock). It carries a user-facing
// message, is never retried and must never be applied to local state.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a validation error with the given message
func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// TransportError is a connectivity-level failure (timeout, offline, 5xx).
// Callers degrade gracefully: local optimistic state is kept, not rolled back.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransport reports whether err is (or wraps) a TransportError
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}
