package entities

import (
	"errors"
	"fmt"
)

// Error categories. Wrapped errors keep the category reachable through errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("storage error")
	ErrInconsistentState = errors.New("inconsistent state")
)

// NewValidationError builds an error in the ErrValidation category
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError builds an error in the ErrNotFound category
func NewNotFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// NewStorageError wraps a backend failure in the ErrStorage category
func NewStorageError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStorage, op, err)
}

// NewInconsistentStateError builds an error in the ErrInconsistentState category
func NewInconsistentStateError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistentState, fmt.Sprintf(format, args...))
}
