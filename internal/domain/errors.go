package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every engine. Callers branch with errors.Is.
var (
	// ErrValidation marks malformed user input. The record is left unchanged.
	ErrValidation = errors.New("validation failed")

	// ErrCorruptData marks a loaded or pulled record that fails structural checks.
	ErrCorruptData = errors.New("corrupt data")

	// ErrNotFound marks a missing entity or a missing remote backup.
	ErrNotFound = errors.New("not found")

	// ErrNetwork marks a failed or timed out AI or sync call.
	ErrNetwork = errors.New("network failure")

	// ErrPullDeclined is returned when the user does not confirm a pull.
	ErrPullDeclined = errors.New("pull not confirmed")
)

// ValidationError describes which input field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation so callers need not know the concrete type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is a shorthand for building a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
