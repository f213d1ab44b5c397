package store

import (
	"errors"
	"fmt"
)

// ErrNotFound marks operations on an id absent from the local store.
// Callers test with errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError indicates a malformed local mutation. It is returned
// before any row is touched, so the row's status never changes.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Message)
}

// IsValidation reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
