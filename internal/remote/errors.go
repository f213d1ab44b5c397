package remote

import (
	"errors"
	"fmt"
)

// NetworkError wraps transport failures and retryable server errors (5xx).
// Rows being pushed stay pending and are retried on the next sync cycle.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError is the terminal 404 outcome: the server no longer has the
// row. Pushing an update or delete against it converts the local row to
// deleted instead of retrying forever.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found on server", e.Entity, e.ID)
}

// ValidationError is the terminal 422 outcome: the server rejected the
// payload. The local row stays pending so the work is not silently lost.
type ValidationError struct {
	Entity  string
	ID      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("server rejected %s %s: %s", e.Entity, e.ID, e.Message)
}

// IsNetwork reports whether err (or any error in its chain) is a
// NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsNotFound reports whether err (or any error in its chain) is a
// NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
