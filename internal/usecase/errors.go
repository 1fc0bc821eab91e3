package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrRejectRatioExceeded   = errors.New("rejected row ratio exceeded")
	ErrIncompleteExtract     = errors.New("one or more entities failed to extract")
)

// TransientFetchError is a retryable upstream failure: network errors,
// timeouts, 429 and 5xx responses.
type TransientFetchError struct {
	Entity  string
	Attempt int
	Err     error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient fetch %s (attempt %d): %v", e.Entity, e.Attempt, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// FatalFetchError aborts one entity: a non-retryable status, an undecodable
// body, a missing required field, or retries exhausted.
type FatalFetchError struct {
	Entity string
	Err    error
}

func (e *FatalFetchError) Error() string {
	return fmt.Sprintf("fatal fetch %s: %v", e.Entity, e.Err)
}

func (e *FatalFetchError) Unwrap() error { return e.Err }

// ValidationError rejects one canonical row.
type ValidationError struct {
	Entity     string
	Key        string
	Field      string
	Constraint string
	Value      any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: field %s violates %s (value=%v)", e.Entity, e.Key, e.Field, e.Constraint, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
