package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why scoring a measurement failed.
type ErrorKind string

const (
	// ErrKindMissingField means a parameter was absent from the input.
	ErrKindMissingField ErrorKind = "missing_field"
	// ErrKindInvalidValue means a parameter was not a finite number.
	ErrKindInvalidValue ErrorKind = "invalid_value"
)

// ScoringError aborts scoring for a single measurement. Nothing is recorded
// when it is returned.
type ScoringError struct {
	Kind      ErrorKind
	Parameter Parameter
	Value     float64 // set for ErrKindInvalidValue
}

func (e *ScoringError) Error() string {
	switch e.Kind {
	case ErrKindMissingField:
		return fmt.Sprintf("scoring: missing field %q", string(e.Parameter))
	case ErrKindInvalidValue:
		return fmt.Sprintf("scoring: invalid value %v for %q", e.Value, string(e.Parameter))
	default:
		return fmt.Sprintf("scoring: %s for %q", e.Kind, string(e.Parameter))
	}
}

// AsScoringError unwraps err to a *ScoringError if it is one.
func AsScoringError(err error) (*ScoringError, bool) {
	var se *ScoringError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
