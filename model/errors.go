package model

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by input validation. Placement infeasibility is
// never an error; it is reported per unit in PackingResult.Unpacked.
var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrEmptyCartonList   = errors.New("carton list is empty")
	ErrUnknownStrategy   = errors.New("unknown strategy")
)

// DimensionError reports a rejected spec field. It unwraps to
// ErrInvalidDimensions so callers can match by kind.
type DimensionError struct {
	Kind  string  // "carton" or "truck"
	ID    string  // Spec ID, may be empty
	Field string  // Struct field that failed
	Value float64 // Offending value
	Rule  string  // Human-readable constraint, e.g. "must be greater than 0"
}

func (e *DimensionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s %s (got %v)", e.Kind, e.ID, e.Field, e.Rule, e.Value)
	}
	return fmt.Sprintf("%s: %s %s (got %v)", e.Kind, e.Field, e.Rule, e.Value)
}

func (e *DimensionError) Unwrap() error { return ErrInvalidDimensions }
