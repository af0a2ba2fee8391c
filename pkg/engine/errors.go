package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutcomeMissing is reported when a finished unit left no outcome.
var ErrOutcomeMissing = errors.New("unit finished without an outcome")

// DispatchError is returned when the pool rejects a submission. Units
// submitted before the rejection keep running; their results are discarded.
type DispatchError struct {
	RunID     string
	Index     int   // position in the batch
	ID        int64 // item ID that could not be submitted
	Submitted int   // units accepted before the rejection
	Err       error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch item %d (index %d, %d submitted): %v",
		e.ID, e.Index, e.Submitted, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// UnitFailure identifies a unit whose outcome could not be observed.
type UnitFailure struct {
	Index int
	ID    int64
	Err   error
}

// AggregationError is returned when one or more units finished without an
// observable outcome, e.g. because the task panicked.
type AggregationError struct {
	RunID    string
	Failures []UnitFailure
}

// Error implements the error interface.
func (e *AggregationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("item %d: %v", f.ID, f.Err)
	}
	return fmt.Sprintf("aggregate run %s: %d unit(s) unobservable: %s",
		e.RunID, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes every unit error to errors.Is/As.
func (e *AggregationError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
