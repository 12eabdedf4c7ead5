package trace

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmpty          = errors.New("trace: no steps")
	ErrFirstMismatch  = errors.New("trace: first step differs from input")
	ErrBookendMarkers = errors.New("trace: first or last step carries markers")
	ErrLengthChanged  = errors.New("trace: array length changed mid-run")
	ErrIndexRange     = errors.New("trace: marker index out of range")
)

// StepError locates a validation failure inside a trace.
type StepError struct {
	Index   int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Index, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }

// Validate checks the structural invariants every generated trace must hold
// for the given input. Algorithm-specific postconditions (such as the last
// array being sorted) are left to the caller.
func Validate(t Trace, input []int) error {
	if len(t) == 0 {
		return ErrEmpty
	}
	if !slices.Equal(t[0].Array, input) {
		return ErrFirstMismatch
	}
	if t.First().HasMarkers() || t.Last().HasMarkers() {
		return ErrBookendMarkers
	}

	n := len(input)
	for i, s := range t {
		if len(s.Array) != n {
			return &StepError{Index: i, Wrapped: ErrLengthChanged}
		}
		if len(s.Comparing) > 2 || (s.Swapped != nil && len(s.Swapped) != 2) {
			return &StepError{Index: i, Wrapped: ErrIndexRange}
		}
		for _, idx := range append(slices.Clone(s.Comparing), s.Swapped...) {
			if idx < 0 || idx >= n {
				return &StepError{Index: i, Wrapped: ErrIndexRange}
			}
		}
	}
	return nil
}

func IsSorted(xs []int) bool {
	return slices.IsSorted(xs)
}
