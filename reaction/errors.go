// SPDX-License-Identifier: MIT

package reaction

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates a non-finite or out-of-range parameter.
	ErrInvalidParams = errors.New("reaction: invalid parameters")

	// ErrDimensionMismatch indicates that the mesh, matrices or injected
	// fields disagree on the node count.
	ErrDimensionMismatch = errors.New("reaction: dimension mismatch")

	// ErrNotInitialized is returned by Step on a zero-value Stepper.
	ErrNotInitialized = errors.New("reaction: stepper not initialized")

	// ErrTerminal is returned by Step once the stepper reached a terminal state.
	ErrTerminal = errors.New("reaction: stepper is in a terminal state")

	// ErrObserver wraps a failure reported by an Observer.
	ErrObserver = errors.New("reaction: observer failed")
)

// Species names one of the two simulated fields.
type Species string

const (
	// SpeciesN is the diffusing, growing reactant.
	SpeciesN Species = "N"
	// SpeciesP is the product fed by the N·P consumption term.
	SpeciesP Species = "P"
)

// StepError reports which step and which species' solve failed.
// The underlying error (e.g. cg.ErrSingularSystem) is reachable via errors.Is/As.
type StepError struct {
	Step    int     // 1-based index of the failing step
	Species Species // species whose solve failed
	Err     error   // underlying cause
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("reaction: step %d: solve %s: %v", e.Step, e.Species, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error { return e.Err }

// paramErrorf tags ErrInvalidParams with the offending field.
func paramErrorf(field string, v float64) error {
	return fmt.Errorf("%s=%v: %w", field, v, ErrInvalidParams)
}
