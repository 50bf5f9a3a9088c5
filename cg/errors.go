// SPDX-License-Identifier: MIT

package cg

import (
	"errors"
	"fmt"
)

var (
	// ErrSingularSystem signals that pᵀAp collapsed to zero (or became
	// non-finite) so the step length α is undefined.
	ErrSingularSystem = errors.New("cg: singular system")

	// ErrConvergenceFailure signals that the residual did not drop below the
	// tolerance within the iteration cap.
	ErrConvergenceFailure = errors.New("cg: convergence failure")

	// ErrDimensionMismatch signals that b or x does not match the operator size.
	ErrDimensionMismatch = errors.New("cg: dimension mismatch")

	// ErrInvalidTolerance signals a non-positive or non-finite tolerance.
	ErrInvalidTolerance = errors.New("cg: tolerance must be finite and > 0")
)

// ConvergenceError reports where an unconverged solve stopped.
// It matches ErrConvergenceFailure via errors.Is.
type ConvergenceError struct {
	Iterations int     // iterations performed (== cap)
	Residual   float64 // ‖r‖ at the last iterate
	Tolerance  float64 // requested tolerance
}

// Error implements error.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("cg: no convergence after %d iterations (‖r‖=%.3e, tol=%.3e)",
		e.Iterations, e.Residual, e.Tolerance)
}

// Unwrap exposes ErrConvergenceFailure to errors.Is.
func (e *ConvergenceError) Unwrap() error { return ErrConvergenceFailure }

// SingularError reports the iteration at which the curvature collapsed.
// It matches ErrSingularSystem via errors.Is.
type SingularError struct {
	Iteration int     // zero-based iteration index
	Curvature float64 // offending pᵀAp
}

// Error implements error.
func (e *SingularError) Error() string {
	return fmt.Sprintf("cg: singular system at iteration %d (pᵀAp=%g)", e.Iteration, e.Curvature)
}

// Unwrap exposes ErrSingularSystem to errors.Is.
func (e *SingularError) Unwrap() error { return ErrSingularSystem }
