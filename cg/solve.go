// SPDX-License-Identifier: MIT

// Package cg - Conjugate Gradient kernel.
//
// Purpose:
//   - Solve A·x = b in place, warm-starting from the caller's x.
//   - Surface singular curvature and non-convergence as errors, never as NaNs
//     or silently truncated iterates.
//
// Determinism:
//   - Fixed operation order per iteration (MatVec → dot → two axpys → dot).
//     Identical inputs produce bit-identical outputs.
//
// AI-Hints:
//   - Reuse one *Solver across timesteps: its work buffers are recycled when
//     the dimension does not change.
//   - A warm start close to the solution can converge in zero iterations;
//     Result.Iterations == 0 is a success, not an error.

package cg

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Operator is the minimal linear-operator contract CG needs.
// *sparse.Matrix satisfies it.
type Operator interface {
	// Dim returns n for an n×n operator.
	Dim() int
	// MatVecTo writes dst = A·x. It must not retain or mutate x.
	MatVecTo(dst, x []float64) error
}

// Result describes a successful solve.
type Result struct {
	Iterations int     // CG iterations performed (0 when the guess already converged)
	Residual   float64 // final absolute residual norm ‖b − A·x‖
}

// DefaultMaxIterationsFactor scales the matrix dimension into the default cap.
// Exact-arithmetic CG terminates in n steps; the slack absorbs round-off.
const DefaultMaxIterationsFactor = 10

// curvatureFloor is the smallest |pᵀAp| accepted as a valid denominator
// (the smallest normal float64). Anything below is treated as singular.
const curvatureFloor = 0x1p-1022

// DefaultMaxIterations returns the iteration cap used when none is configured.
func DefaultMaxIterations(n int) int {
	if n < 1 {
		n = 1
	}

	return DefaultMaxIterationsFactor * n
}

// Option configures a Solver.
type Option func(*Solver)

// WithTolerance sets the absolute residual tolerance.
// Panics on non-finite or non-positive tol (programmer error).
func WithTolerance(tol float64) Option {
	if !validTolerance(tol) {
		panic("cg: WithTolerance: tol must be finite and > 0")
	}

	return func(s *Solver) { s.tol = tol }
}

// WithMaxIterations sets the iteration cap. Zero or negative selects
// DefaultMaxIterations(n) for each system.
func WithMaxIterations(k int) Option {
	return func(s *Solver) { s.maxIter = k }
}

// DefaultTolerance is the residual tolerance used when none is configured.
const DefaultTolerance = 1e-3

// Solver carries the configuration and reusable work buffers of CG.
// A Solver is not safe for concurrent use; use one per goroutine.
type Solver struct {
	tol     float64
	maxIter int

	r, p, ap []float64 // residual, search direction, A·p
}

// New returns a Solver with DefaultTolerance and the dimension-based cap,
// adjusted by opts.
func New(opts ...Option) *Solver {
	s := &Solver{tol: DefaultTolerance}
	for _, fn := range opts {
		fn(s)
	}

	return s
}

// Tolerance returns the configured absolute residual tolerance.
func (s *Solver) Tolerance() float64 { return s.tol }

// MaxIterations returns the cap that applies to an n×n system.
func (s *Solver) MaxIterations(n int) int {
	if s.maxIter > 0 {
		return s.maxIter
	}

	return DefaultMaxIterations(n)
}

// Solve is a one-shot convenience over Solver.Solve.
// x is the initial guess on entry and the solution on successful return.
func Solve(a Operator, b, x []float64, tol float64, maxIter int) (Result, error) {
	if !validTolerance(tol) {
		return Result{}, ErrInvalidTolerance
	}
	s := &Solver{tol: tol, maxIter: maxIter}

	return s.Solve(a, b, x)
}

// Solve runs CG on A·x = b, overwriting x with the solution.
//
// Implementation:
//   - Stage 1: r0 = b − A·x0; return immediately if ‖r0‖ < tol; p0 = r0.
//   - Stage 2: α = rᵀr / pᵀAp; x += α·p; r −= α·A·p.
//   - Stage 3: stop when ‖r‖ < tol; else β = r'ᵀr' / rᵀr; p = r' + β·p.
//
// Errors:
//   - ErrDimensionMismatch if len(b) or len(x) differs from a.Dim().
//   - *SingularError (ErrSingularSystem) when |pᵀAp| < curvatureFloor or non-finite.
//   - *ConvergenceError (ErrConvergenceFailure) when the cap is exhausted.
//   - any error returned by a.MatVecTo, unchanged.
//
// Complexity: O(k·(n + nnz)) for k iterations; O(n) extra memory (reused).
func (s *Solver) Solve(a Operator, b, x []float64) (Result, error) {
	n := a.Dim()
	if len(b) != n || len(x) != n {
		return Result{}, ErrDimensionMismatch
	}
	s.ensure(n)
	r, p, ap := s.r, s.p, s.ap

	// r0 = b − A·x0
	if err := a.MatVecTo(ap, x); err != nil {
		return Result{}, err
	}
	floats.SubTo(r, b, ap)
	rr := floats.Dot(r, r)
	if math.Sqrt(rr) < s.tol {
		return Result{Iterations: 0, Residual: math.Sqrt(rr)}, nil
	}
	copy(p, r)

	limit := s.MaxIterations(n)
	for k := 0; k < limit; k++ {
		if err := a.MatVecTo(ap, p); err != nil {
			return Result{}, err
		}
		pAp := floats.Dot(p, ap)
		if math.IsNaN(pAp) || math.IsInf(pAp, 0) || math.Abs(pAp) < curvatureFloor {
			return Result{}, &SingularError{Iteration: k, Curvature: pAp}
		}
		alpha := rr / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		rrNext := floats.Dot(r, r)
		if math.Sqrt(rrNext) < s.tol {
			return Result{Iterations: k + 1, Residual: math.Sqrt(rrNext)}, nil
		}
		beta := rrNext / rr
		floats.AddScaledTo(p, r, beta, p) // p = r + β·p, element-wise so aliasing is safe
		rr = rrNext
	}

	return Result{}, &ConvergenceError{Iterations: limit, Residual: math.Sqrt(rr), Tolerance: s.tol}
}

// ensure (re)allocates the work buffers for dimension n.
func (s *Solver) ensure(n int) {
	if len(s.r) == n {
		return
	}
	s.r = make([]float64, n)
	s.p = make([]float64, n)
	s.ap = make([]float64, n)
}

// validTolerance reports whether tol is finite and strictly positive.
func validTolerance(tol float64) bool {
	return tol > 0 && !math.IsInf(tol, 0) && !math.IsNaN(tol)
}
