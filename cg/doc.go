// SPDX-License-Identifier: MIT

// Package cg solves A·x = b with the preconditioner-free Conjugate Gradient
// method, for symmetric positive-(semi)definite A.
//
// What & Why:
//
//	The reaction–diffusion stepper solves two implicit systems per timestep
//	with the same operator M = D − dt·S. CG needs only matrix-vector products,
//	so the operator stays in its sparse form and is never factorized.
//
// Stopping rule:
//
//	Iteration stops as soon as the ABSOLUTE residual norm ‖r‖ = ‖b − A·x‖ drops
//	below tol. The tolerance is not rescaled by ‖b‖: callers reusing one
//	tolerance across systems of very different magnitude must account for it.
//
// Failure policy:
//
//	No partial result is ever passed off as a solution:
//	  - a collapsing curvature pᵀAp (zero, subnormal, or non-finite) yields
//	    ErrSingularSystem before any NaN can reach x;
//	  - exhausting the iteration cap yields a *ConvergenceError that matches
//	    ErrConvergenceFailure. x then holds the last iterate for inspection.
//
// Complexity:
//
//	Each iteration costs one MatVec (O(n + nnz)) plus O(n) vector work.
//	Work buffers are allocated once per Solve call.
package cg
