// SPDX-License-Identifier: MIT

// Package reaction advances two coupled concentration fields, N and P, over a
// finite-element mesh with an implicit diffusion solve and explicit reaction
// terms.
//
// Per timestep (Stepper.Step):
//
//  1. Solve M·N' = D·N and M·P' = D·P with CG, warm-started from N and P,
//     where M = D − dt·S is assembled once at Initialize.
//  2. Subtract the drain from every component of N' and P'.
//  3. Clamp both fields to be non-negative.
//  4. Grow N: N += reaction·N·dt (P does not grow).
//  5. Convert N into P: prog = reaction·dt·P·N (pointwise); P += prog; N −= prog.
//  6. From the second step on, stop when ‖N − N_prev‖₂ < ConvergenceTol.
//
// States:
//
//	Uninitialized → Initialized → Running → {Converged | MaxIterationsReached}
//	                                       ↘ Failed (a CG solve or observer failed)
//
// Concurrency:
//
//	A Stepper is single-threaded and exclusively owns M, N, P and the previous
//	N. The input matrices are only read, so several Steppers may share them
//	(e.g. a parameter sweep with one goroutine per Stepper). Run honours
//	context cancellation between steps, never in the middle of a CG solve.
package reaction
