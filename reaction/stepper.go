// SPDX-License-Identifier: MIT

// Package reaction - Stepper: the explicit time-stepping state machine.
//
// Purpose:
//   - Own the implicit system matrix M and the fields N, P, N_prev.
//   - Advance one timestep per Step; Run loops until a terminal state.
//
// Determinism:
//   - Fixed sub-step order (solve N, solve P, drain, clamp, grow, consume,
//     convergence). Identical inputs give bit-identical trajectories.
//
// AI-Hints:
//   - The two CG solves write into scratch buffers; N and P are committed only
//     when both succeed, so a Failed stepper still exposes the last good step.
//   - Observers see copies; a Stepper without observers allocates nothing per step
//     beyond what CG needs.

package reaction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/rdiff/cg"
	"github.com/katalvlaran/rdiff/mesh"
	"github.com/katalvlaran/rdiff/sparse"
)

// Option configures a Stepper at Initialize.
type Option func(*Stepper)

// WithObserver appends o to the observers notified after each step.
func WithObserver(o Observer) Option {
	return func(s *Stepper) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithLogger sets the diagnostics logger. Steps log at debug level,
// state transitions at info level. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stepper) {
		if l != nil {
			s.log = l
		}
	}
}

// Outcome summarizes a finished (or interrupted) Run.
type Outcome struct {
	State   State         // state when Run returned
	Steps   int           // total completed steps of the stepper
	SimTime float64       // Steps·dt, i.e. the end of the last completed step
	Elapsed time.Duration // wall time since the first step started
	Delta   float64       // last ‖N − N_prev‖₂ (NaN before the second step)
}

// Stepper advances the coupled N/P system. Construct with Initialize.
type Stepper struct {
	params Params
	mesh   *mesh.Mesh
	damp   *sparse.Matrix
	sys    *sparse.Matrix // M = D − dt·S
	solver *cg.Solver

	n, p, oldN   []float64
	nNext, pNext []float64 // CG solutions before commit
	rhs          []float64 // D·N, D·P scratch

	state   State
	steps   int
	budget  int // step index at which the current Run stops; 0 outside Run
	delta   float64
	started time.Time
	elapsed time.Duration

	observers []Observer
	log       *slog.Logger
}

// Initialize builds M = D − dt·S, seeds N (and P when p.FillP) with
// p.FillValue on every node inside fill, and returns a Stepper in state
// Initialized. A nil fill leaves both fields at zero.
//
// Errors:
//   - ErrInvalidParams for out-of-range parameters.
//   - ErrDimensionMismatch when the mesh and matrix sizes differ.
//   - sparse errors from assembling M.
func Initialize(m *mesh.Mesh, stiffness, damping *sparse.Matrix, p Params, fill mesh.Zone, opts ...Option) (*Stepper, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if m == nil || stiffness == nil || damping == nil {
		return nil, fmt.Errorf("reaction: nil mesh or matrix: %w", ErrDimensionMismatch)
	}
	n := m.Len()
	if stiffness.N() != n || damping.N() != n {
		return nil, fmt.Errorf("reaction: mesh has %d nodes, stiffness %d, damping %d: %w",
			n, stiffness.N(), damping.N(), ErrDimensionMismatch)
	}
	sys, err := sparse.LinearCombination(damping, stiffness, -p.Dt)
	if err != nil {
		return nil, fmt.Errorf("reaction: assemble system matrix: %w", err)
	}
	sys.ToCompressed() // pay the CSR conversion once, up front

	s := &Stepper{
		params: p,
		mesh:   m,
		damp:   damping,
		sys:    sys,
		solver: cg.New(cg.WithTolerance(p.Epsilon), cg.WithMaxIterations(p.CGMaxIterations)),
		n:      make([]float64, n),
		p:      make([]float64, n),
		nNext:  make([]float64, n),
		pNext:  make([]float64, n),
		rhs:    make([]float64, n),
		delta:  math.NaN(),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(s)
	}

	if fill != nil {
		painted, err := mesh.Fill(s.n, m, fill, p.FillValue)
		if err != nil {
			return nil, fmt.Errorf("reaction: fill N: %w", err)
		}
		if p.FillP {
			copy(s.p, s.n)
		}
		s.log.Info("fields seeded", "nodes", n, "painted", painted, "value", p.FillValue, "fill_p", p.FillP)
	}
	s.oldN = append([]float64(nil), s.n...)
	s.state = Initialized

	return s, nil
}

// State returns the current lifecycle state.
func (s *Stepper) State() State { return s.state }

// Steps returns the number of completed steps.
func (s *Stepper) Steps() int { return s.steps }

// SimTime returns Steps·dt: the time at the end of the last completed step,
// one dt past the 0-based index of that step.
func (s *Stepper) SimTime() float64 { return float64(s.steps) * s.params.Dt }

// Params returns the run configuration.
func (s *Stepper) Params() Params { return s.params }

// Mesh returns the mesh the stepper was initialized with.
func (s *Stepper) Mesh() *mesh.Mesh { return s.mesh }

// SystemMatrix returns M = D − dt·S. It is shared, not copied: do not mutate.
func (s *Stepper) SystemMatrix() *sparse.Matrix { return s.sys }

// N returns a copy of the N field.
func (s *Stepper) N() []float64 { return append([]float64(nil), s.n...) }

// P returns a copy of the P field.
func (s *Stepper) P() []float64 { return append([]float64(nil), s.p...) }

// Delta returns the last convergence measure ‖N − N_prev‖₂ (NaN before it exists).
func (s *Stepper) Delta() float64 { return s.delta }

// SetState overwrites N and P (and resets N_prev to N). Any values are
// accepted, negative ones included; the next Step clamps them.
// Allowed only before a terminal state.
func (s *Stepper) SetState(n, p []float64) error {
	switch {
	case s.state == Uninitialized:
		return ErrNotInitialized
	case s.state.Terminal():
		return fmt.Errorf("%w (%s)", ErrTerminal, s.state)
	case len(n) != len(s.n) || len(p) != len(s.p):
		return fmt.Errorf("reaction: SetState: %w", ErrDimensionMismatch)
	}
	copy(s.n, n)
	copy(s.p, p)
	copy(s.oldN, n)

	return nil
}

// Step advances the system by one timestep.
//
// Errors:
//   - ErrNotInitialized / ErrTerminal when no step is allowed.
//   - *StepError wrapping the CG failure (the stepper moves to Failed).
//   - ErrObserver wrapping an observer failure (the stepper moves to Failed).
func (s *Stepper) Step() error {
	switch {
	case s.state == Uninitialized:
		return ErrNotInitialized
	case s.state.Terminal():
		return fmt.Errorf("%w (%s)", ErrTerminal, s.state)
	}
	if s.steps == 0 {
		s.started = time.Now()
	}
	index := s.steps + 1

	itN, err := s.diffuse(s.n, s.nNext)
	if err != nil {
		return s.fail(&StepError{Step: index, Species: SpeciesN, Err: err})
	}
	itP, err := s.diffuse(s.p, s.pNext)
	if err != nil {
		return s.fail(&StepError{Step: index, Species: SpeciesP, Err: err})
	}
	s.n, s.nNext = s.nNext, s.n
	s.p, s.pNext = s.pNext, s.p

	s.react()
	s.steps = index
	s.elapsed = time.Since(s.started)

	if index > 1 {
		s.delta = floats.Distance(s.n, s.oldN, 2)
	}
	switch {
	case index > 1 && s.delta < s.params.ConvergenceTol:
		s.state = Converged
		s.log.Info("converged", "step", index, "sim_time", s.SimTime(), "delta", s.delta)
	case s.params.MaxSteps > 0 && index >= s.params.MaxSteps,
		s.budget > 0 && index >= s.budget:
		copy(s.oldN, s.n)
		s.state = MaxIterationsReached
		s.log.Info("step budget exhausted", "step", index, "delta", s.delta)
	default:
		copy(s.oldN, s.n)
		s.state = Running
	}
	s.log.Debug("step", "step", index, "cg_n", itN, "cg_p", itP, "delta", s.delta)

	return s.notify(itN, itP)
}

// diffuse solves M·x = D·src into dst, warm-started from src.
func (s *Stepper) diffuse(src, dst []float64) (int, error) {
	if err := s.damp.MatVecTo(s.rhs, src); err != nil {
		return 0, err
	}
	copy(dst, src)
	res, err := s.solver.Solve(s.sys, s.rhs, dst)
	if err != nil {
		return 0, err
	}

	return res.Iterations, nil
}

// react applies drain, clamping, growth of N and the N→P conversion in place.
func (s *Stepper) react() {
	drain, k, dt := s.params.Drain, s.params.Reaction, s.params.Dt
	n, p := s.n, s.p

	floats.AddConst(-drain, n)
	floats.AddConst(-drain, p)
	for i := range n {
		n[i] = math.Max(n[i], 0)
		p[i] = math.Max(p[i], 0)
	}
	for i := range n {
		n[i] += k * n[i] * dt
	}
	for i := range n {
		prog := k * dt * p[i] * n[i]
		p[i] += prog
		n[i] -= prog
	}
}

// notify hands a snapshot to every observer.
func (s *Stepper) notify(itN, itP int) error {
	if len(s.observers) == 0 {
		return nil
	}
	snap := Snapshot{
		Step:        s.steps,
		SimTime:     s.SimTime(),
		Elapsed:     s.elapsed,
		N:           s.N(),
		P:           s.P(),
		Delta:       s.delta,
		IterationsN: itN,
		IterationsP: itP,
		State:       s.state,
	}
	for _, o := range s.observers {
		if err := o.Observe(snap); err != nil {
			return s.fail(fmt.Errorf("%w: step %d: %w", ErrObserver, s.steps, err))
		}
	}

	return nil
}

// fail moves the stepper to Failed and returns err.
func (s *Stepper) fail(err error) error {
	s.state = Failed
	s.log.Error("step failed", "err", err)

	return err
}

// Run calls Step until a terminal state is reached or maxSteps more steps
// have completed. The last step of the budget moves the stepper to
// MaxIterationsReached before observers see it. maxSteps <= 0 falls back to
// Params.MaxSteps. ctx is checked between steps only; on cancellation Run
// returns ctx's error and the stepper stays resumable.
func (s *Stepper) Run(ctx context.Context, maxSteps int) (Outcome, error) {
	if maxSteps <= 0 {
		maxSteps = s.params.MaxSteps
	}
	if maxSteps <= 0 {
		return s.outcome(), fmt.Errorf("reaction: Run needs a positive step budget: %w", ErrInvalidParams)
	}
	s.budget = s.steps + maxSteps
	defer func() { s.budget = 0 }()

	for {
		if err := ctx.Err(); err != nil {
			return s.outcome(), fmt.Errorf("reaction: aborted after step %d: %w", s.steps, err)
		}
		if err := s.Step(); err != nil {
			return s.outcome(), err
		}
		if s.state.Terminal() {
			return s.outcome(), nil
		}
	}
}

func (s *Stepper) outcome() Outcome {
	return Outcome{
		State:   s.state,
		Steps:   s.steps,
		SimTime: s.SimTime(),
		Elapsed: s.elapsed,
		Delta:   s.delta,
	}
}
