// SPDX-License-Identifier: MIT

package reaction

import "time"

// Snapshot is the state emitted to observers after every completed step.
// N and P are fresh copies, shared by every observer of the same step:
// read them, do not mutate them.
type Snapshot struct {
	Step        int           // 1-based index of the completed step
	SimTime     float64       // Step·dt
	Elapsed     time.Duration // wall time since the first step started
	N, P        []float64     // fields after the step
	Delta       float64       // ‖N − N_prev‖₂; NaN on the first step
	IterationsN int           // CG iterations of the N solve
	IterationsP int           // CG iterations of the P solve
	State       State         // state after the step
}

// Observer receives a Snapshot after every Step. Returning an error aborts
// the run; the stepper moves to Failed.
type Observer interface {
	Observe(Snapshot) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot) error

// Observe calls f(s).
func (f ObserverFunc) Observe(s Snapshot) error { return f(s) }
