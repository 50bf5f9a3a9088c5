// SPDX-License-Identifier: MIT

package reaction

// State is the lifecycle state of a Stepper.
type State int

const (
	// Uninitialized is the zero value; only Initialize leaves it.
	Uninitialized State = iota
	// Initialized means fields are seeded and no step has run yet.
	Initialized
	// Running means at least one step completed without reaching a terminal state.
	Running
	// Converged means ‖N − N_prev‖₂ dropped below the convergence tolerance.
	Converged
	// MaxIterationsReached means the step budget ran out before convergence.
	MaxIterationsReached
	// Failed means a solve or an observer failed; fields hold the last good step.
	Failed
)

var stateNames = [...]string{
	Uninitialized:        "uninitialized",
	Initialized:          "initialized",
	Running:              "running",
	Converged:            "converged",
	MaxIterationsReached: "max-iterations-reached",
	Failed:               "failed",
}

// String returns a stable, lower-case name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Terminal reports whether no further Step is allowed.
func (s State) Terminal() bool {
	return s == Converged || s == MaxIterationsReached || s == Failed
}
