// SPDX-License-Identifier: MIT

package reaction

import "math"

// Defaults mirror the reference labyrinth-exploration run.
const (
	DefaultDt             = 1e-2
	DefaultEpsilon        = 1e-3
	DefaultDrain          = 1e-15
	DefaultReaction       = 5.0
	DefaultConvergenceTol = 1e-3
	DefaultMaxSteps       = 1000
	DefaultFillValue      = 1.0
)

// Params is the full numeric configuration of a run.
type Params struct {
	Dt              float64 `json:"dt"`                // timestep size, > 0
	Epsilon         float64 `json:"epsilon"`           // absolute CG residual tolerance, > 0
	CGMaxIterations int     `json:"cg_max_iterations"` // CG cap per solve; <= 0 selects cg.DefaultMaxIterations(n)
	Drain           float64 `json:"drain"`             // per-step decay subtracted from both fields
	Reaction        float64 `json:"reaction"`          // rate constant for growth and consumption
	ConvergenceTol  float64 `json:"convergence_tol"`   // steady-state threshold on ‖N − N_prev‖₂, > 0
	MaxSteps        int     `json:"max_steps"`         // step budget; <= 0 means Run's argument is the only bound
	FillValue       float64 `json:"fill_value"`        // value painted into N inside the fill zone
	FillP           bool    `json:"fill_p"`            // also paint FillValue into P
}

// DefaultParams returns the reference configuration.
func DefaultParams() Params {
	return Params{
		Dt:             DefaultDt,
		Epsilon:        DefaultEpsilon,
		Drain:          DefaultDrain,
		Reaction:       DefaultReaction,
		ConvergenceTol: DefaultConvergenceTol,
		MaxSteps:       DefaultMaxSteps,
		FillValue:      DefaultFillValue,
	}
}

// Validate checks every field against its documented range.
func (p Params) Validate() error {
	switch {
	case !(p.Dt > 0) || math.IsInf(p.Dt, 0):
		return paramErrorf("dt", p.Dt)
	case !(p.Epsilon > 0) || math.IsInf(p.Epsilon, 0):
		return paramErrorf("epsilon", p.Epsilon)
	case !(p.ConvergenceTol > 0) || math.IsInf(p.ConvergenceTol, 0):
		return paramErrorf("convergence_tol", p.ConvergenceTol)
	case !finite(p.Drain):
		return paramErrorf("drain", p.Drain)
	case !finite(p.Reaction):
		return paramErrorf("reaction", p.Reaction)
	case !finite(p.FillValue):
		return paramErrorf("fill_value", p.FillValue)
	}

	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
