// SPDX-License-Identifier: MIT

package export

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/rdiff/reaction"
)

// LogSink logs a progress line every k steps and on the terminal step.
type LogSink struct {
	log   *slog.Logger
	every int
}

// NewLogSink logs through l every k steps. k < 1 panics.
func NewLogSink(l *slog.Logger, every int) *LogSink {
	if every < 1 {
		panic("export: NewLogSink requires every >= 1")
	}

	return &LogSink{log: l, every: every}
}

// Observe implements reaction.Observer. It never fails.
func (s *LogSink) Observe(snap reaction.Snapshot) error {
	if !due(snap, s.every) {
		return nil
	}
	s.log.Info("progress",
		"step", snap.Step,
		"sim_time", snap.SimTime,
		"elapsed", snap.Elapsed,
		"state", snap.State.String(),
		"delta", snap.Delta,
		"n_mass", floats.Sum(snap.N),
		"p_mass", floats.Sum(snap.P),
		"cg_n", snap.IterationsN,
		"cg_p", snap.IterationsP,
	)

	return nil
}
