// SPDX-License-Identifier: MIT

// Package export turns stepper snapshots into durable output.
//
// Every sink implements reaction.Observer and is attached with
// reaction.WithObserver. Sinks are decimated with an "every k steps" rule;
// a snapshot carrying a terminal state is always written so the final field
// is never lost.
//
//   - CSVSink writes one row per species per recorded step:
//     step, sim_time, elapsed_ms, species, v0 .. v{n-1}.
//   - SQLiteSink records run history (parameters, per-step norms and mass,
//     optionally full fields) into a SQLite database.
//   - LogSink emits a progress line through log/slog.
//   - Multi fans one snapshot out to several observers.
package export
