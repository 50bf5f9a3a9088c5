// SPDX-License-Identifier: MIT

package export

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current run-history schema version.
const SchemaVersion = 1

// schemaV1 is the initial run-history schema.
const schemaV1 = `
-- One row per simulation run
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    nodes INTEGER NOT NULL,
    params TEXT NOT NULL,           -- JSON encoded reaction.Params
    state TEXT NOT NULL DEFAULT 'running',
    steps INTEGER NOT NULL DEFAULT 0,
    sim_time REAL NOT NULL DEFAULT 0,
    elapsed_ms REAL NOT NULL DEFAULT 0,
    delta REAL                      -- NULL until two steps exist
);

-- Per-step summaries
CREATE TABLE IF NOT EXISTS steps (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step INTEGER NOT NULL,
    sim_time REAL NOT NULL,
    elapsed_ms REAL NOT NULL,
    delta REAL,
    cg_n INTEGER NOT NULL,
    cg_p INTEGER NOT NULL,
    n_norm REAL NOT NULL,
    p_norm REAL NOT NULL,
    n_mass REAL NOT NULL,
    p_mass REAL NOT NULL,
    PRIMARY KEY (run_id, step)
);

-- Full fields, only when requested
CREATE TABLE IF NOT EXISTS fields (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step INTEGER NOT NULL,
    species TEXT NOT NULL CHECK (species IN ('N', 'P')),
    node INTEGER NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (run_id, step, species, node)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// InitSchema creates the run-history tables if they do not exist.
// It is idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}
