// SPDX-License-Identifier: MIT

package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/katalvlaran/rdiff/reaction"
)

// ErrRunFinished is returned by Observe and Finish once Finish has succeeded.
var ErrRunFinished = errors.New("export: run already finished")

// SQLiteOption configures a SQLiteSink.
type SQLiteOption func(*SQLiteSink)

// WithSQLiteEvery records one step row per k steps. k < 1 panics.
func WithSQLiteEvery(k int) SQLiteOption {
	if k < 1 {
		panic("export: WithSQLiteEvery(k) requires k >= 1")
	}

	return func(s *SQLiteSink) { s.every = k }
}

// WithFields also stores every node value of N and P for recorded steps.
func WithFields() SQLiteOption {
	return func(s *SQLiteSink) { s.storeFields = true }
}

// SQLiteSink records one run into a run-history database.
type SQLiteSink struct {
	db          *sql.DB
	ownsDB      bool
	ctx         context.Context
	runID       int64
	every       int
	storeFields bool
	finished    bool
}

// OpenSQLite opens (creating if needed) the database at path, initializes
// the schema and starts a new run. The sink owns the database handle.
func OpenSQLite(ctx context.Context, path string, nodes int, p reaction.Params, opts ...SQLiteOption) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteSink(ctx, db, nodes, p, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true

	return s, nil
}

// NewSQLiteSink starts a new run on an already open database. The caller
// keeps ownership of db. ctx bounds every statement the sink issues.
func NewSQLiteSink(ctx context.Context, db *sql.DB, nodes int, p reaction.Params, opts ...SQLiteOption) (*SQLiteSink, error) {
	if err := InitSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	params, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO runs (started_at, nodes, params) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), nodes, string(params))
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read run id: %w", err)
	}

	s := &SQLiteSink{db: db, ctx: ctx, runID: id, every: 1}
	for _, fn := range opts {
		fn(s)
	}

	return s, nil
}

// RunID returns the id of the run this sink records.
func (s *SQLiteSink) RunID() int64 { return s.runID }

// Observe implements reaction.Observer.
func (s *SQLiteSink) Observe(snap reaction.Snapshot) error {
	if s.finished {
		return ErrRunFinished
	}
	if !due(snap, s.every) {
		return nil
	}

	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(s.ctx, `
		INSERT INTO steps (run_id, step, sim_time, elapsed_ms, delta, cg_n, cg_p, n_norm, p_norm, n_mass, p_mass)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, snap.Step, snap.SimTime, millis(snap.Elapsed), nullFloat(snap.Delta),
		snap.IterationsN, snap.IterationsP,
		floats.Norm(snap.N, 2), floats.Norm(snap.P, 2), floats.Sum(snap.N), floats.Sum(snap.P))
	if err != nil {
		return fmt.Errorf("failed to insert step %d: %w", snap.Step, err)
	}

	if s.storeFields {
		if err := insertFields(s.ctx, tx, s.runID, snap); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertFields(ctx context.Context, tx *sql.Tx, runID int64, snap reaction.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fields (run_id, step, species, node, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare field insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range []struct {
		sp reaction.Species
		v  []float64
	}{{reaction.SpeciesN, snap.N}, {reaction.SpeciesP, snap.P}} {
		for node, v := range f.v {
			if _, err := stmt.ExecContext(ctx, runID, snap.Step, string(f.sp), node, v); err != nil {
				return fmt.Errorf("failed to insert %s field at step %d: %w", f.sp, snap.Step, err)
			}
		}
	}

	return nil
}

// Finish stores the terminal summary of the run.
func (s *SQLiteSink) Finish(o reaction.Outcome) error {
	if s.finished {
		return ErrRunFinished
	}
	_, err := s.db.ExecContext(s.ctx, `
		UPDATE runs SET finished_at = ?, state = ?, steps = ?, sim_time = ?, elapsed_ms = ?, delta = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), o.State.String(), o.Steps, o.SimTime,
		millis(o.Elapsed), nullFloat(o.Delta), s.runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", s.runID, err)
	}
	s.finished = true

	return nil
}

// Close releases the database if the sink opened it.
func (s *SQLiteSink) Close() error {
	if !s.ownsDB {
		return nil
	}
	s.ownsDB = false

	return s.db.Close()
}

// Run is one row of the runs table.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Nodes      int
	Params     reaction.Params
	State      string
	Steps      int
	SimTime    float64
	ElapsedMS  float64
	Delta      float64 // NaN when not recorded
}

// ListRuns returns every recorded run, newest first.
func ListRuns(ctx context.Context, db *sql.DB) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, nodes, params, state, steps, sim_time, elapsed_ms, delta
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
			params   string
			delta    sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Nodes, &params,
			&r.State, &r.Steps, &r.SimTime, &r.ElapsedMS, &delta); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %d: bad started_at: %w", r.ID, err)
		}
		if finished.Valid {
			t, err := time.Parse(time.RFC3339Nano, finished.String)
			if err != nil {
				return nil, fmt.Errorf("run %d: bad finished_at: %w", r.ID, err)
			}
			r.FinishedAt = &t
		}
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("run %d: bad params: %w", r.ID, err)
		}
		r.Delta = math.NaN()
		if delta.Valid {
			r.Delta = delta.Float64
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// LoadField returns the stored field of species sp at step for a run,
// indexed by node. It requires the run to have been recorded WithFields.
func LoadField(ctx context.Context, db *sql.DB, runID int64, step int, sp reaction.Species) ([]float64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT node, value FROM fields
		WHERE run_id = ? AND step = ? AND species = ?
		ORDER BY node`, runID, step, string(sp))
	if err != nil {
		return nil, fmt.Errorf("failed to query field: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var (
			node int
			v    float64
		)
		if err := rows.Scan(&node, &v); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		if node != len(out) {
			return nil, fmt.Errorf("run %d step %d: field %s has a gap at node %d", runID, step, sp, len(out))
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("run %d step %d: no stored %s field: %w", runID, step, sp, sql.ErrNoRows)
	}

	return out, nil
}

func millis(d time.Duration) float64 { return float64(d.Microseconds()) / 1e3 }

// nullFloat maps NaN to SQL NULL.
func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}
