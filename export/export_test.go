// SPDX-License-Identifier: MIT

package export_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rdiff/export"
	"github.com/katalvlaran/rdiff/mesh"
	"github.com/katalvlaran/rdiff/reaction"
	"github.com/katalvlaran/rdiff/sparse"
)

func snap(step int, state reaction.State, n, p []float64) reaction.Snapshot {
	delta := math.NaN()
	if step > 1 {
		delta = 0.5
	}

	return reaction.Snapshot{
		Step:        step,
		SimTime:     float64(step) * 0.01,
		Elapsed:     time.Duration(step) * time.Millisecond,
		N:           n,
		P:           p,
		Delta:       delta,
		IterationsN: 3,
		IterationsP: 2,
		State:       state,
	}
}

func readCSV(t *testing.T, s string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	require.NoError(t, err)

	return rows
}

func TestCSVSink_RowsAndDecimation(t *testing.T) {
	var buf bytes.Buffer
	sink := export.NewCSVSink(&buf, export.WithCSVEvery(2), export.WithP())

	n, p := []float64{1, 0.5}, []float64{0, 0.25}
	for step := 1; step <= 3; step++ {
		state := reaction.Running
		if step == 3 {
			state = reaction.Converged
		}
		require.NoError(t, sink.Observe(snap(step, state, n, p)))
	}
	require.NoError(t, sink.Close())

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 5, "header + (step 2, step 3 terminal) × (N, P)")
	assert.Equal(t, []string{"step", "sim_time", "elapsed_ms", "species", "v0", "v1"}, rows[0])
	assert.Equal(t, []string{"2", "0.02", "2", "N", "1", "0.5"}, rows[1])
	assert.Equal(t, []string{"2", "0.02", "2", "P", "0", "0.25"}, rows[2])
	assert.Equal(t, "3", rows[3][0], "terminal step is always written")
	assert.Equal(t, "P", rows[4][3])
}

func TestCSVSink_WidthChangeIsAnError(t *testing.T) {
	var buf bytes.Buffer
	sink := export.NewCSVSink(&buf)
	require.NoError(t, sink.Observe(snap(1, reaction.Running, []float64{1, 2}, []float64{0, 0})))
	require.Error(t, sink.Observe(snap(2, reaction.Running, []float64{1}, []float64{0})))
}

func TestCreateCSV_OwnsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.csv")
	sink, err := export.CreateCSV(path)
	require.NoError(t, err)
	require.NoError(t, sink.Observe(snap(1, reaction.Running, []float64{1}, []float64{0})))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "step,sim_time,elapsed_ms,species,v0\n1,0.01,1,N,1\n", string(data))

	_, err = export.CreateCSV(filepath.Join(t.TempDir(), "missing", "n.csv"))
	require.Error(t, err)
}

func TestOptionsPanicOnNonsense(t *testing.T) {
	assert.Panics(t, func() { export.WithCSVEvery(0) })
	assert.Panics(t, func() { export.WithSQLiteEvery(-1) })
	assert.Panics(t, func() { export.NewLogSink(slog.Default(), 0) })
}

func openMemDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	require.NoError(t, export.InitSchema(ctx, db))
	require.NoError(t, export.InitSchema(ctx, db))

	var version int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version))
	assert.Equal(t, export.SchemaVersion, version)
}

func TestSQLiteSink_RecordsRun(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	params := reaction.DefaultParams()

	sink, err := export.NewSQLiteSink(ctx, db, 2, params, export.WithFields())
	require.NoError(t, err)

	require.NoError(t, sink.Observe(snap(1, reaction.Running, []float64{3, 4}, []float64{0, 1})))
	require.NoError(t, sink.Observe(snap(2, reaction.Converged, []float64{3, 4}, []float64{0, 2})))
	require.NoError(t, sink.Finish(reaction.Outcome{
		State: reaction.Converged, Steps: 2, SimTime: 0.02, Elapsed: 2 * time.Millisecond, Delta: 0.5,
	}))
	require.ErrorIs(t, sink.Observe(snap(3, reaction.Running, nil, nil)), export.ErrRunFinished)
	require.ErrorIs(t, sink.Finish(reaction.Outcome{}), export.ErrRunFinished)
	require.NoError(t, sink.Close(), "borrowed db is left open")

	var (
		count       int
		nNorm, mass float64
		delta       sql.NullFloat64
	)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM steps WHERE run_id = ?`, sink.RunID()).Scan(&count))
	assert.Equal(t, 2, count)
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT n_norm, p_mass, delta FROM steps WHERE run_id = ? AND step = 1`, sink.RunID()).Scan(&nNorm, &mass, &delta))
	assert.InDelta(t, 5.0, nNorm, 1e-12)
	assert.InDelta(t, 1.0, mass, 1e-12)
	assert.False(t, delta.Valid, "NaN delta is stored as NULL")

	runs, err := export.ListRuns(ctx, db)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, sink.RunID(), r.ID)
	assert.Equal(t, "converged", r.State)
	assert.Equal(t, 2, r.Steps)
	assert.Equal(t, 2, r.Nodes)
	assert.Equal(t, params, r.Params)
	assert.InDelta(t, 0.5, r.Delta, 0)
	require.NotNil(t, r.FinishedAt)

	field, err := export.LoadField(ctx, db, sink.RunID(), 2, reaction.SpeciesP)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, field)

	_, err = export.LoadField(ctx, db, sink.RunID(), 9, reaction.SpeciesN)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		sink, err := export.OpenSQLite(ctx, path, 1, reaction.DefaultParams(), export.WithSQLiteEvery(10))
		require.NoError(t, err)
		require.NoError(t, sink.Observe(snap(1, reaction.Running, []float64{1}, []float64{0})))
		require.NoError(t, sink.Close())
	}

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	runs, err := export.ListRuns(ctx, db)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Greater(t, runs[0].ID, runs[1].ID, "newest first")
	assert.Equal(t, "running", runs[0].State, "unfinished runs keep the default state")
	assert.Nil(t, runs[0].FinishedAt)
	assert.True(t, math.IsNaN(runs[0].Delta))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM steps`).Scan(&count))
	assert.Equal(t, 0, count, "step 1 is off the every-10 grid")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	sink := export.NewLogSink(l, 5)

	for step := 1; step <= 6; step++ {
		require.NoError(t, sink.Observe(snap(step, reaction.Running, []float64{1}, []float64{0})))
	}
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "msg=progress"))
	assert.Contains(t, out, "step=5")
}

func TestMulti_CallsEveryObserverAndJoinsErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	var calls int
	count := reaction.ObserverFunc(func(reaction.Snapshot) error { calls++; return nil })

	m := export.Multi{
		reaction.ObserverFunc(func(reaction.Snapshot) error { return errA }),
		nil,
		count,
		reaction.ObserverFunc(func(reaction.Snapshot) error { return errB }),
	}
	err := m.Observe(snap(1, reaction.Running, nil, nil))
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	assert.Equal(t, 1, calls)
	require.NoError(t, export.Multi{count}.Observe(snap(1, reaction.Running, nil, nil)))
}

// TestSinks_WithStepper records a real run through every sink at once.
func TestSinks_WithStepper(t *testing.T) {
	m, err := mesh.New([]mesh.Point{{X: 0}, {X: 1}, {X: 2}})
	require.NoError(t, err)
	D, err := sparse.Identity(3)
	require.NoError(t, err)
	S, err := sparse.FromTriplets(nil, nil, nil, 3, true)
	require.NoError(t, err)

	p := reaction.DefaultParams()
	p.Reaction, p.Drain, p.MaxSteps = 0, 0, 5

	var buf bytes.Buffer
	csvSink := export.NewCSVSink(&buf)
	db := openMemDB(t)
	ctx := context.Background()
	dbSink, err := export.NewSQLiteSink(ctx, db, m.Len(), p)
	require.NoError(t, err)

	st, err := reaction.Initialize(m, S, D, p, mesh.NewRectZone(0, -1, 0.5, 2),
		reaction.WithObserver(export.Multi{csvSink, dbSink}))
	require.NoError(t, err)
	out, err := st.Run(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, dbSink.Finish(out))
	require.NoError(t, csvSink.Close())

	assert.Equal(t, reaction.Converged, out.State)
	rows := readCSV(t, buf.String())
	require.Len(t, rows, 1+out.Steps)
	assert.Equal(t, []string{"1", "0", "0"}, rows[len(rows)-1][4:])

	runs, err := export.ListRuns(ctx, db)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, out.Steps, runs[0].Steps)
	assert.Equal(t, "converged", runs[0].State)
}

func TestCSVSink_RunBudgetWritesFinalStep(t *testing.T) {
	pts := make([]mesh.Point, 4)
	for i := range pts {
		pts[i] = mesh.Point{X: float64(i)}
	}
	m, err := mesh.New(pts)
	require.NoError(t, err)
	I, err := sparse.Identity(4)
	require.NoError(t, err)

	p := reaction.DefaultParams()
	require.Equal(t, 1000, p.MaxSteps)

	var buf bytes.Buffer
	var last reaction.Snapshot
	record := reaction.ObserverFunc(func(s reaction.Snapshot) error {
		last = s
		return nil
	})
	st, err := reaction.Initialize(m, I, I, p, mesh.NewRectZone(-0.5, -0.5, 1, 1),
		reaction.WithObserver(export.Multi{export.NewCSVSink(&buf, export.WithCSVEvery(2)), record}))
	require.NoError(t, err)

	out, err := st.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, reaction.MaxIterationsReached, out.State)
	assert.Equal(t, 3, out.Steps)
	assert.Equal(t, 3, last.Step)
	assert.True(t, last.State.Terminal())

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 1+2, "header + steps 2 and 3")
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "3", rows[2][0])
}
