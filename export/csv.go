// SPDX-License-Identifier: MIT

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/katalvlaran/rdiff/reaction"
)

// csvFixedColumns precede the per-node values in every row.
var csvFixedColumns = []string{"step", "sim_time", "elapsed_ms", "species"}

// CSVOption configures a CSVSink.
type CSVOption func(*CSVSink)

// WithCSVEvery records one row per k steps. k < 1 panics.
func WithCSVEvery(k int) CSVOption {
	if k < 1 {
		panic("export: WithCSVEvery(k) requires k >= 1")
	}

	return func(s *CSVSink) { s.every = k }
}

// WithP also writes a P row after every N row.
func WithP() CSVOption {
	return func(s *CSVSink) { s.includeP = true }
}

// CSVSink writes field snapshots as CSV rows. Not safe for concurrent use.
type CSVSink struct {
	w        *csv.Writer
	closer   io.Closer // nil when the caller owns the writer
	every    int
	includeP bool
	width    int // node count fixed by the first row; 0 before it
	row      []string
}

// NewCSVSink writes to w. The caller keeps ownership of w; Close only flushes.
func NewCSVSink(w io.Writer, opts ...CSVOption) *CSVSink {
	s := &CSVSink{w: csv.NewWriter(w), every: 1}
	for _, fn := range opts {
		fn(s)
	}

	return s
}

// CreateCSV creates (or truncates) path and returns a sink owning the file.
func CreateCSV(path string, opts ...CSVOption) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create csv: %w", err)
	}
	s := NewCSVSink(f, opts...)
	s.closer = f

	return s, nil
}

// Observe implements reaction.Observer.
func (s *CSVSink) Observe(snap reaction.Snapshot) error {
	if !due(snap, s.every) {
		return nil
	}
	if s.width == 0 {
		s.width = len(snap.N)
		if err := s.w.Write(csvHeader(s.width)); err != nil {
			return fmt.Errorf("export: csv header: %w", err)
		}
	}
	if len(snap.N) != s.width || (s.includeP && len(snap.P) != s.width) {
		return fmt.Errorf("export: csv: snapshot has %d nodes, header has %d", len(snap.N), s.width)
	}
	if err := s.writeRow(snap, reaction.SpeciesN, snap.N); err != nil {
		return err
	}
	if s.includeP {
		if err := s.writeRow(snap, reaction.SpeciesP, snap.P); err != nil {
			return err
		}
	}
	s.w.Flush()

	return s.w.Error()
}

func (s *CSVSink) writeRow(snap reaction.Snapshot, sp reaction.Species, v []float64) error {
	s.row = append(s.row[:0],
		strconv.Itoa(snap.Step),
		formatFloat(snap.SimTime),
		formatFloat(float64(snap.Elapsed.Microseconds())/1e3),
		string(sp),
	)
	for _, x := range v {
		s.row = append(s.row, formatFloat(x))
	}
	if err := s.w.Write(s.row); err != nil {
		return fmt.Errorf("export: csv step %d: %w", snap.Step, err)
	}

	return nil
}

// Close flushes buffered rows and closes the file if the sink owns one.
func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
	}

	return err
}

func csvHeader(n int) []string {
	h := make([]string, 0, len(csvFixedColumns)+n)
	h = append(h, csvFixedColumns...)
	for i := 0; i < n; i++ {
		h = append(h, "v"+strconv.Itoa(i))
	}

	return h
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// due reports whether snap falls on the decimation grid or ends the run.
func due(snap reaction.Snapshot, every int) bool {
	return every <= 1 || snap.Step%every == 0 || snap.State.Terminal()
}
