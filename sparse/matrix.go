// SPDX-License-Identifier: MIT

// Package sparse - immutable row-compressed Matrix & its CSR fast form.
//
// Purpose:
//   - Hold an n×n operator as per-row ordered (column, value) lists.
//   - Expose a flat CSR view (RowPtr partitions Entries) for hot kernels.
//
// Invariants:
//   - Columns are unique and strictly ascending within each row.
//   - Every column index lies in [0, n).
//   - CSR.RowPtr has length n+1, RowPtr[0] == 0, RowPtr[n] == nnz, and is
//     monotonically non-decreasing.
//
// AI-Hints:
//   - ToCompressed is cached: call it freely, the second call is O(1) and
//     returns the very same structure.
//   - Share one *Matrix across goroutines for parameter sweeps; it is never
//     mutated after Build.

package sparse

import (
	"math"
	"sort"
	"sync"

	"github.com/katalvlaran/rdiff/matrix"
)

// Entry is one stored (column, value) pair of a row.
type Entry struct {
	Col int     // column index in [0, n)
	Val float64 // finite value
}

// CSR is the compressed-sparse-row layout of a Matrix.
// Row i occupies Entries[RowPtr[i]:RowPtr[i+1]].
type CSR struct {
	N       int     // dimension
	RowPtr  []int   // len N+1, non-decreasing
	Entries []Entry // len nnz, columns ascending within each row
}

// Row returns the entries of row i without copying. Callers must not mutate it.
func (c *CSR) Row(i int) []Entry { return c.Entries[c.RowPtr[i]:c.RowPtr[i+1]] }

// Matrix is an immutable square sparse matrix.
type Matrix struct {
	n         int
	nnz       int
	rows      [][]Entry
	symmetric bool // built with the symmetric hint

	once sync.Once
	csr  *CSR
}

// newMatrix wraps already-validated rows. Rows must satisfy the package invariants.
func newMatrix(n int, rows [][]Entry, nnz int, symmetric bool) *Matrix {
	return &Matrix{n: n, nnz: nnz, rows: rows, symmetric: symmetric}
}

// Identity returns the n×n identity matrix.
//
// Errors:
//   - ErrMalformedInput when n <= 0.
func Identity(n int) (*Matrix, error) {
	return Diag(onesOf(n))
}

// Diag returns a diagonal matrix with d on its main diagonal.
//
// Errors:
//   - ErrMalformedInput when len(d) == 0 or d holds non-finite values.
func Diag(d []float64) (*Matrix, error) {
	b, err := NewBuilder(len(d), WithCapacity(len(d)))
	if err != nil {
		return nil, err
	}
	for i, v := range d {
		if err = b.Add(i, i, v); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

// onesOf returns a slice of n ones (empty for n <= 0).
func onesOf(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}

// N returns the matrix dimension.
func (m *Matrix) N() int { return m.n }

// Dim returns the matrix dimension; it lets *Matrix act as a linear operator.
func (m *Matrix) Dim() int { return m.n }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return m.nnz }

// Symmetric reports whether the matrix was assembled with the symmetric hint.
// It says nothing about numeric symmetry; see IsSymmetric for that.
func (m *Matrix) Symmetric() bool { return m.symmetric }

// At returns A[i][j] (zero when the entry is not stored).
// Complexity: O(log k) for k entries in row i.
func (m *Matrix) At(i, j int) (float64, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, indexErrorf(opAt, i, j, ErrOutOfRange)
	}
	row := m.rows[i]
	k := sort.Search(len(row), func(k int) bool { return row[k].Col >= j })
	if k < len(row) && row[k].Col == j {
		return row[k].Val, nil
	}

	return 0, nil
}

// Row returns a copy of the entries stored in row i.
func (m *Matrix) Row(i int) ([]Entry, error) {
	if i < 0 || i >= m.n {
		return nil, indexErrorf(opRow, i, 0, ErrOutOfRange)
	}
	out := make([]Entry, len(m.rows[i]))
	copy(out, m.rows[i])

	return out, nil
}

// Diagonal returns the main diagonal as a dense vector.
func (m *Matrix) Diagonal() []float64 {
	d := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		d[i], _ = m.At(i, i) // indices are in range by construction
	}

	return d
}

// ToCompressed returns the CSR layout of m.
//
// Behavior highlights:
//   - Built once, under sync.Once; every later call returns the same *CSR.
//   - Safe for concurrent callers.
//
// Complexity: O(n + nnz) on the first call, O(1) afterwards.
func (m *Matrix) ToCompressed() *CSR {
	m.once.Do(func() {
		c := &CSR{
			N:       m.n,
			RowPtr:  make([]int, m.n+1),
			Entries: make([]Entry, 0, m.nnz),
		}
		for i, row := range m.rows {
			c.Entries = append(c.Entries, row...)
			c.RowPtr[i+1] = len(c.Entries)
		}
		m.csr = c
	})

	return m.csr
}

// IsSymmetric reports whether |A[i][j] − A[j][i]| <= eps for every stored entry.
// Complexity: O(nnz log k).
func (m *Matrix) IsSymmetric(eps float64) bool {
	for i, row := range m.rows {
		for _, e := range row {
			if e.Col <= i {
				continue
			}
			t, _ := m.At(e.Col, i)
			if math.Abs(e.Val-t) > eps {
				return false
			}
		}
	}
	// Lower-triangle entries without an upper partner.
	for i, row := range m.rows {
		for _, e := range row {
			if e.Col >= i {
				continue
			}
			t, _ := m.At(e.Col, i)
			if t == 0 && math.Abs(e.Val) > eps {
				return false
			}
		}
	}

	return true
}

// ToDense materializes m as a matrix.Dense. Intended for diagnostics and
// small matrices only: O(n²) memory.
func (m *Matrix) ToDense() *matrix.Dense {
	d, _ := matrix.NewDense(m.n, m.n) // n > 0 for every built Matrix
	for i, row := range m.rows {
		for _, e := range row {
			_ = d.Set(i, e.Col, e.Val)
		}
	}

	return d
}
