// SPDX-License-Identifier: MIT

// Package sparse - kernels: matrix-vector product and linear combination.
//
// Determinism & Policy:
//   - Fixed row-major loop order; each y_i accumulates in ascending column order.
//   - Operands are never mutated; results are freshly allocated unless the
//     caller supplies dst (MatVecTo).
//
// AI-Hints:
//   - Inside iterative solvers prefer MatVecTo with a reused dst buffer: zero
//     allocations per iteration.

package sparse

import "math"

// MatVec returns y = A·x.
//
// Errors:
//   - ErrDimensionMismatch if len(x) != N().
//
// Complexity: O(n + nnz) time, O(n) space for y.
func (m *Matrix) MatVec(x []float64) ([]float64, error) {
	y := make([]float64, m.n)
	if err := m.MatVecTo(y, x); err != nil {
		return nil, err
	}

	return y, nil
}

// MatVecTo writes y = A·x into dst. dst and x must not alias.
//
// Errors:
//   - ErrDimensionMismatch if len(x) != N() or len(dst) != N().
//
// Complexity: O(n + nnz) time, no allocations after the first ToCompressed.
func (m *Matrix) MatVecTo(dst, x []float64) error {
	if len(x) != m.n || len(dst) != m.n {
		return sparseErrorf(opMatVec, ErrDimensionMismatch)
	}
	c := m.ToCompressed()
	for i := 0; i < c.N; i++ {
		var sum float64
		for _, e := range c.Entries[c.RowPtr[i]:c.RowPtr[i+1]] {
			sum += e.Val * x[e.Col]
		}
		dst[i] = sum
	}

	return nil
}

// LinearCombination returns A + c·B as a new matrix over the union of both
// sparsity patterns. Entries present in only one operand keep their scaled
// value; cancellations to exactly zero are kept as explicit entries.
//
// Errors:
//   - ErrNilMatrix if a or b is nil.
//   - ErrDimensionMismatch if a.N() != b.N().
//   - ErrMalformedInput if c is NaN or ±Inf.
//
// Complexity: O(n + nnzA + nnzB), two-pointer merge per row.
func LinearCombination(a, b *Matrix, c float64) (*Matrix, error) {
	if a == nil || b == nil {
		return nil, sparseErrorf(opLinearCombination, ErrNilMatrix)
	}
	if a.n != b.n {
		return nil, sparseErrorf(opLinearCombination, ErrDimensionMismatch)
	}
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return nil, sparseErrorf(opLinearCombination, ErrMalformedInput)
	}

	entries := make([]Entry, 0, a.nnz+b.nnz)
	rowPtr := make([]int, a.n+1)
	for i := 0; i < a.n; i++ {
		ra, rb := a.rows[i], b.rows[i]
		p, q := 0, 0
		for p < len(ra) || q < len(rb) {
			switch {
			case q == len(rb) || (p < len(ra) && ra[p].Col < rb[q].Col):
				entries = append(entries, ra[p])
				p++
			case p == len(ra) || rb[q].Col < ra[p].Col:
				entries = append(entries, Entry{Col: rb[q].Col, Val: c * rb[q].Val})
				q++
			default: // same column
				entries = append(entries, Entry{Col: ra[p].Col, Val: ra[p].Val + c*rb[q].Val})
				p++
				q++
			}
		}
		rowPtr[i+1] = len(entries)
	}

	rows := make([][]Entry, a.n)
	for i := 0; i < a.n; i++ {
		rows[i] = entries[rowPtr[i]:rowPtr[i+1]:rowPtr[i+1]]
	}

	return newMatrix(a.n, rows, len(entries), a.symmetric && b.symmetric), nil
}

// Stats summarizes the structure of a matrix for diagnostics.
type Stats struct {
	N         int     // dimension
	NNZ       int     // stored entries
	Density   float64 // NNZ / N²
	MaxRowNNZ int     // widest row
	EmptyRows int     // rows with no stored entries
	MinDiag   float64 // smallest diagonal value
	MaxDiag   float64 // largest diagonal value
	ZeroDiag  int     // rows with a zero (or absent) diagonal
	FrobNorm  float64 // sqrt(Σ A_ij²)
	Symmetric bool    // numerically symmetric within SymmetryEps
}

// SymmetryEps is the tolerance Stats uses for its symmetry check.
const SymmetryEps = 1e-12

// Stats computes a structural summary of m.
// Complexity: O(n + nnz log k).
func (m *Matrix) Stats() Stats {
	s := Stats{
		N:       m.n,
		NNZ:     m.nnz,
		Density: float64(m.nnz) / (float64(m.n) * float64(m.n)),
		MinDiag: math.Inf(1),
		MaxDiag: math.Inf(-1),
	}
	var sq float64
	for i, row := range m.rows {
		if len(row) > s.MaxRowNNZ {
			s.MaxRowNNZ = len(row)
		}
		if len(row) == 0 {
			s.EmptyRows++
		}
		for _, e := range row {
			sq += e.Val * e.Val
		}
		d, _ := m.At(i, i)
		if d == 0 {
			s.ZeroDiag++
		}
		s.MinDiag = math.Min(s.MinDiag, d)
		s.MaxDiag = math.Max(s.MaxDiag, d)
	}
	s.FrobNorm = math.Sqrt(sq)
	s.Symmetric = m.IsSymmetric(SymmetryEps)

	return s
}
