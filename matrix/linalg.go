// SPDX-License-Identifier: MIT
// Package matrix - reference linear-algebra kernels on *Dense.
//
// Purpose:
//   - y = A·x, Doolittle LU, A·x = b via LU, and A⁻¹ for small matrices.
//
// Determinism:
//   - Fixed loop orders, no pivoting: results are reproducible bit for bit.
//
// Notes:
//   - Without pivoting, LU fails with ErrSingular on a zero leading minor even
//     when A is invertible. SPD and diagonally dominant inputs never hit it.

package matrix

// zeroPivot is the sentinel for detecting a zero pivot in LU.
const zeroPivot = 0.0

// MatVec computes y = m·x.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch when len(x) != m.Cols().
// Complexity: O(r*c) time, O(r) for y.
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		var acc float64
		base := i * m.c
		for j, xv := range x {
			if xv != 0 {
				acc += m.data[base+j] * xv
			}
		}
		y[i] = acc
	}

	return y, nil
}

// LU computes the Doolittle factorization A = L·U with unit diagonal on L.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular on a zero pivot.
// Complexity: O(n³) time, O(n²) space.
func LU(m *Dense) (L, U *Dense, err error) {
	if err = ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	n := m.r
	L, _ = NewIdentity(n)
	U, _ = NewDense(n, n)

	var sum float64
	for i := 0; i < n; i++ {
		base := i * n
		for j := i; j < n; j++ {
			sum = 0
			for k := 0; k < i; k++ {
				sum += L.data[base+k] * U.data[k*n+j]
			}
			U.data[base+j] = m.data[base+j] - sum
		}
		pivot := U.data[base+i]
		if pivot == zeroPivot {
			return nil, nil, matrixErrorf(opLU, ErrSingular)
		}
		for j := i + 1; j < n; j++ {
			sum = 0
			for k := 0; k < i; k++ {
				sum += L.data[j*n+k] * U.data[k*n+i]
			}
			L.data[j*n+i] = (m.data[j*n+i] - sum) / pivot
		}
	}

	return L, U, nil
}

// luSolve solves L·U·x = b into x using forward then backward substitution.
// y is scratch of length n.
func luSolve(L, U *Dense, b, x, y []float64) {
	n := L.r
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= L.data[i*n+k] * y[k]
		}
		y[i] = sum
	}
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			sum -= U.data[i*n+k] * x[k]
		}
		x[i] = sum / U.data[i*n+i]
	}
}

// Solve returns x with A·x = b via one LU factorization.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch, ErrSingular.
// Complexity: O(n³).
func Solve(m *Dense, b []float64) ([]float64, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	if err := ValidateVecLen(b, m.r); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	L, U, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	x, y := make([]float64, m.r), make([]float64, m.r)
	luSolve(L, U, b, x, y)

	return x, nil
}

// Inverse returns A⁻¹, solving one unit column at a time against a single LU.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular.
// Complexity: O(n³) time, O(n²) space.
func Inverse(m *Dense) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	L, U, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := m.r
	inv, _ := NewDense(n, n)
	e, x, y := make([]float64, n), make([]float64, n), make([]float64, n)
	for col := 0; col < n; col++ {
		e[col] = 1
		luSolve(L, U, e, x, y)
		e[col] = 0
		for i := 0; i < n; i++ {
			inv.data[i*n+col] = x[i]
		}
	}

	return inv, nil
}
