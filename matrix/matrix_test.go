// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/rdiff/matrix"
)

// randomSPD returns Bᵀ·B + n·I for a random B, always SPD and safe for LU
// without pivoting.
func randomSPD(rng *rand.Rand, n int) [][]float64 {
	b := make([][]float64, n)
	for i := range b {
		b[i] = make([]float64, n)
		for j := range b[i] {
			b[i][j] = rng.NormFloat64()
		}
	}
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
		for j := range a[i] {
			for k := 0; k < n; k++ {
				a[i][j] += b[k][i] * b[k][j]
			}
		}
		a[i][i] += float64(n)
	}

	return a
}

func flatten(rows [][]float64) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r...)
	}

	return out
}

func TestNewDense_AccessorsAndErrors(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	r, c := m.Shape()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)

	require.NoError(t, m.Set(1, 2, 4.5))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)

	cl := m.Clone()
	require.NoError(t, cl.Set(1, 2, 0))
	v, _ = m.At(1, 2)
	assert.Equal(t, 4.5, v, "clone is independent")
	assert.Equal(t, "[0, 0, 0]\n[0, 0, 4.5]\n", m.String())
}

func TestFromRows(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, m.ToRows())

	_, err = matrix.FromRows(nil)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.FromRows([][]float64{{math.NaN()}})
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestMatVec(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, 2, 0}, {0, 1, -1}})
	require.NoError(t, err)
	y, err := matrix.MatVec(m, []float64{1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, -1}, y)

	_, err = matrix.MatVec(m, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.MatVec(nil, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestLU_ReconstructsInput(t *testing.T) {
	rows := [][]float64{{4, 3, 0}, {6, 3, 1}, {0, 2, 5}}
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	L, U, err := matrix.LU(m)
	require.NoError(t, err)

	var got mat.Dense
	got.Mul(mat.NewDense(3, 3, flatten(L.ToRows())), mat.NewDense(3, 3, flatten(U.ToRows())))
	assert.True(t, mat.EqualApprox(&got, mat.NewDense(3, 3, flatten(rows)), 1e-12))
	for i := 0; i < 3; i++ {
		d, _ := L.At(i, i)
		assert.Equal(t, 1.0, d, "L has a unit diagonal")
	}
}

func TestSolveAndInverse_MatchGonum(t *testing.T) {
	for _, seed := range []int64{2, 9, 77} {
		rng := rand.New(rand.NewSource(seed))
		n := 3 + rng.Intn(8)
		rows := randomSPD(rng, n)
		m, err := matrix.FromRows(rows)
		require.NoError(t, err)
		ref := mat.NewDense(n, n, flatten(rows))

		b := make([]float64, n)
		for i := range b {
			b[i] = rng.Float64()
		}
		x, err := matrix.Solve(m, b)
		require.NoError(t, err)
		var want mat.VecDense
		require.NoError(t, want.SolveVec(ref, mat.NewVecDense(n, b)))
		for i := range x {
			assert.InDelta(t, want.AtVec(i), x[i], 1e-10, "seed=%d i=%d", seed, i)
		}

		inv, err := matrix.Inverse(m)
		require.NoError(t, err)
		var wantInv mat.Dense
		require.NoError(t, wantInv.Inverse(ref))
		assert.True(t, mat.EqualApprox(&wantInv, mat.NewDense(n, n, flatten(inv.ToRows())), 1e-10), "seed=%d", seed)
	}
}

func TestLU_SingularAndShapeErrors(t *testing.T) {
	z, err := matrix.NewDense(2, 2)
	require.NoError(t, err)
	_, _, err = matrix.LU(z)
	require.ErrorIs(t, err, matrix.ErrSingular)
	_, err = matrix.Inverse(z)
	require.ErrorIs(t, err, matrix.ErrSingular)

	r, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = matrix.Solve(r, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	id, err := matrix.NewIdentity(2)
	require.NoError(t, err)
	_, err = matrix.Solve(id, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestValidateSymmetric(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, 2}, {2.001, 1}})
	require.NoError(t, err)
	require.ErrorIs(t, matrix.ValidateSymmetric(m, 1e-6), matrix.ErrAsymmetry)
	require.NoError(t, matrix.ValidateSymmetric(m, 1e-2))
	require.NoError(t, matrix.ValidateSymmetric(m, -1e-2))
	require.ErrorIs(t, matrix.ValidateSymmetric(m, math.NaN()), matrix.ErrNaNInf)
	require.ErrorIs(t, matrix.ValidateSymmetric(nil, 0), matrix.ErrNilMatrix)

	r, err := matrix.NewDense(1, 2)
	require.NoError(t, err)
	require.ErrorIs(t, matrix.ValidateSymmetric(r, 0), matrix.ErrNonSquare)
}
