// SPDX-License-Identifier: MIT

package sparse_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rdiff/sparse"
)

func nan() float64 { return math.NaN() }

func TestLinearCombination_UnionPattern(t *testing.T) {
	// A = [[1,2],[0,3]], B = [[0,0],[4,5]]
	A, err := sparse.FromTriplets([]int{0, 0, 1}, []int{0, 1, 1}, []float64{1, 2, 3}, 2, false)
	require.NoError(t, err)
	B, err := sparse.FromTriplets([]int{1, 1}, []int{0, 1}, []float64{4, 5}, 2, false)
	require.NoError(t, err)

	C, err := sparse.LinearCombination(A, B, -0.5)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {-2, 0.5}}, C.ToDense().ToRows())
	assert.Equal(t, 4, C.NNZ(), "union of patterns")

	// Operands untouched.
	assert.Equal(t, [][]float64{{1, 2}, {0, 3}}, A.ToDense().ToRows())
	assert.Equal(t, [][]float64{{0, 0}, {4, 5}}, B.ToDense().ToRows())
}

func TestLinearCombination_SystemMatrix(t *testing.T) {
	// M = D - dt*S with D = S = I, dt = 0.01 ⇒ 0.99·I.
	I, err := sparse.Identity(4)
	require.NoError(t, err)
	M, err := sparse.LinearCombination(I, I, -0.01)
	require.NoError(t, err)
	for _, d := range M.Diagonal() {
		assert.InDelta(t, 0.99, d, 1e-15)
	}
	assert.Equal(t, 4, M.NNZ())
}

func TestLinearCombination_Errors(t *testing.T) {
	A, err := sparse.Identity(2)
	require.NoError(t, err)
	B, err := sparse.Identity(3)
	require.NoError(t, err)

	_, err = sparse.LinearCombination(A, B, 1)
	require.ErrorIs(t, err, sparse.ErrDimensionMismatch)
	_, err = sparse.LinearCombination(nil, B, 1)
	require.ErrorIs(t, err, sparse.ErrNilMatrix)
	_, err = sparse.LinearCombination(A, A, math.Inf(1))
	require.ErrorIs(t, err, sparse.ErrMalformedInput)
}

func TestStats(t *testing.T) {
	// [[2,1,0],[1,0,0],[0,0,0]]
	A, err := sparse.FromTriplets([]int{0, 0}, []int{0, 1}, []float64{2, 1}, 3, true)
	require.NoError(t, err)
	s := A.Stats()
	assert.Equal(t, 3, s.N)
	assert.Equal(t, 3, s.NNZ)
	assert.InDelta(t, 3.0/9.0, s.Density, 1e-15)
	assert.Equal(t, 2, s.MaxRowNNZ)
	assert.Equal(t, 1, s.EmptyRows)
	assert.Equal(t, 2, s.ZeroDiag)
	assert.Equal(t, 0.0, s.MinDiag)
	assert.Equal(t, 2.0, s.MaxDiag)
	assert.InDelta(t, math.Sqrt(6), s.FrobNorm, 1e-15)
	assert.True(t, s.Symmetric)
}

func TestIsSymmetric_DetectsAsymmetry(t *testing.T) {
	A, err := sparse.FromTriplets([]int{1}, []int{0}, []float64{1}, 2, false)
	require.NoError(t, err)
	assert.False(t, A.IsSymmetric(1e-12))

	B, err := sparse.FromTriplets([]int{0, 1}, []int{1, 0}, []float64{1, 1 + 1e-6}, 2, false)
	require.NoError(t, err)
	assert.False(t, B.IsSymmetric(1e-9))
	assert.True(t, B.IsSymmetric(1e-3))
}
