// SPDX-License-Identifier: MIT
// Package sparse_test contains unit tests for assembly, compression and kernels.

package sparse_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rdiff/matrix"
	"github.com/katalvlaran/rdiff/sparse"
)

// randomUpperTriplets returns t random triplets confined to the upper triangle
// (i <= j) of an n×n matrix. Deterministic for a given seed.
func randomUpperTriplets(rng *rand.Rand, n, t int) (rows, cols []int, vals []float64) {
	for k := 0; k < t; k++ {
		i, j := rng.Intn(n), rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		rows = append(rows, i)
		cols = append(cols, j)
		vals = append(vals, rng.NormFloat64())
	}

	return rows, cols, vals
}

// denseReference assembles the same triplets into a matrix.Dense, applying
// the mirror-and-add policy by hand.
func denseReference(t *testing.T, n int, rows, cols []int, vals []float64, symmetric bool) *matrix.Dense {
	t.Helper()
	acc := make([][]float64, n)
	for i := range acc {
		acc[i] = make([]float64, n)
	}
	for k := range vals {
		i, j, v := rows[k], cols[k], vals[k]
		acc[i][j] += v
		if symmetric && i != j {
			acc[j][i] += v
		}
	}
	d, err := matrix.FromRows(acc)
	require.NoError(t, err)

	return d
}

func TestMatVec_MatchesDenseReference(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234} {
		rng := rand.New(rand.NewSource(seed))
		n := 5 + rng.Intn(20)
		rows, cols, vals := randomUpperTriplets(rng, n, 3*n)

		A, err := sparse.FromTriplets(rows, cols, vals, n, true)
		require.NoError(t, err)
		ref := denseReference(t, n, rows, cols, vals, true)

		x := make([]float64, n)
		for i := range x {
			x[i] = rng.Float64()*2 - 1
		}
		got, err := A.MatVec(x)
		require.NoError(t, err)

		want, err := matrix.MatVec(ref, x)
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			assert.InDelta(t, want[i], got[i], 1e-12, "seed=%d row=%d", seed, i)
		}
		assert.True(t, A.IsSymmetric(0), "mirrored matrix must be exactly symmetric")
		require.NoError(t, matrix.ValidateSymmetric(A.ToDense(), 0))
	}
}

func TestFromTriplets_SymmetricMirrorReconcilesByAddition(t *testing.T) {
	// (0,1,2) mirrors into (1,0,2); the explicit (1,0,3) mirrors into (0,1,3).
	A, err := sparse.FromTriplets(
		[]int{0, 1, 1},
		[]int{1, 0, 1},
		[]float64{2, 3, 4},
		2, true)
	require.NoError(t, err)

	a01, _ := A.At(0, 1)
	a10, _ := A.At(1, 0)
	a11, _ := A.At(1, 1)
	assert.Equal(t, 5.0, a01)
	assert.Equal(t, 5.0, a10)
	assert.Equal(t, 4.0, a11, "diagonal entries are never mirrored")
	assert.Equal(t, 3, A.NNZ())
	assert.True(t, A.Symmetric())
}

func TestFromTriplets_DuplicatesAreSummed(t *testing.T) {
	A, err := sparse.FromTriplets(
		[]int{0, 0, 0},
		[]int{0, 0, 0},
		[]float64{1, 2, 3.5},
		1, false)
	require.NoError(t, err)
	v, err := A.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 6.5, v)
	assert.Equal(t, 1, A.NNZ())
}

func TestFromTriplets_MalformedInput(t *testing.T) {
	cases := []struct {
		name string
		rows []int
		cols []int
		vals []float64
		n    int
	}{
		{"length mismatch", []int{0, 1}, []int{0}, []float64{1, 2}, 2},
		{"row out of range", []int{2}, []int{0}, []float64{1}, 2},
		{"col negative", []int{0}, []int{-1}, []float64{1}, 2},
		{"non-positive n", []int{}, []int{}, []float64{}, 0},
		{"NaN value", []int{0}, []int{0}, []float64{nan()}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sparse.FromTriplets(tc.rows, tc.cols, tc.vals, tc.n, false)
			require.ErrorIs(t, err, sparse.ErrMalformedInput)
		})
	}
}

func TestToCompressed_InvariantsAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 12
	rows, cols, vals := randomUpperTriplets(rng, n, 40)
	A, err := sparse.FromTriplets(rows, cols, vals, n, true)
	require.NoError(t, err)

	c1 := A.ToCompressed()
	snapshotPtr := append([]int(nil), c1.RowPtr...)
	snapshotEnt := append([]sparse.Entry(nil), c1.Entries...)

	c2 := A.ToCompressed()
	require.Same(t, c1, c2, "second call must return the cached structure")
	require.Equal(t, snapshotPtr, c2.RowPtr)
	require.Equal(t, snapshotEnt, c2.Entries)

	// Rebuilding from the same triplets yields a bit-identical layout.
	B, err := sparse.FromTriplets(rows, cols, vals, n, true)
	require.NoError(t, err)
	require.Equal(t, c1, B.ToCompressed())

	require.Len(t, c1.RowPtr, n+1)
	require.Equal(t, 0, c1.RowPtr[0])
	require.Equal(t, A.NNZ(), c1.RowPtr[n])
	for i := 0; i < n; i++ {
		require.LessOrEqual(t, c1.RowPtr[i], c1.RowPtr[i+1])
		row := c1.Row(i)
		for k, e := range row {
			require.GreaterOrEqual(t, e.Col, 0)
			require.Less(t, e.Col, n)
			if k > 0 {
				require.Less(t, row[k-1].Col, e.Col, "columns ascend strictly")
			}
		}
	}
}

func TestMatVec_DimensionMismatch(t *testing.T) {
	I, err := sparse.Identity(3)
	require.NoError(t, err)
	_, err = I.MatVec([]float64{1, 2})
	require.ErrorIs(t, err, sparse.ErrDimensionMismatch)
	require.ErrorIs(t, I.MatVecTo(make([]float64, 2), []float64{1, 2, 3}), sparse.ErrDimensionMismatch)
}

func TestAt_OutOfRange(t *testing.T) {
	I, err := sparse.Identity(2)
	require.NoError(t, err)
	_, err = I.At(2, 0)
	require.ErrorIs(t, err, sparse.ErrOutOfRange)
	_, err = I.Row(-1)
	require.ErrorIs(t, err, sparse.ErrOutOfRange)
}

func TestBuilder_ResetAfterBuild(t *testing.T) {
	b, err := sparse.NewBuilder(2, sparse.WithDropZeros())
	require.NoError(t, err)
	require.NoError(t, b.Add(0, 0, 1))
	require.NoError(t, b.Add(0, 1, 1))
	require.NoError(t, b.Add(0, 1, -1)) // cancels, dropped
	A, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, A.NNZ())
	assert.Equal(t, 0, b.Len(), "builder is reset after Build")

	require.NoError(t, b.Add(1, 1, 2))
	B, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, B.Diagonal())
	assert.Equal(t, []float64{1, 0}, A.Diagonal(), "earlier matrix is unaffected")

	require.ErrorIs(t, b.Add(2, 0, 1), sparse.ErrMalformedInput)
}
