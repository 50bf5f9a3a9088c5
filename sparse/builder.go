// SPDX-License-Identifier: MIT

// Package sparse - triplet Builder.
//
// Purpose:
//   - Accumulate (row, col, value) triplets in any order, then finalize them
//     into an immutable *Matrix in a single pass.
//   - Enforce index and numeric policy at the Add site, so Build never fails
//     on data that Add accepted.
//
// Determinism:
//   - Build uses a stable sort on (row, col); duplicates are summed in
//     insertion order, so identical input sequences produce bit-identical
//     matrices.
//
// AI-Hints:
//   - Use WithSymmetric when the source stores one triangle only (Matrix Market
//     "symmetric" files, FEM assemblers that emit i ≤ j).
//   - Reuse a Builder after Build: it is reset and ready for a new matrix of
//     the same dimension and options.

package sparse

import (
	"math"
	"sort"
)

// triplet is a single (i, j, v) contribution awaiting assembly.
type triplet struct {
	i, j int
	v    float64
}

// Option configures a Builder.
type Option func(*builderOptions)

// builderOptions holds the effective Builder configuration.
type builderOptions struct {
	symmetric    bool // mirror off-diagonal triplets into the other triangle
	dropZeros    bool // drop entries whose assembled value is exactly 0
	capacityHint int  // expected number of triplets (pre-allocation only)
}

// WithSymmetric mirrors each off-diagonal triplet (i,j,v) into (j,i,v).
func WithSymmetric() Option {
	return func(o *builderOptions) { o.symmetric = true }
}

// WithDropZeros removes entries whose assembled value is exactly zero.
// Off by default: FEM patterns are kept even when contributions cancel.
func WithDropZeros() Option {
	return func(o *builderOptions) { o.dropZeros = true }
}

// WithCapacity pre-allocates room for n triplets. Negative values panic.
func WithCapacity(n int) Option {
	if n < 0 {
		panic("sparse: WithCapacity: capacity must be non-negative")
	}

	return func(o *builderOptions) { o.capacityHint = n }
}

// Builder accumulates triplets for an n×n matrix.
// The zero value is not usable; construct with NewBuilder.
type Builder struct {
	n    int
	opts builderOptions
	data []triplet
}

// NewBuilder returns a Builder for an n×n matrix.
//
// Errors:
//   - ErrMalformedInput when n <= 0.
func NewBuilder(n int, opts ...Option) (*Builder, error) {
	if n <= 0 {
		return nil, sparseErrorf(opBuilderBuild, ErrMalformedInput)
	}
	var o builderOptions
	for _, fn := range opts {
		fn(&o)
	}

	return &Builder{
		n:    n,
		opts: o,
		data: make([]triplet, 0, o.capacityHint),
	}, nil
}

// N returns the dimension of the matrix under construction.
func (b *Builder) N() int { return b.n }

// Len returns the number of triplets recorded so far, mirrored ones included.
func (b *Builder) Len() int { return len(b.data) }

// Add records the contribution v at (i, j).
//
// Errors:
//   - ErrMalformedInput when i or j is outside [0,n) or v is NaN/±Inf.
//
// Complexity: amortized O(1).
func (b *Builder) Add(i, j int, v float64) error {
	if i < 0 || i >= b.n || j < 0 || j >= b.n {
		return indexErrorf(opBuilderAdd, i, j, ErrMalformedInput)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return indexErrorf(opBuilderAdd, i, j, ErrMalformedInput)
	}
	b.data = append(b.data, triplet{i: i, j: j, v: v})
	if b.opts.symmetric && i != j {
		b.data = append(b.data, triplet{i: j, j: i, v: v})
	}

	return nil
}

// Build finalizes the recorded triplets into an immutable *Matrix and resets
// the Builder.
//
// Implementation:
//   - Stage 1: stable sort triplets by (row, col).
//   - Stage 2: merge runs of equal (row, col) by summation.
//   - Stage 3: slice the merged stream into per-row entry lists.
//
// Complexity: O(t log t) for t recorded triplets.
func (b *Builder) Build() (*Matrix, error) {
	data := b.data
	b.data = make([]triplet, 0, b.opts.capacityHint)

	sort.SliceStable(data, func(x, y int) bool {
		if data[x].i != data[y].i {
			return data[x].i < data[y].i
		}

		return data[x].j < data[y].j
	})

	entries := make([]Entry, 0, len(data))
	rowPtr := make([]int, b.n+1)
	for k := 0; k < len(data); {
		t := data[k]
		sum := t.v
		k++
		for k < len(data) && data[k].i == t.i && data[k].j == t.j {
			sum += data[k].v // duplicates are reconciled by addition
			k++
		}
		if b.opts.dropZeros && sum == 0 {
			continue
		}
		entries = append(entries, Entry{Col: t.j, Val: sum})
		rowPtr[t.i+1]++
	}
	for i := 0; i < b.n; i++ {
		rowPtr[i+1] += rowPtr[i]
	}

	rows := make([][]Entry, b.n)
	for i := 0; i < b.n; i++ {
		// Full slice expression keeps rows from aliasing their neighbours on append.
		rows[i] = entries[rowPtr[i]:rowPtr[i+1]:rowPtr[i+1]]
	}

	return newMatrix(b.n, rows, len(entries), b.opts.symmetric), nil
}

// FromTriplets assembles an n×n matrix from parallel index/value slices.
// When symmetric is true, every off-diagonal triplet (i,j,v) also contributes
// (j,i,v); coordinates that end up populated twice are summed.
//
// Errors:
//   - ErrMalformedInput on mismatched lengths, n <= 0, indices outside [0,n),
//     or non-finite values.
//
// Complexity: O(t log t).
func FromTriplets(rows, cols []int, vals []float64, n int, symmetric bool) (*Matrix, error) {
	if len(rows) != len(cols) || len(rows) != len(vals) {
		return nil, sparseErrorf(opFromTriplets, ErrMalformedInput)
	}
	opts := []Option{WithCapacity(len(vals))}
	if symmetric {
		opts = append(opts, WithSymmetric(), WithCapacity(2*len(vals)))
	}
	b, err := NewBuilder(n, opts...)
	if err != nil {
		return nil, sparseErrorf(opFromTriplets, err)
	}
	for k := range vals {
		if err = b.Add(rows[k], cols[k], vals[k]); err != nil {
			return nil, sparseErrorf(opFromTriplets, err)
		}
	}

	return b.Build()
}
