// SPDX-License-Identifier: MIT
// Package sparse: sentinel error set.
// All constructors and kernels return these sentinels (possibly wrapped with
// an operation tag); callers match them with errors.Is. Nothing here panics
// on user input.

package sparse

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned when triplet data is inconsistent: mismatched
	// slice lengths, indices outside [0,n), non-positive n, or non-finite values.
	ErrMalformedInput = errors.New("sparse: malformed input")

	// ErrDimensionMismatch indicates incompatible operand sizes, e.g. a vector
	// whose length differs from the matrix dimension, or A.N != B.N.
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")

	// ErrOutOfRange indicates an (i,j) lookup outside the matrix bounds.
	ErrOutOfRange = errors.New("sparse: index out of range")

	// ErrNilMatrix indicates a nil *Matrix was passed where one is required.
	ErrNilMatrix = errors.New("sparse: nil matrix")
)

// Operation tags for uniform error wrapping.
const (
	opFromTriplets      = "FromTriplets"
	opBuilderAdd        = "Builder.Add"
	opBuilderBuild      = "Builder.Build"
	opMatVec            = "MatVec"
	opLinearCombination = "LinearCombination"
	opAt                = "At"
	opRow               = "Row"
)

// sparseErrorf wraps err with an operation tag, preserving it for errors.Is.
// Callers must only pass a non-nil err.
func sparseErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// indexErrorf wraps err with an operation tag and the offending coordinates.
func indexErrorf(tag string, i, j int, err error) error {
	return fmt.Errorf("%s(%d,%d): %w", tag, i, j, err)
}
