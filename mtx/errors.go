package mtx

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/rdiff/sparse"
)

var (
	// ErrMalformedInput reports an unreadable banner, size line or entry.
	// It wraps sparse.ErrMalformedInput, so either sentinel matches.
	ErrMalformedInput = fmt.Errorf("mtx: %w", sparse.ErrMalformedInput)

	// ErrUnsupported reports a valid banner describing a matrix kind this
	// package does not handle (array storage, complex, hermitian, skew-symmetric).
	ErrUnsupported = errors.New("mtx: unsupported matrix kind")
)
