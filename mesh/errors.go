package mesh

import "errors"

var (
	// ErrEmptyMesh indicates a mesh with no nodes.
	ErrEmptyMesh = errors.New("mesh: mesh must have at least one node")
	// ErrMalformedInput indicates an unparsable coordinate line or a non-finite coordinate.
	ErrMalformedInput = errors.New("mesh: malformed input")
	// ErrLengthMismatch indicates a field vector whose length differs from the node count.
	ErrLengthMismatch = errors.New("mesh: vector length does not match node count")
	// ErrNilZone indicates a nil Zone was passed to Fill.
	ErrNilZone = errors.New("mesh: zone is nil")
)
