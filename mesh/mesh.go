// Package mesh holds the node coordinates of a 2D finite-element mesh and the
// zone predicates used to seed initial concentration fields.
//
// Node order is significant: node i of the mesh is row/column i of the
// stiffness and damping matrices and component i of every field vector.
// A Mesh is immutable once built.
package mesh

import "math"

// Point is a node position in the plane.
type Point struct {
	X, Y float64
}

// Mesh is an ordered, immutable list of node coordinates.
type Mesh struct {
	nodes []Point
}

// New copies pts into a new Mesh.
// Returns ErrEmptyMesh for no points, ErrMalformedInput for non-finite coordinates.
func New(pts []Point) (*Mesh, error) {
	if len(pts) == 0 {
		return nil, ErrEmptyMesh
	}
	for _, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			return nil, ErrMalformedInput
		}
	}
	nodes := make([]Point, len(pts))
	copy(nodes, pts)

	return &Mesh{nodes: nodes}, nil
}

// Len returns the number of nodes.
func (m *Mesh) Len() int { return len(m.nodes) }

// At returns the position of node i. It panics if i is out of range, like a slice index.
func (m *Mesh) At(i int) Point { return m.nodes[i] }

// Points returns a copy of all node positions.
func (m *Mesh) Points() []Point {
	out := make([]Point, len(m.nodes))
	copy(out, m.nodes)

	return out
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max Point) {
	min = Point{X: math.Inf(1), Y: math.Inf(1)}
	max = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range m.nodes {
		min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
		max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
	}

	return min, max
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
