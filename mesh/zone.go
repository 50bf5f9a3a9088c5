package mesh

import "math"

// Zone is a closed region of the plane.
type Zone interface {
	// Contains reports whether (x, y) lies inside the zone (boundary included).
	Contains(x, y float64) bool
}

// ZoneFunc adapts a plain predicate to the Zone interface.
type ZoneFunc func(x, y float64) bool

// Contains calls f(x, y).
func (f ZoneFunc) Contains(x, y float64) bool { return f(x, y) }

// RectZone is a closed axis-aligned rectangle [X0,X1]×[Y0,Y1].
type RectZone struct {
	X0, Y0, X1, Y1 float64
}

// NewRectZone builds a rectangle from its corner (x, y) and extent (w, h).
// Negative extents are normalized, so the rectangle is never empty-by-sign.
func NewRectZone(x, y, w, h float64) RectZone {
	return RectZone{
		X0: math.Min(x, x+w), X1: math.Max(x, x+w),
		Y0: math.Min(y, y+h), Y1: math.Max(y, y+h),
	}
}

// Contains reports whether (x, y) lies in the closed rectangle.
func (r RectZone) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// CircleZone is a closed disc of radius R centered at (CX, CY).
type CircleZone struct {
	CX, CY, R float64
}

// Contains reports whether (x, y) lies in the closed disc.
func (c CircleZone) Contains(x, y float64) bool {
	dx, dy := x-c.CX, y-c.CY

	return dx*dx+dy*dy <= c.R*c.R
}

// Union is a zone containing every point of any member zone.
type Union []Zone

// Contains reports whether any member contains (x, y).
func (u Union) Contains(x, y float64) bool {
	for _, z := range u {
		if z.Contains(x, y) {
			return true
		}
	}

	return false
}

// Fill writes v into dst[i] for every node i inside z and returns how many
// nodes were painted. z.Contains is called exactly once per node.
func Fill(dst []float64, m *Mesh, z Zone, v float64) (int, error) {
	if z == nil {
		return 0, ErrNilZone
	}
	if len(dst) != m.Len() {
		return 0, ErrLengthMismatch
	}
	painted := 0
	for i, p := range m.nodes {
		if z.Contains(p.X, p.Y) {
			dst[i] = v
			painted++
		}
	}

	return painted, nil
}
