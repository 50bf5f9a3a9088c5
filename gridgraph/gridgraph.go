package gridgraph

import (
	"fmt"

	"github.com/katalvlaran/rdiff/mesh"
	"github.com/katalvlaran/rdiff/sparse"
)

// NewGridGraph constructs a GridGraph from a non-empty, rectangular 2D slice.
// It deep-copies the input and numbers the land cells row by row.
// Returns ErrEmptyGrid if grid has no rows or no columns,
// ErrNonRectangular if any row length differs.
// Complexity: O(W×H) time and memory.
func NewGridGraph(values [][]int, opts GridOptions) (*GridGraph, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	h, w := len(values), len(values[0])
	for _, row := range values {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
	}
	cells := make([][]int, h)
	for y := 0; y < h; y++ {
		cells[y] = make([]int, w)
		copy(cells[y], values[y])
	}
	var offsets [][2]int
	if opts.Conn == Conn8 {
		offsets = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
	} else {
		offsets = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	}
	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	gg := &GridGraph{
		Width:           w,
		Height:          h,
		CellValues:      cells,
		Conn:            opts.Conn,
		LandThreshold:   opts.LandThreshold,
		Spacing:         spacing,
		neighborOffsets: offsets,
		node:            make([]int, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := gg.index(x, y)
			gg.node[i] = -1
			if gg.IsLand(x, y) {
				gg.node[i] = len(gg.cells)
				gg.cells = append(gg.cells, i)
			}
		}
	}

	return gg, nil
}

// FromStrings builds a GridGraph from text rows: the wall byte is water
// (value 0), every other byte is land (value 1). LandThreshold is forced to 1.
func FromStrings(rows []string, wall byte, opts GridOptions) (*GridGraph, error) {
	values := make([][]int, len(rows))
	for y, row := range rows {
		values[y] = make([]int, len(row))
		for x := 0; x < len(row); x++ {
			if row[x] != wall {
				values[y][x] = 1
			}
		}
	}
	opts.LandThreshold = 1

	return NewGridGraph(values, opts)
}

// InBounds reports whether (x,y) lies within the grid boundaries.
func (gg *GridGraph) InBounds(x, y int) bool {
	return x >= 0 && x < gg.Width && y >= 0 && y < gg.Height
}

// IsLand reports whether (x,y) is inside the grid and reaches LandThreshold.
func (gg *GridGraph) IsLand(x, y int) bool {
	return gg.InBounds(x, y) && gg.CellValues[y][x] >= gg.LandThreshold
}

// NeighborOffsets returns the precomputed neighbor offsets slice.
func (gg *GridGraph) NeighborOffsets() [][2]int {
	return gg.neighborOffsets
}

// Nodes returns the number of land cells.
func (gg *GridGraph) Nodes() int { return len(gg.cells) }

// Node returns the node number of (x,y), or false for water and out-of-grid cells.
func (gg *GridGraph) Node(x, y int) (int, bool) {
	if !gg.InBounds(x, y) {
		return -1, false
	}
	n := gg.node[gg.index(x, y)]

	return n, n >= 0
}

// Cell returns the grid coordinates of node n.
func (gg *GridGraph) Cell(n int) (x, y int) {
	return gg.Coordinate(gg.cells[n])
}

// index maps (x,y) to a row-major index: y*Width + x.
func (gg *GridGraph) index(x, y int) int {
	return y*gg.Width + x
}

// Coordinate converts a row-major index back to (x,y).
func (gg *GridGraph) Coordinate(idx int) (x, y int) {
	return idx % gg.Width, idx / gg.Width
}

// Mesh places every land cell at (x·Spacing, y·Spacing), in node order.
// Returns ErrNoLand when there is nothing to place.
func (gg *GridGraph) Mesh() (*mesh.Mesh, error) {
	if len(gg.cells) == 0 {
		return nil, ErrNoLand
	}
	pts := make([]mesh.Point, len(gg.cells))
	for n := range gg.cells {
		x, y := gg.Cell(n)
		pts[n] = mesh.Point{X: float64(x) * gg.Spacing, Y: float64(y) * gg.Spacing}
	}

	return mesh.New(pts)
}

// Adjacency returns the symmetric 0/1 adjacency matrix over land cells.
// Complexity: O(W×H×d + nnz log nnz).
func (gg *GridGraph) Adjacency() (*sparse.Matrix, error) {
	n := len(gg.cells)
	if n == 0 {
		return nil, ErrNoLand
	}
	b, err := sparse.NewBuilder(n, sparse.WithSymmetric(), sparse.WithCapacity(n*len(gg.neighborOffsets)))
	if err != nil {
		return nil, err
	}
	for u, ci := range gg.cells {
		x, y := gg.Coordinate(ci)
		for _, d := range gg.neighborOffsets {
			v, ok := gg.Node(x+d[0], y+d[1])
			if !ok || v <= u {
				continue // each pair once; the builder mirrors it
			}
			if err = b.Add(u, v, 1); err != nil {
				return nil, fmt.Errorf("gridgraph: adjacency: %w", err)
			}
		}
	}

	return b.Build()
}

// Degrees returns the number of land neighbors of every node.
func (gg *GridGraph) Degrees() []float64 {
	deg := make([]float64, len(gg.cells))
	for u, ci := range gg.cells {
		x, y := gg.Coordinate(ci)
		for _, d := range gg.neighborOffsets {
			if _, ok := gg.Node(x+d[0], y+d[1]); ok {
				deg[u]++
			}
		}
	}

	return deg
}

// NegLaplacian returns −L = A − Deg: symmetric, every row summing to zero.
func (gg *GridGraph) NegLaplacian() (*sparse.Matrix, error) {
	adj, err := gg.Adjacency()
	if err != nil {
		return nil, err
	}
	deg, err := sparse.Diag(gg.Degrees())
	if err != nil {
		return nil, fmt.Errorf("gridgraph: degrees: %w", err)
	}

	return sparse.LinearCombination(adj, deg, -1)
}
