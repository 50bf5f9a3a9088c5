// Package gridgraph treats a 2D grid of cells as a graph and turns its open
// ("land") cells into a mesh plus the coupling operators a diffusion run needs.
//
// What:
//
//   - GridGraph wraps a rectangular [][]int grid with a tunable LandThreshold.
//   - Land cells become mesh nodes, numbered row by row, placed at (x, y).
//   - Adjacency, Degrees and NegLaplacian assemble sparse operators over the
//     land cells with 4- or 8-connectivity. NegLaplacian is a stand-in for a
//     FEM stiffness matrix: symmetric, rows summing to zero.
//   - ConnectedComponents finds islands of land; ExpandIsland finds the
//     cheapest set of cells to open so two islands connect.
//
// Complexity:
//
//   - NewGridGraph, Mesh:   O(W×H).
//   - NegLaplacian:         O(W×H×d + nnz log nnz)   (d = 4 or 8).
//   - ConnectedComponents:  O(W×H×d), Memory O(W×H).
//   - ExpandIsland:         O(W×H×d), Memory O(W×H).
//
// Errors:
//
//   - ErrEmptyGrid: input grid has no rows or no columns.
//   - ErrNonRectangular: rows have differing lengths.
//   - ErrNoLand: the grid has no land cell to build a mesh from.
//   - ErrComponentIndex: requested component index out of range.
//   - ErrNoPath: no conversion path exists between specified components.
package gridgraph
