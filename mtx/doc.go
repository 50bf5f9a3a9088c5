// Package mtx reads and writes sparse matrices in the Matrix Market
// coordinate format, the exchange format of the FEM tool chain that produces
// the stiffness and damping operators.
//
// Supported banners:
//
//	%%MatrixMarket matrix coordinate real|integer|pattern general|symmetric
//
// Files without a banner are read as "coordinate real general". Indices are
// 1-based on disk and 0-based in memory. Only square matrices are accepted.
package mtx
