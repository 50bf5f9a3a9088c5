// SPDX-License-Identifier: MIT

// Package matrix provides a small row-major dense matrix and the reference
// kernels that go with it: MatVec, Doolittle LU, triangular solves and
// inversion, plus shape and symmetry validators.
//
// What & Why:
//
//	The solvers in rdiff never touch dense storage: FEM operators live in
//	package sparse. Dense matrices are kept for the places where O(n²) is
//	fine and exactness matters more than speed: diagnostics on small
//	operators (rdsim inspect --dense), sparse.Matrix.ToDense, and the
//	reference answers the sparse and CG tests are checked against.
//
// Determinism:
//
//	Fixed i→j loop orders and no pivoting: identical inputs give
//	bit-identical outputs.
//
// Complexity:
//
//	NewDense, Clone: O(r·c). MatVec: O(r·c). LU, Inverse: O(n³). Solve: O(n³)
//	for the factorization plus O(n²) per right-hand side.
//
// Errors:
//
//   - ErrInvalidDimensions: non-positive shape.
//   - ErrOutOfRange: At/Set outside the matrix.
//   - ErrDimensionMismatch / ErrNonSquare: incompatible operands.
//   - ErrAsymmetry: ValidateSymmetric violation.
//   - ErrSingular: zero pivot in LU.
package matrix
