// SPDX-License-Identifier: MIT

// Package sparse provides a square, row-compressed sparse matrix tuned for the
// operators produced by finite-element assembly (stiffness, damping, and the
// implicit system matrix M = D − dt·S).
//
// What & Why:
//
//	FEM operators are large and mostly empty: a node only couples to its
//	direct neighbours. Storing them densely costs O(n²) memory and makes every
//	matrix-vector product O(n²). This package keeps only the non-zero pattern,
//	in two layouts:
//	  - per-row ordered (column, value) lists, produced by the Builder;
//	  - a flat CSR layout (RowPtr + Entries) produced lazily by ToCompressed
//	    and used by every hot kernel (MatVec, MatVecTo).
//
// Lifecycle:
//
//	Builder.Add(i, j, v) ... → Builder.Build() → *Matrix (immutable).
//	Readers never observe a partially built matrix. A *Matrix is safe for
//	concurrent read-only use, including the first ToCompressed call.
//
// Assembly policy:
//
//	Duplicate coordinates are reconciled by addition (never overwritten), the
//	same rule FEM assembly uses when element contributions overlap. With the
//	symmetric hint, every off-diagonal triplet (i,j,v) also contributes (j,i,v).
//
// Complexity:
//
//	Build: O(nnz log nnz). ToCompressed: O(n + nnz), once. MatVec: O(n + nnz).
//	LinearCombination: O(n + nnzA + nnzB).
package sparse
