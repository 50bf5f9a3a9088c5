// SPDX-License-Identifier: MIT

package sparse_test

import (
	"fmt"

	"github.com/katalvlaran/rdiff/sparse"
)

// ExampleFromTriplets assembles the upper triangle of a 1D Laplacian and
// applies it to a vector.
func ExampleFromTriplets() {
	rows := []int{0, 0, 1, 1, 2}
	cols := []int{0, 1, 1, 2, 2}
	vals := []float64{2, -1, 2, -1, 2}

	A, err := sparse.FromTriplets(rows, cols, vals, 3, true)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	y, _ := A.MatVec([]float64{1, 1, 1})
	fmt.Println("nnz:", A.NNZ())
	fmt.Println("A·1:", y)
	// Output:
	// nnz: 7
	// A·1: [1 0 1]
}
