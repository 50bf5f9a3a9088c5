// SPDX-License-Identifier: MIT

package reaction_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/rdiff/mesh"
	"github.com/katalvlaran/rdiff/reaction"
	"github.com/katalvlaran/rdiff/sparse"
)

// ExampleInitialize runs a system without diffusion or reaction on a
// four-node line: with S = 0 the field never changes and the run converges
// on its second step.
func ExampleInitialize() {
	m, _ := mesh.New([]mesh.Point{{X: 0}, {X: 1}, {X: 2}, {X: 3}})
	D, _ := sparse.Identity(4)
	S, _ := sparse.FromTriplets(nil, nil, nil, 4, true)

	p := reaction.DefaultParams()
	p.Reaction, p.Drain = 0, 0

	st, err := reaction.Initialize(m, S, D, p, mesh.NewRectZone(0, -1, 1, 2))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	out, err := st.Run(context.Background(), 100)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(out.State, out.Steps)
	fmt.Println(st.N())
	// Output:
	// converged 2
	// [1 1 0 0]
}
