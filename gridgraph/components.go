package gridgraph

// ConnectedComponents finds all contiguous regions ("islands") of land cells
// according to gg.Conn connectivity. Each component is a slice of cell
// indices (row-major) in BFS order; use Coordinate to recover (x,y).
// Components are ordered by their first cell in row-major order.
//
// Time:   O(W·H·d), where d = 4 or 8.
// Memory: O(W·H) for visited flags and output.
func (gg *GridGraph) ConnectedComponents() [][]int {
	seen := make([]bool, gg.Width*gg.Height)
	var comps [][]int

	for y := 0; y < gg.Height; y++ {
		for x := 0; x < gg.Width; x++ {
			i0 := gg.index(x, y)
			if !gg.IsLand(x, y) || seen[i0] {
				continue
			}
			queue := []int{i0}
			seen[i0] = true
			for qi := 0; qi < len(queue); qi++ {
				ux, uy := gg.Coordinate(queue[qi])
				for _, d := range gg.neighborOffsets {
					vx, vy := ux+d[0], uy+d[1]
					if !gg.IsLand(vx, vy) {
						continue
					}
					if vi := gg.index(vx, vy); !seen[vi] {
						seen[vi] = true
						queue = append(queue, vi)
					}
				}
			}
			comps = append(comps, queue)
		}
	}

	return comps
}

// ComponentOf returns the index into ConnectedComponents() of the island
// holding (x,y), or -1 for water.
func (gg *GridGraph) ComponentOf(x, y int) int {
	if !gg.IsLand(x, y) {
		return -1
	}
	target := gg.index(x, y)
	for k, comp := range gg.ConnectedComponents() {
		for _, i := range comp {
			if i == target {
				return k
			}
		}
	}

	return -1
}
