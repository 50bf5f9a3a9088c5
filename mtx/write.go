package mtx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/katalvlaran/rdiff/sparse"
)

// Write encodes m as "coordinate real". With symmetric set, only the upper
// triangle (i <= j) is written under a "symmetric" banner; the caller is
// responsible for m actually being symmetric.
func Write(w io.Writer, m *sparse.Matrix, symmetric bool) error {
	c := m.ToCompressed()
	kind := "general"
	count := c.RowPtr[c.N]
	if symmetric {
		kind = "symmetric"
		count = 0
		for i := 0; i < c.N; i++ {
			for _, e := range c.Row(i) {
				if e.Col >= i {
					count++
				}
			}
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%%%%MatrixMarket matrix coordinate real %s\n", kind)
	fmt.Fprintf(bw, "%d %d %d\n", c.N, c.N, count)
	for i := 0; i < c.N; i++ {
		for _, e := range c.Row(i) {
			if symmetric && e.Col < i {
				continue
			}
			bw.WriteString(strconv.Itoa(i + 1))
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(e.Col + 1))
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(e.Val, 'g', -1, 64))
			bw.WriteByte('\n')
		}
	}

	return bw.Flush()
}

// Save writes m to path with Write.
func Save(path string, m *sparse.Matrix, symmetric bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mtx: create %s: %w", path, err)
	}
	if err = Write(f, m, symmetric); err != nil {
		f.Close()
		return fmt.Errorf("mtx: write %s: %w", path, err)
	}

	return f.Close()
}
