package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads a mesh coordinate file from path. See Read for the format.
// A missing file surfaces the *fs.PathError from os.Open (errors.Is(err, fs.ErrNotExist)).
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// Read parses node coordinates, one node per line:
//
//	# optional comment
//	4            <- optional node count header (single integer, first data line only)
//	0.0 0.0
//	1.0, 0.0     <- commas are accepted as separators
//	2.0 0.0 0.0  <- a trailing z coordinate is ignored
//
// Blank lines and lines starting with '#' or '%' are skipped.
func Read(r io.Reader) (*Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		pts      []Point
		declared = -1
		lineNo   int
		seenData bool
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '%' {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ',' || r == ';'
		})
		if len(fields) == 1 && !seenData {
			n, err := strconv.Atoi(fields[0])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("line %d: bad node count %q: %w", lineNo, fields[0], ErrMalformedInput)
			}
			declared = n
			seenData = true
			continue
		}
		seenData = true
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: want 2 or 3 coordinates, got %d: %w", lineNo, len(fields), ErrMalformedInput)
		}
		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		if errX != nil || errY != nil || !finite(x) || !finite(y) {
			return nil, fmt.Errorf("line %d: bad coordinate %q: %w", lineNo, line, ErrMalformedInput)
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mesh: read: %w", err)
	}
	if declared >= 0 && declared != len(pts) {
		return nil, fmt.Errorf("header declares %d nodes, found %d: %w", declared, len(pts), ErrMalformedInput)
	}

	return New(pts)
}
