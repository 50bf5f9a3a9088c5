package mtx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/rdiff/sparse"
)

// ReadType tells Read how to treat the stored triangle.
type ReadType int

const (
	// Auto follows the file banner: "symmetric" files are mirrored.
	Auto ReadType = iota
	// Symmetric mirrors every off-diagonal entry regardless of the banner.
	Symmetric
	// General never mirrors.
	General
)

// String returns the lower-case name of t.
func (t ReadType) String() string {
	switch t {
	case Symmetric:
		return "symmetric"
	case General:
		return "general"
	default:
		return "auto"
	}
}

// ParseReadType maps "auto", "symmetric" or "general" (case-insensitive) to a ReadType.
func ParseReadType(s string) (ReadType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "symmetric", "sym":
		return Symmetric, nil
	case "general":
		return General, nil
	}

	return Auto, fmt.Errorf("mtx: unknown read type %q", s)
}

// header is the parsed banner.
type header struct {
	field     string // real | integer | pattern
	symmetric bool
}

// Load opens path and reads it with Read. A missing file surfaces the
// *fs.PathError chain so callers can test errors.Is(err, fs.ErrNotExist).
func Load(path string, hint ReadType) (*sparse.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mtx: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Read(f, hint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// Read parses a Matrix Market coordinate stream into a *sparse.Matrix.
// Duplicate coordinates are summed (FEM assembly semantics).
func Read(r io.Reader, hint ReadType) (*sparse.Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	h := header{field: "real"}
	var (
		b        *sparse.Builder
		lineNo   int
		expected int
		seen     int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if lineNo == 1 && strings.HasPrefix(line, "%%MatrixMarket") {
			parsed, err := parseBanner(line)
			if err != nil {
				return nil, err
			}
			h = parsed
			continue
		}
		if line == "" || line[0] == '%' {
			continue
		}
		fields := strings.Fields(line)

		if b == nil { // size line
			if len(fields) != 3 {
				return nil, lineErr(lineNo, "size line needs rows cols nnz")
			}
			rows, err1 := strconv.Atoi(fields[0])
			cols, err2 := strconv.Atoi(fields[1])
			nnz, err3 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil || err3 != nil || rows <= 0 || nnz < 0 {
				return nil, lineErr(lineNo, "bad size line")
			}
			if rows != cols {
				return nil, lineErr(lineNo, fmt.Sprintf("matrix is %dx%d, want square", rows, cols))
			}
			opts := []sparse.Option{sparse.WithCapacity(nnz)}
			if mirror(hint, h) {
				opts = []sparse.Option{sparse.WithSymmetric(), sparse.WithCapacity(2 * nnz)}
			}
			var err error
			if b, err = sparse.NewBuilder(rows, opts...); err != nil {
				return nil, err
			}
			expected = nnz
			continue
		}

		i, j, v, err := parseEntry(fields, h.field)
		if err != nil {
			return nil, lineErr(lineNo, err.Error())
		}
		if err = b.Add(i-1, j-1, v); err != nil {
			return nil, lineErr(lineNo, err.Error())
		}
		seen++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mtx: read: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("missing size line: %w", ErrMalformedInput)
	}
	if seen != expected {
		return nil, fmt.Errorf("size line declares %d entries, found %d: %w", expected, seen, ErrMalformedInput)
	}

	return b.Build()
}

func mirror(hint ReadType, h header) bool {
	switch hint {
	case Symmetric:
		return true
	case General:
		return false
	default:
		return h.symmetric
	}
}

func parseBanner(line string) (header, error) {
	f := strings.Fields(strings.ToLower(line))
	if len(f) != 5 || f[1] != "matrix" {
		return header{}, fmt.Errorf("bad banner %q: %w", line, ErrMalformedInput)
	}
	if f[2] != "coordinate" {
		return header{}, fmt.Errorf("storage %q: %w", f[2], ErrUnsupported)
	}
	h := header{field: f[3]}
	switch f[3] {
	case "real", "integer", "pattern":
	default:
		return header{}, fmt.Errorf("field %q: %w", f[3], ErrUnsupported)
	}
	switch f[4] {
	case "general":
	case "symmetric":
		h.symmetric = true
	default:
		return header{}, fmt.Errorf("symmetry %q: %w", f[4], ErrUnsupported)
	}

	return h, nil
}

func parseEntry(fields []string, field string) (i, j int, v float64, err error) {
	want := 3
	if field == "pattern" {
		want = 2
	}
	if len(fields) != want {
		return 0, 0, 0, fmt.Errorf("want %d fields, got %d", want, len(fields))
	}
	if i, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("bad row index %q", fields[0])
	}
	if j, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("bad column index %q", fields[1])
	}
	if field == "pattern" {
		return i, j, 1, nil
	}
	if v, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("bad value %q", fields[2])
	}

	return i, j, v, nil
}

func lineErr(lineNo int, msg string) error {
	return fmt.Errorf("line %d: %s: %w", lineNo, msg, ErrMalformedInput)
}
