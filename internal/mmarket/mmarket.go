// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmarket reads and writes real matrices and vectors in the
// Matrix Market exchange format.
package mmarket

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/numerics/krylov/internal/dok"
)

const banner = "%%MatrixMarket"

// ErrFormat is returned for malformed or unsupported input.
var ErrFormat = errors.New("mmarket: invalid format")

// Header describes the banner of a Matrix Market file.
type Header struct {
	// Format is "coordinate" or "array".
	Format string
	// Field is "real", "integer" or "pattern".
	Field string
	// Symmetry is "general", "symmetric" or "skew-symmetric".
	Symmetry string

	Rows, Cols int
	// Entries is the number of entries listed in the file.
	Entries int
}

// ReadMatrix reads a matrix. Symmetric and skew-symmetric storage is
// expanded so that the returned matrix holds all entries.
func ReadMatrix(r io.Reader) (*dok.DOK, Header, error) {
	sc := newScanner(r)
	h, err := sc.header()
	if err != nil {
		return nil, h, err
	}
	switch h.Format {
	case "coordinate":
		return sc.coordinate(h)
	case "array":
		return sc.array(h)
	}
	return nil, h, fmt.Errorf("%w: unsupported format %q", ErrFormat, h.Format)
}

// ReadVector reads a vector stored as an n×1 array or as a coordinate
// matrix with a single column.
func ReadVector(r io.Reader) ([]float64, error) {
	m, h, err := ReadMatrix(r)
	if err != nil {
		return nil, err
	}
	if h.Cols != 1 {
		return nil, fmt.Errorf("%w: vector has %d columns", ErrFormat, h.Cols)
	}
	v := make([]float64, h.Rows)
	m.DoNonZero(func(i, _ int, x float64) {
		v[i] = x
	})
	return v, nil
}

// WriteVector writes v as a real general n×1 array.
func WriteVector(w io.Writer, v []float64) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(banner + " matrix array real general\n")
	bw.WriteString(strconv.Itoa(len(v)) + " 1\n")
	for _, x := range v {
		bw.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

type scanner struct {
	s    *bufio.Scanner
	line int
}

func newScanner(r io.Reader) *scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &scanner{s: s}
}

func (sc *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, sc.line, fmt.Sprintf(format, args...))
}

// next returns the fields of the next non-comment, non-blank line.
func (sc *scanner) next() ([]string, error) {
	for sc.s.Scan() {
		sc.line++
		text := strings.TrimSpace(sc.s.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		return strings.Fields(text), nil
	}
	if err := sc.s.Err(); err != nil {
		return nil, err
	}
	return nil, sc.errorf("unexpected end of input")
}

func (sc *scanner) header() (Header, error) {
	var h Header
	if !sc.s.Scan() {
		if err := sc.s.Err(); err != nil {
			return h, err
		}
		return h, fmt.Errorf("%w: empty input", ErrFormat)
	}
	sc.line++
	f := strings.Fields(strings.ToLower(sc.s.Text()))
	if len(f) != 5 || f[0] != strings.ToLower(banner) || f[1] != "matrix" {
		return h, sc.errorf("bad banner")
	}
	h.Format, h.Field, h.Symmetry = f[2], f[3], f[4]
	switch h.Field {
	case "real", "integer", "pattern":
	default:
		return h, sc.errorf("unsupported field %q", h.Field)
	}
	switch h.Symmetry {
	case "general", "symmetric", "skew-symmetric":
	default:
		return h, sc.errorf("unsupported symmetry %q", h.Symmetry)
	}
	if h.Format == "array" && h.Field == "pattern" {
		return h, sc.errorf("pattern array")
	}

	f, err := sc.next()
	if err != nil {
		return h, err
	}
	want := 3
	if h.Format == "array" {
		want = 2
	}
	if len(f) != want {
		return h, sc.errorf("size line has %d fields, want %d", len(f), want)
	}
	n, err := sc.ints(f)
	if err != nil {
		return h, err
	}
	h.Rows, h.Cols = n[0], n[1]
	if h.Rows < 0 || h.Cols < 0 {
		return h, sc.errorf("negative dimension")
	}
	if h.Symmetry != "general" && h.Rows != h.Cols {
		return h, sc.errorf("%s matrix is not square", h.Symmetry)
	}
	if want == 3 {
		h.Entries = n[2]
	} else {
		h.Entries = h.Rows * h.Cols
		if h.Symmetry == "symmetric" {
			h.Entries = h.Rows * (h.Rows + 1) / 2
		} else if h.Symmetry == "skew-symmetric" {
			h.Entries = h.Rows * (h.Rows - 1) / 2
		}
	}
	return h, nil
}

func (sc *scanner) ints(f []string) ([]int, error) {
	n := make([]int, len(f))
	for k, s := range f {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, sc.errorf("bad integer %q", s)
		}
		n[k] = v
	}
	return n, nil
}

func (sc *scanner) value(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, sc.errorf("bad value %q", s)
	}
	return v, nil
}

func (sc *scanner) coordinate(h Header) (*dok.DOK, Header, error) {
	m := dok.New(h.Rows, h.Cols)
	want := 3
	if h.Field == "pattern" {
		want = 2
	}
	for k := 0; k < h.Entries; k++ {
		f, err := sc.next()
		if err != nil {
			return nil, h, err
		}
		if len(f) != want {
			return nil, h, sc.errorf("entry has %d fields, want %d", len(f), want)
		}
		ij, err := sc.ints(f[:2])
		if err != nil {
			return nil, h, err
		}
		i, j := ij[0]-1, ij[1]-1
		if i < 0 || h.Rows <= i || j < 0 || h.Cols <= j {
			return nil, h, sc.errorf("index (%d, %d) out of range", ij[0], ij[1])
		}
		v := 1.0
		if want == 3 {
			v, err = sc.value(f[2])
			if err != nil {
				return nil, h, err
			}
		}
		if err := sc.store(m, h, i, j, v); err != nil {
			return nil, h, err
		}
	}
	return m, h, nil
}

// array reads column-major dense storage. Symmetric storage lists the lower
// triangle and skew-symmetric storage the strictly lower triangle.
func (sc *scanner) array(h Header) (*dok.DOK, Header, error) {
	m := dok.New(h.Rows, h.Cols)
	for j := 0; j < h.Cols; j++ {
		i0 := 0
		switch h.Symmetry {
		case "symmetric":
			i0 = j
		case "skew-symmetric":
			i0 = j + 1
		}
		for i := i0; i < h.Rows; i++ {
			f, err := sc.next()
			if err != nil {
				return nil, h, err
			}
			if len(f) != 1 {
				return nil, h, sc.errorf("entry has %d fields, want 1", len(f))
			}
			v, err := sc.value(f[0])
			if err != nil {
				return nil, h, err
			}
			if v == 0 {
				continue
			}
			if err := sc.store(m, h, i, j, v); err != nil {
				return nil, h, err
			}
		}
	}
	return m, h, nil
}

func (sc *scanner) store(m *dok.DOK, h Header, i, j int, v float64) error {
	switch h.Symmetry {
	case "general":
		m.Add(i, j, v)
	case "symmetric":
		if i < j {
			return sc.errorf("entry (%d, %d) above the diagonal", i+1, j+1)
		}
		m.Add(i, j, v)
		if i != j {
			m.Add(j, i, v)
		}
	case "skew-symmetric":
		if i <= j {
			return sc.errorf("entry (%d, %d) not below the diagonal", i+1, j+1)
		}
		m.Add(i, j, v)
		m.Add(j, i, -v)
	}
	return nil
}
