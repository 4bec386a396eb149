// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dok provides a dictionary-of-keys sparse matrix used to assemble
// systems entry by entry before they are frozen into triplet form.
package dok

import (
	"cmp"
	"slices"

	"github.com/numerics/krylov/internal/triplet"
)

type DOK struct {
	Rows, Cols int

	data map[index]float64
}

type index struct {
	row, col int
}

func New(r, c int) *DOK {
	if r < 0 || c < 0 {
		panic("dok: negative dimension")
	}
	return &DOK{
		Rows: r,
		Cols: c,
		data: make(map[index]float64),
	}
}

func (m *DOK) Dims() (r, c int) {
	return m.Rows, m.Cols
}

func (m *DOK) At(i, j int) float64 {
	m.check(i, j)
	return m.data[index{i, j}]
}

// SetAt sets the (i, j) entry to v. Setting an entry to zero removes it.
func (m *DOK) SetAt(i, j int, v float64) {
	m.check(i, j)
	if v == 0 {
		delete(m.data, index{i, j})
		return
	}
	m.data[index{i, j}] = v
}

// Add adds v to the (i, j) entry.
func (m *DOK) Add(i, j int, v float64) {
	m.check(i, j)
	m.data[index{i, j}] += v
}

// NNZ returns the number of stored entries.
func (m *DOK) NNZ() int {
	return len(m.data)
}

func (m *DOK) check(i, j int) {
	if i < 0 || m.Rows <= i {
		panic("dok: row index out of range")
	}
	if j < 0 || m.Cols <= j {
		panic("dok: column index out of range")
	}
}

func (m *DOK) MulVec(dst, x []float64) {
	if m.Cols != len(x) {
		panic("dok: dimension mismatch")
	}
	if m.Rows != len(dst) {
		panic("dok: dimension mismatch")
	}
	clear(dst)
	for ij, aij := range m.data {
		dst[ij.row] += aij * x[ij.col]
	}
}

func (m *DOK) MulTransVec(dst, x []float64) {
	if m.Cols != len(dst) {
		panic("dok: dimension mismatch")
	}
	if m.Rows != len(x) {
		panic("dok: dimension mismatch")
	}
	clear(dst)
	for ij, aij := range m.data {
		dst[ij.col] += aij * x[ij.row]
	}
}

// DoNonZero calls fn for each stored entry in row-major order.
func (m *DOK) DoNonZero(fn func(i, j int, v float64)) {
	for _, ij := range m.keys() {
		fn(ij.row, ij.col, m.data[ij])
	}
}

// Triplet returns the entries of m as a triplet matrix in row-major order.
func (m *DOK) Triplet() *triplet.Matrix[float64] {
	t := triplet.New[float64](m.Rows, m.Cols)
	m.DoNonZero(t.Append)
	return t
}

func (m *DOK) keys() []index {
	keys := make([]index, 0, len(m.data))
	for ij := range m.data {
		keys = append(keys, ij)
	}
	slices.SortFunc(keys, func(a, b index) int {
		if c := cmp.Compare(a.row, b.row); c != 0 {
			return c
		}
		return cmp.Compare(a.col, b.col)
	})
	return keys
}
