// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package triplet provides a sparse matrix in coordinate format that
// supports the matrix-vector products needed by iterative solvers.
package triplet

type triplet[T float64 | complex128] struct {
	i, j int
	v    T
}

// Matrix is a sparse r×c matrix stored as a list of (i, j, v) entries.
// Repeated entries are summed by the products.
type Matrix[T float64 | complex128] struct {
	r, c int
	data []triplet[T]
}

func New[T float64 | complex128](r, c int) *Matrix[T] {
	if r < 0 || c < 0 {
		panic("triplet: negative dimension")
	}
	return &Matrix[T]{
		r: r,
		c: c,
	}
}

func (m *Matrix[T]) Dims() (r, c int) {
	return m.r, m.c
}

// NNZ returns the number of stored entries.
func (m *Matrix[T]) NNZ() int {
	return len(m.data)
}

func (m *Matrix[T]) Append(i, j int, v T) {
	if i < 0 || m.r <= i {
		panic("triplet: row index out of range")
	}
	if j < 0 || m.c <= j {
		panic("triplet: column index out of range")
	}
	m.data = append(m.data, triplet[T]{i, j, v})
}

// MulVec computes dst = A*x.
func (m *Matrix[T]) MulVec(dst, x []T) {
	if m.c != len(x) {
		panic("triplet: dimension mismatch")
	}
	if m.r != len(dst) {
		panic("triplet: dimension mismatch")
	}
	clear(dst)
	for _, aij := range m.data {
		dst[aij.i] += aij.v * x[aij.j]
	}
}

// MulTransVec computes dst = A^T*x.
func (m *Matrix[T]) MulTransVec(dst, x []T) {
	if m.c != len(dst) {
		panic("triplet: dimension mismatch")
	}
	if m.r != len(x) {
		panic("triplet: dimension mismatch")
	}
	clear(dst)
	for _, aij := range m.data {
		dst[aij.j] += aij.v * x[aij.i]
	}
}

// DoNonZero calls fn for each stored entry in insertion order.
func (m *Matrix[T]) DoNonZero(fn func(i, j int, v T)) {
	for _, aij := range m.data {
		fn(aij.i, aij.j, aij.v)
	}
}

// Diagonal returns the diagonal of the matrix with repeated entries summed.
func (m *Matrix[T]) Diagonal() []T {
	d := make([]T, min(m.r, m.c))
	for _, aij := range m.data {
		if aij.i == aij.j {
			d[aij.i] += aij.v
		}
	}
	return d
}
