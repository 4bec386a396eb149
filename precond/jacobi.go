// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package precond

import (
	"errors"

	"github.com/numerics/krylov"
)

// ErrZeroDiagonal is returned when a diagonal preconditioner would divide by
// zero.
var ErrZeroDiagonal = errors.New("precond: zero diagonal entry")

// Jacobi is the diagonal preconditioner M = diag(A). Vectors must be
// krylov.Dense.
type Jacobi[T krylov.Scalar] struct {
	inv []T
}

// NewJacobi returns the Jacobi preconditioner of the matrix with the given
// diagonal.
func NewJacobi[T krylov.Scalar](diag []T) (*Jacobi[T], error) {
	inv := make([]T, len(diag))
	for i, d := range diag {
		if d == 0 {
			return nil, ErrZeroDiagonal
		}
		inv[i] = 1 / d
	}
	return &Jacobi[T]{inv: inv}, nil
}

// JacobiOf returns the Jacobi preconditioner of a.
func JacobiOf(a Sparse) (*Jacobi[float64], error) {
	diag := make([]float64, square(a))
	a.DoNonZero(func(i, j int, v float64) {
		if i == j {
			diag[i] += v
		}
	})
	return NewJacobi(diag)
}

func (p *Jacobi[T]) Apply(dst, x krylov.Vector[T]) {
	d := krylov.RawVector(dst)
	s := krylov.RawVector(x)
	if len(d) != len(p.inv) || len(s) != len(p.inv) {
		panic("precond: dimension mismatch")
	}
	for i, v := range s {
		d[i] = p.inv[i] * v
	}
}

// ApplyTrans is the same as Apply because M is diagonal.
func (p *Jacobi[T]) ApplyTrans(dst, x krylov.Vector[T]) {
	p.Apply(dst, x)
}
