// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package precond

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/numerics/krylov"
)

// ErrNotPositiveDefinite is returned when a Cholesky factorization fails.
var ErrNotPositiveDefinite = errors.New("precond: matrix not positive definite")

// Cholesky is the exact preconditioner M = A for symmetric positive definite
// A, backed by a dense Cholesky factorization.
type Cholesky struct {
	chol mat.Cholesky
	dst  mat.VecDense
}

// NewCholesky factorizes a.
func NewCholesky(a mat.Symmetric) (*Cholesky, error) {
	var p Cholesky
	if ok := p.chol.Factorize(a); !ok {
		return nil, ErrNotPositiveDefinite
	}
	return &p, nil
}

// CholeskyOf factorizes the symmetric matrix a. Only the lower triangle of
// a is read.
func CholeskyOf(a Sparse) (*Cholesky, error) {
	n := square(a)
	sym := mat.NewSymDense(n, nil)
	a.DoNonZero(func(i, j int, v float64) {
		if i >= j {
			sym.SetSym(i, j, sym.At(i, j)+v)
		}
	})
	return NewCholesky(sym)
}

func (p *Cholesky) Apply(dst, x krylov.Vector[float64]) {
	d := krylov.RawVector(dst)
	b := mat.NewVecDense(len(d), krylov.RawVector(x))
	p.dst.Reset()
	p.dst.ReuseAsVec(len(d))
	if err := p.chol.SolveVecTo(&p.dst, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			panic(err)
		}
	}
	copy(d, p.dst.RawVector().Data)
}

// ApplyTrans is the same as Apply because M is symmetric.
func (p *Cholesky) ApplyTrans(dst, x krylov.Vector[float64]) {
	p.Apply(dst, x)
}
