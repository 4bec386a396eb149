// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package precond provides preconditioners for the iterative methods of
// package krylov. Every preconditioner applies the inverse M^{-1} of an
// approximation M of the system matrix.
package precond

import "gonum.org/v1/gonum/mat"

// Sparse is a matrix that can enumerate its stored entries.
type Sparse interface {
	Dims() (r, c int)
	mat.NonZeroDoer
}

func square(a Sparse) int {
	r, c := a.Dims()
	if r != c {
		panic(mat.ErrShape)
	}
	return r
}
