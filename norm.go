// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import "math"

// Norm computes the norm of a residual vector for stopping tests that
// command CheckResidual.
type Norm[T Scalar] interface {
	Norm(r Vector[T]) float64
}

// Euclidean is the Euclidean norm over all entries.
type Euclidean[T Scalar] struct{}

func (Euclidean[T]) Norm(r Vector[T]) float64 {
	return norm(r)
}

// FreeDofs is the Euclidean norm restricted to a subset of the entries,
// typically the unconstrained degrees of freedom of a discretization.
// The residual must implement Indexer.
type FreeDofs[T Scalar] []int

// FreeDofsFromMask returns the indices i for which free[i] is true.
func FreeDofsFromMask[T Scalar](free []bool) FreeDofs[T] {
	var dofs FreeDofs[T]
	for i, ok := range free {
		if ok {
			dofs = append(dofs, i)
		}
	}
	return dofs
}

func (f FreeDofs[T]) Norm(r Vector[T]) float64 {
	ix, ok := r.(Indexer[T])
	if !ok {
		panic("krylov: FreeDofs needs an Indexer residual")
	}
	var sum float64
	for _, i := range f {
		v := abs(ix.AtVec(i))
		sum += v * v
	}
	return math.Sqrt(sum)
}
