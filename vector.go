// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
)

// Scalar is the field of the vectors and operators of a linear system.
type Scalar interface {
	float64 | complex128
}

// Vector is a vector of a linear system. All methods that modify a vector
// modify the receiver. Vectors passed as arguments must have been created
// by the same implementation and have the same length as the receiver.
type Vector[T Scalar] interface {
	// Len returns the dimension of the vector.
	Len() int

	// NewVector returns a new zero vector compatible with the
	// receiver.
	NewVector() Vector[T]

	// CopyFrom sets the receiver to x.
	CopyFrom(x Vector[T])

	// Zero sets all elements of the receiver to zero.
	Zero()

	// Scale multiplies the receiver by alpha.
	Scale(alpha T)

	// AddScaled adds alpha*x to the receiver.
	AddScaled(alpha T, x Vector[T])

	// Dot returns the inner product of the receiver and x. If
	// conjugate is true, the receiver is conjugated,
	//
	//	Σ conj(v_i) x_i,
	//
	// otherwise the bilinear form Σ v_i x_i is returned. Both are
	// the same for real vectors.
	Dot(x Vector[T], conjugate bool) T
}

// Indexer is a Vector whose elements can be read individually.
type Indexer[T Scalar] interface {
	AtVec(i int) T
}

// Dense is a Vector stored in a contiguous slice.
type Dense[T Scalar] struct {
	data []T
}

// NewDense returns a zero Dense vector of dimension n.
func NewDense[T Scalar](n int) *Dense[T] {
	if n < 0 {
		panic("krylov: negative dimension")
	}
	return &Dense[T]{data: make([]T, n)}
}

// NewDenseFrom returns a Dense vector that uses data as its backing slice.
// Changes to data are visible in the vector and vice versa.
func NewDenseFrom[T Scalar](data []T) *Dense[T] {
	return &Dense[T]{data: data}
}

// RawVector returns the backing slice of v.
func (v *Dense[T]) RawVector() []T {
	return v.data
}

// AtVec returns the i-th element of v.
func (v *Dense[T]) AtVec(i int) T {
	return v.data[i]
}

// SetVec sets the i-th element of v to x.
func (v *Dense[T]) SetVec(i int, x T) {
	v.data[i] = x
}

func (v *Dense[T]) Len() int {
	return len(v.data)
}

func (v *Dense[T]) NewVector() Vector[T] {
	return NewDense[T](len(v.data))
}

func (v *Dense[T]) CopyFrom(x Vector[T]) {
	copy(v.data, v.other(x))
}

func (v *Dense[T]) Zero() {
	clear(v.data)
}

func (v *Dense[T]) Scale(alpha T) {
	switch d := any(v.data).(type) {
	case []float64:
		floats.Scale(any(alpha).(float64), d)
	case []complex128:
		cmplxs.Scale(any(alpha).(complex128), d)
	}
}

func (v *Dense[T]) AddScaled(alpha T, x Vector[T]) {
	s := v.other(x)
	switch d := any(v.data).(type) {
	case []float64:
		floats.AddScaled(d, any(alpha).(float64), any(s).([]float64))
	case []complex128:
		cmplxs.AddScaled(d, any(alpha).(complex128), any(s).([]complex128))
	}
}

func (v *Dense[T]) Dot(x Vector[T], conjugate bool) T {
	s := v.other(x)
	var dot any
	switch d := any(v.data).(type) {
	case []float64:
		dot = floats.Dot(d, any(s).([]float64))
	case []complex128:
		u := cblas128.Vector{N: len(d), Inc: 1, Data: d}
		w := cblas128.Vector{N: len(d), Inc: 1, Data: any(s).([]complex128)}
		if conjugate {
			dot = cblas128.Dotc(u, w)
		} else {
			dot = cblas128.Dotu(u, w)
		}
	}
	return dot.(T)
}

// other returns the backing slice of x, which must be a Dense vector of
// the same length as v.
func (v *Dense[T]) other(x Vector[T]) []T {
	xd, ok := x.(*Dense[T])
	if !ok {
		panic("krylov: mixed vector implementations")
	}
	if len(xd.data) != len(v.data) {
		panic("krylov: vector length mismatch")
	}
	return xd.data
}

// RawVector returns the backing slice of a Dense vector. It panics if v is
// not a *Dense[T].
func RawVector[T Scalar](v Vector[T]) []T {
	d, ok := v.(*Dense[T])
	if !ok {
		panic("krylov: not a Dense vector")
	}
	return d.data
}
