// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"math"
	"math/cmplx"
)

// fromReal returns x converted to T.
func fromReal[T Scalar](x float64) T {
	var v T
	switch p := any(&v).(type) {
	case *float64:
		*p = x
	case *complex128:
		*p = complex(x, 0)
	}
	return v
}

// abs returns the absolute value (modulus) of x.
func abs[T Scalar](x T) float64 {
	switch v := any(x).(type) {
	case float64:
		return math.Abs(v)
	case complex128:
		return cmplx.Abs(v)
	}
	panic("unreachable")
}

// sqrt returns the principal square root of x. For real x it is the
// square root of x, which is NaN for negative x.
func sqrt[T Scalar](x T) T {
	var r any
	switch v := any(x).(type) {
	case float64:
		r = math.Sqrt(v)
	case complex128:
		r = cmplx.Sqrt(v)
	}
	return r.(T)
}

// norm returns the Euclidean norm of v.
func norm[T Scalar](v Vector[T]) float64 {
	return math.Sqrt(abs(v.Dot(v, true)))
}

const dlamchE = 1.0 / (1 << 53)
