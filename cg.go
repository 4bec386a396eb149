// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import "math"

// CG implements the preconditioned Conjugate Gradient iterative method for
// solving the system of linear equations
//
//	Ax = b,
//
// where A is a symmetric (Hermitian) positive definite matrix. The
// preconditioner must be symmetric positive definite as well.
//
// The residual norm reported to the stopping test at the end of iteration i
// is
//
//	sqrt(|z_{i-1} · r_{i-1}|) / sqrt(|z_0 · r_0|),
//
// where z = M^{-1} r, that is the preconditioned residual the iteration
// started from, relative to the initial one. The first iteration therefore
// always reports 1. If the residual vanishes exactly, 0 is reported.
//
// CG needs MatVec and PSolve matrix operations.
type CG[T Scalar] struct {
	// Conjugate selects the Hermitian inner
	// product for complex systems. For
	// real systems it has no effect.
	Conjugate bool

	resume int
	iter   int

	wdn  T
	err0 float64

	w, s Vector[T]
}

func (cg *CG[T]) String() string { return "cg" }

// Init implements the Method interface.
func (cg *CG[T]) Init(like Vector[T]) {
	cg.w = reuse(cg.w, like)
	cg.s = reuse(cg.s, like)
	cg.iter = 0
	cg.resume = 1
}

// Iterate implements the Method interface.
func (cg *CG[T]) Iterate(ctx *Context[T]) (Operation, error) {
	d := ctx.Residual
	switch cg.resume {
	case 1:
		ctx.Src = d
		ctx.Dst = cg.w
		cg.resume = 2
		return PSolve, nil
		// w = M^{-1} d_0
	case 2:
		cg.wdn = cg.w.Dot(d, cg.Conjugate)
		if cg.wdn == 0 {
			// The initial guess is consistent.
			ctx.ResidualNorm = 0
			cg.resume = 0
			return Finish, nil
		}
		cg.err0 = math.Sqrt(abs(d.Dot(cg.w, cg.Conjugate)))
		cg.s.CopyFrom(cg.w)
		fallthrough
	case 3:
		cg.iter++
		ctx.Src = cg.s
		ctx.Dst = cg.w
		cg.resume = 4
		return MatVec, nil
		// w = A s
	case 4:
		wd := cg.wdn
		as := cg.s.Dot(cg.w, cg.Conjugate)
		if as == 0 {
			cg.resume = 0
			return NoOperation, breakdown("cg", CurvatureZero, cg.iter)
		}
		alpha := wd / as
		ctx.X.AddScaled(alpha, cg.s) // u += α s
		d.AddScaled(-alpha, cg.w)    // d -= α w
		ctx.Src = d
		ctx.Dst = cg.w
		cg.resume = 5
		return PSolve, nil
		// w = M^{-1} d
	case 5:
		wd := cg.wdn
		cg.wdn = cg.w.Dot(d, cg.Conjugate)
		if cg.wdn == 0 {
			// The residual vanished exactly.
			ctx.ResidualNorm = 0
		} else {
			beta := cg.wdn / wd
			cg.s.Scale(beta)
			cg.s.AddScaled(1, cg.w) // s = β s + w
			ctx.ResidualNorm = math.Sqrt(abs(wd)) / cg.err0
		}

		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		cg.resume = 6
		return CheckResidualNorm, nil
	case 6:
		if ctx.Converged {
			cg.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		cg.resume = 3
		return EndIteration, nil

	default:
		panic("krylov: CG.Init not called")
	}
}
