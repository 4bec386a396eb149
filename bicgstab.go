// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

// BiCGSTAB implements the BiConjugate Gradient STABilized iterative method with
// preconditioning for solving the system of linear equations
//
//	Ax = b,
//
// where A is a non-symmetric matrix. For symmetric positive definite systems
// use CG.
//
// The residual norm reported to the stopping test is |r_i|/|r_0|.
//
// BiCGSTAB needs MatVec and PSolve matrix operations.
type BiCGSTAB[T Scalar] struct {
	first  bool
	resume int
	iter   int

	rho, rhoPrev T
	alpha        T
	omega        T
	rnorm0       float64

	rt   Vector[T]
	p    Vector[T]
	v    Vector[T]
	t    Vector[T]
	phat Vector[T]
	s    Vector[T]
	shat Vector[T]
}

func (b *BiCGSTAB[T]) String() string { return "bicgstab" }

// Init implements the Method interface.
func (b *BiCGSTAB[T]) Init(like Vector[T]) {
	b.rt = reuse(b.rt, like)
	b.p = reuse(b.p, like)
	b.v = reuse(b.v, like)
	b.t = reuse(b.t, like)
	b.phat = reuse(b.phat, like)
	b.s = reuse(b.s, like)
	b.shat = reuse(b.shat, like)

	b.first = true
	b.iter = 0
	b.resume = 1
}

// Iterate implements the Method interface.
func (b *BiCGSTAB[T]) Iterate(ctx *Context[T]) (Operation, error) {
	switch b.resume {
	case 1:
		if b.first {
			b.rt.CopyFrom(ctx.Residual)
			b.rnorm0 = norm(ctx.Residual)
		}
		b.iter++
		b.rho = b.rt.Dot(ctx.Residual, false)
		if abs(b.rho) < dlamchE*dlamchE {
			b.resume = 0 // Calling Iterate again without Init will panic.
			return NoOperation, breakdown("bicgstab", RhoZero, b.iter)
		}
		if b.first {
			b.p.CopyFrom(ctx.Residual)
		} else {
			beta := (b.rho / b.rhoPrev) * (b.alpha / b.omega)
			b.p.AddScaled(-b.omega, b.v)   // p_i -= ω * v_i
			b.p.Scale(beta)                // p_i *= β
			b.p.AddScaled(1, ctx.Residual) // p_i += r_i
		}
		ctx.Src = b.p
		ctx.Dst = b.phat
		b.resume = 2
		return PSolve, nil
		// Solve M p^_i = p_i.
	case 2:
		ctx.Src = b.phat
		ctx.Dst = b.v
		b.resume = 3
		return MatVec, nil
		// Compute Ap^_i -> v_i.
	case 3:
		b.alpha = b.rho / b.rt.Dot(b.v, false)
		// Early check for tolerance.
		ctx.Residual.AddScaled(-b.alpha, b.v)
		b.s.CopyFrom(ctx.Residual)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = norm(ctx.Residual) / b.rnorm0
		ctx.Converged = false
		b.resume = 4
		return CheckResidualNorm, nil
	case 4:
		if ctx.Converged {
			ctx.X.AddScaled(b.alpha, b.phat)
			b.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		ctx.Src = ctx.Residual
		ctx.Dst = b.shat
		b.resume = 5
		return PSolve, nil
		// Solve M s^_i = r_i.
	case 5:
		ctx.Src = b.shat
		ctx.Dst = b.t
		b.resume = 6
		return MatVec, nil
		// Compute As^_i -> t_i.
	case 6:
		b.omega = b.t.Dot(b.s, false) / b.t.Dot(b.t, false)
		ctx.X.AddScaled(b.alpha, b.phat)
		ctx.X.AddScaled(b.omega, b.shat)
		ctx.Residual.AddScaled(-b.omega, b.t)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = norm(ctx.Residual) / b.rnorm0
		ctx.Converged = false
		b.resume = 7
		return CheckResidualNorm, nil
	case 7:
		if ctx.Converged {
			b.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		if abs(b.omega) < dlamchE*dlamchE {
			b.resume = 0
			return NoOperation, breakdown("bicgstab", OmegaZero, b.iter)
		}
		b.rhoPrev = b.rho
		b.first = false
		b.resume = 1
		return EndIteration, nil

	default:
		panic("krylov: BiCGSTAB.Init not called")
	}
}
