// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

// BiCG implements the biconjugate gradient iterative method with
// preconditioning for solving the system of linear equations
//
//	Ax = b,
//
// where A is a non-symmetric matrix. For symmetric positive definite systems
// use CG.
//
// The residual norm reported to the stopping test is |r_i|/|r_0|.
//
// BiCG needs MatVec, MatTransVec, PSolve, and PSolveTrans matrix operations.
type BiCG[T Scalar] struct {
	first  bool
	resume int
	iter   int

	rho, rhoPrev T
	alpha        T
	rnorm0       float64

	rt    Vector[T]
	z, zt Vector[T]
	p, pt Vector[T]
}

func (b *BiCG[T]) String() string { return "bicg" }

// Init implements the Method interface.
func (b *BiCG[T]) Init(like Vector[T]) {
	b.rt = reuse(b.rt, like)
	b.z = reuse(b.z, like)
	b.zt = reuse(b.zt, like)
	b.p = reuse(b.p, like)
	b.pt = reuse(b.pt, like)

	b.first = true
	b.iter = 0
	b.resume = 1
}

// Iterate implements the Method interface.
func (b *BiCG[T]) Iterate(ctx *Context[T]) (Operation, error) {
	switch b.resume {
	case 1:
		if b.first {
			b.rt.CopyFrom(ctx.Residual)
			b.rnorm0 = norm(ctx.Residual)
		}
		b.iter++
		ctx.Src = ctx.Residual
		ctx.Dst = b.z
		b.resume = 2
		return PSolve, nil
		// Solve M z = r_{i-1}
	case 2:
		ctx.Src = b.rt
		ctx.Dst = b.zt
		b.resume = 3
		return PSolveTrans, nil
		// Solve M^T zt = rt_{i-1}
	case 3:
		b.rho = b.z.Dot(b.rt, false)
		if abs(b.rho) < dlamchE*dlamchE {
			b.resume = 0 // Calling Iterate again without Init will panic.
			return NoOperation, breakdown("bicg", RhoZero, b.iter)
		}
		if !b.first {
			beta := b.rho / b.rhoPrev
			b.p.Scale(beta)
			b.p.AddScaled(1, b.z) // p = z + β p
			b.pt.Scale(beta)
			b.pt.AddScaled(1, b.zt)
		} else {
			b.p.CopyFrom(b.z)
			b.pt.CopyFrom(b.zt)
		}
		ctx.Src = b.p
		ctx.Dst = b.z // == q
		b.resume = 4
		return MatVec, nil
		// q <- A p
	case 4:
		ctx.Src = b.pt
		ctx.Dst = b.zt // == qt
		b.resume = 5
		return MatTransVec, nil
		// qt <- A^T pt
	case 5:
		b.alpha = b.rho / b.pt.Dot(b.z, false)
		ctx.X.AddScaled(b.alpha, b.p)
		ctx.Residual.AddScaled(-b.alpha, b.z)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = norm(ctx.Residual) / b.rnorm0
		ctx.Converged = false
		b.resume = 6
		return CheckResidualNorm, nil
	case 6:
		if ctx.Converged {
			b.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		// Prepare for the next iteration.
		b.rt.AddScaled(-b.alpha, b.zt)
		b.rhoPrev = b.rho
		b.first = false
		b.resume = 1
		return EndIteration, nil

	default:
		panic("krylov: BiCG.Init not called")
	}
}
