// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

// QMR implements the Quasi-Minimal Residual iterative method without
// look-ahead for solving the system of linear equations
//
//	Ax = b,
//
// where A is a general non-symmetric matrix. The method is two-sided
// preconditioned: PSolve is the left preconditioner M1^{-1} and RightPSolve
// the right preconditioner M2^{-1}.
//
// The residual is updated recursively, and the stopping test commands
// CheckResidual, so Settings.Tolerance is an absolute bound on
// Settings.ResidualNorm of the residual.
//
// Every quantity used as a divisor is tested for exact zero. If one
// vanishes, Iterate returns a *BreakdownError.
//
// QMR needs MatVec, MatTransVec, PSolve, PSolveTrans, RightPSolve and
// RightPSolveTrans matrix operations.
type QMR[T Scalar] struct {
	// Epsilon is the initial value of ε
	// used in the first recurrence
	// coefficients. If it is zero, 1 is
	// used.
	Epsilon T

	resume int
	iter   int

	rho, xi     T
	delta, ep   T
	beta        T
	gamma, eta  T
	theta, rho1 T

	v, vt Vector[T]
	w, wt Vector[T]
	y, yt Vector[T]
	z, zt Vector[T]
	p, pt Vector[T]
	q     Vector[T]
	d, s  Vector[T]
}

func (b *QMR[T]) String() string { return "qmr" }

// Init implements the Method interface.
func (b *QMR[T]) Init(like Vector[T]) {
	b.v = reuse(b.v, like)
	b.vt = reuse(b.vt, like)
	b.w = reuse(b.w, like)
	b.wt = reuse(b.wt, like)
	b.y = reuse(b.y, like)
	b.yt = reuse(b.yt, like)
	b.z = reuse(b.z, like)
	b.zt = reuse(b.zt, like)
	b.p = reuse(b.p, like)
	b.pt = reuse(b.pt, like)
	b.q = reuse(b.q, like)
	b.d = reuse(b.d, like)
	b.s = reuse(b.s, like)

	b.iter = 0
	b.resume = 1
}

// Iterate implements the Method interface.
func (b *QMR[T]) Iterate(ctx *Context[T]) (Operation, error) {
	switch b.resume {
	case 1:
		b.vt.CopyFrom(ctx.Residual)
		ctx.Src = b.vt
		ctx.Dst = b.y
		b.resume = 2
		return PSolve, nil
		// y = M1^{-1} ṽ
	case 2:
		b.rho = sqrt(b.y.Dot(b.y, false))
		b.wt.CopyFrom(ctx.Residual)
		ctx.Src = b.wt
		ctx.Dst = b.z
		b.resume = 3
		return RightPSolveTrans, nil
		// z = M2^{-T} w̃
	case 3:
		b.xi = sqrt(b.z.Dot(b.z, false))
		b.gamma = 1
		b.eta = -1
		b.theta = 0
		b.ep = b.Epsilon
		if b.ep == 0 {
			b.ep = 1
		}
		fallthrough
	case 4:
		b.iter++
		if b.rho == 0 {
			return b.breakdown(RhoZero)
		}
		if b.xi == 0 {
			return b.breakdown(XiZero)
		}
		b.v.CopyFrom(b.vt)
		b.v.Scale(1 / b.rho)
		b.y.Scale(1 / b.rho)
		b.w.CopyFrom(b.wt)
		b.w.Scale(1 / b.xi)
		b.z.Scale(1 / b.xi)

		b.delta = b.z.Dot(b.y, false)
		if b.delta == 0 {
			return b.breakdown(DeltaZero)
		}
		ctx.Src = b.y
		ctx.Dst = b.yt
		b.resume = 5
		return RightPSolve, nil
		// ỹ = M2^{-1} y
	case 5:
		ctx.Src = b.z
		ctx.Dst = b.zt
		b.resume = 6
		return PSolveTrans, nil
		// z̃ = M1^{-T} z
	case 6:
		if b.iter > 1 {
			b.p.Scale(-b.xi * b.delta / b.ep)
			b.p.AddScaled(1, b.yt)
			b.q.Scale(-b.rho * b.delta / b.ep)
			b.q.AddScaled(1, b.zt)
		} else {
			b.p.CopyFrom(b.yt)
			b.q.CopyFrom(b.zt)
		}
		ctx.Src = b.p
		ctx.Dst = b.pt
		b.resume = 7
		return MatVec, nil
		// p̃ = A p
	case 7:
		b.ep = b.q.Dot(b.pt, false)
		if b.ep == 0 {
			return b.breakdown(EpsilonZero)
		}
		b.beta = b.ep / b.delta
		if b.beta == 0 {
			return b.breakdown(BetaZero)
		}
		b.vt.CopyFrom(b.pt)
		b.vt.AddScaled(-b.beta, b.v) // ṽ = p̃ - β v
		ctx.Src = b.vt
		ctx.Dst = b.y
		b.resume = 8
		return PSolve, nil
		// y = M1^{-1} ṽ
	case 8:
		b.rho1 = b.rho
		b.rho = sqrt(b.y.Dot(b.y, false))
		ctx.Src = b.q
		ctx.Dst = b.wt
		b.resume = 9
		return MatTransVec, nil
		// w̃ = A^T q
	case 9:
		b.wt.AddScaled(-b.beta, b.w) // w̃ -= β w
		ctx.Src = b.wt
		ctx.Dst = b.z
		b.resume = 10
		return RightPSolveTrans, nil
		// z = M2^{-T} w̃
	case 10:
		b.xi = sqrt(b.z.Dot(b.z, false))

		gamma1 := b.gamma
		theta1 := b.theta
		b.theta = b.rho / (gamma1 * fromReal[T](abs(b.beta)))
		b.gamma = 1 / sqrt(1+b.theta*b.theta)
		if b.gamma == 0 {
			return b.breakdown(GammaZero)
		}
		b.eta = -b.eta * b.rho1 * b.gamma * b.gamma / (b.beta * gamma1 * gamma1)

		if b.iter > 1 {
			c := theta1 * theta1 * b.gamma * b.gamma
			b.d.Scale(c)
			b.d.AddScaled(b.eta, b.p)
			b.s.Scale(c)
			b.s.AddScaled(b.eta, b.pt)
		} else {
			b.d.CopyFrom(b.p)
			b.d.Scale(b.eta)
			b.s.CopyFrom(b.pt)
			b.s.Scale(b.eta)
		}
		ctx.X.AddScaled(1, b.d)         // u += d
		ctx.Residual.AddScaled(-1, b.s) // r -= s

		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		b.resume = 11
		return CheckResidual, nil
	case 11:
		if ctx.Converged {
			b.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		b.resume = 4
		return EndIteration, nil

	default:
		panic("krylov: QMR.Init not called")
	}
}

func (b *QMR[T]) breakdown(kind BreakdownKind) (Operation, error) {
	b.resume = 0 // Calling Iterate again without Init will panic.
	return NoOperation, breakdown("qmr", kind, b.iter)
}
