// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

// MinRes implements the preconditioned Minimal Residual iterative method for
// solving the system of linear equations
//
//	Ax = b,
//
// where A is a symmetric, possibly indefinite, matrix. The preconditioner
// must be symmetric positive definite.
//
// The Lanczos tridiagonal matrix is factorized by Givens rotations as it
// grows, so the solution is updated in every iteration and the norm of the
// preconditioned residual is obtained from the rotations without forming the
// residual. Settings.Tolerance is an absolute bound on that norm.
//
// MinRes needs MatVec and PSolve matrix operations.
type MinRes[T Scalar] struct {
	resume int
	iter   int

	resNorm float64

	gamma, gammaNew T
	delta           T
	eta             T
	c, cOld         T
	s, sOld         T

	v, w ring[T]
	z    pair[T]
	mz   Vector[T]
}

func (m *MinRes[T]) String() string { return "minres" }

// Init implements the Method interface.
func (m *MinRes[T]) Init(like Vector[T]) {
	m.v.init(like)
	m.w.init(like)
	m.z.init(like)
	m.mz = reuse(m.mz, like)
	m.iter = 0
	m.resume = 1
}

// Iterate implements the Method interface.
func (m *MinRes[T]) Iterate(ctx *Context[T]) (Operation, error) {
	switch m.resume {
	case 1:
		m.v.cur().CopyFrom(ctx.Residual)
		ctx.Src = m.v.cur()
		ctx.Dst = m.z.cur()
		m.resume = 2
		return PSolve, nil
		// z = M^{-1} v
	case 2:
		v, z := m.v.cur(), m.z.cur()
		m.gamma = sqrt(z.Dot(v, false))
		if m.gamma == 0 {
			ctx.ResidualNorm = 0
			m.resume = 0
			return Finish, nil
		}
		z.Scale(1 / m.gamma)
		v.Scale(1 / m.gamma)

		m.resNorm = abs(m.gamma)
		m.eta = m.gamma
		m.cOld, m.c = 1, 1
		m.sOld, m.s = 0, 0
		m.v.old().Zero()
		m.w.old().Zero()
		m.w.cur().Zero()

		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = m.resNorm
		ctx.Converged = false
		m.resume = 3
		return CheckResidualNorm, nil
	case 3:
		if ctx.Converged {
			m.resume = 0
			return Finish, nil
		}
		fallthrough
	case 4:
		m.iter++
		ctx.Src = m.z.cur()
		ctx.Dst = m.mz
		m.resume = 5
		return MatVec, nil
		// mz = A z
	case 5:
		m.delta = m.mz.Dot(m.z.cur(), false)
		vNew := m.v.next()
		vNew.CopyFrom(m.mz)
		vNew.AddScaled(-m.delta, m.v.cur())
		vNew.AddScaled(-m.gamma, m.v.old()) // v_new = A z - δ v - γ v_old
		ctx.Src = vNew
		ctx.Dst = m.z.next()
		m.resume = 6
		return PSolve, nil
		// z_new = M^{-1} v_new
	case 6:
		delta := m.delta
		vNew, zNew := m.v.next(), m.z.next()
		m.gammaNew = sqrt(zNew.Dot(vNew, false))
		if m.gammaNew != 0 {
			zNew.Scale(1 / m.gammaNew)
			vNew.Scale(1 / m.gammaNew)
		}

		alpha0 := m.c*delta - m.cOld*m.s*m.gamma
		alpha1 := sqrt(alpha0*alpha0 + m.gammaNew*m.gammaNew)
		if alpha1 == 0 {
			m.resume = 0
			return NoOperation, breakdown("minres", AlphaZero, m.iter)
		}
		alpha2 := m.s*delta + m.cOld*m.c*m.gamma
		alpha3 := m.sOld * m.gamma

		cNew := alpha0 / alpha1
		sNew := m.gammaNew / alpha1

		wNew := m.w.next()
		wNew.CopyFrom(m.z.cur())
		wNew.AddScaled(-alpha3, m.w.old())
		wNew.AddScaled(-alpha2, m.w.cur())
		wNew.Scale(1 / alpha1) // w_new = (z - α3 w_old - α2 w) / α1

		ctx.X.AddScaled(cNew*m.eta, wNew) // u += c_new η w_new
		m.eta = -sNew * m.eta

		m.resNorm *= abs(sNew)

		m.v.rotate()
		m.w.rotate()
		m.z.swap()
		m.sOld, m.s = m.s, sNew
		m.cOld, m.c = m.c, cNew
		m.gamma = m.gammaNew

		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = m.resNorm
		ctx.Converged = false
		m.resume = 7
		return CheckResidualNorm, nil
	case 7:
		if ctx.Converged {
			m.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		m.resume = 4
		return EndIteration, nil

	default:
		panic("krylov: MinRes.Init not called")
	}
}

// ring holds the three Lanczos-sequence vectors old, cur and next. rotate
// shifts the roles so that cur becomes old and next becomes cur, and the
// storage of old is recycled as next.
type ring[T Scalar] struct {
	slot [3]Vector[T]
	head int
}

func (r *ring[T]) init(like Vector[T]) {
	for i := range r.slot {
		r.slot[i] = reuse(r.slot[i], like)
	}
	r.head = 0
}

func (r *ring[T]) old() Vector[T]  { return r.slot[r.head] }
func (r *ring[T]) cur() Vector[T]  { return r.slot[(r.head+1)%3] }
func (r *ring[T]) next() Vector[T] { return r.slot[(r.head+2)%3] }
func (r *ring[T]) rotate()         { r.head = (r.head + 1) % 3 }

// pair holds the vectors cur and next.
type pair[T Scalar] struct {
	slot [2]Vector[T]
	head int
}

func (p *pair[T]) init(like Vector[T]) {
	for i := range p.slot {
		p.slot[i] = reuse(p.slot[i], like)
	}
	p.head = 0
}

func (p *pair[T]) cur() Vector[T]  { return p.slot[p.head] }
func (p *pair[T]) next() Vector[T] { return p.slot[1-p.head] }
func (p *pair[T]) swap()           { p.head = 1 - p.head }
