// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// GMRES implements the restarted Generalized Minimal RESidual method with left
// preconditioning for solving the system of linear equations
//
//	Ax = b,
//
// where A is a general real matrix.
//
// Within a restart cycle the residual norm reported to the stopping test is
// the preconditioned residual norm estimated from the Givens rotations,
// relative to the preconditioned initial residual. At the end of a cycle the
// true residual is formed and |r|/|r_0| is tested.
//
// GMRES needs MatVec and PSolve matrix operations.
type GMRES struct {
	// Restart is the restart parameter.
	// It must be 0 <= Restart <= dim.
	// If it is 0, it will be set to dim.
	Restart int

	resume int
	first  bool
	k      int
	i      int // Counter for inner iterations.

	rnorm0, pnorm0 float64

	s []float64
	y []float64

	v  []Vector[float64]
	w  Vector[float64]
	av Vector[float64]

	h    []float64
	ldh  int
	givs []givens
}

type givens struct {
	c, s float64
}

func (g *GMRES) String() string { return "gmres" }

// Init implements the Method interface.
func (g *GMRES) Init(like Vector[float64]) {
	dim := like.Len()
	if dim <= 0 {
		panic("krylov: invalid dim")
	}

	g.k = g.Restart
	if g.k == 0 {
		g.k = dim
	}
	if g.k < 0 || dim < g.k {
		panic("krylov: invalid GMRES.Restart")
	}
	k := g.k

	g.s = reuseSlice(g.s, k+1)
	g.y = reuseSlice(g.y, k+1)
	g.w = reuse(g.w, like)
	g.av = reuse(g.av, like)

	if cap(g.v) < k+1 {
		g.v = make([]Vector[float64], k+1)
	} else {
		g.v = g.v[:k+1]
	}
	for j := range g.v {
		g.v[j] = reuse(g.v[j], like)
	}
	g.ldh = k + 1
	g.h = reuseSlice(g.h, g.ldh*k)
	if cap(g.givs) < k {
		g.givs = make([]givens, k)
	} else {
		g.givs = g.givs[:k]
	}

	g.first = true
	g.resume = 1
}

// Iterate implements the Method interface.
func (g *GMRES) Iterate(ctx *Context[float64]) (Operation, error) {
	switch g.resume {
	case 1:
		if g.first {
			g.rnorm0 = norm(ctx.Residual)
		}
		// Construct the first column of V.
		ctx.Src = ctx.Residual
		ctx.Dst = g.v[0]
		g.resume = 2
		return PSolve, nil
		// Solve M V[:,0] = r.
	case 2:
		// Normalize V[:,0].
		rnorm := norm(g.v[0])
		if g.first {
			g.pnorm0 = rnorm
			g.first = false
		}
		g.v[0].Scale(1 / rnorm)
		// Initialize s to the elementary vector e_1 scaled by rnorm.
		for i := range g.s {
			g.s[i] = 0
		}
		g.s[0] = rnorm

		// for i := 0; i < k; i++ {
		g.i = 0
		fallthrough
	case 3:
		i := g.i
		if i == g.k {
			g.resume = 7
			ctx.Src = nil
			ctx.Dst = nil
			return NoOperation, nil
		}
		ctx.Src = g.v[i]
		ctx.Dst = g.av
		g.resume = 4
		// Compute A V[:,i].
		return MatVec, nil
	case 4:
		ctx.Src = g.av
		ctx.Dst = g.w
		g.resume = 5
		// Solve M w = A V[:,i].
		return PSolve, nil
	case 5:
		i := g.i
		h := g.h
		ldh := g.ldh

		// Construct i-th column of the upper Hessenberg matrix using
		// the Gram-Schmidt process on V and W so that it is orthonormal
		// to the previous i-1 columns.
		for k := 0; k <= i; k++ {
			hki := g.v[k].Dot(g.w, false)
			h[k+i*ldh] = hki
			g.w.AddScaled(-hki, g.v[k])
		}
		wnorm := norm(g.w)
		hi := h[i*ldh : i*ldh+ldh]
		hi[i+1] = wnorm // H[i+1,i] = |w|
		g.v[i+1].CopyFrom(g.w)
		if wnorm != 0 {
			g.v[i+1].Scale(1 / wnorm)
		}

		// Apply (i-1) Givens rotation matrices to the i-th
		// column of H.
		for j := 0; j < i; j++ {
			hi[j], hi[j+1] = rotvec(hi[j], hi[j+1], g.givs[j])
		}
		// Compute the (i+1)st Givens rotation that zeroes H[i+1,i].
		g.givs[i] = drotg(hi[i], hi[i+1])
		// Apply the (i+1)st Givens rotation.
		hi[i], hi[i+1] = rotvec(hi[i], hi[i+1], g.givs[i])

		// Apply the (i+1)st Givens rotation to (s[i], s[i+1]).
		g.s[i], g.s[i+1] = rotvec(g.s[i], g.s[i+1], g.givs[i])
		// Approximate the residual norm and check for convergence.
		ctx.ResidualNorm = math.Abs(g.s[i+1]) / g.pnorm0
		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		g.resume = 6
		return CheckResidualNorm, nil
	case 6:
		if ctx.Converged {
			// Compute final approximate solution x and finish.
			g.update(ctx.X, g.i+1)
			g.resume = 0
			return EndIteration, nil
		}
		g.i++
		g.resume = 3
		return NoOperation, nil
		// end for loop
	case 7:
		// Compute final approximate solution x.
		g.update(ctx.X, g.k)
		g.resume = 8
		// Compute final residual.
		return ComputeResidual, nil
	case 8:
		ctx.ResidualNorm = norm(ctx.Residual) / g.rnorm0
		ctx.Converged = false
		g.resume = 9
		// Check for convergence.
		return CheckResidualNorm, nil
	case 9:
		if ctx.Converged {
			g.resume = 0
			return EndIteration, nil
		}
		g.resume = 1
		return EndIteration, nil

	default:
		panic("krylov: GMRES.Init not called")
	}
}

// update adds the combination of the first n columns of V that minimizes the
// residual to x.
func (g *GMRES) update(x Vector[float64], n int) {
	y := g.y[:n]
	copy(y, g.s[:n])
	// Solve H*y = s for upper triangular H.
	// H is upper triangular but stored in column-major order while Dtrsv
	// expects row-major.
	bi := blas64.Implementation()
	bi.Dtrsv(blas.Lower, blas.Trans, blas.NonUnit, n, g.h, g.ldh, y, 1)
	// Compute current solution vector x.
	for j, yj := range y {
		x.AddScaled(yj, g.v[j])
	}
}

func drotg(a, b float64) givens {
	if b == 0 {
		return givens{c: 1, s: 0}
	}
	if math.Abs(b) > math.Abs(a) {
		tmp := -a / b
		s := 1 / math.Sqrt(1+tmp*tmp)
		return givens{c: tmp * s, s: s}
	}
	tmp := -b / a
	c := 1 / math.Sqrt(1+tmp*tmp)
	return givens{c: c, s: tmp * c}
}

func rotvec(x, y float64, g givens) (rx, ry float64) {
	rx = g.c*x - g.s*y
	ry = g.s*x + g.c*y
	return
}

func reuseSlice(v []float64, n int) []float64 {
	if cap(v) < n {
		return make([]float64, n)
	}
	return v[:n]
}
