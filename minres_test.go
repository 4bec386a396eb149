// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestMinRes(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 7))
	for _, tc := range []testCase{
		randomSPD(1, rnd),
		randomSPD(2, rnd),
		randomSPD(10, rnd),
		randomSPD(100, rnd),
		randomIndefinite(2, rnd),
		randomIndefinite(11, rnd),
		randomIndefinite(50, rnd),
		randomIndefinite(200, rnd),
		market("lap2d_6", 1e-8),
	} {
		for _, pre := range []bool{false, true} {
			n := tc.n
			b, want := rhs(tc.a, n)
			opts := DefaultMinResOptions[float64]()
			opts.MaxSteps = tc.iters
			opts.Tol = 1e-12 * norm[float64](b)
			if pre {
				// |diag(A)|^{-1} is symmetric positive definite.
				d := inverseDiagonal(tc.a, n)
				for i, v := range d {
					d[i] = math.Abs(v)
				}
				opts.Pre = diagonal(d)
			}
			r, err := SolveMinRes[float64](tc.a, b, opts)
			if err != nil {
				t.Errorf("Case %v (n=%v, pre=%v): unexpected error %v", tc.name, n, pre, err)
				continue
			}
			if !r.Stats.Converged {
				t.Errorf("Case %v (n=%v, pre=%v): not converged", tc.name, n, pre)
			}
			dist := floats.Distance(RawVector(r.X), want.RawVector(), math.Inf(1))
			if dist > tc.tol {
				t.Errorf("Case %v (n=%v, pre=%v): unexpected solution, |want-got|=%v", tc.name, n, pre, dist)
			}
		}
	}
}

func TestMinResSwap(t *testing.T) {
	a := MatrixOps[float64]{MatVec: func(dst, x []float64) {
		dst[0], dst[1] = x[1], x[0]
	}}
	r, err := SolveMinRes[float64](a, NewDenseFrom([]float64{1, 1}), DefaultMinResOptions[float64]())
	require.NoError(t, err)
	require.True(t, r.Stats.Converged)
	require.Equal(t, 1, r.Stats.Iterations)
	require.InDeltaSlice(t, []float64{1, 1}, RawVector(r.X), 1e-14)
	require.InDelta(t, 0, r.Stats.ResidualNorm, 1e-14)
}

func TestMinResResidualDecreases(t *testing.T) {
	rnd := rand.New(rand.NewPCG(8, 8))
	tc := randomIndefinite(60, rnd)
	b, _ := rhs(tc.a, tc.n)
	opts := DefaultMinResOptions[float64]()
	opts.Tol = 1e-300
	opts.MaxSteps = 15
	r, err := SolveMinRes[float64](tc.a, b, opts)
	require.NoError(t, err)
	require.Len(t, r.Stats.History, 15)
	prev := norm[float64](b)
	for i, h := range r.Stats.History {
		require.LessOrEqual(t, h, prev, "iteration %d", i+1)
		prev = h
	}
}

func TestMinResInitialGuess(t *testing.T) {
	a := laplacian(30)
	op := MatrixOps[float64]{MatVec: a.MulVec}
	b, want := rhs(op, 30)

	sol := NewDense[float64](30)
	for i := range sol.RawVector() {
		sol.SetVec(i, 0.5)
	}
	opts := DefaultMinResOptions[float64]()
	opts.Sol = sol
	opts.Initialize = false
	opts.Tol = 1e-12
	r, err := SolveMinRes[float64](op, b, opts)
	require.NoError(t, err)
	require.True(t, r.Stats.Converged)
	require.Equal(t, r.Stats.Iterations+1, r.Stats.MatVec)
	require.InDeltaSlice(t, want.RawVector(), sol.RawVector(), 1e-8)
}
