// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// inverseDiagonal returns the reciprocals of the diagonal of the n×n
// operator a.
func inverseDiagonal(a Operator[float64], n int) []float64 {
	inv := make([]float64, n)
	e := NewDense[float64](n)
	col := NewDense[float64](n)
	for i := range inv {
		e.Zero()
		e.SetVec(i, 1)
		a.Apply(col, e)
		inv[i] = 1 / col.AtVec(i)
	}
	return inv
}

// diagonal returns the operator diag(d).
func diagonal(d []float64) MatrixOps[float64] {
	apply := func(dst, x []float64) {
		for i, v := range x {
			dst[i] = d[i] * v
		}
	}
	return MatrixOps[float64]{MatVec: apply, MatTransVec: apply}
}

func TestQMR(t *testing.T) {
	rnd := rand.New(rand.NewPCG(5, 5))
	for _, tc := range []testCase{
		randomSPD(1, rnd),
		randomSPD(3, rnd),
		randomSPD(10, rnd),
		randomSPD(50, rnd),
		randomNonsym(2, rnd),
		randomNonsym(5, rnd),
		randomNonsym(20, rnd),
		randomNonsym(100, rnd),
		randomIndefinite(30, rnd),
		market("lap2d_6", 1e-8),
		market("convdiff_30", 1e-7),
	} {
		for _, pre := range []string{"none", "left", "right", "both"} {
			n := tc.n
			b, want := rhs(tc.a, n)
			opts := DefaultQMROptions[float64]()
			opts.MaxSteps = tc.iters
			opts.Tol = 1e-12 * norm[float64](b)
			jac := diagonal(inverseDiagonal(tc.a, n))
			switch pre {
			case "left":
				opts.Pre1 = jac
			case "right":
				opts.Pre2 = jac
			case "both":
				opts.Pre1 = jac
				opts.Pre2 = Identity[float64]{}
			}
			r, err := SolveQMR[float64](tc.a, b, opts)
			if err != nil {
				t.Errorf("Case %v (n=%v, pre=%v): unexpected error %v", tc.name, n, pre, err)
				continue
			}
			if !r.Stats.Converged {
				t.Errorf("Case %v (n=%v, pre=%v): not converged", tc.name, n, pre)
			}
			if r.Stats.ResidualNorm > opts.Tol {
				t.Errorf("Case %v (n=%v, pre=%v): residual norm %v above tolerance", tc.name, n, pre, r.Stats.ResidualNorm)
			}
			dist := floats.Distance(RawVector(r.X), want.RawVector(), math.Inf(1))
			if dist > tc.tol {
				t.Errorf("Case %v (n=%v, pre=%v): unexpected solution, |want-got|=%v", tc.name, n, pre, dist)
			}
		}
	}
}

func TestQMRComplex(t *testing.T) {
	// Complex symmetric, not Hermitian.
	a := [][]complex128{
		{4 + 1i, 1, 0.5i},
		{1, 3 - 1i, -1},
		{0.5i, -1, 5},
	}
	matvec := func(dst, x []complex128) {
		for i, row := range a {
			var s complex128
			for j, v := range row {
				s += v * x[j]
			}
			dst[i] = s
		}
	}
	op := MatrixOps[complex128]{MatVec: matvec, MatTransVec: matvec}
	want := []complex128{1, -1i, 2 + 1i}
	b := NewDense[complex128](3)
	op.Apply(b, NewDenseFrom(want))

	opts := DefaultQMROptions[complex128]()
	opts.Tol = 1e-12
	opts.MaxSteps = 20
	r, err := SolveQMR[complex128](op, b, opts)
	require.NoError(t, err)
	require.True(t, r.Stats.Converged)
	for i, x := range RawVector(r.X) {
		require.Less(t, cmplx.Abs(x-want[i]), 1e-10, "element %d", i)
	}
}

func TestQMRDeltaBreakdown(t *testing.T) {
	id := func(dst, x []float64) { copy(dst, x) }
	a := MatrixOps[float64]{MatVec: id, MatTransVec: id}
	// M2^{-1} = [0 1; 0 0] makes z orthogonal to y in the first iteration.
	pre2 := MatrixOps[float64]{
		MatVec:      func(dst, x []float64) { dst[0], dst[1] = x[1], 0 },
		MatTransVec: func(dst, x []float64) { dst[0], dst[1] = 0, x[0] },
	}
	opts := DefaultQMROptions[float64]()
	opts.Pre2 = pre2
	r, err := SolveQMR[float64](a, NewDenseFrom([]float64{1, 0}), opts)

	var bd *BreakdownError
	require.True(t, errors.As(err, &bd), "unexpected error %v", err)
	require.Equal(t, DeltaZero, bd.Kind)
	require.Equal(t, "qmr", bd.Method)
	require.Equal(t, 1, bd.Iteration)
	require.Zero(t, r.Stats.Iterations)
	require.False(t, r.Stats.Converged)
	require.Equal(t, []float64{0, 0}, RawVector(r.X))
}

func TestQMRNoTranspose(t *testing.T) {
	a := OperatorFunc[float64](func(dst, x Vector[float64]) { dst.CopyFrom(x) })
	_, err := SolveQMR[float64](a, NewDenseFrom([]float64{1, 2}), DefaultQMROptions[float64]())
	require.ErrorIs(t, err, ErrNoTranspose)
}

func TestQMRFreeDofs(t *testing.T) {
	rnd := rand.New(rand.NewPCG(6, 6))
	tc := randomNonsym(20, rnd)
	b, _ := rhs(tc.a, tc.n)

	solve := func(dofs FreeDofs[float64]) Result[float64] {
		opts := DefaultQMROptions[float64]()
		opts.MaxSteps = 4
		opts.Tol = 1e-300
		opts.FreeDofs = dofs
		r, err := SolveQMR[float64](tc.a, b, opts)
		require.NoError(t, err)
		require.False(t, r.Stats.Converged)
		return r
	}
	all := make([]bool, tc.n)
	for i := range all {
		all[i] = true
	}
	full := solve(nil)
	same := solve(FreeDofsFromMask[float64](all))
	all[0], all[7] = false, false
	restricted := solve(FreeDofsFromMask[float64](all))

	require.Equal(t, RawVector(full.X), RawVector(same.X))
	require.Equal(t, RawVector(full.X), RawVector(restricted.X))
	for i, h := range full.Stats.History {
		require.InEpsilon(t, h, same.Stats.History[i], 1e-12)
		require.Less(t, restricted.Stats.History[i], h)
	}
}
