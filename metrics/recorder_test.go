// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/numerics/krylov"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)
	return r
}

func TestOutcome(t *testing.T) {
	bd := &krylov.BreakdownError{Method: "qmr", Kind: krylov.DeltaZero, Iteration: 1}
	for _, test := range []struct {
		stats krylov.Stats
		err   error
		want  string
	}{
		{krylov.Stats{Converged: true}, nil, OutcomeConverged},
		{krylov.Stats{}, nil, OutcomeMaxIterations},
		{krylov.Stats{}, bd, OutcomeBreakdown},
		{krylov.Stats{}, krylov.ErrNoTranspose, OutcomeError},
	} {
		require.Equal(t, test.want, Outcome(test.stats, test.err))
	}
}

func TestRecord(t *testing.T) {
	r := newTestRecorder(t)

	r.Record(krylov.Stats{Method: "cg", Iterations: 10, MatVec: 11, PSolve: 12, ResidualNorm: 1e-9, Converged: true}, nil)
	r.Record(krylov.Stats{Method: "cg", Iterations: 100, MatVec: 100, ResidualNorm: 1e-3}, nil)
	r.Record(krylov.Stats{Method: "qmr", Iterations: 0, ResidualNorm: 1}, &krylov.BreakdownError{Method: "qmr", Kind: krylov.DeltaZero, Iteration: 1})

	require.Equal(t, 1.0, testutil.ToFloat64(r.Solves.WithLabelValues("cg", OutcomeConverged)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.Solves.WithLabelValues("cg", OutcomeMaxIterations)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.Solves.WithLabelValues("qmr", OutcomeBreakdown)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.Breakdowns.WithLabelValues("qmr", "delta")))
	require.Equal(t, 111.0, testutil.ToFloat64(r.MatVec.WithLabelValues("cg")))
	require.Equal(t, 12.0, testutil.ToFloat64(r.PSolve.WithLabelValues("cg")))
	require.Equal(t, 1e-3, testutil.ToFloat64(r.ResidualNorm.WithLabelValues("cg")))
	require.Equal(t, 2, testutil.CollectAndCount(r.Iterations))
}

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)
	_, err = NewRecorder(reg)
	var are prometheus.AlreadyRegisteredError
	require.True(t, errors.As(err, &are))
}

func TestLinearSolve(t *testing.T) {
	r := newTestRecorder(t)
	a := krylov.MatrixOps[float64]{MatVec: func(dst, x []float64) {
		for i := range dst {
			dst[i] = float64(i+1) * x[i]
		}
	}}
	b := krylov.NewDenseFrom([]float64{1, 2, 3})
	res, err := krylov.SolveCG[float64](a, b, krylov.CGOptions[float64]{
		Tol:        1e-10,
		MaxSteps:   10,
		Initialize: true,
		Recorder:   r,
	})
	require.NoError(t, err)
	require.True(t, res.Stats.Converged)
	require.Equal(t, 1.0, testutil.ToFloat64(r.Solves.WithLabelValues("cg", OutcomeConverged)))
	require.Equal(t, float64(res.Stats.MatVec), testutil.ToFloat64(r.MatVec.WithLabelValues("cg")))
}
