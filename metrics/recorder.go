// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exports statistics of iterative solves as Prometheus
// metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/numerics/krylov"
)

const namespace = "krylov"

// Outcome labels of krylov_solves_total.
const (
	OutcomeConverged     = "converged"
	OutcomeMaxIterations = "max_iterations"
	OutcomeBreakdown     = "breakdown"
	OutcomeError         = "error"
)

// Recorder implements krylov.Recorder. It is safe for concurrent use.
type Recorder struct {
	Solves       *prometheus.CounterVec
	Breakdowns   *prometheus.CounterVec
	Iterations   *prometheus.HistogramVec
	MatVec       *prometheus.CounterVec
	PSolve       *prometheus.CounterVec
	ResidualNorm *prometheus.GaugeVec
}

// NewRecorder creates the solver metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		Solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_total",
				Help:      "Total number of solves by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		Breakdowns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "breakdowns_total",
				Help:      "Total number of breakdowns by method and vanishing quantity",
			},
			[]string{"method", "quantity"},
		),
		Iterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "iterations",
				Help:      "Iterations per solve",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"method"},
		),
		MatVec: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matvec_total",
				Help:      "Total number of operator applications",
			},
			[]string{"method"},
		),
		PSolve: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "psolve_total",
				Help:      "Total number of preconditioner applications",
			},
			[]string{"method"},
		),
		ResidualNorm: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_residual_norm",
				Help:      "Final residual norm of the most recent solve",
			},
			[]string{"method"},
		),
	}
	for _, c := range []prometheus.Collector{r.Solves, r.Breakdowns, r.Iterations, r.MatVec, r.PSolve, r.ResidualNorm} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Record implements krylov.Recorder.
func (r *Recorder) Record(stats krylov.Stats, err error) {
	m := stats.Method
	r.Solves.WithLabelValues(m, Outcome(stats, err)).Inc()
	var bd *krylov.BreakdownError
	if errors.As(err, &bd) {
		r.Breakdowns.WithLabelValues(m, bd.Kind.String()).Inc()
	}
	r.Iterations.WithLabelValues(m).Observe(float64(stats.Iterations))
	r.MatVec.WithLabelValues(m).Add(float64(stats.MatVec))
	r.PSolve.WithLabelValues(m).Add(float64(stats.PSolve))
	r.ResidualNorm.WithLabelValues(m).Set(stats.ResidualNorm)
}

// Outcome classifies the result of a solve.
func Outcome(stats krylov.Stats, err error) string {
	var bd *krylov.BreakdownError
	switch {
	case errors.As(err, &bd):
		return OutcomeBreakdown
	case err != nil:
		return OutcomeError
	case stats.Converged:
		return OutcomeConverged
	default:
		return OutcomeMaxIterations
	}
}
