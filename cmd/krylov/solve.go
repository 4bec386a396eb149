// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/numerics/krylov"
	"github.com/numerics/krylov/internal/mmarket"
	"github.com/numerics/krylov/internal/triplet"
	"github.com/numerics/krylov/metrics"
	"github.com/numerics/krylov/precond"
)

type solveOptions struct {
	*rootOptions

	matrix       string
	rhs          string
	method       string
	pre          string
	tol          float64
	maxSteps     int
	restart      int
	printRates   bool
	initialGuess string
	output       string
	plot         string
	metricsFile  string
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	opts := &solveOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve A*x = b for a Matrix Market matrix A",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.matrix, "matrix", "", "Matrix Market file with the system matrix")
	f.StringVar(&opts.rhs, "rhs", "", "Matrix Market file with the right-hand side (default A*[1,...,1])")
	f.StringVar(&opts.method, "method", "cg", "iterative method (cg, qmr, minres, bicg, bicgstab, gmres)")
	f.StringVar(&opts.pre, "pre", "none", "preconditioner (none, jacobi, lu, cholesky)")
	f.Float64Var(&opts.tol, "tol", 0, "stopping tolerance (default depends on the method)")
	f.IntVar(&opts.maxSteps, "maxsteps", 0, "iteration limit (default depends on the method)")
	f.IntVar(&opts.restart, "restart", 0, "GMRES restart length (default the dimension)")
	f.BoolVar(&opts.printRates, "print-rates", false, "log the residual norm after every iteration")
	f.StringVar(&opts.initialGuess, "initial-guess", "", "Matrix Market file with the initial guess")
	f.StringVar(&opts.output, "output", "", "write the solution to this file instead of standard output")
	f.StringVar(&opts.plot, "plot", "", "save the residual history plot to this image file")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write solver metrics in Prometheus text format to this file")
	cmd.MarkFlagRequired("matrix")
	return cmd
}

func runSolve(cmd *cobra.Command, opts *solveOptions) error {
	logger := opts.logger

	a, err := readMatrix(opts.matrix)
	if err != nil {
		return err
	}
	n, _ := a.Dims()
	op := krylov.MatrixOps[float64]{MatVec: a.MulVec, MatTransVec: a.MulTransVec}

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	b := krylov.NewDense[float64](n)
	if opts.rhs != "" {
		v, err := readVector(opts.rhs, n)
		if err != nil {
			return err
		}
		copy(b.RawVector(), v)
	} else {
		op.Apply(b, krylov.NewDenseFrom(ones))
	}

	var x0 *krylov.Dense[float64]
	if opts.initialGuess != "" {
		v, err := readVector(opts.initialGuess, n)
		if err != nil {
			return err
		}
		x0 = krylov.NewDenseFrom(v)
	}

	pre, closePre, err := newPreconditioner(opts.pre, a)
	if err != nil {
		return err
	}
	defer closePre()

	var (
		reg *prometheus.Registry
		rec krylov.Recorder
	)
	if opts.metricsFile != "" {
		reg = prometheus.NewRegistry()
		r, err := metrics.NewRecorder(reg)
		if err != nil {
			return err
		}
		rec = r
	}

	logger.Debug("solving", "method", opts.method, "pre", opts.pre, "n", n, "nnz", a.NNZ())
	res, err := solve(op, b, x0, pre, rec, opts)
	var bd *krylov.BreakdownError
	if err != nil && !errors.As(err, &bd) {
		return err
	}

	st := res.Stats
	attrs := []any{
		"method", st.Method,
		"iterations", st.Iterations,
		"residual", st.ResidualNorm,
		"converged", st.Converged,
		"matvec", st.MatVec,
		"psolve", st.PSolve,
		"runtime", st.Runtime,
	}
	if opts.rhs == "" {
		// b = A*1, so the exact solution is known.
		attrs = append(attrs, "error", floats.Distance(krylov.RawVector(res.X), ones, math.Inf(1)))
	}
	logger.Info("solve finished", attrs...)
	if bd == nil && !st.Converged {
		logger.Warn("iteration limit reached", "method", st.Method, "iterations", st.Iterations)
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if opts.plot != "" {
		if err := plotHistory(opts.plot, st); err != nil {
			return fmt.Errorf("plotting residual history: %w", err)
		}
	}
	if err := writeSolution(cmd.OutOrStdout(), opts.output, krylov.RawVector(res.X)); err != nil {
		return err
	}
	if bd != nil {
		return bd
	}
	return nil
}

func solve(op krylov.MatrixOps[float64], b *krylov.Dense[float64], x0 *krylov.Dense[float64], pre krylov.Operator[float64], rec krylov.Recorder, opts *solveOptions) (krylov.Result[float64], error) {
	var sol krylov.Vector[float64]
	if x0 != nil {
		sol = x0
	}
	switch opts.method {
	case "cg":
		o := krylov.DefaultCGOptions[float64]()
		o.Pre, o.Sol, o.Initialize = pre, sol, x0 == nil
		o.PrintRates, o.Logger, o.Recorder = opts.printRates, opts.logger, rec
		if opts.tol != 0 {
			o.Tol = opts.tol
		}
		if opts.maxSteps != 0 {
			o.MaxSteps = opts.maxSteps
		}
		return krylov.SolveCG[float64](op, b, o)
	case "qmr":
		o := krylov.DefaultQMROptions[float64]()
		o.Pre1, o.Sol, o.Initialize = pre, sol, x0 == nil
		o.PrintRates, o.Logger, o.Recorder = opts.printRates, opts.logger, rec
		if opts.tol != 0 {
			o.Tol = opts.tol
		}
		if opts.maxSteps != 0 {
			o.MaxSteps = opts.maxSteps
		}
		return krylov.SolveQMR[float64](op, b, o)
	case "minres":
		o := krylov.DefaultMinResOptions[float64]()
		o.Pre, o.Sol, o.Initialize = pre, sol, x0 == nil
		o.PrintRates, o.Logger, o.Recorder = opts.printRates, opts.logger, rec
		if opts.tol != 0 {
			o.Tol = opts.tol
		}
		if opts.maxSteps != 0 {
			o.MaxSteps = opts.maxSteps
		}
		return krylov.SolveMinRes[float64](op, b, o)
	}

	var method krylov.Method[float64]
	switch opts.method {
	case "bicg":
		method = &krylov.BiCG[float64]{}
	case "bicgstab":
		method = &krylov.BiCGSTAB[float64]{}
	case "gmres":
		if opts.restart < 0 || b.Len() < opts.restart {
			return krylov.Result[float64]{}, fmt.Errorf("invalid restart %d for dimension %d", opts.restart, b.Len())
		}
		method = &krylov.GMRES{Restart: opts.restart}
	default:
		return krylov.Result[float64]{}, fmt.Errorf("unknown method %q", opts.method)
	}
	return krylov.LinearSolve[float64](op, b, method, krylov.Settings[float64]{
		X0:            sol,
		Tolerance:     opts.tol,
		MaxIterations: opts.maxSteps,
		PSolve:        pre,
		PrintRates:    opts.printRates,
		Logger:        opts.logger,
		Recorder:      rec,
	})
}

func newPreconditioner(name string, a *triplet.Matrix[float64]) (krylov.Operator[float64], func(), error) {
	nop := func() {}
	switch name {
	case "", "none":
		return nil, nop, nil
	case "jacobi":
		p, err := precond.JacobiOf(a)
		if err != nil {
			return nil, nop, err
		}
		return p, nop, nil
	case "lu":
		p, err := precond.NewSparseLU(a)
		if err != nil {
			return nil, nop, err
		}
		return p, p.Close, nil
	case "cholesky":
		p, err := precond.CholeskyOf(a)
		if err != nil {
			return nil, nop, err
		}
		return p, nop, nil
	}
	return nil, nop, fmt.Errorf("unknown preconditioner %q", name)
}

func readMatrix(path string) (*triplet.Matrix[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, h, err := mmarket.ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if h.Rows != h.Cols {
		return nil, fmt.Errorf("%s: matrix is %d×%d, not square", path, h.Rows, h.Cols)
	}
	return m.Triplet(), nil
}

func readVector(path string, n int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := mmarket.ReadVector(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(v) != n {
		return nil, fmt.Errorf("%s: vector has length %d, want %d", path, len(v), n)
	}
	return v, nil
}

func writeSolution(stdout io.Writer, path string, x []float64) error {
	if path == "" {
		return mmarket.WriteVector(stdout, x)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mmarket.WriteVector(f, x); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
