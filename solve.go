// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Settings holds various settings for
// solving a linear system.
type Settings[T Scalar] struct {
	// X0 is an initial guess.
	// If it is nil, the zero vector will
	// be used and a new vector is
	// allocated for the solution.
	// If it is not nil, the length of X0
	// must be equal to the dimension of
	// the system and X0 is overwritten
	// by the approximate solution.
	X0 Vector[T]

	// Tolerance specifies the bound on
	// the residual norm reported by the
	// Method. Whether it is relative or
	// absolute depends on the Method.
	// It must not be negative.
	Tolerance float64

	// MaxIterations is the limit on the
	// number of iterations.
	// If it is zero, it will be set to
	// twice the dimension of the system.
	// If it is negative, no iterations
	// are done and the initial guess is
	// returned with Stats.ResidualNorm
	// set to the ResidualNorm of the
	// initial residual.
	MaxIterations int

	// PSolve is the (left) preconditioner
	// M^{-1}. If it is nil, no
	// preconditioning will be used (M is
	// the identity). Methods that command
	// PSolveTrans need a Transposer.
	PSolve Operator[T]

	// RightPSolve is the right
	// preconditioner of methods with
	// two-sided preconditioning. If it is
	// nil, the identity is used.
	RightPSolve Operator[T]

	// ResidualNorm is the norm used by
	// CheckResidual. If it is nil, the
	// Euclidean norm is used.
	ResidualNorm Norm[T]

	// PrintRates enables logging of the
	// residual norm after every
	// iteration.
	PrintRates bool

	// Logger receives iteration and
	// breakdown messages. If it is nil
	// and PrintRates is true,
	// slog.Default() is used.
	Logger *slog.Logger

	// Recorder, if not nil, receives the
	// statistics of the solve.
	Recorder Recorder
}

func defaultSettings[T Scalar](s *Settings[T], dim int) {
	if s.Tolerance == 0 {
		s.Tolerance = 1e-8
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = 2 * dim
	}
	if s.ResidualNorm == nil {
		s.ResidualNorm = Euclidean[T]{}
	}
	if s.Logger == nil && s.PrintRates {
		s.Logger = slog.Default()
	}
}

// Recorder records the outcome of solves, for example as metrics.
type Recorder interface {
	Record(stats Stats, err error)
}

// Result holds the result of an iterative solve.
type Result[T Scalar] struct {
	// X is the approximate solution.
	X Vector[T]
	// Stats holds the statistics of the
	// solve.
	Stats Stats
}

// Stats holds statistics about an iterative solve.
type Stats struct {
	// Method is the name of the method.
	Method string
	// Iterations is the number of
	// iteration done by Method.
	Iterations int
	// MatVec is the number of MatVec and
	// MatTransVec operations commanded
	// by a Method.
	MatVec int
	// PSolve is the number of
	// preconditioner applications. Nil
	// preconditioners are not counted.
	PSolve int
	// ResidualNorm is the final norm of
	// the residual as reported by the
	// Method.
	ResidualNorm float64
	// Converged is true if the stopping
	// criterion was satisfied.
	Converged bool
	// History holds the residual norm
	// after each iteration.
	History []float64
	// StartTime is an approximate time
	// when the solve was started.
	StartTime time.Time
	// Runtime is an approximate duration
	// of the solve.
	Runtime time.Duration
}

// LinearSolve solves the system of n linear equations
//
//	A*x = b,
//
// where the n×n matrix A is represented by the operator a.
// The dimension of the problem n is determined by the length of b.
//
// method is an iterative method used for finding an approximate solution of the
// linear system. It must not be nil. The operators must provide what the
// method needs, e.g. Transposer for methods that command MatTransVec.
//
// settings provide means for adjusting the iterative process. Zero values of
// the fields mean default values.
//
// If the iteration limit is reached before convergence, the last
// approximation is returned with Stats.Converged false and a nil error. If
// the method breaks down, the approximation at the time of the breakdown is
// returned together with a *BreakdownError.
func LinearSolve[T Scalar](a Operator[T], b Vector[T], method Method[T], settings Settings[T]) (Result[T], error) {
	stats := Stats{Method: methodName(method), StartTime: time.Now()}

	dim := b.Len()
	if a == nil {
		panic("krylov: nil operator")
	}
	if method == nil {
		panic("krylov: nil method")
	}
	if settings.X0 != nil && settings.X0.Len() != dim {
		panic("krylov: mismatched length of initial guess")
	}
	if settings.Tolerance < 0 {
		panic("krylov: invalid tolerance")
	}

	x := settings.X0
	if x == nil {
		x = b.NewVector()
	}

	defaultSettings(&settings, dim)

	ctx := &Context[T]{X: x}
	var err error
	if dim == 0 {
		stats.Converged = true
	} else {
		ctx.Residual = b.NewVector()
		if settings.X0 != nil {
			a.Apply(ctx.Residual, ctx.X)
			stats.MatVec++
			ctx.Residual.Scale(-1)
			ctx.Residual.AddScaled(1, b) // r = b - Ax
		} else {
			ctx.Residual.CopyFrom(b) // r = b
		}

		switch {
		case norm(ctx.Residual) == 0:
			stats.Converged = true
		case settings.MaxIterations < 0:
			stats.ResidualNorm = settings.ResidualNorm.Norm(ctx.Residual)
		default:
			err = iterate(a, b, ctx, settings, method, &stats)
		}
	}

	stats.Runtime = time.Since(stats.StartTime)
	if settings.Recorder != nil {
		settings.Recorder.Record(stats, err)
	}
	return Result[T]{
		X:     ctx.X,
		Stats: stats,
	}, err
}

func iterate[T Scalar](a Operator[T], b Vector[T], ctx *Context[T], settings Settings[T], method Method[T], stats *Stats) error {
	logger := settings.Logger

	method.Init(b)

	for {
		op, err := method.Iterate(ctx)
		if err != nil {
			var bd *BreakdownError
			if errors.As(err, &bd) {
				if bd.Method == "" {
					bd.Method = stats.Method
				}
				if logger != nil {
					logger.Warn("breakdown", "method", stats.Method, "quantity", bd.Kind.String(), "it", bd.Iteration)
				}
			}
			stats.ResidualNorm = ctx.ResidualNorm
			return err
		}

		switch op {
		case NoOperation:

		case ComputeResidual:
			a.Apply(ctx.Residual, ctx.X)
			stats.MatVec++
			ctx.Residual.Scale(-1)
			ctx.Residual.AddScaled(1, b) // r = b - Ax

		case MatVec:
			a.Apply(ctx.Dst, ctx.Src)
			stats.MatVec++

		case MatTransVec:
			if err := applyTrans(a, ctx.Dst, ctx.Src); err != nil {
				return err
			}
			stats.MatVec++

		case PSolve, PSolveTrans, RightPSolve, RightPSolveTrans:
			pre := settings.PSolve
			if op == RightPSolve || op == RightPSolveTrans {
				pre = settings.RightPSolve
			}
			if pre == nil {
				ctx.Dst.CopyFrom(ctx.Src)
				continue
			}
			if op == PSolve || op == RightPSolve {
				pre.Apply(ctx.Dst, ctx.Src)
			} else if err := applyTrans(pre, ctx.Dst, ctx.Src); err != nil {
				return err
			}
			stats.PSolve++

		case CheckResidual:
			ctx.ResidualNorm = settings.ResidualNorm.Norm(ctx.Residual)
			ctx.Converged = ctx.ResidualNorm <= settings.Tolerance

		case CheckResidualNorm:
			ctx.Converged = ctx.ResidualNorm <= settings.Tolerance

		case EndIteration:
			stats.Iterations++
			stats.ResidualNorm = ctx.ResidualNorm
			stats.History = append(stats.History, ctx.ResidualNorm)
			if settings.PrintRates {
				logger.Info("iteration", "method", stats.Method, "it", stats.Iterations, "err", ctx.ResidualNorm)
			}
			if ctx.Converged {
				stats.Converged = true
				return nil
			}
			if stats.Iterations == settings.MaxIterations {
				return nil
			}

		case Finish:
			stats.ResidualNorm = ctx.ResidualNorm
			stats.Converged = true
			return nil

		default:
			panic(fmt.Sprintf("krylov: invalid operation %v", op))
		}
	}
}

func applyTrans[T Scalar](op Operator[T], dst, src Vector[T]) error {
	t, ok := op.(Transposer[T])
	if !ok {
		return fmt.Errorf("%w: %T", ErrNoTranspose, op)
	}
	t.ApplyTrans(dst, src)
	return nil
}

func methodName(m any) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
