// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"log/slog"
	"math"
)

// CGOptions configures SolveCG.
type CGOptions[T Scalar] struct {
	// Pre is the preconditioner. Nil means the identity.
	Pre Operator[T]
	// Sol receives the solution in place. If it is nil, a new vector is
	// allocated.
	Sol Vector[T]
	// Tol is the tolerance relative to the initial preconditioned
	// residual. If it is zero, only an exactly vanishing residual ends
	// the iteration early.
	Tol float64
	// MaxSteps is the iteration limit. If it is zero, no iterations are
	// done and the initial guess is returned.
	MaxSteps int
	// PrintRates logs the residual after every iteration.
	PrintRates bool
	// Initialize zeroes Sol before iterating. If it is false, the
	// contents of Sol are the initial guess.
	Initialize bool
	// Conjugate selects the Hermitian inner product.
	Conjugate bool

	Logger   *slog.Logger
	Recorder Recorder
}

// DefaultCGOptions returns the default CG configuration.
func DefaultCGOptions[T Scalar]() CGOptions[T] {
	return CGOptions[T]{
		Tol:        1e-12,
		MaxSteps:   100,
		Initialize: true,
	}
}

// SolveCG solves mat*u = rhs with the preconditioned conjugate gradient
// method. The result holds the last iterate even if the iteration limit was
// reached.
func SolveCG[T Scalar](mat Operator[T], rhs Vector[T], opts CGOptions[T]) (Result[T], error) {
	return LinearSolve(mat, rhs, &CG[T]{Conjugate: opts.Conjugate}, Settings[T]{
		X0:            initialGuess(opts.Sol, opts.Initialize),
		Tolerance:     tolerance(opts.Tol),
		MaxIterations: maxSteps(opts.MaxSteps),
		PSolve:        opts.Pre,
		PrintRates:    opts.PrintRates,
		Logger:        opts.Logger,
		Recorder:      opts.Recorder,
	})
}

// QMROptions configures SolveQMR.
type QMROptions[T Scalar] struct {
	// Pre1 is the left preconditioner and Pre2 the right one. Nil means
	// the identity. Non-nil preconditioners must implement Transposer.
	Pre1, Pre2 Operator[T]
	// FreeDofs restricts the residual norm of the stopping test to the
	// given indices. Nil means all indices.
	FreeDofs FreeDofs[T]
	// Sol receives the solution in place. If it is nil, a new vector is
	// allocated.
	Sol Vector[T]
	// MaxSteps is the iteration limit. If it is zero, no iterations are
	// done and the initial guess is returned.
	MaxSteps int
	// PrintRates logs the residual after every iteration.
	PrintRates bool
	// Initialize zeroes Sol before iterating. If it is false, the
	// contents of Sol are the initial guess.
	Initialize bool
	// Ep is the initial value of ε.
	Ep T
	// Tol is the absolute tolerance on the (restricted) residual norm.
	// If it is zero, only an exactly vanishing residual ends the
	// iteration early.
	Tol float64

	Logger   *slog.Logger
	Recorder Recorder
}

// DefaultQMROptions returns the default QMR configuration.
func DefaultQMROptions[T Scalar]() QMROptions[T] {
	return QMROptions[T]{
		MaxSteps:   100,
		Initialize: true,
		Ep:         1,
		Tol:        1e-7,
	}
}

// SolveQMR solves mat*u = rhs with the quasi-minimal residual method. mat
// must implement Transposer. On breakdown the iterate reached so far is
// returned together with a *BreakdownError.
func SolveQMR[T Scalar](mat Operator[T], rhs Vector[T], opts QMROptions[T]) (Result[T], error) {
	var rn Norm[T]
	if opts.FreeDofs != nil {
		rn = opts.FreeDofs
	}
	return LinearSolve(mat, rhs, &QMR[T]{Epsilon: opts.Ep}, Settings[T]{
		X0:            initialGuess(opts.Sol, opts.Initialize),
		Tolerance:     tolerance(opts.Tol),
		MaxIterations: maxSteps(opts.MaxSteps),
		PSolve:        opts.Pre1,
		RightPSolve:   opts.Pre2,
		ResidualNorm:  rn,
		PrintRates:    opts.PrintRates,
		Logger:        opts.Logger,
		Recorder:      opts.Recorder,
	})
}

// MinResOptions configures SolveMinRes.
type MinResOptions[T Scalar] struct {
	// Pre is the symmetric positive definite preconditioner. Nil means
	// the identity.
	Pre Operator[T]
	// Sol receives the solution in place. If it is nil, a new vector is
	// allocated.
	Sol Vector[T]
	// MaxSteps is the iteration limit. If it is zero, no iterations are
	// done and the initial guess is returned.
	MaxSteps int
	// PrintRates logs the residual after every iteration.
	PrintRates bool
	// Initialize zeroes Sol before iterating. If it is false, the
	// contents of Sol are the initial guess.
	Initialize bool
	// Tol is the absolute tolerance on the preconditioned residual norm.
	// If it is zero, only an exactly vanishing residual ends the
	// iteration early.
	Tol float64

	Logger   *slog.Logger
	Recorder Recorder
}

// DefaultMinResOptions returns the default MinRes configuration.
func DefaultMinResOptions[T Scalar]() MinResOptions[T] {
	return MinResOptions[T]{
		MaxSteps:   100,
		Initialize: true,
		Tol:        1e-7,
	}
}

// SolveMinRes solves mat*u = rhs for symmetric mat with the minimal residual
// method.
func SolveMinRes[T Scalar](mat Operator[T], rhs Vector[T], opts MinResOptions[T]) (Result[T], error) {
	return LinearSolve(mat, rhs, &MinRes[T]{}, Settings[T]{
		X0:            initialGuess(opts.Sol, opts.Initialize),
		Tolerance:     tolerance(opts.Tol),
		MaxIterations: maxSteps(opts.MaxSteps),
		PSolve:        opts.Pre,
		PrintRates:    opts.PrintRates,
		Logger:        opts.Logger,
		Recorder:      opts.Recorder,
	})
}

func initialGuess[T Scalar](sol Vector[T], initialize bool) Vector[T] {
	if sol != nil && initialize {
		sol.Zero()
	}
	return sol
}

// tolerance maps a zero tolerance, which Settings would replace by its
// default, to the smallest positive one.
func tolerance(tol float64) float64 {
	if tol == 0 {
		return math.SmallestNonzeroFloat64
	}
	return tol
}

// maxSteps maps a zero iteration limit, which Settings would replace by its
// default, to a negative one.
func maxSteps(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}
