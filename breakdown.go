// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"errors"
	"fmt"
)

// ErrNoTranspose is returned by LinearSolve when a Method commands a
// transposed operation on an operator that does not implement Transposer.
var ErrNoTranspose = errors.New("krylov: operator does not support transposed application")

// BreakdownKind identifies the recurrence quantity whose vanishing stopped
// a method.
type BreakdownKind int

const (
	RhoZero BreakdownKind = iota + 1
	XiZero
	DeltaZero
	EpsilonZero
	BetaZero
	GammaZero
	// AlphaZero: the rotated diagonal of the MinRes tridiagonal
	// factorization vanished.
	AlphaZero
	// CurvatureZero: s·As vanished in CG.
	CurvatureZero
	OmegaZero
)

var breakdownNames = [...]string{
	RhoZero:       "rho",
	XiZero:        "xi",
	DeltaZero:     "delta",
	EpsilonZero:   "epsilon",
	BetaZero:      "beta",
	GammaZero:     "gamma",
	AlphaZero:     "alpha",
	CurvatureZero: "curvature",
	OmegaZero:     "omega",
}

// String returns the name of the vanished quantity.
func (k BreakdownKind) String() string {
	if k <= 0 || int(k) >= len(breakdownNames) {
		return fmt.Sprintf("BreakdownKind(%d)", int(k))
	}
	return breakdownNames[k]
}

// BreakdownError reports that a quantity used as a divisor by an iterative
// method became zero. The approximate solution at the time of the breakdown
// is still returned by LinearSolve.
type BreakdownError struct {
	// Method is the name of the method, if known.
	Method string
	// Kind is the quantity that vanished.
	Kind BreakdownKind
	// Iteration is the 1-based index of the iteration in which the
	// breakdown was detected.
	Iteration int
}

func (e *BreakdownError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("krylov: breakdown in %v at iteration %d", e.Kind, e.Iteration)
	}
	return fmt.Sprintf("krylov: %s breakdown in %v at iteration %d", e.Method, e.Kind, e.Iteration)
}

func breakdown(method string, kind BreakdownKind, iter int) error {
	return &BreakdownError{Method: method, Kind: kind, Iteration: iter}
}
