// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package krylov provides preconditioned Krylov subspace methods for solving
// linear systems
//
//	A x = b,
//
// where A is available only as a linear operator.
//
// The methods work on any vector type implementing Vector and any operator
// implementing Operator. Dense is a slice-backed Vector for float64 and
// complex128 fields.
//
// CG solves symmetric (Hermitian) positive definite systems, MinRes symmetric
// indefinite systems and QMR general systems. BiCG, BiCGSTAB and GMRES are
// provided for general systems as well.
package krylov

// Operation specifies the type of operation.
type Operation uint64

// Operations commanded by Method.Iterate.
const (
	NoOperation Operation = 0

	// Multiply A*x where x is stored
	// in Context.Src and the result will
	// be stored in Context.Dst.
	MatVec Operation = 1 << (iota - 1)

	// Multiply A^T*x where x is stored
	// in Context.Src and the result will
	// be stored in Context.Dst.
	MatTransVec

	// Apply the (left) preconditioner
	//
	//	z = M^{-1} r,
	//
	// where r is stored in Context.Src,
	// and store z in Context.Dst.
	PSolve

	// Apply the transposed (left)
	// preconditioner
	//
	//	z = M^{-T} r,
	//
	// where r is stored in Context.Src,
	// and store z in Context.Dst.
	PSolveTrans

	// Apply the right preconditioner.
	// Only methods with two-sided
	// preconditioning (QMR) use it.
	RightPSolve

	// Apply the transposed right
	// preconditioner.
	RightPSolveTrans

	// Compute b - A*x where x is stored
	// in Context.X and store the result
	// into Context.Residual.
	ComputeResidual

	// Compute the norm of
	// Context.Residual using
	// Settings.ResidualNorm, store it in
	// Context.ResidualNorm and check
	// convergence.
	CheckResidual

	// Check convergence using the norm
	// stored by Method in
	// Context.ResidualNorm.
	// If convergence is detected,
	// Context.Converged must be set to
	// true before calling Method.Iterate
	// again.
	CheckResidualNorm

	// EndIteration indicates that Method
	// has finished what it considers to
	// be one iteration. It can be used
	// to update an iteration counter. If
	// Context.Converged is true, the
	// iterative process must be
	// terminated, and Method.Init must
	// be called before calling
	// Method.Iterate again.
	EndIteration

	// Finish indicates that Method has
	// terminated without completing an
	// iteration because the current
	// approximation in Context.X is
	// already acceptable. Method.Init
	// must be called before calling
	// Method.Iterate again.
	Finish
)

var opNames = map[Operation]string{
	NoOperation:       "NoOperation",
	MatVec:            "MatVec",
	MatTransVec:       "MatTransVec",
	PSolve:            "PSolve",
	PSolveTrans:       "PSolveTrans",
	RightPSolve:       "RightPSolve",
	RightPSolveTrans:  "RightPSolveTrans",
	ComputeResidual:   "ComputeResidual",
	CheckResidual:     "CheckResidual",
	CheckResidualNorm: "CheckResidualNorm",
	EndIteration:      "EndIteration",
	Finish:            "Finish",
}

func (op Operation) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "Operation(invalid)"
}

// Method is an iterative method that produces a sequence of vectors converging
// to the vector x satisfying a system of linear equations
//
//	A x = b,
//
// where A is non-singular dim×dim matrix, and x and b are vectors of dimension
// dim.
//
// Method uses a reverse-communication interface between the iterative algorithm
// and the caller. Method acts as a client that commands the caller to perform
// needed operations via Operation returned from Iterate methods. This provides
// independence of Method on representation of the matrix A, and enables
// automation of common operations like checking for convergence and maintaining
// statistics.
type Method[T Scalar] interface {
	// Init initializes the method for solving a linear system whose
	// vectors are compatible with like. Scratch vectors are created
	// with like.NewVector.
	Init(like Vector[T])

	// Iterate retrieves data from Context, updates it, and returns the next
	// operation. The caller must perform the Operation using data in
	// Context, and depending on the state call Iterate again.
	Iterate(*Context[T]) (Operation, error)
}

// Context mediates the communication between a Method and the caller. It must
// not be modified or accessed apart from the commanded Operations.
type Context[T Scalar] struct {
	// X is the current approximate solution. On the first call to
	// Method.Iterate, X must contain the initial estimate. Method must
	// update X with the current estimate when it commands ComputeResidual
	// and EndIteration.
	X Vector[T]
	// Residual is the current residual b-A*x. On the first call to
	// Method.Iterate, Residual must contain the initial residual.
	Residual Vector[T]
	// ResidualNorm is (an estimate of) the norm of the current residual.
	// Method must update it when it commands CheckResidualNorm. It does
	// not have to be equal to the norm of Residual, some methods (e.g.,
	// MinRes) can estimate the residual norm without forming the residual
	// itself, and some (e.g., CG) report a relative norm.
	ResidualNorm float64
	// Converged indicates to Method that the ResidualNorm satisfies the
	// stopping criterion as a result of CheckResidual and
	// CheckResidualNorm operations.
	// If a Method commands EndIteration with Converged true, the caller
	// must not call Method.Iterate again without calling Method.Init first.
	Converged bool

	// Src and Dst are the source and destination vectors for various
	// Operations.
	Src, Dst Vector[T]
}
