// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

// Operator is a linear operator, for example the matrix of a linear system
// or a preconditioner.
type Operator[T Scalar] interface {
	// Apply computes A*x and stores the result into dst.
	// dst and x must not be the same vector.
	Apply(dst, x Vector[T])
}

// Transposer is an Operator that can also be applied transposed.
type Transposer[T Scalar] interface {
	Operator[T]

	// ApplyTrans computes A^T*x and stores the result into dst.
	ApplyTrans(dst, x Vector[T])
}

// MatrixOps describes the matrix of the
// linear system in terms of A*x and A^T*x
// operations on the backing slices of Dense
// vectors.
type MatrixOps[T Scalar] struct {
	// Compute A*x and store the result
	// into dst.
	// It must be non-nil.
	MatVec func(dst, x []T)

	// Compute A^T*x and store the result
	// into dst.
	// If the matrix is symmetric and a
	// solver for symmetric systems is
	// used (like CG), MatTransVec can be
	// nil.
	MatTransVec func(dst, x []T)
}

func (m MatrixOps[T]) Apply(dst, x Vector[T]) {
	if m.MatVec == nil {
		panic("krylov: nil matrix-vector multiplication")
	}
	m.MatVec(RawVector(dst), RawVector(x))
}

func (m MatrixOps[T]) ApplyTrans(dst, x Vector[T]) {
	if m.MatTransVec == nil {
		panic("krylov: nil transposed matrix-vector multiplication")
	}
	m.MatTransVec(RawVector(dst), RawVector(x))
}

// OperatorFunc adapts a function to the Operator interface.
type OperatorFunc[T Scalar] func(dst, x Vector[T])

func (f OperatorFunc[T]) Apply(dst, x Vector[T]) { f(dst, x) }

// Identity is the identity operator.
type Identity[T Scalar] struct{}

func (Identity[T]) Apply(dst, x Vector[T])      { dst.CopyFrom(x) }
func (Identity[T]) ApplyTrans(dst, x Vector[T]) { dst.CopyFrom(x) }

// Symmetric returns a Transposer that applies op for both A*x and A^T*x.
// The caller asserts that op is symmetric.
func Symmetric[T Scalar](op Operator[T]) Transposer[T] {
	return symmetric[T]{op}
}

type symmetric[T Scalar] struct {
	Operator[T]
}

func (s symmetric[T]) ApplyTrans(dst, x Vector[T]) { s.Apply(dst, x) }

// Transpose returns the transpose of op.
func Transpose[T Scalar](op Transposer[T]) Transposer[T] {
	if t, ok := op.(transpose[T]); ok {
		return t.op
	}
	return transpose[T]{op}
}

type transpose[T Scalar] struct {
	op Transposer[T]
}

func (t transpose[T]) Apply(dst, x Vector[T])      { t.op.ApplyTrans(dst, x) }
func (t transpose[T]) ApplyTrans(dst, x Vector[T]) { t.op.Apply(dst, x) }

// Product returns the operator a*b. If both a and b are Transposers, so is
// the product. The returned operator keeps a scratch vector and must not be
// used concurrently.
func Product[T Scalar](a, b Operator[T]) Operator[T] {
	p := &product[T]{a: a, b: b}
	at, aok := a.(Transposer[T])
	bt, bok := b.(Transposer[T])
	if aok && bok {
		return &productTrans[T]{product: p, at: at, bt: bt}
	}
	return p
}

type product[T Scalar] struct {
	a, b Operator[T]
	tmp  Vector[T]
}

func (p *product[T]) Apply(dst, x Vector[T]) {
	p.tmp = reuse(p.tmp, x)
	p.b.Apply(p.tmp, x)
	p.a.Apply(dst, p.tmp)
}

type productTrans[T Scalar] struct {
	*product[T]
	at, bt Transposer[T]
}

// (a*b)^T = b^T * a^T.
func (p *productTrans[T]) ApplyTrans(dst, x Vector[T]) {
	p.tmp = reuse(p.tmp, x)
	p.at.ApplyTrans(p.tmp, x)
	p.bt.ApplyTrans(dst, p.tmp)
}

// Sum returns the operator a+b. If both a and b are Transposers, so is the
// sum. The returned operator keeps a scratch vector and must not be used
// concurrently.
func Sum[T Scalar](a, b Operator[T]) Operator[T] {
	s := &sum[T]{a: a, b: b}
	at, aok := a.(Transposer[T])
	bt, bok := b.(Transposer[T])
	if aok && bok {
		return &sumTrans[T]{sum: s, at: at, bt: bt}
	}
	return s
}

type sum[T Scalar] struct {
	a, b Operator[T]
	tmp  Vector[T]
}

func (s *sum[T]) Apply(dst, x Vector[T]) {
	s.tmp = reuse(s.tmp, x)
	s.a.Apply(dst, x)
	s.b.Apply(s.tmp, x)
	dst.AddScaled(1, s.tmp)
}

type sumTrans[T Scalar] struct {
	*sum[T]
	at, bt Transposer[T]
}

func (s *sumTrans[T]) ApplyTrans(dst, x Vector[T]) {
	s.tmp = reuse(s.tmp, x)
	s.at.ApplyTrans(dst, x)
	s.bt.ApplyTrans(s.tmp, x)
	dst.AddScaled(1, s.tmp)
}

// Scaled returns the operator alpha*op. If op is a Transposer, so is the
// result.
func Scaled[T Scalar](alpha T, op Operator[T]) Operator[T] {
	if t, ok := op.(Transposer[T]); ok {
		return scaledTrans[T]{scaled: scaled[T]{alpha, op}, t: t}
	}
	return scaled[T]{alpha, op}
}

type scaled[T Scalar] struct {
	alpha T
	op    Operator[T]
}

func (s scaled[T]) Apply(dst, x Vector[T]) {
	s.op.Apply(dst, x)
	dst.Scale(s.alpha)
}

type scaledTrans[T Scalar] struct {
	scaled[T]
	t Transposer[T]
}

func (s scaledTrans[T]) ApplyTrans(dst, x Vector[T]) {
	s.t.ApplyTrans(dst, x)
	dst.Scale(s.alpha)
}

// reuse returns v if it is compatible with like, otherwise a new vector.
func reuse[T Scalar](v, like Vector[T]) Vector[T] {
	if v == nil || v.Len() != like.Len() {
		return like.NewVector()
	}
	return v
}
