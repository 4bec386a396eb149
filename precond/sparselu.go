// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package precond

import (
	"fmt"

	"github.com/edp1096/sparse"

	"github.com/numerics/krylov"
)

// SparseLU is the exact preconditioner M = A backed by a sparse LU
// factorization. It is mainly useful as a reference and for small systems.
//
// The factorization of A^T needed by ApplyTrans is computed on first use.
// SparseLU must not be used concurrently and should be released with Close.
type SparseLU struct {
	n       int
	entries []entry

	lu, luT *luFactor
}

type entry struct {
	i, j int
	v    float64
}

type luFactor struct {
	m   *sparse.Matrix
	rhs []float64
}

// NewSparseLU factorizes a.
func NewSparseLU(a Sparse) (*SparseLU, error) {
	p := &SparseLU{n: square(a)}
	a.DoNonZero(func(i, j int, v float64) {
		p.entries = append(p.entries, entry{i, j, v})
	})
	var err error
	p.lu, err = p.factor(false)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SparseLU) factor(trans bool) (*luFactor, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}
	m, err := sparse.Create(int64(p.n), config)
	if err != nil {
		return nil, fmt.Errorf("precond: creating sparse matrix: %w", err)
	}
	// sparse uses 1-based indices.
	for _, e := range p.entries {
		i, j := e.i, e.j
		if trans {
			i, j = j, i
		}
		m.GetElement(int64(i+1), int64(j+1)).Real += e.v
	}
	if err := m.Factor(); err != nil {
		m.Destroy()
		return nil, fmt.Errorf("precond: LU factorization failed: %w", err)
	}
	return &luFactor{m: m, rhs: make([]float64, p.n+1)}, nil
}

func (f *luFactor) solve(dst, x []float64) {
	copy(f.rhs[1:], x)
	sol, err := f.m.Solve(f.rhs)
	if err != nil {
		panic(fmt.Sprintf("precond: LU solve failed: %v", err))
	}
	copy(dst, sol[1:len(dst)+1])
}

func (p *SparseLU) Apply(dst, x krylov.Vector[float64]) {
	p.lu.solve(p.raw(dst), p.raw(x))
}

// ApplyTrans applies A^{-T}.
func (p *SparseLU) ApplyTrans(dst, x krylov.Vector[float64]) {
	if p.luT == nil {
		luT, err := p.factor(true)
		if err != nil {
			panic(err)
		}
		p.luT = luT
	}
	p.luT.solve(p.raw(dst), p.raw(x))
}

func (p *SparseLU) raw(v krylov.Vector[float64]) []float64 {
	s := krylov.RawVector(v)
	if len(s) != p.n {
		panic("precond: dimension mismatch")
	}
	return s
}

// Close releases the factorizations.
func (p *SparseLU) Close() {
	for _, f := range []*luFactor{p.lu, p.luT} {
		if f != nil {
			f.m.Destroy()
		}
	}
	p.lu, p.luT = nil, nil
}
