// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/numerics/krylov/internal/mmarket"
	"github.com/numerics/krylov/internal/triplet"
)

type testCase struct {
	name  string
	n     int
	a     MatrixOps[float64]
	iters int
	tol   float64
}

// randomSPD returns a random symmetric positive definite matrix that is
// strictly diagonally dominant.
func randomSPD(n int, rnd *rand.Rand) testCase {
	a := make([]float64, n*n)
	lda := n
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a[i*lda+j] = rnd.Float64()
		}
	}
	for i := 0; i < n; i++ {
		a[i*lda+i] += float64(n)
	}
	bi := blas64.Implementation()
	matvec := func(dst, x []float64) {
		bi.Dsymv(blas.Upper, n, 1, a, lda, x, 1, 0, dst, 1)
	}
	return testCase{
		name:  fmt.Sprintf("randomSPD-%d", n),
		n:     n,
		a:     MatrixOps[float64]{MatVec: matvec, MatTransVec: matvec},
		iters: 4 * n,
		tol:   1e-10,
	}
}

// randomNonsym returns a random non-symmetric matrix that is strictly
// diagonally dominant.
func randomNonsym(n int, rnd *rand.Rand) testCase {
	a := make([]float64, n*n)
	lda := n
	for i := range a {
		a[i] = rnd.Float64() - 0.5
	}
	for i := 0; i < n; i++ {
		a[i*lda+i] += float64(n)
	}
	bi := blas64.Implementation()
	return testCase{
		name: fmt.Sprintf("randomNonsym-%d", n),
		n:    n,
		a: MatrixOps[float64]{
			MatVec: func(dst, x []float64) {
				bi.Dgemv(blas.NoTrans, n, n, 1, a, lda, x, 1, 0, dst, 1)
			},
			MatTransVec: func(dst, x []float64) {
				bi.Dgemv(blas.Trans, n, n, 1, a, lda, x, 1, 0, dst, 1)
			},
		},
		iters: 4 * n,
		tol:   1e-10,
	}
}

// randomIndefinite returns a random symmetric matrix whose diagonal
// alternates between n and -n, so that it has eigenvalues of both signs
// bounded away from zero.
func randomIndefinite(n int, rnd *rand.Rand) testCase {
	a := make([]float64, n*n)
	lda := n
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a[i*lda+j] = rnd.Float64() - 0.5
		}
		a[i*lda+i] = float64(n)
		if i%2 == 1 {
			a[i*lda+i] = -float64(n)
		}
	}
	bi := blas64.Implementation()
	matvec := func(dst, x []float64) {
		bi.Dsymv(blas.Upper, n, 1, a, lda, x, 1, 0, dst, 1)
	}
	return testCase{
		name:  fmt.Sprintf("randomIndefinite-%d", n),
		n:     n,
		a:     MatrixOps[float64]{MatVec: matvec, MatTransVec: matvec},
		iters: 4 * n,
		tol:   1e-10,
	}
}

// market returns the matrix stored in testdata/name.mtx.
func market(name string, tol float64) testCase {
	f, err := os.Open(filepath.Join("testdata", name+".mtx"))
	if err != nil {
		panic(err)
	}
	defer f.Close()
	m, h, err := mmarket.ReadMatrix(f)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	t := m.Triplet()
	return testCase{
		name:  name,
		n:     h.Rows,
		a:     MatrixOps[float64]{MatVec: t.MulVec, MatTransVec: t.MulTransVec},
		iters: 10 * h.Rows,
		tol:   tol,
	}
}

// laplacian returns the n×n tridiagonal matrix with 2 on the diagonal and -1
// off it.
func laplacian(n int) *triplet.Matrix[float64] {
	a := triplet.New[float64](n, n)
	for i := 0; i < n; i++ {
		a.Append(i, i, 2)
		if i > 0 {
			a.Append(i, i-1, -1)
			a.Append(i-1, i, -1)
		}
	}
	return a
}

// rhs returns b = A*[1,1,...,1] and the solution [1,1,...,1].
func rhs(a Operator[float64], n int) (b, want *Dense[float64]) {
	want = NewDense[float64](n)
	for i := range want.data {
		want.data[i] = 1
	}
	b = NewDense[float64](n)
	a.Apply(b, want)
	return b, want
}
