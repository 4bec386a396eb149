// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/numerics/krylov/internal/mmarket"
)

var (
	spd    = filepath.Join("..", "..", "testdata", "lap2d_6.mtx")
	nonsym = filepath.Join("..", "..", "testdata", "convdiff_30.mtx")

	// errorAttr matches the distance to the exact solution in the text log.
	errorAttr = regexp.MustCompile(`msg="solve finished".* error=(\S+)`)
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errb.String(), err
}

func requireOnes(t *testing.T, out string, n int, delta float64) {
	t.Helper()
	x, err := mmarket.ReadVector(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, x, n)
	for i, v := range x {
		require.InDelta(t, 1, v, delta, "element %d", i)
	}
}

func TestSolveMethods(t *testing.T) {
	for _, method := range []string{"cg", "qmr", "minres", "bicg", "bicgstab", "gmres"} {
		for _, pre := range []string{"none", "jacobi", "lu", "cholesky"} {
			t.Run(method+"/"+pre, func(t *testing.T) {
				out, stderr, err := execute(t, "solve", "--matrix", spd, "--method", method, "--pre", pre, "--tol", "1e-10")
				require.NoError(t, err, stderr)
				require.Contains(t, stderr, "converged=true")
				requireOnes(t, out, 36, 1e-6)
				m := errorAttr.FindStringSubmatch(stderr)
				require.NotNil(t, m, stderr)
				e, err := strconv.ParseFloat(m[1], 64)
				require.NoError(t, err)
				require.Less(t, e, 1e-6)
			})
		}
	}
}

func TestSolveNonsymmetric(t *testing.T) {
	for _, method := range []string{"qmr", "bicg", "bicgstab", "gmres"} {
		out, stderr, err := execute(t, "solve", "--matrix", nonsym, "--method", method, "--pre", "jacobi", "--tol", "1e-11", "--maxsteps", "300")
		require.NoError(t, err, "%s: %s", method, stderr)
		requireOnes(t, out, 30, 1e-6)
	}
}

func TestSolveFiles(t *testing.T) {
	dir := t.TempDir()
	rhs := filepath.Join(dir, "b.mtx")
	guess := filepath.Join(dir, "x0.mtx")
	output := filepath.Join(dir, "x.mtx")
	png := filepath.Join(dir, "history.png")
	prom := filepath.Join(dir, "krylov.prom")

	ones := make([]float64, 36)
	for i := range ones {
		ones[i] = 1
	}

	// The exact solution of the default system as initial guess.
	writeVector(t, guess, ones)
	_, _, err := execute(t, "solve", "--matrix", spd, "--initial-guess", guess, "--output", output)
	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	requireOnes(t, string(data), 36, 0)

	// b = 2*A*1 has the solution 2.
	f, err := os.Open(spd)
	require.NoError(t, err)
	m, _, err := mmarket.ReadMatrix(f)
	f.Close()
	require.NoError(t, err)
	b := make([]float64, 36)
	m.MulVec(b, ones)
	for i := range b {
		b[i] *= 2
	}
	writeVector(t, rhs, b)

	_, stderr, err := execute(t, "solve", "--matrix", spd, "--rhs", rhs, "--output", output,
		"--plot", png, "--metrics-file", prom, "--print-rates")
	require.NoError(t, err, stderr)
	require.Contains(t, stderr, "msg=iteration")
	require.NotRegexp(t, errorAttr, stderr)

	data, err = os.ReadFile(output)
	require.NoError(t, err)
	x, err := mmarket.ReadVector(bytes.NewReader(data))
	require.NoError(t, err)
	for i, v := range x {
		require.InDelta(t, 2, v, 1e-8, "element %d", i)
	}

	info, err := os.Stat(png)
	require.NoError(t, err)
	require.Positive(t, info.Size())

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	require.Contains(t, string(metrics), `krylov_solves_total{method="cg",outcome="converged"} 1`)
	require.Contains(t, string(metrics), "krylov_iterations_bucket")
}

func writeVector(t *testing.T, path string, v []float64) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, mmarket.WriteVector(f, v))
	require.NoError(t, f.Close())
}

func TestSolveConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "krylov.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("method: gmres\nrestart: 8\ntol: 1e-11\nlog-format: json\n"), 0o644))

	out, stderr, err := execute(t, "solve", "--config", cfg, "--matrix", spd)
	require.NoError(t, err, stderr)
	require.Contains(t, stderr, `"method":"gmres"`)
	requireOnes(t, out, 36, 1e-8)

	// Flags given on the command line take precedence.
	_, stderr, err = execute(t, "solve", "--config", cfg, "--matrix", spd, "--method", "minres", "--log-format", "text")
	require.NoError(t, err, stderr)
	require.Contains(t, stderr, "method=minres")

	require.NoError(t, os.WriteFile(cfg, []byte("solver: cg\n"), 0o644))
	_, _, err = execute(t, "solve", "--config", cfg, "--matrix", spd)
	require.ErrorContains(t, err, `unknown flag "solver"`)

	require.NoError(t, os.WriteFile(cfg, []byte("method: [cg]\n"), 0o644))
	_, _, err = execute(t, "solve", "--config", cfg, "--matrix", spd)
	require.ErrorContains(t, err, "must be a scalar")
}

func TestSolveErrors(t *testing.T) {
	for _, args := range [][]string{
		{"solve"},
		{"solve", "--matrix", spd, "--method", "jacobi"},
		{"solve", "--matrix", spd, "--pre", "ilu"},
		{"solve", "--matrix", spd, "--method", "gmres", "--restart", "37"},
		{"solve", "--matrix", filepath.Join("..", "..", "testdata", "missing.mtx")},
		{"solve", "--matrix", spd, "--log-level", "loud"},
	} {
		_, _, err := execute(t, args...)
		require.Error(t, err, "%v", args)
	}
}

func TestInfo(t *testing.T) {
	out, _, err := execute(t, "info", spd)
	require.NoError(t, err)
	require.Contains(t, out, "size:       36 x 36")
	require.Contains(t, out, "nonzeros:   156")
	require.Contains(t, out, "symmetric:  true")
	require.Contains(t, out, "zero diag:  0")

	out, _, err = execute(t, "info", nonsym)
	require.NoError(t, err)
	require.Contains(t, out, "symmetric:  false")
	require.Contains(t, out, "dominant:   2 rows")
}
