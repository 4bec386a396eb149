// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/numerics/krylov/internal/mmarket"
)

func newInfoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <matrix.mtx>",
		Short: "Print the structure of a Matrix Market matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			m, h, err := mmarket.ReadMatrix(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			symmetric := h.Rows == h.Cols
			var zeroDiag, dominant int
			offDiag := make([]float64, h.Rows)
			diag := make([]float64, h.Rows)
			m.DoNonZero(func(i, j int, v float64) {
				if i == j {
					diag[i] = v
				} else {
					offDiag[i] += math.Abs(v)
				}
				if symmetric && m.At(j, i) != v {
					symmetric = false
				}
			})
			for i := 0; i < min(h.Rows, h.Cols); i++ {
				if diag[i] == 0 {
					zeroDiag++
				}
				if math.Abs(diag[i]) > offDiag[i] {
					dominant++
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "format:     %s %s %s\n", h.Format, h.Field, h.Symmetry)
			fmt.Fprintf(w, "size:       %d x %d\n", h.Rows, h.Cols)
			fmt.Fprintf(w, "nonzeros:   %d\n", m.NNZ())
			fmt.Fprintf(w, "symmetric:  %t\n", symmetric)
			fmt.Fprintf(w, "zero diag:  %d\n", zeroDiag)
			fmt.Fprintf(w, "dominant:   %d rows\n", dominant)
			root.logger.Debug("matrix read", "path", args[0], "entries", h.Entries)
			return nil
		},
	}
}
