// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/numerics/krylov"
)

// plotHistory saves the residual norm history of a solve on a logarithmic
// axis. The image format is taken from the file extension. Non-positive
// norms cannot be drawn on the log axis and are skipped.
func plotHistory(path string, st krylov.Stats) error {
	pts := make(plotter.XYs, 0, len(st.History))
	for i, r := range st.History {
		if r <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i + 1), Y: r})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s residual history", st.Method)
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "residual norm"
	p.Add(plotter.NewGrid())

	if len(pts) > 0 {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		p.Add(line)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
