// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws a comparison of profiles as a grouped bar chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cerfacs/coprof/compare"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Options controls the layout of a chart.
type Options struct {
	// Direction is the orientation of the bars. With Horizontal
	// bars, function names run down the Y axis.
	Direction compare.Direction

	// Width and Height are the size of the image. If zero, they
	// are derived from the number of bars.
	Width, Height vg.Length

	// Title defaults to the metric name.
	Title string
}

// ErrEmpty is returned when a selection has nothing to draw.
var ErrEmpty = errors.New("no functions to chart")

// barWidth is the width of a single bar.
const barWidth = vg.Length(12)

// New builds the plot for sel: one bar series per profile, grouped by
// function. Absent costs are drawn as empty bars and left unlabeled.
func New(sel *compare.Selection, opts Options) (*plot.Plot, error) {
	if len(sel.Series) == 0 || len(sel.Names) == 0 {
		return nil, ErrEmpty
	}
	horizontal := opts.Direction == compare.Horizontal

	// With horizontal bars the first function is drawn at the top.
	series := sel.Series
	if horizontal {
		series = make([]compare.Series, len(sel.Series))
		for i, s := range sel.Series {
			series[len(series)-1-i] = s
		}
	}
	functions := make([]string, len(series))
	for j, s := range series {
		functions[j] = s.Function
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = sel.Metric.String()
	}
	p.Legend.Top = true
	if horizontal {
		p.NominalY(functions...)
		p.X.Label.Text = sel.Metric.String()
	} else {
		p.NominalX(functions...)
		p.Y.Label.Text = sel.Metric.String()
	}

	n := len(sel.Names)
	for i, name := range sel.Names {
		values := make(plotter.Values, len(series))
		var pos plotter.XYs
		var labels []string
		for j, s := range series {
			c := s.Costs[i]
			if !c.OK {
				continue
			}
			values[j] = c.Value
			if horizontal {
				pos = append(pos, plotter.XY{X: c.Value, Y: float64(j)})
			} else {
				pos = append(pos, plotter.XY{X: float64(j), Y: c.Value})
			}
			labels = append(labels, strconv.FormatFloat(c.Value, 'g', 4, 64))
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		offset := vg.Length(float64(i)-float64(n-1)/2) * barWidth
		bars.Offset = offset
		bars.Horizontal = horizontal
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		p.Add(bars)
		p.Legend.Add(name, bars)

		if len(pos) == 0 {
			continue
		}
		lab, err := plotter.NewLabels(plotter.XYLabels{XYs: pos, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		if horizontal {
			lab.Offset = vg.Point{X: vg.Points(2), Y: offset - barWidth/4}
		} else {
			lab.Offset = vg.Point{X: offset - barWidth/2, Y: vg.Points(2)}
		}
		p.Add(lab)
	}
	return p, nil
}

// size returns the image size for a chart of nf functions and np
// profiles, honoring the sizes set in opts.
func size(opts Options, nf, np int) (w, h vg.Length) {
	w, h = opts.Width, opts.Height
	// Length of the axis carrying the bars.
	long := vg.Length(nf*(np+1))*barWidth + 3*vg.Centimeter
	if long < 10*vg.Centimeter {
		long = 10 * vg.Centimeter
	}
	if opts.Direction == compare.Horizontal {
		if w == 0 {
			w = 20 * vg.Centimeter
		}
		if h == 0 {
			h = long
		}
	} else {
		if w == 0 {
			w = long
		}
		if h == 0 {
			h = 12 * vg.Centimeter
		}
	}
	return w, h
}

// Render draws sel and writes the image to w in the given format
// ("png", "svg", "pdf", "eps", "jpg", "tif").
func Render(w io.Writer, format string, sel *compare.Selection, opts Options) error {
	p, err := New(sel, opts)
	if err != nil {
		return err
	}
	width, height := size(opts, len(sel.Series), len(sel.Names))
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save draws sel into the file at path. The image format is taken from
// the file extension.
func Save(path string, sel *compare.Selection, opts Options) error {
	p, err := New(sel, opts)
	if err != nil {
		return err
	}
	width, height := size(opts, len(sel.Series), len(sel.Names))
	return p.Save(width, height, path)
}
