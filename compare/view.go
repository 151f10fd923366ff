// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"fmt"
	"strings"

	"github.com/cerfacs/coprof/gprof"
)

// A Direction is the orientation of the bars of a comparison chart.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseDirection parses "horizontal" or "vertical".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return 0, fmt.Errorf("unknown direction %q (want horizontal or vertical)", s)
}

// A View holds the display parameters of a comparison: which metric to
// rank by, how many functions to show and in which order.
type View struct {
	Metric    gprof.Category
	Limit     int // maximum number of functions; 0 means all
	Direction Direction
	Reverse   bool // show the cheapest of the selected functions first
}

// DefaultView ranks by "% time" and shows the ten costliest functions.
func DefaultView() View {
	return View{Metric: gprof.Categories[0], Limit: 10, Direction: Horizontal}
}

// Apply computes the selection v shows for agg.
func (v View) Apply(agg *Aggregate) *Selection {
	sel := Select(agg, v.Metric).Top(v.Limit)
	if v.Reverse {
		sel = sel.Reverse()
	}
	return sel
}
