// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// A Summary describes the present costs of one function across
// profiles.
type Summary struct {
	N        int // number of profiles where the cost is present
	Mean     float64
	StdDev   float64 // sample standard deviation; 0 if N < 2
	Min, Max float64
}

// Summary computes statistics over the present costs of s.
func (s Series) Summary() Summary {
	xs := s.Present()
	if len(xs) == 0 {
		return Summary{}
	}
	sample := stats.Sample{Xs: xs}
	sum := Summary{N: len(xs), Mean: sample.Mean()}
	sum.Min, sum.Max = sample.Bounds()
	if len(xs) > 1 {
		sum.StdDev = sample.StdDev()
	}
	return sum
}

// Delta returns the relative change from the first to the last cost of
// s, as a fraction. It reports false unless both are present and the
// first is non-zero.
func (s Series) Delta() (float64, bool) {
	if len(s.Costs) < 2 {
		return 0, false
	}
	first, last := s.Costs[0], s.Costs[len(s.Costs)-1]
	if !first.OK || !last.OK || first.Value == 0 {
		return 0, false
	}
	return last.Value/first.Value - 1, true
}

// formatCost formats a present cost compactly; absent costs are "-".
func formatCost(c Cost) string {
	if !c.OK {
		return "-"
	}
	return formatValue(c.Value)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.4g", v)
}

func formatDelta(s Series) string {
	d, ok := s.Delta()
	if !ok {
		return "~"
	}
	return fmt.Sprintf("%+.2f%%", d*100)
}
