// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pprofexport converts gprof flat profiles into pprof profiles,
// so they can be explored with "go tool pprof".
package pprofexport

import (
	"io"
	"math"

	"github.com/cerfacs/coprof/gprof"
	"github.com/google/pprof/profile"
)

// samplePeriod is the gprof histogram sampling period.
const samplePeriod = 10 * 1000 * 1000 // 10ms, in nanoseconds

// Convert returns a pprof profile with one sample per function of p.
//
// Each sample has three values: the number of calls, the self time and
// the total time in nanoseconds. The total time is total s/call times
// calls, and never less than the self time. Absent values count as 0.
// Samples follow the order of p.
func Convert(p *gprof.Profile) (*profile.Profile, error) {
	out := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "calls", Unit: "count"},
			{Type: "self", Unit: "nanoseconds"},
			{Type: "total", Unit: "nanoseconds"},
		},
		DefaultSampleType: "self",
		PeriodType:        &profile.ValueType{Type: "cpu", Unit: "nanoseconds"},
		Period:            samplePeriod,
	}
	var duration float64
	for i, name := range p.Names() {
		rec, _ := p.Lookup(name)
		calls, _ := rec.Get(gprof.Calls)
		self, _ := rec.Get(gprof.SelfSeconds)
		perCall, _ := rec.Get(gprof.TotalSecondsPerCall)
		total := math.Max(perCall*calls, self)
		if cum, ok := rec.Get(gprof.CumulativeSeconds); ok && cum > duration {
			duration = cum
		}

		f := &profile.Function{
			ID:         uint64(i + 1),
			Name:       name,
			SystemName: name,
		}
		l := &profile.Location{
			ID:   uint64(i + 1),
			Line: []profile.Line{{Function: f}},
		}
		s := &profile.Sample{
			Location: []*profile.Location{l},
			Value:    []int64{int64(calls), nanos(self), nanos(total)},
		}
		out.Function = append(out.Function, f)
		out.Location = append(out.Location, l)
		out.Sample = append(out.Sample, s)
	}
	out.DurationNanos = nanos(duration)
	if err := out.CheckValid(); err != nil {
		return nil, err
	}
	return out, nil
}

func nanos(sec float64) int64 {
	return int64(math.Round(sec * 1e9))
}

// Write converts p and writes it to w as a gzipped profile.proto.
func Write(w io.Writer, p *gprof.Profile) error {
	out, err := Convert(p)
	if err != nil {
		return err
	}
	return out.Write(w)
}
