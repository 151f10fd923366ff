// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compare lines up the functions of several gprof profiles and
// ranks them by cost.
//
// The usual flow is Load (or a hand-built ProfileSet), then
// BuildAggregate once per set of inputs, then Select once per metric.
// Aggregates and selections are never updated in place; when the
// inputs or the metric change, recompute them.
package compare

import (
	"sort"

	"github.com/cerfacs/coprof/gprof"
)

// A Member is one profile of a ProfileSet.
type Member struct {
	Name    string
	Profile *gprof.Profile
}

// A ProfileSet is an ordered list of profiles to compare, typically one
// per run. Its order fixes the order of costs in Aggregate and
// Selection.
type ProfileSet []Member

// Names returns the names of the members of s, in order.
func (s ProfileSet) Names() []string {
	names := make([]string, len(s))
	for i, m := range s {
		names[i] = m.Name
	}
	return names
}

// An Aggregate holds, for every function that appears in any profile of
// a ProfileSet, the record of that function in each profile.
type Aggregate struct {
	// Names are the names of the profiles, in ProfileSet order.
	Names []string

	// Functions is the union of the function names of all
	// profiles, sorted.
	Functions []string

	// Records maps a function name to one slot per profile. A slot
	// is nil when the function does not appear in that profile.
	Records map[string][]gprof.Record
}

// BuildAggregate collects the records of every function of set.
func BuildAggregate(set ProfileSet) *Aggregate {
	agg := &Aggregate{
		Names:   set.Names(),
		Records: make(map[string][]gprof.Record),
	}
	for _, m := range set {
		if m.Profile == nil {
			continue
		}
		for _, name := range m.Profile.Names() {
			if _, ok := agg.Records[name]; ok {
				continue
			}
			agg.Functions = append(agg.Functions, name)
			agg.Records[name] = nil
		}
	}
	sort.Strings(agg.Functions)
	for _, name := range agg.Functions {
		slots := make([]gprof.Record, len(set))
		for i, m := range set {
			if m.Profile == nil {
				continue
			}
			if rec, ok := m.Profile.Lookup(name); ok {
				slots[i] = rec
			}
		}
		agg.Records[name] = slots
	}
	return agg
}

// A Cost is one possibly absent value.
type Cost struct {
	Value float64
	OK    bool
}

// A Series is the cost of one function in each profile.
type Series struct {
	Function string
	Costs    []Cost
}

// Sum returns the total of the present costs of s.
func (s Series) Sum() float64 {
	var sum float64
	for _, c := range s.Costs {
		if c.OK {
			sum += c.Value
		}
	}
	return sum
}

// Present returns the present costs of s.
func (s Series) Present() []float64 {
	var xs []float64
	for _, c := range s.Costs {
		if c.OK {
			xs = append(xs, c.Value)
		}
	}
	return xs
}

// A Selection is an Aggregate reduced to one metric, with the costliest
// functions first.
type Selection struct {
	Metric gprof.Category
	Names  []string // profile names
	Series []Series
}

// Select reduces agg to metric c. A function that is missing from a
// profile, or whose record there lacks c, has an absent cost for that
// profile.
//
// Functions are ordered by decreasing sum of their present costs.
// Functions with equal sums are ordered by name.
func Select(agg *Aggregate, c gprof.Category) *Selection {
	sel := &Selection{
		Metric: c,
		Names:  append([]string(nil), agg.Names...),
		Series: make([]Series, 0, len(agg.Functions)),
	}
	for _, name := range agg.Functions {
		slots := agg.Records[name]
		s := Series{Function: name, Costs: make([]Cost, len(slots))}
		for i, rec := range slots {
			if v, ok := rec.Get(c); ok {
				s.Costs[i] = Cost{v, true}
			}
		}
		sel.Series = append(sel.Series, s)
	}
	// agg.Functions is sorted, so a stable sort breaks ties by name.
	sort.SliceStable(sel.Series, func(i, j int) bool {
		return sel.Series[i].Sum() > sel.Series[j].Sum()
	})
	return sel
}

// Top returns a copy of sel limited to its first n functions. If n is
// not positive or exceeds the number of functions, all are kept.
func (sel *Selection) Top(n int) *Selection {
	out := *sel
	if n > 0 && n < len(sel.Series) {
		out.Series = sel.Series[:n:n]
	}
	return &out
}

// Reverse returns a copy of sel with the order of its functions
// reversed.
func (sel *Selection) Reverse() *Selection {
	out := *sel
	out.Series = make([]Series, len(sel.Series))
	for i, s := range sel.Series {
		out.Series[len(sel.Series)-1-i] = s
	}
	return &out
}
