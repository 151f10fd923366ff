// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gprof

import (
	"fmt"
	"strings"
)

// A Category is one cost column of a gprof flat profile.
//
// Categories are ordered the way gprof prints them, so the i'th value
// cell of a data row belongs to Categories[i].
type Category int

const (
	PercentTime Category = iota
	CumulativeSeconds
	SelfSeconds
	Calls
	SelfSecondsPerCall
	TotalSecondsPerCall

	numCategories
)

// Categories lists every Category in table column order.
var Categories = []Category{
	PercentTime,
	CumulativeSeconds,
	SelfSeconds,
	Calls,
	SelfSecondsPerCall,
	TotalSecondsPerCall,
}

var categoryLabels = [numCategories]string{
	"% time",
	"cumulative seconds",
	"self seconds",
	"calls",
	"self s/call",
	"total s/call",
}

var categoryAliases = map[string]Category{
	"time":       PercentTime,
	"cumulative": CumulativeSeconds,
	"self":       SelfSeconds,
	"calls":      Calls,
	"self-call":  SelfSecondsPerCall,
	"total-call": TotalSecondsPerCall,
}

// String returns the gprof label of c, for example "self seconds".
func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryLabels[c]
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	return c >= 0 && c < numCategories
}

// ParseCategory returns the Category named by s. s may be either the
// gprof label ("self seconds") or its short alias ("self").
func ParseCategory(s string) (Category, error) {
	for c, label := range categoryLabels {
		if s == label {
			return Category(c), nil
		}
	}
	if c, ok := categoryAliases[strings.ToLower(s)]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
