// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gprof

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// A Holder accumulates the entries of a flat profile and determines
// the shape of the JSON document they are written as.
//
// The set of holders is closed: Short, Medium and Long.
type Holder interface {
	// Add records one row of the flat profile.
	Add(e Entry) error

	json.Marshaler
}

var (
	_ Holder = (*Short)(nil)
	_ Holder = (*Medium)(nil)
	_ Holder = (*Long)(nil)
)

// NewHolder returns an empty holder for the named format: "short",
// "medium" or "long". The empty string selects "medium".
func NewHolder(format string) (Holder, error) {
	switch strings.ToLower(format) {
	case "short":
		return NewShort(), nil
	case "", "medium":
		return NewMedium(), nil
	case "long":
		return NewLong(), nil
	}
	return nil, fmt.Errorf("unknown format %q (want short, medium, or long)", format)
}

// Short keeps, for each function, the list of its values in column
// order. Blank cells are written as null.
type Short struct {
	names []string
	slots map[string][]Value
}

func NewShort() *Short {
	return &Short{slots: make(map[string][]Value)}
}

func (h *Short) Add(e Entry) error {
	if _, ok := h.slots[e.Name]; !ok {
		h.names = append(h.names, e.Name)
	}
	h.slots[e.Name] = append([]Value(nil), e.Values...)
	return nil
}

// Slots returns the values recorded for function name.
func (h *Short) Slots(name string) ([]Value, bool) {
	v, ok := h.slots[name]
	return v, ok
}

func (h *Short) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range h.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalString(name))
		buf.WriteString(":[")
		for j, v := range h.slots[name] {
			if j > 0 {
				buf.WriteByte(',')
			}
			if !v.OK {
				buf.WriteString("null")
				continue
			}
			b, err := json.Marshal(v.V)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Medium keeps a Profile: for each function, a map from category to
// value with blank cells omitted. This is the default shape and the
// one the compare package reads.
type Medium struct {
	p *Profile
}

func NewMedium() *Medium {
	return &Medium{NewProfile()}
}

func (h *Medium) Add(e Entry) error {
	h.p.Set(e.Name, e.Record())
	return nil
}

// Profile returns the accumulated profile.
func (h *Medium) Profile() *Profile {
	return h.p
}

func (h *Medium) MarshalJSON() ([]byte, error) {
	return h.p.MarshalJSON()
}

// Long keeps the list of function names in the order they were read,
// duplicates included, next to a Profile.
type Long struct {
	functions []string
	p         *Profile
}

func NewLong() *Long {
	return &Long{functions: []string{}, p: NewProfile()}
}

func (h *Long) Add(e Entry) error {
	h.functions = append(h.functions, e.Name)
	h.p.Set(e.Name, e.Record())
	return nil
}

// Functions returns every function name read, in input order.
func (h *Long) Functions() []string {
	return append([]string(nil), h.functions...)
}

// Profile returns the accumulated profile.
func (h *Long) Profile() *Profile {
	return h.p
}

func (h *Long) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"functions":[`)
	for i, name := range h.functions {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalString(name))
	}
	buf.WriteString(`],"profile":`)
	p, err := h.p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(p)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dump writes the JSON document held by h to w, indented by four
// spaces.
func Dump(w io.Writer, h Holder) error {
	data, err := h.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
