// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gprof

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// A Record holds the costs of one function. Categories whose cell was
// blank in the source table are absent from the map.
type Record map[Category]float64

// Get returns the value of category c and whether it is present.
func (r Record) Get(c Category) (float64, bool) {
	v, ok := r[c]
	return v, ok
}

// MarshalJSON encodes r as an object keyed by category label, in
// column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, c := range Categories {
		v, ok := r[c]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key := marshalString(c.String())
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by category label or alias.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*r = nil
		return nil
	}
	rec := make(Record, len(raw))
	for k, v := range raw {
		c, err := ParseCategory(k)
		if err != nil {
			return err
		}
		rec[c] = v
	}
	*r = rec
	return nil
}

// A Profile maps function names to their costs.
//
// Function names are unique within a Profile. Names keep the order in
// which they were first added, which is the order rows appeared in the
// flat profile. Adding a name twice replaces the earlier Record (the
// last row wins) without moving the name.
type Profile struct {
	names   []string
	records map[string]Record
}

// NewProfile returns an empty Profile.
func NewProfile() *Profile {
	return &Profile{records: make(map[string]Record)}
}

// Set records r as the costs of function name, replacing any earlier
// record for name. A nil r is stored as an empty Record.
func (p *Profile) Set(name string, r Record) {
	if p.records == nil {
		p.records = make(map[string]Record)
	}
	if r == nil {
		r = Record{}
	}
	if _, ok := p.records[name]; !ok {
		p.names = append(p.names, name)
	}
	p.records[name] = r
}

// Lookup returns the record for function name.
func (p *Profile) Lookup(name string) (Record, bool) {
	r, ok := p.records[name]
	return r, ok
}

// Names returns the function names of p in first-seen order.
func (p *Profile) Names() []string {
	return append([]string(nil), p.names...)
}

// Len returns the number of functions in p.
func (p *Profile) Len() int {
	return len(p.names)
}

// MarshalJSON encodes p as an object keyed by function name, in
// first-seen order.
func (p *Profile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key := marshalString(name)
		val, err := p.records[name].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the medium JSON shape written by Dump,
// keeping the order of the keys in the input.
func (p *Profile) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("profile must be a JSON object, found %v", tok)
	}
	out := NewProfile()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string) // object keys are always strings
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
		out.Set(name, rec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = *out
	return nil
}

// ReadProfile decodes a JSON profile from r.
func ReadProfile(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := NewProfile()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// marshalString encodes s as a JSON string without escaping HTML
// characters, which are common in C++ symbol names.
func marshalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(s) // cannot fail for a string
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
