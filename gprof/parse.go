// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gprof reads the flat profile section of gprof reports.
//
// A flat profile is a fixed-width text table:
//
//	  %   cumulative   self              self     total
//	 time   seconds   seconds    calls   s/call   s/call  name
//	 33.34      0.02     0.02     7208     0.00     0.00  open
//	 16.67      0.03     0.01      244     0.04     0.12  offtime
//
// The column layout differs between gprof builds, so the parser does not
// hardcode offsets. It finds the second header line and takes the start
// of every header token as the start of a column.
package gprof

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// headerRE matches the second line of the flat profile header, the
// one immediately above the data rows.
var headerRE = regexp.MustCompile(`^ time\s+seconds\s+seconds\s+calls\s+s/call\s+s/call\s+name\s*$`)

// A MalformedInputError reports that the flat profile header was not
// found before the end of the input.
type MalformedInputError struct {
	FileName string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("%s: header not found", e.FileName)
}

// A MalformedRowError reports a value cell that is not a number.
type MalformedRowError struct {
	FileName string
	Line     int    // 1-based line number in the input
	Field    int    // 0-based index of the cell within the row
	Text     string // the cell, with spaces removed
	Err      error
}

// Pos returns the file name and line of the bad row.
func (e *MalformedRowError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: field %d: parsing %q: %v", e.FileName, e.Line, e.Field, e.Text, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

var errNotFinite = errors.New("not a finite number")

// An Entry is one data row of a flat profile.
type Entry struct {
	Name string
	// Values has one slot per value column, in Categories order.
	// Blank cells have OK false.
	Values []Value
}

// A Value is one possibly blank cell of a data row.
type Value struct {
	V  float64
	OK bool
}

// Record returns the present values of e as a sparse Record.
func (e *Entry) Record() Record {
	r := make(Record)
	for i, v := range e.Values {
		if v.OK && i < int(numCategories) {
			r[Category(i)] = v.V
		}
	}
	return r
}

// An Option configures Parse.
type Option func(*parser)

// Demangle makes Parse demangle C++ and Rust symbol names. Names that
// are not mangled are left unchanged.
func Demangle() Option {
	return func(p *parser) { p.demangle = true }
}

type parser struct {
	fileName string
	line     int
	demangle bool
}

// Parse reads a gprof report from r and adds one Entry per row of its
// flat profile to h. fileName is used in error messages.
//
// Lines before the header are skipped. Parsing stops at the first line
// after the header that is blank or holds at most one character once
// trailing blanks are removed; nothing after it is read by the parser. If the
// input ends before the header is found, Parse returns a
// *MalformedInputError. A value cell that is neither blank nor a finite
// number produces a *MalformedRowError.
func Parse(r io.Reader, fileName string, h Holder, opts ...Option) error {
	if fileName == "" {
		fileName = "<unknown>"
	}
	p := &parser{fileName: fileName}
	for _, o := range opts {
		o(p)
	}
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)

	var columns []int
	for columns == nil {
		if !s.Scan() {
			if err := s.Err(); err != nil {
				return fmt.Errorf("%s:%d: %w", fileName, p.line, err)
			}
			return &MalformedInputError{fileName}
		}
		p.line++
		line := trimEOL(s.Text())
		if headerRE.MatchString(line) {
			columns = Columns(line)
		}
	}

	for s.Scan() {
		p.line++
		line := trimEOL(s.Text())
		if len(strings.TrimRight(line, " \t")) <= 1 {
			return nil
		}
		e, err := p.entry(line, columns)
		if err != nil {
			return err
		}
		if err := h.Add(e); err != nil {
			return fmt.Errorf("%s:%d: %w", fileName, p.line, err)
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("%s:%d: %w", fileName, p.line, err)
	}
	return nil
}

// ParseProfile parses a gprof report into a Profile.
func ParseProfile(r io.Reader, fileName string, opts ...Option) (*Profile, error) {
	h := NewMedium()
	if err := Parse(r, fileName, h, opts...); err != nil {
		return nil, err
	}
	return h.Profile(), nil
}

// entry splits a data row at the column boundaries.
func (p *parser) entry(line string, columns []int) (Entry, error) {
	fields := Split(line, columns)
	e := Entry{Name: fields[len(fields)-1]}
	if p.demangle {
		e.Name = demangle.Filter(e.Name)
	}
	e.Values = make([]Value, len(fields)-1)
	for i, f := range fields[:len(fields)-1] {
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok {
				err = ne.Err
			}
			return Entry{}, &MalformedRowError{p.fileName, p.line, i, f, err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Entry{}, &MalformedRowError{p.fileName, p.line, i, f, errNotFinite}
		}
		e.Values[i] = Value{v, true}
	}
	return e, nil
}

// Columns returns the start offset of every whitespace-separated token
// of header. The last token is taken to extend to the end of the line.
func Columns(header string) []int {
	var columns []int
	prev := byte(' ')
	for i := 0; i < len(header); i++ {
		c := header[i]
		if isBlank(prev) && !isBlank(c) {
			columns = append(columns, i)
		}
		prev = c
	}
	return columns
}

// Split cuts line into one field per column, removing every blank
// from each field. The first field starts at the beginning of the line
// and the last runs to its end. A line too short to reach a column
// yields empty fields from that column on.
func Split(line string, columns []int) []string {
	fields := make([]string, len(columns))
	for i := range columns {
		start, end := columns[i], len(line)
		if i == 0 {
			start = 0
		}
		if i+1 < len(columns) {
			end = columns[i+1]
		}
		if start > len(line) {
			start = len(line)
		}
		if end > len(line) {
			end = len(line)
		}
		fields[i] = stripBlanks(line[start:end])
	}
	return fields
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func stripBlanks(s string) string {
	if !strings.ContainsAny(s, " \t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if !isBlank(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func trimEOL(s string) string {
	return strings.TrimSuffix(s, "\r")
}
