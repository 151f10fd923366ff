// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gprof

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const report = `Flat profile:

Each sample counts as 0.01 seconds.
  %   cumulative   self              self     total
 time   seconds   seconds    calls   s/call   s/call  name
 33.34      0.02     0.02     7208     0.00     0.00  open
 16.67      0.03     0.01      244     0.04     0.12  offtime
 16.67      0.04     0.01        8     1.25     1.25  memccpy
  0.00      0.06     0.00      236     0.00     0.00  tzset
  0.00      0.06     0.00                             main

 %         the percentage of the total running time of the
time       program used by this function.
`

func TestColumns(t *testing.T) {
	for _, header := range []string{
		" time   seconds   seconds    calls   s/call   s/call  name    ",
		" time   seconds   seconds    calls  s/call  s/call  name",
		" time seconds seconds calls s/call s/call name",
		" time\tseconds \t seconds    calls        s/call  s/call  name  ",
	} {
		cols := Columns(header)
		tokens := strings.Fields(header)
		if len(cols) != len(tokens) {
			t.Errorf("Columns(%q) = %v, want %d boundaries", header, cols, len(tokens))
			continue
		}
		for i, col := range cols {
			end := len(header)
			if i+1 < len(cols) {
				end = cols[i+1]
			}
			if got := strings.TrimSpace(header[col:end]); got != tokens[i] {
				t.Errorf("Columns(%q): field %d is %q, want %q", header, i, got, tokens[i])
			}
		}
		if got := Split(header, cols); !cmp.Equal(got, tokens) {
			t.Errorf("Split(%q) = %q, want %q", header, got, tokens)
		}
	}
}

func TestSplit(t *testing.T) {
	header := " time   seconds   seconds    calls   s/call   s/call  name"
	cols := Columns(header)
	for _, test := range []struct {
		line string
		want []string
	}{
		{" 33.34      0.02     0.02     7208     0.00     0.00  open",
			[]string{"33.34", "0.02", "0.02", "7208", "0.00", "0.00", "open"}},
		// Values wider than the first header token.
		{"100.00      0.02     0.02        1    20.00    20.00  main",
			[]string{"100.00", "0.02", "0.02", "1", "20.00", "20.00", "main"}},
		// Blank cells.
		{"  0.00      0.06     0.00                             main",
			[]string{"0.00", "0.06", "0.00", "", "", "", "main"}},
		// Short line.
		{"  0.00", []string{"0.00", "", "", "", "", "", ""}},
		// Spaces inside the name are removed.
		{"  0.00      0.06     0.00        1     0.00     0.00  f(int, char)",
			[]string{"0.00", "0.06", "0.00", "1", "0.00", "0.00", "f(int,char)"}},
	} {
		if got := Split(test.line, cols); !cmp.Equal(got, test.want) {
			t.Errorf("Split(%q) = %q, want %q", test.line, got, test.want)
		}
	}
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile(strings.NewReader(report), "report.txt")
	if err != nil {
		t.Fatal(err)
	}
	wantNames := []string{"open", "offtime", "memccpy", "tzset", "main"}
	if diff := cmp.Diff(wantNames, p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	rec, ok := p.Lookup("offtime")
	if !ok {
		t.Fatal("offtime missing")
	}
	want := Record{
		PercentTime:         16.67,
		CumulativeSeconds:   0.03,
		SelfSeconds:         0.01,
		Calls:               244,
		SelfSecondsPerCall:  0.04,
		TotalSecondsPerCall: 0.12,
	}
	if diff := cmp.Diff(want, rec, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("offtime (-want +got):\n%s", diff)
	}
	mainRec, _ := p.Lookup("main")
	if diff := cmp.Diff(Record{PercentTime: 0, CumulativeSeconds: 0.06, SelfSeconds: 0}, mainRec); diff != "" {
		t.Errorf("main (-want +got):\n%s", diff)
	}
}

func TestParseInjectedValue(t *testing.T) {
	const table = ` time   seconds   seconds    calls   s/call   s/call  name
 12.50      1.25     0.75       42     0.02     0.03  compute
`
	p, err := ParseProfile(strings.NewReader(table), "")
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := p.Lookup("compute")
	for c, want := range map[Category]float64{
		PercentTime:         12.5,
		CumulativeSeconds:   1.25,
		SelfSeconds:         0.75,
		Calls:               42,
		SelfSecondsPerCall:  0.02,
		TotalSecondsPerCall: 0.03,
	} {
		got, ok := rec.Get(c)
		if !ok || math.Abs(got-want) > 1e-12 {
			t.Errorf("%s = %v, %v; want %v", c, got, ok, want)
		}
	}
}

func TestParseIdempotent(t *testing.T) {
	dump := func() string {
		h := NewMedium()
		if err := Parse(strings.NewReader(report), "report.txt", h); err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := Dump(&buf, h); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	if a, b := dump(), dump(); a != b {
		t.Errorf("parsing twice differs:\n%s\n%s", a, b)
	}
}

func TestParseNameOnly(t *testing.T) {
	const table = ` time   seconds   seconds    calls   s/call   s/call  name
                                                      lonely
`
	medium := NewMedium()
	if err := Parse(strings.NewReader(table), "", medium); err != nil {
		t.Fatal(err)
	}
	rec, ok := medium.Profile().Lookup("lonely")
	if !ok || len(rec) != 0 {
		t.Errorf("medium record = %v, %v; want empty record", rec, ok)
	}

	short := NewShort()
	if err := Parse(strings.NewReader(table), "", short); err != nil {
		t.Fatal(err)
	}
	slots, ok := short.Slots("lonely")
	if !ok || len(slots) != len(Categories) {
		t.Fatalf("short slots = %v, %v; want %d slots", slots, ok, len(Categories))
	}
	for i, s := range slots {
		if s.OK {
			t.Errorf("slot %d = %v, want absent", i, s.V)
		}
	}
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestParseMissingHeader(t *testing.T) {
	const input = "Flat profile:\n\nno header here\n  %   cumulative   self\n"
	cr := &countingReader{r: strings.NewReader(input)}
	err := Parse(cr, "bad.txt", NewMedium())
	var mie *MalformedInputError
	if !errors.As(err, &mie) {
		t.Fatalf("got %v, want *MalformedInputError", err)
	}
	if mie.FileName != "bad.txt" {
		t.Errorf("FileName = %q, want bad.txt", mie.FileName)
	}
	if cr.n != len(input) {
		t.Errorf("read %d bytes, want all %d", cr.n, len(input))
	}
}

func TestParseMalformedRow(t *testing.T) {
	const table = `header
 time   seconds   seconds    calls   s/call   s/call  name
 33.34      0.02     0.02     7208     0.00     0.00  open
 16.67      0.03     xx.x      244     0.04     0.12  offtime
`
	err := Parse(strings.NewReader(table), "bad.txt", NewMedium())
	var mre *MalformedRowError
	if !errors.As(err, &mre) {
		t.Fatalf("got %v, want *MalformedRowError", err)
	}
	if mre.Line != 4 || mre.Field != int(SelfSeconds) || mre.Text != "xx.x" {
		t.Errorf("got line %d field %d text %q, want line 4 field %d text xx.x", mre.Line, mre.Field, mre.Text, SelfSeconds)
	}
	if file, line := mre.Pos(); file != "bad.txt" || line != 4 {
		t.Errorf("Pos() = %s:%d", file, line)
	}
}

func TestParseStopsAtBlankLine(t *testing.T) {
	const table = ` time   seconds   seconds    calls   s/call   s/call  name
 50.00      0.01     0.01        1     0.01     0.01  first

 50.00      0.02     0.01        1     0.01     0.01  second
`
	p, err := ParseProfile(strings.NewReader(table), "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"first"}, p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestParseStopsAtShortLine(t *testing.T) {
	for _, end := range []string{"x", "x  \t", " ", "\t"} {
		table := " time   seconds   seconds    calls   s/call   s/call  name\n" +
			" 50.00      0.01     0.01        1     0.01     0.01  first\n" +
			end + "\n" +
			" 50.00      0.02     0.01        1     0.01     0.01  second\n"
		p, err := ParseProfile(strings.NewReader(table), "short.txt")
		if err != nil {
			t.Errorf("end %q: %v", end, err)
			continue
		}
		if diff := cmp.Diff([]string{"first"}, p.Names()); diff != "" {
			t.Errorf("end %q: names (-want +got):\n%s", end, diff)
		}
	}
}

func TestParseNonFinite(t *testing.T) {
	for _, cell := range []string{"nan", "NaN", "inf", "-Inf", "+inf"} {
		table := " time   seconds   seconds    calls   s/call   s/call  name\n" +
			fmt.Sprintf("%6s      0.01     0.01        1     0.01     0.01  open\n", cell)
		err := Parse(strings.NewReader(table), "nan.txt", NewMedium())
		var mre *MalformedRowError
		if !errors.As(err, &mre) {
			t.Errorf("%s: got %v, want *MalformedRowError", cell, err)
			continue
		}
		if mre.Line != 2 || mre.Field != int(PercentTime) || mre.Text != cell {
			t.Errorf("%s: got line %d field %d text %q", cell, mre.Line, mre.Field, mre.Text)
		}
	}
}

func TestParseDuplicateLastWins(t *testing.T) {
	const table = ` time   seconds   seconds    calls   s/call   s/call  name
 10.00      0.01     0.01        1     0.01     0.01  dup
 20.00      0.03     0.02        2     0.01     0.01  other
 30.00      0.06     0.03        3     0.01     0.01  dup
`
	long := NewLong()
	if err := Parse(strings.NewReader(table), "", long); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"dup", "other", "dup"}, long.Functions()); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}
	p := long.Profile()
	if diff := cmp.Diff([]string{"dup", "other"}, p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	rec, _ := p.Lookup("dup")
	if v, _ := rec.Get(Calls); v != 3 {
		t.Errorf("dup calls = %v, want 3 from the last row", v)
	}
}

func TestParseDemangle(t *testing.T) {
	const table = ` time   seconds   seconds    calls   s/call   s/call  name
100.00      0.01     0.01        1     0.01     0.01  _ZN3foo3barEv
`
	p, err := ParseProfile(strings.NewReader(table), "", Demangle())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"foo::bar()"}, p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestParseCRLF(t *testing.T) {
	table := strings.ReplaceAll(report, "\n", "\r\n")
	p, err := ParseProfile(strings.NewReader(table), "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 5 {
		t.Errorf("got %d functions, want 5", p.Len())
	}
}
