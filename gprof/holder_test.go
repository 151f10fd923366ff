// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gprof

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const smallReport = ` time   seconds   seconds    calls   s/call   s/call  name
 60.00      0.03     0.03        2     0.01     0.02  work
 40.00      0.05     0.02                             <spontaneous>
`

func dumpString(t *testing.T, h Holder) string {
	t.Helper()
	if err := Parse(strings.NewReader(smallReport), "small.txt", h); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Dump(&buf, h); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestDumpMedium(t *testing.T) {
	want := `{
    "work": {
        "% time": 60,
        "cumulative seconds": 0.03,
        "self seconds": 0.03,
        "calls": 2,
        "self s/call": 0.01,
        "total s/call": 0.02
    },
    "<spontaneous>": {
        "% time": 40,
        "cumulative seconds": 0.05,
        "self seconds": 0.02
    }
}
`
	if got := dumpString(t, NewMedium()); got != want {
		t.Errorf("medium dump:\n%s", cmp.Diff(want, got))
	}
}

func TestDumpShort(t *testing.T) {
	want := `{
    "work": [
        60,
        0.03,
        0.03,
        2,
        0.01,
        0.02
    ],
    "<spontaneous>": [
        40,
        0.05,
        0.02,
        null,
        null,
        null
    ]
}
`
	if got := dumpString(t, NewShort()); got != want {
		t.Errorf("short dump:\n%s", cmp.Diff(want, got))
	}
}

func TestDumpLong(t *testing.T) {
	got := dumpString(t, NewLong())
	var doc struct {
		Functions []string                      `json:"functions"`
		Profile   map[string]map[string]float64 `json:"profile"`
	}
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("%v\n%s", err, got)
	}
	if diff := cmp.Diff([]string{"work", "<spontaneous>"}, doc.Functions); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}
	if v := doc.Profile["work"]["calls"]; v != 2 {
		t.Errorf("work calls = %v, want 2", v)
	}
	if !strings.HasPrefix(got, "{\n    \"functions\": [\n") {
		t.Errorf("long dump not indented by four spaces:\n%s", got)
	}
}

func TestNewHolder(t *testing.T) {
	for format, want := range map[string]Holder{
		"":       &Medium{},
		"medium": &Medium{},
		"Short":  &Short{},
		"long":   &Long{},
	} {
		h, err := NewHolder(format)
		if err != nil {
			t.Errorf("NewHolder(%q): %v", format, err)
			continue
		}
		if gt, wt := typeName(h), typeName(want); gt != wt {
			t.Errorf("NewHolder(%q) = %s, want %s", format, gt, wt)
		}
	}
	if _, err := NewHolder("huge"); err == nil {
		t.Error("NewHolder(huge) succeeded")
	}
}

func typeName(h Holder) string {
	switch h.(type) {
	case *Short:
		return "short"
	case *Medium:
		return "medium"
	case *Long:
		return "long"
	}
	return "?"
}

func TestProfileJSONRoundTrip(t *testing.T) {
	h := NewMedium()
	if err := Parse(strings.NewReader(smallReport), "", h); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Dump(&buf, h); err != nil {
		t.Fatal(err)
	}
	p, err := ReadProfile(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h.Profile().Names(), p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	for _, name := range p.Names() {
		want, _ := h.Profile().Lookup(name)
		got, _ := p.Lookup(name)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", name, diff)
		}
	}
}

func TestReadProfileErrors(t *testing.T) {
	for _, in := range []string{
		`[]`,
		`null`,
		`{"f": {"bogus": 1}}`,
		`{"f": {"calls": "many"}}`,
		`{"f": `,
	} {
		if _, err := ReadProfile(strings.NewReader(in)); err == nil {
			t.Errorf("ReadProfile(%s) succeeded", in)
		}
	}
}

func TestReadProfileAliases(t *testing.T) {
	p, err := ReadProfile(strings.NewReader(`{"f1": {"self": 2.0}, "f0": {"self seconds": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"f1", "f0"}, p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	rec, _ := p.Lookup("f1")
	if v, ok := rec.Get(SelfSeconds); !ok || v != 2 {
		t.Errorf("f1 self = %v, %v", v, ok)
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, err)
		}
	}
	if c, err := ParseCategory("Total-Call"); err != nil || c != TotalSecondsPerCall {
		t.Errorf("ParseCategory(Total-Call) = %v, %v", c, err)
	}
	if _, err := ParseCategory("wall"); err == nil {
		t.Error("ParseCategory(wall) succeeded")
	}
	if s := Category(42).String(); s != "Category(42)" {
		t.Errorf("String() = %q", s)
	}
}

func TestDefaultOutput(t *testing.T) {
	for in, want := range map[string]string{
		"analysis.txt":   "analysis.json",
		"gmon.out":       "gmon.json",
		"dir/run1.txt":   "dir/run1.json",
		"profile":        "profile.json",
		"profile.log":    "profile.log.json",
		"archive.txt.gz": "archive.txt.gz.json",
		"double.out.txt": "double.out.json",
	} {
		if got := DefaultOutput(in); got != want {
			t.Errorf("DefaultOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, []byte(report), 0666); err != nil {
		t.Fatal(err)
	}
	h := NewMedium()
	if err := Read(context.Background(), File(path), h); err != nil {
		t.Fatal(err)
	}
	if h.Profile().Len() != 5 {
		t.Errorf("got %d functions, want 5", h.Profile().Len())
	}

	err := Read(context.Background(), File(filepath.Join(t.TempDir(), "missing.txt")), NewMedium())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v, want ErrNotExist", err)
	}
}

func TestCommandSource(t *testing.T) {
	// Stand in for gprof with a shell script that prints the report.
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()
	rep := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(rep, []byte(report), 0666); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "fake-gprof")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat "+rep+"\n"), 0777); err != nil {
		t.Fatal(err)
	}
	h := NewMedium()
	src := &Command{Program: "prog", Gmon: "gmon.out", Path: script}
	if err := Read(context.Background(), src, h); err != nil {
		t.Fatal(err)
	}
	if h.Profile().Len() != 5 {
		t.Errorf("got %d functions, want 5", h.Profile().Len())
	}

	failing := filepath.Join(dir, "failing-gprof")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\necho 'gmon.out: No such file' >&2\nexit 1\n"), 0777); err != nil {
		t.Fatal(err)
	}
	err := Read(context.Background(), &Command{Program: "prog", Gmon: "gmon.out", Path: failing}, NewMedium())
	if err == nil {
		t.Fatal("failing gprof: no error")
	}

	_, err = (&Command{Path: filepath.Join(dir, "no-such-gprof")}).Open(context.Background())
	if err == nil {
		t.Error("missing gprof binary: no error")
	}
}
