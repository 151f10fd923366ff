// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gprof

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// A Source supplies the text of a gprof report.
type Source interface {
	// Name identifies the source in error messages.
	Name() string
	// Open starts reading the report. The caller must close the
	// returned reader.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// File is a Source that reads a report saved to a file.
type File string

func (f File) Name() string { return string(f) }

func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(string(f))
}

// Command is a Source that runs gprof on a program and the gmon.out
// file it wrote, and reads gprof's standard output.
type Command struct {
	Program string // the profiled executable
	Gmon    string // the profile data file, usually gmon.out
	Path    string // gprof binary; if empty, "gprof" is looked up in $PATH
	Args    []string
}

func (c *Command) Name() string {
	return fmt.Sprintf("gprof %s %s", c.Program, c.Gmon)
}

// Open starts gprof. Closing the returned reader waits for gprof to
// exit and reports a failed run as an error.
func (c *Command) Open(ctx context.Context) (io.ReadCloser, error) {
	path := c.Path
	if path == "" {
		path = "gprof"
	}
	args := append(append([]string(nil), c.Args...), c.Program, c.Gmon)
	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("running %s: %w", path, err)
	}
	return &commandReader{out, cmd, &stderr}, nil
}

type commandReader struct {
	io.ReadCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
}

func (r *commandReader) Close() error {
	// Drain so gprof does not block on a full pipe once the parser
	// has stopped reading.
	io.Copy(io.Discard, r.ReadCloser)
	if err := r.cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(r.stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", r.cmd.Path, err, msg)
		}
		return fmt.Errorf("%s: %w", r.cmd.Path, err)
	}
	return nil
}

// Read parses the report supplied by src into h.
func Read(ctx context.Context, src Source, h Holder, opts ...Option) (err error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rc.Close(); err == nil {
			err = cerr
		}
	}()
	return Parse(rc, src.Name(), h, opts...)
}

// DefaultOutput returns the name of the JSON file written for the
// report at path: a trailing ".txt" or ".out" is replaced by ".json",
// any other name gets ".json" appended.
func DefaultOutput(path string) string {
	for _, ext := range []string{".txt", ".out"} {
		if strings.HasSuffix(path, ext) {
			path = strings.TrimSuffix(path, ext)
			break
		}
	}
	return path + ".json"
}
