// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cerfacs/coprof/gprof"
)

func cmdJSON(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := newFlagSet(stderr, "json", "report.txt | gmon.out program")
	var (
		flagOut      = fs.String("o", "", "write JSON to `file` (- for stdout); default derived from the input name")
		flagFormat   = fs.String("format", "medium", "JSON `shape`: short, medium, or long")
		flagDemangle = fs.Bool("demangle", false, "demangle C++ and Rust symbol names")
		flagGprof    = fs.String("gprof", "gprof", "gprof `binary` used to read gmon.out")
	)
	if err := parseFlags(fs, args, 1, 2); err != nil {
		return err
	}
	h, err := gprof.NewHolder(*flagFormat)
	if err != nil {
		fmt.Fprintf(stderr, "coprof json: %v\n", err)
		fs.Usage()
		return errUsage
	}

	var src gprof.Source
	if fs.NArg() == 1 {
		src = gprof.File(fs.Arg(0))
	} else {
		src = &gprof.Command{Gmon: fs.Arg(0), Program: fs.Arg(1), Path: *flagGprof}
	}
	var opts []gprof.Option
	if *flagDemangle {
		opts = append(opts, gprof.Demangle())
	}
	if err := gprof.Read(ctx, src, h, opts...); err != nil {
		return err
	}

	// The output is named after the report, or after the program.
	out := *flagOut
	if out == "" {
		out = gprof.DefaultOutput(fs.Arg(fs.NArg() - 1))
	}
	w, closeOut, err := create(out, stdout)
	if err != nil {
		return err
	}
	if err := gprof.Dump(w, h); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
