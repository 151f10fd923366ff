// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"strings"

	"github.com/cerfacs/coprof/compare"
	"github.com/cerfacs/coprof/pprofexport"
)

func cmdPprof(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := newFlagSet(stderr, "pprof", "profile.json")
	flagOut := fs.String("o", "", "write the pprof profile to `file` (- for stdout); default is the input name with .pb.gz")
	if err := parseFlags(fs, args, 1, 1); err != nil {
		return err
	}
	p, err := compare.ReadFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	out := *flagOut
	if out == "" {
		out = strings.TrimSuffix(fs.Arg(0), ".json") + ".pb.gz"
	}
	w, closeOut, err := create(out, stdout)
	if err != nil {
		return err
	}
	if err := pprofexport.Write(w, p); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
