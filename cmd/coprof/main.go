// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Coprof converts gprof flat profiles to JSON and compares them.
//
// Usage:
//
//	coprof json [-o out.json] [-format short|medium|long] [-demangle] report.txt
//	coprof json [-o out.json] [-gprof path] gmon.out program
//	coprof diff [-config f.yaml] [-metric m] [-limit n] [-vertical] [-reverse]
//	            [-format text|csv|html|json] [-chart out.png] [-watch] [-db dsn] a.json b.json ...
//	coprof pprof [-o out.pb.gz] profile.json
//	coprof save -db dsn [-name n] profile.json...
//	coprof list -db dsn
//
// The json command reads the flat profile section of a gprof report,
// either from a file or by running gprof, and writes it as JSON. By
// default the output file is the input name with ".txt" or ".out"
// replaced by ".json".
//
// The diff command compares any number of JSON profiles on one metric
// (% time by default). Functions are ranked by their cost summed over
// all profiles, and only the costliest ones are shown (10 by default).
// A function missing from a profile is shown as "-", not as zero. With
// two profiles, diff adds the relative change from the first to the
// second; with more, the mean and standard deviation of each function.
// The -chart flag also draws the comparison as a bar chart, whose image
// format follows the file extension (png, svg, pdf, ...). With -watch,
// diff redraws every time one of the input files changes.
//
// Profiles may be saved to a database with the save command and
// compared by name with "diff -db". A database is named as driver:dsn,
// for example "sqlite3:profiles.db" or "mysql:user@tcp(host)/coprof";
// a bare file name is a sqlite3 database.
//
// The pprof command converts a JSON profile to a pprof profile, to be
// explored with "go tool pprof".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
)

var exit = os.Exit // replaced during testing

// errUsage reports a command line error. The usage message has already
// been printed.
var errUsage = errors.New("usage error")

type command struct {
	run   func(ctx context.Context, stdout, stderr io.Writer, args []string) error
	short string
}

var commands = map[string]command{
	"json":  {cmdJSON, "convert a gprof report to JSON"},
	"diff":  {cmdDiff, "compare JSON profiles"},
	"pprof": {cmdPprof, "convert a JSON profile to pprof format"},
	"save":  {cmdSave, "store JSON profiles in a database"},
	"list":  {cmdList, "list the profiles stored in a database"},
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: coprof command [options] [args]\ncommands:\n")
	var names []string
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-6s %s\n", name, commands[name].short)
	}
	fmt.Fprintf(w, "Run \"coprof command -h\" for the options of a command.\n")
}

func main() {
	log.SetPrefix("coprof: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := coprof(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		exit(2)
	default:
		log.Print(err)
		exit(1)
	}
}

// coprof runs the command line args, writing results to stdout and
// diagnostics to stderr.
func coprof(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "coprof: unknown command %q\n", args[0])
		usage(stderr)
		return errUsage
	}
	return cmd.run(ctx, stdout, stderr, args[1:])
}

// newFlagSet returns the flag set of the named command. argsUsage
// describes its positional arguments.
func newFlagSet(stderr io.Writer, name, argsUsage string) *flag.FlagSet {
	fs := flag.NewFlagSet("coprof "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: coprof %s [options] %s\noptions:\n", name, argsUsage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args into fs and checks that the number of
// positional arguments is within [min, max]; max < 0 means no limit.
func parseFlags(fs *flag.FlagSet, args []string, min, max int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() < min || max >= 0 && fs.NArg() > max {
		fs.Usage()
		return errUsage
	}
	return nil
}

// warner returns a function printing warnings to w with the command
// prefix.
func warner(w io.Writer) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Fprint(w, "coprof: "+msg)
	}
}

// create opens path for writing; "-" is stdout. The caller must call
// the returned close function.
func create(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
