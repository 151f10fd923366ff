// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cerfacs/coprof/compare"
	"github.com/cerfacs/coprof/compare/chart"
	"github.com/cerfacs/coprof/internal/config"
	"github.com/cerfacs/coprof/store"
	"github.com/fsnotify/fsnotify"
	"gonum.org/v1/plot/vg"
)

func cmdDiff(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := newFlagSet(stderr, "diff", "a.json b.json ...")
	def := config.Default()
	var (
		flagConfig   = fs.String("config", "", "read default settings from the YAML `file`")
		flagMetric   = fs.String("metric", def.Metric, "compare on `metric`: time, cumulative, self, calls, self-call, or total-call")
		flagLimit    = fs.Int("limit", def.Limit, "show at most `n` functions (0 for all)")
		flagVertical = fs.Bool("vertical", false, "draw vertical bars in the chart")
		flagReverse  = fs.Bool("reverse", false, "show the cheapest of the selected functions first")
		flagFormat   = fs.String("format", def.Format, "output `format`: text, csv, html, or json")
		flagChart    = fs.String("chart", "", "also draw a bar chart into `file` (png, svg, pdf, ...)")
		flagWatch    = fs.Bool("watch", false, "compare again whenever an input file changes")
		flagDB       = fs.String("db", def.DB, "read profiles by name from the database `source` (driver:dsn)")
	)
	if err := parseFlags(fs, args, 1, -1); err != nil {
		return err
	}

	// Flags given on the command line override the configuration file.
	cfg := def
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Load(*flagConfig); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "metric":
			cfg.Metric = *flagMetric
		case "limit":
			cfg.Limit = *flagLimit
		case "vertical":
			cfg.Direction = compare.Horizontal.String()
			if *flagVertical {
				cfg.Direction = compare.Vertical.String()
			}
		case "reverse":
			cfg.Reverse = *flagReverse
		case "format":
			cfg.Format = *flagFormat
		case "db":
			cfg.DB = *flagDB
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "coprof diff: %v\n", err)
		fs.Usage()
		return errUsage
	}
	if *flagWatch && cfg.DB != "" {
		fmt.Fprintf(stderr, "coprof diff: -watch needs profile files, not a database\n")
		fs.Usage()
		return errUsage
	}
	view, _ := cfg.View()

	warn := warner(stderr)
	d := &differ{
		refs:      fs.Args(),
		load:      compare.LoadOptions{Warn: warn, AllowLabels: true},
		view:      view,
		format:    cfg.Format,
		chartPath: *flagChart,
		chart: chart.Options{
			Direction: view.Direction,
			Width:     vg.Length(cfg.Chart.Width) * vg.Centimeter,
			Height:    vg.Length(cfg.Chart.Height) * vg.Centimeter,
		},
		stdout: stdout,
	}
	if cfg.DB != "" {
		db, err := store.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		d.load.Read = db.Load
	}

	if !*flagWatch {
		return d.render(ctx)
	}
	if err := d.render(ctx); err != nil {
		warn("%v", err)
	}
	return d.watch(ctx, warn)
}

// A differ loads a set of profiles and writes their comparison.
type differ struct {
	refs      []string
	load      compare.LoadOptions
	view      compare.View
	format    string
	chartPath string
	chart     chart.Options
	stdout    io.Writer
}

// render loads the profiles and writes their comparison to d.stdout,
// and to the chart file if there is one.
func (d *differ) render(ctx context.Context) error {
	set, err := compare.Load(ctx, d.refs, &d.load)
	if err != nil {
		return err
	}
	sel := d.view.Apply(compare.BuildAggregate(set))
	var buf bytes.Buffer
	switch d.format {
	case "csv":
		err = compare.FormatCSV(&buf, sel)
	case "json":
		err = compare.FormatJSON(&buf, sel)
	case "html":
		buf.WriteString(htmlHeader)
		compare.FormatHTML(&buf, sel)
		buf.WriteString(htmlFooter)
	default:
		err = compare.FormatText(&buf, sel)
	}
	if err != nil {
		return err
	}
	if _, err := d.stdout.Write(buf.Bytes()); err != nil {
		return err
	}
	if d.chartPath != "" {
		return chart.Save(d.chartPath, sel, d.chart)
	}
	return nil
}

// settle is how long watch waits for a burst of file events to end
// before comparing again.
const settle = 100 * time.Millisecond

// watch compares the profiles again each time one of the input files
// is written, until ctx is done. Events are handled on the calling
// goroutine.
func (d *differ) watch(ctx context.Context, warn func(string, ...interface{})) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directories rather than the files, so files replaced
	// by a rename are still seen.
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, ref := range d.refs {
		if i := strings.Index(ref, "="); i >= 0 {
			ref = ref[i+1:]
		}
		path, err := filepath.Abs(ref)
		if err != nil {
			return err
		}
		watched[path] = true
		if dir := filepath.Dir(path); !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fire = time.After(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			warn("watch: %v", err)
		case <-fire:
			fire = nil
			fmt.Fprintln(d.stdout)
			if err := d.render(ctx); err != nil {
				warn("%v", err)
			}
		}
	}
}

var htmlHeader = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Profile Comparison</title>
<style>
.coprof { border-collapse: collapse; }
.coprof th:nth-child(1) { text-align: left; }
.coprof tbody td:nth-child(1n+2) { text-align: right; padding: 0em 1em; }
.coprof th { border-bottom: 1px solid #ccc; }
.coprof .absent { color: #999; }
.coprof .delta { font-weight: bold; }
</style>
</head>
<body>
`
var htmlFooter = `</body>
</html>
`
