// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cerfacs/coprof/compare"
	"github.com/cerfacs/coprof/internal/texttab"
	"github.com/cerfacs/coprof/store"

	// Database drivers accepted by -db.
	_ "github.com/cerfacs/coprof/store/sqlite3"
	_ "github.com/go-sql-driver/mysql"
)

func cmdSave(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := newFlagSet(stderr, "save", "profile.json...")
	var (
		flagDB   = fs.String("db", "", "save to the database `source` (driver:dsn)")
		flagName = fs.String("name", "", "save under `name` instead of the file's base name (one file only)")
	)
	if err := parseFlags(fs, args, 1, -1); err != nil {
		return err
	}
	if *flagDB == "" || *flagName != "" && fs.NArg() > 1 {
		fs.Usage()
		return errUsage
	}
	db, err := store.Open(*flagDB)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range fs.Args() {
		p, err := compare.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		name := *flagName
		if name == "" {
			name = compare.ProfileName(path)
		}
		id, err := db.Save(ctx, name, p)
		if err != nil {
			return fmt.Errorf("saving %s: %w", path, err)
		}
		fmt.Fprintf(stdout, "%s: saved as %s (id %d)\n", path, name, id)
	}
	return nil
}

func cmdList(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := newFlagSet(stderr, "list", "")
	flagDB := fs.String("db", "", "list the database `source` (driver:dsn)")
	if err := parseFlags(fs, args, 0, 0); err != nil {
		return err
	}
	if *flagDB == "" {
		fs.Usage()
		return errUsage
	}
	db, err := store.Open(*flagDB)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.List(ctx)
	if err != nil {
		return err
	}
	var tab texttab.Table
	tab.Row().Cell("id", texttab.Right).Cell("name").Cell("saved").Cell("functions", texttab.Right)
	for _, e := range entries {
		tab.Row().Cell(strconv.FormatInt(e.ID, 10), texttab.Right).Cell(e.Name)
		tab.Cell(e.Created.UTC().Format(time.RFC3339))
		tab.Cell(strconv.Itoa(e.Functions), texttab.Right)
	}
	return tab.Format(stdout)
}
