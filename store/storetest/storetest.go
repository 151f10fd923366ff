// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storetest opens throwaway profile databases for tests.
package storetest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"strings"
	"testing"

	"github.com/cerfacs/coprof/store"
	_ "github.com/cerfacs/coprof/store/sqlite3"
	_ "github.com/go-sql-driver/mysql"
)

var mysqlDSN = flag.String("mysql", "", "run store tests against the MySQL server at `dsn` (user:pass@tcp(host)/) instead of in-memory SQLite")

// createEmptyMySQLDB makes a new, empty database for the test.
func createEmptyMySQLDB(t *testing.T) (dsn string, cleanup func()) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}

	name := "coprof_test_" + strings.ReplaceAll(base64.RawURLEncoding.EncodeToString(buf), "-", "_")

	prefix := *mysqlDSN
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	db, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		db.Close()
		t.Fatal(err)
	}

	t.Logf("Using database %q", name)

	return prefix + name, func() {
		if _, err := db.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
		db.Close()
	}
}

// NewDB makes a connection to a testing database, either sqlite3 or
// MySQL depending on the -mysql flag. cleanup must be called when done
// with the testing database, instead of calling db.Close()
func NewDB(t *testing.T) (*store.DB, func()) {
	driverName, dataSourceName := "sqlite3", ":memory:"
	var mysqlCleanup func()
	if *mysqlDSN != "" {
		driverName = "mysql"
		dataSourceName, mysqlCleanup = createEmptyMySQLDB(t)
	}
	d, err := store.OpenSQL(driverName, dataSourceName)
	if err != nil {
		if mysqlCleanup != nil {
			mysqlCleanup()
		}
		t.Fatalf("open database: %v", err)
	}

	cleanup := func() {
		d.Close()
		if mysqlCleanup != nil {
			mysqlCleanup()
		}
	}
	// Make sure the database really is empty.
	n, err := d.CountProfiles(context.Background())
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	if n != 0 {
		cleanup()
		t.Fatalf("found %d row(s) in Profiles, want 0", n)
	}
	return d, cleanup
}
