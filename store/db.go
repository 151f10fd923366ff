// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store keeps named flat profiles in a SQL database, so runs
// can be compared long after their report files are gone.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/cerfacs/coprof/gprof"
)

// ErrNotFound is returned by Load when no profile has the requested name.
var ErrNotFound = errors.New("profile not found")

// DB is a database of profiles. It's safe for concurrent use by
// multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertProfile  *sql.Stmt
	insertFunction *sql.Stmt
	lastProfile    *sql.Stmt
	selectFuncs    *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Open opens the database named by source, which has the form
// driver:dsn. A source without a known driver is a sqlite3 file name.
func Open(source string) (*DB, error) {
	driver, dsn := "sqlite3", source
	if i := strings.Index(source, ":"); i > 0 {
		if _, ok := knownDrivers[source[:i]]; ok {
			driver, dsn = source[:i], source[i+1:]
		}
	}
	return OpenSQL(driver, dsn)
}

var knownDrivers = map[string]struct{}{"sqlite3": {}, "mysql": {}}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
//
// A function whose record is empty is stored as a single row with a
// NULL Category.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Profiles (
	ProfileID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Name VARCHAR(255) NOT NULL,
	Created BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS Functions (
	ProfileID BIGINT UNSIGNED NOT NULL,
	Position INT NOT NULL,
	Name VARCHAR(4096) NOT NULL,
	Category VARCHAR(32),
	Value DOUBLE,
{{if not .sqlite3}}
	Index (ProfileID, Position),
{{end}}
	FOREIGN KEY (ProfileID) REFERENCES Profiles(ProfileID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS FunctionsProfilePosition ON Functions(ProfileID, Position);
CREATE INDEX IF NOT EXISTS ProfilesName ON Profiles(Name);
{{else}}
CREATE INDEX ProfilesName ON Profiles(Name);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			if driverName != "sqlite3" && strings.HasPrefix(strings.TrimSpace(q), "CREATE INDEX") {
				// MySQL has no CREATE INDEX IF NOT EXISTS.
				continue
			}
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	prepare := func(q string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var stmt *sql.Stmt
		stmt, err = db.sql.Prepare(q)
		return stmt
	}
	db.insertProfile = prepare("INSERT INTO Profiles(Name, Created) VALUES (?, ?)")
	db.insertFunction = prepare("INSERT INTO Functions(ProfileID, Position, Name, Category, Value) VALUES (?, ?, ?, ?, ?)")
	db.lastProfile = prepare("SELECT ProfileID FROM Profiles WHERE Name = ? ORDER BY ProfileID DESC LIMIT 1")
	db.selectFuncs = prepare("SELECT Position, Name, Category, Value FROM Functions WHERE ProfileID = ? ORDER BY Position")
	return err
}

// timeNow is replaced in tests.
var timeNow = time.Now

// Save stores p under name and returns the new profile's ID. Saving a
// second profile under the same name keeps both; Load returns the
// newest.
func (db *DB) Save(ctx context.Context, name string, p *gprof.Profile) (id int64, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	res, err := tx.StmtContext(ctx, db.insertProfile).ExecContext(ctx, name, timeNow().Unix())
	if err != nil {
		return 0, err
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}
	insert := tx.StmtContext(ctx, db.insertFunction)
	for pos, fn := range p.Names() {
		rec, _ := p.Lookup(fn)
		if len(rec) == 0 {
			if _, err := insert.ExecContext(ctx, id, pos, fn, nil, nil); err != nil {
				return 0, err
			}
			continue
		}
		for _, c := range gprof.Categories {
			v, ok := rec.Get(c)
			if !ok {
				continue
			}
			if _, err := insert.ExecContext(ctx, id, pos, fn, c.String(), v); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

// Load returns the profile most recently saved under name.
func (db *DB) Load(ctx context.Context, name string) (*gprof.Profile, error) {
	var id int64
	err := db.lastProfile.QueryRowContext(ctx, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	} else if err != nil {
		return nil, err
	}
	return db.LoadID(ctx, id)
}

// LoadID returns the profile with the given ID. A missing ID yields an
// empty profile.
func (db *DB) LoadID(ctx context.Context, id int64) (*gprof.Profile, error) {
	rows, err := db.selectFuncs.QueryContext(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	p := gprof.NewProfile()
	var (
		lastPos = -1
		rec     gprof.Record
		fn      string
	)
	flush := func() {
		if lastPos >= 0 {
			p.Set(fn, rec)
		}
	}
	for rows.Next() {
		var (
			pos   int
			name  string
			cat   sql.NullString
			value sql.NullFloat64
		)
		if err := rows.Scan(&pos, &name, &cat, &value); err != nil {
			return nil, err
		}
		if pos != lastPos {
			flush()
			lastPos, fn, rec = pos, name, gprof.Record{}
		}
		if !cat.Valid {
			continue
		}
		c, err := gprof.ParseCategory(cat.String)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %v", id, err)
		}
		rec[c] = value.Float64
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	flush()
	return p, nil
}

// An Entry describes a stored profile.
type Entry struct {
	ID        int64
	Name      string
	Created   time.Time
	Functions int
}

// List returns all stored profiles, oldest first.
func (db *DB) List(ctx context.Context) ([]Entry, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT p.ProfileID, p.Name, p.Created, COUNT(DISTINCT f.Position)
FROM Profiles p LEFT JOIN Functions f ON f.ProfileID = p.ProfileID
GROUP BY p.ProfileID, p.Name, p.Created
ORDER BY p.ProfileID`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Name, &created, &e.Functions); err != nil {
			return nil, err
		}
		e.Created = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountProfiles returns the number of stored profiles.
func (db *DB) CountProfiles(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Profiles").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertProfile, db.insertFunction, db.lastProfile, db.selectFuncs} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
