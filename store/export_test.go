// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"database/sql"
	"time"
)

// SetNow sets the time reported for new profiles. The zero time
// restores the clock.
func SetNow(t time.Time) {
	if t.IsZero() {
		timeNow = time.Now
		return
	}
	timeNow = func() time.Time { return t }
}

func DBSQL(db *DB) *sql.DB {
	return db.sql
}
