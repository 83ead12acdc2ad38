package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB returns a database with the schema applied, backed by a file in
// the test's temp directory so concurrent handlers get separate connections.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lostfound.sqlite3")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}
	return db
}
