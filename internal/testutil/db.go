// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"tracker/internal/repositories"
)

// OpenDB returns a migrated SQLite database in a temp dir, closed on cleanup.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tracker.db")
	db, err := repositories.Open(ctx, "sqlite3", path, 1, 1)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repositories.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
