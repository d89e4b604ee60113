package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no row matches (id, owner).
var ErrNotFound = errors.New("record not found")

// Queries are shared by both drivers: $N placeholders always appear in
// ascending order so SQLite numbers them the same way PostgreSQL does, and
// composite values live in JSON text columns.

// Open connects to driver ("postgres" or "sqlite3") and checks the connection.
func Open(ctx context.Context, driver, dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" {
		// single writer; avoids SQLITE_BUSY under concurrent requests
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		onboarded   BOOLEAN NOT NULL DEFAULT FALSE,
		preferences TEXT NOT NULL DEFAULT '{}',
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		priority         TEXT NOT NULL DEFAULT 'medium',
		status           TEXT NOT NULL DEFAULT 'pending',
		due_date         TIMESTAMP NULL,
		completed_at     TIMESTAMP NULL,
		pinned           BOOLEAN NOT NULL DEFAULT FALSE,
		tags             TEXT NOT NULL DEFAULT '[]',
		is_recurring     BOOLEAN NOT NULL DEFAULT FALSE,
		frequency        TEXT NOT NULL DEFAULT 'none',
		duration_minutes INTEGER NULL,
		timer_status     TEXT NOT NULL DEFAULT 'idle',
		start_time       TIMESTAMP NULL,
		accumulated_time BIGINT NOT NULL DEFAULT 0,
		version          BIGINT NOT NULL DEFAULT 0,
		created_at       TIMESTAMP NOT NULL,
		updated_at       TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks (user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_pinned ON tasks (user_id, pinned, created_at)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		emoji        TEXT NOT NULL DEFAULT '',
		deadline     TIMESTAMP NULL,
		priority     TEXT NOT NULL DEFAULT 'medium',
		status       TEXT NOT NULL DEFAULT 'active',
		subtasks     TEXT NOT NULL DEFAULT '[]',
		streak       INTEGER NOT NULL DEFAULT 0,
		completed_at TIMESTAMP NULL,
		created_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_user_created ON goals (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_user_status ON goals (user_id, status)`,
	`CREATE TABLE IF NOT EXISTS watchlist_items (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		title       TEXT NOT NULL,
		type        TEXT NOT NULL DEFAULT 'movie',
		status      TEXT NOT NULL DEFAULT 'not-started',
		notes       TEXT NOT NULL DEFAULT '',
		genre       TEXT NOT NULL DEFAULT '[]',
		year        INTEGER NULL,
		rating      DOUBLE PRECISION NULL,
		poster_url  TEXT NOT NULL DEFAULT '',
		trailer_url TEXT NOT NULL DEFAULT '',
		watched_at  TIMESTAMP NULL,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watchlist_user_created ON watchlist_items (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		action      TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		details     TEXT NOT NULL DEFAULT '{}',
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_created ON activities (user_id, created_at)`,
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
