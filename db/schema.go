// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported DATABASE_TYPE values
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open connects with the driver registered for dbType and pings the database.
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case TypePostgres:
		driver = "postgres"
	case TypeSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS and seeds sync_state once.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Statements run one at a time; lib/pq and modernc differ on multi-statement Exec.
// Timestamps are unix milliseconds so both drivers scan them the same way.
var schema = []string{
	// Single row; last_contest_id = 0 means never synced
	`CREATE TABLE IF NOT EXISTS sync_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    last_contest_id BIGINT NOT NULL DEFAULT 0,
    last_synced_at BIGINT NOT NULL DEFAULT 0,
    last_run_id TEXT NOT NULL DEFAULT '',
    latest_title TEXT NOT NULL DEFAULT ''
)`,
	`INSERT INTO sync_state (id, last_contest_id, last_synced_at, last_run_id, latest_title)
SELECT 1, 0, 0, '', ''
WHERE NOT EXISTS (SELECT 1 FROM sync_state WHERE id = 1)`,

	// Latest contest standings, replaced on every sync
	`CREATE TABLE IF NOT EXISTS latest_result (
    rank INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    score INTEGER NOT NULL,
    penalty BIGINT NOT NULL
)`,

	// Cumulative leaderboard, keyed by display name
	`CREATE TABLE IF NOT EXISTS leaderboard_entry (
    name TEXT PRIMARY KEY,
    score INTEGER NOT NULL,
    consistency INTEGER NOT NULL,
    rank INTEGER NOT NULL,
    participant_id TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_leaderboard_entry_rank ON leaderboard_entry(rank)`,
}
