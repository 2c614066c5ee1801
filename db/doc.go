// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open accepts the DATABASE_TYPE value:

  - postgres: github.com/lib/pq
  - sqlite: modernc.org/sqlite (pure Go, also used by tests)

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes,
and only seeds the sync_state row when it is missing.

# Tables

  - sync_state: single row (id = 1) holding last_contest_id, last_synced_at,
    last_run_id and the latest contest title
  - latest_result: standings of the latest contest, keyed by rank
  - leaderboard_entry: cumulative leaderboard, keyed by display name

Times are stored as unix milliseconds in BIGINT columns; 0 means unset.
*/
package db
