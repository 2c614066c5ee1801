// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"testing"
)

func TestCreateSchemaIsIdempotent(t *testing.T) {
	conn, err := Open(TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema run %d failed: %v", i+1, err)
		}
	}

	var rows, lastContest int64
	if err := conn.QueryRow("SELECT COUNT(*), MAX(last_contest_id) FROM sync_state").Scan(&rows, &lastContest); err != nil {
		t.Fatalf("Failed to query sync_state: %v", err)
	}
	if rows != 1 {
		t.Errorf("Expected exactly 1 sync_state row, got %d", rows)
	}
	if lastContest != 0 {
		t.Errorf("Expected fresh state to have contest 0, got %d", lastContest)
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	if _, err := Open("oracle", "whatever"); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}
