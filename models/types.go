// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Sync status constants
const (
	SyncStatusUpToDate = "up-to-date"
	SyncStatusUpdated  = "updated"
)

// Persisted records

// LatestResult is one row of the most recent contest's standings.
type LatestResult struct {
	Rank    int    `json:"rank"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Penalty int64  `json:"penalty"`
}

// LatestRecord is the "latest results" snapshot. Only one is ever kept.
type LatestRecord struct {
	Results      []LatestResult `json:"results"`
	UpdateTime   *time.Time     `json:"update_time,omitempty"`
	ContestID    int64          `json:"contest_id,omitempty"`
	ContestTitle string         `json:"contest_title,omitempty"`
}

// Ranking is one row of the cumulative leaderboard, keyed by Name.
type Ranking struct {
	Name          string `json:"name"`
	Score         int    `json:"score"`
	Consistency   int    `json:"consistency"`
	Rank          int    `json:"rank"`
	ParticipantID string `json:"-"` // last judge id seen under this name
}

// LeaderboardRecord is the cumulative multi-contest leaderboard.
type LeaderboardRecord struct {
	Rankings        []Ranking  `json:"rankings"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	LastContestCode int64      `json:"last_contest_code"`
}

// Response types

type LeaderboardResponse struct {
	Latest        LatestRecord      `json:"latest"`
	Leaderboard   LeaderboardRecord `json:"leaderboard"`
	LastSyncedAgo string            `json:"last_synced_ago,omitempty"`
}

type SyncResponse struct {
	Status      string    `json:"status"`
	ContestID   int64     `json:"contest_id,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	Leaderboard []Ranking `json:"leaderboard,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
