// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the persisted record shapes and JSON response types.

# Persisted Records

  - LatestRecord: standings of the last synchronized contest (results, update_time)
  - LeaderboardRecord: cumulative rankings (rankings, updated_at, last_contest_code)

Each LatestResult carries rank, name, score (problems solved) and penalty.
Each Ranking carries name, score (sum of solves), consistency (contests
attended) and rank.

# Response Types

  - LeaderboardResponse: both records plus a humanized last_synced_ago
  - SyncResponse: status ("up-to-date" or "updated"), contest_id, run_id, leaderboard
  - ErrorResponse: error, message

# Constants

	SyncStatusUpToDate = "up-to-date"
	SyncStatusUpdated  = "updated"
*/
package models
