// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the club leaderboard API.

# Handler Types

  - LeaderboardHandler: read path, serves the last committed snapshot
  - SyncHandler: trigger path, runs one sync

	leaderboardHandler := handlers.NewLeaderboardHandler(db, cfg)
	syncHandler := handlers.NewSyncHandler(s)

# Reading

	GET /leaderboard → GetLeaderboard

Returns the latest contest's results, the cumulative leaderboard and a
humanized last_synced_ago. Read failures never depend on the judge.

# Triggering a Sync

	POST /leaderboard/sync → TriggerSync

Requires a bearer trigger token. Failures map to:

	judge rate limit                       429 (Retry-After forwarded)
	judge down, bad payload, expired login 502
	stale write, sync already running      409
	anything else                          500
*/
package handlers
