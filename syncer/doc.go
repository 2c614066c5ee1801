// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package syncer keeps the stored leaderboard in step with the judge.

# Sync Protocol

One Sync call:

 1. takes the sync lock (lock.ErrLocked if another run holds it)
 2. asks the judge for its newest contest id
 3. compares it numerically with the stored last contest id and returns
    up-to-date on equality
 4. downloads and scores the contest
 5. merges the result into the cumulative leaderboard (see Merge)
 6. commits latest results, leaderboard and sync state in one transaction,
    conditioned on the last contest id read in step 3
 7. publishes a leaderboard.updated event

Judge failures stop the run before step 6, so nothing is written. A lost
commit race returns store.ErrStaleWrite. Event publishing is best effort.

# Scheduling

Deployments without an external cron can run

	go s.RunEvery(ctx, 15*time.Minute)
*/
package syncer
