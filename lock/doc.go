// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lock keeps two leaderboard syncs from running at once.

Local guards a single process. Redis uses SET NX PX with a random token and
releases through a compare-and-delete script, so several instances behind a
load balancer share one lock:

	l := lock.NewRedis(client, "", 0)
	release, err := l.Acquire(ctx)
	if errors.Is(err, lock.ErrLocked) {
		// another sync is running
	}
	defer release()

The lock only avoids wasted judge calls. Correctness under races comes from
the compare-and-swap commit in the store package.
*/
package lock
