// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the club leaderboard server.

The server pulls contest standings from an external judge, scores them
ICPC style (problems solved, then penalty time) and keeps a cumulative
leaderboard across contests for the club website.

# Starting the Server

	DATABASE_URL=leaderboard.db SYNC_TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -sync-interval 30m

A .env file in the working directory is loaded first; real environment
variables win over it.

# Triggering Syncs

Mint a token for the scheduler that calls POST /leaderboard/sync:

	go run . token -sub github-actions -ttl 8760h

and send it as "Authorization: Bearer <token>". Alternatively set
SYNC_INTERVAL to let the server sync on its own.

# Architecture

  - scoring: per-contest scoring, pure
  - judge: judge HTTP client (contest list, rank payload)
  - syncer: sync protocol, cumulative merge, scheduler
  - store: SQL persistence with a compare-and-swap commit
  - lock: in-process or Redis sync lock
  - events: leaderboard.updated events to Kafka
  - metrics: Prometheus collectors, served at /metrics
  - handlers, router, middleware: HTTP surface
  - auth: trigger tokens
  - db: driver selection and schema
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
