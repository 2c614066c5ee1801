// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the club leaderboard API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, syncer, registry)

# Endpoints

	GET  /health            - Health check
	GET  /                  - Banner
	GET  /leaderboard       - Latest results and cumulative leaderboard
	POST /leaderboard/sync  - Run a sync (Authorization: Bearer <trigger token>)
	GET  /metrics           - Prometheus metrics from the given gatherer

The sync route is wrapped in middleware.RequireTrigger, validated against
cfg.SyncSecret.
*/
package router
