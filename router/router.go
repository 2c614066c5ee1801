// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/club-leaderboard/auth"
	"github.com/danielhkuo/club-leaderboard/cliparse"
	"github.com/danielhkuo/club-leaderboard/handlers"
	"github.com/danielhkuo/club-leaderboard/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, syncer handlers.Syncer, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	leaderboardHandler := handlers.NewLeaderboardHandler(db, cfg)
	syncHandler := handlers.NewSyncHandler(syncer)
	validator := auth.NewTriggerValidator(cfg.SyncSecret)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Leaderboard (public read)
	mux.HandleFunc("GET /leaderboard", middleware.WithLogging(leaderboardHandler.GetLeaderboard))

	// Sync trigger (cron or admin, bearer token)
	mux.HandleFunc("POST /leaderboard/sync",
		middleware.WithLogging(middleware.RequireTrigger(validator, syncHandler.TriggerSync)))

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("club-leaderboard API v1"))
	})

	return mux
}
