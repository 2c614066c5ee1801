// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/club-leaderboard/cliparse"
	"github.com/danielhkuo/club-leaderboard/middleware"
	"github.com/danielhkuo/club-leaderboard/models"
	"github.com/danielhkuo/club-leaderboard/store"
)

type LeaderboardHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewLeaderboardHandler(db *sql.DB, cfg cliparse.Config) *LeaderboardHandler {
	return &LeaderboardHandler{store: store.New(db, cfg.DatabaseType), cfg: cfg}
}

// GetLeaderboard handles GET /leaderboard
// Serves the last committed snapshot; a failed sync never shows up here
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		slog.Error("failed to read leaderboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.LeaderboardResponse{
		Latest:      snap.Latest,
		Leaderboard: snap.Leaderboard,
	}
	if !snap.State.LastSyncedAt.IsZero() {
		resp.LastSyncedAgo = humanize.Time(snap.State.LastSyncedAt)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
