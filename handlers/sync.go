// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/club-leaderboard/judge"
	"github.com/danielhkuo/club-leaderboard/lock"
	"github.com/danielhkuo/club-leaderboard/middleware"
	"github.com/danielhkuo/club-leaderboard/models"
	"github.com/danielhkuo/club-leaderboard/store"
)

// Syncer runs one leaderboard synchronization
type Syncer interface {
	Sync(ctx context.Context) (models.SyncResponse, error)
}

type SyncHandler struct {
	syncer Syncer
}

func NewSyncHandler(s Syncer) *SyncHandler {
	return &SyncHandler{syncer: s}
}

// TriggerSync handles POST /leaderboard/sync
// Requires a trigger token (checked by middleware.RequireTrigger)
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	trigger := middleware.TriggerSubject(r.Context())

	resp, err := h.syncer.Sync(r.Context())
	if err != nil {
		status, message := syncErrorStatus(err)
		if status == http.StatusTooManyRequests {
			var upstream *judge.UpstreamError
			if errors.As(err, &upstream) && upstream.RetryAfter != "" {
				w.Header().Set("Retry-After", upstream.RetryAfter)
			}
		}

		if status >= http.StatusInternalServerError {
			slog.Error("sync failed", "trigger", trigger, "status", status, "error", err)
		} else {
			slog.Warn("sync rejected", "trigger", trigger, "status", status, "error", err)
		}
		middleware.ErrorResponse(w, status, message)
		return
	}

	slog.Info("sync triggered", "trigger", trigger, "result", resp.Status, "contest_id", resp.ContestID)
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// syncErrorStatus maps a sync failure to an HTTP status and client message.
// Rate limiting is checked first: a 429 from the judge also matches ErrUnavailable.
func syncErrorStatus(err error) (int, string) {
	var upstream *judge.UpstreamError

	switch {
	case errors.Is(err, judge.ErrRateLimited):
		return http.StatusTooManyRequests, "Judge rate limit reached, retry later"
	case errors.Is(err, judge.ErrCredentialsExpired):
		return http.StatusBadGateway, "Judge session credentials expired"
	case errors.Is(err, judge.ErrMalformedPayload):
		return http.StatusBadGateway, "Judge returned a malformed payload"
	case errors.Is(err, judge.ErrNoContests):
		return http.StatusBadGateway, "Judge returned no contests"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, fmt.Sprintf("Judge %s returned status %d", upstream.Endpoint, upstream.StatusCode)
	case errors.Is(err, judge.ErrUnavailable):
		return http.StatusBadGateway, "Judge unavailable"
	case errors.Is(err, store.ErrStaleWrite):
		return http.StatusConflict, "Leaderboard changed during sync, retry"
	case errors.Is(err, lock.ErrLocked):
		return http.StatusConflict, "Sync already in progress"
	default:
		return http.StatusInternalServerError, "Sync failed"
	}
}
