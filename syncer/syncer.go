// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/club-leaderboard/events"
	"github.com/danielhkuo/club-leaderboard/judge"
	"github.com/danielhkuo/club-leaderboard/lock"
	"github.com/danielhkuo/club-leaderboard/metrics"
	"github.com/danielhkuo/club-leaderboard/models"
	"github.com/danielhkuo/club-leaderboard/scoring"
	"github.com/danielhkuo/club-leaderboard/store"
)

// Judge is the part of the judge client a sync needs.
type Judge interface {
	LatestContestID(ctx context.Context) (int64, error)
	FetchContest(ctx context.Context, contestID int64) (*judge.Contest, error)
}

// Store is the part of the store a sync needs.
type Store interface {
	SyncState(ctx context.Context) (store.SyncState, error)
	Rankings(ctx context.Context) ([]models.Ranking, error)
	Apply(ctx context.Context, c store.Commit) error
}

// publishTimeout bounds the event write, which outlives the caller's context.
const publishTimeout = 10 * time.Second

// Syncer pulls the newest contest from the judge and folds it into the
// cumulative leaderboard.
type Syncer struct {
	judge     Judge
	store     Store
	lock      lock.Locker
	metrics   *metrics.Metrics
	publisher events.Publisher

	now      func() time.Time
	newRunID func() string
}

// New creates a Syncer. A nil locker, metrics or publisher is replaced with
// an in-process lock, an unregistered collector set and a no-op publisher.
func New(j Judge, st Store, l lock.Locker, m *metrics.Metrics, pub events.Publisher) *Syncer {
	if l == nil {
		l = lock.NewLocal()
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Syncer{
		judge:     j,
		store:     st,
		lock:      l,
		metrics:   m,
		publisher: pub,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

// Sync runs one synchronization. It returns up-to-date when the judge's newest
// contest is the one already merged. Judge failures abort before anything is
// written; a commit that loses a race returns store.ErrStaleWrite.
func (s *Syncer) Sync(ctx context.Context) (models.SyncResponse, error) {
	start := s.now()
	runID := s.newRunID()
	log := slog.With("run_id", runID)

	resp, err := s.sync(ctx, runID, log)
	elapsed := s.now().Sub(start)

	switch {
	case err == nil && resp.Status == models.SyncStatusUpToDate:
		s.metrics.ObserveSync(metrics.StatusUpToDate, elapsed)
	case err == nil:
		s.metrics.ObserveSync(metrics.StatusUpdated, elapsed)
	case errors.Is(err, lock.ErrLocked):
		s.metrics.ObserveSync(metrics.StatusLocked, elapsed)
	case errors.Is(err, store.ErrStaleWrite):
		s.metrics.ObserveSync(metrics.StatusStale, elapsed)
	default:
		s.metrics.ObserveSync(metrics.StatusFailed, elapsed)
	}

	return resp, err
}

func (s *Syncer) sync(ctx context.Context, runID string, log *slog.Logger) (models.SyncResponse, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return models.SyncResponse{}, err
	}
	defer release()

	remoteID, err := s.judge.LatestContestID(ctx)
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("failed to fetch latest contest id: %w", err)
	}

	state, err := s.store.SyncState(ctx)
	if err != nil {
		return models.SyncResponse{}, err
	}

	if remoteID == state.LastContestID {
		log.Info("leaderboard up to date", "contest_id", remoteID)
		return models.SyncResponse{Status: models.SyncStatusUpToDate, ContestID: remoteID}, nil
	}

	contest, err := s.judge.FetchContest(ctx, remoteID)
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("failed to fetch contest %d: %w", remoteID, err)
	}

	entries := scoring.Score(contest.Submissions, contest.DurationSeconds, contest.Participants)

	existing, err := s.store.Rankings(ctx)
	if err != nil {
		return models.SyncResponse{}, err
	}

	rankings, forks := Merge(existing, entries)
	for _, f := range forks {
		log.Warn("possible identity fork",
			"participant_id", f.ParticipantID,
			"previous_name", f.PreviousName,
			"name", f.Name,
		)
	}

	syncedAt := s.now().UTC()
	err = s.store.Apply(ctx, store.Commit{
		PrevContestID: state.LastContestID,
		ContestID:     remoteID,
		ContestTitle:  contest.Title,
		RunID:         runID,
		SyncedAt:      syncedAt,
		Latest:        LatestResults(entries),
		Rankings:      rankings,
	})
	if err != nil {
		return models.SyncResponse{}, err
	}

	s.metrics.SetLeaderboard(remoteID, len(rankings))
	log.Info("leaderboard updated",
		"contest_id", remoteID,
		"previous_contest_id", state.LastContestID,
		"participants", len(entries),
		"entries", len(rankings),
	)

	event := events.NewLeaderboardUpdated(remoteID, contest.Title, runID, rankings, syncedAt)
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishLeaderboardUpdated(pubCtx, event); err != nil {
		s.metrics.IncEventFailure()
		log.Error("failed to publish leaderboard event", "contest_id", remoteID, "error", err)
	}

	return models.SyncResponse{
		Status:      models.SyncStatusUpdated,
		ContestID:   remoteID,
		RunID:       runID,
		Leaderboard: rankings,
	}, nil
}

// RunEvery calls Sync immediately and then once per interval until ctx is done.
// Failures are logged and left for the next tick.
func (s *Syncer) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("scheduled sync started", "interval", interval.String())
	for {
		if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
			slog.Error("scheduled sync failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("scheduled sync stopped")
			return
		case <-ticker.C:
		}
	}
}

// LatestResults converts per-contest entries into the latest results snapshot.
// Score is the number of problems solved.
func LatestResults(entries []scoring.Entry) []models.LatestResult {
	results := make([]models.LatestResult, len(entries))
	for i, e := range entries {
		results[i] = models.LatestResult{
			Rank:    i + 1,
			Name:    e.Name,
			Score:   e.TotalSolved,
			Penalty: e.Penalty,
		}
	}
	return results
}
