// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/club-leaderboard/db"
	"github.com/danielhkuo/club-leaderboard/models"
)

// ErrStaleWrite means another sync committed after our state was read.
var ErrStaleWrite = errors.New("stale write: sync state changed since it was read")

// SyncState tracks the last processed contest.
type SyncState struct {
	LastContestID int64
	LastSyncedAt  time.Time // zero if never synced
	LastRunID     string
}

// Snapshot is everything the read path serves, read in one transaction.
type Snapshot struct {
	State       SyncState
	Latest      models.LatestRecord
	Leaderboard models.LeaderboardRecord
}

// Commit is the result of one sync run. It is applied atomically.
type Commit struct {
	PrevContestID int64
	ContestID     int64
	ContestTitle  string
	RunID         string
	SyncedAt      time.Time
	Latest        []models.LatestResult
	Rankings      []models.Ranking
}

type Store struct {
	db       *sql.DB
	readOpts *sql.TxOptions
}

// New wraps a database opened by db.Open. dbType selects the read isolation:
// Postgres reads use REPEATABLE READ so a snapshot never straddles a commit.
func New(conn *sql.DB, dbType string) *Store {
	s := &Store{db: conn}
	if dbType == db.TypePostgres {
		s.readOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return s
}

// SyncState returns the persisted state row.
func (s *Store) SyncState(ctx context.Context) (SyncState, error) {
	state, _, err := scanState(s.db.QueryRowContext(ctx, stateQuery))
	if err != nil {
		return SyncState{}, fmt.Errorf("failed to read sync state: %w", err)
	}
	return state, nil
}

// Rankings returns the cumulative leaderboard ordered by rank.
func (s *Store) Rankings(ctx context.Context) ([]models.Ranking, error) {
	return queryRankings(ctx, s.db)
}

// Snapshot returns the last committed state, latest results and leaderboard.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, s.readOpts)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to begin read: %w", err)
	}
	defer tx.Rollback()

	state, title, err := scanState(tx.QueryRowContext(ctx, stateQuery))
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read sync state: %w", err)
	}

	latest, err := queryLatest(ctx, tx)
	if err != nil {
		return Snapshot{}, err
	}

	rankings, err := queryRankings(ctx, tx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		State: state,
		Latest: models.LatestRecord{
			Results: latest,
		},
		Leaderboard: models.LeaderboardRecord{
			Rankings:        rankings,
			LastContestCode: state.LastContestID,
		},
	}
	if !state.LastSyncedAt.IsZero() {
		syncedAt := state.LastSyncedAt
		snap.Latest.UpdateTime = &syncedAt
		snap.Latest.ContestID = state.LastContestID
		snap.Latest.ContestTitle = title
		snap.Leaderboard.UpdatedAt = &syncedAt
	}

	return snap, tx.Commit()
}

// Apply commits a sync run. The sync_state update is conditioned on
// last_contest_id still being PrevContestID; otherwise nothing is written
// and ErrStaleWrite is returned.
func (s *Store) Apply(ctx context.Context, c Commit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin commit: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE sync_state
		SET last_contest_id = $1, last_synced_at = $2, last_run_id = $3, latest_title = $4
		WHERE id = 1 AND last_contest_id = $5
	`, c.ContestID, c.SyncedAt.UnixMilli(), c.RunID, c.ContestTitle, c.PrevContestID)
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check sync state update: %w", err)
	}
	if affected != 1 {
		return ErrStaleWrite
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM latest_result`); err != nil {
		return fmt.Errorf("failed to clear latest results: %w", err)
	}
	for _, r := range c.Latest {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO latest_result (rank, name, score, penalty)
			VALUES ($1, $2, $3, $4)
		`, r.Rank, r.Name, r.Score, r.Penalty)
		if err != nil {
			return fmt.Errorf("failed to insert latest result %d: %w", r.Rank, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM leaderboard_entry`); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}
	for _, r := range c.Rankings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO leaderboard_entry (name, score, consistency, rank, participant_id)
			VALUES ($1, $2, $3, $4, $5)
		`, r.Name, r.Score, r.Consistency, r.Rank, r.ParticipantID)
		if err != nil {
			return fmt.Errorf("failed to insert leaderboard entry %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync: %w", err)
	}
	return nil
}

const stateQuery = `
	SELECT last_contest_id, last_synced_at, last_run_id, latest_title
	FROM sync_state
	WHERE id = 1
`

func scanState(row *sql.Row) (SyncState, string, error) {
	var state SyncState
	var syncedAtMs int64
	var title string
	if err := row.Scan(&state.LastContestID, &syncedAtMs, &state.LastRunID, &title); err != nil {
		return SyncState{}, "", err
	}
	if syncedAtMs > 0 {
		state.LastSyncedAt = time.UnixMilli(syncedAtMs).UTC()
	}
	return state, title, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryLatest(ctx context.Context, q querier) ([]models.LatestResult, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT rank, name, score, penalty
		FROM latest_result
		ORDER BY rank
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest results: %w", err)
	}
	defer rows.Close()

	results := []models.LatestResult{}
	for rows.Next() {
		var r models.LatestResult
		if err := rows.Scan(&r.Rank, &r.Name, &r.Score, &r.Penalty); err != nil {
			return nil, fmt.Errorf("failed to scan latest result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func queryRankings(ctx context.Context, q querier) ([]models.Ranking, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name, score, consistency, rank, participant_id
		FROM leaderboard_entry
		ORDER BY rank
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	rankings := []models.Ranking{}
	for rows.Next() {
		var r models.Ranking
		if err := rows.Scan(&r.Name, &r.Score, &r.Consistency, &r.Rank, &r.ParticipantID); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}
