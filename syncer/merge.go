// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"sort"

	"github.com/danielhkuo/club-leaderboard/models"
	"github.com/danielhkuo/club-leaderboard/scoring"
)

// IdentityFork is a judge participant that shows up under a different name
// than the leaderboard row it last contributed to.
type IdentityFork struct {
	ParticipantID string
	PreviousName  string
	Name          string
}

// Merge folds one contest's entries into the cumulative leaderboard and
// returns the re-ranked result.
//
// Rows are keyed by display name. A matching row gains the entry's solved
// count and one consistency point; an unknown name starts a row with its
// solved count and consistency 1. Rows are ordered by score desc, then
// consistency desc, then previous rank asc. New rows have no previous rank
// and follow existing rows they tie with, in contest order.
//
// existing is not modified.
func Merge(existing []models.Ranking, entries []scoring.Entry) ([]models.Ranking, []IdentityFork) {
	merged := make([]models.Ranking, len(existing))
	copy(merged, existing)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Rank < merged[j].Rank
	})

	byName := make(map[string]int, len(merged)+len(entries))
	nameByParticipant := make(map[string]string, len(merged))
	for i, r := range merged {
		byName[r.Name] = i
		if r.ParticipantID != "" {
			nameByParticipant[r.ParticipantID] = r.Name
		}
	}

	var forks []IdentityFork
	counted := make(map[string]bool, len(entries))

	for _, e := range entries {
		if prev, ok := nameByParticipant[e.ParticipantID]; ok && prev != e.Name {
			forks = append(forks, IdentityFork{
				ParticipantID: e.ParticipantID,
				PreviousName:  prev,
				Name:          e.Name,
			})
		}

		i, ok := byName[e.Name]
		if !ok {
			merged = append(merged, models.Ranking{Name: e.Name})
			i = len(merged) - 1
			byName[e.Name] = i
		}

		merged[i].Score += e.TotalSolved
		merged[i].ParticipantID = e.ParticipantID
		// One consistency point per contest even if two participants share a name
		if !counted[e.Name] {
			merged[i].Consistency++
			counted[e.Name] = true
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Consistency > merged[j].Consistency
	})

	for i := range merged {
		merged[i].Rank = i + 1
	}

	return merged, forks
}
