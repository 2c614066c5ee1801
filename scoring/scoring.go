// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"sort"
)

// PenaltyPerWrongSubmission is the penalty, in seconds, charged for every
// rejected attempt made before a problem's first accepted submission.
const PenaltyPerWrongSubmission = 1200

// VerdictAccepted is the only verdict code counted as a solve.
// Every other value, including codes the judge may add later, is a rejection.
const VerdictAccepted = 1

// Submission is a single judge event, offset in seconds from contest start.
type Submission struct {
	ParticipantID string
	ProblemID     int
	Verdict       int
	Offset        int64
}

// Identity is how the judge describes a participant.
type Identity struct {
	Login       string
	DisplayName string
	AvatarURL   string
}

// Name renders the identity as "<login> (<display name or login>)".
// This string is also the key of the cumulative leaderboard.
func (id Identity) Name() string {
	display := id.DisplayName
	if display == "" {
		display = id.Login
	}
	return id.Login + " (" + display + ")"
}

// ProblemResult is one participant's state on one problem.
type ProblemResult struct {
	ProblemID int    `json:"problem_id"`
	Attempts  int    `json:"attempts"`
	Solved    bool   `json:"solved"`
	SolveTime *int64 `json:"solve_time,omitempty"`
}

// Entry is a single row of a contest leaderboard.
type Entry struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	TotalSolved   int             `json:"total_solved"`
	Penalty       int64           `json:"penalty"`
	Problems      []ProblemResult `json:"problems"`
}

// Score ranks one contest. Submissions outside [0, durationSeconds] are ignored.
// Every participant in the map gets exactly one entry, even without submissions.
// The result is fully ordered: solved desc, penalty asc, name asc.
func Score(submissions []Submission, durationSeconds int64, participants map[string]Identity) []Entry {
	inWindow := make([]Submission, 0, len(submissions))
	for _, s := range submissions {
		if s.Offset >= 0 && s.Offset <= durationSeconds {
			inWindow = append(inWindow, s)
		}
	}

	// Attempts must only count submissions that happened before the accept.
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].Offset < inWindow[j].Offset
	})

	type tally struct {
		solved   int
		penalty  int64
		problems map[int]*ProblemResult
	}
	tallies := make(map[string]*tally, len(participants))

	for _, s := range inWindow {
		t, ok := tallies[s.ParticipantID]
		if !ok {
			t = &tally{problems: make(map[int]*ProblemResult)}
			tallies[s.ParticipantID] = t
		}

		p, ok := t.problems[s.ProblemID]
		if !ok {
			p = &ProblemResult{ProblemID: s.ProblemID}
			t.problems[s.ProblemID] = p
		}

		// First accept wins; everything after it is ignored.
		if p.Solved {
			continue
		}

		if s.Verdict == VerdictAccepted {
			offset := s.Offset
			p.Solved = true
			p.SolveTime = &offset
			t.solved++
			t.penalty += s.Offset + int64(p.Attempts)*PenaltyPerWrongSubmission
		} else {
			p.Attempts++
		}
	}

	entries := make([]Entry, 0, len(participants))
	for id, identity := range participants {
		entry := Entry{
			ParticipantID: id,
			Name:          identity.Name(),
			Problems:      []ProblemResult{},
		}

		if t, ok := tallies[id]; ok {
			entry.TotalSolved = t.solved
			entry.Penalty = t.penalty
			for _, p := range t.problems {
				entry.Problems = append(entry.Problems, *p)
			}
			sort.Slice(entry.Problems, func(i, j int) bool {
				return entry.Problems[i].ProblemID < entry.Problems[j].ProblemID
			})
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		// 1. More solves wins
		if a.TotalSolved != b.TotalSolved {
			return a.TotalSolved > b.TotalSolved
		}

		// 2. Lower penalty wins
		if a.Penalty != b.Penalty {
			return a.Penalty < b.Penalty
		}

		// 3. Name, byte order (codepoint order for UTF-8)
		if a.Name != b.Name {
			return a.Name < b.Name
		}

		// Duplicate names still need a fixed order.
		return a.ParticipantID < b.ParticipantID
	})

	return entries
}
