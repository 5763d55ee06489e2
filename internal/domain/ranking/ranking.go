// Package ranking turns raw per-contest results into ordered standings.
//
// The engine is pure: it owns no state between calls, performs no I/O, and
// produces byte-identical output for identical input. Every tie in every
// ordering ends at a username comparison so ranks are total.
package ranking

import (
	"math"
	"sort"

	"github.com/clubops/standings/internal/domain/model"
)

// Input carries everything one standings computation needs.
type Input struct {
	Roster   model.Roster
	Contests model.ContestSet

	// DropWorstCount removes each member's N lowest-performing contests
	// from the effective totals.
	DropWorstCount int

	// OptedOut maps usernames to contest ids excluded from their
	// effective totals, independent of drop-worst.
	OptedOut map[string][]string
}

// Engine computes standings and per-contest rankings.
type Engine struct{}

// New creates a ranking engine.
func New() *Engine {
	return &Engine{}
}

// Standings computes the ordered leaderboard, rank 1 = best.
//
// Members with zero attended contests are never an error; they carry zero
// metrics and sort last via the tiebreak chain.
func (e *Engine) Standings(in Input) ([]model.LeaderboardEntry, error) {
	if in.DropWorstCount < 0 {
		return nil, ErrNegativeDropCount
	}
	index := make(map[string]int, len(in.Contests))
	for i, c := range in.Contests {
		if _, dup := index[c.ID]; dup {
			return nil, ErrDuplicateContest
		}
		index[c.ID] = i
	}

	entries := make([]model.LeaderboardEntry, 0, len(in.Roster))
	seen := make(map[string]bool, len(in.Roster))
	for _, member := range in.Roster {
		if seen[member.Username] {
			continue // first occurrence wins
		}
		seen[member.Username] = true
		entries = append(entries, e.buildEntry(member, in, index))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.AdjustedScore != b.AdjustedScore {
			return a.AdjustedScore > b.AdjustedScore
		}
		if a.AdjustedPenalty != b.AdjustedPenalty {
			return a.AdjustedPenalty < b.AdjustedPenalty
		}
		if a.ContestsAttended != b.ContestsAttended {
			return a.ContestsAttended > b.ContestsAttended
		}
		return a.Username < b.Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// buildEntry derives one member's standings row.
func (e *Engine) buildEntry(member model.Member, in Input, index map[string]int) model.LeaderboardEntry {
	entry := model.LeaderboardEntry{
		Username:           member.Username,
		DisplayName:        member.DisplayName,
		DroppedContestIDs:  []string{},
		OptedOutContestIDs: []string{},
	}

	optedOut := make(map[string]bool)
	for _, id := range in.OptedOut[member.Username] {
		optedOut[id] = true
	}

	// Attended contests in chronological order; records for contests
	// outside the set are ignored.
	attended := make([]string, 0, len(member.Results))
	for _, c := range in.Contests {
		if _, ok := member.Results[c.ID]; ok {
			attended = append(attended, c.ID)
		}
	}

	// Raw totals sum every attended contest and exist for display only.
	eligible := make([]string, 0, len(attended))
	for _, id := range attended {
		perf := member.Results[id]
		entry.TotalSolved += perf.Solved
		entry.TotalPenalty += perf.Penalty
		entry.TotalScore += perf.Score
		if optedOut[id] {
			entry.OptedOutContestIDs = append(entry.OptedOutContestIDs, id)
		} else {
			eligible = append(eligible, id)
		}
	}

	// Worst-contest removal happens after the opt-out subtraction, so a
	// contest is never counted in both sets.
	worstFirst := make([]string, len(eligible))
	copy(worstFirst, eligible)
	sort.SliceStable(worstFirst, func(i, j int) bool {
		a := member.Results[worstFirst[i]]
		b := member.Results[worstFirst[j]]
		if a.Solved != b.Solved {
			return a.Solved < b.Solved
		}
		if a.Penalty != b.Penalty {
			return a.Penalty > b.Penalty
		}
		return index[worstFirst[i]] < index[worstFirst[j]]
	})
	dropCount := in.DropWorstCount
	if dropCount > len(worstFirst) {
		dropCount = len(worstFirst)
	}
	dropped := make(map[string]bool, dropCount)
	for _, id := range worstFirst[:dropCount] {
		dropped[id] = true
	}
	// Report dropped ids in chronological order.
	for _, id := range eligible {
		if dropped[id] {
			entry.DroppedContestIDs = append(entry.DroppedContestIDs, id)
		}
	}

	entry.EffectiveSolved = entry.TotalSolved
	entry.EffectivePenalty = entry.TotalPenalty
	entry.EffectiveScore = entry.TotalScore
	kept := make([]model.ContestPerformance, 0, len(eligible))
	for _, id := range attended {
		perf := member.Results[id]
		if optedOut[id] || dropped[id] {
			entry.EffectiveSolved -= perf.Solved
			entry.EffectivePenalty -= perf.Penalty
			entry.EffectiveScore -= perf.Score
			continue
		}
		kept = append(kept, perf)
		if perf.Attended() {
			entry.ContestsAttended++
		}
	}

	scores := make([]float64, len(kept))
	penalties := make([]float64, len(kept))
	for i, perf := range kept {
		scores[i] = perf.Score
		penalties[i] = perf.Penalty
	}
	entry.ScoreStdDev = populationStdDev(scores)
	entry.PenaltyStdDev = populationStdDev(penalties)

	// Consistency adjustment: volatile members score lower and carry a
	// heavier penalty than steady ones with the same effective totals.
	entry.AdjustedScore = entry.EffectiveScore - entry.ScoreStdDev
	entry.AdjustedPenalty = entry.EffectivePenalty + entry.PenaltyStdDev
	return entry
}

// populationStdDev returns the population standard deviation of xs.
// Empty and single-element inputs yield 0.
func populationStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
