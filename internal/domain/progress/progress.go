// Package progress derives rank movement between contests for trend display.
package progress

import (
	"errors"

	"github.com/clubops/standings/internal/domain/model"
	"github.com/clubops/standings/internal/domain/ranking"
)

// ErrUnknownContest means the target contest id is not in the contest set.
var ErrUnknownContest = errors.New("unknown target contest")

// Tracker compares per-contest ranks across a contest set. It reads raw
// results only; the cumulative effective-score logic of the standings never
// enters a trend computation.
type Tracker struct {
	engine *ranking.Engine
}

// New creates a tracker on top of the given ranking engine.
func New(engine *ranking.Engine) *Tracker {
	return &Tracker{engine: engine}
}

// Movements reports, for every roster member, their rank in the target
// contest against their rank in the nearest earlier contest they attended.
// Either rank being undefined yields Comparable=false instead of a delta.
func (t *Tracker) Movements(roster model.Roster, contests model.ContestSet, targetID string) ([]model.Movement, error) {
	targetIdx := -1
	for i, c := range contests {
		if c.ID == targetID {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, ErrUnknownContest
	}

	// Rank lookups per contest, built lazily while scanning backward.
	rankByContest := make(map[string]map[string]int, len(contests))
	lookup := func(contestID string) map[string]int {
		if m, ok := rankByContest[contestID]; ok {
			return m
		}
		m := make(map[string]int)
		for _, r := range t.engine.ContestRanking(roster, contestID) {
			m[r.Username] = r.Rank
		}
		rankByContest[contestID] = m
		return m
	}

	current := lookup(targetID)
	movements := make([]model.Movement, 0, len(roster))
	seen := make(map[string]bool, len(roster))
	for _, member := range roster {
		if seen[member.Username] {
			continue
		}
		seen[member.Username] = true

		movement := model.Movement{Username: member.Username}
		currentRank, attended := current[member.Username]
		previousRank := 0
		if attended {
			for i := targetIdx - 1; i >= 0; i-- {
				if rank, ok := lookup(contests[i].ID)[member.Username]; ok {
					previousRank = rank
					break
				}
			}
		}
		if attended && previousRank > 0 {
			movement.CurrentRank = currentRank
			movement.PreviousRank = previousRank
			movement.Delta = previousRank - currentRank
			movement.Comparable = true
		}
		movements = append(movements, movement)
	}
	return movements, nil
}
