package ranking

import (
	"sort"

	"github.com/clubops/standings/internal/domain/model"
)

// ContestRanking ranks the attendees of a single contest by
// (score desc, solved desc, penalty asc), username as the final tiebreak.
// Members without a record for the contest have no rank in it.
func (e *Engine) ContestRanking(roster model.Roster, contestID string) []model.ContestRank {
	ranks := make([]model.ContestRank, 0, len(roster))
	seen := make(map[string]bool, len(roster))
	for _, member := range roster {
		if seen[member.Username] {
			continue
		}
		seen[member.Username] = true
		perf, ok := member.Results[contestID]
		if !ok {
			continue
		}
		ranks = append(ranks, model.ContestRank{
			Username: member.Username,
			Score:    perf.Score,
			Solved:   perf.Solved,
			Penalty:  perf.Penalty,
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Solved != b.Solved {
			return a.Solved > b.Solved
		}
		if a.Penalty != b.Penalty {
			return a.Penalty < b.Penalty
		}
		return a.Username < b.Username
	})
	for i := range ranks {
		ranks[i].Rank = i + 1
	}
	return ranks
}
