package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/clubops/standings/pkg/logger"
)

// Attendance and performance distribution constants.
const (
	attendanceRate      = 0.8  // chance a member attends a given contest
	precomputedRate     = 0.3  // chance a result carries an upstream score
	submissionsRate     = 0.7  // chance the source reports a submission count
	zeroSolveRate       = 0.15 // chance an attendee solves nothing
	maxSolved           = 8
	maxPenaltyMinutes   = 300.0
	maxExtraSubmissions = 12
	solveWeight         = 100.0
)

// generateContests builds a chronological season of contest ids.
func generateContests(numContests int) []Contest {
	contests := make([]Contest, numContests)
	for i := range contests {
		contests[i] = Contest{
			ID:    fmt.Sprintf("weekly-%02d", i+1),
			Title: fmt.Sprintf("Weekly Contest %d", i+1),
		}
	}
	return contests
}

// generateRoster builds unique usernames with display names.
func generateRoster(numMembers int) []string {
	usernames := make([]string, 0, numMembers)
	seen := make(map[string]bool, numMembers)
	for len(usernames) < numMembers {
		username := gofakeit.Username()
		if seen[username] {
			continue
		}
		seen[username] = true
		usernames = append(usernames, username)
	}
	return usernames
}

// generateResults creates a season's worth of result submissions. Not every
// member attends every contest, and a slice of results carry precomputed
// scores the way an upstream judge would send them.
func generateResults(ctx context.Context, config *Config, stats *Stats) ([]Contest, []Result, error) {
	logger.Get().Info(ctx, "generating season results",
		logger.Int("members", config.NumMembers),
		logger.Int("contests", config.NumContests),
	)

	contests := generateContests(config.NumContests)
	roster := generateRoster(config.NumMembers)

	results := make([]Result, 0, config.NumMembers*config.NumContests)
	for _, username := range roster {
		for _, contest := range contests {
			select {
			case <-ctx.Done():
				return nil, nil, fmt.Errorf("context cancelled during result generation: %w", ctx.Err())
			default:
			}
			if gofakeit.Float64Range(0, 1) > attendanceRate {
				continue
			}
			results = append(results, generateSingleResult(username, contest.ID))
		}
	}

	stats.ResultsGenerated = len(results)
	logger.Get().Info(ctx, "generated results successfully", logger.Int("count", len(results)))
	return contests, results, nil
}

// generateSingleResult creates one result submission for a member.
func generateSingleResult(username, contestID string) Result {
	solved := gofakeit.Number(1, maxSolved)
	if gofakeit.Float64Range(0, 1) < zeroSolveRate {
		solved = 0
	}
	penalty := gofakeit.Float64Range(0, maxPenaltyMinutes)
	if solved == 0 {
		penalty = 0
	}

	result := Result{
		SubmissionID: uuid.New().String(),
		Username:     username,
		ContestID:    contestID,
		Solved:       solved,
		Penalty:      penalty,
		TS:           time.Now().UTC().Format(time.RFC3339),
	}

	if gofakeit.Float64Range(0, 1) < precomputedRate {
		score := float64(solved)*solveWeight - penalty
		result.Score = &score
	}
	if gofakeit.Float64Range(0, 1) < submissionsRate {
		submissions := solved + gofakeit.Number(0, maxExtraSubmissions)
		result.Submissions = &submissions
	}
	return result
}
