// Package scoring defines the contract for computing weighted contest
// scores from raw results.
package scoring

import (
	"context"
	"fmt"
)

// Default scoring configuration constants.
const (
	defaultSolveWeight   = 100.0
	defaultPenaltyWeight = 1.0
)

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithContestWeights sets per-contest solve weights from a configuration
// map. Contests without an entry use defaultWeight.
func WithContestWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(s *WeightedScorer) {
		s.contestWeights = make(map[string]float64)
		for contestID, weight := range weights {
			if weight > 0 {
				s.contestWeights[contestID] = weight
			}
		}
		if defaultWeight > 0 {
			s.defaultWeight = defaultWeight
		}
	}
}

// WithPenaltyWeight sets the penalty multiplier subtracted from the score.
func WithPenaltyWeight(weight float64) Option {
	return func(s *WeightedScorer) {
		if weight >= 0 {
			s.penaltyWeight = weight
		}
	}
}

// Input abstracts the result fields needed for scoring.
type Input struct {
	Username  string
	ContestID string
	Solved    int
	Penalty   float64
}

// Result contains the computed contest score for a member.
type Result struct {
	Username string
	Score    float64
}

// Scorer computes a weighted contest score from a raw result. Upstream
// sources may precompute scores; this runs only when they do not.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// WeightedScorer implements Scorer with a per-contest weight table.
type WeightedScorer struct {
	contestWeights map[string]float64
	defaultWeight  float64
	penaltyWeight  float64
}

// NewWeightedScorer creates a scorer with configuration options.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		contestWeights: make(map[string]float64),
		defaultWeight:  defaultSolveWeight,
		penaltyWeight:  defaultPenaltyWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the weighted score for the given result. Demerit
// adjustments applied upstream travel inside precomputed scores and never
// reach this path.
func (s *WeightedScorer) Score(ctx context.Context, in Input) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	weight, ok := s.contestWeights[in.ContestID]
	if !ok {
		weight = s.defaultWeight
	}
	score := float64(in.Solved)*weight - in.Penalty*s.penaltyWeight
	return Result{
		Username: in.Username,
		Score:    score,
	}, nil
}

// SetContestWeight allows customization of a single contest's solve weight.
func (s *WeightedScorer) SetContestWeight(contestID string, weight float64) {
	s.contestWeights[contestID] = weight
}
