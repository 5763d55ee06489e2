package repository

import "github.com/clubops/standings/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithContests seeds the initial contest set.
func WithContests(contests model.ContestSet) Option {
	return func(s *MemoryStore) {
		if len(contests) > 0 {
			s.contests = append(model.ContestSet{}, contests...)
		}
	}
}

// WithPhase sets the initial formation phase.
func WithPhase(phase model.Phase) Option {
	return func(s *MemoryStore) {
		if phase.Valid() {
			s.phase = phase
		}
	}
}
