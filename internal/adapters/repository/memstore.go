package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clubops/standings/internal/domain/model"
	"github.com/clubops/standings/pkg/metrics"
)

// MemoryStore is the in-memory Store implementation. A single RWMutex
// guards all state; realistic club sizes are far too small for sharding to
// pay off, and the engines read whole snapshots anyway.
type MemoryStore struct {
	mu sync.RWMutex

	contests      model.ContestSet
	members       map[string]*memberState
	participation map[string]bool
	preferences   map[string]model.PreferenceList
	manualTeams   []model.Team
	autoTeams     []model.Team
	phase         model.Phase
}

// memberState holds one member's mutable records.
type memberState struct {
	displayName string
	results     map[string]model.ContestPerformance
	optedOut    map[string]bool
}

// NewMemoryStore creates a store with configuration options.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		members:       make(map[string]*memberState),
		participation: make(map[string]bool),
		preferences:   make(map[string]model.PreferenceList),
		phase:         model.PhaseSubmission,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateTotalMembers(0)
	return s
}

// SetContests replaces the chronological contest set.
func (s *MemoryStore) SetContests(ctx context.Context, contests model.ContestSet) error {
	seen := make(map[string]bool, len(contests))
	for _, c := range contests {
		if seen[c.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateContest, c.ID)
		}
		seen[c.ID] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests = append(model.ContestSet{}, contests...)
	return nil
}

// Contests returns a copy of the contest set.
func (s *MemoryStore) Contests(ctx context.Context) model.ContestSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(model.ContestSet{}, s.contests...)
}

// ApplyResult upserts one (member, contest) performance.
func (s *MemoryStore) ApplyResult(ctx context.Context, username, contestID string, perf model.ContestPerformance) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasContest(contestID) {
		return false, fmt.Errorf("%w: %q", ErrUnknownContest, contestID)
	}

	member, ok := s.members[username]
	if !ok {
		member = &memberState{
			displayName: username,
			results:     make(map[string]model.ContestPerformance),
			optedOut:    make(map[string]bool),
		}
		s.members[username] = member
		metrics.UpdateTotalMembers(len(s.members))
	}

	if existing, ok := member.results[contestID]; ok && performanceEqual(existing, perf) {
		return false, nil
	}
	member.results[contestID] = perf
	return true, nil
}

// SetDisplayName records a member's display name, creating the member if
// needed.
func (s *MemoryStore) SetDisplayName(ctx context.Context, username, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[username]
	if !ok {
		member = &memberState{
			displayName: username,
			results:     make(map[string]model.ContestPerformance),
			optedOut:    make(map[string]bool),
		}
		s.members[username] = member
		metrics.UpdateTotalMembers(len(s.members))
	}
	if displayName != "" {
		member.displayName = displayName
	}
}

// Roster returns every member ordered by username.
func (s *MemoryStore) Roster(ctx context.Context) model.Roster {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	usernames := make([]string, 0, len(s.members))
	for username := range s.members {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	roster := make(model.Roster, 0, len(usernames))
	for _, username := range usernames {
		member := s.members[username]
		results := make(map[string]model.ContestPerformance, len(member.results))
		for id, perf := range member.results {
			results[id] = perf
		}
		roster = append(roster, model.Member{
			Username:    username,
			DisplayName: member.displayName,
			Results:     results,
		})
	}
	return roster
}

// SetOptOut marks or clears a member's opt-out for one contest.
func (s *MemoryStore) SetOptOut(ctx context.Context, username, contestID string, optedOut bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasContest(contestID) {
		return fmt.Errorf("%w: %q", ErrUnknownContest, contestID)
	}
	member, ok := s.members[username]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, username)
	}
	if optedOut {
		member.optedOut[contestID] = true
	} else {
		delete(member.optedOut, contestID)
	}
	return nil
}

// OptOuts returns per-member opted-out contest ids in chronological order.
func (s *MemoryStore) OptOuts(ctx context.Context) map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string)
	for username, member := range s.members {
		if len(member.optedOut) == 0 {
			continue
		}
		ids := make([]string, 0, len(member.optedOut))
		for _, c := range s.contests {
			if member.optedOut[c.ID] {
				ids = append(ids, c.ID)
			}
		}
		out[username] = ids
	}
	return out
}

// SetParticipation flags whether a member opted into team formation.
func (s *MemoryStore) SetParticipation(ctx context.Context, username string, optedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[username]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, username)
	}
	if optedIn {
		s.participation[username] = true
	} else {
		delete(s.participation, username)
	}
	return nil
}

// Participants returns a copy of the opted-in set.
func (s *MemoryStore) Participants(ctx context.Context) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.participation))
	for username := range s.participation {
		out[username] = true
	}
	return out
}

// SetPreferences stores a member's validated preference list.
func (s *MemoryStore) SetPreferences(ctx context.Context, username string, prefs model.PreferenceList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[username]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, username)
	}
	prefs.Teammates = append([]string{}, prefs.Teammates...)
	s.preferences[username] = prefs
	return nil
}

// Preferences returns a copy of every stored preference list.
func (s *MemoryStore) Preferences(ctx context.Context) map[string]model.PreferenceList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.PreferenceList, len(s.preferences))
	for username, prefs := range s.preferences {
		prefs.Teammates = append([]string{}, prefs.Teammates...)
		out[username] = prefs
	}
	return out
}

// AddManualTeam stores an admin-approved team.
func (s *MemoryStore) AddManualTeam(ctx context.Context, team model.Team) error {
	if team.Title == "" || len(team.Members) != model.TeamSize {
		return fmt.Errorf("%w: want a title and exactly %d members", ErrBadTeam, model.TeamSize)
	}
	distinct := make(map[string]bool, len(team.Members))
	for _, member := range team.Members {
		if distinct[member] {
			return fmt.Errorf("%w: duplicate member %q", ErrBadTeam, member)
		}
		distinct[member] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range append(append([]model.Team{}, s.manualTeams...), s.autoTeams...) {
		if existing.Title == team.Title {
			return fmt.Errorf("%w: %q", ErrTeamExists, team.Title)
		}
		for _, member := range existing.Members {
			if distinct[member] {
				return fmt.Errorf("%w: %q", ErrMemberAssigned, member)
			}
		}
	}
	team.Origin = model.TeamOriginManual
	team.Members = append([]string{}, team.Members...)
	s.manualTeams = append(s.manualTeams, team)
	return nil
}

// ManualTeams returns a copy of the admin-approved teams.
func (s *MemoryStore) ManualTeams(ctx context.Context) []model.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTeams(s.manualTeams)
}

// ReplaceAutoTeams atomically swaps the computed teams. Manual teams are
// never touched; re-finalization is an overwrite of auto output only. The
// swap is validated against the manual teams under the same lock, so a
// manual team registered after the formation pass read its input can never
// end up sharing a member or a title with the computed teams.
func (s *MemoryStore) ReplaceAutoTeams(ctx context.Context, teams []model.Team) error {
	for _, team := range teams {
		if team.Origin != model.TeamOriginAuto {
			return fmt.Errorf("%w: %q is not auto", ErrBadTeam, team.Title)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assigned := make(map[string]bool)
	titles := make(map[string]bool, len(s.manualTeams))
	for _, manual := range s.manualTeams {
		titles[manual.Title] = true
		for _, member := range manual.Members {
			assigned[member] = true
		}
	}
	for _, team := range teams {
		if titles[team.Title] {
			return fmt.Errorf("%w: %q", ErrTeamExists, team.Title)
		}
		for _, member := range team.Members {
			if assigned[member] {
				return fmt.Errorf("%w: %q", ErrMemberAssigned, member)
			}
		}
	}

	s.autoTeams = copyTeams(teams)
	return nil
}

// Teams returns manual teams followed by computed teams.
func (s *MemoryStore) Teams(ctx context.Context) []model.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := copyTeams(s.manualTeams)
	return append(out, copyTeams(s.autoTeams)...)
}

// SetPhase moves the collection to the given phase.
func (s *MemoryStore) SetPhase(ctx context.Context, phase model.Phase) error {
	if !phase.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, phase)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	return nil
}

// Phase returns the current phase.
func (s *MemoryStore) Phase(ctx context.Context) model.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Count returns the number of members tracked.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// hasContest must be called with at least a read lock held.
func (s *MemoryStore) hasContest(contestID string) bool {
	for _, c := range s.contests {
		if c.ID == contestID {
			return true
		}
	}
	return false
}

func performanceEqual(a, b model.ContestPerformance) bool {
	if a.Solved != b.Solved || a.Penalty != b.Penalty || a.Score != b.Score || a.Demerit != b.Demerit {
		return false
	}
	switch {
	case a.Submissions == nil && b.Submissions == nil:
		return true
	case a.Submissions == nil || b.Submissions == nil:
		return false
	default:
		return *a.Submissions == *b.Submissions
	}
}

func copyTeams(teams []model.Team) []model.Team {
	out := make([]model.Team, len(teams))
	for i, team := range teams {
		team.Members = append([]string{}, team.Members...)
		out[i] = team
	}
	return out
}
