// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/clubops/standings/internal/adapters/mq/queue"
	workerpool "github.com/clubops/standings/internal/adapters/mq/worker"
	repository "github.com/clubops/standings/internal/adapters/repository"
	"github.com/clubops/standings/internal/domain/dedupe"
	"github.com/clubops/standings/internal/domain/formation"
	"github.com/clubops/standings/internal/domain/model"
	"github.com/clubops/standings/internal/domain/progress"
	"github.com/clubops/standings/internal/domain/ranking"
	"github.com/clubops/standings/internal/domain/scoring"
	"github.com/clubops/standings/pkg/logger"
	"github.com/clubops/standings/pkg/metrics"
)

// Service implements the API dependencies for the standings system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	scorer     scoring.Scorer
	workerPool *workerpool.Pool
	ranker     *ranking.Engine
	former     *formation.Engine
	tracker    *progress.Tracker

	// formationMu serializes formation runs so two concurrent requests
	// cannot interleave their auto-team swaps.
	formationMu sync.Mutex

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	dropWorstCount int
	teamSize       int
	contestWeights map[string]float64
	defaultWeight  float64
	penaltyWeight  float64

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the result queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDropWorstCount sets how many worst contests are removed from each
// member's effective totals.
func WithDropWorstCount(count int) Option {
	return func(s *Service) {
		if count >= 0 {
			s.dropWorstCount = count
		}
	}
}

// WithTeamSize sets the fixed team size for formation runs.
func WithTeamSize(size int) Option {
	return func(s *Service) {
		if size > 1 {
			s.teamSize = size
		}
	}
}

// WithContestWeights sets per-contest solve weights for scoring.
func WithContestWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(s *Service) {
		s.contestWeights = weights
		if defaultWeight > 0 {
			s.defaultWeight = defaultWeight
		}
	}
}

// WithPenaltyWeight sets the penalty multiplier used by the scorer.
func WithPenaltyWeight(weight float64) Option {
	return func(s *Service) {
		if weight >= 0 {
			s.penaltyWeight = weight
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      10_000,
		dedupeSize:     50_000,
		dropWorstCount: 1,
		teamSize:       model.TeamSize,
		contestWeights: map[string]float64{},
		defaultWeight:  100,
		penaltyWeight:  1,
		stopCh:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting standings service...")

	s.store = repository.NewMemoryStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.scorer = scoring.NewWeightedScorer(
		scoring.WithContestWeights(s.contestWeights, s.defaultWeight),
		scoring.WithPenaltyWeight(s.penaltyWeight),
	)
	s.ranker = ranking.New()
	s.former = formation.New(
		formation.WithTeamSize(s.teamSize),
	)
	s.tracker = progress.New(s.ranker)

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.scorer, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "standings service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("dropWorstCount", s.dropWorstCount),
		logger.Int("teamSize", s.teamSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping standings service...")

	// Close the queue first; workers drain it and exit on channel close.
	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "standings service stopped")
}

// ready reports whether Start has run. Entry points that touch the store or
// queue return ErrNotStarted instead of dereferencing nil components.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SeenAndRecord atomically checks if a submission id was seen and records it
// if not. Returns true if the submission was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordResultDuplicate()
	}
	return seen
}

// Unrecord removes a submission id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a result for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, e model.ResultEvent) bool {
	s.logger.Debug(ctx, "enqueueing result",
		logger.String("submissionID", e.SubmissionID),
		logger.String("username", e.Username),
		logger.String("contestID", e.ContestID),
	)

	ok := s.eventQueue.Enqueue(ctx, e)
	if ok {
		metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	}
	return ok
}

// SetContests replaces the chronological contest set.
func (s *Service) SetContests(ctx context.Context, contests model.ContestSet) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.SetContests(ctx, contests)
}

// Contests returns the contest set in chronological order.
func (s *Service) Contests(ctx context.Context) model.ContestSet {
	return s.store.Contests(ctx)
}

// SetOptOut marks or clears a member's opt-out for a contest.
func (s *Service) SetOptOut(ctx context.Context, username, contestID string, optedOut bool) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.SetOptOut(ctx, username, contestID, optedOut)
}

// Standings computes the current leaderboard. A non-positive limit returns
// every entry.
func (s *Service) Standings(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start := time.Now()

	entries, err := s.ranker.Standings(ranking.Input{
		Roster:         s.store.Roster(ctx),
		Contests:       s.store.Contests(ctx),
		DropWorstCount: s.dropWorstCount,
		OptedOut:       s.store.OptOuts(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("standings computation failed: %w", err)
	}

	metrics.RecordStandingsRecompute(float64(time.Since(start).Milliseconds()))
	metrics.UpdateStandingsSize(len(entries))

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Rank returns the standings entry for a single member.
func (s *Service) Rank(ctx context.Context, username string) (model.LeaderboardEntry, error) {
	entries, err := s.Standings(ctx, 0)
	if err != nil {
		return model.LeaderboardEntry{}, err
	}
	for _, entry := range entries {
		if entry.Username == username {
			return entry, nil
		}
	}
	return model.LeaderboardEntry{}, fmt.Errorf("%w: %q", repository.ErrNotFound, username)
}

// Movements reports rank movement into the target contest for every member.
func (s *Service) Movements(ctx context.Context, targetContestID string) ([]model.Movement, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.tracker.Movements(s.store.Roster(ctx), s.store.Contests(ctx), targetContestID)
}

// SetPhase moves the collection to the given phase.
func (s *Service) SetPhase(ctx context.Context, phase model.Phase) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.SetPhase(ctx, phase); err != nil {
		return err
	}
	s.logger.Info(ctx, "phase changed", logger.String("phase", string(phase)))
	return nil
}

// Phase returns the current collection phase.
func (s *Service) Phase(ctx context.Context) model.Phase {
	return s.store.Phase(ctx)
}

// SetParticipation records a member's team-formation opt-in. Allowed only
// while preference collection is open.
func (s *Service) SetParticipation(ctx context.Context, username string, optedIn bool) error {
	if err := s.ready(); err != nil {
		return err
	}
	if phase := s.store.Phase(ctx); phase != model.PhaseSubmission {
		return fmt.Errorf("%w: %q", ErrWrongPhase, phase)
	}
	return s.store.SetParticipation(ctx, username, optedIn)
}

// SubmitPreferences validates and stores a member's teammate preference
// list. Allowed only while preference collection is open.
//
// A preferred teammate must be opted into formation and ranked strictly
// below the requesting member on the current standings; rejecting early
// keeps stale entries out of the formation pass.
func (s *Service) SubmitPreferences(ctx context.Context, username string, prefs model.PreferenceList) error {
	if err := s.ready(); err != nil {
		return err
	}
	if phase := s.store.Phase(ctx); phase != model.PhaseSubmission {
		return fmt.Errorf("%w: %q", ErrWrongPhase, phase)
	}
	if len(prefs.Teammates) > model.MaxPreferredTeammates {
		return fmt.Errorf("%w: %d listed, max %d",
			ErrTooManyTeammates, len(prefs.Teammates), model.MaxPreferredTeammates)
	}

	entries, err := s.Standings(ctx, 0)
	if err != nil {
		return err
	}
	rankOf := make(map[string]int, len(entries))
	for _, entry := range entries {
		rankOf[entry.Username] = entry.Rank
	}
	ownRank, ok := rankOf[username]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMember, username)
	}

	participants := s.store.Participants(ctx)
	seen := make(map[string]bool, len(prefs.Teammates))
	for _, teammate := range prefs.Teammates {
		if teammate == username {
			return ErrSelfPreference
		}
		if seen[teammate] {
			return fmt.Errorf("%w: %q", ErrDuplicateTeammate, teammate)
		}
		seen[teammate] = true
		theirRank, ok := rankOf[teammate]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMember, teammate)
		}
		if !participants[teammate] {
			return fmt.Errorf("%w: %q", ErrTeammateNotParticipant, teammate)
		}
		if theirRank <= ownRank {
			return fmt.Errorf("%w: %q is ranked %d, you are ranked %d",
				ErrTeammateNotBelow, teammate, theirRank, ownRank)
		}
	}

	return s.store.SetPreferences(ctx, username, prefs)
}

// AddManualTeam stores an admin-approved team ahead of any formation run.
func (s *Service) AddManualTeam(ctx context.Context, team model.Team) error {
	if err := s.ready(); err != nil {
		return err
	}
	if phase := s.store.Phase(ctx); phase == model.PhaseLocked {
		return fmt.Errorf("%w: %q", ErrWrongPhase, phase)
	}
	return s.store.AddManualTeam(ctx, team)
}

// Teams returns manual teams followed by the latest computed teams.
func (s *Service) Teams(ctx context.Context) []model.Team {
	return s.store.Teams(ctx)
}

// RunFormation executes one deterministic team-formation pass over the
// current standings and swaps in its auto teams. Manual teams pass through
// byte-for-byte. Allowed only in the formation phase.
func (s *Service) RunFormation(ctx context.Context) (formation.Result, error) {
	if err := s.ready(); err != nil {
		return formation.Result{}, err
	}
	if phase := s.store.Phase(ctx); phase != model.PhaseFormation {
		return formation.Result{}, fmt.Errorf("%w: %q", ErrWrongPhase, phase)
	}

	s.formationMu.Lock()
	defer s.formationMu.Unlock()

	runID := uuid.NewString()
	start := time.Now()

	entries, err := s.Standings(ctx, 0)
	if err != nil {
		return formation.Result{}, err
	}
	participants := s.store.Participants(ctx)
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		if participants[entry.Username] {
			order = append(order, entry.Username)
		}
	}

	res, err := s.former.Form(formation.Input{
		Order:       order,
		Preferences: s.store.Preferences(ctx),
		ManualTeams: s.store.ManualTeams(ctx),
	})
	if err != nil {
		return formation.Result{}, fmt.Errorf("formation run %s failed: %w", runID, err)
	}

	autoTeams := make([]model.Team, 0, len(res.Teams))
	for _, team := range res.Teams {
		if team.Origin == model.TeamOriginAuto {
			autoTeams = append(autoTeams, team)
		}
	}
	if err := s.store.ReplaceAutoTeams(ctx, autoTeams); err != nil {
		return formation.Result{}, fmt.Errorf("formation run %s failed to store teams: %w", runID, err)
	}

	metrics.RecordFormationRun(float64(time.Since(start).Milliseconds()))
	metrics.UpdateTeamsFormed(len(autoTeams))
	metrics.UpdateUnassignedMembers(len(res.Unassigned))
	for range res.Diagnostics.TitleCollisions {
		metrics.RecordTitleCollision()
	}

	s.logger.Info(ctx, "formation run complete",
		logger.String("runID", runID),
		logger.Int("participants", len(order)),
		logger.Int("autoTeams", len(autoTeams)),
		logger.Int("unassigned", len(res.Unassigned)),
		logger.Int("titleCollisions", len(res.Diagnostics.TitleCollisions)),
	)
	return res, nil
}

// Stats is the runtime snapshot served by the stats endpoint. Phase and the
// live counts are only populated once the service has started.
type Stats struct {
	Started       bool   `json:"started"`
	Phase         string `json:"phase,omitempty"`
	WorkerCount   int    `json:"worker_count"`
	QueueLength   int    `json:"queue_length"`
	QueueCapacity int    `json:"queue_capacity"`
	TotalMembers  int    `json:"total_members"`
	DedupeEntries int64  `json:"dedupe_entries"`
}

// GetStats returns a runtime snapshot and refreshes the gauges derived
// from it.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := Stats{
		Started:       s.started,
		WorkerCount:   s.workerCount,
		QueueCapacity: s.queueSize,
	}
	if !s.started {
		return stats
	}

	stats.Phase = string(s.store.Phase(ctx))
	stats.QueueLength = s.eventQueue.Len(ctx)
	stats.TotalMembers = s.store.Count(ctx)
	stats.DedupeEntries = s.deduper.Size()

	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateTotalMembers(stats.TotalMembers)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}
