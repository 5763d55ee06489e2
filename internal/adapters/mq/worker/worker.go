// Package worker defines worker contracts for asynchronous result scoring
// and club store updates.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/clubops/standings/internal/domain/model"
	"github.com/clubops/standings/internal/domain/scoring"
	"github.com/clubops/standings/pkg/logger"
	"github.com/clubops/standings/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.ResultEvent

// Updater applies a scored result to the club store.
type Updater interface {
	ApplyResult(ctx context.Context, username, contestID string, perf model.ContestPerformance) (bool, error)
}

// Queue defines how workers receive results.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes results and writes store updates using the provided
// interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing result submissions.
type InMemoryWorker struct {
	queue   Queue
	scorer  scoring.Scorer
	updater Updater
	name    string

	// processed, when set, is bumped once per successfully processed
	// result. The pool shares one counter across its workers to derive
	// throughput.
	processed *int64

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, scorer scoring.Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		scorer:   scorer,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := w.processResult(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing result", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processResult scores and stores a single result submission. Precomputed
// scores from upstream judges pass through untouched.
func (w *InMemoryWorker) processResult(ctx context.Context, event Event) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	score := 0.0
	if event.Score != nil {
		score = *event.Score
	} else {
		scoreStart := time.Now()
		result, err := w.scorer.Score(ctx, scoring.Input{
			Username:  event.Username,
			ContestID: event.ContestID,
			Solved:    event.Solved,
			Penalty:   event.Penalty,
		})
		metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))
		if err != nil {
			metrics.RecordScoringError()
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "scoring_error")
			metrics.RecordErrorByType("scoring_error", "high")
			w.logger.Error(ctx, "scoring failed for submission",
				logger.String("submissionID", event.SubmissionID),
				logger.Error(err),
			)
			return fmt.Errorf("failed to score submission %s: %w", event.SubmissionID, err)
		}
		score = result.Score
	}

	perf := model.ContestPerformance{
		Solved:      event.Solved,
		Penalty:     event.Penalty,
		Score:       score,
		Submissions: event.Submissions,
		Demerit:     event.Demerit,
	}
	updated, err := w.updater.ApplyResult(ctx, event.Username, event.ContestID, perf)
	if err != nil {
		metrics.RecordStoreError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		metrics.RecordErrorByType("store_error", "high")
		w.logger.Error(ctx, "store update failed for submission",
			logger.String("submissionID", event.SubmissionID),
			logger.Error(err),
		)
		return fmt.Errorf("store update failed: %w", err)
	}

	if updated {
		metrics.RecordResultProcessed()
	}
	if w.processed != nil {
		atomic.AddInt64(w.processed, 1)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	scorer  scoring.Scorer
	updater Updater

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Metrics tracking
	processedCount    int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, scorer scoring.Scorer, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		scorer:            scorer,
		updater:           updater,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			scorer,
			updater,
			WithName("worker-"+strconv.Itoa(i)),
			WithProcessedCounter(&pool.processedCount),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker
// metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	now := time.Now()
	processed := atomic.SwapInt64(&p.processedCount, 0)
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(processed) / timeDiff)
	}
	p.lastProcessedTime = now
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
