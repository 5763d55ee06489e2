// Package worker defines worker contracts for asynchronous result scoring
// and club store updates.
package worker

import (
	"github.com/clubops/standings/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithProcessedCounter shares a throughput counter with the worker; each
// successfully processed result increments it atomically.
func WithProcessedCounter(counter *int64) Option {
	return func(w *InMemoryWorker) {
		w.processed = counter
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
