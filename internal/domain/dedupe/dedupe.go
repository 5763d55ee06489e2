// Package dedupe remembers accepted result submission ids so a resubmitted
// result acks as a duplicate instead of counting twice.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen submission ids to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id so the submission can be retried. Used when a
	// submission was marked seen but never reached the queue.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of submission ids currently remembered.
	Size() int64
}

// submissionLog implements Deduper with generational retention. Ids are
// written into the active generation; when it fills, the previous generation
// is discarded wholesale and the active one takes its place. Lookups consult
// both, so the log holds between one and two generations of recent ids and
// the oldest fall away in batches instead of one by one. A non-positive
// bound disables rotation entirely.
type submissionLog struct {
	mu      sync.Mutex
	perGen  int // ids per generation; <= 0 means never rotate
	active  map[string]struct{}
	retired map[string]struct{}
}

// NewInMemoryDeduper creates a submission log with configuration options.
// The default bound keeps roughly one contest season of submissions.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &submissionLog{
		perGen:  25_000,
		active:  make(map[string]struct{}),
		retired: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *submissionLog) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.active[id]; ok {
		return true
	}
	if _, ok := d.retired[id]; ok {
		return true
	}

	if d.perGen > 0 && len(d.active) >= d.perGen {
		d.retired = d.active
		d.active = make(map[string]struct{}, d.perGen)
	}
	d.active[id] = struct{}{}
	return false
}

// Unrecord forgets an id so the submission can be retried.
func (d *submissionLog) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.active, id)
	delete(d.retired, id)
}

// Size returns the number of submission ids currently remembered.
func (d *submissionLog) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.active) + len(d.retired))
}
