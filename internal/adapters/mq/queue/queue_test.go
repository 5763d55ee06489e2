package queue

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"
)

func testEvent(id string) Event {
	return Event{
		SubmissionID: id,
		Username:     "alice",
		ContestID:    "c1",
		Solved:       3,
		Penalty:      25,
	}
}

func TestInMemoryQueue_EnqueueDequeue(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10), WithBufferSize(10))
	defer q.Close()
	ctx := context.Background()

	if ok := q.Enqueue(ctx, testEvent("s1")); !ok {
		t.Fatal("expected enqueue to succeed")
	}
	if got := q.Len(ctx); got != 1 {
		t.Fatalf("expected length 1, got %d", got)
	}

	events := q.Dequeue(ctx)
	select {
	case event := <-events:
		if event.SubmissionID != "s1" {
			t.Fatalf("expected submission s1, got %s", event.SubmissionID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestInMemoryQueue_CapacityLimit(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithBufferSize(2))
	defer q.Close()
	ctx := context.Background()

	if !q.Enqueue(ctx, testEvent("s1")) {
		t.Fatal("first enqueue should succeed")
	}
	if !q.Enqueue(ctx, testEvent("s2")) {
		t.Fatal("second enqueue should succeed")
	}
	if q.Enqueue(ctx, testEvent("s3")) {
		t.Fatal("enqueue beyond capacity should fail")
	}
	if got := q.Len(ctx); got != 2 {
		t.Fatalf("expected length 2, got %d", got)
	}
}

func TestInMemoryQueue_EnqueueAfterClose(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10), WithBufferSize(10))
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Fatal("queue should report closed")
	}
	if q.Enqueue(context.Background(), testEvent("s1")) {
		t.Fatal("enqueue after close should fail")
	}
	// Closing twice must be a no-op.
	if err := q.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestInMemoryQueue_DequeueDrainsAfterClose(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10), WithBufferSize(10))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !q.Enqueue(ctx, testEvent("s"+strconv.Itoa(i))) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	events := q.Dequeue(ctx)
	received := 0
	for range events {
		received++
	}
	if received != 3 {
		t.Fatalf("expected 3 drained events, got %d", received)
	}
}

func TestInMemoryQueue_ConcurrentEnqueue(t *testing.T) {
	const producers = 8
	const perProducer = 50

	q := NewInMemoryQueue(WithCapacity(producers*perProducer), WithBufferSize(producers*perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				id := strconv.Itoa(p) + "-" + strconv.Itoa(i)
				if !q.Enqueue(ctx, testEvent(id)) {
					t.Errorf("enqueue %s failed", id)
				}
			}
		}(p)
	}
	wg.Wait()

	if got := q.Len(ctx); got != producers*perProducer {
		t.Fatalf("expected %d queued events, got %d", producers*perProducer, got)
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	seen := make(map[string]bool)
	for event := range q.Dequeue(ctx) {
		if seen[event.SubmissionID] {
			t.Fatalf("duplicate event %s", event.SubmissionID)
		}
		seen[event.SubmissionID] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("expected %d distinct events, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_DequeueStopsOnContextCancel(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10), WithBufferSize(10))
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events := q.Dequeue(ctx)

	q.Enqueue(context.Background(), testEvent("s1"))
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first event")
	}

	cancel()
	q.Enqueue(context.Background(), testEvent("s2"))
	// Let the dequeue goroutine observe the cancellation before we read.
	time.Sleep(50 * time.Millisecond)

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected dequeue channel to close after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
