package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/faceoff/internal/domain/model"
)

func snapshotAt(version uint64) model.Snapshot {
	s := model.NewSnapshot()
	s.Version = version
	return s
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	job := NewJob(snapshotAt(1))
	if job.ID == "" {
		t.Fatal("expected job id to be set")
	}
	if !q.Enqueue(ctx, job) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != job.ID || got.Snapshot.Version != 1 {
		t.Errorf("expected job %s at version 1, got %s at %d", job.ID, got.ID, got.Snapshot.Version)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithCapacity(-5))
	ctx := context.Background()

	if q.Capacity() != 2 {
		t.Fatalf("expected capacity 2, got %d", q.Capacity())
	}
	if !q.Enqueue(ctx, NewJob(snapshotAt(1))) || !q.Enqueue(ctx, NewJob(snapshotAt(2))) {
		t.Fatal("expected enqueue to succeed below capacity")
	}
	if q.Enqueue(ctx, NewJob(snapshotAt(3))) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_JobIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewJob(snapshotAt(uint64(i))).ID
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate job id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()
	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	var accepted int64
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				if q.Enqueue(ctx, NewJob(snapshotAt(uint64(id*perProducer+j)))) {
					atomic.AddInt64(&accepted, 1)
				}
			}
		}(i)
	}
	wg.Wait()

	if accepted != producers*perProducer {
		t.Fatalf("expected %d accepted jobs, got %d", producers*perProducer, accepted)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var received int
	for range q.Dequeue(ctx) {
		received++
	}
	if received != producers*perProducer {
		t.Errorf("expected %d drained jobs, got %d", producers*perProducer, received)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if !q.Enqueue(ctx, NewJob(snapshotAt(1))) {
		t.Fatal("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, NewJob(snapshotAt(2))) {
		t.Error("expected enqueue to fail after close")
	}

	ch := q.Dequeue(ctx)
	select {
	case j, ok := <-ch:
		if !ok || j.Snapshot.Version != 1 {
			t.Fatalf("expected queued job to survive close, got ok=%v version=%d", ok, j.Snapshot.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queued job")
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to close after drain")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, NewJob(snapshotAt(1))) {
		t.Error("expected enqueue to fail with cancelled context")
	}
}
