// Package worker writes queued state snapshots to durable storage.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/faceoff/internal/adapters/mq/queue"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/pkg/logger"
	"github.com/okian/faceoff/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 1
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Saver durably stores a snapshot.
type Saver interface {
	Save(ctx context.Context, snap model.Snapshot) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker drains jobs and writes them using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// Guard serializes writes and remembers the newest version written, so
// that a slow worker can never overwrite newer durable state with an older
// snapshot.
type Guard struct {
	mu      sync.Mutex
	saved   bool
	version uint64
}

// Write saves snap unless a snapshot at the same or a newer version has
// already been written. It reports whether a write happened.
func (g *Guard) Write(ctx context.Context, saver Saver, snap model.Snapshot) (bool, error) { //nolint:gocritic // hugeParam: snapshots are immutable copies
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.saved && snap.Version <= g.version {
		return false, nil
	}
	if err := saver.Save(ctx, snap); err != nil {
		return false, err
	}
	g.saved = true
	g.version = snap.Version
	return true, nil
}

// LastVersion returns the newest version written and whether any write happened.
func (g *Guard) LastVersion() (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version, g.saved
}

// InMemoryWorker implements Worker for persisting snapshots.
type InMemoryWorker struct {
	queue Queue
	saver Saver
	guard *Guard
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		saver:    saver,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.guard == nil {
		w.guard = &Guard{}
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error persisting snapshot", logger.Error(err))
			}
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob handles a single job.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	written, err := w.guard.Write(ctx, w.saver, job.Snapshot)
	latency := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("worker", "save_failed")
		return fmt.Errorf("save snapshot %s at version %d: %w", job.ID, job.Snapshot.Version, err)
	}
	if !written {
		metrics.RecordPersistSkipped()
		w.logger.Debug(ctx, "skipped stale snapshot",
			logger.String("job_id", job.ID),
			logger.Uint64("version", job.Snapshot.Version))
		return nil
	}

	metrics.RecordPersistWrite(latency)
	w.logger.Debug(ctx, "snapshot persisted",
		logger.String("job_id", job.ID),
		logger.Uint64("version", job.Snapshot.Version),
		logger.Duration("queued_for", start.Sub(job.EnqueuedAt)),
		logger.Float64("latency_ms", latency))
	return nil
}

// Pool manages multiple workers sharing one Guard.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	saver   Saver
	guard   *Guard

	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, saver Saver) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		saver:    saver,
		guard:    &Guard{},
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			saver,
			WithName("worker-"+strconv.Itoa(i)),
			WithGuard(pool.guard),
		)
	}

	metrics.UpdatePersistWorkers(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater keeps the queue size gauge fresh between enqueues.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	lenner, ok := p.queue.(interface{ Len(context.Context) int })
	if !ok {
		return
	}

	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			lenner.Len(ctx)
		}
	}
}

// Flush writes snap synchronously through the shared guard. It is used for
// the final save on shutdown and returns the save error, if any.
func (p *Pool) Flush(ctx context.Context, snap model.Snapshot) error { //nolint:gocritic // hugeParam: snapshots are immutable copies
	start := time.Now()
	written, err := p.guard.Write(ctx, p.saver, snap)
	if err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("worker-pool", "flush_failed")
		return fmt.Errorf("flush snapshot at version %d: %w", snap.Version, err)
	}
	if written {
		metrics.RecordPersistWrite(float64(time.Since(start).Microseconds()) / 1000)
	}
	return nil
}

// LastVersion reports the newest version written by any worker.
func (p *Pool) LastVersion() (uint64, bool) {
	return p.guard.LastVersion()
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still busy when ctx (or the pool timeout) expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(shutdownCtx)
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", shutdownCtx.Err())
	}
	return nil
}
