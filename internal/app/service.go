// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	snapshotqueue "github.com/okian/faceoff/internal/adapters/mq/queue"
	workerpool "github.com/okian/faceoff/internal/adapters/mq/worker"
	"github.com/okian/faceoff/internal/adapters/repository"
	"github.com/okian/faceoff/internal/catalog"
	"github.com/okian/faceoff/internal/domain/leaderboard"
	"github.com/okian/faceoff/internal/domain/ledger"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/internal/domain/pairing"
	"github.com/okian/faceoff/internal/domain/rating"
	"github.com/okian/faceoff/internal/domain/types"
	"github.com/okian/faceoff/pkg/logger"
	"github.com/okian/faceoff/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize   = 1024
	defaultWorkerCount = 1
	stopTimeout        = 30 * time.Second
)

// Service owns the voting state and implements the API dependencies.
type Service struct {
	// mu guards the lifecycle fields below.
	mu sync.RWMutex

	// Core components
	catalog  *catalog.Catalog
	store    repository.Store
	selector *pairing.Selector
	queue    *snapshotqueue.InMemoryQueue
	pool     *workerpool.Pool
	cron     *cron.Cron

	// Configuration
	workerCount    int
	queueSize      int
	kFactor        float64
	baseline       float64
	checkpointSpec string

	// State
	started bool
	cancel  context.CancelFunc

	// stateMu guards ratings, matchups and version. A vote holds it for
	// writing across the rating update, the ledger update and the snapshot.
	stateMu  sync.RWMutex
	ratings  *rating.Store
	matchups *ledger.Ledger
	version  uint64

	// Logging
	logger logger.Logger
}

// New constructs a Service over items. store may be nil, in which case
// state lives only in memory.
func New(items *catalog.Catalog, store repository.Store, opts ...Option) *Service {
	s := &Service{
		catalog:     items,
		store:       store,
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		kFactor:     rating.DefaultKFactor,
		baseline:    rating.DefaultBaseline,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads saved state and starts the persistence pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.selector == nil {
		s.selector = pairing.New()
	}

	n := 0
	if s.catalog != nil {
		n = s.catalog.Len()
	}
	if n < 2 {
		return fmt.Errorf("start with %d catalog items: %w", n, pairing.ErrInsufficientItems)
	}

	s.logger.Info(ctx, "starting voting service...")

	ratings := rating.New(rating.WithKFactor(s.kFactor), rating.WithBaseline(s.baseline))
	for _, it := range s.catalog.Items() {
		ratings.Ensure(it.ID)
	}
	matchups := ledger.New()
	version := s.restore(ctx, ratings, matchups)

	s.stateMu.Lock()
	s.ratings = ratings
	s.matchups = matchups
	s.version = version
	s.stateMu.Unlock()

	// The pipeline outlives the start context; Stop cancels it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	if s.store != nil {
		if s.checkpointSpec != "" {
			s.cron = cron.New()
			if _, err := s.cron.AddFunc(s.checkpointSpec, func() { s.checkpoint(runCtx) }); err != nil {
				s.cron = nil
				cancel()
				return fmt.Errorf("schedule checkpoint %q: %w", s.checkpointSpec, err)
			}
		}

		s.queue = snapshotqueue.NewInMemoryQueue(snapshotqueue.WithCapacity(s.queueSize))
		s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store)
		s.pool.Start(runCtx)
		if s.cron != nil {
			s.cron.Start()
		}
	}

	s.started = true
	s.updateStateMetrics()
	metrics.UpdateCatalogItems(n)

	s.logger.Info(ctx, "voting service started",
		logger.Int("items", n),
		logger.Int("matchups", matchups.Len()),
		logger.Uint64("version", version),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("persistent", s.store != nil),
	)

	return nil
}

// restore overlays saved state on the baseline ratings. A missing or
// unreadable state leaves the fresh state in place.
func (s *Service) restore(ctx context.Context, ratings *rating.Store, matchups *ledger.Ledger) uint64 {
	if s.store == nil {
		return 0
	}

	snap, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info(ctx, "no saved state, starting fresh")
		return 0
	case err != nil:
		metrics.RecordErrorByComponent("service", "load_failed")
		s.logger.Warn(ctx, "failed to load saved state, starting fresh", logger.Error(err))
		return 0
	}

	ratings.Restore(snap.Ratings)
	matchups.Restore(snap.Matchups)
	s.logger.Info(ctx, "restored saved state",
		logger.Int("ratings", len(snap.Ratings)),
		logger.Int("matchups", len(snap.Matchups)),
		logger.Uint64("version", snap.Version))
	return snap.Version
}

// Stop drains pending writes, saves the final state and releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping voting service...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "persistence workers did not drain", logger.Error(err))
		}
		if err := s.pool.Flush(ctx, s.Snapshot()); err != nil {
			s.logger.Error(ctx, "final state save failed", logger.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "error closing state store", logger.Error(err))
		}
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "voting service stopped")
}

// NextPair returns two distinct catalog items to compare.
func (s *Service) NextPair(_ context.Context) (model.Item, model.Item, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.Item{}, model.Item{}, ErrNotStarted
	}

	a, b, err := s.selector.Select(s.catalog.Items())
	if err != nil {
		return model.Item{}, model.Item{}, err
	}
	metrics.RecordPairServed()
	return a, b, nil
}

// Vote records that winner beat the other member of (image1, image2).
// Invalid votes return ErrInvalidVote and leave the state untouched.
func (s *Service) Vote(ctx context.Context, image1, image2, winner string) (model.VoteOutcome, error) {
	s.mu.RLock()
	started := s.started
	q := s.queue
	s.mu.RUnlock()
	if !started {
		return model.VoteOutcome{}, ErrNotStarted
	}

	if err := s.validateVote(image1, image2, winner); err != nil {
		return model.VoteOutcome{}, err
	}

	loser := image1
	if winner == image1 {
		loser = image2
	}

	s.stateMu.Lock()
	m, err := s.matchups.RecordVote(image1, image2, winner)
	if err != nil {
		s.stateMu.Unlock()
		return model.VoteOutcome{}, fmt.Errorf("%w: %w", ErrInvalidVote, err)
	}
	newWinner, newLoser := s.ratings.Update(winner, loser)
	s.version++
	outcome := model.VoteOutcome{
		Winner:       winner,
		Loser:        loser,
		Matchup:      m,
		WinnerRating: newWinner,
		LoserRating:  newLoser,
		Version:      s.version,
	}
	var snap model.Snapshot
	if q != nil {
		snap = s.snapshotLocked()
	}
	s.stateMu.Unlock()

	metrics.RecordVote()
	s.updateStateMetrics()

	// Durability is eventual: the state is already committed in memory.
	if q != nil && !q.Enqueue(ctx, snapshotqueue.NewJob(snap)) {
		s.logger.Warn(ctx, "snapshot dropped; a later one will supersede it",
			logger.Uint64("version", snap.Version))
	}

	s.logger.Debug(ctx, "vote recorded",
		logger.String("winner", winner),
		logger.String("loser", loser),
		logger.Float64("winnerRating", newWinner),
		logger.Float64("loserRating", newLoser),
		logger.Uint64("version", outcome.Version))

	return outcome, nil
}

func (s *Service) validateVote(image1, image2, winner string) error {
	var reason string
	switch {
	case winner != image1 && winner != image2:
		reason = "winner_not_in_pair"
	case image1 == image2:
		reason = "same_item"
	case !s.catalog.Contains(image1) || !s.catalog.Contains(image2):
		reason = "unknown_item"
	default:
		return nil
	}
	metrics.RecordVoteRejected(reason)
	return fmt.Errorf("%w: %s (image1=%q image2=%q winner=%q)", ErrInvalidVote, reason, image1, image2, winner)
}

// Leaderboard returns ranked entries for every item that has played.
// A positive limit truncates the list.
func (s *Service) Leaderboard(_ context.Context, limit int) ([]types.Entry, error) {
	start := time.Now()

	s.stateMu.RLock()
	if s.matchups == nil || s.catalog == nil {
		s.stateMu.RUnlock()
		return nil, ErrNotStarted
	}
	totals := s.matchups.Totals()
	s.stateMu.RUnlock()

	entries := leaderboard.Top(leaderboard.Build(s.catalog.Items(), totals), limit)
	metrics.RecordLeaderboardBuild(float64(time.Since(start).Microseconds()) / 1000)
	return entries, nil
}

// ItemStats returns the global standing of one catalog item.
func (s *Service) ItemStats(_ context.Context, id string) (types.ItemStats, error) {
	if s.catalog == nil {
		return types.ItemStats{}, ErrNotStarted
	}
	item, ok := s.catalog.Get(id)
	if !ok {
		return types.ItemStats{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}

	s.stateMu.RLock()
	if s.matchups == nil {
		s.stateMu.RUnlock()
		return types.ItemStats{}, ErrNotStarted
	}
	totals := s.matchups.Totals()
	r := s.ratings.Get(id)
	s.stateMu.RUnlock()

	ranked := leaderboard.Build(s.catalog.Items(), totals)
	return leaderboard.Standing(item, r, totals[id], ranked), nil
}

// Snapshot returns a consistent copy of the current state.
func (s *Service) Snapshot() model.Snapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked must be called with stateMu held.
func (s *Service) snapshotLocked() model.Snapshot {
	if s.ratings == nil {
		return model.NewSnapshot()
	}
	return model.Snapshot{
		Version:  s.version,
		Ratings:  s.ratings.Snapshot(),
		Matchups: s.matchups.Snapshot(),
	}
}

// checkpoint queues a full snapshot; the write guard skips it when nothing changed.
func (s *Service) checkpoint(ctx context.Context) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return
	}

	snap := s.Snapshot()
	if !q.Enqueue(ctx, snapshotqueue.NewJob(snap)) {
		s.logger.Warn(ctx, "checkpoint dropped", logger.Uint64("version", snap.Version))
		return
	}
	s.logger.Debug(ctx, "checkpoint queued", logger.Uint64("version", snap.Version))
}

func (s *Service) updateStateMetrics() {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.ratings == nil {
		return
	}
	metrics.UpdateStateVersion(s.version)
	metrics.UpdateMatchupCount(s.matchups.Len())
	metrics.UpdateRatingSpread(s.ratings.Spread())
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"persistent":  s.store != nil,
		"checkpoint":  s.checkpointSpec,
	}
	if s.catalog != nil {
		stats["catalogItems"] = s.catalog.Len()
	}

	if s.started {
		s.stateMu.RLock()
		stats["matchups"] = s.matchups.Len()
		stats["version"] = s.version
		stats["ratingSpread"] = s.ratings.Spread()
		s.stateMu.RUnlock()

		if s.queue != nil {
			stats["queueLength"] = s.queue.Len(ctx)
		}
		if s.pool != nil {
			if v, ok := s.pool.LastVersion(); ok {
				stats["persistedVersion"] = v
			}
		}
	}

	return stats
}
