// Package pairing picks which two items a voter is shown next.
package pairing

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/faceoff/internal/domain/model"
)

// ErrInsufficientItems is returned when fewer than two items are available.
var ErrInsufficientItems = errors.New("at least two items are required")

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithSeed makes selection deterministic.
func WithSeed(seed int64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // pair choice is not security sensitive
	}
}

// WithRand uses the given source of randomness.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// Selector draws uniformly random distinct pairs. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a selector seeded from the clock unless an option overrides it.
func New(opts ...Option) *Selector {
	s := &Selector{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // pair choice is not security sensitive
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns two distinct items from items. The first index is uniform;
// the second is resampled until it differs, so each unordered pair is equally
// likely.
func (s *Selector) Select(items []model.Item) (model.Item, model.Item, error) {
	if len(items) < 2 {
		return model.Item{}, model.Item{}, fmt.Errorf("select pair from %d items: %w", len(items), ErrInsufficientItems)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.rng.Intn(len(items))
	j := s.rng.Intn(len(items))
	for j == i {
		j = s.rng.Intn(len(items))
	}
	return items[i], items[j], nil
}
