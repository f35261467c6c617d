// Package rating keeps Elo ratings for catalog items.
package rating

import (
	"math"
)

// Default Elo parameters.
const (
	DefaultKFactor  = 32
	DefaultBaseline = 1500
	eloScale        = 400
)

// Store maps item ids to Elo ratings.
// Store is not safe for concurrent use; the owning service serializes access.
type Store struct {
	kFactor  float64
	baseline float64
	ratings  map[string]float64
}

// New creates an empty rating store.
func New(opts ...Option) *Store {
	s := &Store{
		kFactor:  DefaultKFactor,
		baseline: DefaultBaseline,
		ratings:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KFactor returns the configured K-factor.
func (s *Store) KFactor() float64 { return s.kFactor }

// Baseline returns the configured starting rating.
func (s *Store) Baseline() float64 { return s.baseline }

// Get returns the rating of id, or the baseline when id has never been seen.
func (s *Store) Get(id string) float64 {
	if r, ok := s.ratings[id]; ok {
		return r
	}
	return s.baseline
}

// Ensure initializes id at the baseline if it has no rating yet.
func (s *Store) Ensure(id string) {
	if _, ok := s.ratings[id]; !ok {
		s.ratings[id] = s.baseline
	}
}

// Expected is the Elo win probability of a player rated ra against one rated rb.
func Expected(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/eloScale))
}

// Update applies one win of winner over loser and returns both new ratings.
// Both expectations are computed from the pre-update ratings.
func (s *Store) Update(winner, loser string) (float64, float64) {
	rw := s.Get(winner)
	rl := s.Get(loser)

	ew := Expected(rw, rl)
	el := 1 - ew

	nw := rw + s.kFactor*(1-ew)
	nl := rl + s.kFactor*(0-el)

	s.ratings[winner] = nw
	s.ratings[loser] = nl
	return nw, nl
}

// Snapshot copies all ratings.
func (s *Store) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.ratings))
	for id, r := range s.ratings {
		out[id] = r
	}
	return out
}

// Restore overlays saved ratings onto the store. Ids absent from saved keep
// their current value.
func (s *Store) Restore(saved map[string]float64) {
	for id, r := range saved {
		s.ratings[id] = r
	}
}

// Spread returns the difference between the highest and lowest rating.
func (s *Store) Spread() float64 {
	if len(s.ratings) == 0 {
		return 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range s.ratings {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	return hi - lo
}

// Len returns the number of rated items.
func (s *Store) Len() int { return len(s.ratings) }
