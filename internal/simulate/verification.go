package simulate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrInconsistentLeaderboard reports a leaderboard that breaks its own ordering rules.
var ErrInconsistentLeaderboard = errors.New("inconsistent leaderboard")

// Verify checks that every entry has played, rates lie strictly between 0
// and 100, and rows are sorted by rate descending.
func Verify(entries []Entry) error {
	prev := 101.0
	for i, e := range entries {
		if e.TotalMatchups <= 0 {
			return fmt.Errorf("%w: entry %d (%s) has no matchups", ErrInconsistentLeaderboard, i, e.ID)
		}
		rate, err := strconv.ParseFloat(e.BayesianWinRate, 64)
		if err != nil {
			return fmt.Errorf("%w: entry %d (%s) rate %q: %w", ErrInconsistentLeaderboard, i, e.ID, e.BayesianWinRate, err)
		}
		if rate <= 0 || rate >= 100 {
			return fmt.Errorf("%w: entry %d (%s) rate %.1f out of range", ErrInconsistentLeaderboard, i, e.ID, rate)
		}
		if rate > prev {
			return fmt.Errorf("%w: entry %d has higher rate than entry %d", ErrInconsistentLeaderboard, i, i-1)
		}
		prev = rate
	}
	return nil
}

// RankCorrelation returns Spearman's rho between leaderboard order and
// hidden quality. 1 means the leaderboard recovered the true order.
func RankCorrelation(seed int64, entries []Entry) float64 {
	n := len(entries)
	if n < 2 {
		return 0
	}
	byQuality := make([]int, n)
	for i := range byQuality {
		byQuality[i] = i
	}
	sort.SliceStable(byQuality, func(a, b int) bool {
		return Quality(seed, entries[byQuality[a]].ID) > Quality(seed, entries[byQuality[b]].ID)
	})

	var sumSq float64
	for qualityRank, lbRank := range byQuality {
		d := float64(qualityRank - lbRank)
		sumSq += d * d
	}
	nf := float64(n)
	return 1 - 6*sumSq/(nf*(nf*nf-1))
}
