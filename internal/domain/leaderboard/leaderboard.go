// Package leaderboard turns head-to-head tallies into a ranked list.
package leaderboard

import (
	"math"
	"sort"
	"strconv"

	"github.com/okian/faceoff/internal/domain/ledger"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/internal/domain/types"
)

// NoMatches is shown instead of a rate for items that have never played.
const NoMatches = "N/A"

// WinRate is the Laplace-smoothed win percentage (wins+1)/(matches+2)*100.
// An item with no matches sits at 50.
func WinRate(wins, matches int) float64 {
	return float64(wins+1) / float64(matches+2) * 100
}

// Format renders a rate with one decimal, e.g. "66.7". Halves round up.
func Format(rate float64) string {
	return strconv.FormatFloat(math.Round(rate*10)/10, 'f', 1, 64)
}

// rounded is the one-decimal value entries are ordered by.
func rounded(rate float64) float64 {
	v, _ := strconv.ParseFloat(Format(rate), 64)
	return v
}

// Build ranks every item that has played at least once. Entries are ordered
// by displayed rate, highest first; ties keep catalog order. Ranks start at 1.
func Build(items []model.Item, tallies map[string]ledger.Tally) []types.Entry {
	entries := make([]types.Entry, 0, len(items))
	for _, it := range items {
		t := tallies[it.ID]
		if t.Matches == 0 {
			continue
		}
		rate := WinRate(t.Wins, t.Matches)
		entries = append(entries, types.Entry{
			ID:              it.ID,
			Link:            it.Link,
			Wins:            t.Wins,
			TotalMatchups:   t.Matches,
			WinRate:         rate,
			BayesianWinRate: Format(rate),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return rounded(entries[i].WinRate) > rounded(entries[j].WinRate)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Top returns at most limit entries. A non-positive limit returns all of them.
func Top(entries []types.Entry, limit int) []types.Entry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}

// Standing returns the global stats of id given the current ranking.
// Rank is 0 and the rate is NoMatches when id has not played.
func Standing(item model.Item, rating float64, tally ledger.Tally, ranked []types.Entry) types.ItemStats {
	stats := types.ItemStats{
		ID:              item.ID,
		Link:            item.Link,
		Rating:          rating,
		Wins:            tally.Wins,
		Matches:         tally.Matches,
		BayesianWinRate: NoMatches,
	}
	if tally.Matches == 0 {
		return stats
	}
	stats.BayesianWinRate = Format(WinRate(tally.Wins, tally.Matches))
	for _, e := range ranked {
		if e.ID == item.ID {
			stats.Rank = e.Rank
			break
		}
	}
	return stats
}
