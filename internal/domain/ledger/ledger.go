// Package ledger records head-to-head results between pairs of items.
package ledger

import (
	"fmt"
	"sort"

	"github.com/okian/faceoff/internal/domain/model"
)

// Tally aggregates an item's results across every pair it appears in.
type Tally struct {
	Wins    int
	Matches int
}

// Ledger maps canonical pair keys to matchup records.
// Ledger is not safe for concurrent use; the owning service serializes access.
type Ledger struct {
	records map[model.PairKey]model.Matchup
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{records: make(map[model.PairKey]model.Matchup)}
}

// RecordVote adds one win for winner in the pair (a, b) and returns the
// updated record. The record is created at 0/0 on first use.
func (l *Ledger) RecordVote(a, b, winner string) (model.Matchup, error) {
	if a == b {
		return model.Matchup{}, fmt.Errorf("record %s vs %s: %w", a, b, ErrSamePair)
	}
	if winner != a && winner != b {
		return model.Matchup{}, fmt.Errorf("record %s vs %s, winner %s: %w", a, b, winner, ErrWinnerNotInPair)
	}

	key := model.NewPairKey(a, b)
	m, ok := l.records[key]
	if !ok {
		m = model.Matchup{A: key.A, B: key.B}
	}
	if winner == m.A {
		m.WinsA++
	} else {
		m.WinsB++
	}
	l.records[key] = m
	return m, nil
}

// Get returns the record for the pair (a, b) in either order.
func (l *Ledger) Get(a, b string) (model.Matchup, bool) {
	m, ok := l.records[model.NewPairKey(a, b)]
	return m, ok
}

// Each calls fn for every record in key order.
func (l *Ledger) Each(fn func(model.Matchup)) {
	keys := make([]model.PairKey, 0, len(l.records))
	for k := range l.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	for _, k := range keys {
		fn(l.records[k])
	}
}

// Totals sums wins and matches per item across all records.
func (l *Ledger) Totals() map[string]Tally {
	out := make(map[string]Tally)
	for _, m := range l.records {
		ta := out[m.A]
		ta.Wins += m.WinsA
		ta.Matches += m.Total()
		out[m.A] = ta

		tb := out[m.B]
		tb.Wins += m.WinsB
		tb.Matches += m.Total()
		out[m.B] = tb
	}
	return out
}

// Snapshot copies all records keyed by their "A_B" string form.
func (l *Ledger) Snapshot() map[string]model.Matchup {
	out := make(map[string]model.Matchup, len(l.records))
	for k, m := range l.records {
		out[k.String()] = m
	}
	return out
}

// Restore loads saved records. Keys are recomputed from each record's
// members so non-canonical input keys are ignored. Records with identical
// members are skipped.
func (l *Ledger) Restore(saved map[string]model.Matchup) {
	for _, m := range saved {
		if m.A == m.B {
			continue
		}
		key := model.NewPairKey(m.A, m.B)
		l.records[key] = model.Matchup{
			A:     key.A,
			B:     key.B,
			WinsA: m.Wins(key.A),
			WinsB: m.Wins(key.B),
		}
	}
}

// Len returns the number of pair records.
func (l *Ledger) Len() int { return len(l.records) }
