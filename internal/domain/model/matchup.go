package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PairKeySeparator joins the two ids of a canonical pair key.
const PairKeySeparator = "_"

// ErrMalformedMatchup is returned when a persisted matchup record cannot be decoded.
var ErrMalformedMatchup = errors.New("malformed matchup")

// PairKey identifies an unordered pair of items. A always sorts before B.
type PairKey struct {
	A string
	B string
}

// NewPairKey builds the canonical key for x and y regardless of argument order.
func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// String renders the key as "A_B".
func (k PairKey) String() string {
	return k.A + PairKeySeparator + k.B
}

// Matchup is the head-to-head record of one pair.
type Matchup struct {
	A     string
	B     string
	WinsA int
	WinsB int
}

// NewMatchup returns an empty record for the canonical pair of x and y.
func NewMatchup(x, y string) Matchup {
	k := NewPairKey(x, y)
	return Matchup{A: k.A, B: k.B}
}

// Key returns the canonical pair key.
func (m Matchup) Key() PairKey {
	return PairKey{A: m.A, B: m.B}
}

// Has reports whether id is one of the two members.
func (m Matchup) Has(id string) bool {
	return id == m.A || id == m.B
}

// Wins returns the number of wins of id against the other member.
func (m Matchup) Wins(id string) int {
	switch id {
	case m.A:
		return m.WinsA
	case m.B:
		return m.WinsB
	default:
		return 0
	}
}

// Total is the number of votes cast on the pair.
func (m Matchup) Total() int {
	return m.WinsA + m.WinsB
}

// MarshalJSON encodes the record as {"<A>": winsA, "<B>": winsB}.
func (m Matchup) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{m.A: m.WinsA, m.B: m.WinsB})
}

// UnmarshalJSON decodes the two-member object form.
func (m *Matchup) UnmarshalJSON(data []byte) error {
	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMatchup, err)
	}
	if len(counts) != 2 {
		return fmt.Errorf("%w: want 2 members, got %d", ErrMalformedMatchup, len(counts))
	}
	ids := make([]string, 0, 2)
	for id, n := range counts {
		if n < 0 {
			return fmt.Errorf("%w: negative count for %q", ErrMalformedMatchup, id)
		}
		ids = append(ids, id)
	}
	k := NewPairKey(ids[0], ids[1])
	*m = Matchup{A: k.A, B: k.B, WinsA: counts[k.A], WinsB: counts[k.B]}
	return nil
}
