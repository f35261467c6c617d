package model

// Snapshot is a point-in-time copy of the voting state.
// Version increases by one with every accepted vote; zero means "never versioned".
type Snapshot struct {
	Version  uint64             `json:"version,omitempty"`
	Ratings  map[string]float64 `json:"ratings"`
	Matchups map[string]Matchup `json:"matchups"`
}

// NewSnapshot returns an empty snapshot with non-nil maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		Ratings:  make(map[string]float64),
		Matchups: make(map[string]Matchup),
	}
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Version:  s.Version,
		Ratings:  make(map[string]float64, len(s.Ratings)),
		Matchups: make(map[string]Matchup, len(s.Matchups)),
	}
	for id, r := range s.Ratings {
		out.Ratings[id] = r
	}
	for k, m := range s.Matchups {
		out.Matchups[k] = m
	}
	return out
}

// Empty reports whether the snapshot carries no state at all.
func (s Snapshot) Empty() bool {
	return len(s.Ratings) == 0 && len(s.Matchups) == 0
}
