package simulate

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
)

// sharpness scales how strongly quality differences decide a vote.
const sharpness = 8.0

// Quality returns the hidden quality in [0,1) of id under seed. Every voter
// derives the same value without coordination.
func Quality(seed int64, id string) float64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(id))
	return float64(h.Sum64()>>11) / float64(1<<53)
}

// Voter picks winners with a probability that grows with the quality gap.
type Voter struct {
	seed int64
	rng  *rand.Rand
}

// NewVoter creates a voter; n distinguishes concurrent voters.
func NewVoter(seed int64, n int) *Voter {
	return &Voter{seed: seed, rng: rand.New(rand.NewSource(seed + int64(n) + 1))} //nolint:gosec // simulation only
}

// WinProbability is the chance that a beats b.
func WinProbability(qa, qb float64) float64 {
	return 1 / (1 + math.Exp(-(qa-qb)*sharpness))
}

// Choose returns the id of the winner of p.
func (v *Voter) Choose(p Pair) string {
	qa := Quality(v.seed, p.Image1.ID)
	qb := Quality(v.seed, p.Image2.ID)
	if v.rng.Float64() < WinProbability(qa, qb) {
		return p.Image1.ID
	}
	return p.Image2.ID
}
