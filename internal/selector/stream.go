package selector

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// streamDomain separates selection streams from any other consumer of
// seed strings (render adapters derive their own streams with their
// own domains).
const streamDomain = "tessera/stream/v1"

// Stream is a deterministic pseudo-random stream derived from a seed
// string. Two streams built from the same seed produce identical draw
// sequences.
//
// Not safe for concurrent use; each generation call owns its stream.
type Stream struct {
	rng *rand.Rand
}

// NewStream derives a stream from the seed string. The derivation is
// SHA-256 over a domain-prefixed seed, with the first 16 digest bytes
// seeding a PCG generator. This makes the stream a pure function of
// the seed string, stable across processes and re-runs.
func NewStream(seed string) *Stream {
	sum := sha256.Sum256([]byte(streamDomain + "\x00" + seed))
	hi := binary.BigEndian.Uint64(sum[0:8])
	lo := binary.BigEndian.Uint64(sum[8:16])
	return &Stream{rng: rand.New(rand.NewPCG(hi, lo))}
}

// Float64 draws a uniform value in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// IntN draws a uniform value in [0, n). Panics if n <= 0, matching
// math/rand/v2 semantics.
func (s *Stream) IntN(n int) int {
	return s.rng.IntN(n)
}
