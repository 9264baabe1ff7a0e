package export

import (
	"sync"

	"github.com/google/uuid"
)

// Version is the pipeline version stamped into metadata.
const Version = "0.1.0"

// Compiler identifies the generator in token metadata and manifests.
const Compiler = "tessera v" + Version

// RunIDGenerator generates unique identifiers for export runs.
// Implemented by UUIDv7Generator (production) and FixedGenerator
// (tests, for golden comparison).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs. UUIDv7
// embeds a timestamp in the most significant bits, so run IDs sort by
// start time in logs and manifests.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run IDs for testing, enabling
// deterministic manifest comparison.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
// Generate panics once all ids are consumed, failing fast on test
// misconfiguration.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all run ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
