package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator mints opaque segment identities.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identities.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new hyphenated UUIDv7.
// Panics if the system random source fails.
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined identities in order, then falls back
// to "<prefix>-N" once exhausted.
//
// Golden snapshots and scenario tests use it so every run mints the same IDs.
type FixedGenerator struct {
	mu     sync.Mutex
	ids    []string
	idx    int
	prefix string
}

// NewFixedGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedGenerator("a", "b")
//	gen.NewID() // "a"
//	gen.NewID() // "b"
//	gen.NewID() // "seg-3"
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids, prefix: "seg"}
}

// NewID returns the next identity.
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if g.idx <= len(g.ids) {
		return g.ids[g.idx-1]
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.idx)
}
