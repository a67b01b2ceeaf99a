package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator mints "<prefix>-1", "<prefix>-2", ... in call order.
//
// The same scenario run with a fresh SequentialIDGenerator produces the same
// segment identities every time, which keeps golden snapshots byte-stable.
// It satisfies engine.IDGenerator.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix means "seg".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "seg"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// NewID returns the next identity.
func (g *SequentialIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Issued returns how many identities have been minted.
func (g *SequentialIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// Reset restarts the sequence at 1.
func (g *SequentialIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
