package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDGenerator_Sequence(t *testing.T) {
	gen := NewSequentialIDGenerator("")

	assert.Equal(t, "seg-1", gen.NewID())
	assert.Equal(t, "seg-2", gen.NewID())
	assert.Equal(t, 2, gen.Issued())

	gen.Reset()
	assert.Equal(t, "seg-1", gen.NewID())
}

func TestSequentialIDGenerator_Prefix(t *testing.T) {
	gen := NewSequentialIDGenerator("clip")
	assert.Equal(t, "clip-1", gen.NewID())
}

func TestSequentialIDGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewSequentialIDGenerator("x")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := gen.NewID()
				mu.Lock()
				assert.False(t, seen[id], "duplicate id %s", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
	assert.Equal(t, 1000, gen.Issued())
}

func TestPlayhead_ScrubBackward(t *testing.T) {
	p := NewPlayhead(5)

	assert.Equal(t, 7.5, p.Advance(2.5))
	assert.Equal(t, 6.0, p.Advance(-1.5))
	assert.Equal(t, -1.0, p.Seek(-1), "seek does not clamp")
	assert.Equal(t, -1.0, p.Now())
}

func TestTestLogger_Writes(t *testing.T) {
	logger := TestLogger(t)
	logger.Debug("visible in -v output", "k", 1)
	DiscardLogger().Info("dropped")
}
