package testutil

import "sync"

// Playhead is a deterministic stand-in for a media player's time source.
//
// Tests drive gestures with it the way a UI would: seek, play forward,
// scrub backward. Times are never clamped, so tests can feed the engine
// negative or past-the-end values on purpose.
//
// Thread-safety: all methods are safe for concurrent use.
type Playhead struct {
	mu sync.Mutex
	t  float64
}

// NewPlayhead creates a playhead parked at t.
func NewPlayhead(t float64) *Playhead {
	return &Playhead{t: t}
}

// Now returns the current time in seconds.
func (p *Playhead) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.t
}

// Advance moves the playhead by dt (negative dt scrubs backward) and
// returns the new time.
func (p *Playhead) Advance(dt float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.t += dt
	return p.t
}

// Seek jumps to t and returns it.
func (p *Playhead) Seek(t float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.t = t
	return p.t
}
