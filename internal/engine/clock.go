package engine

import "sync/atomic"

// Clock counts partition revisions.
//
// Every mutating engine call that changes state advances the clock by one.
// UIs compare revisions to skip redraws; the journal stamps entries with it.
//
// Thread-safety: Clock is safe for concurrent reads, so a Session can expose
// the revision while its loop goroutine mutates the engine.
type Clock struct {
	rev atomic.Int64
}

// NewClock creates a clock at revision 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming at rev, used when restoring a stored
// project whose journal already holds rev entries.
func NewClockAt(rev int64) *Clock {
	c := &Clock{}
	c.rev.Store(rev)
	return c
}

// Next advances the clock and returns the new revision.
func (c *Clock) Next() int64 {
	return c.rev.Add(1)
}

// Current returns the current revision without advancing.
func (c *Clock) Current() int64 {
	return c.rev.Load()
}
