package engine

import (
	"sync"

	"github.com/roach88/keepline/internal/ir"
)

// job is one submitted command awaiting the session loop.
type job struct {
	cmd   Command
	reply chan result
}

// result is what the loop hands back to a submitter.
type result struct {
	segments []ir.Segment
	err      error
}

// jobQueue is a thread-safe FIFO queue of submitted commands.
//
// The queue is unbounded so a burst of gestures from a UI thread never
// blocks the submitter. The loop waits on a coalescing signal channel so it
// can honour context cancellation while idle.
type jobQueue struct {
	mu     sync.Mutex
	jobs   []job
	closed bool
	signal chan struct{} // buffered, size 1
}

func newJobQueue() *jobQueue {
	return &jobQueue{
		jobs:   make([]job, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds j to the back of the queue.
// Returns false if the queue is closed.
func (q *jobQueue) Enqueue(j job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, j)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front job without blocking.
func (q *jobQueue) TryDequeue() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return job{}, false
	}

	j := q.jobs[0]
	// Clear the slot so the reply channel and segments can be collected.
	q.jobs[0] = job{}
	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}
	return j, true
}

// Wait returns a channel that signals when jobs may be available.
// It is closed when the queue closes.
func (q *jobQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending jobs.
func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close rejects further jobs and wakes the loop. Jobs already queued stay
// in the queue. Safe to call more than once.
func (q *jobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Drain removes and returns every pending job.
func (q *jobQueue) Drain() []job {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.jobs
	q.jobs = nil
	return pending
}
