package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/keepline/internal/ir"
)

// Observer is notified after every command the session loop applies.
// It runs on the loop goroutine; a slow observer delays later commands.
//
// The CLI uses it to append applied commands to the gesture journal.
type Observer func(revision int64, cmd Command, segments []ir.Segment)

// Session serialises commands from any number of goroutines onto one
// Engine, so the engine keeps behaving as a single logical actor.
//
// Usage:
//
//	s := NewSession(engine.New())
//	go s.Run(ctx)
//	segs, err := s.Submit(ctx, Command{Op: OpBegin, At: 2, Duration: 10})
//	...
//	s.Stop()
type Session struct {
	engine   *Engine
	queue    *jobQueue
	observer Observer
	logger   *slog.Logger

	done chan struct{}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithObserver registers fn to run after every applied command.
func WithObserver(fn Observer) SessionOption {
	return func(s *Session) {
		s.observer = fn
	}
}

// WithSessionLogger sets the session's logger.
// Default: slog.Default().
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession wraps e. The session owns e from here on; callers must not
// touch e directly while Run is active.
func NewSession(e *Engine, opts ...SessionOption) *Session {
	s := &Session{
		engine: e,
		queue:  newJobQueue(),
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit enqueues cmd and waits for its result.
//
// Commands are applied in submission order. An invalid command fails
// without touching the engine. Submitting to a stopped session returns a
// CommandError with ErrCodeSessionClosed.
func (s *Session) Submit(ctx context.Context, cmd Command) ([]ir.Segment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	reply := make(chan result, 1)
	if !s.queue.Enqueue(job{cmd: cmd, reply: reply}) {
		return nil, closedError(cmd)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-reply:
		return r.segments, r.err
	}
}

// Run processes queued commands until ctx is cancelled or Stop is called.
// It returns ctx.Err() on cancellation and nil after Stop.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.logger.Debug("session started")

	for {
		for {
			j, ok := s.queue.TryDequeue()
			if !ok {
				break
			}
			s.process(j)
		}

		select {
		case <-ctx.Done():
			s.queue.Close()
			s.fail(s.queue.Drain())
			s.logger.Debug("session cancelled", "error", ctx.Err())
			return ctx.Err()
		case _, open := <-s.queue.Wait():
			if !open {
				// Drain anything that raced in before the close.
				for {
					j, ok := s.queue.TryDequeue()
					if !ok {
						break
					}
					s.process(j)
				}
				s.logger.Debug("session stopped")
				return nil
			}
		}
	}
}

// Stop rejects new commands and lets Run return once it has applied every
// command queued so far. Safe to call more than once.
func (s *Session) Stop() {
	s.queue.Close()
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Pending returns the number of commands waiting for the loop.
func (s *Session) Pending() int {
	return s.queue.Len()
}

// Revision returns the engine's revision. Safe to call from any goroutine.
func (s *Session) Revision() int64 {
	return s.engine.clock.Current()
}

func (s *Session) process(j job) {
	segs, err := Apply(s.engine, j.cmd)
	if err == nil && s.observer != nil {
		s.observer(s.engine.Revision(), j.cmd, ir.CloneSegments(segs))
	}
	j.reply <- result{segments: segs, err: err}
}

func (s *Session) fail(pending []job) {
	for _, j := range pending {
		j.reply <- result{err: closedError(j.cmd)}
	}
}

func closedError(cmd Command) error {
	return &CommandError{
		Code:    ErrCodeSessionClosed,
		Message: "session is not accepting commands",
		Index:   -1,
		Op:      string(cmd.Op),
	}
}
