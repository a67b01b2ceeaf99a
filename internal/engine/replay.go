package engine

import (
	"fmt"

	"github.com/roach88/keepline/internal/ir"
)

// Replay rebuilds an engine by applying a journal of commands to a fresh
// engine configured with opts.
//
// Replay is deterministic in everything except segment identities: the same
// commands always produce the same partition shape, so ir.PartitionHash of
// the result matches the hash recorded when the journal was written. Pass
// WithIDGenerator with a FixedGenerator to reproduce identities as well.
//
// The first invalid command aborts replay with a CommandError carrying its
// index.
func Replay(cmds []Command, opts ...Option) (*Engine, error) {
	e := New(opts...)
	if _, err := ApplyAll(e, cmds); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return e, nil
}

// VerifyReplay replays cmds and compares the resulting partition hash
// against want. It returns the replayed engine and the observed hash.
func VerifyReplay(cmds []Command, want string, opts ...Option) (*Engine, string, error) {
	e, err := Replay(cmds, opts...)
	if err != nil {
		return nil, "", err
	}

	got, err := ir.PartitionHash(e.Segments())
	if err != nil {
		return nil, "", fmt.Errorf("hash replayed partition: %w", err)
	}
	if want != "" && got != want {
		return e, got, &ReplayMismatchError{Want: want, Got: got, Commands: len(cmds)}
	}
	return e, got, nil
}

// ReplayMismatchError reports a replayed partition whose hash differs from
// the recorded one.
type ReplayMismatchError struct {
	Want     string
	Got      string
	Commands int
}

// Error implements the error interface.
func (e *ReplayMismatchError) Error() string {
	return fmt.Sprintf("replay of %d commands produced %s, want %s", e.Commands, e.Got, e.Want)
}
