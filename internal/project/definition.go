package project

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
)

// Definition is a compiled project from an edit-decision file.
type Definition struct {
	// Label is the struct label under "project", e.g. "intro".
	Label string

	Name     string
	Duration float64

	// Segments seed the partition. Order is irrelevant.
	Segments []ir.Segment

	// Gestures run after the seed, in order.
	Gestures []engine.Command

	Pos token.Pos
}

// Commands returns the journal that rebuilds this project from an empty
// engine: the seed as a replace, the gestures, then a finalize to the
// project's duration.
func (d *Definition) Commands() []engine.Command {
	cmds := make([]engine.Command, 0, len(d.Gestures)+2)
	if len(d.Segments) > 0 {
		cmds = append(cmds, engine.Command{Op: engine.OpReplace, Segments: ir.Records(d.Segments)})
	}
	cmds = append(cmds, d.Gestures...)
	cmds = append(cmds, engine.Command{Op: engine.OpFinalize, Duration: d.Duration})
	return cmds
}

// Build replays Commands on a fresh engine configured with opts.
func (d *Definition) Build(opts ...engine.Option) (*engine.Engine, error) {
	e, err := engine.Replay(d.Commands(), opts...)
	if err != nil {
		return nil, fmt.Errorf("build project %q: %w", d.Label, err)
	}
	return e, nil
}
