package engine

import (
	"fmt"

	"github.com/roach88/keepline/internal/ir"
)

// Op names an engine write operation.
type Op string

// Ops in the engine's write surface.
const (
	OpBegin    Op = "begin"
	OpStop     Op = "stop"
	OpToggle   Op = "toggle"
	OpSplit    Op = "split"
	OpReplace  Op = "replace"
	OpFinalize Op = "finalize"
	OpReset    Op = "reset"
)

// ValidOps lists every op Apply understands.
var ValidOps = map[Op]bool{
	OpBegin:    true,
	OpStop:     true,
	OpToggle:   true,
	OpSplit:    true,
	OpReplace:  true,
	OpFinalize: true,
	OpReset:    true,
}

// Command is one serialised engine call: a script line, a scenario step or a
// journal entry.
//
// Field use per op:
//   - begin: At, Duration
//   - stop, split: At
//   - toggle: ID, or At to toggle whichever segment contains At
//   - replace: Segments
//   - finalize: Duration
//   - reset: none
type Command struct {
	Op       Op                 `json:"op" yaml:"op"`
	At       float64            `json:"at,omitempty" yaml:"at,omitempty"`
	Duration float64            `json:"duration,omitempty" yaml:"duration,omitempty"`
	ID       string             `json:"id,omitempty" yaml:"id,omitempty"`
	Segments []ir.SegmentRecord `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// Validate checks the op name.
func (c Command) Validate() error {
	if !ValidOps[c.Op] {
		return &CommandError{
			Code:    ErrCodeUnknownOp,
			Message: fmt.Sprintf("unknown op %q", c.Op),
			Index:   -1,
			Op:      string(c.Op),
		}
	}
	return nil
}

// Payload returns the canonical map form of the command, omitting fields
// the op does not use.
func (c Command) Payload() map[string]any {
	p := map[string]any{"op": string(c.Op)}
	switch c.Op {
	case OpBegin:
		p["at"] = c.At
		p["duration"] = c.Duration
	case OpStop, OpSplit:
		p["at"] = c.At
	case OpToggle:
		if c.ID != "" {
			p["id"] = c.ID
		} else {
			p["at"] = c.At
		}
	case OpFinalize:
		p["duration"] = c.Duration
	case OpReplace:
		segs := make([]any, len(c.Segments))
		for i, r := range c.Segments {
			segs[i] = map[string]any{
				"id":          r.ID,
				"start_time":  r.StartTime,
				"end_time":    r.EndTime,
				"is_included": r.IsIncluded,
			}
		}
		p["segments"] = segs
	}
	return p
}

// Apply dispatches cmd to e and returns the resulting partition.
func Apply(e *Engine, cmd Command) ([]ir.Segment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	switch cmd.Op {
	case OpBegin:
		return e.BeginIncluding(cmd.At, cmd.Duration), nil
	case OpStop:
		return e.StopIncluding(cmd.At), nil
	case OpSplit:
		return e.SplitSegment(cmd.At), nil
	case OpToggle:
		id := cmd.ID
		if id == "" {
			s, ok := e.SegmentAt(cmd.At)
			if !ok {
				return e.Segments(), nil
			}
			id = s.ID
		}
		return e.ToggleSegment(id), nil
	case OpReplace:
		return e.ReplaceSegments(ir.FromRecords(cmd.Segments)), nil
	case OpFinalize:
		return e.FinalizeSegments(cmd.Duration), nil
	case OpReset:
		return e.Reset(), nil
	}

	// Unreachable: Validate rejects unknown ops.
	return nil, &CommandError{Code: ErrCodeUnknownOp, Message: "unhandled op", Index: -1, Op: string(cmd.Op)}
}

// ApplyAll dispatches cmds in order, stopping at the first invalid command.
func ApplyAll(e *Engine, cmds []Command) ([]ir.Segment, error) {
	for i, cmd := range cmds {
		if _, err := Apply(e, cmd); err != nil {
			return nil, withIndex(err, i)
		}
	}
	return e.Segments(), nil
}
