package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
)

// Script is a gesture script for the apply command:
//
//	steps:
//	  - {op: begin, at: 12.5}
//	  - {op: stop, at: 30}
//	  - {op: toggle, id: 0190c3e2-...}
type Script struct {
	Steps []engine.Command `yaml:"steps"`
}

// LoadScript reads a gesture script, rejecting unknown fields and ops.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var script Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("script has no steps")
	}
	for i, step := range script.Steps {
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return &script, nil
}

// withDefaultDuration fills in the project duration for begin and finalize
// steps that do not carry one.
func withDefaultDuration(cmd engine.Command, duration float64) engine.Command {
	if (cmd.Op == engine.OpBegin || cmd.Op == engine.OpFinalize) && cmd.Duration == 0 {
		cmd.Duration = duration
	}
	return cmd
}

// positional rewrites a toggle by identity into a toggle at the segment's
// start, so the journal replays the same way however identities are minted.
// It reports false when no segment in current has the identity.
func positional(cmd engine.Command, current []ir.Segment) (engine.Command, bool) {
	if cmd.Op != engine.OpToggle || cmd.ID == "" {
		return cmd, true
	}
	for _, s := range current {
		if s.ID == cmd.ID {
			return engine.Command{Op: engine.OpToggle, At: s.Start}, true
		}
	}
	return cmd, false
}
