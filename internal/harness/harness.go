package harness

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes engine mutation records to l.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario against a fresh engine.
//
// The engine uses a sequential ID generator, so segment IDs in the trace and
// final partition are the same on every run. Run returns an error only when
// a step cannot be applied at all; failed expectations are reported through
// Result.Pass and Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := engine.New(
		engine.WithIDGenerator(testutil.NewSequentialIDGenerator("seg")),
		engine.WithLogger(cfg.logger),
	)

	result := NewResult()
	for i, cmd := range Commands(scenario) {
		if _, err := engine.Apply(e, cmd); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, cmd.Op, err)
		}
		result.Trace = append(result.Trace, StepTrace{
			Index:     i,
			Op:        string(cmd.Op),
			Revision:  e.Revision(),
			Segments:  len(e.Segments()),
			Included:  e.TotalIncludedDuration(),
			Recording: e.IsRecording(),
		})
	}

	result.Final = e.Segments()
	hash, err := ir.PartitionHash(result.Final)
	if err != nil {
		return nil, fmt.Errorf("hash final partition: %w", err)
	}
	result.Hash = hash

	if scenario.Expect != nil {
		for _, msg := range checkExpectation(e, scenario.Expect) {
			result.AddError(msg)
		}
	}
	for i, a := range scenario.Assertions {
		if err := evaluateAssertion(e, a, scenario.Duration, hash); err != nil {
			result.AddError(fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return result, nil
}

// Commands expands a scenario into the engine commands Run applies: a
// replace for the initial partition if there is one, then every step with
// begin and finalize defaulting to the scenario duration.
func Commands(scenario *Scenario) []engine.Command {
	cmds := make([]engine.Command, 0, len(scenario.Steps)+1)
	if len(scenario.Initial) > 0 {
		recs := make([]ir.SegmentRecord, len(scenario.Initial))
		for i, s := range scenario.Initial {
			recs[i] = s.Segment().Record()
		}
		cmds = append(cmds, engine.Command{Op: engine.OpReplace, Segments: recs})
	}
	for _, step := range scenario.Steps {
		if (step.Op == engine.OpBegin || step.Op == engine.OpFinalize) && step.Duration == 0 {
			step.Duration = scenario.Duration
		}
		cmds = append(cmds, step)
	}
	return cmds
}

// FormatSegments renders a partition as "[0,2)- [2,8)+ ..." for messages.
func FormatSegments(segs []ir.Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		tag := "-"
		if s.Included {
			tag = "+"
		}
		parts[i] = fmt.Sprintf("[%g,%g)%s", s.Start, s.End, tag)
	}
	return strings.Join(parts, " ")
}
