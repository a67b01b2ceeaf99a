package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestRun_Passes(t *testing.T) {
	s := &Scenario{
		Name:        "keep",
		Description: "d",
		Duration:    10,
		Steps: []engine.Command{
			{Op: engine.OpBegin, At: 0},
			{Op: engine.OpStop, At: 5},
		},
		Expect: &Expectation{
			Segments: []Span{
				{ID: "seg-2", Start: 0, End: 5, Included: true},
				{Start: 5, End: 10},
			},
			TotalIncluded: ptr(5.0),
			IncludedCount: ptr(1),
			Recording:     ptr(false),
		},
		Assertions: []Assertion{{Type: AssertInvariants}},
	}

	result, err := Run(s, WithLogger(testutil.TestLogger(t)))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, StepTrace{Index: 0, Op: "begin", Revision: 1, Segments: 1, Included: 10, Recording: true}, result.Trace[0])
	assert.Equal(t, ir.MustPartitionHash(result.Final), result.Hash)
}

func TestRun_ReportsMismatches(t *testing.T) {
	s := &Scenario{
		Name:        "wrong",
		Description: "d",
		Duration:    10,
		Steps:       []engine.Command{{Op: engine.OpBegin, At: 4}},
		Expect: &Expectation{
			Segments:      []Span{{Start: 0, End: 10}},
			TotalIncluded: ptr(1.0),
			IncludedCount: ptr(3),
			Recording:     ptr(false),
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "segments: expected 1, got 2")
	assert.Contains(t, result.Errors[1], "total_included")
	assert.Contains(t, result.Errors[2], "included_count")
	assert.Contains(t, result.Errors[3], "recording")
}

func TestRun_SegmentMismatchNamesPosition(t *testing.T) {
	s := &Scenario{
		Name:        "shape",
		Description: "d",
		Duration:    10,
		Steps:       []engine.Command{{Op: engine.OpFinalize}},
		Expect: &Expectation{
			Segments: []Span{{ID: "other", Start: 0, End: 10}},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, `segments[0]: expected id "other", got "seg-1"`, result.Errors[0])
}

func TestRun_InvalidStep(t *testing.T) {
	s := &Scenario{
		Name:        "bad",
		Description: "d",
		Duration:    10,
		Steps:       []engine.Command{{Op: "rewind"}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.True(t, engine.IsUnknownOp(err))
}

func TestCommands_DefaultsDuration(t *testing.T) {
	s := &Scenario{
		Duration: 12,
		Initial:  []Span{{Start: 0, End: 12}},
		Steps: []engine.Command{
			{Op: engine.OpBegin, At: 3},
			{Op: engine.OpFinalize, Duration: 9},
			{Op: engine.OpStop, At: 4},
		},
	}

	cmds := Commands(s)
	require.Len(t, cmds, 4)
	assert.Equal(t, engine.OpReplace, cmds[0].Op)
	assert.Equal(t, []ir.SegmentRecord{{StartTime: 0, EndTime: 12}}, cmds[0].Segments)
	assert.Equal(t, 12.0, cmds[1].Duration)
	assert.Equal(t, 9.0, cmds[2].Duration)
	assert.Zero(t, cmds[3].Duration)

	// The scenario's own steps are untouched.
	assert.Zero(t, s.Steps[0].Duration)
}

func TestFormatSegments(t *testing.T) {
	segs := []ir.Segment{
		ir.NewSegment("a", 0, 2.5, false),
		ir.NewSegment("b", 2.5, 10, true),
	}
	assert.Equal(t, "[0,2.5)- [2.5,10)+", FormatSegments(segs))
	assert.Equal(t, "", FormatSegments(nil))
}
