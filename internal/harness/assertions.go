package harness

import (
	"fmt"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/partition"
)

// AssertionError describes a failed assertion with expected and actual values.
type AssertionError struct {
	Type     string
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %v, got %v", e.Type, e.Expected, e.Actual)
}

// checkExpectation compares the final engine state against exp and returns
// one message per mismatch.
func checkExpectation(e *engine.Engine, exp *Expectation) []string {
	var errs []string
	got := e.Segments()

	if exp.Segments != nil {
		if len(got) != len(exp.Segments) {
			errs = append(errs, fmt.Sprintf("segments: expected %d, got %d: %s",
				len(exp.Segments), len(got), FormatSegments(got)))
		} else {
			for i, want := range exp.Segments {
				if msg := compareSpan(i, want, got[i]); msg != "" {
					errs = append(errs, msg)
				}
			}
		}
	}

	if exp.TotalIncluded != nil {
		if total := e.TotalIncludedDuration(); !ir.ApproxEqual(total, *exp.TotalIncluded) {
			errs = append(errs, (&AssertionError{
				Type: "total_included", Expected: *exp.TotalIncluded, Actual: total,
			}).Error())
		}
	}

	if exp.IncludedCount != nil {
		if n := e.IncludedSegmentCount(); n != *exp.IncludedCount {
			errs = append(errs, (&AssertionError{
				Type: "included_count", Expected: *exp.IncludedCount, Actual: n,
			}).Error())
		}
	}

	if exp.Recording != nil && e.IsRecording() != *exp.Recording {
		errs = append(errs, (&AssertionError{
			Type: "recording", Expected: *exp.Recording, Actual: e.IsRecording(),
		}).Error())
	}
	return errs
}

func compareSpan(i int, want Span, got ir.Segment) string {
	if !ir.ApproxEqual(want.Start, got.Start) || !ir.ApproxEqual(want.End, got.End) || want.Included != got.Included {
		return fmt.Sprintf("segments[%d]: expected %s, got %s",
			i, FormatSegments([]ir.Segment{want.Segment()}), FormatSegments([]ir.Segment{got}))
	}
	if want.ID != "" && want.ID != got.ID {
		return fmt.Sprintf("segments[%d]: expected id %q, got %q", i, want.ID, got.ID)
	}
	return ""
}

// evaluateAssertion checks a single assertion against the final state.
func evaluateAssertion(e *engine.Engine, a Assertion, duration float64, hash string) error {
	switch a.Type {
	case AssertInvariants:
		return partition.Validate(e.Segments(), duration)

	case AssertSegmentAt:
		seg, ok := e.SegmentAt(*a.At)
		if a.Absent {
			if ok {
				return &AssertionError{Type: a.Type, Expected: "no segment", Actual: FormatSegments([]ir.Segment{seg})}
			}
			return nil
		}
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("segment at %g", *a.At), Actual: "none"}
		}
		if seg.Included != *a.Included {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("included=%t", *a.Included), Actual: fmt.Sprintf("included=%t", seg.Included)}
		}
		return nil

	case AssertTotalIncluded:
		if total := e.TotalIncludedDuration(); !ir.ApproxEqual(total, *a.Value) {
			return &AssertionError{Type: a.Type, Expected: *a.Value, Actual: total}
		}
		return nil

	case AssertIncludedCount:
		if n := e.IncludedSegmentCount(); n != *a.Count {
			return &AssertionError{Type: a.Type, Expected: *a.Count, Actual: n}
		}
		return nil

	case AssertHash:
		if hash != a.Hash {
			return &AssertionError{Type: a.Type, Expected: a.Hash, Actual: hash}
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}
