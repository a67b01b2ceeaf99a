package partition

import (
	"errors"
	"fmt"

	"github.com/roach88/keepline/internal/ir"
)

// InvariantCode categorizes partition invariant violations.
type InvariantCode string

const (
	// CodeUnsorted indicates a segment starts before its predecessor.
	CodeUnsorted InvariantCode = "UNSORTED"

	// CodeOverlap indicates two segments intersect with positive measure.
	CodeOverlap InvariantCode = "OVERLAP"

	// CodeEmptySegment indicates a segment with duration <= 0.
	CodeEmptySegment InvariantCode = "EMPTY_SEGMENT"

	// CodeUnmerged indicates two touching neighbours share a tag.
	CodeUnmerged InvariantCode = "UNMERGED"

	// CodeGap indicates uncovered time between neighbours.
	CodeGap InvariantCode = "GAP"

	// CodeCoverage indicates the partition does not span [0, duration).
	CodeCoverage InvariantCode = "COVERAGE"
)

// InvariantError reports the first violated partition invariant.
type InvariantError struct {
	Code    InvariantCode
	Message string

	// Index is the offending segment's position, or -1 for whole-partition
	// violations.
	Index int
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (segment %d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvariantError reports whether err wraps an InvariantError with code.
func IsInvariantError(err error, code InvariantCode) bool {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// Validate checks every steady-state invariant of segs against duration.
//
// An empty partition is valid: it means nothing has been marked yet. A
// non-empty partition must start at 0 and end at duration. Pass a duration
// <= 0 to skip the coverage check.
func Validate(segs []ir.Segment, duration float64) error {
	if err := ValidateShape(segs); err != nil {
		return err
	}
	if len(segs) == 0 || duration <= 0 {
		return nil
	}

	if !ir.ApproxEqual(segs[0].Start, 0) {
		return &InvariantError{
			Code:    CodeCoverage,
			Message: fmt.Sprintf("partition starts at %g, want 0", segs[0].Start),
			Index:   0,
		}
	}
	if end := Extent(segs); !ir.ApproxEqual(end, duration) {
		return &InvariantError{
			Code:    CodeCoverage,
			Message: fmt.Sprintf("partition ends at %g, want %g", end, duration),
			Index:   -1,
		}
	}
	return nil
}

// ValidateShape checks ordering, overlap, validity, merging and gap
// invariants without reference to a duration.
func ValidateShape(segs []ir.Segment) error {
	for i, s := range segs {
		if !s.IsValid() {
			return &InvariantError{
				Code:    CodeEmptySegment,
				Message: fmt.Sprintf("segment %q has duration %g", s.ID, s.Duration()),
				Index:   i,
			}
		}
		if i == 0 {
			continue
		}

		prev := segs[i-1]
		switch {
		case s.Less(prev):
			return &InvariantError{
				Code:    CodeUnsorted,
				Message: fmt.Sprintf("segment starts at %g before predecessor at %g", s.Start, prev.Start),
				Index:   i,
			}
		case s.Start < prev.End-ir.Epsilon:
			return &InvariantError{
				Code:    CodeOverlap,
				Message: fmt.Sprintf("[%g,%g) overlaps [%g,%g)", s.Start, s.End, prev.Start, prev.End),
				Index:   i,
			}
		case !prev.IsAdjacent(s):
			return &InvariantError{
				Code:    CodeGap,
				Message: fmt.Sprintf("gap between %g and %g", prev.End, s.Start),
				Index:   i,
			}
		case s.Included == prev.Included:
			return &InvariantError{
				Code:    CodeUnmerged,
				Message: fmt.Sprintf("neighbours at %g share included=%t", s.Start, s.Included),
				Index:   i,
			}
		}
	}
	return nil
}
