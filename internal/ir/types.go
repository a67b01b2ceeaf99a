package ir

import "math"

// Epsilon is the numeric accuracy bound, in seconds, used when comparing
// segment boundaries for equality.
const Epsilon = 1e-9

// Segment is a half-open time range [Start, End) tagged included or excluded.
//
// ID is assigned at construction and survives in-place tag flips (toggle).
// Merges and range replacement produce new segments; they never reuse an ID
// for a different range except where the earlier segment absorbs a neighbour.
type Segment struct {
	ID       string  `json:"id"`
	Start    float64 `json:"start_time"`
	End      float64 `json:"end_time"`
	Included bool    `json:"is_included"`
}

// NewSegment builds a segment, clamping negative bounds to 0.
// If start is still greater than end after clamping, the segment collapses to
// zero length at start instead of swapping bounds.
func NewSegment(id string, start, end float64, included bool) Segment {
	start = math.Max(start, 0)
	end = math.Max(end, 0)
	if start > end {
		end = start
	}
	return Segment{ID: id, Start: start, End: end, Included: included}
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// IsValid reports whether the segment has positive duration.
func (s Segment) IsValid() bool {
	return s.Duration() > 0
}

// Contains reports whether t lies in [Start, End).
func (s Segment) Contains(t float64) bool {
	return s.Start <= t && t < s.End
}

// Overlaps reports whether the two half-open ranges intersect with positive
// measure. Touching endpoints do not overlap.
func (s Segment) Overlaps(o Segment) bool {
	return s.Start < o.End && o.Start < s.End
}

// IsAdjacent reports whether one segment ends exactly where the other starts,
// regardless of tag.
func (s Segment) IsAdjacent(o Segment) bool {
	return ApproxEqual(s.End, o.Start) || ApproxEqual(o.End, s.Start)
}

// Less orders segments by Start.
func (s Segment) Less(o Segment) bool {
	return s.Start < o.Start
}

// ApproxEqual reports whether a and b are within Epsilon of each other.
func ApproxEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// CloneSegments returns a copy of segs that does not alias the input.
// A nil input yields an empty, non-nil slice.
func CloneSegments(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out
}
