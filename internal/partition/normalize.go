package partition

import (
	"math"
	"sort"

	"github.com/roach88/keepline/internal/ir"
)

// Unbounded disables the end clamp in Normalize.
var Unbounded = math.Inf(1)

// Normalize returns the legal form of segs clamped to [0, bound).
//
// Steps, in order:
//  1. copy and stable-sort by start
//  2. clamp each end to bound
//  3. drop segments with duration <= 0
//  4. one left-to-right pass merging neighbours that touch or overlap and
//     share a tag; the merged segment keeps the earlier ID
//
// A segment that overlaps an earlier one with the other tag is trimmed to
// begin where the earlier one ends, and dropped if nothing remains. Normalize
// never fills gaps.
func Normalize(segs []ir.Segment, bound float64) []ir.Segment {
	sorted := ir.CloneSegments(segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})

	out := make([]ir.Segment, 0, len(sorted))
	for _, s := range sorted {
		s.Start = math.Max(s.Start, 0)
		if s.End > bound {
			s.End = bound
		}
		if !s.IsValid() {
			continue
		}

		if len(out) == 0 {
			out = append(out, s)
			continue
		}

		last := &out[len(out)-1]
		touches := s.Start <= last.End || ir.ApproxEqual(s.Start, last.End)
		switch {
		case touches && s.Included == last.Included:
			last.End = math.Max(last.End, s.End)
		case s.Start < last.End:
			s.Start = last.End
			if !s.IsValid() {
				continue
			}
			out = append(out, s)
		default:
			out = append(out, s)
		}
	}

	return out
}

// TotalIncluded sums the duration of included segments.
func TotalIncluded(segs []ir.Segment) float64 {
	var total float64
	for _, s := range segs {
		if s.Included {
			total += s.Duration()
		}
	}
	return total
}

// IncludedCount counts included segments.
func IncludedCount(segs []ir.Segment) int {
	n := 0
	for _, s := range segs {
		if s.Included {
			n++
		}
	}
	return n
}

// Included returns only the included segments, preserving order.
func Included(segs []ir.Segment) []ir.Segment {
	out := make([]ir.Segment, 0, len(segs))
	for _, s := range segs {
		if s.Included {
			out = append(out, s)
		}
	}
	return out
}

// Extent returns the end of the last segment, or 0 for an empty partition.
func Extent(segs []ir.Segment) float64 {
	if len(segs) == 0 {
		return 0
	}
	return segs[len(segs)-1].End
}
