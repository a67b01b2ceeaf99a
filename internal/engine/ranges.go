package engine

import (
	"math"
	"sort"

	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/partition"
)

// replaceRange marks [lo, hi) with the given tag on top of base.
//
// Segments entirely outside the range are kept as they are. A segment that
// straddles a range boundary is trimmed; the piece before lo keeps its
// identity and the piece after hi gets a fresh one if the segment was cut
// on both sides. Time in [0, duration) that nothing covers becomes excluded.
// The result is cleaned up against duration.
func (e *Engine) replaceRange(base []ir.Segment, lo, hi float64, included bool, duration float64) []ir.Segment {
	out := make([]ir.Segment, 0, len(base)+3)
	for _, s := range base {
		if s.End <= lo || s.Start >= hi {
			out = append(out, s)
			continue
		}

		trimmed := false
		if s.Start < lo {
			out = append(out, ir.NewSegment(s.ID, s.Start, lo, s.Included))
			trimmed = true
		}
		if s.End > hi {
			id := s.ID
			if trimmed {
				id = e.ids.NewID()
			}
			out = append(out, ir.NewSegment(id, hi, s.End, s.Included))
		}
	}
	out = append(out, ir.NewSegment(e.ids.NewID(), lo, hi, included))

	return partition.Normalize(e.fillGaps(out, duration), duration)
}

// absorbIncluded prepares a snapshot for committing a keep of [lo, hi).
//
// Every included segment overlapping [lo, hi) with positive measure is
// absorbed: the returned start is lowered to the earliest absorbed start,
// and the part of an absorbed segment beyond hi is relabelled excluded so
// the gesture's end trims it. Segments that only touch lo or hi are left
// alone.
func (e *Engine) absorbIncluded(snapshot []ir.Segment, lo, hi float64) ([]ir.Segment, float64) {
	gesture := ir.Segment{Start: lo, End: hi}
	start := lo

	out := make([]ir.Segment, 0, len(snapshot)+1)
	for _, s := range snapshot {
		if !s.Included || !s.Overlaps(gesture) {
			out = append(out, s)
			continue
		}

		start = math.Min(start, s.Start)
		if s.End > hi {
			out = append(out,
				ir.NewSegment(s.ID, s.Start, hi, true),
				ir.NewSegment(e.ids.NewID(), hi, s.End, false),
			)
			continue
		}
		out = append(out, s)
	}
	return out, start
}

// fillGaps returns segs plus an excluded segment for every stretch of
// [0, duration) not covered by any of them. The input need not be sorted.
func (e *Engine) fillGaps(segs []ir.Segment, duration float64) []ir.Segment {
	sorted := ir.CloneSegments(segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})

	out := make([]ir.Segment, 0, len(sorted)+2)
	cursor := 0.0
	for _, s := range sorted {
		if cursor < duration && s.Start > cursor+ir.Epsilon {
			out = append(out, ir.NewSegment(e.ids.NewID(), cursor, math.Min(s.Start, duration), false))
		}
		out = append(out, s)
		cursor = math.Max(cursor, s.End)
	}
	if cursor < duration-ir.Epsilon {
		out = append(out, ir.NewSegment(e.ids.NewID(), cursor, duration, false))
	}
	return out
}
