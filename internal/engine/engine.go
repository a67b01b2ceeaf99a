package engine

import (
	"log/slog"
	"math"

	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/partition"
)

// Engine owns a timeline partition and its recording transaction.
//
// INVARIANTS (whenever the engine is Idle):
//   - segments are sorted by start, never overlap, and every one is valid
//   - neighbours differ in tag, except directly after SplitSegment
//   - once a gesture or FinalizeSegments has run, segments cover [0, duration)
type Engine struct {
	segments  []ir.Segment
	recording *recording

	// bound is the last duration passed to FinalizeSegments. Bulk replace and
	// point edits clean up against it; Unbounded until the first finalize.
	bound float64

	ids    IDGenerator
	clock  *Clock
	logger *slog.Logger
}

// recording is the ephemeral state held between a begin and the operation
// that terminates it. It is never persisted.
type recording struct {
	snapshot []ir.Segment
	start    float64
	duration float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator sets the segment identity source.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger used for mutation records.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock sets the revision clock, used to resume a stored project.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Idle engine with an empty partition.
func New(opts ...Option) *Engine {
	e := &Engine{
		segments: []ir.Segment{},
		bound:    partition.Unbounded,
		ids:      UUIDv7Generator{},
		clock:    NewClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Segments returns a copy of the current partition.
func (e *Engine) Segments() []ir.Segment {
	return ir.CloneSegments(e.segments)
}

// TotalIncludedDuration sums the duration of included segments.
func (e *Engine) TotalIncludedDuration() float64 {
	return partition.TotalIncluded(e.segments)
}

// IncludedSegmentCount counts included segments.
func (e *Engine) IncludedSegmentCount() int {
	return partition.IncludedCount(e.segments)
}

// SegmentAt returns the segment whose [start, end) contains t.
//
// The end of the last segment is not contained by anything, so SegmentAt at
// exactly the partition's end reports false. Callers rendering a playhead
// parked at the end must handle that themselves.
func (e *Engine) SegmentAt(t float64) (ir.Segment, bool) {
	for _, s := range e.segments {
		if s.Contains(t) {
			return s, true
		}
	}
	return ir.Segment{}, false
}

// IsRecording reports whether a keep gesture is in flight.
func (e *Engine) IsRecording() bool {
	return e.recording != nil
}

// RecordingStart returns the start of the in-flight gesture.
func (e *Engine) RecordingStart() (float64, bool) {
	if e.recording == nil {
		return 0, false
	}
	return e.recording.start, true
}

// FinalizedDuration returns the last duration passed to FinalizeSegments.
func (e *Engine) FinalizedDuration() (float64, bool) {
	if math.IsInf(e.bound, 1) {
		return 0, false
	}
	return e.bound, true
}

// Revision returns the number of state-changing calls so far.
func (e *Engine) Revision() int64 {
	return e.clock.Current()
}

// BeginIncluding starts a keep gesture at t against duration d.
//
// t is clamped to [0, d]. With d <= 0 nothing changes. Otherwise the current
// partition is snapshotted, [t, d) is provisionally marked included for live
// preview and the engine enters Recording. Calling again while Recording
// replaces the transaction; the new snapshot includes the previous preview.
func (e *Engine) BeginIncluding(t, d float64) []ir.Segment {
	if d <= 0 {
		e.logger.Debug("begin ignored: no duration", "at", t, "duration", d)
		return e.Segments()
	}
	t = clamp(t, 0, d)

	snapshot := ir.CloneSegments(e.segments)
	e.segments = e.replaceRange(e.segments, t, d, true, d)
	if e.recording != nil {
		e.logger.Debug("begin overwrote in-flight gesture", "previous_start", e.recording.start)
	}
	e.recording = &recording{snapshot: snapshot, start: t, duration: d}

	e.commit("begin", "at", t, "duration", d)
	return e.Segments()
}

// StopIncluding ends the keep gesture at t.
//
// While Idle this is a point split at t. While Recording, the pre-gesture
// snapshot is restored and [min(start,t), max(start,t)) is committed as
// included against it:
//   - included snapshot segments that overlap the range with positive
//     measure are absorbed; the range grows down to the earliest of their
//     starts, and any part of them beyond the range's end becomes excluded
//   - everything else outside the range is kept as it was
//   - uncovered time in [0, duration) becomes excluded
//
// A zero-length range commits nothing: the snapshot is restored with its
// gaps excluded. The result is cleaned up against the transaction's duration.
func (e *Engine) StopIncluding(t float64) []ir.Segment {
	t = math.Max(t, 0)

	rec := e.recording
	if rec == nil {
		e.logger.Debug("stop without gesture: splitting", "at", t)
		return e.SplitSegment(t)
	}
	e.recording = nil

	lo, hi := math.Min(rec.start, t), math.Max(rec.start, t)
	if hi-lo <= ir.Epsilon {
		e.segments = partition.Normalize(e.fillGaps(rec.snapshot, rec.duration), rec.duration)
		e.commit("stop", "at", t, "range_start", lo, "range_end", hi, "empty", true)
		return e.Segments()
	}
	base, lo := e.absorbIncluded(rec.snapshot, lo, hi)
	e.segments = e.replaceRange(base, lo, hi, true, rec.duration)

	e.commit("stop", "at", t, "range_start", lo, "range_end", hi)
	return e.Segments()
}

// ToggleSegment flips the tag of the segment with the given identity in
// place, then cleans up, which may merge it into its neighbours. Unknown
// identities are ignored.
func (e *Engine) ToggleSegment(id string) []ir.Segment {
	for i := range e.segments {
		if e.segments[i].ID != id {
			continue
		}
		e.segments[i].Included = !e.segments[i].Included
		e.segments = partition.Normalize(e.segments, e.bound)
		e.commit("toggle", "id", id)
		return e.Segments()
	}

	e.logger.Debug("toggle ignored: unknown segment", "id", id)
	return e.Segments()
}

// SplitSegment cuts the segment strictly containing t (start < t < end) into
// [start, t) and [t, end) with the same tag. The left piece keeps the
// identity; the right piece gets a fresh one. A t on a boundary or outside
// every segment is a no-op.
//
// The pieces are left unmerged so they can be toggled independently; the
// next cleanup-running call folds them back together if their tags still
// match.
func (e *Engine) SplitSegment(t float64) []ir.Segment {
	for i, s := range e.segments {
		if !(s.Start < t && t < s.End) {
			continue
		}

		left := s
		left.End = t
		right := ir.NewSegment(e.ids.NewID(), t, s.End, s.Included)

		out := make([]ir.Segment, 0, len(e.segments)+1)
		out = append(out, e.segments[:i]...)
		out = append(out, left, right)
		out = append(out, e.segments[i+1:]...)
		e.segments = out

		e.commit("split", "at", t, "id", s.ID, "new_id", right.ID)
		return e.Segments()
	}

	e.logger.Debug("split ignored: no segment strictly contains point", "at", t)
	return e.Segments()
}

// ReplaceSegments discards any in-flight gesture and installs segs, cleaned
// up against the last finalized duration. Segments without an identity, or
// repeating one already seen, get a fresh identity. Input order is
// irrelevant.
func (e *Engine) ReplaceSegments(segs []ir.Segment) []ir.Segment {
	e.recording = nil

	seen := make(map[string]bool, len(segs))
	in := ir.CloneSegments(segs)
	for i := range in {
		if in[i].ID == "" || seen[in[i].ID] {
			in[i].ID = e.ids.NewID()
		}
		seen[in[i].ID] = true
	}

	e.segments = partition.Normalize(in, e.bound)
	e.commit("replace", "input", len(segs))
	return e.Segments()
}

// FinalizeSegments re-runs cleanup against the authoritative duration d,
// capping or dropping anything past it, and marks any uncovered time in
// [0, d) as excluded. Later bulk replaces and point edits clean up against d.
// An in-flight gesture keeps the duration it began with. With d <= 0 nothing
// changes.
func (e *Engine) FinalizeSegments(d float64) []ir.Segment {
	if d <= 0 {
		e.logger.Debug("finalize ignored: no duration", "duration", d)
		return e.Segments()
	}

	e.bound = d
	e.segments = partition.Normalize(e.fillGaps(partition.Normalize(e.segments, d), d), d)

	e.commit("finalize", "duration", d)
	return e.Segments()
}

// Reset clears the partition, the finalized duration and any in-flight
// gesture, returning the engine to its initial state.
func (e *Engine) Reset() []ir.Segment {
	e.segments = []ir.Segment{}
	e.recording = nil
	e.bound = partition.Unbounded

	e.commit("reset")
	return e.Segments()
}

// commit advances the revision and records the mutation.
func (e *Engine) commit(op string, attrs ...any) {
	rev := e.clock.Next()
	args := append([]any{
		"op", op,
		"revision", rev,
		"segments", len(e.segments),
		"included_total", e.TotalIncludedDuration(),
		"recording", e.recording != nil,
	}, attrs...)
	e.logger.Debug("timeline mutated", args...)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
