package ir

// SegmentRecord is the persisted and wire form of a segment.
// Records may appear in any order; loaders re-sort them.
type SegmentRecord struct {
	ID         string  `json:"id" yaml:"id" toml:"id"`
	StartTime  float64 `json:"start_time" yaml:"start_time" toml:"start_time"`
	EndTime    float64 `json:"end_time" yaml:"end_time" toml:"end_time"`
	IsIncluded bool    `json:"is_included" yaml:"is_included" toml:"is_included"`
}

// Record converts a segment to its persisted form.
func (s Segment) Record() SegmentRecord {
	return SegmentRecord{
		ID:         s.ID,
		StartTime:  s.Start,
		EndTime:    s.End,
		IsIncluded: s.Included,
	}
}

// Segment converts a record back to a segment, applying NewSegment clamping.
func (r SegmentRecord) Segment() Segment {
	return NewSegment(r.ID, r.StartTime, r.EndTime, r.IsIncluded)
}

// Records converts segments to records, preserving order.
func Records(segs []Segment) []SegmentRecord {
	out := make([]SegmentRecord, len(segs))
	for i, s := range segs {
		out[i] = s.Record()
	}
	return out
}

// FromRecords converts records to segments, preserving order.
func FromRecords(recs []SegmentRecord) []Segment {
	out := make([]Segment, len(recs))
	for i, r := range recs {
		out[i] = r.Segment()
	}
	return out
}
