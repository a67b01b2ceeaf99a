package harness

import "github.com/roach88/keepline/internal/ir"

// Span is the scenario-file form of a segment. ID is optional; when set in
// an expectation it must match exactly.
type Span struct {
	ID       string  `yaml:"id,omitempty" json:"id,omitempty"`
	Start    float64 `yaml:"start" json:"start"`
	End      float64 `yaml:"end" json:"end"`
	Included bool    `yaml:"included" json:"included"`
}

// Segment converts the span to an engine segment.
func (s Span) Segment() ir.Segment {
	return ir.NewSegment(s.ID, s.Start, s.End, s.Included)
}

// SpanOf converts an engine segment to its scenario form.
func SpanOf(seg ir.Segment) Span {
	return Span{ID: seg.ID, Start: seg.Start, End: seg.End, Included: seg.Included}
}

// StepTrace records the engine state after one step.
type StepTrace struct {
	Index     int     `json:"index"`
	Op        string  `json:"op"`
	Revision  int64   `json:"revision"`
	Segments  int     `json:"segments"`
	Included  float64 `json:"included"`
	Recording bool    `json:"recording"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one entry per step, including the seed if any.
	Trace []StepTrace `json:"trace"`

	// Final is the partition after the last step.
	Final []ir.Segment `json:"final"`

	// Hash is ir.PartitionHash of Final.
	Hash string `json:"hash"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Final:  []ir.Segment{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
