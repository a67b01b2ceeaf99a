// Package harness runs gesture scenarios against the timeline engine.
//
// A scenario is a YAML file describing a video duration, an optional seed
// partition, a list of engine commands and what the final partition must
// look like. Every run uses a fresh engine with sequential segment IDs
// ("seg-1", "seg-2", ...), so traces and golden snapshots are reproducible.
//
// # Scenario Format
//
//	name: rekeep_shrinks
//	description: "Re-keeping inside a keep shrinks it"
//	duration: 10
//	initial:                      # optional seed, any order
//	  - {start: 0, end: 10, included: false}
//	steps:
//	  - {op: begin, at: 2}         # duration defaults to the scenario's
//	  - {op: stop, at: 8}
//	  - {op: toggle, id: seg-3}
//	expect:
//	  segments:
//	    - {start: 0, end: 2, included: false}
//	    - {start: 2, end: 8, included: true}
//	    - {start: 8, end: 10, included: false}
//	  total_included: 6
//	  included_count: 1
//	  recording: false
//	assertions:
//	  - type: invariants
//	  - type: segment_at
//	    at: 8
//	    included: false
//	  - type: segment_at
//	    at: 10
//	    absent: true
//
// # Assertion Types
//
//   - invariants: the final partition passes partition.Validate
//   - segment_at: SegmentAt(at) finds a segment with the given tag, or
//     nothing when absent is set
//   - total_included: total included duration equals value
//   - included_count: number of included segments equals count
//   - hash: the partition's shape hash equals hash
//
// # Golden Files
//
// RunWithGolden writes a canonical JSON snapshot of the final partition and
// the per-step trace to testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
