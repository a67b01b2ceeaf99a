// Package ir provides the canonical value types for keepline.
//
// This package contains the Segment entity, its persisted record form and the
// canonical serialisation used for hashing and golden snapshots. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Times are float64 seconds; boundary equality is compared within Epsilon
//   - Segment identity is opaque and never derived from position
//   - All JSON tags use snake_case
//   - Content hashes exclude identity so replays compare by shape only
package ir
