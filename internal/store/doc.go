// Package store provides SQLite-backed persistence for keepline projects.
//
// A project row carries the authoritative duration and the hash of its last
// saved partition. Two child tables hang off it:
//   - segments: the saved partition, one row per segment
//   - gestures: an append-only journal of applied commands
//
// # Ordering
//
// Journal reads are ordered by seq ASC, never by timestamps, so a replay
// sees commands in the order they were applied. Segment reads are ordered
// by start_time then id COLLATE BINARY; callers still pass them through
// ReplaceSegments, which is order-independent.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: child rows are deleted with their project
package store
