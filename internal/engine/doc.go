// Package engine implements the keepline timeline engine.
//
// The engine owns a partition of [0, duration) into included and excluded
// segments plus at most one in-flight recording transaction. Callers drive
// it with time values and intents; every mutating call funnels its result
// through partition.Normalize before it becomes visible.
//
// STATES:
//
// Idle: no recording transaction.
// Recording: a transaction holds the pre-gesture snapshot, the gesture start
// and the duration in effect when the gesture began.
//
// BeginIncluding snapshots the partition, applies a provisional keep of
// [t, duration) for live preview and enters Recording. A second begin while
// Recording overwrites the transaction with a snapshot of the provisional
// partition. StopIncluding restores the snapshot and commits the gesture
// range against it, so the committed result depends only on
// (snapshot, start, stop) and never on the preview.
//
// Stopping while Idle falls back to a point split, so a stray stop degrades
// to a harmless edit.
//
// CONCURRENCY:
//
// Engine is not safe for concurrent use. All calls are expected from one
// logical actor. Session wraps an Engine in a single-writer loop for callers
// that live on several goroutines.
//
// Reads return copies; no caller ever holds a slice aliasing engine state.
package engine
