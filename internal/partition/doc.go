// Package partition restores and checks the legal form of a timeline
// partition.
//
// A legal partition is sorted by start, has no overlaps, no zero-length
// segments and no two neighbouring segments with the same tag. When the
// engine has run at least one mutating gesture it also covers
// [0, duration) without gaps.
//
// Normalize is a pure transform: it never mutates its input and running it
// on its own output is a no-op.
package partition
