package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashes.
// Version suffix enables future algorithm migration.
const (
	DomainPartition = "keepline/partition/v1"
	DomainCommand   = "keepline/command/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ShapeOf returns the canonical, identity-free form of a partition: one
// {start_time, end_time, is_included} object per segment, in input order.
func ShapeOf(segs []Segment) []any {
	out := make([]any, len(segs))
	for i, s := range segs {
		out[i] = map[string]any{
			"start_time":  s.Start,
			"end_time":    s.End,
			"is_included": s.Included,
		}
	}
	return out
}

// PartitionHash computes a content hash of a partition's shape.
//
// Segment IDs are intentionally excluded: a partition rebuilt by replaying
// the same gestures with a different ID generator hashes identically.
func PartitionHash(segs []Segment) (string, error) {
	canonical, err := MarshalCanonical(ShapeOf(segs))
	if err != nil {
		return "", fmt.Errorf("PartitionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPartition, canonical), nil
}

// CommandHash hashes a canonical command payload, used to fingerprint
// journal entries.
func CommandHash(payload map[string]any) (string, error) {
	canonical, err := MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("CommandHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCommand, canonical), nil
}

// MustPartitionHash is like PartitionHash but panics on error.
// Use only in tests or when all boundaries are known to be finite.
func MustPartitionHash(segs []Segment) string {
	h, err := PartitionHash(segs)
	if err != nil {
		panic(err)
	}
	return h
}
