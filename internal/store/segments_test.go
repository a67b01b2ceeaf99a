package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepline/internal/ir"
)

func testPartition() []ir.Segment {
	return []ir.Segment{
		ir.NewSegment("b", 2, 6, true),
		ir.NewSegment("a", 0, 2, false),
		ir.NewSegment("c", 6, 10, false),
	}
}

func TestSaveSegments_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, s, "p")

	hash, err := s.SaveSegments(ctx, "p", testPartition())
	require.NoError(t, err)

	got, err := s.ReadSegments(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []ir.Segment{
		ir.NewSegment("a", 0, 2, false),
		ir.NewSegment("b", 2, 6, true),
		ir.NewSegment("c", 6, 10, false),
	}, got)

	p, err := s.ReadProject(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, hash, p.PartitionHash)
	assert.Equal(t, ir.MustPartitionHash(got), hash)
}

func TestSaveSegments_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, s, "p")

	_, err := s.SaveSegments(ctx, "p", testPartition())
	require.NoError(t, err)
	_, err = s.SaveSegments(ctx, "p", []ir.Segment{ir.NewSegment("x", 0, 10, false)})
	require.NoError(t, err)

	got, err := s.ReadSegments(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []ir.Segment{ir.NewSegment("x", 0, 10, false)}, got)
}

func TestSaveSegments_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, s, "p")
	_, err := s.SaveSegments(ctx, "p", testPartition())
	require.NoError(t, err)

	_, err = s.SaveSegments(ctx, "p", []ir.Segment{
		ir.NewSegment("dup", 0, 5, true),
		ir.NewSegment("dup", 5, 10, false),
	})
	require.Error(t, err)

	got, err := s.ReadSegments(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, got, 3, "failed save must leave the previous partition")
}

func TestSegments_UnknownProject(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.SaveSegments(ctx, "nope", testPartition())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ReadSegments(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadSegments_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	mustCreateProject(t, s, "p")

	got, err := s.ReadSegments(context.Background(), "p")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
