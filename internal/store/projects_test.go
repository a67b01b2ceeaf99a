package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject_AssignsSequenceAndID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p1, err := s.CreateProject(ctx, "", "first", 12.5)
	require.NoError(t, err)
	p2, err := s.CreateProject(ctx, "fixed-id", "second", 0)
	require.NoError(t, err)

	assert.Len(t, p1.ID, 36, "empty id mints a UUID")
	assert.Equal(t, int64(1), p1.CreatedSeq)
	assert.Equal(t, "fixed-id", p2.ID)
	assert.Equal(t, int64(2), p2.CreatedSeq)

	got, err := s.ReadProject(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, p1, got)
}

func TestCreateProject_NormalizesName(t *testing.T) {
	s := createTestStore(t)

	// "e" + combining acute accent composes to a single code point.
	p, err := s.CreateProject(context.Background(), "", "  cafe\u0301 ", 1)
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", p.Name)
}

func TestCreateProject_Rejects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateProject(ctx, "", "   ", 1)
	assert.Error(t, err)

	_, err = s.CreateProject(ctx, "", "neg", -1)
	assert.Error(t, err)

	mustCreateProject(t, s, "dup")
	_, err = s.CreateProject(ctx, "dup", "again", 1)
	assert.Error(t, err, "duplicate id")
}

func TestReadProject_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadProject(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProjects_CreationOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	mustCreateProject(t, s, "z")
	mustCreateProject(t, s, "a")

	got, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestUpdateDuration(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, s, "p")

	require.NoError(t, s.UpdateDuration(ctx, "p", 8))
	got, err := s.ReadProject(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.Duration)

	assert.ErrorIs(t, s.UpdateDuration(ctx, "missing", 8), ErrNotFound)
	assert.Error(t, s.UpdateDuration(ctx, "p", -2))
}

func TestDeleteProject_Cascades(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, s, "p")
	_, err := s.SaveSegments(ctx, "p", testPartition())
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(ctx, "p"))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM segments`).Scan(&n))
	assert.Zero(t, n)
	assert.ErrorIs(t, s.DeleteProject(ctx, "p"), ErrNotFound)
}
