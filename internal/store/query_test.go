package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestCompileSegmentQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter SegmentFilter
		where  string
		params []any
	}{
		{
			name:   "all",
			where:  "WHERE project_id = ? ORDER BY",
			params: []any{"p"},
		},
		{
			name:   "included",
			filter: SegmentFilter{Included: boolPtr(true)},
			where:  "WHERE project_id = ? AND is_included = ? ORDER BY",
			params: []any{"p", 1},
		},
		{
			name:   "window",
			filter: SegmentFilter{From: 2, To: 7.5},
			where:  "WHERE project_id = ? AND end_time > ? AND start_time < ? ORDER BY",
			params: []any{"p", 2.0, 7.5},
		},
		{
			name:   "open window",
			filter: SegmentFilter{From: 3, Included: boolPtr(false)},
			where:  "WHERE project_id = ? AND is_included = ? AND end_time > ? ORDER BY",
			params: []any{"p", 0, 3.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := compileSegmentQuery("p", tt.filter)
			require.NoError(t, err)
			assert.Contains(t, sql, tt.where)
			assert.Contains(t, sql, "ORDER BY start_time ASC, id COLLATE BINARY ASC")
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompileSegmentQuery_RejectsBadWindow(t *testing.T) {
	_, _, err := compileSegmentQuery("p", SegmentFilter{From: -1})
	assert.ErrorContains(t, err, "must not be negative")

	_, _, err = compileSegmentQuery("p", SegmentFilter{From: 5, To: 5})
	assert.ErrorContains(t, err, "empty window")
}

func TestQuerySegments(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, s, "p")
	_, err := s.SaveSegments(ctx, "p", testPartition())
	require.NoError(t, err)

	ids := func(f SegmentFilter) []string {
		t.Helper()
		segs, err := s.QuerySegments(ctx, "p", f)
		require.NoError(t, err)
		out := make([]string, len(segs))
		for i, seg := range segs {
			out[i] = seg.ID
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(SegmentFilter{}))
	assert.Equal(t, []string{"b"}, ids(SegmentFilter{Included: boolPtr(true)}))
	assert.Equal(t, []string{"a", "c"}, ids(SegmentFilter{Included: boolPtr(false)}))

	// Touching a window edge is not overlap.
	assert.Equal(t, []string{"b"}, ids(SegmentFilter{From: 2, To: 6}))
	assert.Equal(t, []string{"b", "c"}, ids(SegmentFilter{From: 5}))
	assert.Equal(t, []string{"a"}, ids(SegmentFilter{To: 2}))
}

func TestQuerySegments_UnknownProject(t *testing.T) {
	s := createTestStore(t)

	_, err := s.QuerySegments(context.Background(), "nope", SegmentFilter{})
	assert.ErrorIs(t, err, ErrNotFound)
}
