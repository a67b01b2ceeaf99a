package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/keepline/internal/ir"
)

// SegmentFilter narrows a segment query. The zero value matches every
// segment of the project.
type SegmentFilter struct {
	// Included, when set, keeps only segments with that tag.
	Included *bool

	// From and To keep segments overlapping [From, To) with positive
	// measure. A To of zero means no upper limit.
	From float64
	To   float64
}

// compileSegmentQuery builds the SELECT for projectID's segments matching f.
//
// Values are always bound as parameters, never interpolated, and every
// query orders by start time with the ID as a binary tiebreaker so results
// are deterministic.
func compileSegmentQuery(projectID string, f SegmentFilter) (string, []any, error) {
	if f.From < 0 || f.To < 0 {
		return "", nil, fmt.Errorf("window bounds must not be negative: [%g, %g)", f.From, f.To)
	}
	if f.To > 0 && f.To <= f.From {
		return "", nil, fmt.Errorf("empty window: [%g, %g)", f.From, f.To)
	}

	where := []string{"project_id = ?"}
	params := []any{projectID}
	if f.Included != nil {
		where = append(where, "is_included = ?")
		params = append(params, boolToInt(*f.Included))
	}
	if f.From > 0 {
		where = append(where, "end_time > ?")
		params = append(params, f.From)
	}
	if f.To > 0 {
		where = append(where, "start_time < ?")
		params = append(params, f.To)
	}

	sql := "SELECT id, start_time, end_time, is_included FROM segments WHERE " +
		strings.Join(where, " AND ") +
		" ORDER BY start_time ASC, id COLLATE BINARY ASC"
	return sql, params, nil
}

// QuerySegments returns the project's stored segments matching f in time
// order. Returns an empty slice (not nil) if nothing matches.
func (s *Store) QuerySegments(ctx context.Context, projectID string, f SegmentFilter) ([]ir.Segment, error) {
	query, params, err := compileSegmentQuery(projectID, f)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	if err := projectExists(ctx, s.db, projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	segs := []ir.Segment{}
	for rows.Next() {
		var seg ir.Segment
		var included int
		if err := rows.Scan(&seg.ID, &seg.Start, &seg.End, &included); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		seg.Included = included != 0
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segs, nil
}
