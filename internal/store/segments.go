package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/keepline/internal/ir"
)

// SaveSegments replaces the project's stored partition with segs and
// records its partition hash, in one transaction. Returns the hash.
func (s *Store) SaveSegments(ctx context.Context, projectID string, segs []ir.Segment) (string, error) {
	hash, err := ir.PartitionHash(segs)
	if err != nil {
		return "", fmt.Errorf("save segments: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := projectExists(ctx, tx, projectID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("clear segments: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO segments (project_id, id, start_time, end_time, is_included)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, seg := range segs {
			if _, err := stmt.ExecContext(ctx, projectID, seg.ID, seg.Start, seg.End, boolToInt(seg.Included)); err != nil {
				return fmt.Errorf("insert segment %q: %w", seg.ID, err)
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE projects SET partition_hash = ? WHERE id = ?`, hash, projectID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("save segments: %w", err)
	}
	return hash, nil
}

// ReadSegments returns the project's stored partition in time order.
// Returns an empty slice (not nil) if nothing is saved.
func (s *Store) ReadSegments(ctx context.Context, projectID string) ([]ir.Segment, error) {
	return s.QuerySegments(ctx, projectID, SegmentFilter{})
}
