package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/keepline/internal/engine"
)

// Gesture is one journal entry: a command applied to a project.
type Gesture struct {
	Seq     int64          `json:"seq" yaml:"seq"`
	Command engine.Command `json:"command" yaml:"command"`
	Hash    string         `json:"hash" yaml:"hash"`
}

// AppendGestures appends cmds to the project's journal in order and returns
// the sequence number of the last one. Appending nothing returns the
// current last sequence.
func (s *Store) AppendGestures(ctx context.Context, projectID string, cmds []engine.Command) (int64, error) {
	var last int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := projectExists(ctx, tx, projectID); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) FROM gestures WHERE project_id = ?`, projectID,
		).Scan(&last); err != nil {
			return fmt.Errorf("last seq: %w", err)
		}

		for _, cmd := range cmds {
			args, hash, err := marshalCommand(cmd)
			if err != nil {
				return err
			}
			last++
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO gestures (project_id, seq, op, args, command_hash)
				VALUES (?, ?, ?, ?, ?)
			`, projectID, last, string(cmd.Op), args, hash); err != nil {
				return fmt.Errorf("insert gesture %d: %w", last, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("append gestures: %w", err)
	}
	return last, nil
}

// ReadGestures returns the project's journal ordered by seq.
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadGestures(ctx context.Context, projectID string) ([]Gesture, error) {
	if err := projectExists(ctx, s.db, projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, args, command_hash
		FROM gestures
		WHERE project_id = ?
		ORDER BY seq ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query gestures: %w", err)
	}
	defer rows.Close()

	gestures := []Gesture{}
	for rows.Next() {
		var g Gesture
		var args string
		if err := rows.Scan(&g.Seq, &args, &g.Hash); err != nil {
			return nil, fmt.Errorf("scan gesture: %w", err)
		}
		if g.Command, err = unmarshalCommand(args); err != nil {
			return nil, fmt.Errorf("gesture %d: %w", g.Seq, err)
		}
		gestures = append(gestures, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gestures: %w", err)
	}
	return gestures, nil
}

// Commands extracts the commands from a journal, in order.
func Commands(gestures []Gesture) []engine.Command {
	cmds := make([]engine.Command, len(gestures))
	for i, g := range gestures {
		cmds[i] = g.Command
	}
	return cmds
}

// GetLastSeq returns the highest journal sequence for the project, or 0.
func (s *Store) GetLastSeq(ctx context.Context, projectID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM gestures WHERE project_id = ?`, projectID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}
