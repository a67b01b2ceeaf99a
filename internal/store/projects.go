package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Project is a stored timeline: a named media item and its known duration.
type Project struct {
	ID            string  `json:"id" yaml:"id" toml:"id"`
	Name          string  `json:"name" yaml:"name" toml:"name"`
	Duration      float64 `json:"duration" yaml:"duration" toml:"duration"`
	CreatedSeq    int64   `json:"created_seq" yaml:"created_seq" toml:"created_seq"`
	PartitionHash string  `json:"partition_hash,omitempty" yaml:"partition_hash,omitempty" toml:"partition_hash,omitempty"`
}

// CreateProject inserts a new project and returns it with its assigned ID
// and creation sequence. An empty id mints a UUIDv7. Names are stored in
// NFC so visually identical names compare equal.
func (s *Store) CreateProject(ctx context.Context, id, name string, duration float64) (Project, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return Project{}, fmt.Errorf("create project: name is required")
	}
	if duration < 0 {
		return Project{}, fmt.Errorf("create project: negative duration %g", duration)
	}
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	p := Project{ID: id, Name: name, Duration: duration}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(created_seq), 0) + 1 FROM projects`,
		).Scan(&p.CreatedSeq); err != nil {
			return fmt.Errorf("next created_seq: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, duration, created_seq)
			VALUES (?, ?, ?, ?)
		`, p.ID, p.Name, p.Duration, p.CreatedSeq)
		return err
	})
	if err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// ReadProject returns the project with the given ID.
// Returns an error wrapping ErrNotFound if it does not exist.
func (s *Store) ReadProject(ctx context.Context, id string) (Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, duration, created_seq, partition_hash
		FROM projects
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Duration, &p.CreatedSeq, &p.PartitionHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Project{}, fmt.Errorf("read project: %w", err)
	}
	return p, nil
}

// ListProjects returns every project in creation order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, duration, created_seq, partition_hash
		FROM projects
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Duration, &p.CreatedSeq, &p.PartitionHash); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// UpdateDuration records a corrected authoritative duration.
func (s *Store) UpdateDuration(ctx context.Context, id string, duration float64) error {
	if duration < 0 {
		return fmt.Errorf("update duration: negative duration %g", duration)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET duration = ? WHERE id = ?`, duration, id)
	if err != nil {
		return fmt.Errorf("update duration: %w", err)
	}
	return requireAffected(res, id)
}

// DeleteProject removes a project with its segments and journal.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return nil
}

// projectExists reports an ErrNotFound error when id is unknown.
func projectExists(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup project: %w", err)
	}
	return nil
}
