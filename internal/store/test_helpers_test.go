package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh database under t.TempDir().
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreateProject creates a 10-second project with the given ID.
func mustCreateProject(t *testing.T, s *Store, id string) Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), id, "clip "+id, 10)
	if err != nil {
		t.Fatalf("CreateProject(%q) failed: %v", id, err)
	}
	return p
}
