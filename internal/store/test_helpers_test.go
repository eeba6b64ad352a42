package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore opens a migrated SQLite store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), DriverSQLite3, path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedTestData writes teamA{member1 10, member2 20} and
// teamB{member3 30, member4 40} with ids 1..2 and 1..4.
func seedTestData(t *testing.T, s *Store) {
	t.Helper()
	stmts := []string{
		"INSERT INTO team (team_id, name) VALUES (1, 'teamA'), (2, 'teamB')",
		`INSERT INTO member (member_id, username, age, team_id) VALUES
			(1, 'member1', 10, 1),
			(2, 'member2', 20, 1),
			(3, 'member3', 30, 2),
			(4, 'member4', 40, 2)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}
