package member

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/qdsl/internal/store"
)

// createTestRepository opens a fresh store and writes the standard data:
// teamA{member1 10, member2 20} and teamB{member3 30, member4 40}.
func createTestRepository(t *testing.T) (*Repository, *store.Store) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, store.DriverSQLite3, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	repo := NewRepository(st)
	teamA, err := repo.SaveTeam(ctx, "teamA")
	require.NoError(t, err)
	teamB, err := repo.SaveTeam(ctx, "teamB")
	require.NoError(t, err)

	for _, m := range []Member{
		NewMember("member1", 10, teamA.ID),
		NewMember("member2", 20, teamA.ID),
		NewMember("member3", 30, teamB.ID),
		NewMember("member4", 40, teamB.ID),
	} {
		_, err := repo.SaveMember(ctx, m)
		require.NoError(t, err)
	}
	return repo, st
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func dtoNames(rows []MemberTeamDto) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Username.String
	}
	return out
}

func memberNames(rows []Member) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Username.String
	}
	return out
}
