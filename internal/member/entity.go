package member

import (
	"database/sql"

	"github.com/roach88/qdsl/internal/dsl"
	"github.com/roach88/qdsl/internal/queryir"
)

// Team is a row of the team table. It holds no member collection; a team's
// members are always read with Repository.TeamMembers.
type Team struct {
	ID   int64  `db:"team_id"`
	Name string `db:"name"`
}

// Member is a row of the member table. Team is populated only by queries
// that fetch-join the team (Repository.FindWithTeam).
type Member struct {
	ID       int64          `db:"member_id"`
	Username sql.NullString `db:"username"`
	Age      int            `db:"age"`
	TeamID   sql.NullInt64  `db:"team_id"`
	Team     *Team          `db:"team"`
}

// QTeam is the typed path set for the team table under one alias.
type QTeam struct {
	alias string

	ID   dsl.NumberExpr
	Name dsl.StringExpr
}

// NewQTeam returns team paths qualified by alias.
func NewQTeam(alias string) QTeam {
	return QTeam{
		alias: alias,
		ID:    dsl.NumberPath(alias, "team_id"),
		Name:  dsl.StringPath(alias, "name"),
	}
}

// Table implements dsl.Source.
func (q QTeam) Table() queryir.Table {
	return queryir.Table{Name: "team", Alias: q.alias, Key: "team_id"}
}

// Columns implements dsl.Source.
func (q QTeam) Columns() []string {
	return []string{"team_id", "name"}
}

// QMember is the typed path set for the member table under one alias.
// Use a second alias (NewQMember("ms")) for subqueries over member.
type QMember struct {
	alias string

	ID       dsl.NumberExpr
	Username dsl.StringExpr
	Age      dsl.NumberExpr
	TeamID   dsl.NumberExpr
}

// NewQMember returns member paths qualified by alias.
func NewQMember(alias string) QMember {
	return QMember{
		alias:    alias,
		ID:       dsl.NumberPath(alias, "member_id"),
		Username: dsl.StringPath(alias, "username"),
		Age:      dsl.NumberPath(alias, "age"),
		TeamID:   dsl.NumberPath(alias, "team_id"),
	}
}

// Table implements dsl.Source.
func (q QMember) Table() queryir.Table {
	return queryir.Table{Name: "member", Alias: q.alias, Key: "member_id"}
}

// Columns implements dsl.Source.
func (q QMember) Columns() []string {
	return []string{"member_id", "username", "age", "team_id"}
}

// Default paths used by the repository.
var (
	QMembers = NewQMember("m")
	QTeams   = NewQTeam("t")
)
