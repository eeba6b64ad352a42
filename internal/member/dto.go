package member

import "database/sql"

// MemberDto projects a member's username and age.
type MemberDto struct {
	Username sql.NullString `db:"username"`
	Age      int            `db:"age"`
}

// UserDto projects a member under different column names.
type UserDto struct {
	Name sql.NullString `db:"name"`
	Age  int            `db:"age"`
}

// MemberTeamDto is one search result row: a member and its team, if any.
type MemberTeamDto struct {
	MemberID int64          `db:"member_id"`
	Username sql.NullString `db:"username"`
	Age      int            `db:"age"`
	TeamID   sql.NullInt64  `db:"team_id"`
	TeamName sql.NullString `db:"team_name"`
}

// TeamAgeStat is the average member age of one team.
type TeamAgeStat struct {
	TeamName string  `db:"team_name"`
	AvgAge   float64 `db:"avg_age"`
}

// AgeSummary aggregates member ages. Every field is 0 when there are no
// members.
type AgeSummary struct {
	Count int64
	Sum   int64
	Avg   float64
	Max   int64
	Min   int64
}

// Pageable selects one page of results.
type Pageable struct {
	Offset int64
	Limit  int64 // 0 = unbounded
}

// Page is one page of results plus the total across all pages.
type Page[T any] struct {
	Content []T
	Total   int64
	Offset  int64
	Limit   int64
}

// HasNext reports whether rows exist past this page.
func (p Page[T]) HasNext() bool {
	return p.Offset+int64(len(p.Content)) < p.Total
}
