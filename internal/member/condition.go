package member

import (
	"github.com/roach88/qdsl/internal/dsl"
	"github.com/roach88/qdsl/internal/queryir"
)

// SearchCondition is the optional filter set of a member search.
// A nil field is unset and places no constraint.
type SearchCondition struct {
	Username *string
	TeamName *string
	AgeGoe   *int
	AgeLoe   *int
}

// IsEmpty reports whether no field is set.
func (c SearchCondition) IsEmpty() bool {
	return c.Username == nil && c.TeamName == nil && c.AgeGoe == nil && c.AgeLoe == nil
}

// SearchPredicate conjoins one predicate per set field:
//
//	m.username = ?   (Username)
//	t.name = ?       (TeamName)
//	m.age >= ?       (AgeGoe)
//	m.age <= ?       (AgeLoe)
//
// The team predicate refers to alias t, so the query must join the team
// table as QTeams. With no field set the result is an empty And, which
// matches every row.
func SearchPredicate(cond SearchCondition) queryir.Predicate {
	return dsl.AllOf(
		usernameEq(cond.Username),
		teamNameEq(cond.TeamName),
		ageGoe(cond.AgeGoe),
		ageLoe(cond.AgeLoe),
	)
}

func usernameEq(username *string) queryir.Predicate {
	return QMembers.Username.EqIfSet(username)
}

func teamNameEq(teamName *string) queryir.Predicate {
	return QTeams.Name.EqIfSet(teamName)
}

func ageGoe(age *int) queryir.Predicate {
	return QMembers.Age.GoeIfSet(age)
}

func ageLoe(age *int) queryir.Predicate {
	return QMembers.Age.LoeIfSet(age)
}
