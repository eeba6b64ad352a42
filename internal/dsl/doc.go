// Package dsl provides fluent builders that produce QueryIR.
//
// Typed expressions (StringExpr, NumberExpr) expose comparison, arithmetic,
// aggregate and ordering methods, so a query reads close to the SQL it
// compiles to:
//
//	m := member.NewQMember("m")
//	t := member.NewQTeam("t")
//	sel := dsl.Select(m.Username, m.Age).
//		From(m).
//		LeftJoin(t).On(m.TeamID.EqExpr(t.ID)).
//		Where(m.Username.EqIfSet(cond.Username), m.Age.GoeIfSet(cond.AgeGoe)).
//		OrderBy(m.ID.Asc()).
//		Build()
//
// The *IfSet variants return a nil predicate for a nil input, and every
// place that accepts predicates (Where, Having, On, AllOf, BooleanBuilder)
// skips nils. A search whose inputs are all absent therefore has no filter.
//
// Builders hold no shared state. Create one per query.
package dsl
