// Package queryir provides an abstract query intermediate representation (IR)
// for qdsl's query builders.
//
// QueryIR is the boundary between the builder layer (package dsl and the
// typed entity paths) and backend compilers. Builders never produce SQL
// text; they produce IR values, and a backend compiler turns IR into a
// parameterized statement for one database dialect.
//
// ARCHITECTURE:
//
//	[typed paths / dsl builders] → [Query IR] → [querysql: SQLite]
//	                                          → [querysql: Postgres]
//
// STATEMENTS:
//
//   - Select(projection, from, sources, joins, filter, group by, having,
//     order by, offset, limit)
//   - Insert(table, values, returning)
//   - Update(table, set, filter) and Delete(table, filter) - bulk operations
//     that touch rows without loading them
//
// EXPRESSIONS AND PREDICATES:
//
// Expressions cover columns, literals, aggregates, arithmetic, concat,
// function calls, casts, searched and simple CASE, scalar subqueries and
// select-list aliases. Predicates cover comparisons, AND/OR/NOT, IS NULL,
// IN (list or subquery), BETWEEN and LIKE.
//
// Literals are ir.IRValue values, so floats never reach a statement and every
// value is bound as a parameter.
//
// SEALED INTERFACES:
//
// Query, Expr and Predicate are sealed interfaces using the marker method
// pattern. Only types in this package can implement them.
//
// This enables:
//   - Exhaustive type switches in backends
//   - Compile-time safety against external extensions
//   - Clear contract for backend implementers
//
// Example:
//
//	switch q := query.(type) {
//	case Select:
//	    // Handle select
//	case Update:
//	    // Handle bulk update
//	default:
//	    // Unknown - report an error
//	}
//
// DYNAMIC FILTERS:
//
// An empty And is vacuously true. Dynamic search code composes only the
// clauses whose inputs are present, so a search with no inputs yields an
// empty And and selects every row.
package queryir
