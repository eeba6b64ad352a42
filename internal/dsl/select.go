package dsl

import "github.com/roach88/qdsl/internal/queryir"

// Source is a table reference with a known column set: the typed entity
// paths (member.QMember, member.QTeam) implement it.
type Source interface {
	Table() queryir.Table
	Columns() []string
}

func allColumns(src Source) []queryir.Expr {
	ref := src.Table().Ref()
	cols := src.Columns()
	out := make([]queryir.Expr, 0, len(cols))
	for _, c := range cols {
		out = append(out, queryir.Column{Table: ref, Name: c})
	}
	return out
}

// SelectBuilder assembles a queryir.Select. Builders are plain values: each
// query gets its own, and nothing is shared between queries.
type SelectBuilder struct {
	sel      queryir.Select
	filters  []queryir.Predicate
	having   []queryir.Predicate
	lastJoin Source
}

// Select starts a select with an explicit projection.
func Select(exprs ...Expression) *SelectBuilder {
	b := &SelectBuilder{}
	for _, e := range exprs {
		b.sel.Projection = append(b.sel.Projection, e.Expr())
	}
	return b
}

// SelectFrom selects every column of src.
func SelectFrom(src Source) *SelectBuilder {
	b := &SelectBuilder{}
	b.sel.Projection = allColumns(src)
	b.sel.From = src.Table()
	return b
}

// From sets the primary table. Additional sources form a cross product;
// relate them in Where (a theta join).
func (b *SelectBuilder) From(src Source, more ...Source) *SelectBuilder {
	b.sel.From = src.Table()
	for _, s := range more {
		b.sel.Sources = append(b.sel.Sources, s.Table())
	}
	return b
}

// Distinct removes duplicate result rows.
func (b *SelectBuilder) Distinct() *SelectBuilder {
	b.sel.Distinct = true
	return b
}

// Join starts an inner join; finish it with On.
func (b *SelectBuilder) Join(target Source) *JoinBuilder {
	return &JoinBuilder{parent: b, kind: queryir.InnerJoin, target: target}
}

// LeftJoin starts a left outer join; finish it with On.
func (b *SelectBuilder) LeftJoin(target Source) *JoinBuilder {
	return &JoinBuilder{parent: b, kind: queryir.LeftJoin, target: target}
}

// FetchJoin loads the most recently joined table along with the root row.
// Its columns are projected as "<table>.<column>", which scanners map onto
// a nested struct tagged with the table name.
func (b *SelectBuilder) FetchJoin() *SelectBuilder {
	if b.lastJoin == nil {
		return b
	}
	target := b.lastJoin.Table()
	for _, c := range b.lastJoin.Columns() {
		b.sel.Projection = append(b.sel.Projection, queryir.Aliased{
			Expr:  queryir.Column{Table: target.Ref(), Name: c},
			Alias: target.Name + "." + c,
		})
	}
	return b
}

// Where adds filter predicates. Nil predicates are skipped and repeated
// calls conjoin.
func (b *SelectBuilder) Where(preds ...queryir.Predicate) *SelectBuilder {
	b.filters = append(b.filters, compact(preds)...)
	return b
}

// GroupBy sets the grouping expressions.
func (b *SelectBuilder) GroupBy(exprs ...Expression) *SelectBuilder {
	for _, e := range exprs {
		b.sel.GroupBy = append(b.sel.GroupBy, e.Expr())
	}
	return b
}

// Having adds group filters, skipping nils.
func (b *SelectBuilder) Having(preds ...queryir.Predicate) *SelectBuilder {
	b.having = append(b.having, compact(preds)...)
	return b
}

// OrderBy appends ordering terms.
func (b *SelectBuilder) OrderBy(orders ...OrderSpec) *SelectBuilder {
	for _, o := range orders {
		b.sel.OrderBy = append(b.sel.OrderBy, queryir.Order(o))
	}
	return b
}

// Offset skips n rows.
func (b *SelectBuilder) Offset(n int64) *SelectBuilder {
	b.sel.Offset = n
	return b
}

// Limit caps the result at n rows; 0 means unbounded.
func (b *SelectBuilder) Limit(n int64) *SelectBuilder {
	b.sel.Limit = n
	return b
}

// Build returns the assembled select. The builder can keep being used;
// later changes do not affect selects already built.
func (b *SelectBuilder) Build() queryir.Select {
	sel := b.sel
	sel.Projection = append([]queryir.Expr(nil), b.sel.Projection...)
	sel.Sources = append([]queryir.Table(nil), b.sel.Sources...)
	sel.Joins = append([]queryir.Join(nil), b.sel.Joins...)
	sel.GroupBy = append([]queryir.Expr(nil), b.sel.GroupBy...)
	sel.OrderBy = append([]queryir.Order(nil), b.sel.OrderBy...)
	if len(b.filters) > 0 {
		sel.Filter = AllOf(b.filters...)
	}
	if len(b.having) > 0 {
		sel.Having = AllOf(b.having...)
	}
	return sel
}

// Expr lets a builder stand in for a scalar subquery.
func (b *SelectBuilder) Expr() queryir.Expr {
	return queryir.Subquery{Select: b.Build()}
}

// JoinBuilder is a pending join awaiting its ON predicate.
type JoinBuilder struct {
	parent *SelectBuilder
	kind   queryir.JoinKind
	target Source
}

// On completes the join. Several predicates are conjoined, so a join can
// both relate the tables and filter the joined side.
func (j *JoinBuilder) On(preds ...queryir.Predicate) *SelectBuilder {
	j.parent.sel.Joins = append(j.parent.sel.Joins, queryir.Join{
		Kind:   j.kind,
		Target: j.target.Table(),
		On:     AllOf(preds...),
	})
	j.parent.lastJoin = j.target
	return j.parent
}
