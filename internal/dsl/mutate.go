package dsl

import "github.com/roach88/qdsl/internal/queryir"

// assignment targets a column expression. Anything other than a plain
// column yields an empty column name, which validation rejects.
func assignment(target Expression, value any) queryir.Assignment {
	var name string
	if col, ok := target.Expr().(queryir.Column); ok {
		name = col.Name
	}
	return queryir.Assignment{Column: name, Value: operand(value)}
}

// UpdateBuilder assembles a bulk UPDATE.
type UpdateBuilder struct {
	upd     queryir.Update
	filters []queryir.Predicate
}

// Update starts a bulk update of src.
func Update(src Source) *UpdateBuilder {
	return &UpdateBuilder{upd: queryir.Update{Table: src.Table()}}
}

// Set assigns value (an Expression or a constant) to the target column.
func (b *UpdateBuilder) Set(target Expression, value any) *UpdateBuilder {
	b.upd.Set = append(b.upd.Set, assignment(target, value))
	return b
}

// Where restricts the rows touched, skipping nil predicates.
func (b *UpdateBuilder) Where(preds ...queryir.Predicate) *UpdateBuilder {
	b.filters = append(b.filters, compact(preds)...)
	return b
}

// Build returns the update statement.
func (b *UpdateBuilder) Build() queryir.Update {
	upd := b.upd
	upd.Set = append([]queryir.Assignment(nil), b.upd.Set...)
	if len(b.filters) > 0 {
		upd.Filter = AllOf(b.filters...)
	}
	return upd
}

// DeleteBuilder assembles a bulk DELETE.
type DeleteBuilder struct {
	del     queryir.Delete
	filters []queryir.Predicate
}

// DeleteFrom starts a bulk delete from src.
func DeleteFrom(src Source) *DeleteBuilder {
	return &DeleteBuilder{del: queryir.Delete{Table: src.Table()}}
}

// Where restricts the rows removed, skipping nil predicates.
func (b *DeleteBuilder) Where(preds ...queryir.Predicate) *DeleteBuilder {
	b.filters = append(b.filters, compact(preds)...)
	return b
}

// Build returns the delete statement.
func (b *DeleteBuilder) Build() queryir.Delete {
	del := b.del
	if len(b.filters) > 0 {
		del.Filter = AllOf(b.filters...)
	}
	return del
}

// InsertBuilder assembles a single-row INSERT.
type InsertBuilder struct {
	ins queryir.Insert
}

// InsertInto starts an insert into src.
func InsertInto(src Source) *InsertBuilder {
	return &InsertBuilder{ins: queryir.Insert{Table: src.Table()}}
}

// Value sets one column. A nil value inserts NULL.
func (b *InsertBuilder) Value(target Expression, value any) *InsertBuilder {
	b.ins.Values = append(b.ins.Values, assignment(target, value))
	return b
}

// Returning requests generated columns back from the database.
func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.ins.Returning = append(b.ins.Returning, columns...)
	return b
}

// Build returns the insert statement.
func (b *InsertBuilder) Build() queryir.Insert {
	ins := b.ins
	ins.Values = append([]queryir.Assignment(nil), b.ins.Values...)
	ins.Returning = append([]string(nil), b.ins.Returning...)
	return ins
}
