package dsl

import (
	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/queryir"
)

// Expression is anything that can appear in a select list, a comparison or
// an assignment.
type Expression interface {
	Expr() queryir.Expr
}

// Operand is an untyped expression: a constant, a function call, a CASE or
// a scalar subquery.
type Operand struct {
	expr queryir.Expr
}

// Expr implements Expression.
func (o Operand) Expr() queryir.Expr { return o.expr }

// As names the expression in the select list.
func (o Operand) As(alias string) Operand {
	return Operand{expr: queryir.Aliased{Expr: o.expr, Alias: alias}}
}

// Constant wraps a Go literal. Floats and other types ir.FromGo rejects
// panic, like regexp.MustCompile on a bad pattern.
func Constant(v any) Operand {
	return Operand{expr: queryir.Literal{Value: ir.MustFromGo(v)}}
}

// Func calls a scalar SQL function. Arguments that are not Expressions are
// bound as constants.
func Func(name string, args ...any) Operand {
	return Operand{expr: queryir.Func{Name: name, Args: operands(args)}}
}

// StringFunc calls a scalar SQL function that yields a string.
func StringFunc(name string, args ...any) StringExpr {
	return StringExpr{expr: queryir.Func{Name: name, Args: operands(args)}}
}

// Sub turns a select into a scalar subquery.
func Sub(b *SelectBuilder) Operand {
	return Operand{expr: queryir.Subquery{Select: b.Build()}}
}

// Count counts rows.
func Count() NumberExpr {
	return NumberExpr{expr: queryir.Aggregate{Func: queryir.AggCount}}
}

func operand(v any) queryir.Expr {
	if e, ok := v.(Expression); ok {
		return e.Expr()
	}
	return queryir.Literal{Value: ir.MustFromGo(v)}
}

func operands(vs []any) []queryir.Expr {
	out := make([]queryir.Expr, 0, len(vs))
	for _, v := range vs {
		out = append(out, operand(v))
	}
	return out
}

func compare(op queryir.CompareOp, left queryir.Expr, right queryir.Expr) queryir.Predicate {
	return queryir.Compare{Op: op, Left: left, Right: right}
}

// equals uses the field shorthand when the left side is a plain column.
func equals(left queryir.Expr, v ir.IRValue) queryir.Predicate {
	if col, ok := left.(queryir.Column); ok {
		field := col.Name
		if col.Table != "" {
			field = col.Table + "." + col.Name
		}
		return queryir.Equals{Field: field, Value: v}
	}
	return compare(queryir.OpEq, left, queryir.Literal{Value: v})
}

// OrderSpec is one ORDER BY term.
type OrderSpec queryir.Order

// NullsFirst places NULLs before every other value.
func (o OrderSpec) NullsFirst() OrderSpec {
	o.Nulls = queryir.NullsFirst
	return o
}

// NullsLast places NULLs after every other value.
func (o OrderSpec) NullsLast() OrderSpec {
	o.Nulls = queryir.NullsLast
	return o
}

// Asc orders by any expression ascending.
func Asc(e Expression) OrderSpec {
	return OrderSpec{Expr: e.Expr()}
}

// Desc orders by any expression descending.
func Desc(e Expression) OrderSpec {
	return OrderSpec{Expr: e.Expr(), Desc: true}
}
