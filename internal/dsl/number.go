package dsl

import (
	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/queryir"
)

// NumberExpr is an integer-valued expression: a column path, arithmetic or
// an aggregate.
type NumberExpr struct {
	expr queryir.Expr
}

// NumberPath references an integer column of the table known by alias.
func NumberPath(alias, column string) NumberExpr {
	return NumberExpr{expr: queryir.Column{Table: alias, Name: column}}
}

// Expr implements Expression.
func (n NumberExpr) Expr() queryir.Expr { return n.expr }

// As names the expression in the select list.
func (n NumberExpr) As(alias string) Operand {
	return Operand{expr: queryir.Aliased{Expr: n.expr, Alias: alias}}
}

func (n NumberExpr) Eq(v int64) queryir.Predicate  { return equals(n.expr, ir.IRInt(v)) }
func (n NumberExpr) Ne(v int64) queryir.Predicate  { return compare(queryir.OpNe, n.expr, intLit(v)) }
func (n NumberExpr) Gt(v int64) queryir.Predicate  { return compare(queryir.OpGt, n.expr, intLit(v)) }
func (n NumberExpr) Goe(v int64) queryir.Predicate { return compare(queryir.OpGe, n.expr, intLit(v)) }
func (n NumberExpr) Lt(v int64) queryir.Predicate  { return compare(queryir.OpLt, n.expr, intLit(v)) }
func (n NumberExpr) Loe(v int64) queryir.Predicate { return compare(queryir.OpLe, n.expr, intLit(v)) }

// EqIfSet is Eq when v is non-nil, and no predicate otherwise.
func (n NumberExpr) EqIfSet(v *int) queryir.Predicate {
	if v == nil {
		return nil
	}
	return n.Eq(int64(*v))
}

// GoeIfSet is Goe when v is non-nil, and no predicate otherwise.
func (n NumberExpr) GoeIfSet(v *int) queryir.Predicate {
	if v == nil {
		return nil
	}
	return n.Goe(int64(*v))
}

// LoeIfSet is Loe when v is non-nil, and no predicate otherwise.
func (n NumberExpr) LoeIfSet(v *int) queryir.Predicate {
	if v == nil {
		return nil
	}
	return n.Loe(int64(*v))
}

// Between matches low <= n <= high.
func (n NumberExpr) Between(low, high int64) queryir.Predicate {
	return queryir.Between{Expr: n.expr, Low: intLit(low), High: intLit(high)}
}

// In matches any of vs.
func (n NumberExpr) In(vs ...int64) queryir.Predicate {
	values := make([]queryir.Expr, 0, len(vs))
	for _, v := range vs {
		values = append(values, intLit(v))
	}
	return queryir.In{Expr: n.expr, Values: values}
}

// InSub matches any row of the subquery.
func (n NumberExpr) InSub(sub *SelectBuilder) queryir.Predicate {
	sel := sub.Build()
	return queryir.In{Expr: n.expr, Subquery: &sel}
}

// EqSub compares with a scalar subquery.
func (n NumberExpr) EqSub(sub *SelectBuilder) queryir.Predicate {
	return compare(queryir.OpEq, n.expr, Sub(sub).Expr())
}

// GoeSub compares with a scalar subquery.
func (n NumberExpr) GoeSub(sub *SelectBuilder) queryir.Predicate {
	return compare(queryir.OpGe, n.expr, Sub(sub).Expr())
}

// EqExpr compares against another expression.
func (n NumberExpr) EqExpr(e Expression) queryir.Predicate {
	return compare(queryir.OpEq, n.expr, e.Expr())
}

// GtExpr compares against another expression.
func (n NumberExpr) GtExpr(e Expression) queryir.Predicate {
	return compare(queryir.OpGt, n.expr, e.Expr())
}

// IsNull matches NULL.
func (n NumberExpr) IsNull() queryir.Predicate {
	return queryir.IsNull{Expr: n.expr}
}

// IsNotNull matches non-NULL.
func (n NumberExpr) IsNotNull() queryir.Predicate {
	return queryir.IsNull{Expr: n.expr, Negate: true}
}

func (n NumberExpr) Add(v int64) NumberExpr      { return n.arith(queryir.OpAdd, v) }
func (n NumberExpr) Subtract(v int64) NumberExpr { return n.arith(queryir.OpSub, v) }
func (n NumberExpr) Multiply(v int64) NumberExpr { return n.arith(queryir.OpMul, v) }

func (n NumberExpr) arith(op queryir.ArithOp, v int64) NumberExpr {
	return NumberExpr{expr: queryir.Arith{Op: op, Left: n.expr, Right: intLit(v)}}
}

func (n NumberExpr) Sum() NumberExpr { return n.aggregate(queryir.AggSum) }
func (n NumberExpr) Avg() NumberExpr { return n.aggregate(queryir.AggAvg) }
func (n NumberExpr) Max() NumberExpr { return n.aggregate(queryir.AggMax) }
func (n NumberExpr) Min() NumberExpr { return n.aggregate(queryir.AggMin) }

// Count counts non-NULL values.
func (n NumberExpr) Count() NumberExpr { return n.aggregate(queryir.AggCount) }

func (n NumberExpr) aggregate(fn queryir.AggFunc) NumberExpr {
	return NumberExpr{expr: queryir.Aggregate{Func: fn, Arg: n.expr}}
}

// StringValue casts to text, e.g. for concatenation.
func (n NumberExpr) StringValue() StringExpr {
	return StringExpr{expr: queryir.Cast{Expr: n.expr, Type: queryir.CastText}}
}

// When starts a simple CASE on this expression.
func (n NumberExpr) When(v int64) *SimpleCaseBuilder {
	return &SimpleCaseBuilder{operand: n.expr, match: intLit(v)}
}

// Asc orders ascending.
func (n NumberExpr) Asc() OrderSpec {
	return OrderSpec{Expr: n.expr}
}

// Desc orders descending.
func (n NumberExpr) Desc() OrderSpec {
	return OrderSpec{Expr: n.expr, Desc: true}
}

func intLit(v int64) queryir.Expr {
	return queryir.Literal{Value: ir.IRInt(v)}
}
