package dsl

import (
	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/queryir"
)

// StringExpr is a string-valued expression, usually a column path.
type StringExpr struct {
	expr queryir.Expr
}

// StringPath references a text column of the table known by alias.
func StringPath(alias, column string) StringExpr {
	return StringExpr{expr: queryir.Column{Table: alias, Name: column}}
}

// Expr implements Expression.
func (s StringExpr) Expr() queryir.Expr { return s.expr }

// As names the expression in the select list.
func (s StringExpr) As(alias string) Operand {
	return Operand{expr: queryir.Aliased{Expr: s.expr, Alias: alias}}
}

// Eq matches v exactly. Text is NFC-normalized first.
func (s StringExpr) Eq(v string) queryir.Predicate {
	return equals(s.expr, ir.IRString(ir.NormalizeText(v)))
}

// EqIfSet is Eq when v is non-nil, and no predicate otherwise.
func (s StringExpr) EqIfSet(v *string) queryir.Predicate {
	if v == nil {
		return nil
	}
	return s.Eq(*v)
}

// EqExpr compares against another expression (e.g. a theta join).
func (s StringExpr) EqExpr(e Expression) queryir.Predicate {
	return compare(queryir.OpEq, s.expr, e.Expr())
}

// Ne excludes v.
func (s StringExpr) Ne(v string) queryir.Predicate {
	return compare(queryir.OpNe, s.expr, stringLit(v))
}

// In matches any of vs.
func (s StringExpr) In(vs ...string) queryir.Predicate {
	values := make([]queryir.Expr, 0, len(vs))
	for _, v := range vs {
		values = append(values, stringLit(v))
	}
	return queryir.In{Expr: s.expr, Values: values}
}

// Like matches a SQL LIKE pattern.
func (s StringExpr) Like(pattern string) queryir.Predicate {
	return queryir.Like{Expr: s.expr, Pattern: stringLit(pattern)}
}

// StartsWith matches values with the given prefix.
func (s StringExpr) StartsWith(prefix string) queryir.Predicate {
	return s.Like(prefix + "%")
}

// Contains matches values containing sub.
func (s StringExpr) Contains(sub string) queryir.Predicate {
	return s.Like("%" + sub + "%")
}

// IsNull matches NULL.
func (s StringExpr) IsNull() queryir.Predicate {
	return queryir.IsNull{Expr: s.expr}
}

// IsNotNull matches non-NULL.
func (s StringExpr) IsNotNull() queryir.Predicate {
	return queryir.IsNull{Expr: s.expr, Negate: true}
}

// Lower applies lower().
func (s StringExpr) Lower() StringExpr {
	return StringExpr{expr: queryir.Func{Name: "lower", Args: []queryir.Expr{s.expr}}}
}

// Upper applies upper().
func (s StringExpr) Upper() StringExpr {
	return StringExpr{expr: queryir.Func{Name: "upper", Args: []queryir.Expr{s.expr}}}
}

// Concat appends parts with ||. Parts that are not Expressions are bound as
// constants.
func (s StringExpr) Concat(parts ...any) StringExpr {
	exprs := append([]queryir.Expr{s.expr}, operands(parts)...)
	return StringExpr{expr: queryir.Concat{Parts: exprs}}
}

// Asc orders ascending.
func (s StringExpr) Asc() OrderSpec {
	return OrderSpec{Expr: s.expr}
}

// Desc orders descending.
func (s StringExpr) Desc() OrderSpec {
	return OrderSpec{Expr: s.expr, Desc: true}
}

func stringLit(v string) queryir.Expr {
	return queryir.Literal{Value: ir.IRString(ir.NormalizeText(v))}
}
