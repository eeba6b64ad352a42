package dsl

import "github.com/roach88/qdsl/internal/queryir"

// CaseBuilder builds a searched CASE:
//
//	dsl.Case().
//		When(m.Age.Between(0, 20)).Then("0~20").
//		When(m.Age.Between(21, 30)).Then("21~30").
//		Otherwise("other")
type CaseBuilder struct {
	whens []queryir.When
	cond  queryir.Predicate
}

// Case starts a searched CASE.
func Case() *CaseBuilder {
	return &CaseBuilder{}
}

// When adds a condition; the next Then supplies its result.
func (b *CaseBuilder) When(cond queryir.Predicate) *CaseBuilder {
	b.cond = cond
	return b
}

// Then sets the result for the pending When. Non-Expressions are constants.
func (b *CaseBuilder) Then(v any) *CaseBuilder {
	b.whens = append(b.whens, queryir.When{Cond: b.cond, Then: operand(v)})
	b.cond = nil
	return b
}

// Otherwise closes the CASE with a fallback value.
func (b *CaseBuilder) Otherwise(v any) Operand {
	return Operand{expr: queryir.SearchedCase{Whens: b.whens, Else: operand(v)}}
}

// End closes the CASE with a NULL fallback.
func (b *CaseBuilder) End() Operand {
	return Operand{expr: queryir.SearchedCase{Whens: b.whens}}
}

// SimpleCaseBuilder builds "CASE operand WHEN v THEN r ... END", started by
// NumberExpr.When.
type SimpleCaseBuilder struct {
	operand queryir.Expr
	whens   []queryir.WhenValue
	match   queryir.Expr
}

// When adds another match value.
func (b *SimpleCaseBuilder) When(v any) *SimpleCaseBuilder {
	b.match = operand(v)
	return b
}

// Then sets the result for the pending match.
func (b *SimpleCaseBuilder) Then(v any) *SimpleCaseBuilder {
	b.whens = append(b.whens, queryir.WhenValue{Match: b.match, Then: operand(v)})
	b.match = nil
	return b
}

// Otherwise closes the CASE with a fallback value.
func (b *SimpleCaseBuilder) Otherwise(v any) Operand {
	return Operand{expr: queryir.SimpleCase{Operand: b.operand, Whens: b.whens, Else: operand(v)}}
}
