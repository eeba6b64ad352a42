package queryir

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult contains the structural problems found in a query.
//
// A query with problems cannot be compiled: every backend compiler runs
// Validate first and refuses invalid input.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists each structural defect in traversal order.
	Problems []string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdent reports whether s is a plain SQL identifier.
// Table names, aliases, columns and function names must all be identifiers
// because compilers emit them verbatim.
func IsIdent(s string) bool {
	return identPattern.MatchString(s)
}

// Validate checks a query for structural problems.
//
// Rules:
//  1. Table names, aliases, columns and function names are identifiers
//  2. Qualified columns reference a table in scope (subqueries see
//     enclosing tables; nothing else leaks between statements)
//  3. Projections are explicit and joins carry an ON predicate
//  4. HAVING requires GROUP BY; Offset and Limit are non-negative
//  5. Update sets at least one column; Insert provides at least one value
//  6. Operators, aggregates and cast types are known; nil nodes are rejected
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// Err returns nil when the result is valid, or an error listing the problems.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid query: %s", strings.Join(r.Problems, "; "))
}

// scope holds the table references visible at a point in the statement.
type scope map[string]bool

func (s scope) with(tables ...Table) scope {
	next := make(scope, len(s)+len(tables))
	for k := range s {
		next[k] = true
	}
	for _, t := range tables {
		next[t.Ref()] = true
	}
	return next
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query, scope{})
	case *Select:
		if query == nil {
			v.addProblem("nil query")
			return
		}
		v.validateSelect(*query, scope{})
	case Insert:
		v.validateInsert(query)
	case *Insert:
		v.validateInsert(*query)
	case Update:
		v.validateUpdate(query)
	case *Update:
		v.validateUpdate(*query)
	case Delete:
		v.validateDelete(query)
	case *Delete:
		v.validateDelete(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateTable(t Table) {
	if !IsIdent(t.Name) {
		v.addProblem("invalid table name %q", t.Name)
	}
	if t.Alias != "" && !IsIdent(t.Alias) {
		v.addProblem("invalid alias %q for table %q", t.Alias, t.Name)
	}
	if t.Key != "" && !IsIdent(t.Key) {
		v.addProblem("invalid key column %q for table %q", t.Key, t.Name)
	}
}

func (v *validator) validateSelect(sel Select, outer scope) {
	v.validateTable(sel.From)
	tables := []Table{sel.From}
	tables = append(tables, sel.Sources...)
	for _, src := range sel.Sources {
		v.validateTable(src)
	}
	for _, j := range sel.Joins {
		v.validateTable(j.Target)
		tables = append(tables, j.Target)
	}

	seen := map[string]bool{}
	for _, t := range tables {
		if seen[t.Ref()] {
			v.addProblem("duplicate table reference %q", t.Ref())
		}
		seen[t.Ref()] = true
	}

	sc := outer.with(tables...)

	if len(sel.Projection) == 0 {
		v.addProblem("empty projection (SELECT *) - select explicit columns")
	}
	for _, e := range sel.Projection {
		v.validateExpr(e, sc)
	}

	for _, j := range sel.Joins {
		if j.On == nil {
			v.addProblem("%s %s has no ON predicate", j.Kind, j.Target.Ref())
			continue
		}
		v.validatePredicate(j.On, sc)
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter, sc)
	}
	for _, e := range sel.GroupBy {
		v.validateExpr(e, sc)
	}
	if sel.Having != nil {
		if len(sel.GroupBy) == 0 {
			v.addProblem("HAVING without GROUP BY")
		}
		v.validatePredicate(sel.Having, sc)
	}
	for _, o := range sel.OrderBy {
		v.validateExpr(o.Expr, sc)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}
	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}
}

func (v *validator) validateInsert(ins Insert) {
	v.validateTable(ins.Table)
	if len(ins.Values) == 0 {
		v.addProblem("insert into %s has no values", ins.Table.Name)
	}
	// VALUES cannot reference the target row.
	for _, a := range ins.Values {
		v.validateAssignment(a, scope{})
	}
	for _, c := range ins.Returning {
		if !IsIdent(c) {
			v.addProblem("invalid returning column %q", c)
		}
	}
}

func (v *validator) validateUpdate(upd Update) {
	v.validateTable(upd.Table)
	sc := scope{}.with(upd.Table)
	if len(upd.Set) == 0 {
		v.addProblem("update of %s sets no columns", upd.Table.Name)
	}
	for _, a := range upd.Set {
		v.validateAssignment(a, sc)
	}
	if upd.Filter != nil {
		v.validatePredicate(upd.Filter, sc)
	}
}

func (v *validator) validateDelete(del Delete) {
	v.validateTable(del.Table)
	if del.Filter != nil {
		v.validatePredicate(del.Filter, scope{}.with(del.Table))
	}
}

func (v *validator) validateAssignment(a Assignment, sc scope) {
	if !IsIdent(a.Column) {
		v.addProblem("invalid assignment column %q", a.Column)
	}
	v.validateExpr(a.Value, sc)
}

func (v *validator) validateColumnRef(table, name string, sc scope) {
	if !IsIdent(name) {
		v.addProblem("invalid column name %q", name)
	}
	if table == "" {
		return
	}
	if !IsIdent(table) {
		v.addProblem("invalid table reference %q", table)
		return
	}
	if !sc[table] {
		v.addProblem("column %s.%s references unknown table %q", table, name, table)
	}
}

func (v *validator) validateExpr(e Expr, sc scope) {
	switch ex := e.(type) {
	case nil:
		v.addProblem("nil expression")
	case Column:
		v.validateColumnRef(ex.Table, ex.Name, sc)
	case Literal:
		if ex.Value == nil {
			v.addProblem("literal without value")
		}
	case Aggregate:
		switch ex.Func {
		case AggCount:
			if ex.Arg != nil {
				v.validateExpr(ex.Arg, sc)
			}
		case AggSum, AggAvg, AggMax, AggMin:
			v.validateExpr(ex.Arg, sc)
		default:
			v.addProblem("unknown aggregate %q", ex.Func)
		}
	case Arith:
		switch ex.Op {
		case OpAdd, OpSub, OpMul, OpDiv:
		default:
			v.addProblem("unknown arithmetic operator %q", ex.Op)
		}
		v.validateExpr(ex.Left, sc)
		v.validateExpr(ex.Right, sc)
	case Concat:
		if len(ex.Parts) == 0 {
			v.addProblem("empty concat")
		}
		for _, p := range ex.Parts {
			v.validateExpr(p, sc)
		}
	case Func:
		if !IsIdent(ex.Name) {
			v.addProblem("invalid function name %q", ex.Name)
		}
		for _, a := range ex.Args {
			v.validateExpr(a, sc)
		}
	case Cast:
		switch ex.Type {
		case CastText, CastInteger, CastReal:
		default:
			v.addProblem("unknown cast type %q", ex.Type)
		}
		v.validateExpr(ex.Expr, sc)
	case SearchedCase:
		if len(ex.Whens) == 0 {
			v.addProblem("CASE without WHEN")
		}
		for _, w := range ex.Whens {
			v.validatePredicate(w.Cond, sc)
			v.validateExpr(w.Then, sc)
		}
		if ex.Else != nil {
			v.validateExpr(ex.Else, sc)
		}
	case SimpleCase:
		v.validateExpr(ex.Operand, sc)
		if len(ex.Whens) == 0 {
			v.addProblem("CASE without WHEN")
		}
		for _, w := range ex.Whens {
			v.validateExpr(w.Match, sc)
			v.validateExpr(w.Then, sc)
		}
		if ex.Else != nil {
			v.validateExpr(ex.Else, sc)
		}
	case Subquery:
		v.validateSelect(ex.Select, sc)
	case Aliased:
		if !IsIdent(ex.Alias) && !isDottedIdent(ex.Alias) {
			v.addProblem("invalid alias %q", ex.Alias)
		}
		v.validateExpr(ex.Expr, sc)
	default:
		v.addProblem("unknown expression type: %T", e)
	}
}

func (v *validator) validatePredicate(p Predicate, sc scope) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate")
	case Equals:
		v.validateEquals(pred, sc)
	case *Equals:
		v.validateEquals(*pred, sc)
	case Compare:
		v.validateCompare(pred, sc)
	case *Compare:
		v.validateCompare(*pred, sc)
	case And:
		v.validatePredicates(pred.Predicates, sc)
	case *And:
		v.validatePredicates(pred.Predicates, sc)
	case Or:
		v.validatePredicates(pred.Predicates, sc)
	case *Or:
		v.validatePredicates(pred.Predicates, sc)
	case Not:
		v.validatePredicate(pred.Predicate, sc)
	case *Not:
		v.validatePredicate(pred.Predicate, sc)
	case IsNull:
		v.validateExpr(pred.Expr, sc)
	case *IsNull:
		v.validateExpr(pred.Expr, sc)
	case In:
		v.validateIn(pred, sc)
	case *In:
		v.validateIn(*pred, sc)
	case Between:
		v.validateExpr(pred.Expr, sc)
		v.validateExpr(pred.Low, sc)
		v.validateExpr(pred.High, sc)
	case *Between:
		v.validatePredicate(*pred, sc)
	case Like:
		v.validateExpr(pred.Expr, sc)
		v.validateExpr(pred.Pattern, sc)
	case *Like:
		v.validatePredicate(*pred, sc)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validatePredicates(preds []Predicate, sc scope) {
	for _, sub := range preds {
		v.validatePredicate(sub, sc)
	}
}

func (v *validator) validateEquals(eq Equals, sc scope) {
	table, name := SplitField(eq.Field)
	v.validateColumnRef(table, name, sc)
	if eq.Value == nil {
		v.addProblem("field %q compared to nil value", eq.Field)
	}
}

func (v *validator) validateCompare(cmp Compare, sc scope) {
	switch cmp.Op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
	default:
		v.addProblem("unknown comparison operator %q", cmp.Op)
	}
	v.validateExpr(cmp.Left, sc)
	v.validateExpr(cmp.Right, sc)
}

func (v *validator) validateIn(in In, sc scope) {
	v.validateExpr(in.Expr, sc)
	switch {
	case in.Subquery != nil && len(in.Values) > 0:
		v.addProblem("IN has both a value list and a subquery")
	case in.Subquery != nil:
		v.validateSelect(*in.Subquery, sc)
	case len(in.Values) == 0:
		v.addProblem("IN with an empty value list")
	default:
		for _, e := range in.Values {
			v.validateExpr(e, sc)
		}
	}
}

// SplitField splits "t.name" into ("t", "name"); an unqualified field
// yields an empty table.
func SplitField(field string) (table, name string) {
	if i := strings.IndexByte(field, '.'); i >= 0 {
		return field[:i], field[i+1:]
	}
	return "", field
}

// isDottedIdent accepts "team.name"-style aliases, used to scan joined
// columns into nested structs.
func isDottedIdent(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if !IsIdent(p) {
			return false
		}
	}
	return true
}
