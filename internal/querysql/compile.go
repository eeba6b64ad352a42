package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/queryir"
)

// Dialect selects the SQL flavor a compiler emits.
type Dialect int

const (
	// SQLite covers both the cgo (mattn) and pure-Go (modernc) drivers.
	SQLite Dialect = iota
	// Postgres targets lib/pq. Placeholders are still emitted as ?; the
	// store rebinds them to $n before execution.
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// SQLCompiler compiles QueryIR to parameterized SQL.
//
// CRITICAL: All values are parameterized (never interpolated). Parameters are
// returned in the order their placeholders appear in the SQL text.
// CRITICAL: Top-level non-aggregate selects always end in a deterministic
// ORDER BY: the caller's terms followed by each table's key.
type SQLCompiler struct {
	dialect Dialect
}

// Option configures a SQLCompiler.
type Option func(*SQLCompiler)

// WithDialect sets the target dialect. The default is SQLite.
func WithDialect(d Dialect) Option {
	return func(c *SQLCompiler) {
		c.dialect = d
	}
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler(opts ...Option) *SQLCompiler {
	c := &SQLCompiler{dialect: SQLite}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the compiler's target dialect.
func (c *SQLCompiler) Dialect() Dialect {
	return c.dialect
}

// CompileError reports a query rejected by validation.
type CompileError struct {
	Problems []string
}

func (e *CompileError) Error() string {
	return "invalid query: " + strings.Join(e.Problems, "; ")
}

func validate(q queryir.Query) error {
	if result := queryir.Validate(q); !result.Valid {
		return &CompileError{Problems: result.Problems}
	}
	return nil
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// The query is validated first; structural problems are reported as a
// *CompileError and nothing is emitted.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := validate(q); err != nil {
		return "", nil, fmt.Errorf("compile: %w", err)
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query, true)
	case *queryir.Select:
		return c.compileSelect(*query, true)
	case queryir.Insert:
		return c.compileInsert(query)
	case *queryir.Insert:
		return c.compileInsert(*query)
	case queryir.Update:
		return c.compileUpdate(query)
	case *queryir.Update:
		return c.compileUpdate(*query)
	case queryir.Delete:
		return c.compileDelete(query)
	case *queryir.Delete:
		return c.compileDelete(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// CompileCount compiles the row count of a select, ignoring its ordering
// and paging.
//
// Plain selects become SELECT COUNT(*) over the same FROM, joins and WHERE.
// Grouped or DISTINCT selects are wrapped in a derived table so that the
// count is the number of result rows, not the number of source rows.
func (c *SQLCompiler) CompileCount(q queryir.Query) (string, []any, error) {
	var sel queryir.Select
	switch query := q.(type) {
	case queryir.Select:
		sel = query
	case *queryir.Select:
		if query == nil {
			return "", nil, fmt.Errorf("compile count: nil query")
		}
		sel = *query
	default:
		return "", nil, fmt.Errorf("compile count: unsupported query type: %T", q)
	}
	if err := validate(sel); err != nil {
		return "", nil, fmt.Errorf("compile count: %w", err)
	}

	sel.OrderBy = nil
	sel.Offset = 0
	sel.Limit = 0

	if sel.Distinct || sel.Aggregated() {
		inner, params, err := c.compileSelect(sel, false)
		if err != nil {
			return "", nil, err
		}
		return "SELECT COUNT(*) FROM (" + inner + ") AS counted", params, nil
	}

	from, params, err := c.compileFrom(sel)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT COUNT(*) FROM " + from

	where, whereParams, err := c.compileWhere(sel.Filter)
	if err != nil {
		return "", nil, err
	}
	sql += where
	params = append(params, whereParams...)

	return sql, params, nil
}

// compileSelect compiles a queryir.Select to SQL.
// Only top-level selects get the deterministic ORDER BY tiebreaker.
func (c *SQLCompiler) compileSelect(q queryir.Select, topLevel bool) (string, []any, error) {
	var sb strings.Builder
	var params []any

	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}

	selectClause, selectParams, err := c.compileProjection(q.Projection)
	if err != nil {
		return "", nil, fmt.Errorf("compile projection: %w", err)
	}
	sb.WriteString(selectClause)
	params = append(params, selectParams...)

	from, fromParams, err := c.compileFrom(q)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(" FROM ")
	sb.WriteString(from)
	params = append(params, fromParams...)

	where, whereParams, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(where)
	params = append(params, whereParams...)

	if len(q.GroupBy) > 0 {
		groupSQL, groupParams, err := c.compileExprList(q.GroupBy)
		if err != nil {
			return "", nil, fmt.Errorf("compile group by: %w", err)
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(groupSQL)
		params = append(params, groupParams...)
	}

	if q.Having != nil {
		havingSQL, havingParams, err := c.compilePredicate(q.Having)
		if err != nil {
			return "", nil, fmt.Errorf("compile having: %w", err)
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(havingSQL)
		params = append(params, havingParams...)
	}

	orderSQL, orderParams, err := c.compileOrderBy(q, topLevel)
	if err != nil {
		return "", nil, fmt.Errorf("compile order by: %w", err)
	}
	sb.WriteString(orderSQL)
	params = append(params, orderParams...)

	sb.WriteString(c.compilePaging(q.Offset, q.Limit, &params))

	return sb.String(), params, nil
}

// compileProjection renders the select list. Aliased entries become
// "expr AS alias"; dotted aliases are quoted.
func (c *SQLCompiler) compileProjection(exprs []queryir.Expr) (string, []any, error) {
	parts := make([]string, 0, len(exprs))
	var params []any
	for _, e := range exprs {
		if aliased, ok := e.(queryir.Aliased); ok {
			sql, p, err := c.compileExpr(aliased.Expr)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql+" AS "+quoteIdent(aliased.Alias))
			params = append(params, p...)
			continue
		}
		sql, p, err := c.compileExpr(e)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, ", "), params, nil
}

// compileFrom renders the FROM list and joins.
func (c *SQLCompiler) compileFrom(q queryir.Select) (string, []any, error) {
	var sb strings.Builder
	var params []any

	sb.WriteString(tableSQL(q.From))
	for _, src := range q.Sources {
		sb.WriteString(", ")
		sb.WriteString(tableSQL(src))
	}

	for _, j := range q.Joins {
		onSQL, onParams, err := c.compilePredicate(j.On)
		if err != nil {
			return "", nil, fmt.Errorf("compile join %s: %w", j.Target.Ref(), err)
		}
		fmt.Fprintf(&sb, " %s %s ON %s", j.Kind, tableSQL(j.Target), onSQL)
		params = append(params, onParams...)
	}

	return sb.String(), params, nil
}

// compileWhere renders " WHERE ..." or nothing when the filter is nil or an
// empty And.
func (c *SQLCompiler) compileWhere(filter queryir.Predicate) (string, []any, error) {
	if isVacuous(filter) {
		return "", nil, nil
	}
	sql, params, err := c.compilePredicate(filter)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

// compileOrderBy renders the caller's terms followed by the tiebreaker.
//
// Tiebreakers, for top-level selects only:
//   - plain selects: each table's Key ascending
//   - grouped selects: each GROUP BY expression ascending
//   - DISTINCT selects: each projected column ascending
//   - ungrouped aggregates: none (one row)
//
// Terms already present are not repeated.
func (c *SQLCompiler) compileOrderBy(q queryir.Select, topLevel bool) (string, []any, error) {
	terms := make([]string, 0, len(q.OrderBy))
	seen := map[string]bool{}
	var params []any

	for _, o := range q.OrderBy {
		sql, p, err := c.compileExpr(o.Expr)
		if err != nil {
			return "", nil, err
		}
		seen[sql] = true
		terms = append(terms, sql+orderSuffix(o))
		params = append(params, p...)
	}

	if topLevel {
		for _, e := range c.tiebreakers(q) {
			sql, p, err := c.compileExpr(e)
			if err != nil {
				return "", nil, err
			}
			if seen[sql] {
				continue
			}
			seen[sql] = true
			terms = append(terms, sql+" ASC")
			params = append(params, p...)
		}
	}

	if len(terms) == 0 {
		return "", nil, nil
	}
	return " ORDER BY " + strings.Join(terms, ", "), params, nil
}

func (c *SQLCompiler) tiebreakers(q queryir.Select) []queryir.Expr {
	switch {
	case len(q.GroupBy) > 0:
		return q.GroupBy
	case q.Aggregated():
		return nil
	case q.Distinct:
		var cols []queryir.Expr
		for _, e := range q.Projection {
			if a, ok := e.(queryir.Aliased); ok {
				e = a.Expr
			}
			if col, ok := e.(queryir.Column); ok {
				cols = append(cols, col)
			}
		}
		return cols
	}

	tables := append([]queryir.Table{q.From}, q.Sources...)
	for _, j := range q.Joins {
		tables = append(tables, j.Target)
	}
	var keys []queryir.Expr
	for _, t := range tables {
		if t.Key != "" {
			keys = append(keys, queryir.Column{Table: t.Ref(), Name: t.Key})
		}
	}
	return keys
}

func orderSuffix(o queryir.Order) string {
	suffix := " ASC"
	if o.Desc {
		suffix = " DESC"
	}
	switch o.Nulls {
	case queryir.NullsFirst:
		suffix += " NULLS FIRST"
	case queryir.NullsLast:
		suffix += " NULLS LAST"
	}
	return suffix
}

// compilePaging renders LIMIT and OFFSET as parameters. SQLite cannot take
// OFFSET without LIMIT, so an unbounded limit is spelled LIMIT -1 there.
func (c *SQLCompiler) compilePaging(offset, limit int64, params *[]any) string {
	var sb strings.Builder
	switch {
	case limit > 0:
		sb.WriteString(" LIMIT ?")
		*params = append(*params, limit)
	case offset > 0 && c.dialect == SQLite:
		sb.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		sb.WriteString(" OFFSET ?")
		*params = append(*params, offset)
	}
	return sb.String()
}

// compileInsert compiles INSERT INTO t (cols) VALUES (...) [RETURNING ...].
func (c *SQLCompiler) compileInsert(q queryir.Insert) (string, []any, error) {
	cols := make([]string, 0, len(q.Values))
	vals := make([]string, 0, len(q.Values))
	var params []any
	for _, a := range q.Values {
		sql, p, err := c.compileExpr(a.Value)
		if err != nil {
			return "", nil, fmt.Errorf("compile value for %s: %w", a.Column, err)
		}
		cols = append(cols, a.Column)
		vals = append(vals, sql)
		params = append(params, p...)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q.Table.Name,
		strings.Join(cols, ", "),
		strings.Join(vals, ", "))
	if len(q.Returning) > 0 {
		sql += " RETURNING " + strings.Join(q.Returning, ", ")
	}
	return sql, params, nil
}

// compileUpdate compiles a bulk UPDATE. SET targets are unqualified; the
// table alias stays available to the value expressions and the filter.
func (c *SQLCompiler) compileUpdate(q queryir.Update) (string, []any, error) {
	sets := make([]string, 0, len(q.Set))
	var params []any
	for _, a := range q.Set {
		sql, p, err := c.compileExpr(a.Value)
		if err != nil {
			return "", nil, fmt.Errorf("compile set %s: %w", a.Column, err)
		}
		sets = append(sets, a.Column+" = "+sql)
		params = append(params, p...)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", tableSQL(q.Table), strings.Join(sets, ", "))

	where, whereParams, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}
	return sql + where, append(params, whereParams...), nil
}

// compileDelete compiles a bulk DELETE.
func (c *SQLCompiler) compileDelete(q queryir.Delete) (string, []any, error) {
	where, params, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + tableSQL(q.Table) + where, params, nil
}

// compilePredicate compiles a queryir.Predicate to a SQL boolean fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.Compare:
		return c.compileCompare(pred)
	case *queryir.Compare:
		return c.compileCompare(*pred)
	case queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case *queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	case *queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	case queryir.Not:
		return c.compileNot(pred)
	case *queryir.Not:
		return c.compileNot(*pred)
	case queryir.IsNull:
		return c.compileIsNull(pred)
	case *queryir.IsNull:
		return c.compileIsNull(*pred)
	case queryir.In:
		return c.compileIn(pred)
	case *queryir.In:
		return c.compileIn(*pred)
	case queryir.Between:
		return c.compileBetween(pred)
	case *queryir.Between:
		return c.compileBetween(*pred)
	case queryir.Like:
		return c.compileLike(pred)
	case *queryir.Like:
		return c.compileLike(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "field = ?".
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := ir.ToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value for %s: %w", eq.Field, err)
	}
	return eq.Field + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileCompare(cmp queryir.Compare) (string, []any, error) {
	left, leftParams, err := c.compileExpr(cmp.Left)
	if err != nil {
		return "", nil, err
	}
	right, rightParams, err := c.compileExpr(cmp.Right)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s %s", left, cmp.Op, right), append(leftParams, rightParams...), nil
}

// compileJunction joins predicates with AND or OR. Nested junctions with
// more than one member are parenthesized; an empty junction renders as its
// identity.
func (c *SQLCompiler) compileJunction(preds []queryir.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(preds))
	var params []any
	for _, pred := range preds {
		sql, p, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if needsParens(pred) {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, sep), params, nil
}

func (c *SQLCompiler) compileNot(not queryir.Not) (string, []any, error) {
	sql, params, err := c.compilePredicate(not.Predicate)
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", params, nil
}

func (c *SQLCompiler) compileIsNull(n queryir.IsNull) (string, []any, error) {
	sql, params, err := c.compileExpr(n.Expr)
	if err != nil {
		return "", nil, err
	}
	if n.Negate {
		return sql + " IS NOT NULL", params, nil
	}
	return sql + " IS NULL", params, nil
}

func (c *SQLCompiler) compileIn(in queryir.In) (string, []any, error) {
	sql, params, err := c.compileExpr(in.Expr)
	if err != nil {
		return "", nil, err
	}

	op := " IN "
	if in.Negate {
		op = " NOT IN "
	}

	if in.Subquery != nil {
		sub, subParams, err := c.compileSelect(*in.Subquery, false)
		if err != nil {
			return "", nil, fmt.Errorf("compile IN subquery: %w", err)
		}
		return sql + op + "(" + sub + ")", append(params, subParams...), nil
	}

	list, listParams, err := c.compileExprList(in.Values)
	if err != nil {
		return "", nil, err
	}
	return sql + op + "(" + list + ")", append(params, listParams...), nil
}

func (c *SQLCompiler) compileBetween(b queryir.Between) (string, []any, error) {
	sql, params, err := c.compileExpr(b.Expr)
	if err != nil {
		return "", nil, err
	}
	low, lowParams, err := c.compileExpr(b.Low)
	if err != nil {
		return "", nil, err
	}
	high, highParams, err := c.compileExpr(b.High)
	if err != nil {
		return "", nil, err
	}
	params = append(params, lowParams...)
	params = append(params, highParams...)
	return sql + " BETWEEN " + low + " AND " + high, params, nil
}

func (c *SQLCompiler) compileLike(l queryir.Like) (string, []any, error) {
	sql, params, err := c.compileExpr(l.Expr)
	if err != nil {
		return "", nil, err
	}
	pattern, patternParams, err := c.compileExpr(l.Pattern)
	if err != nil {
		return "", nil, err
	}
	return sql + " LIKE " + pattern, append(params, patternParams...), nil
}

// compileExpr compiles a value expression.
func (c *SQLCompiler) compileExpr(e queryir.Expr) (string, []any, error) {
	switch ex := e.(type) {
	case queryir.Column:
		if ex.Table == "" {
			return ex.Name, nil, nil
		}
		return ex.Table + "." + ex.Name, nil, nil

	case queryir.Literal:
		param, err := ir.ToParam(ex.Value)
		if err != nil {
			return "", nil, fmt.Errorf("convert literal: %w", err)
		}
		return "?", []any{param}, nil

	case queryir.Aggregate:
		if ex.Arg == nil {
			return string(ex.Func) + "(*)", nil, nil
		}
		arg, params, err := c.compileExpr(ex.Arg)
		if err != nil {
			return "", nil, err
		}
		return string(ex.Func) + "(" + arg + ")", params, nil

	case queryir.Arith:
		left, leftParams, err := c.compileOperand(ex.Left)
		if err != nil {
			return "", nil, err
		}
		right, rightParams, err := c.compileOperand(ex.Right)
		if err != nil {
			return "", nil, err
		}
		return left + " " + string(ex.Op) + " " + right, append(leftParams, rightParams...), nil

	case queryir.Concat:
		parts := make([]string, 0, len(ex.Parts))
		var params []any
		for _, part := range ex.Parts {
			sql, p, err := c.compileOperand(part)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, p...)
		}
		return strings.Join(parts, " || "), params, nil

	case queryir.Func:
		args, params, err := c.compileExprList(ex.Args)
		if err != nil {
			return "", nil, err
		}
		return ex.Name + "(" + args + ")", params, nil

	case queryir.Cast:
		sql, params, err := c.compileExpr(ex.Expr)
		if err != nil {
			return "", nil, err
		}
		return "CAST(" + sql + " AS " + ex.Type + ")", params, nil

	case queryir.SearchedCase:
		return c.compileSearchedCase(ex)

	case queryir.SimpleCase:
		return c.compileSimpleCase(ex)

	case queryir.Subquery:
		sql, params, err := c.compileSelect(ex.Select, false)
		if err != nil {
			return "", nil, fmt.Errorf("compile subquery: %w", err)
		}
		return "(" + sql + ")", params, nil

	case queryir.Aliased:
		// Outside the select list an alias is a reference to the named column.
		return quoteIdent(ex.Alias), nil, nil

	default:
		return "", nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

// compileOperand parenthesizes compound operands of arithmetic and concat.
func (c *SQLCompiler) compileOperand(e queryir.Expr) (string, []any, error) {
	sql, params, err := c.compileExpr(e)
	if err != nil {
		return "", nil, err
	}
	switch e.(type) {
	case queryir.Arith, queryir.Concat:
		return "(" + sql + ")", params, nil
	}
	return sql, params, nil
}

func (c *SQLCompiler) compileSearchedCase(sc queryir.SearchedCase) (string, []any, error) {
	var sb strings.Builder
	var params []any
	sb.WriteString("CASE")
	for _, w := range sc.Whens {
		cond, condParams, err := c.compilePredicate(w.Cond)
		if err != nil {
			return "", nil, err
		}
		then, thenParams, err := c.compileExpr(w.Then)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" WHEN " + cond + " THEN " + then)
		params = append(params, condParams...)
		params = append(params, thenParams...)
	}
	if sc.Else != nil {
		els, elseParams, err := c.compileExpr(sc.Else)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ELSE " + els)
		params = append(params, elseParams...)
	}
	sb.WriteString(" END")
	return sb.String(), params, nil
}

func (c *SQLCompiler) compileSimpleCase(sc queryir.SimpleCase) (string, []any, error) {
	operand, params, err := c.compileExpr(sc.Operand)
	if err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	sb.WriteString("CASE " + operand)
	for _, w := range sc.Whens {
		match, matchParams, err := c.compileExpr(w.Match)
		if err != nil {
			return "", nil, err
		}
		then, thenParams, err := c.compileExpr(w.Then)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" WHEN " + match + " THEN " + then)
		params = append(params, matchParams...)
		params = append(params, thenParams...)
	}
	if sc.Else != nil {
		els, elseParams, err := c.compileExpr(sc.Else)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ELSE " + els)
		params = append(params, elseParams...)
	}
	sb.WriteString(" END")
	return sb.String(), params, nil
}

func (c *SQLCompiler) compileExprList(exprs []queryir.Expr) (string, []any, error) {
	parts := make([]string, 0, len(exprs))
	var params []any
	for _, e := range exprs {
		sql, p, err := c.compileExpr(e)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, ", "), params, nil
}

// tableSQL renders "name" or "name AS alias".
func tableSQL(t queryir.Table) string {
	if t.Alias == "" || t.Alias == t.Name {
		return t.Name
	}
	return t.Name + " AS " + t.Alias
}

// quoteIdent double-quotes identifiers that are not plain (e.g. "team.name").
func quoteIdent(s string) string {
	if queryir.IsIdent(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// isVacuous reports whether a filter places no restriction on rows.
func isVacuous(p queryir.Predicate) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case queryir.And:
		return len(pred.Predicates) == 0
	case *queryir.And:
		return pred == nil || len(pred.Predicates) == 0
	}
	return false
}

// needsParens reports whether a junction member must be parenthesized.
func needsParens(p queryir.Predicate) bool {
	switch pred := p.(type) {
	case queryir.And:
		return len(pred.Predicates) > 1
	case *queryir.And:
		return len(pred.Predicates) > 1
	case queryir.Or:
		return len(pred.Predicates) > 1
	case *queryir.Or:
		return len(pred.Predicates) > 1
	}
	return false
}
