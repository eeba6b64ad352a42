package queryir

import "github.com/roach88/qdsl/internal/ir"

// Query represents an abstract statement in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
//
// Query types:
//   - Select: row retrieval with joins, filtering, grouping, ordering, paging
//   - Insert: single-row insert with optional RETURNING
//   - Update: bulk update of every row matching a filter
//   - Delete: bulk delete of every row matching a filter
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Expr represents a value-producing expression: a column, a literal, an
// aggregate, an arithmetic or string operation, a CASE, or a scalar subquery.
//
// Expr is sealed. Backends switch on value types only (no pointer forms).
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Predicate represents a boolean filter condition.
//
// This is a sealed interface - only types in this package implement it.
// Predicates are used in Select.Filter, Select.Having, Join.On, CASE WHEN
// arms and Update/Delete filters.
//
// Predicate types:
//   - Equals: field = literal (the common search shorthand)
//   - Compare: expr <op> expr
//   - And / Or / Not: boolean composition
//   - IsNull, In, Between, Like
//
// An empty And is always true; an empty Or is always false.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Table names a relation and the alias it is referenced by.
//
// Key is the primary key column. Compilers use it as the final ordering
// tiebreaker so that paged results are stable; leave it empty for relations
// without a single-column key.
type Table struct {
	Name  string // Relation name (e.g., "member")
	Alias string // Reference name in the statement (e.g., "m"); empty = Name
	Key   string // Primary key column (e.g., "member_id")
}

// Ref returns the name columns use to qualify themselves for this table.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// JoinKind selects inner or left outer join semantics.
type JoinKind int

const (
	// InnerJoin keeps only rows with a match on both sides.
	InnerJoin JoinKind = iota
	// LeftJoin keeps every left row, with NULLs when the right side has no match.
	LeftJoin
)

func (k JoinKind) String() string {
	if k == LeftJoin {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}

// Join attaches a table to a Select.
//
// Semantics:
//
//	<left rows> [INNER|LEFT] JOIN <target> ON <on>
//
// Example (members with their team, filtered on the join):
//
//	Join{
//	  Kind:   LeftJoin,
//	  Target: Table{Name: "team", Alias: "t", Key: "team_id"},
//	  On: And{Predicates: []Predicate{
//	    Compare{Op: OpEq, Left: Column{Table: "m", Name: "team_id"}, Right: Column{Table: "t", Name: "team_id"}},
//	    Equals{Field: "t.name", Value: ir.IRString("teamA")},
//	  }},
//	}
//
// Unrelated tables (theta joins) go in Select.Sources instead, with the
// join condition in Select.Filter.
type Join struct {
	Kind   JoinKind
	Target Table
	On     Predicate // Required
}

// NullOrder places NULLs explicitly within an ordering.
type NullOrder int

const (
	NullsDefault NullOrder = iota // Backend default
	NullsFirst
	NullsLast
)

// Order is one ORDER BY term.
type Order struct {
	Expr  Expr
	Desc  bool
	Nulls NullOrder
}

// Select represents row retrieval.
//
// Semantics:
//
//	SELECT [DISTINCT] <projection>
//	FROM <from>[, <sources>...] <joins...>
//	WHERE <filter> GROUP BY <group_by> HAVING <having>
//	ORDER BY <order_by> LIMIT <limit> OFFSET <offset>
//
// Example (members aged 35 or more, second page of two, newest name first):
//
//	Select{
//	  Projection: []Expr{Column{Table: "m", Name: "username"}, Column{Table: "m", Name: "age"}},
//	  From:       Table{Name: "member", Alias: "m", Key: "member_id"},
//	  Filter:     Compare{Op: OpGe, Left: Column{Table: "m", Name: "age"}, Right: Literal{Value: ir.IRInt(35)}},
//	  OrderBy:    []Order{{Expr: Column{Table: "m", Name: "username"}, Desc: true}},
//	  Offset:     2,
//	  Limit:      2,
//	}
//
// RULES:
//   - Projection must be explicit (no SELECT *)
//   - Every qualified column must reference From, Sources, Joins or, inside
//     a subquery, an enclosing Select
//   - Limit 0 means unbounded; Offset and Limit are never negative
type Select struct {
	Distinct   bool
	Projection []Expr
	From       Table
	Sources    []Table // Extra FROM relations (cross/theta joins)
	Joins      []Join
	Filter     Predicate // nil = no filter
	GroupBy    []Expr
	Having     Predicate // Requires GroupBy
	OrderBy    []Order
	Offset     int64
	Limit      int64 // 0 = unbounded
}

func (Select) queryNode() {}

// Aggregated reports whether the select list or grouping makes this an
// aggregate query (one row per group, or one row overall).
func (s Select) Aggregated() bool {
	if len(s.GroupBy) > 0 {
		return true
	}
	for _, e := range s.Projection {
		if containsAggregate(e) {
			return true
		}
	}
	return false
}

func containsAggregate(e Expr) bool {
	switch ex := e.(type) {
	case Aggregate:
		return true
	case Aliased:
		return containsAggregate(ex.Expr)
	case Arith:
		return containsAggregate(ex.Left) || containsAggregate(ex.Right)
	case Cast:
		return containsAggregate(ex.Expr)
	case Func:
		for _, a := range ex.Args {
			if containsAggregate(a) {
				return true
			}
		}
	case Concat:
		for _, p := range ex.Parts {
			if containsAggregate(p) {
				return true
			}
		}
	}
	return false
}

// Assignment sets one column to an expression in Insert and Update.
type Assignment struct {
	Column string // Unqualified column name
	Value  Expr
}

// Insert adds one row.
//
// Semantics:
//
//	INSERT INTO <table> (<columns>) VALUES (<values>) [RETURNING <returning>]
type Insert struct {
	Table     Table
	Values    []Assignment
	Returning []string // Columns to return (e.g., generated key)
}

func (Insert) queryNode() {}

// Update modifies every row matching Filter in a single statement without
// loading rows first (a bulk operation).
//
// Semantics:
//
//	UPDATE <table> SET <set...> WHERE <filter>
//
// Example (rename every member younger than 28):
//
//	Update{
//	  Table:  Table{Name: "member", Alias: "m"},
//	  Set:    []Assignment{{Column: "username", Value: Literal{Value: ir.IRString("guest")}}},
//	  Filter: Compare{Op: OpLt, Left: Column{Table: "m", Name: "age"}, Right: Literal{Value: ir.IRInt(28)}},
//	}
//
// A nil Filter updates every row.
type Update struct {
	Table  Table
	Set    []Assignment
	Filter Predicate
}

func (Update) queryNode() {}

// Delete removes every row matching Filter in a single statement.
// A nil Filter deletes every row.
type Delete struct {
	Table  Table
	Filter Predicate
}

func (Delete) queryNode() {}

// Column references a column, optionally qualified by a table reference.
type Column struct {
	Table string // Table alias or name; empty = unqualified
	Name  string
}

func (Column) exprNode() {}

// Literal is a constant value, always bound as a parameter.
type Literal struct {
	Value ir.IRValue
}

func (Literal) exprNode() {}

// AggFunc names an aggregate function.
type AggFunc string

const (
	AggCount AggFunc = "COUNT"
	AggSum   AggFunc = "SUM"
	AggAvg   AggFunc = "AVG"
	AggMax   AggFunc = "MAX"
	AggMin   AggFunc = "MIN"
)

// Aggregate applies an aggregate function. A nil Arg with AggCount counts rows.
type Aggregate struct {
	Func AggFunc
	Arg  Expr
}

func (Aggregate) exprNode() {}

// ArithOp names a binary arithmetic operator.
type ArithOp string

const (
	OpAdd ArithOp = "+"
	OpSub ArithOp = "-"
	OpMul ArithOp = "*"
	OpDiv ArithOp = "/"
)

// Arith is a binary arithmetic expression, e.g. age + 1.
type Arith struct {
	Op    ArithOp
	Left  Expr
	Right Expr
}

func (Arith) exprNode() {}

// Concat joins string expressions with the SQL || operator.
type Concat struct {
	Parts []Expr
}

func (Concat) exprNode() {}

// Func calls a scalar SQL function by name, e.g. lower(username).
// The function must exist in the target database.
type Func struct {
	Name string
	Args []Expr
}

func (Func) exprNode() {}

// Cast types supported by every backend.
const (
	CastText    = "TEXT"
	CastInteger = "INTEGER"
	CastReal    = "REAL"
)

// Cast converts an expression to another SQL type.
type Cast struct {
	Expr Expr
	Type string // CastText, CastInteger or CastReal
}

func (Cast) exprNode() {}

// When is one arm of a searched CASE.
type When struct {
	Cond Predicate
	Then Expr
}

// SearchedCase evaluates arms in order and yields the first matching Then.
//
// Semantics:
//
//	CASE WHEN <cond> THEN <then> ... ELSE <else> END
type SearchedCase struct {
	Whens []When
	Else  Expr // nil = NULL
}

func (SearchedCase) exprNode() {}

// WhenValue is one arm of a simple CASE.
type WhenValue struct {
	Match Expr
	Then  Expr
}

// SimpleCase compares one operand against each arm's Match.
//
// Semantics:
//
//	CASE <operand> WHEN <match> THEN <then> ... ELSE <else> END
type SimpleCase struct {
	Operand Expr
	Whens   []WhenValue
	Else    Expr // nil = NULL
}

func (SimpleCase) exprNode() {}

// Subquery is a scalar subquery used as an expression. The inner Select
// should yield one column; enclosing aliases are visible inside it.
type Subquery struct {
	Select Select
}

func (Subquery) exprNode() {}

// Aliased names an expression in the select list ("expr AS alias").
// Scanning into structs matches result columns to db tags by this name.
type Aliased struct {
	Expr  Expr
	Alias string
}

func (Aliased) exprNode() {}

// Equals represents a field-equals-literal predicate.
//
// Semantics:
//
//	<field> = <value>
//
// Field is a column name, optionally qualified ("t.name").
//
// Example:
//
//	Equals{Field: "m.username", Value: ir.IRString("member1")}
//
// Translates to SQL:
//
//	m.username = ?
//
// Comparing against IRNull never matches; use IsNull instead.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// CompareOp names a comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Compare compares two expressions.
//
// Example (members whose age is at least the average age):
//
//	Compare{
//	  Op:    OpGe,
//	  Left:  Column{Table: "m", Name: "age"},
//	  Right: Subquery{Select: Select{
//	    Projection: []Expr{Aggregate{Func: AggAvg, Arg: Column{Table: "ms", Name: "age"}}},
//	    From:       Table{Name: "member", Alias: "ms"},
//	  }},
//	}
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (Compare) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
//
// Semantics:
//
//	<predicate1> AND <predicate2> AND ... AND <predicateN>
//
// Returns true if Predicates is empty (vacuous truth). A dynamic search that
// sets no fields therefore produces an empty And and matches every row.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (any must be true).
// Returns false if Predicates is empty.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// IsNull tests an expression for NULL (IS NOT NULL when Negate is set).
type IsNull struct {
	Expr   Expr
	Negate bool
}

func (IsNull) predicateNode() {}

// In tests membership in a literal list or in the rows of a subquery.
// Exactly one of Values and Subquery must be set.
type In struct {
	Expr     Expr
	Values   []Expr
	Subquery *Select
	Negate   bool
}

func (In) predicateNode() {}

// Between tests Low <= Expr <= High (inclusive on both ends).
type Between struct {
	Expr Expr
	Low  Expr
	High Expr
}

func (Between) predicateNode() {}

// Like matches a string expression against a SQL LIKE pattern.
type Like struct {
	Expr    Expr
	Pattern Expr
}

func (Like) predicateNode() {}
