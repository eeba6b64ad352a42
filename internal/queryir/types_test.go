package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/qdsl/internal/ir"
)

var (
	memberTable = Table{Name: "member", Alias: "m", Key: "member_id"}
	teamTable   = Table{Name: "team", Alias: "t", Key: "team_id"}
)

func col(table, name string) Column {
	return Column{Table: table, Name: name}
}

func TestTable_Ref(t *testing.T) {
	assert.Equal(t, "m", memberTable.Ref())
	assert.Equal(t, "member", Table{Name: "member"}.Ref())
}

func TestJoinKind_String(t *testing.T) {
	assert.Equal(t, "INNER JOIN", InnerJoin.String())
	assert.Equal(t, "LEFT JOIN", LeftJoin.String())
}

func TestQueries_ImplementQuery(t *testing.T) {
	queries := []Query{
		Select{From: memberTable},
		&Select{From: memberTable},
		Insert{Table: teamTable},
		Update{Table: memberTable},
		Delete{Table: memberTable},
	}

	for _, q := range queries {
		switch q.(type) {
		case Select, *Select, Insert, Update, Delete:
		default:
			t.Fatalf("unexpected query type %T", q)
		}
	}
}

func TestSelect_Aggregated(t *testing.T) {
	tests := []struct {
		name     string
		sel      Select
		expected bool
	}{
		{
			name:     "plain columns",
			sel:      Select{Projection: []Expr{col("m", "username"), col("m", "age")}},
			expected: false,
		},
		{
			name:     "count",
			sel:      Select{Projection: []Expr{Aggregate{Func: AggCount}}},
			expected: true,
		},
		{
			name: "aliased avg",
			sel: Select{Projection: []Expr{
				Aliased{Expr: Aggregate{Func: AggAvg, Arg: col("m", "age")}, Alias: "avg_age"},
			}},
			expected: true,
		},
		{
			name: "aggregate inside arithmetic",
			sel: Select{Projection: []Expr{
				Arith{Op: OpAdd, Left: Aggregate{Func: AggMax, Arg: col("m", "age")}, Right: Literal{Value: ir.IRInt(1)}},
			}},
			expected: true,
		},
		{
			name:     "group by",
			sel:      Select{Projection: []Expr{col("t", "name")}, GroupBy: []Expr{col("t", "name")}},
			expected: true,
		},
		{
			name: "scalar subquery aggregate does not aggregate the outer query",
			sel: Select{Projection: []Expr{
				col("m", "username"),
				Subquery{Select: Select{Projection: []Expr{Aggregate{Func: AggAvg, Arg: col("ms", "age")}}}},
			}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.sel.Aggregated())
		})
	}
}

func TestEmptyAnd_IsVacuous(t *testing.T) {
	// An empty And is the representation of "no search fields set".
	var p Predicate = And{}
	and, ok := p.(And)
	assert.True(t, ok)
	assert.Empty(t, and.Predicates)
}

func TestSplitField(t *testing.T) {
	table, name := SplitField("t.name")
	assert.Equal(t, "t", table)
	assert.Equal(t, "name", name)

	table, name = SplitField("username")
	assert.Equal(t, "", table)
	assert.Equal(t, "username", name)
}

func TestIsIdent(t *testing.T) {
	assert.True(t, IsIdent("member_id"))
	assert.True(t, IsIdent("_x1"))
	assert.False(t, IsIdent("1abc"))
	assert.False(t, IsIdent("name; DROP TABLE member"))
	assert.False(t, IsIdent(""))
	assert.False(t, IsIdent("team.name"))
}
