package querysql

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/queryir"
)

var (
	memberT = queryir.Table{Name: "member", Alias: "m", Key: "member_id"}
	teamT   = queryir.Table{Name: "team", Alias: "t", Key: "team_id"}
	subT    = queryir.Table{Name: "member", Alias: "ms", Key: "member_id"}
)

func col(table, name string) queryir.Column {
	return queryir.Column{Table: table, Name: name}
}

func lit(v any) queryir.Literal {
	return queryir.Literal{Value: ir.MustFromGo(v)}
}

func teamJoin(kind queryir.JoinKind) queryir.Join {
	return queryir.Join{
		Kind:   kind,
		Target: teamT,
		On:     queryir.Compare{Op: queryir.OpEq, Left: col("m", "team_id"), Right: col("t", "team_id")},
	}
}

func searchSelect() queryir.Select {
	return queryir.Select{
		Projection: []queryir.Expr{
			col("m", "member_id"),
			col("m", "username"),
			col("m", "age"),
			queryir.Aliased{Expr: col("t", "team_id"), Alias: "team_id"},
			queryir.Aliased{Expr: col("t", "name"), Alias: "team_name"},
		},
		From:  memberT,
		Joins: []queryir.Join{teamJoin(queryir.LeftJoin)},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "t.name", Value: ir.IRString("teamB")},
			queryir.Compare{Op: queryir.OpGe, Left: col("m", "age"), Right: lit(35)},
			queryir.Compare{Op: queryir.OpLe, Left: col("m", "age"), Right: lit(40)},
		}},
		OrderBy: []queryir.Order{{Expr: col("m", "member_id")}},
	}
}

func teamAgeSelect() queryir.Select {
	avg := queryir.Aggregate{Func: queryir.AggAvg, Arg: col("m", "age")}
	return queryir.Select{
		Projection: []queryir.Expr{col("t", "name"), queryir.Aliased{Expr: avg, Alias: "avg_age"}},
		From:       memberT,
		Joins:      []queryir.Join{teamJoin(queryir.InnerJoin)},
		GroupBy:    []queryir.Expr{col("t", "name")},
		Having:     queryir.Compare{Op: queryir.OpGt, Left: avg, Right: lit(10)},
	}
}

func TestCompile_Golden(t *testing.T) {
	paged := searchSelect()
	paged.Offset = 1
	paged.Limit = 2

	testCases := []struct {
		name    string
		dialect Dialect
		count   bool
		query   queryir.Query
	}{
		{
			name:  "search_by_team_and_age",
			query: searchSelect(),
		},
		{
			name: "paging_sort_nulls_last",
			query: queryir.Select{
				Projection: []queryir.Expr{col("m", "username"), col("m", "age")},
				From:       memberT,
				OrderBy: []queryir.Order{
					{Expr: col("m", "age"), Desc: true},
					{Expr: col("m", "username"), Nulls: queryir.NullsLast},
				},
				Offset: 1,
				Limit:  2,
			},
		},
		{
			name:  "group_by_team_having",
			query: teamAgeSelect(),
		},
		{
			name: "subquery_goe_avg",
			query: queryir.Select{
				Projection: []queryir.Expr{col("m", "username"), col("m", "age")},
				From:       memberT,
				Filter: queryir.Compare{
					Op:   queryir.OpGe,
					Left: col("m", "age"),
					Right: queryir.Subquery{Select: queryir.Select{
						Projection: []queryir.Expr{queryir.Aggregate{Func: queryir.AggAvg, Arg: col("ms", "age")}},
						From:       subT,
					}},
				},
			},
		},
		{
			name: "case_and_concat",
			query: queryir.Select{
				Projection: []queryir.Expr{
					queryir.Aliased{Alias: "age_band", Expr: queryir.SearchedCase{
						Whens: []queryir.When{
							{Cond: queryir.Between{Expr: col("m", "age"), Low: lit(0), High: lit(20)}, Then: lit("0~20")},
							{Cond: queryir.Between{Expr: col("m", "age"), Low: lit(21), High: lit(30)}, Then: lit("21~30")},
						},
						Else: lit("other"),
					}},
					queryir.Aliased{Alias: "label", Expr: queryir.Concat{Parts: []queryir.Expr{
						col("m", "username"),
						lit("_"),
						queryir.Cast{Expr: col("m", "age"), Type: queryir.CastText},
					}}},
				},
				From:   memberT,
				Filter: queryir.Equals{Field: "m.username", Value: ir.IRString("member1")},
			},
		},
		{
			name: "theta_join",
			query: queryir.Select{
				Projection: []queryir.Expr{col("m", "username")},
				From:       memberT,
				Sources:    []queryir.Table{teamT},
				Filter:     queryir.Compare{Op: queryir.OpEq, Left: col("m", "username"), Right: col("t", "name")},
			},
		},
		{
			name:    "fetch_join_postgres",
			dialect: Postgres,
			query: queryir.Select{
				Projection: []queryir.Expr{
					col("m", "member_id"),
					col("m", "username"),
					queryir.Aliased{Expr: col("t", "team_id"), Alias: "team.team_id"},
					queryir.Aliased{Expr: col("t", "name"), Alias: "team.name"},
				},
				From:   memberT,
				Joins:  []queryir.Join{teamJoin(queryir.InnerJoin)},
				Offset: 2,
			},
		},
		{
			name: "bulk_update_add_age",
			query: queryir.Update{
				Table: memberT,
				Set: []queryir.Assignment{{
					Column: "age",
					Value:  queryir.Arith{Op: queryir.OpAdd, Left: col("m", "age"), Right: lit(1)},
				}},
			},
		},
		{
			name:  "count_search",
			count: true,
			query: paged,
		},
		{
			name:  "count_grouped",
			count: true,
			query: teamAgeSelect(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			compiler := NewSQLCompiler(WithDialect(tc.dialect))

			var sql string
			var params []any
			var err error
			if tc.count {
				sql, params, err = compiler.CompileCount(tc.query)
			} else {
				sql, params, err = compiler.Compile(tc.query)
			}
			require.NoError(t, err)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tc.name, []byte(sql+"\n-- params: "+fmt.Sprint(params)))
		})
	}
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	compiler := NewSQLCompiler()

	injection := "x' OR '1'='1"
	query := queryir.Select{
		Projection: []queryir.Expr{col("m", "username")},
		From:       memberT,
		Filter: queryir.Or{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "m.username", Value: ir.IRString(injection)},
			queryir.Like{Expr: col("m", "username"), Pattern: lit(injection + "%")},
		}},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.NotContains(t, sql, "'")
	assert.Equal(t, []any{injection, injection + "%"}, params)
}

func TestCompile_ParamsFollowTextOrder(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		Projection: []queryir.Expr{
			queryir.Aliased{Expr: queryir.Concat{Parts: []queryir.Expr{col("m", "username"), lit("!")}}, Alias: "shout"},
		},
		From: memberT,
		Joins: []queryir.Join{{
			Kind:   queryir.LeftJoin,
			Target: teamT,
			On: queryir.And{Predicates: []queryir.Predicate{
				queryir.Compare{Op: queryir.OpEq, Left: col("m", "team_id"), Right: col("t", "team_id")},
				queryir.Equals{Field: "t.name", Value: ir.IRString("teamA")},
			}},
		}},
		Filter:  queryir.Compare{Op: queryir.OpGt, Left: col("m", "age"), Right: lit(5)},
		OrderBy: []queryir.Order{{Expr: queryir.Func{Name: "coalesce", Args: []queryir.Expr{col("t", "name"), lit("zzz")}}}},
		Offset:  3,
		Limit:   4,
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT m.username || ? AS shout FROM member AS m LEFT JOIN team AS t ON m.team_id = t.team_id AND t.name = ? "+
			"WHERE m.age > ? ORDER BY coalesce(t.name, ?) ASC, m.member_id ASC, t.team_id ASC LIMIT ? OFFSET ?",
		sql)
	assert.Equal(t, []any{"!", "teamA", int64(5), "zzz", int64(4), int64(3)}, params)
}

func TestCompile_EmptyFilterOmitsWhere(t *testing.T) {
	compiler := NewSQLCompiler()

	for _, filter := range []queryir.Predicate{nil, queryir.And{}, &queryir.And{}} {
		sql, params, err := compiler.Compile(queryir.Select{
			Projection: []queryir.Expr{col("m", "username")},
			From:       memberT,
			Filter:     filter,
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT m.username FROM member AS m ORDER BY m.member_id ASC", sql)
		assert.Empty(t, params)
	}
}

func TestCompile_Junctions(t *testing.T) {
	compiler := NewSQLCompiler()

	eq := func(name string) queryir.Predicate {
		return queryir.Equals{Field: "m.username", Value: ir.IRString(name)}
	}

	testCases := []struct {
		name    string
		filter  queryir.Predicate
		wantSQL string
	}{
		{
			name: "or inside and",
			filter: queryir.And{Predicates: []queryir.Predicate{
				queryir.Or{Predicates: []queryir.Predicate{eq("a"), eq("b")}},
				queryir.IsNull{Expr: col("m", "team_id"), Negate: true},
			}},
			wantSQL: "(m.username = ? OR m.username = ?) AND m.team_id IS NOT NULL",
		},
		{
			name: "and inside or",
			filter: queryir.Or{Predicates: []queryir.Predicate{
				queryir.And{Predicates: []queryir.Predicate{eq("a"), eq("b")}},
				eq("c"),
			}},
			wantSQL: "(m.username = ? AND m.username = ?) OR m.username = ?",
		},
		{
			name:    "single member junction not wrapped",
			filter:  queryir.And{Predicates: []queryir.Predicate{queryir.Or{Predicates: []queryir.Predicate{eq("a")}}, eq("b")}},
			wantSQL: "m.username = ? AND m.username = ?",
		},
		{
			name:    "empty or matches nothing",
			filter:  queryir.Or{},
			wantSQL: "1 = 0",
		},
		{
			name:    "nested empty and",
			filter:  queryir.Or{Predicates: []queryir.Predicate{queryir.And{}, eq("a")}},
			wantSQL: "1 = 1 OR m.username = ?",
		},
		{
			name:    "not",
			filter:  queryir.Not{Predicate: queryir.IsNull{Expr: col("m", "username")}},
			wantSQL: "NOT (m.username IS NULL)",
		},
		{
			name:    "pointer forms",
			filter:  &queryir.And{Predicates: []queryir.Predicate{&queryir.Equals{Field: "m.age", Value: ir.IRInt(10)}, &queryir.Not{Predicate: eq("a")}}},
			wantSQL: "m.age = ? AND NOT (m.username = ?)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := compiler.Compile(queryir.Select{
				Projection: []queryir.Expr{col("m", "username")},
				From:       memberT,
				Filter:     tc.filter,
			})
			require.NoError(t, err)
			assert.Equal(t, "SELECT m.username FROM member AS m WHERE "+tc.wantSQL+" ORDER BY m.member_id ASC", sql)
		})
	}
}

func TestCompile_In(t *testing.T) {
	compiler := NewSQLCompiler()

	list := queryir.Select{
		Projection: []queryir.Expr{col("m", "username")},
		From:       memberT,
		Filter:     queryir.In{Expr: col("m", "age"), Values: []queryir.Expr{lit(10), lit(20)}, Negate: true},
	}
	sql, params, err := compiler.Compile(list)
	require.NoError(t, err)
	assert.Equal(t, "SELECT m.username FROM member AS m WHERE m.age NOT IN (?, ?) ORDER BY m.member_id ASC", sql)
	assert.Equal(t, []any{int64(10), int64(20)}, params)

	sub := queryir.Select{
		Projection: []queryir.Expr{col("m", "age")},
		From:       memberT,
		Filter: queryir.In{Expr: col("m", "age"), Subquery: &queryir.Select{
			Projection: []queryir.Expr{col("ms", "age")},
			From:       subT,
			Filter:     queryir.Compare{Op: queryir.OpGt, Left: col("ms", "age"), Right: lit(10)},
		}},
	}
	sql, params, err = compiler.Compile(sub)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT m.age FROM member AS m WHERE m.age IN (SELECT ms.age FROM member AS ms WHERE ms.age > ?) ORDER BY m.member_id ASC",
		sql)
	assert.Equal(t, []any{int64(10)}, params)
}

func TestCompile_SimpleCaseAndFunctions(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		Projection: []queryir.Expr{
			queryir.SimpleCase{
				Operand: col("m", "age"),
				Whens: []queryir.WhenValue{
					{Match: lit(10), Then: lit("ten")},
					{Match: lit(20), Then: lit("twenty")},
				},
			},
			queryir.Func{Name: "replace", Args: []queryir.Expr{col("m", "username"), lit("member"), lit("M")}},
		},
		From:   memberT,
		Filter: queryir.Compare{Op: queryir.OpEq, Left: col("m", "username"), Right: queryir.Func{Name: "lower", Args: []queryir.Expr{col("m", "username")}}},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT CASE m.age WHEN ? THEN ? WHEN ? THEN ? END, replace(m.username, ?, ?) FROM member AS m "+
			"WHERE m.username = lower(m.username) ORDER BY m.member_id ASC",
		sql)
	assert.Equal(t, []any{int64(10), "ten", int64(20), "twenty", "member", "M"}, params)
}

func TestCompile_NestedArithmetic(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Update{
		Table: memberT,
		Set: []queryir.Assignment{{
			Column: "age",
			Value: queryir.Arith{
				Op:    queryir.OpMul,
				Left:  queryir.Arith{Op: queryir.OpAdd, Left: col("m", "age"), Right: lit(1)},
				Right: lit(2),
			},
		}},
		Filter: queryir.Compare{Op: queryir.OpLt, Left: col("m", "age"), Right: lit(28)},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE member AS m SET age = (m.age + ?) * ? WHERE m.age < ?", sql)
	assert.Equal(t, []any{int64(1), int64(2), int64(28)}, params)
}

func TestCompile_InsertReturning(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(&queryir.Insert{
		Table: memberT,
		Values: []queryir.Assignment{
			{Column: "username", Value: lit("member1")},
			{Column: "age", Value: lit(10)},
			{Column: "team_id", Value: queryir.Literal{Value: ir.IRNull{}}},
		},
		Returning: []string{"member_id"},
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO member (username, age, team_id) VALUES (?, ?, ?) RETURNING member_id", sql)
	assert.Equal(t, []any{"member1", int64(10), nil}, params)
}

func TestCompile_Delete(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(queryir.Delete{
		Table:  memberT,
		Filter: queryir.Compare{Op: queryir.OpGt, Left: col("m", "age"), Right: lit(18)},
	})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM member AS m WHERE m.age > ?", sql)
	assert.Equal(t, []any{int64(18)}, params)

	sql, params, err = compiler.Compile(queryir.Delete{Table: queryir.Table{Name: "member"}})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM member", sql)
	assert.Empty(t, params)
}

func TestCompile_OffsetWithoutLimit(t *testing.T) {
	query := queryir.Select{
		Projection: []queryir.Expr{col("m", "username")},
		From:       memberT,
		Offset:     2,
	}

	sql, params, err := NewSQLCompiler().Compile(query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT m.username FROM member AS m ORDER BY m.member_id ASC LIMIT -1 OFFSET ?", sql)
	assert.Equal(t, []any{int64(2)}, params)

	sql, _, err = NewSQLCompiler(WithDialect(Postgres)).Compile(query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT m.username FROM member AS m ORDER BY m.member_id ASC OFFSET ?", sql)
}

func TestCompile_Tiebreakers(t *testing.T) {
	compiler := NewSQLCompiler()

	testCases := []struct {
		name    string
		query   queryir.Select
		wantSQL string
	}{
		{
			name: "ungrouped aggregate has no order",
			query: queryir.Select{
				Projection: []queryir.Expr{
					queryir.Aggregate{Func: queryir.AggCount},
					queryir.Aggregate{Func: queryir.AggSum, Arg: col("m", "age")},
				},
				From: memberT,
			},
			wantSQL: "SELECT COUNT(*), SUM(m.age) FROM member AS m",
		},
		{
			name: "distinct orders by projected columns",
			query: queryir.Select{
				Distinct:   true,
				Projection: []queryir.Expr{col("m", "username")},
				From:       memberT,
			},
			wantSQL: "SELECT DISTINCT m.username FROM member AS m ORDER BY m.username ASC",
		},
		{
			name: "explicit key order not repeated",
			query: queryir.Select{
				Projection: []queryir.Expr{col("m", "username")},
				From:       memberT,
				OrderBy:    []queryir.Order{{Expr: col("m", "member_id"), Desc: true}},
			},
			wantSQL: "SELECT m.username FROM member AS m ORDER BY m.member_id DESC",
		},
		{
			name: "order by select alias",
			query: queryir.Select{
				Projection: []queryir.Expr{queryir.Aliased{Expr: col("t", "name"), Alias: "team.name"}},
				From:       memberT,
				Joins:      []queryir.Join{teamJoin(queryir.InnerJoin)},
				OrderBy:    []queryir.Order{{Expr: queryir.Aliased{Expr: col("t", "name"), Alias: "team.name"}, Nulls: queryir.NullsFirst}},
			},
			wantSQL: `SELECT t.name AS "team.name" FROM member AS m INNER JOIN team AS t ON m.team_id = t.team_id ` +
				`ORDER BY "team.name" ASC NULLS FIRST, m.member_id ASC, t.team_id ASC`,
		},
		{
			name: "keyless table has no tiebreaker",
			query: queryir.Select{
				Projection: []queryir.Expr{col("", "name")},
				From:       queryir.Table{Name: "team"},
			},
			wantSQL: "SELECT name FROM team",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := compiler.Compile(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSQL, sql)
		})
	}
}

func TestCompile_CountIgnoresProjectionParams(t *testing.T) {
	query := queryir.Select{
		Projection: []queryir.Expr{queryir.Concat{Parts: []queryir.Expr{col("m", "username"), lit("_")}}},
		From:       memberT,
		Filter:     queryir.Compare{Op: queryir.OpGe, Left: col("m", "age"), Right: lit(20)},
		OrderBy:    []queryir.Order{{Expr: col("m", "age")}},
		Limit:      10,
	}

	sql, params, err := NewSQLCompiler().CompileCount(&query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM member AS m WHERE m.age >= ?", sql)
	assert.Equal(t, []any{int64(20)}, params)
}

func TestCompile_CountDistinct(t *testing.T) {
	sql, _, err := NewSQLCompiler().CompileCount(queryir.Select{
		Distinct:   true,
		Projection: []queryir.Expr{col("m", "age")},
		From:       memberT,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT DISTINCT m.age FROM member AS m) AS counted", sql)
}

func TestCompile_Errors(t *testing.T) {
	compiler := NewSQLCompiler()

	t.Run("nil query", func(t *testing.T) {
		_, _, err := compiler.Compile(nil)
		require.Error(t, err)
	})

	t.Run("invalid query", func(t *testing.T) {
		_, _, err := compiler.Compile(queryir.Select{From: memberT})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty projection")

		var compileErr *CompileError
		require.ErrorAs(t, err, &compileErr)
		assert.Len(t, compileErr.Problems, 1)
	})

	t.Run("array literal", func(t *testing.T) {
		_, _, err := compiler.Compile(queryir.Select{
			Projection: []queryir.Expr{col("m", "age")},
			From:       memberT,
			Filter:     queryir.Compare{Op: queryir.OpEq, Left: col("m", "age"), Right: queryir.Literal{Value: ir.IRArray{ir.IRInt(1)}}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "IRArray")
	})

	t.Run("count of non-select", func(t *testing.T) {
		_, _, err := compiler.CompileCount(queryir.Delete{Table: memberT})
		require.Error(t, err)
	})
}

func TestDialect(t *testing.T) {
	assert.Equal(t, SQLite, NewSQLCompiler().Dialect())
	assert.Equal(t, Postgres, NewSQLCompiler(WithDialect(Postgres)).Dialect())
	assert.Equal(t, "sqlite", SQLite.String())
	assert.Equal(t, "postgres", Postgres.String())
}
