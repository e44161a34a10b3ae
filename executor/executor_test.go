// Copyright 2023 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/plan"
)

func col(table, alias string) *sql.Column {
	return &sql.Column{
		Name:       alias,
		Alias:      alias,
		TableName:  table,
		TableAlias: table,
	}
}

func makeRS(cols []*sql.Column, rows ...sql.Row) *sql.ResultSet {
	rs := sql.NewResultSet(cols...)
	for _, r := range rows {
		rs.AppendRow(r)
	}
	return rs
}

// publish registers a result under a step number and returns its reference.
func publish(e *Executor, num int, rs *sql.ResultSet) StepRef {
	e.StepsData[num] = rs
	return StepRef{StepNum: num}
}

func TestJoinByRowIDBackfillsMissingSide(t *testing.T) {
	require := require.New(t)

	e := New()
	left := publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "a"), col("t1", RowIDColumn)},
		sql.NewRow("x", int64(1)),
		sql.NewRow("y", int64(2)),
	))
	prediction := makeRS(
		[]*sql.Column{col("model", "predicted")},
		sql.NewRow(int64(10)),
		sql.NewRow(int64(20)),
	)
	prediction.IsPrediction = true
	right := publish(e, 2, prediction)

	rs, err := e.Call(sql.NewEmptyContext(), &JoinStep{
		Num: 3, Left: left, Right: right, JoinType: "join",
	})
	require.NoError(err)
	require.Empty(rs.FindColumns(RowIDColumn))
	require.Equal(2, rs.Len())

	cols := rs.Columns()
	require.Len(cols, 2)
	require.Equal("a", cols[0].Alias)
	require.Equal("predicted", cols[1].Alias)
	require.Equal([]interface{}{int64(10), int64(20)}, rs.ColumnValues(1))
}

func TestJoinByRowIDBackfillIsSymmetric(t *testing.T) {
	require := require.New(t)

	e := New()
	prediction := makeRS(
		[]*sql.Column{col("model", "predicted"), col("model", RowIDColumn)},
		sql.NewRow(int64(10), int64(1)),
		sql.NewRow(int64(20), int64(2)),
	)
	prediction.IsPrediction = true
	left := publish(e, 1, prediction)
	right := publish(e, 2, makeRS(
		[]*sql.Column{col("t1", "a")},
		sql.NewRow("x"),
		sql.NewRow("y"),
	))

	rs, err := e.Call(sql.NewEmptyContext(), &JoinStep{
		Num: 3, Left: left, Right: right, JoinType: "join",
	})
	require.NoError(err)
	require.Empty(rs.FindColumns(RowIDColumn))
	require.Equal(2, rs.Len())
	require.Equal([]interface{}{"x", "y"}, rs.ColumnValues(1))
}

func TestJoinByRowIDNotFound(t *testing.T) {
	require := require.New(t)

	e := New()
	prediction := makeRS([]*sql.Column{col("model", "predicted")}, sql.NewRow(int64(1)))
	prediction.IsPrediction = true
	left := publish(e, 1, prediction)
	right := publish(e, 2, makeRS([]*sql.Column{col("t1", "a")}, sql.NewRow("x")))

	_, err := e.Call(sql.NewEmptyContext(), &JoinStep{
		Num: 3, Left: left, Right: right, JoinType: "join",
	})
	require.Error(err)
	require.True(sql.ErrRowIDNotFound.Is(err))
}

func TestJoinByConditionRestoresMetadata(t *testing.T) {
	require := require.New(t)

	e := New()
	left := publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "id"), col("t1", "name")},
		sql.NewRow(int64(1), "alice"),
		sql.NewRow(int64(2), "bob"),
	))
	right := publish(e, 2, makeRS(
		[]*sql.Column{col("t2", "id"), col("t2", "city")},
		sql.NewRow(int64(1), "berlin"),
		sql.NewRow(int64(3), "oslo"),
	))

	rs, err := e.Call(sql.NewEmptyContext(), &JoinStep{
		Num: 3, Left: left, Right: right, JoinType: "inner join",
		Condition: expression.NewEquals(
			expression.NewIdentifier("t1", "id"),
			expression.NewIdentifier("t2", "id"),
		),
	})
	require.NoError(err)
	require.Equal(1, rs.Len())

	// both id columns survive, disambiguated by their table metadata
	cols := rs.Columns()
	require.Len(cols, 4)
	require.Equal("id", cols[0].Alias)
	require.Equal("t1", cols[0].TableAlias)
	require.Equal("id", cols[2].Alias)
	require.Equal("t2", cols[2].TableAlias)
}

func TestJoinWithoutConditionSmallInputs(t *testing.T) {
	require := require.New(t)

	e := New()
	left := publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "a")},
		sql.NewRow(int64(1)), sql.NewRow(int64(2)),
	))
	right := publish(e, 2, makeRS(
		[]*sql.Column{col("t2", "b")},
		sql.NewRow("x"), sql.NewRow("y"), sql.NewRow("z"),
	))

	rs, err := e.Call(sql.NewEmptyContext(), &JoinStep{
		Num: 3, Left: left, Right: right, JoinType: "join",
	})
	require.NoError(err)
	require.Equal(6, rs.Len())
}

func TestJoinWithoutConditionOverLimit(t *testing.T) {
	require := require.New(t)

	e := New()
	leftRS := sql.NewResultSet(col("t1", "a"))
	leftRS.SetColumnValues("a", make([]interface{}, 4000))
	rightRS := sql.NewResultSet(col("t2", "b"))
	rightRS.SetColumnValues("b", make([]interface{}, 3000))
	left := publish(e, 1, leftRS)
	right := publish(e, 2, rightRS)

	_, err := e.Call(sql.NewEmptyContext(), &JoinStep{
		Num: 3, Left: left, Right: right, JoinType: "join",
	})
	require.Error(err)
	require.True(sql.ErrNotSupportedYet.Is(err))
	require.Contains(err.Error(), "12,000,000 rows (4,000 x 3,000)")
	require.Contains(err.Error(), "Add an ON clause")
}

func TestParseJoinType(t *testing.T) {
	require := require.New(t)

	jt, err := ParseJoinType("LEFT JOIN")
	require.NoError(err)
	require.Equal(plan.JoinTypeLeft, jt)

	_, err = ParseJoinType("full outer join")
	require.Error(err)
	require.True(sql.ErrNotSupportedYet.Is(err))
}

func TestThousands(t *testing.T) {
	require := require.New(t)

	require.Equal("7", thousands(7))
	require.Equal("1,000", thousands(1000))
	require.Equal("12,000,000", thousands(12000000))
}

func projectInput(e *Executor) StepRef {
	return publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "a"), col("t2", "b"), col("t2", "c")},
		sql.NewRow(int64(1), "x", float64(1.5)),
		sql.NewRow(int64(2), "y", float64(2.5)),
	))
}

func TestProjectColumns(t *testing.T) {
	require := require.New(t)

	e := New()
	in := projectInput(e)
	rs, err := e.Call(sql.NewEmptyContext(), &ProjectStep{
		Num: 2, Dataframe: in,
		Columns: []sql.Expression{
			expression.NewIdentifier("b"),
			expression.NewIdentifier("t1", "a"),
		},
	})
	require.NoError(err)

	cols := rs.Columns()
	require.Len(cols, 2)
	require.Equal("b", cols[0].Alias)
	require.Equal("t2", cols[0].TableAlias)
	require.Equal("a", cols[1].Alias)
	require.Equal("t1", cols[1].TableAlias)
	require.Equal([]interface{}{"x", "y"}, rs.ColumnValues(0))
}

func TestProjectDuplicateAliasResolvesRightmost(t *testing.T) {
	require := require.New(t)

	e := New()
	in := publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "id"), col("t2", "id")},
		sql.NewRow(int64(1), int64(10)),
		sql.NewRow(int64(2), int64(20)),
	))
	rs, err := e.Call(sql.NewEmptyContext(), &ProjectStep{
		Num: 2, Dataframe: in,
		Columns: []sql.Expression{expression.NewIdentifier("id")},
	})
	require.NoError(err)

	cols := rs.Columns()
	require.Len(cols, 1)
	require.Equal("t2", cols[0].TableAlias)
	require.Equal([]interface{}{int64(10), int64(20)}, rs.ColumnValues(0))
}

func TestProjectQualifiedStar(t *testing.T) {
	require := require.New(t)

	e := New()
	in := projectInput(e)
	rs, err := e.Call(sql.NewEmptyContext(), &ProjectStep{
		Num: 2, Dataframe: in,
		Columns: []sql.Expression{expression.NewQualifiedStar("t2")},
	})
	require.NoError(err)

	cols := rs.Columns()
	require.Len(cols, 2)
	require.Equal("b", cols[0].Alias)
	require.Equal("c", cols[1].Alias)
}

func TestProjectBareStar(t *testing.T) {
	require := require.New(t)

	e := New()
	in := projectInput(e)
	rs, err := e.Call(sql.NewEmptyContext(), &ProjectStep{
		Num: 2, Dataframe: in,
		Columns: []sql.Expression{expression.NewStar()},
	})
	require.NoError(err)
	require.Len(rs.Columns(), 3)
	require.Equal(2, rs.Len())
}

func TestProjectUnknownColumnListsAlternatives(t *testing.T) {
	require := require.New(t)

	e := New()
	in := projectInput(e)
	_, err := e.Call(sql.NewEmptyContext(), &ProjectStep{
		Num: 2, Dataframe: in,
		Columns: []sql.Expression{expression.NewIdentifier("nope")},
	})
	require.Error(err)
	require.True(sql.ErrKeyColumnDoesNotExist.Is(err))
	require.Contains(err.Error(), "nope")
	require.Contains(err.Error(), "t1.a")
}

func subSelectQuery(where sql.Expression) *plan.Select {
	return &plan.Select{
		Targets: []sql.Expression{expression.NewStar()},
		From:    "df_table",
		Where:   where,
	}
}

func TestSubSelectPrunesAndBranch(t *testing.T) {
	require := require.New(t)

	e := New()
	in := publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "a")},
		sql.NewRow(int64(1)), sql.NewRow(int64(5)),
	))

	where := expression.NewAnd(
		expression.NewGreaterThan(
			expression.NewIdentifier("a"), expression.NewLiteral(int64(2))),
		expression.NewEquals(
			expression.NewIdentifier("missing"), expression.NewLiteral(int64(1))),
	)
	rs, err := e.Call(sql.NewEmptyContext(), &SubSelectStep{
		Num: 2, Dataframe: in, Query: subSelectQuery(where),
	})
	require.NoError(err)
	require.Equal(1, rs.Len())
	require.Equal([]interface{}{int64(5)}, rs.ColumnValues(0))
}

func TestSubSelectDropsWholeOr(t *testing.T) {
	require := require.New(t)

	e := New()
	in := publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "a")},
		sql.NewRow(int64(1)), sql.NewRow(int64(5)),
	))

	where := expression.NewOr(
		expression.NewGreaterThan(
			expression.NewIdentifier("a"), expression.NewLiteral(int64(2))),
		expression.NewEquals(
			expression.NewIdentifier("missing"), expression.NewLiteral(int64(1))),
	)
	rs, err := e.Call(sql.NewEmptyContext(), &SubSelectStep{
		Num: 2, Dataframe: in, Query: subSelectQuery(where),
	})
	require.NoError(err)
	// one side of the OR references a missing column, so the whole
	// condition is dropped rather than partially applied
	require.Equal(2, rs.Len())
}

func TestSubSelectAddAbsentCols(t *testing.T) {
	require := require.New(t)

	e := New()
	in := publish(e, 1, makeRS(
		[]*sql.Column{col("t1", "a")},
		sql.NewRow(int64(1)), sql.NewRow(int64(2)),
	))

	where := expression.NewEquals(
		expression.NewIdentifier("b"), expression.NewLiteral(int64(1)))
	rs, err := e.Call(sql.NewEmptyContext(), &SubSelectStep{
		Num: 2, Dataframe: in, Query: subSelectQuery(where),
		TableName: "sub", AddAbsentCols: true,
	})
	require.NoError(err)
	// b was backfilled with nulls, so the condition matches nothing, but
	// it resolved instead of erroring
	require.Equal(0, rs.Len())

	cols := rs.Columns()
	require.Len(cols, 2)
	require.Equal("sub", cols[0].TableName)
}

func queryStepInput(e *Executor) StepRef {
	return publish(e, 1, makeRS(
		[]*sql.Column{col("T", "Col"), col("T", "n")},
		sql.NewRow("x", int64(1)),
		sql.NewRow("y", int64(2)),
	))
}

func TestQueryStepResolvesCaseInsensitively(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	rs, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewIdentifier("t", "col")},
			From:    "t",
		},
	})
	require.NoError(err)
	require.Equal("Col", rs.Columns()[0].Alias)
	require.Equal([]interface{}{"x", "y"}, rs.ColumnValues(0))
}

func TestQueryStepQuotedIsExact(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	_, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewQuotedIdentifier("T", "col")},
			From:    "T",
		},
	})
	require.Error(err)
	require.True(sql.ErrKeyColumnDoesNotExist.Is(err))
}

func TestQueryStepStarExpansion(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	rs, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewQualifiedStar("T")},
			From:    "T",
		},
	})
	require.NoError(err)
	require.Len(rs.Columns(), 2)
	require.Equal("Col", rs.Columns()[0].Alias)
	require.Equal("n", rs.Columns()[1].Alias)
}

func TestQueryStepRelaxedWhere(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	where := expression.NewEquals(
		expression.NewIdentifier("model", "predicted"),
		expression.NewLiteral(int64(1)),
	)

	// strict resolution fails on the unknown qualified column
	_, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStar()},
			From:    "T",
			Where:   where,
		},
	})
	require.Error(err)
	require.True(sql.ErrKeyColumnDoesNotExist.Is(err))

	// relaxed resolution neutralizes the condition
	rs, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: false,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStar()},
			From:    "T",
			Where:   where,
		},
	})
	require.NoError(err)
	require.Equal(2, rs.Len())
}

func TestQueryStepFillsStepParams(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	publish(e, 5, makeRS([]*sql.Column{col("p", "v")}, sql.NewRow(int64(2))))

	rs, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 6, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStar()},
			From:    "T",
			Where: expression.NewEquals(
				expression.NewIdentifier("n"),
				expression.NewStepResult(5),
			),
		},
	})
	require.NoError(err)
	require.Equal(1, rs.Len())
	require.Equal([]interface{}{"y"}, rs.ColumnValues(0))
}

func TestQueryStepMissingStepParam(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	_, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStepResult(99)},
			From:    "T",
		},
	})
	require.Error(err)
	require.True(sql.ErrStepResultNotFound.Is(err))
}

func TestQueryStepClientProbe(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	_, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewIdentifier("$$")},
			From:    "T",
		},
	})
	require.Error(err)
	require.True(sql.ErrSyntaxError.Is(err))
	require.Contains(err.Error(), "'$$'")
}

func TestQueryStepFromStepResultName(t *testing.T) {
	require := require.New(t)

	e := New()
	queryStepInput(e)
	rs, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStar()},
			From:    expression.NewStepResult(1).String(),
		},
	})
	require.NoError(err)
	require.Equal(2, rs.Len())
	require.Equal("Col", rs.Columns()[0].Alias)

	_, err = e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStar()},
			From:    expression.NewStepResult(99).String(),
		},
	})
	require.Error(err)
	require.True(sql.ErrStepResultNotFound.Is(err))
}

func TestQueryStepWithoutInput(t *testing.T) {
	require := require.New(t)

	_, err := New().Call(sql.NewEmptyContext(), &QueryStep{
		Num: 1, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStar()},
			From:    "some_table",
		},
	})
	require.Error(err)
	require.True(sql.ErrUnsupportedFeature.Is(err))
}

func TestQueryStepClientProbeInWhere(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	_, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{expression.NewStar()},
			From:    "T",
			Where: expression.NewEquals(
				expression.NewIdentifier("$$"),
				expression.NewLiteral(int64(1)),
			),
		},
	})
	require.Error(err)
	require.True(sql.ErrSyntaxError.Is(err))
}

func TestQueryStepSessionFunctions(t *testing.T) {
	require := require.New(t)

	ctx := sql.NewContext(context.Background(),
		sql.WithSession(sql.NewSession("mydb", "alice", 7)))

	e := New()
	frame := sql.NewDataFrameFromRows([]string{"one"}, []sql.Row{sql.NewRow(int64(1))})
	rs, err := e.Call(ctx, &QueryStep{
		Num: 1, Frame: frame, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{
				expression.NewUnresolvedFunction("database", false),
				expression.NewUnresolvedFunction("current_user", false),
				expression.NewUnresolvedFunction("connection_id", false),
				expression.NewIdentifier("session_user"),
			},
			From: "df_table",
		},
	})
	require.NoError(err)
	require.Equal(1, rs.Len())
	require.Equal([]interface{}{"mydb"}, rs.ColumnValues(0))
	require.Equal([]interface{}{"alice"}, rs.ColumnValues(1))
	require.Equal([]interface{}{int64(7)}, rs.ColumnValues(2))
	require.Equal([]interface{}{"alice"}, rs.ColumnValues(3))

	require.Equal("database()", rs.Columns()[0].Alias)
	require.True(strings.HasPrefix(rs.Columns()[1].Alias, "current_user"))
}

func TestQueryStepOrderByProjectionAlias(t *testing.T) {
	require := require.New(t)

	e := New()
	in := queryStepInput(e)
	rs, err := e.Call(sql.NewEmptyContext(), &QueryStep{
		Num: 2, FromTable: &in, StrictWhere: true,
		Query: &plan.Select{
			Targets: []sql.Expression{
				expression.NewAlias(expression.NewIdentifier("n"), "num"),
			},
			From:    "T",
			OrderBy: []plan.SortField{{Column: expression.NewIdentifier("num"), Order: plan.Descending}},
		},
	})
	require.NoError(err)
	require.Equal([]interface{}{int64(2), int64(1)}, rs.ColumnValues(0))
}

func TestCallUnknownStep(t *testing.T) {
	require := require.New(t)

	_, err := New().Call(sql.NewEmptyContext(), nil)
	require.Error(err)
	require.True(sql.ErrUnsupportedFeature.Is(err))
}
