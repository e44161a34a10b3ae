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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/expression/aggregation"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	df := sql.NewDataFrameFromRows(
		[]string{"a", "b"},
		[]sql.Row{
			sql.NewRow(int64(1), "one"),
			sql.NewRow(int64(2), "two"),
			sql.NewRow(int64(3), "three"),
		},
	)
	return NewFrame("t", df)
}

func collect(t *testing.T, n sql.Node) []sql.Row {
	t.Helper()
	i, err := n.RowIter(sql.NewEmptyContext())
	require.NoError(t, err)
	rows, err := sql.RowIterToRows(i)
	require.NoError(t, err)
	return rows
}

func TestFrame(t *testing.T) {
	require := require.New(t)

	f := testFrame(t)
	require.Equal([]string{"a", "b"}, f.Schema())
	rows := collect(t, f)
	require.Len(rows, 3)
	require.Equal(sql.NewRow(int64(1), "one"), rows[0])
}

func TestFilter(t *testing.T) {
	require := require.New(t)

	node := NewFilter(
		expression.NewGreaterThan(
			expression.NewGetField(0, "a"),
			expression.NewLiteral(int64(1)),
		),
		testFrame(t),
	)
	rows := collect(t, node)
	require.Equal([]sql.Row{
		sql.NewRow(int64(2), "two"),
		sql.NewRow(int64(3), "three"),
	}, rows)
}

func TestProject(t *testing.T) {
	require := require.New(t)

	node := NewProject(
		[]sql.Expression{
			expression.NewAlias(expression.NewGetField(1, "b"), "name"),
			expression.NewPlus(
				expression.NewGetField(0, "a"),
				expression.NewLiteral(int64(10)),
			),
		},
		testFrame(t),
	)
	require.Equal([]string{"name", "a + 10"}, node.Schema())
	rows := collect(t, node)
	require.Equal(sql.NewRow("one", int64(11)), rows[0])
}

func joinFrames(t *testing.T) (*Frame, *Frame) {
	t.Helper()
	left := sql.NewDataFrameFromRows(
		[]string{"id", "name"},
		[]sql.Row{
			sql.NewRow(int64(1), "alice"),
			sql.NewRow(int64(2), "bob"),
			sql.NewRow(int64(3), "carol"),
		},
	)
	right := sql.NewDataFrameFromRows(
		[]string{"id", "city"},
		[]sql.Row{
			sql.NewRow(int64(1), "berlin"),
			sql.NewRow(int64(3), "madrid"),
			sql.NewRow(int64(4), "oslo"),
		},
	)
	return NewFrame("l", left), NewFrame("r", right)
}

func joinCond() sql.Expression {
	return expression.NewEquals(
		expression.NewGetField(0, "id"),
		expression.NewGetField(2, "id"),
	)
}

func TestJoinInner(t *testing.T) {
	require := require.New(t)

	left, right := joinFrames(t)
	rows := collect(t, NewJoin(left, right, JoinTypeInner, joinCond()))
	require.Equal([]sql.Row{
		sql.NewRow(int64(1), "alice", int64(1), "berlin"),
		sql.NewRow(int64(3), "carol", int64(3), "madrid"),
	}, rows)
}

func TestJoinLeft(t *testing.T) {
	require := require.New(t)

	left, right := joinFrames(t)
	rows := collect(t, NewJoin(left, right, JoinTypeLeft, joinCond()))
	require.Equal([]sql.Row{
		sql.NewRow(int64(1), "alice", int64(1), "berlin"),
		sql.NewRow(int64(2), "bob", nil, nil),
		sql.NewRow(int64(3), "carol", int64(3), "madrid"),
	}, rows)
}

func TestJoinRight(t *testing.T) {
	require := require.New(t)

	left, right := joinFrames(t)
	rows := collect(t, NewJoin(left, right, JoinTypeRight, joinCond()))
	require.Equal([]sql.Row{
		sql.NewRow(int64(1), "alice", int64(1), "berlin"),
		sql.NewRow(int64(3), "carol", int64(3), "madrid"),
		sql.NewRow(nil, nil, int64(4), "oslo"),
	}, rows)
}

func TestJoinCross(t *testing.T) {
	require := require.New(t)

	left, right := joinFrames(t)
	rows := collect(t, NewJoin(left, right, JoinTypeCross, nil))
	require.Len(rows, 9)
	require.Equal(sql.NewRow(int64(1), "alice", int64(1), "berlin"), rows[0])
	require.Equal(sql.NewRow(int64(1), "alice", int64(3), "madrid"), rows[1])
}

func TestSort(t *testing.T) {
	require := require.New(t)

	df := sql.NewDataFrameFromRows(
		[]string{"a"},
		[]sql.Row{
			sql.NewRow(int64(2)),
			sql.NewRow(nil),
			sql.NewRow(int64(1)),
			sql.NewRow(int64(3)),
		},
	)
	node := NewSort(
		[]SortField{{Column: expression.NewGetField(0, "a"), Order: Ascending}},
		NewFrame("t", df),
	)
	rows := collect(t, node)
	require.Equal([]sql.Row{
		sql.NewRow(nil),
		sql.NewRow(int64(1)),
		sql.NewRow(int64(2)),
		sql.NewRow(int64(3)),
	}, rows)

	node = NewSort(
		[]SortField{{Column: expression.NewGetField(0, "a"), Order: Descending}},
		NewFrame("t", df),
	)
	rows = collect(t, node)
	require.Equal([]sql.Row{
		sql.NewRow(int64(3)),
		sql.NewRow(int64(2)),
		sql.NewRow(int64(1)),
		sql.NewRow(nil),
	}, rows)
}

func TestLimit(t *testing.T) {
	require := require.New(t)

	rows := collect(t, NewLimit(2, 0, testFrame(t)))
	require.Len(rows, 2)

	rows = collect(t, NewLimit(2, 1, testFrame(t)))
	require.Equal([]sql.Row{
		sql.NewRow(int64(2), "two"),
		sql.NewRow(int64(3), "three"),
	}, rows)

	rows = collect(t, NewLimit(-1, 2, testFrame(t)))
	require.Equal([]sql.Row{sql.NewRow(int64(3), "three")}, rows)
}

func TestDistinct(t *testing.T) {
	require := require.New(t)

	df := sql.NewDataFrameFromRows(
		[]string{"a"},
		[]sql.Row{
			sql.NewRow("x"),
			sql.NewRow("y"),
			sql.NewRow("x"),
			sql.NewRow("y"),
		},
	)
	rows := collect(t, NewDistinct(NewFrame("t", df)))
	require.Equal([]sql.Row{sql.NewRow("x"), sql.NewRow("y")}, rows)
}

func TestGroupBy(t *testing.T) {
	require := require.New(t)

	df := sql.NewDataFrameFromRows(
		[]string{"cat", "n"},
		[]sql.Row{
			sql.NewRow("a", int64(1)),
			sql.NewRow("b", int64(10)),
			sql.NewRow("a", int64(2)),
			sql.NewRow("b", int64(20)),
			sql.NewRow("a", nil),
		},
	)
	node := NewGroupBy(
		[]sql.Expression{
			expression.NewGetField(0, "cat"),
			expression.NewAlias(aggregation.NewCount(expression.NewGetField(1, "n")), "c"),
			aggregation.NewSum(expression.NewGetField(1, "n")),
			aggregation.NewAvg(expression.NewGetField(1, "n")),
		},
		[]sql.Expression{expression.NewGetField(0, "cat")},
		NewFrame("t", df),
	)
	require.Equal([]string{"cat", "c", "sum(n)", "avg(n)"}, node.Schema())

	rows := collect(t, node)
	require.Equal([]sql.Row{
		sql.NewRow("a", int64(2), float64(3), float64(1.5)),
		sql.NewRow("b", int64(2), float64(30), float64(15)),
	}, rows)
}

func TestGroupByNoGrouping(t *testing.T) {
	require := require.New(t)

	node := NewGroupBy(
		[]sql.Expression{
			aggregation.NewCount(expression.NewStar()),
			aggregation.NewMin(expression.NewGetField(0, "a")),
			aggregation.NewMax(expression.NewGetField(0, "a")),
		},
		nil,
		testFrame(t),
	)
	rows := collect(t, node)
	require.Equal([]sql.Row{
		sql.NewRow(int64(3), int64(1), int64(3)),
	}, rows)
}
