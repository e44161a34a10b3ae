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

package sql

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashNameIsDeterministic(t *testing.T) {
	require := require.New(t)

	a := &Column{Name: "x", Alias: "price", TableAlias: "t1"}
	b := &Column{Name: "y", Alias: "price", TableAlias: "t1", Database: "other"}
	require.Equal(a.HashName("A"), b.HashName("A"))
	require.True(strings.HasPrefix(a.HashName("A"), "A"))

	// different identity, different name; different role, different name
	c := &Column{Alias: "price", TableAlias: "t2"}
	require.NotEqual(a.HashName("A"), c.HashName("A"))
	require.NotEqual(a.HashName("A"), a.HashName("B"))
}

func TestToDataFrameColsRoundTrip(t *testing.T) {
	require := require.New(t)

	// duplicate aliases on different tables stay distinct through the frame
	rs := NewResultSet(
		&Column{Name: "id", Alias: "id", TableName: "t1", TableAlias: "t1"},
		&Column{Name: "id", Alias: "id", TableName: "t2", TableAlias: "t2"},
	)
	rs.AppendRow(NewRow(int64(1), int64(10)))
	rs.AppendRow(NewRow(int64(2), int64(20)))

	df, mapping := rs.ToDataFrameCols("A")
	require.Equal(2, df.NumCols())
	require.NotEqual(df.Names()[0], df.Names()[1])

	restored, err := ResultSetFromDataFrameCols(df, mapping, true)
	require.NoError(err)
	require.Equal("t1", restored.Columns()[0].TableAlias)
	require.Equal("t2", restored.Columns()[1].TableAlias)
	require.Equal([]interface{}{int64(1), int64(2)}, restored.ColumnValues(0))
}

func TestToDataFrameSuffixesDuplicateAliases(t *testing.T) {
	require := require.New(t)

	rs := NewResultSet(
		&Column{Name: "id", Alias: "id", TableAlias: "t1"},
		&Column{Name: "id", Alias: "id", TableAlias: "t2"},
	)
	df := rs.ToDataFrame()
	require.Equal([]string{"id", "id_2"}, df.Names())
}

func TestResultSetFromDataFrameColsStrict(t *testing.T) {
	require := require.New(t)

	df := NewDataFrameFromRows([]string{"known", "computed"}, []Row{NewRow(1, 2)})
	mapping := map[string]*Column{"known": {Name: "k", Alias: "k"}}

	_, err := ResultSetFromDataFrameCols(df, mapping, true)
	require.Error(err)
	require.True(ErrColumnNotFound.Is(err))

	rs, err := ResultSetFromDataFrameCols(df, mapping, false)
	require.NoError(err)
	require.Equal("k", rs.Columns()[0].Alias)
	require.Equal("computed", rs.Columns()[1].Alias)
}

func TestAddColumnBackfillsNulls(t *testing.T) {
	require := require.New(t)

	rs := NewResultSet(NewColumn("a"))
	rs.AppendRow(NewRow(int64(1)))
	rs.AppendRow(NewRow(int64(2)))

	rs.AddColumn(NewColumn("b"))
	require.Equal(2, rs.Len())
	require.Equal([]interface{}{nil, nil}, rs.ColumnValues(1))
}

func TestSetColumnValuesCreatesColumn(t *testing.T) {
	require := require.New(t)

	rs := NewResultSet(NewColumn("a"))
	rs.AppendRow(NewRow(int64(1)))

	rs.SetColumnValues("b", []interface{}{"x"})
	require.Len(rs.Columns(), 2)
	require.Equal([]interface{}{"x"}, rs.ColumnValues(1))

	// replacing an existing column keeps its descriptor
	col := rs.FindColumns("b")[0]
	rs.SetColumnValues("b", []interface{}{"y"})
	require.Equal(col, rs.FindColumns("b")[0])
	require.Equal([]interface{}{"y"}, rs.ColumnValues(1))
}

func TestDelColumn(t *testing.T) {
	require := require.New(t)

	rs := NewResultSet(NewColumn("a"), NewColumn("b"))
	rs.AppendRow(NewRow(1, 2))
	rs.DelColumn(rs.FindColumns("a")[0])
	require.Len(rs.Columns(), 1)
	require.Equal("b", rs.Columns()[0].Alias)
	require.Equal([]interface{}{2}, rs.ColumnValues(0))
}

func TestNormalizeNulls(t *testing.T) {
	require := require.New(t)

	df := NewDataFrameFromRows([]string{"a"}, []Row{
		NewRow(math.NaN()),
		NewRow(float64(1)),
	})
	df.NormalizeNulls()
	require.Equal([]interface{}{nil, float64(1)}, df.Column("a"))
}

func TestSetColumnPadsShortValues(t *testing.T) {
	require := require.New(t)

	df := NewDataFrameFromRows([]string{"a"}, []Row{NewRow(1), NewRow(2)})
	df.SetColumn("b", []interface{}{"x"})
	require.Equal([]interface{}{"x", nil}, df.Column("b"))
}

func TestFormatColumnSampleBounds(t *testing.T) {
	require := require.New(t)

	short := []string{"a", "b"}
	require.Equal("a, b", FormatColumnSample(short))

	long := make([]string, 25)
	for i := range long {
		long[i] = fmt.Sprintf("c%d", i)
	}
	s := FormatColumnSample(long)
	require.Contains(s, "c19")
	require.NotContains(s, "c20,")
	require.Contains(s, "and 5 more")
}
