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

import "fmt"

// ResultSet is the schema-tagged tabular buffer produced by one query-plan
// step and consumed by another. It is an ordered sequence of Columns plus
// column-major values. A step consumes its inputs read-only and always
// produces a new ResultSet; intra-call mutation (adding a missing column,
// deleting a helper column) happens before the result is published.
type ResultSet struct {
	columns []*Column
	values  [][]interface{}

	// IsPrediction marks result sets originating from a model's inference
	// output. Join steps correlate such results by row id instead of by
	// condition.
	IsPrediction bool
}

// NewResultSet creates an empty result set with the given columns.
func NewResultSet(columns ...*Column) *ResultSet {
	return &ResultSet{
		columns: columns,
		values:  make([][]interface{}, len(columns)),
	}
}

// Columns returns the column descriptors in order.
func (r *ResultSet) Columns() []*Column {
	return r.columns
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if len(r.values) == 0 {
		return 0
	}
	return len(r.values[0])
}

// AppendRow appends one row of values, in column order.
func (r *ResultSet) AppendRow(row Row) {
	for i := range r.values {
		var v interface{}
		if i < len(row) {
			v = row[i]
		}
		r.values[i] = append(r.values[i], v)
	}
}

// AddColumn appends a column descriptor, backfilling nil values for
// existing rows.
func (r *ResultSet) AddColumn(col *Column) {
	r.columns = append(r.columns, col)
	r.values = append(r.values, make([]interface{}, r.Len()))
}

// FindColumns returns every column whose alias matches the given name.
func (r *ResultSet) FindColumns(alias string) []*Column {
	var cols []*Column
	for _, col := range r.columns {
		if col.Alias == alias {
			cols = append(cols, col)
		}
	}
	return cols
}

// ColumnIndex returns the position of the given column descriptor, or -1.
func (r *ResultSet) ColumnIndex(col *Column) int {
	for i, c := range r.columns {
		if c == col {
			return i
		}
	}
	return -1
}

// ColumnValues returns the values of the column at the given position.
func (r *ResultSet) ColumnValues(idx int) []interface{} {
	return r.values[idx]
}

// SetColumnValues replaces the values of the column with the given alias,
// creating the column if it does not exist yet.
func (r *ResultSet) SetColumnValues(alias string, values []interface{}) {
	cols := r.FindColumns(alias)
	if len(cols) == 0 {
		r.AddColumn(NewColumn(alias))
		cols = r.FindColumns(alias)
	}
	r.values[r.ColumnIndex(cols[0])] = values
}

// DelColumn removes the given column descriptor and its values.
func (r *ResultSet) DelColumn(col *Column) {
	idx := r.ColumnIndex(col)
	if idx < 0 {
		return
	}
	r.columns = append(r.columns[:idx], r.columns[idx+1:]...)
	r.values = append(r.values[:idx], r.values[idx+1:]...)
}

// ToDataFrame converts the result set to a flat frame keyed by column
// aliases. Duplicate aliases get a numeric suffix so the frame's names stay
// unique.
func (r *ResultSet) ToDataFrame() *DataFrame {
	names := make([]string, len(r.columns))
	seen := map[string]int{}
	for i, col := range r.columns {
		name := col.Alias
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name] = 1
		names[i] = name
	}
	df := NewDataFrame(names...)
	for i := range r.values {
		df.cols[i] = r.values[i]
	}
	return df
}

// ToDataFrameCols converts the result set to a flat frame keyed by
// collision-free hash names under the given role prefix, and returns the
// mapping from hash name back to the column descriptor.
func (r *ResultSet) ToDataFrameCols(prefix string) (*DataFrame, map[string]*Column) {
	names := make([]string, len(r.columns))
	mapping := make(map[string]*Column, len(r.columns))
	for i, col := range r.columns {
		name := col.HashName(prefix)
		names[i] = name
		mapping[name] = col
	}
	df := NewDataFrame(names...)
	for i := range r.values {
		df.cols[i] = r.values[i]
	}
	return df, mapping
}

// ResultSetFromDataFrame wraps a frame as a result set, tagging every column
// with the given database and table.
func ResultSetFromDataFrame(df *DataFrame, database, table string) *ResultSet {
	columns := make([]*Column, df.NumCols())
	for i, name := range df.names {
		columns[i] = &Column{
			Name:       name,
			Alias:      name,
			TableName:  table,
			TableAlias: table,
			Database:   database,
		}
	}
	rs := NewResultSet(columns...)
	for i := range rs.values {
		rs.values[i] = df.cols[i]
	}
	return rs
}

// ResultSetFromDataFrameCols rebuilds a result set from a frame whose
// columns are hash names, restoring the column metadata recorded in the
// mapping. When strict is false, frame columns absent from the mapping are
// tolerated and wrapped as plain columns; this accommodates projections that
// introduce computed outputs. Mapping entries absent from the frame are
// ignored, accommodating projections that drop columns.
func ResultSetFromDataFrameCols(df *DataFrame, columns map[string]*Column, strict bool) (*ResultSet, error) {
	out := make([]*Column, df.NumCols())
	for i, name := range df.names {
		col, ok := columns[name]
		if !ok {
			if strict {
				return nil, ErrColumnNotFound.New(name)
			}
			col = NewColumn(name)
		}
		out[i] = col
	}
	rs := NewResultSet(out...)
	for i := range rs.values {
		rs.values[i] = df.cols[i]
	}
	return rs, nil
}
