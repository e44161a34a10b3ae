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
	"math"
	"strings"
)

// DataFrame is a flat, column-major, in-memory tabular buffer. Column names
// are unique within a frame; the ResultSet layer guarantees this by keying
// frames with content-addressed hash names before handing them to the
// engine.
type DataFrame struct {
	names []string
	cols  [][]interface{}
}

// NewDataFrame creates an empty frame with the given column names.
func NewDataFrame(names ...string) *DataFrame {
	df := &DataFrame{names: append([]string(nil), names...)}
	df.cols = make([][]interface{}, len(names))
	return df
}

// NewDataFrameFromRows creates a frame from row-major data.
func NewDataFrameFromRows(names []string, rows []Row) *DataFrame {
	df := NewDataFrame(names...)
	for i := range df.cols {
		df.cols[i] = make([]interface{}, len(rows))
	}
	for r, row := range rows {
		for c := range names {
			if c < len(row) {
				df.cols[c][r] = row[c]
			}
		}
	}
	return df
}

// Names returns the column names in order.
func (d *DataFrame) Names() []string {
	return append([]string(nil), d.names...)
}

// NumCols returns the number of columns.
func (d *DataFrame) NumCols() int {
	return len(d.names)
}

// NumRows returns the number of rows.
func (d *DataFrame) NumRows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return len(d.cols[0])
}

// IndexOf returns the position of the column with the given name, or -1.
// The match is exact-case.
func (d *DataFrame) IndexOf(name string) int {
	for i, n := range d.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column, or nil if it is absent.
func (d *DataFrame) Column(name string) []interface{} {
	idx := d.IndexOf(name)
	if idx < 0 {
		return nil
	}
	return d.cols[idx]
}

// ColumnAt returns the values of the column at the given position.
func (d *DataFrame) ColumnAt(idx int) []interface{} {
	return d.cols[idx]
}

// SetColumn adds or replaces the named column. A shorter column is padded
// with nils to the frame's row count; on an empty frame it defines the row
// count.
func (d *DataFrame) SetColumn(name string, values []interface{}) {
	n := d.NumRows()
	if len(d.names) > 0 && len(values) < n {
		padded := make([]interface{}, n)
		copy(padded, values)
		values = padded
	}
	if idx := d.IndexOf(name); idx >= 0 {
		d.cols[idx] = values
		return
	}
	d.names = append(d.names, name)
	d.cols = append(d.cols, values)
}

// DropColumn removes the named column if present.
func (d *DataFrame) DropColumn(name string) {
	idx := d.IndexOf(name)
	if idx < 0 {
		return
	}
	d.names = append(d.names[:idx], d.names[idx+1:]...)
	d.cols = append(d.cols[:idx], d.cols[idx+1:]...)
}

// Row materializes the row at the given position.
func (d *DataFrame) Row(idx int) Row {
	row := make(Row, len(d.cols))
	for c := range d.cols {
		row[c] = d.cols[c][idx]
	}
	return row
}

// Rows materializes all rows.
func (d *DataFrame) Rows() []Row {
	rows := make([]Row, d.NumRows())
	for i := range rows {
		rows[i] = d.Row(i)
	}
	return rows
}

// AppendRow appends a row. Missing trailing values are filled with nil.
func (d *DataFrame) AppendRow(row Row) {
	for c := range d.cols {
		var v interface{}
		if c < len(row) {
			v = row[c]
		}
		d.cols[c] = append(d.cols[c], v)
	}
}

// LowerNameSet returns the set of lowercased column names.
func (d *DataFrame) LowerNameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.names))
	for _, n := range d.names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

// NormalizeNulls replaces NaN floats with nil in place. Engine joins can
// introduce NaN padding on unmatched sides; downstream consumers expect a
// canonical null.
func (d *DataFrame) NormalizeNulls() {
	for _, col := range d.cols {
		for i, v := range col {
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				col[i] = nil
			}
		}
	}
}
