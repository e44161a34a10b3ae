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

import "io"

// Expression is a node of an expression tree. Expressions are built
// unresolved, with identifiers referencing logical column names, and are
// rebound to physical frame columns before evaluation.
type Expression interface {
	// Resolved reports whether the expression and all its children are
	// bound to physical columns and functions.
	Resolved() bool
	// String returns a readable representation of the expression.
	String() string
	// Eval evaluates the expression against the given row.
	Eval(ctx *Context, row Row) (interface{}, error)
	// Children returns the child expressions of this expression.
	Children() []Expression
	// WithChildren returns a copy of the expression with the given children.
	WithChildren(children ...Expression) (Expression, error)
}

// Nameable is something that has a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Tableable is something that belongs to a table.
type Tableable interface {
	// Table returns the table name.
	Table() string
}

// Aggregation is an expression that aggregates rows into a buffer and
// produces its final value from that buffer.
type Aggregation interface {
	Expression
	// NewBuffer creates a fresh aggregation buffer.
	NewBuffer() Row
	// Update updates the buffer with the given row.
	Update(ctx *Context, buffer, row Row) error
}

// Node is a node of the execution plan built by the engine.
type Node interface {
	// Schema returns the names of the columns this node produces, in order.
	Schema() []string
	// Children returns the child nodes of this node.
	Children() []Node
	// RowIter produces an iterator over the rows of this node.
	RowIter(ctx *Context) (RowIter, error)
	// WithChildren returns a copy of the node with the given children.
	WithChildren(children ...Node) (Node, error)
	// String returns a readable representation of the node.
	String() string
}

// RowIter is an iterator that produces rows.
type RowIter interface {
	// Next retrieves the next row. It returns io.EOF after the last row.
	Next() (Row, error)
	// Close the iterator.
	Close() error
}

// RowIterToRows drains a row iterator into a slice of rows and closes it.
func RowIterToRows(i RowIter) ([]Row, error) {
	var rows []Row
	for {
		row, err := i.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = i.Close()
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, i.Close()
}

// RowsToRowIter creates an iterator over the given rows.
func RowsToRowIter(rows ...Row) RowIter {
	return &sliceRowIter{rows: rows}
}

type sliceRowIter struct {
	rows []Row
	idx  int
}

func (i *sliceRowIter) Next() (Row, error) {
	if i.idx >= len(i.rows) {
		return nil, io.EOF
	}
	r := i.rows[i.idx]
	i.idx++
	return r.Copy(), nil
}

func (i *sliceRowIter) Close() error {
	i.rows = nil
	return nil
}
