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

// Package plan defines the statement form queries are parsed into and the
// execution nodes the engine builds from it.
package plan

import "github.com/dolthub/stepflow/sql"

// SortOrder is the direction of a sort field.
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = iota
	// Descending order.
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// SortField is a single ORDER BY term.
type SortField struct {
	// Column to sort by.
	Column sql.Expression
	// Order of the sort.
	Order SortOrder
}

// Select is the parsed form of a SELECT statement. It is built with
// unresolved identifiers; the engine binds them to the columns of the frame
// it executes over.
type Select struct {
	// Targets are the expressions of the select list.
	Targets []sql.Expression
	// From is the referenced table name, empty when the statement has no
	// FROM clause.
	From string
	// FromAlias is the alias given to the FROM table, if any.
	FromAlias string
	// Where is the filter condition, nil when absent.
	Where sql.Expression
	// GroupBy are the grouping expressions.
	GroupBy []sql.Expression
	// Having is the post-grouping filter, nil when absent.
	Having sql.Expression
	// OrderBy are the sort fields, outermost first.
	OrderBy []SortField
	// Limit is the maximum number of rows to return, nil when absent.
	Limit *int64
	// Offset is the number of rows to skip, nil when absent.
	Offset *int64
	// Distinct removes duplicate rows from the result.
	Distinct bool
}

// TableRef returns the name queries use to reference the frame: the alias
// when one was given, the table name otherwise.
func (s *Select) TableRef() string {
	if s.FromAlias != "" {
		return s.FromAlias
	}
	return s.From
}

// Expressions returns every expression the statement carries, in evaluation
// order. The list shares no structure with the statement, but the
// expressions themselves are not copied.
func (s *Select) Expressions() []sql.Expression {
	var exprs []sql.Expression
	exprs = append(exprs, s.Targets...)
	if s.Where != nil {
		exprs = append(exprs, s.Where)
	}
	exprs = append(exprs, s.GroupBy...)
	if s.Having != nil {
		exprs = append(exprs, s.Having)
	}
	for _, f := range s.OrderBy {
		exprs = append(exprs, f.Column)
	}
	return exprs
}
