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
	"fmt"
	"sort"
	"strings"

	"github.com/dolthub/stepflow/sql"
)

// Sort orders the rows of its child by the given fields. Nulls sort first in
// ascending order, last in descending order.
type Sort struct {
	// Fields to sort by, outermost first.
	Fields []SortField
	// Child node.
	Child sql.Node
}

var _ sql.Node = (*Sort)(nil)

// NewSort creates a new Sort node.
func NewSort(fields []SortField, child sql.Node) *Sort {
	return &Sort{Fields: fields, Child: child}
}

// Schema implements the Node interface.
func (s *Sort) Schema() []string {
	return s.Child.Schema()
}

// Children implements the Node interface.
func (s *Sort) Children() []sql.Node {
	return []sql.Node{s.Child}
}

// RowIter implements the Node interface.
func (s *Sort) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Sort")
	i, err := s.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	rows, err := sql.RowIterToRows(i)
	if err != nil {
		span.Finish()
		return nil, err
	}
	if err := sortRows(ctx, s.Fields, rows); err != nil {
		span.Finish()
		return nil, err
	}
	return sql.NewSpanIter(span, sql.RowsToRowIter(rows...)), nil
}

// WithChildren implements the Node interface.
func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSort(s.Fields, children[0]), nil
}

func (s *Sort) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s %s", f.Column, f.Order)
	}
	return fmt.Sprintf("Sort(%s)", strings.Join(parts, ", "))
}

func sortRows(ctx *sql.Context, fields []SortField, rows []sql.Row) error {
	var sortErr error
	sort.SliceStable(rows, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		for _, f := range fields {
			av, err := f.Column.Eval(ctx, rows[a])
			if err != nil {
				sortErr = err
				return false
			}
			bv, err := f.Column.Eval(ctx, rows[b])
			if err != nil {
				sortErr = err
				return false
			}

			if av == nil && bv == nil {
				continue
			}
			if av == nil {
				return f.Order == Ascending
			}
			if bv == nil {
				return f.Order == Descending
			}

			var cmp int
			if ctx.RelaxedTypes() {
				cmp, err = sql.CompareRelaxed(av, bv)
			} else {
				cmp, err = sql.Compare(av, bv)
				if sql.ErrTypeMismatch.Is(err) {
					cmp, err = sql.CompareRelaxed(av, bv)
				}
			}
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if f.Order == Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sortErr
}
