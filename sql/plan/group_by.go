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
	"io"
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
)

// GroupBy groups the rows of its child by the grouping expressions and
// evaluates one output row per group. Non-aggregate selected expressions
// take their value from the first row of the group. With no grouping
// expressions the whole input is a single group.
type GroupBy struct {
	// Selected expressions of the output, aggregations included.
	Selected []sql.Expression
	// Grouping expressions.
	Grouping []sql.Expression
	// Child node.
	Child sql.Node
}

var _ sql.Node = (*GroupBy)(nil)

// NewGroupBy creates a new GroupBy node.
func NewGroupBy(selected, grouping []sql.Expression, child sql.Node) *GroupBy {
	return &GroupBy{Selected: selected, Grouping: grouping, Child: child}
}

// Schema implements the Node interface.
func (g *GroupBy) Schema() []string {
	names := make([]string, len(g.Selected))
	for i, e := range g.Selected {
		names[i] = ExprName(e)
	}
	return names
}

// Children implements the Node interface.
func (g *GroupBy) Children() []sql.Node {
	return []sql.Node{g.Child}
}

// RowIter implements the Node interface.
func (g *GroupBy) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.GroupBy")
	i, err := g.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	groups, err := g.buildGroups(ctx, i)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return sql.NewSpanIter(span, &groupByIter{ctx: ctx, selected: g.Selected, groups: groups}), nil
}

// WithChildren implements the Node interface.
func (g *GroupBy) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	return NewGroupBy(g.Selected, g.Grouping, children[0]), nil
}

func (g *GroupBy) String() string {
	parts := make([]string, len(g.Grouping))
	for i, e := range g.Grouping {
		parts[i] = e.String()
	}
	return fmt.Sprintf("GroupBy(%s)", strings.Join(parts, ", "))
}

// group keeps one buffer per selected expression. Aggregations own a real
// aggregation buffer, everything else holds the value of the first row.
type group struct {
	buffers []sql.Row
}

func (g *GroupBy) buildGroups(ctx *sql.Context, i sql.RowIter) ([]*group, error) {
	defer func() { _ = i.Close() }()

	var (
		order  []uint64
		groups = make(map[uint64]*group)
	)
	for {
		row, err := i.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key, err := g.groupKey(ctx, row)
		if err != nil {
			return nil, err
		}

		grp, ok := groups[key]
		if !ok {
			grp = &group{buffers: make([]sql.Row, len(g.Selected))}
			for idx, e := range g.Selected {
				if agg, ok := AsAggregation(e); ok {
					grp.buffers[idx] = agg.NewBuffer()
				} else {
					v, err := e.Eval(ctx, row)
					if err != nil {
						return nil, err
					}
					grp.buffers[idx] = sql.NewRow(v)
				}
			}
			groups[key] = grp
			order = append(order, key)
		}

		for idx, e := range g.Selected {
			if agg, ok := AsAggregation(e); ok {
				if err := agg.Update(ctx, grp.buffers[idx], row); err != nil {
					return nil, err
				}
			}
		}
	}

	result := make([]*group, len(order))
	for idx, key := range order {
		result[idx] = groups[key]
	}
	return result, nil
}

func (g *GroupBy) groupKey(ctx *sql.Context, row sql.Row) (uint64, error) {
	if len(g.Grouping) == 0 {
		return 0, nil
	}
	values := make([]interface{}, len(g.Grouping))
	for i, e := range g.Grouping {
		v, err := e.Eval(ctx, row)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}
	return hashstructure.Hash(values, nil)
}

type groupByIter struct {
	ctx      *sql.Context
	selected []sql.Expression
	groups   []*group
	idx      int
}

func (i *groupByIter) Next() (sql.Row, error) {
	if i.idx >= len(i.groups) {
		return nil, io.EOF
	}
	grp := i.groups[i.idx]
	i.idx++

	row := make(sql.Row, len(i.selected))
	for idx, e := range i.selected {
		if agg, ok := AsAggregation(e); ok {
			v, err := agg.Eval(i.ctx, grp.buffers[idx])
			if err != nil {
				return nil, err
			}
			row[idx] = v
		} else {
			row[idx] = grp.buffers[idx][0]
		}
	}
	return row, nil
}

func (i *groupByIter) Close() error {
	i.groups = nil
	return nil
}

// AsAggregation unwraps aliases to reach an aggregation expression, if the
// given expression holds one.
func AsAggregation(e sql.Expression) (sql.Aggregation, bool) {
	switch v := e.(type) {
	case sql.Aggregation:
		return v, true
	case *expression.Alias:
		return AsAggregation(v.Child)
	}
	return nil, false
}
