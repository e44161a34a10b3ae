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

	"github.com/spf13/cast"

	"github.com/dolthub/stepflow/sql"
)

// Filter skips the rows of its child that do not match the condition.
type Filter struct {
	// Condition of the filter.
	Condition sql.Expression
	// Child node.
	Child sql.Node
}

var _ sql.Node = (*Filter)(nil)

// NewFilter creates a new Filter node.
func NewFilter(condition sql.Expression, child sql.Node) *Filter {
	return &Filter{Condition: condition, Child: child}
}

// Schema implements the Node interface.
func (f *Filter) Schema() []string {
	return f.Child.Schema()
}

// Children implements the Node interface.
func (f *Filter) Children() []sql.Node {
	return []sql.Node{f.Child}
}

// RowIter implements the Node interface.
func (f *Filter) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Filter")
	i, err := f.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return sql.NewSpanIter(span, &filterIter{ctx: ctx, cond: f.Condition, childIter: i}), nil
}

// WithChildren implements the Node interface.
func (f *Filter) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	return NewFilter(f.Condition, children[0]), nil
}

func (f *Filter) String() string {
	return fmt.Sprintf("Filter(%s)", f.Condition)
}

type filterIter struct {
	ctx       *sql.Context
	cond      sql.Expression
	childIter sql.RowIter
}

func (i *filterIter) Next() (sql.Row, error) {
	for {
		row, err := i.childIter.Next()
		if err != nil {
			return nil, err
		}
		ok, err := EvalBool(i.ctx, i.cond, row)
		if err != nil {
			return nil, err
		}
		if ok {
			return row, nil
		}
	}
}

func (i *filterIter) Close() error {
	return i.childIter.Close()
}

// EvalBool evaluates the given expression as a condition. A null result is
// false.
func EvalBool(ctx *sql.Context, e sql.Expression, row sql.Row) (bool, error) {
	v, err := e.Eval(ctx, row)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, sql.ErrInvalidType.New(v)
	}
	return b, nil
}
