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

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/dolthub/stepflow/sql"
)

// JoinType is the kind of a join node.
type JoinType byte

const (
	// JoinTypeInner keeps only matching row pairs.
	JoinTypeInner JoinType = iota
	// JoinTypeLeft keeps every left row, padding with nulls when no right
	// row matches.
	JoinTypeLeft
	// JoinTypeRight keeps every right row, padding with nulls when no left
	// row matches.
	JoinTypeRight
	// JoinTypeCross produces the full row product.
	JoinTypeCross
)

func (t JoinType) String() string {
	switch t {
	case JoinTypeLeft:
		return "left join"
	case JoinTypeRight:
		return "right join"
	case JoinTypeCross:
		return "cross join"
	default:
		return "inner join"
	}
}

// Join combines the rows of two nodes. The right side is fully materialized
// before iteration starts.
type Join struct {
	// Left child.
	Left sql.Node
	// Right child.
	Right sql.Node
	// Type of the join.
	Type JoinType
	// Condition of the join, nil for cross joins.
	Condition sql.Expression
}

var _ sql.Node = (*Join)(nil)

// NewJoin creates a new Join node.
func NewJoin(left, right sql.Node, typ JoinType, condition sql.Expression) *Join {
	return &Join{Left: left, Right: right, Type: typ, Condition: condition}
}

// Schema implements the Node interface. The left columns come first.
func (j *Join) Schema() []string {
	return append(append([]string{}, j.Left.Schema()...), j.Right.Schema()...)
}

// Children implements the Node interface.
func (j *Join) Children() []sql.Node {
	return []sql.Node{j.Left, j.Right}
}

// RowIter implements the Node interface.
func (j *Join) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Join", opentracing.Tag{Key: "type", Value: j.Type.String()})

	li, err := j.Left.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	left, err := sql.RowIterToRows(li)
	if err != nil {
		span.Finish()
		return nil, err
	}
	ri, err := j.Right.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	right, err := sql.RowIterToRows(ri)
	if err != nil {
		span.Finish()
		return nil, err
	}

	iter := &joinIter{
		ctx:        ctx,
		typ:        j.Type,
		cond:       j.Condition,
		left:       left,
		right:      right,
		leftWidth:  len(j.Left.Schema()),
		rightWidth: len(j.Right.Schema()),
	}
	return sql.NewSpanIter(span, iter), nil
}

// WithChildren implements the Node interface.
func (j *Join) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}
	return NewJoin(children[0], children[1], j.Type, j.Condition), nil
}

func (j *Join) String() string {
	if j.Condition == nil {
		return fmt.Sprintf("Join(%s)", j.Type)
	}
	return fmt.Sprintf("Join(%s, %s)", j.Type, j.Condition)
}

// joinIter runs a nested-loop join over two materialized row sets. For a
// right join the right side drives the loop so that every right row is
// emitted at least once, but the output keeps the left-then-right column
// layout.
type joinIter struct {
	ctx        *sql.Context
	typ        JoinType
	cond       sql.Expression
	left       []sql.Row
	right      []sql.Row
	leftWidth  int
	rightWidth int

	outerPos int
	innerPos int
	matched  bool
}

func (i *joinIter) outer() []sql.Row {
	if i.typ == JoinTypeRight {
		return i.right
	}
	return i.left
}

func (i *joinIter) inner() []sql.Row {
	if i.typ == JoinTypeRight {
		return i.left
	}
	return i.right
}

// combine builds an output row in left-then-right order from the current
// outer and inner rows. A nil inner row pads its side with nulls.
func (i *joinIter) combine(outerRow, innerRow sql.Row) sql.Row {
	var left, right sql.Row
	if i.typ == JoinTypeRight {
		left, right = innerRow, outerRow
	} else {
		left, right = outerRow, innerRow
	}
	if left == nil {
		left = make(sql.Row, i.leftWidth)
	}
	if right == nil {
		right = make(sql.Row, i.rightWidth)
	}
	return append(left.Copy(), right...)
}

func (i *joinIter) Next() (sql.Row, error) {
	for {
		outer := i.outer()
		if i.outerPos >= len(outer) {
			return nil, io.EOF
		}
		outerRow := outer[i.outerPos]

		inner := i.inner()
		if i.innerPos >= len(inner) {
			unmatched := !i.matched && (i.typ == JoinTypeLeft || i.typ == JoinTypeRight)
			i.outerPos++
			i.innerPos = 0
			i.matched = false
			if unmatched {
				return i.combine(outerRow, nil), nil
			}
			continue
		}

		innerRow := inner[i.innerPos]
		i.innerPos++

		row := i.combine(outerRow, innerRow)
		if i.cond != nil {
			ok, err := EvalBool(i.ctx, i.cond, row)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		i.matched = true
		return row, nil
	}
}

func (i *joinIter) Close() error {
	i.left = nil
	i.right = nil
	return nil
}
