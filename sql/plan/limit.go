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

	"github.com/dolthub/stepflow/sql"
)

// Limit skips Offset rows of its child and then emits at most Limit rows. A
// negative Limit means no bound.
type Limit struct {
	// Limit is the maximum number of rows to emit, negative for unbounded.
	Limit int64
	// Offset is the number of rows to skip first.
	Offset int64
	// Child node.
	Child sql.Node
}

var _ sql.Node = (*Limit)(nil)

// NewLimit creates a new Limit node.
func NewLimit(limit, offset int64, child sql.Node) *Limit {
	return &Limit{Limit: limit, Offset: offset, Child: child}
}

// Schema implements the Node interface.
func (l *Limit) Schema() []string {
	return l.Child.Schema()
}

// Children implements the Node interface.
func (l *Limit) Children() []sql.Node {
	return []sql.Node{l.Child}
}

// RowIter implements the Node interface.
func (l *Limit) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Limit")
	i, err := l.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return sql.NewSpanIter(span, &limitIter{limit: l.Limit, skip: l.Offset, childIter: i}), nil
}

// WithChildren implements the Node interface.
func (l *Limit) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLimit(l.Limit, l.Offset, children[0]), nil
}

func (l *Limit) String() string {
	if l.Limit < 0 {
		return fmt.Sprintf("Offset(%d)", l.Offset)
	}
	return fmt.Sprintf("Limit(%d, %d)", l.Limit, l.Offset)
}

type limitIter struct {
	limit     int64
	skip      int64
	emitted   int64
	childIter sql.RowIter
}

func (i *limitIter) Next() (sql.Row, error) {
	for i.skip > 0 {
		if _, err := i.childIter.Next(); err != nil {
			return nil, err
		}
		i.skip--
	}
	if i.limit >= 0 && i.emitted >= i.limit {
		return nil, io.EOF
	}
	row, err := i.childIter.Next()
	if err != nil {
		return nil, err
	}
	i.emitted++
	return row, nil
}

func (i *limitIter) Close() error {
	return i.childIter.Close()
}
