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
	"github.com/mitchellh/hashstructure"

	"github.com/dolthub/stepflow/sql"
)

// Distinct drops the rows of its child already seen during iteration.
type Distinct struct {
	// Child node.
	Child sql.Node
}

var _ sql.Node = (*Distinct)(nil)

// NewDistinct creates a new Distinct node.
func NewDistinct(child sql.Node) *Distinct {
	return &Distinct{Child: child}
}

// Schema implements the Node interface.
func (d *Distinct) Schema() []string {
	return d.Child.Schema()
}

// Children implements the Node interface.
func (d *Distinct) Children() []sql.Node {
	return []sql.Node{d.Child}
}

// RowIter implements the Node interface.
func (d *Distinct) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Distinct")
	i, err := d.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return sql.NewSpanIter(span, &distinctIter{childIter: i, seen: make(map[uint64]struct{})}), nil
}

// WithChildren implements the Node interface.
func (d *Distinct) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 1)
	}
	return NewDistinct(children[0]), nil
}

func (d *Distinct) String() string {
	return "Distinct"
}

type distinctIter struct {
	childIter sql.RowIter
	seen      map[uint64]struct{}
}

func (i *distinctIter) Next() (sql.Row, error) {
	for {
		row, err := i.childIter.Next()
		if err != nil {
			return nil, err
		}
		hash, err := hashstructure.Hash(row, nil)
		if err != nil {
			return nil, err
		}
		if _, ok := i.seen[hash]; ok {
			continue
		}
		i.seen[hash] = struct{}{}
		return row, nil
	}
}

func (i *distinctIter) Close() error {
	i.seen = nil
	return i.childIter.Close()
}
