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
	"strings"

	"github.com/dolthub/stepflow/sql"
)

// Project evaluates a set of expressions over the rows of its child.
type Project struct {
	// Projections to evaluate.
	Projections []sql.Expression
	// Child node.
	Child sql.Node
}

var _ sql.Node = (*Project)(nil)

// NewProject creates a new Project node.
func NewProject(projections []sql.Expression, child sql.Node) *Project {
	return &Project{Projections: projections, Child: child}
}

// Schema implements the Node interface.
func (p *Project) Schema() []string {
	names := make([]string, len(p.Projections))
	for i, e := range p.Projections {
		names[i] = ExprName(e)
	}
	return names
}

// Children implements the Node interface.
func (p *Project) Children() []sql.Node {
	return []sql.Node{p.Child}
}

// RowIter implements the Node interface.
func (p *Project) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Project")
	i, err := p.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return sql.NewSpanIter(span, &projectIter{ctx: ctx, projections: p.Projections, childIter: i}), nil
}

// WithChildren implements the Node interface.
func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewProject(p.Projections, children[0]), nil
}

func (p *Project) String() string {
	parts := make([]string, len(p.Projections))
	for i, e := range p.Projections {
		parts[i] = e.String()
	}
	return fmt.Sprintf("Project(%s)", strings.Join(parts, ", "))
}

type projectIter struct {
	ctx         *sql.Context
	projections []sql.Expression
	childIter   sql.RowIter
}

func (i *projectIter) Next() (sql.Row, error) {
	row, err := i.childIter.Next()
	if err != nil {
		return nil, err
	}
	result := make(sql.Row, len(i.projections))
	for idx, e := range i.projections {
		result[idx], err = e.Eval(i.ctx, row)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (i *projectIter) Close() error {
	return i.childIter.Close()
}

// ExprName returns the output column name of a select target: its declared
// name when it has one, its rendering otherwise.
func ExprName(e sql.Expression) string {
	if n, ok := e.(sql.Nameable); ok {
		return n.Name()
	}
	return e.String()
}
