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

package function

import (
	"fmt"
	"strings"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
)

// Coalesce returns the first non-nil argument, or nil if all arguments are
// nil.
type Coalesce struct {
	args []sql.Expression
}

var _ sql.Expression = (*Coalesce)(nil)

// NewCoalesce creates a new Coalesce expression.
func NewCoalesce(args ...sql.Expression) (sql.Expression, error) {
	if len(args) == 0 {
		return nil, sql.ErrInvalidArgumentNumber.New("coalesce", "1 or more", 0)
	}
	return &Coalesce{args: args}, nil
}

// Resolved implements the Expression interface.
func (c *Coalesce) Resolved() bool {
	return expression.ExpressionsResolved(c.args...)
}

// Eval implements the Expression interface.
func (c *Coalesce) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	for _, arg := range c.args {
		v, err := arg.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

// Children implements the Expression interface.
func (c *Coalesce) Children() []sql.Expression {
	return c.args
}

// WithChildren implements the Expression interface.
func (c *Coalesce) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.args) {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), len(c.args))
	}
	return NewCoalesce(children...)
}

func (c *Coalesce) String() string {
	parts := make([]string, len(c.args))
	for i, arg := range c.args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("coalesce(%s)", strings.Join(parts, ", "))
}
