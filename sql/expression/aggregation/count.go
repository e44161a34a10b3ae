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

package aggregation

import (
	"fmt"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
)

// Count counts the rows of the group. count(*) counts every row, count(expr)
// only rows where expr is not null.
type Count struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Count)(nil)

// NewCount creates a new Count aggregation.
func NewCount(e sql.Expression) sql.Expression {
	return &Count{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface.
func (c *Count) NewBuffer() sql.Row {
	return sql.NewRow(int64(0))
}

// Update implements the Aggregation interface.
func (c *Count) Update(ctx *sql.Context, buffer, row sql.Row) error {
	var inc bool
	if _, ok := c.Child.(*expression.Star); ok {
		inc = true
	} else {
		v, err := c.Child.Eval(ctx, row)
		if err != nil {
			return err
		}
		inc = v != nil
	}
	if inc {
		buffer[0] = buffer[0].(int64) + 1
	}
	return nil
}

// Eval implements the Expression interface. The row is the group buffer.
func (c *Count) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}

// Resolved implements the Expression interface. count(*) is resolved even
// though Star itself never is.
func (c *Count) Resolved() bool {
	if _, ok := c.Child.(*expression.Star); ok {
		return true
	}
	return c.Child.Resolved()
}

// WithChildren implements the Expression interface.
func (c *Count) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return NewCount(children[0]), nil
}

func (c *Count) String() string {
	return fmt.Sprintf("count(%s)", c.Child)
}
