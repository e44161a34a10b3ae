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

// Min keeps the smallest non-null value of the group.
type Min struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Min)(nil)

// NewMin creates a new Min aggregation.
func NewMin(e sql.Expression) sql.Expression {
	return &Min{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface.
func (m *Min) NewBuffer() sql.Row {
	return sql.NewRow(nil)
}

// Update implements the Aggregation interface.
func (m *Min) Update(ctx *sql.Context, buffer, row sql.Row) error {
	return updateExtremum(ctx, m.Child, buffer, row, -1)
}

// Eval implements the Expression interface. The row is the group buffer.
func (m *Min) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (m *Min) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMin(children[0]), nil
}

func (m *Min) String() string {
	return fmt.Sprintf("min(%s)", m.Child)
}

// Max keeps the largest non-null value of the group.
type Max struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Max)(nil)

// NewMax creates a new Max aggregation.
func NewMax(e sql.Expression) sql.Expression {
	return &Max{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface.
func (m *Max) NewBuffer() sql.Row {
	return sql.NewRow(nil)
}

// Update implements the Aggregation interface.
func (m *Max) Update(ctx *sql.Context, buffer, row sql.Row) error {
	return updateExtremum(ctx, m.Child, buffer, row, 1)
}

// Eval implements the Expression interface. The row is the group buffer.
func (m *Max) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (m *Max) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMax(children[0]), nil
}

func (m *Max) String() string {
	return fmt.Sprintf("max(%s)", m.Child)
}

// updateExtremum replaces buffer[0] with the evaluated value when comparing
// them yields the given sign.
func updateExtremum(ctx *sql.Context, child sql.Expression, buffer, row sql.Row, sign int) error {
	v, err := child.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if buffer[0] == nil {
		buffer[0] = v
		return nil
	}

	var cmp int
	if ctx.RelaxedTypes() {
		cmp, err = sql.CompareRelaxed(v, buffer[0])
	} else {
		cmp, err = sql.Compare(v, buffer[0])
	}
	if err != nil {
		return err
	}
	if cmp == sign {
		buffer[0] = v
	}
	return nil
}
