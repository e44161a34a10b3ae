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

	"github.com/spf13/cast"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
)

// Sum adds up the non-null values of the group. The result is nil when every
// value was null.
type Sum struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Sum)(nil)

// NewSum creates a new Sum aggregation.
func NewSum(e sql.Expression) sql.Expression {
	return &Sum{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface.
func (s *Sum) NewBuffer() sql.Row {
	return sql.NewRow(nil)
}

// Update implements the Aggregation interface.
func (s *Sum) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := s.Child.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return sql.ErrInvalidType.New(v)
	}
	if buffer[0] == nil {
		buffer[0] = float64(0)
	}
	buffer[0] = buffer[0].(float64) + f
	return nil
}

// Eval implements the Expression interface. The row is the group buffer.
func (s *Sum) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (s *Sum) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSum(children[0]), nil
}

func (s *Sum) String() string {
	return fmt.Sprintf("sum(%s)", s.Child)
}
