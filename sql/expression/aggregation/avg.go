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

// Avg returns the mean of the non-null values of the group, nil when every
// value was null.
type Avg struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Avg)(nil)

// NewAvg creates a new Avg aggregation.
func NewAvg(e sql.Expression) sql.Expression {
	return &Avg{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface. The buffer keeps the
// running sum and the count of non-null values.
func (a *Avg) NewBuffer() sql.Row {
	return sql.NewRow(float64(0), int64(0))
}

// Update implements the Aggregation interface.
func (a *Avg) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := a.Child.Eval(ctx, row)
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
	buffer[0] = buffer[0].(float64) + f
	buffer[1] = buffer[1].(int64) + 1
	return nil
}

// Eval implements the Expression interface. The row is the group buffer.
func (a *Avg) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	count := buffer[1].(int64)
	if count == 0 {
		return nil, nil
	}
	return buffer[0].(float64) / float64(count), nil
}

// WithChildren implements the Expression interface.
func (a *Avg) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAvg(children[0]), nil
}

func (a *Avg) String() string {
	return fmt.Sprintf("avg(%s)", a.Child)
}
