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

package expression

import (
	"fmt"

	"github.com/dolthub/stepflow/sql"
)

// Between checks a value is between two given values.
type Between struct {
	// Val is the value to compare.
	Val sql.Expression
	// Lower is the lower bound.
	Lower sql.Expression
	// Upper is the upper bound.
	Upper sql.Expression
}

var _ sql.Expression = (*Between)(nil)

// NewBetween creates a new Between expression.
func NewBetween(val, lower, upper sql.Expression) *Between {
	return &Between{val, lower, upper}
}

// Resolved implements the Expression interface.
func (b *Between) Resolved() bool {
	return b.Val.Resolved() && b.Lower.Resolved() && b.Upper.Resolved()
}

// Eval implements the Expression interface.
func (b *Between) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	val, err := b.Val.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	lower, err := b.Lower.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	upper, err := b.Upper.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if val == nil || lower == nil || upper == nil {
		return nil, nil
	}

	compare := sql.Compare
	if ctx.RelaxedTypes() {
		compare = sql.CompareRelaxed
	}

	cmpLower, err := compare(val, lower)
	if err != nil {
		return nil, err
	}
	cmpUpper, err := compare(val, upper)
	if err != nil {
		return nil, err
	}
	return cmpLower >= 0 && cmpUpper <= 0, nil
}

// Children implements the Expression interface.
func (b *Between) Children() []sql.Expression {
	return []sql.Expression{b.Val, b.Lower, b.Upper}
}

// WithChildren implements the Expression interface.
func (b *Between) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(b, len(children), 3)
	}
	return NewBetween(children[0], children[1], children[2]), nil
}

func (b *Between) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", b.Val, b.Lower, b.Upper)
}
