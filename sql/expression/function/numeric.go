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
	"math"

	"github.com/spf13/cast"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
)

// Abs returns the absolute value of a number.
type Abs struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Abs)(nil)

// NewAbs creates a new Abs expression.
func NewAbs(e sql.Expression) sql.Expression {
	return &Abs{expression.UnaryExpression{Child: e}}
}

// Eval implements the Expression interface.
func (a *Abs) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := a.Child.Eval(ctx, row)
	if err != nil || v == nil {
		return nil, err
	}
	switch n := v.(type) {
	case int:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	case int64:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(v)
	}
	return math.Abs(f), nil
}

// WithChildren implements the Expression interface.
func (a *Abs) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAbs(children[0]), nil
}

func (a *Abs) String() string {
	return fmt.Sprintf("abs(%s)", a.Child)
}

// Round rounds a number to the given number of decimal places, zero when the
// second argument is omitted.
type Round struct {
	expression.BinaryExpression
}

var _ sql.Expression = (*Round)(nil)

// NewRound creates a new Round expression.
func NewRound(args ...sql.Expression) (sql.Expression, error) {
	var right sql.Expression
	switch len(args) {
	case 1:
	case 2:
		right = args[1]
	default:
		return nil, sql.ErrInvalidArgumentNumber.New("round", "1 or 2", len(args))
	}
	return &Round{expression.BinaryExpression{Left: args[0], Right: right}}, nil
}

// Resolved implements the Expression interface.
func (r *Round) Resolved() bool {
	if !r.Left.Resolved() {
		return false
	}
	return r.Right == nil || r.Right.Resolved()
}

// Eval implements the Expression interface.
func (r *Round) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := r.Left.Eval(ctx, row)
	if err != nil || v == nil {
		return nil, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(v)
	}

	var places int64
	if r.Right != nil {
		pv, err := r.Right.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if pv == nil {
			return nil, nil
		}
		places, err = cast.ToInt64E(pv)
		if err != nil {
			return nil, sql.ErrInvalidType.New(pv)
		}
	}

	shift := math.Pow(10, float64(places))
	return math.Round(f*shift) / shift, nil
}

// Children implements the Expression interface.
func (r *Round) Children() []sql.Expression {
	if r.Right == nil {
		return []sql.Expression{r.Left}
	}
	return []sql.Expression{r.Left, r.Right}
}

// WithChildren implements the Expression interface.
func (r *Round) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	expected := len(r.Children())
	if len(children) != expected {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), expected)
	}
	return NewRound(children...)
}

func (r *Round) String() string {
	if r.Right == nil {
		return fmt.Sprintf("round(%s)", r.Left)
	}
	return fmt.Sprintf("round(%s, %s)", r.Left, r.Right)
}
