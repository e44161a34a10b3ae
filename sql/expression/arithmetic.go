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
	"math"

	"github.com/spf13/cast"

	"github.com/dolthub/stepflow/sql"
)

// Supported arithmetic operators.
const (
	PlusStr  = "+"
	MinusStr = "-"
	MultStr  = "*"
	DivStr   = "/"
	ModStr   = "%"
)

// Arithmetic expressions (+, -, *, /, %).
type Arithmetic struct {
	BinaryExpression
	Op string
}

var _ sql.Expression = (*Arithmetic)(nil)

// NewArithmetic creates a new Arithmetic expression.
func NewArithmetic(left, right sql.Expression, op string) *Arithmetic {
	return &Arithmetic{BinaryExpression{Left: left, Right: right}, op}
}

// NewPlus creates a new Arithmetic + expression.
func NewPlus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, PlusStr)
}

// NewMinus creates a new Arithmetic - expression.
func NewMinus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, MinusStr)
}

// NewMult creates a new Arithmetic * expression.
func NewMult(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, MultStr)
}

// NewDiv creates a new Arithmetic / expression.
func NewDiv(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, DivStr)
}

// Eval implements the Expression interface.
func (a *Arithmetic) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	lval, err := a.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	rval, err := a.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if lval == nil || rval == nil {
		return nil, nil
	}

	if li, lok := toInt64(lval); lok {
		if ri, rok := toInt64(rval); rok && a.Op != DivStr {
			return evalInt64(a.Op, li, ri)
		}
	}

	lf, err := cast.ToFloat64E(lval)
	if err != nil {
		return nil, sql.ErrInvalidType.New(lval)
	}
	rf, err := cast.ToFloat64E(rval)
	if err != nil {
		return nil, sql.ErrInvalidType.New(rval)
	}
	return evalFloat64(a.Op, lf, rf)
}

// WithChildren implements the Expression interface.
func (a *Arithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewArithmetic(children[0], children[1], a.Op), nil
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("%s %s %s", a.Left, a.Op, a.Right)
}

func evalInt64(op string, a, b int64) (interface{}, error) {
	switch op {
	case PlusStr:
		return a + b, nil
	case MinusStr:
		return a - b, nil
	case MultStr:
		return a * b, nil
	case ModStr:
		if b == 0 {
			// MySQL returns NULL for a zero modulus
			return nil, nil
		}
		return a % b, nil
	}
	return nil, sql.ErrUnsupportedFeature.New("operator " + op)
}

func evalFloat64(op string, a, b float64) (interface{}, error) {
	switch op {
	case PlusStr:
		return a + b, nil
	case MinusStr:
		return a - b, nil
	case MultStr:
		return a * b, nil
	case DivStr:
		if b == 0 {
			// MySQL returns NULL for division by zero
			return nil, nil
		}
		return a / b, nil
	case ModStr:
		if b == 0 {
			return nil, nil
		}
		return math.Mod(a, b), nil
	}
	return nil, sql.ErrUnsupportedFeature.New("operator " + op)
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}
