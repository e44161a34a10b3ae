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

	"github.com/spf13/cast"

	"github.com/dolthub/stepflow/sql"
)

// And checks whether two conditions are both true.
type And struct {
	BinaryExpression
}

var _ sql.Expression = (*And)(nil)

// NewAnd creates a new And expression.
func NewAnd(left, right sql.Expression) *And {
	return &And{BinaryExpression{Left: left, Right: right}}
}

// JoinAnd joins several expressions with ands.
func JoinAnd(exprs ...sql.Expression) sql.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		result := NewAnd(exprs[0], exprs[1])
		for _, e := range exprs[2:] {
			result = NewAnd(result, e)
		}
		return result
	}
}

// Eval implements the Expression interface.
func (a *And) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	lval, err := evalBool(ctx, a.Left, row)
	if err != nil {
		return nil, err
	}
	if lval != nil && !*lval {
		return false, nil
	}

	rval, err := evalBool(ctx, a.Right, row)
	if err != nil {
		return nil, err
	}
	if rval != nil && !*rval {
		return false, nil
	}

	if lval == nil || rval == nil {
		return nil, nil
	}
	return true, nil
}

// WithChildren implements the Expression interface.
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewAnd(children[0], children[1]), nil
}

func (a *And) String() string {
	return fmt.Sprintf("%s AND %s", a.Left, a.Right)
}

// Or checks whether one of the two given conditions is true.
type Or struct {
	BinaryExpression
}

var _ sql.Expression = (*Or)(nil)

// NewOr creates a new Or expression.
func NewOr(left, right sql.Expression) *Or {
	return &Or{BinaryExpression{Left: left, Right: right}}
}

// Eval implements the Expression interface.
func (o *Or) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	lval, err := evalBool(ctx, o.Left, row)
	if err != nil {
		return nil, err
	}
	if lval != nil && *lval {
		return true, nil
	}

	rval, err := evalBool(ctx, o.Right, row)
	if err != nil {
		return nil, err
	}
	if rval != nil && *rval {
		return true, nil
	}

	if lval == nil || rval == nil {
		return nil, nil
	}
	return false, nil
}

// WithChildren implements the Expression interface.
func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(o, len(children), 2)
	}
	return NewOr(children[0], children[1]), nil
}

func (o *Or) String() string {
	return fmt.Sprintf("%s OR %s", o.Left, o.Right)
}

// Not is a node that negates an expression.
type Not struct {
	UnaryExpression
}

var _ sql.Expression = (*Not)(nil)

// NewNot returns a new Not node.
func NewNot(child sql.Expression) *Not {
	return &Not{UnaryExpression{child}}
}

// Eval implements the Expression interface.
func (n *Not) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := evalBool(ctx, n.Child, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return !*v, nil
}

// WithChildren implements the Expression interface.
func (n *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 1)
	}
	return NewNot(children[0]), nil
}

func (n *Not) String() string {
	return fmt.Sprintf("NOT %s", n.Child)
}

// evalBool evaluates the expression and coerces the result to a boolean.
// A nil result stays nil, following SQL three-valued logic.
func evalBool(ctx *sql.Context, e sql.Expression, row sql.Row) (*bool, error) {
	v, err := e.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(v)
	}
	return &b, nil
}
