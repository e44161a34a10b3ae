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

	"github.com/spf13/cast"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
)

// Lower converts a string to its lowercase form.
type Lower struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Lower)(nil)

// NewLower creates a new Lower expression.
func NewLower(e sql.Expression) sql.Expression {
	return &Lower{expression.UnaryExpression{Child: e}}
}

// Eval implements the Expression interface.
func (l *Lower) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := l.Child.Eval(ctx, row)
	if err != nil || v == nil {
		return nil, err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(v)
	}
	return strings.ToLower(s), nil
}

// WithChildren implements the Expression interface.
func (l *Lower) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLower(children[0]), nil
}

func (l *Lower) String() string {
	return fmt.Sprintf("lower(%s)", l.Child)
}

// Upper converts a string to its uppercase form.
type Upper struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Upper)(nil)

// NewUpper creates a new Upper expression.
func NewUpper(e sql.Expression) sql.Expression {
	return &Upper{expression.UnaryExpression{Child: e}}
}

// Eval implements the Expression interface.
func (u *Upper) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := u.Child.Eval(ctx, row)
	if err != nil || v == nil {
		return nil, err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(v)
	}
	return strings.ToUpper(s), nil
}

// WithChildren implements the Expression interface.
func (u *Upper) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 1)
	}
	return NewUpper(children[0]), nil
}

func (u *Upper) String() string {
	return fmt.Sprintf("upper(%s)", u.Child)
}

// Length returns the length of a string in bytes.
type Length struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Length)(nil)

// NewLength creates a new Length expression.
func NewLength(e sql.Expression) sql.Expression {
	return &Length{expression.UnaryExpression{Child: e}}
}

// Eval implements the Expression interface.
func (l *Length) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := l.Child.Eval(ctx, row)
	if err != nil || v == nil {
		return nil, err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(v)
	}
	return int64(len(s)), nil
}

// WithChildren implements the Expression interface.
func (l *Length) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLength(children[0]), nil
}

func (l *Length) String() string {
	return fmt.Sprintf("length(%s)", l.Child)
}

// Concat joins the string renderings of its arguments. A nil argument makes
// the result nil.
type Concat struct {
	args []sql.Expression
}

var _ sql.Expression = (*Concat)(nil)

// NewConcat creates a new Concat expression.
func NewConcat(args ...sql.Expression) (sql.Expression, error) {
	if len(args) == 0 {
		return nil, sql.ErrInvalidArgumentNumber.New("concat", "1 or more", 0)
	}
	return &Concat{args: args}, nil
}

// Resolved implements the Expression interface.
func (c *Concat) Resolved() bool {
	return expression.ExpressionsResolved(c.args...)
}

// Eval implements the Expression interface.
func (c *Concat) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	var sb strings.Builder
	for _, arg := range c.args {
		v, err := arg.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, sql.ErrInvalidType.New(v)
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// Children implements the Expression interface.
func (c *Concat) Children() []sql.Expression {
	return c.args
}

// WithChildren implements the Expression interface.
func (c *Concat) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.args) {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), len(c.args))
	}
	return NewConcat(children...)
}

func (c *Concat) String() string {
	parts := make([]string, len(c.args))
	for i, arg := range c.args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("concat(%s)", strings.Join(parts, ", "))
}
