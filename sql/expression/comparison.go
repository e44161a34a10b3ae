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
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/dolthub/stepflow/sql"
)

// Comparison is an expression that compares an expression against another.
type Comparison struct {
	BinaryExpression
}

// NewComparison creates a new comparison between two expressions.
func NewComparison(left, right sql.Expression) Comparison {
	return Comparison{BinaryExpression{Left: left, Right: right}}
}

// Compare the two given values. Under relaxed type inference incomparable
// values are coerced before comparing.
func (c *Comparison) Compare(ctx *sql.Context, a, b interface{}) (int, error) {
	if ctx.RelaxedTypes() {
		return sql.CompareRelaxed(a, b)
	}
	return sql.Compare(a, b)
}

func (c *Comparison) evalSides(ctx *sql.Context, row sql.Row) (interface{}, interface{}, error) {
	a, err := c.Left.Eval(ctx, row)
	if err != nil {
		return nil, nil, err
	}
	b, err := c.Right.Eval(ctx, row)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Equals is a comparison that checks an expression is equal to another.
type Equals struct {
	Comparison
}

var _ sql.Expression = (*Equals)(nil)

// NewEquals returns a new Equals expression.
func NewEquals(left, right sql.Expression) *Equals {
	return &Equals{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *Equals) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	a, b, err := e.evalSides(ctx, row)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	cmp, err := e.Compare(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return cmp == 0, nil
}

// WithChildren implements the Expression interface.
func (e *Equals) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewEquals(children[0], children[1]), nil
}

func (e *Equals) String() string {
	return fmt.Sprintf("%s = %s", e.Left, e.Right)
}

// LessThan is a comparison that checks an expression is less than another.
type LessThan struct {
	Comparison
}

var _ sql.Expression = (*LessThan)(nil)

// NewLessThan creates a new LessThan expression.
func NewLessThan(left, right sql.Expression) *LessThan {
	return &LessThan{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *LessThan) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	a, b, err := e.evalSides(ctx, row)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	cmp, err := e.Compare(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return cmp < 0, nil
}

// WithChildren implements the Expression interface.
func (e *LessThan) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewLessThan(children[0], children[1]), nil
}

func (e *LessThan) String() string {
	return fmt.Sprintf("%s < %s", e.Left, e.Right)
}

// GreaterThan is a comparison that checks an expression is greater than
// another.
type GreaterThan struct {
	Comparison
}

var _ sql.Expression = (*GreaterThan)(nil)

// NewGreaterThan creates a new GreaterThan expression.
func NewGreaterThan(left, right sql.Expression) *GreaterThan {
	return &GreaterThan{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *GreaterThan) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	a, b, err := e.evalSides(ctx, row)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	cmp, err := e.Compare(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return cmp > 0, nil
}

// WithChildren implements the Expression interface.
func (e *GreaterThan) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewGreaterThan(children[0], children[1]), nil
}

func (e *GreaterThan) String() string {
	return fmt.Sprintf("%s > %s", e.Left, e.Right)
}

// LessThanOrEqual is a comparison that checks an expression is equal or
// lower than another.
type LessThanOrEqual struct {
	Comparison
}

var _ sql.Expression = (*LessThanOrEqual)(nil)

// NewLessThanOrEqual creates a LessThanOrEqual expression.
func NewLessThanOrEqual(left, right sql.Expression) *LessThanOrEqual {
	return &LessThanOrEqual{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *LessThanOrEqual) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	a, b, err := e.evalSides(ctx, row)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	cmp, err := e.Compare(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return cmp <= 0, nil
}

// WithChildren implements the Expression interface.
func (e *LessThanOrEqual) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewLessThanOrEqual(children[0], children[1]), nil
}

func (e *LessThanOrEqual) String() string {
	return fmt.Sprintf("%s <= %s", e.Left, e.Right)
}

// GreaterThanOrEqual is a comparison that checks an expression is equal or
// greater than another.
type GreaterThanOrEqual struct {
	Comparison
}

var _ sql.Expression = (*GreaterThanOrEqual)(nil)

// NewGreaterThanOrEqual creates a GreaterThanOrEqual expression.
func NewGreaterThanOrEqual(left, right sql.Expression) *GreaterThanOrEqual {
	return &GreaterThanOrEqual{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *GreaterThanOrEqual) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	a, b, err := e.evalSides(ctx, row)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	cmp, err := e.Compare(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return cmp >= 0, nil
}

// WithChildren implements the Expression interface.
func (e *GreaterThanOrEqual) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewGreaterThanOrEqual(children[0], children[1]), nil
}

func (e *GreaterThanOrEqual) String() string {
	return fmt.Sprintf("%s >= %s", e.Left, e.Right)
}

// In is a comparison that checks an expression is inside a list of
// expressions.
type In struct {
	Comparison
}

var _ sql.Expression = (*In)(nil)

// NewIn creates an In expression.
func NewIn(left, right sql.Expression) *In {
	return &In{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (in *In) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	left, err := in.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}

	tuple, ok := in.Right.(Tuple)
	if !ok {
		return nil, sql.ErrUnsupportedFeature.New("IN over a non-tuple right side")
	}

	for _, el := range tuple.Children() {
		right, err := el.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if right == nil {
			continue
		}
		cmp, err := in.Compare(ctx, left, right)
		if err != nil {
			return nil, err
		}
		if cmp == 0 {
			return true, nil
		}
	}
	return false, nil
}

// WithChildren implements the Expression interface.
func (in *In) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(in, len(children), 2)
	}
	return NewIn(children[0], children[1]), nil
}

func (in *In) String() string {
	return fmt.Sprintf("%s IN %s", in.Left, in.Right)
}

// NotIn is a comparison that checks an expression is not inside a list of
// expressions.
type NotIn struct {
	In
}

var _ sql.Expression = (*NotIn)(nil)

// NewNotIn creates a NotIn expression.
func NewNotIn(left, right sql.Expression) *NotIn {
	return &NotIn{In{NewComparison(left, right)}}
}

// Eval implements the Expression interface.
func (in *NotIn) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := in.In.Eval(ctx, row)
	if err != nil || v == nil {
		return nil, err
	}
	return !v.(bool), nil
}

// WithChildren implements the Expression interface.
func (in *NotIn) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(in, len(children), 2)
	}
	return NewNotIn(children[0], children[1]), nil
}

func (in *NotIn) String() string {
	return fmt.Sprintf("%s NOT IN %s", in.Left, in.Right)
}

// Like performs pattern matching against two strings.
type Like struct {
	Comparison
}

var _ sql.Expression = (*Like)(nil)

// NewLike creates a new Like expression.
func NewLike(left, right sql.Expression) *Like {
	return &Like{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (l *Like) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	a, b, err := l.evalSides(ctx, row)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}

	value, err := cast.ToStringE(a)
	if err != nil {
		return nil, sql.ErrInvalidType.New(a)
	}
	pattern, err := cast.ToStringE(b)
	if err != nil {
		return nil, sql.ErrInvalidType.New(b)
	}

	re, err := regexp.Compile(likeToRegexp(pattern))
	if err != nil {
		return nil, err
	}
	return re.MatchString(value), nil
}

// WithChildren implements the Expression interface.
func (l *Like) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 2)
	}
	return NewLike(children[0], children[1]), nil
}

func (l *Like) String() string {
	return fmt.Sprintf("%s LIKE %s", l.Left, l.Right)
}

// likeToRegexp translates a SQL LIKE pattern into a case-insensitive
// anchored regular expression.
func likeToRegexp(pattern string) string {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
