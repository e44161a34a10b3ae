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
	"strings"

	"github.com/dolthub/stepflow/sql"
)

// Tuple is a fixed-size collection of expressions.
type Tuple []sql.Expression

var _ sql.Expression = (Tuple)(nil)

// NewTuple creates a new Tuple expression.
func NewTuple(exprs ...sql.Expression) Tuple {
	return Tuple(exprs)
}

// Resolved implements the Expression interface.
func (t Tuple) Resolved() bool {
	for _, child := range t {
		if !child.Resolved() {
			return false
		}
	}
	return true
}

// Eval implements the Expression interface.
func (t Tuple) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if len(t) == 1 {
		return t[0].Eval(ctx, row)
	}
	values := make([]interface{}, len(t))
	for i, child := range t {
		v, err := child.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Children implements the Expression interface.
func (t Tuple) Children() []sql.Expression {
	return t
}

// WithChildren implements the Expression interface.
func (t Tuple) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(t) {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), len(t))
	}
	return NewTuple(children...), nil
}

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, child := range t {
		parts[i] = child.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
