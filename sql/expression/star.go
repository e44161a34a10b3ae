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

import "github.com/dolthub/stepflow/sql"

// Star represents the selection of all available fields. A bare star is
// passed through to the engine untouched; a qualified star is expanded by
// the step layer into the physical columns of its table, in table order.
type Star struct {
	// Table is the qualifier of the star, or empty for a bare star.
	Table string
}

var _ sql.Expression = (*Star)(nil)

// NewStar returns a new bare Star expression.
func NewStar() *Star {
	return new(Star)
}

// NewQualifiedStar returns a star expression for a specific table.
func NewQualifiedStar(table string) *Star {
	return &Star{table}
}

// Resolved implements the Expression interface.
func (*Star) Resolved() bool {
	return false
}

// Eval implements the Expression interface.
func (s *Star) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, ErrUnresolvedExpression.New(s.String())
}

// Children implements the Expression interface.
func (*Star) Children() []sql.Expression {
	return nil
}

// WithChildren implements the Expression interface.
func (s *Star) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (s *Star) String() string {
	if s.Table == "" {
		return "*"
	}
	return s.Table + ".*"
}
