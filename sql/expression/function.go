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

// UnresolvedFunction represents a function call that has not yet been bound
// against the function registry.
type UnresolvedFunction struct {
	name string
	// IsAggregate reports whether the parser flagged this call as an
	// aggregation.
	IsAggregate bool
	// Arguments of the function.
	Arguments []sql.Expression
}

var _ sql.Expression = (*UnresolvedFunction)(nil)

// NewUnresolvedFunction creates an UnresolvedFunction.
func NewUnresolvedFunction(name string, agg bool, arguments ...sql.Expression) *UnresolvedFunction {
	return &UnresolvedFunction{
		name:        strings.ToLower(name),
		IsAggregate: agg,
		Arguments:   arguments,
	}
}

// Name implements the Nameable interface.
func (f *UnresolvedFunction) Name() string {
	return f.name
}

// Resolved implements the Expression interface.
func (f *UnresolvedFunction) Resolved() bool {
	return false
}

// Eval implements the Expression interface.
func (f *UnresolvedFunction) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, ErrUnresolvedExpression.New(f.String())
}

// Children implements the Expression interface.
func (f *UnresolvedFunction) Children() []sql.Expression {
	return f.Arguments
}

// WithChildren implements the Expression interface.
func (f *UnresolvedFunction) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(f.Arguments) {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), len(f.Arguments))
	}
	return NewUnresolvedFunction(f.name, f.IsAggregate, children...), nil
}

func (f *UnresolvedFunction) String() string {
	parts := make([]string, len(f.Arguments))
	for i, arg := range f.Arguments {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", f.name, strings.Join(parts, ", "))
}
