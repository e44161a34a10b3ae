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

// SystemVariable is a @@variable reference, resolved by the step layer
// against the static server-variable table before execution.
type SystemVariable struct {
	name string
}

var _ sql.Expression = (*SystemVariable)(nil)

// NewSystemVariable creates a SystemVariable reference. The name carries no
// @@ prefix.
func NewSystemVariable(name string) *SystemVariable {
	return &SystemVariable{name: name}
}

// Name implements the Nameable interface.
func (v *SystemVariable) Name() string {
	return v.name
}

// Resolved implements the Expression interface.
func (v *SystemVariable) Resolved() bool {
	return false
}

// Eval implements the Expression interface.
func (v *SystemVariable) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, ErrUnresolvedExpression.New(v.String())
}

// Children implements the Expression interface.
func (v *SystemVariable) Children() []sql.Expression {
	return nil
}

// WithChildren implements the Expression interface.
func (v *SystemVariable) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(v, len(children), 0)
	}
	return v, nil
}

func (v *SystemVariable) String() string {
	return "@@" + v.name
}
