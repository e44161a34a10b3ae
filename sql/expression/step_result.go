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

// StepResult is a placeholder referencing the output of a previously
// executed step. The step layer replaces it with a literal holding the first
// value of that step's result before the query runs.
type StepResult struct {
	// StepNum identifies the referenced step.
	StepNum int
}

var _ sql.Expression = (*StepResult)(nil)

// NewStepResult creates a StepResult placeholder.
func NewStepResult(stepNum int) *StepResult {
	return &StepResult{StepNum: stepNum}
}

// Resolved implements the Expression interface.
func (s *StepResult) Resolved() bool {
	return false
}

// Eval implements the Expression interface.
func (s *StepResult) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, ErrUnresolvedExpression.New(s.String())
}

// Children implements the Expression interface.
func (s *StepResult) Children() []sql.Expression {
	return nil
}

// WithChildren implements the Expression interface.
func (s *StepResult) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (s *StepResult) String() string {
	return fmt.Sprintf("$result_%d", s.StepNum)
}
