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

// Package executor runs the steps of a federated query plan. Each step
// consumes the result sets of previous steps, rewrites its statement against
// their physical column names and delegates execution to the embedded
// engine.
package executor

import (
	"fmt"

	"github.com/dolthub/stepflow"
	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/plan"
)

// Step is one executable node of a query plan.
type Step interface {
	// StepNum identifies the step; its result is published under this
	// number.
	StepNum() int
}

// StepRef references the published result of a previous step.
type StepRef struct {
	StepNum int
}

// Executor runs plan steps and accumulates their results.
type Executor struct {
	// Engine the steps delegate statement execution to.
	Engine *stepflow.Engine
	// StepsData holds each executed step's result, keyed by step number.
	StepsData map[int]*sql.ResultSet
}

// New creates an executor with a fresh engine and no published results.
func New() *Executor {
	return &Executor{
		Engine:    stepflow.New(),
		StepsData: map[int]*sql.ResultSet{},
	}
}

// Call executes one step and publishes its result under the step's number.
func (e *Executor) Call(ctx *sql.Context, step Step) (*sql.ResultSet, error) {
	var (
		result *sql.ResultSet
		err    error
	)
	switch s := step.(type) {
	case *JoinStep:
		result, err = e.joinStep(ctx, s)
	case *ProjectStep:
		result, err = e.projectStep(ctx, s)
	case *SubSelectStep:
		result, err = e.subSelectStep(ctx, s)
	case *QueryStep:
		result, err = e.queryStep(ctx, s)
	default:
		return nil, sql.ErrUnsupportedFeature.New(fmt.Sprintf("step %T", step))
	}
	if err != nil {
		return nil, err
	}
	e.StepsData[step.StepNum()] = result
	return result, nil
}

// input fetches the published result a step reference points at.
func (e *Executor) input(ref StepRef) (*sql.ResultSet, error) {
	rs, ok := e.StepsData[ref.StepNum]
	if !ok {
		return nil, sql.ErrStepResultNotFound.New(ref.StepNum)
	}
	return rs, nil
}

// cloneSelect shallow-copies a statement so a step can rewrite it without
// mutating the plan shared across retries.
func cloneSelect(stmt *plan.Select) *plan.Select {
	copied := *stmt
	copied.Targets = append([]sql.Expression(nil), stmt.Targets...)
	copied.GroupBy = append([]sql.Expression(nil), stmt.GroupBy...)
	copied.OrderBy = append([]plan.SortField(nil), stmt.OrderBy...)
	return &copied
}
