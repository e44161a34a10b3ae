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

package executor

import (
	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/plan"
	"github.com/dolthub/stepflow/sql/transform"
)

// SubSelectStep runs a nested statement over a previous step's result.
type SubSelectStep struct {
	Num       int
	Dataframe StepRef
	Query     *plan.Select
	// TableName the result is registered and re-tagged under. Defaults to
	// df_table.
	TableName string
	// AddAbsentCols backfills null columns for WHERE references absent
	// from the input, so conditions over optional model outputs do not
	// error.
	AddAbsentCols bool
}

// StepNum implements the Step interface.
func (s *SubSelectStep) StepNum() int { return s.Num }

func (e *Executor) subSelectStep(ctx *sql.Context, step *SubSelectStep) (*sql.ResultSet, error) {
	span, ctx := ctx.Span("executor.SubSelectStep")
	defer span.Finish()

	rs, err := e.input(step.Dataframe)
	if err != nil {
		return nil, err
	}
	tableName := step.TableName
	if tableName == "" {
		tableName = "df_table"
	}

	stmt := cloneSelect(step.Query)
	stmt.From = tableName
	stmt.FromAlias = ""

	if step.AddAbsentCols && stmt.Where != nil {
		for _, name := range whereColumns(stmt.Where) {
			if !hasColumnNamed(rs, name) {
				rs.AddColumn(sql.NewColumn(name))
			}
		}
	}
	if err := e.fillSelectParams(stmt); err != nil {
		return nil, err
	}

	df := rs.ToDataFrame()
	if stmt.Where != nil {
		stmt.Where = pruneWhere(stmt.Where, df.LowerNameSet())
	}

	res, err := e.Engine.QueryWithTypeFallback(ctx, stmt,
		map[string]*sql.DataFrame{tableName: df})
	if err != nil {
		return nil, err
	}

	var database string
	if cols := rs.Columns(); len(cols) > 0 {
		database = cols[0].Database
	}
	return sql.ResultSetFromDataFrame(res, database, tableName), nil
}

// whereColumns returns the last part of every identifier in the condition,
// in traversal order.
func whereColumns(where sql.Expression) []string {
	var names []string
	transform.InspectExpr(where, func(e sql.Expression) bool {
		if id, ok := e.(*expression.Identifier); ok {
			names = append(names, id.Last())
		}
		return true
	})
	return names
}

// hasColumnNamed checks the physical column names, not the aliases: the
// backfill must not shadow a source column exposed under another alias.
func hasColumnNamed(rs *sql.ResultSet, name string) bool {
	for _, col := range rs.Columns() {
		if col.Name == name {
			return true
		}
	}
	return false
}
