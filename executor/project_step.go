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

// ProjectStep selects columns from a previous step's result.
type ProjectStep struct {
	Num       int
	Dataframe StepRef
	// Columns to project. Identifiers reference the input's logical
	// names; stars expand to the columns of their table.
	Columns []sql.Expression
}

// StepNum implements the Step interface.
func (s *ProjectStep) StepNum() int { return s.Num }

func (e *Executor) projectStep(ctx *sql.Context, step *ProjectStep) (*sql.ResultSet, error) {
	span, ctx := ctx.Span("executor.ProjectStep")
	defer span.Finish()

	rs, err := e.input(step.Dataframe)
	if err != nil {
		return nil, err
	}
	df, colMap := rs.ToDataFrameCols("")
	idx := newColIndex(rs, "")

	columns, err := e.fillParamsList(step.Columns)
	if err != nil {
		return nil, err
	}
	targets, err := resolveTargets(columns, idx)
	if err != nil {
		return nil, err
	}

	stmt := &plan.Select{Targets: targets, From: "df_table"}
	res, err := e.Engine.QueryWithTypeFallback(ctx, stmt,
		map[string]*sql.DataFrame{"df_table": df})
	if err != nil {
		return nil, err
	}
	return sql.ResultSetFromDataFrameCols(res, colMap, false)
}

// resolveTargets rewrites logical column references to the frame's hash
// names. A bare star passes through, a qualified star expands to the columns
// of its table, and an unresolvable reference reports the valid keys.
func resolveTargets(targets []sql.Expression, idx *colIndex) ([]sql.Expression, error) {
	resolved, _, err := transform.Exprs(targets, func(t sql.Expression) ([]sql.Expression, transform.TreeIdentity, error) {
		if star, ok := t.(*expression.Star); ok {
			if star.Table == "" {
				return []sql.Expression{t}, transform.SameTree, nil
			}
			hashes, ok := idx.tableColumns(star.Table)
			if !ok {
				return nil, transform.SameTree, sql.ErrKeyColumnDoesNotExist.New(
					star.String(), idx.Sample())
			}
			expanded := make([]sql.Expression, len(hashes))
			for i, hash := range hashes {
				expanded[i] = expression.NewIdentifier(hash)
			}
			return expanded, transform.NewTree, nil
		}
		t, same, err := resolveIdentifiers(t, idx)
		return []sql.Expression{t}, same, err
	})
	return resolved, err
}

func resolveIdentifiers(t sql.Expression, idx *colIndex) (sql.Expression, transform.TreeIdentity, error) {
	return transform.Expr(t, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		id, ok := e.(*expression.Identifier)
		if !ok {
			return e, transform.SameTree, nil
		}
		hash, ok := idx.lookup(id)
		if !ok {
			return nil, transform.SameTree, sql.ErrKeyColumnDoesNotExist.New(
				id.String(), idx.Sample())
		}
		return expression.NewIdentifier(hash), transform.NewTree, nil
	})
}
