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

// fillParams replaces step-result placeholders with a literal holding the
// first value of the referenced step's first column. An empty result becomes
// a null literal.
func (e *Executor) fillParams(expr sql.Expression) (sql.Expression, error) {
	expr, _, err := transform.Expr(expr, func(expr sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		ref, ok := expr.(*expression.StepResult)
		if !ok {
			return expr, transform.SameTree, nil
		}
		rs, ok := e.StepsData[ref.StepNum]
		if !ok {
			return nil, transform.SameTree, sql.ErrStepResultNotFound.New(ref.StepNum)
		}
		if len(rs.Columns()) == 0 || rs.Len() == 0 {
			return expression.NewLiteral(nil), transform.NewTree, nil
		}
		return expression.NewLiteral(rs.ColumnValues(0)[0]), transform.NewTree, nil
	})
	return expr, err
}

func (e *Executor) fillParamsList(exprs []sql.Expression) ([]sql.Expression, error) {
	result := make([]sql.Expression, len(exprs))
	for i, expr := range exprs {
		var err error
		result[i], err = e.fillParams(expr)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// fillSelectParams replaces placeholders in every expression position of the
// statement, in place.
func (e *Executor) fillSelectParams(stmt *plan.Select) error {
	var err error
	if stmt.Targets, err = e.fillParamsList(stmt.Targets); err != nil {
		return err
	}
	if stmt.Where != nil {
		if stmt.Where, err = e.fillParams(stmt.Where); err != nil {
			return err
		}
	}
	if stmt.GroupBy, err = e.fillParamsList(stmt.GroupBy); err != nil {
		return err
	}
	if stmt.Having != nil {
		if stmt.Having, err = e.fillParams(stmt.Having); err != nil {
			return err
		}
	}
	for i, f := range stmt.OrderBy {
		col, err := e.fillParams(f.Column)
		if err != nil {
			return err
		}
		stmt.OrderBy[i] = plan.SortField{Column: col, Order: f.Order}
	}
	return nil
}
