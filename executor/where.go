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
	"strings"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/transform"
)

// pruneWhere drops the predicates of a WHERE tree that reference columns the
// frame does not carry. AND branches are pruned independently; any other
// predicate is dropped whole when one of its columns is absent, since
// removing only part of an OR or a comparison would change its meaning.
// Returns nil when nothing survives.
func pruneWhere(e sql.Expression, names map[string]struct{}) sql.Expression {
	if e == nil {
		return nil
	}
	if and, ok := e.(*expression.And); ok {
		left := pruneWhere(and.Left, names)
		right := pruneWhere(and.Right, names)
		switch {
		case left == nil:
			return right
		case right == nil:
			return left
		default:
			return expression.NewAnd(left, right)
		}
	}
	if missingColumn(e, names) {
		return nil
	}
	return e
}

func missingColumn(e sql.Expression, names map[string]struct{}) bool {
	var missing bool
	transform.InspectExpr(e, func(e sql.Expression) bool {
		if id, ok := e.(*expression.Identifier); ok {
			if _, ok := names[strings.ToLower(id.Last())]; !ok {
				missing = true
				return false
			}
		}
		return true
	})
	return missing
}

// relaxWhere replaces predicates over unresolvable qualified columns with a
// tautology. Prediction inputs receive partial frames whose WHERE may
// reference columns only the model output carries; those conditions must not
// filter the input.
func relaxWhere(e sql.Expression, idx *colIndex) sql.Expression {
	relaxed, _, err := transform.ExprDown(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch e.(type) {
		case *expression.And, *expression.Or, *expression.Not, expression.Tuple:
			return e, transform.SameTree, nil
		}
		children := e.Children()
		if len(children) != 2 {
			return e, transform.SameTree, nil
		}
		for _, c := range children {
			id, ok := c.(*expression.Identifier)
			if !ok || id.Qualifier() == "" {
				continue
			}
			if !idx.has(id) {
				return expression.NewEquals(
					expression.NewLiteral(int64(0)),
					expression.NewLiteral(int64(0)),
				), transform.NewTree, nil
			}
		}
		return e, transform.SameTree, nil
	})
	if err != nil {
		// the rewrite function never errors
		return e
	}
	return relaxed
}
