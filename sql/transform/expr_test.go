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

package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
)

func TestExpr(t *testing.T) {
	require := require.New(t)

	e := expression.NewAnd(
		expression.NewEquals(
			expression.NewIdentifier("t", "a"),
			expression.NewLiteral(int64(1)),
		),
		expression.NewIdentifier("b"),
	)

	result, same, err := Expr(e, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		if id, ok := e.(*expression.Identifier); ok {
			return expression.NewGetField(0, id.Last()), NewTree, nil
		}
		return e, SameTree, nil
	})
	require.NoError(err)
	require.Equal(NewTree, same)

	and, ok := result.(*expression.And)
	require.True(ok)
	eq, ok := and.Left.(*expression.Equals)
	require.True(ok)
	require.IsType((*expression.GetField)(nil), eq.Left)
	require.IsType((*expression.GetField)(nil), and.Right)
}

func TestExprNoChange(t *testing.T) {
	require := require.New(t)

	e := expression.NewEquals(
		expression.NewLiteral(int64(1)),
		expression.NewLiteral(int64(2)),
	)

	result, same, err := Expr(e, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		return e, SameTree, nil
	})
	require.NoError(err)
	require.Equal(SameTree, same)
	require.Equal(e, result)
}

func TestExprDownDoesNotRevisitReplacements(t *testing.T) {
	require := require.New(t)

	var visits int
	e := expression.NewNot(expression.NewIdentifier("a"))

	// The replacement is itself an Identifier. A transform that revisited
	// its own output would rewrite it again.
	result, same, err := ExprDown(e, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		if _, ok := e.(*expression.Identifier); ok {
			visits++
			return expression.NewIdentifier("rewritten"), NewTree, nil
		}
		return e, SameTree, nil
	})
	require.NoError(err)
	require.Equal(NewTree, same)
	require.Equal(1, visits)

	not, ok := result.(*expression.Not)
	require.True(ok)
	id, ok := not.Child.(*expression.Identifier)
	require.True(ok)
	require.Equal("rewritten", id.Last())
}

func TestExprs(t *testing.T) {
	require := require.New(t)

	exprs := []sql.Expression{
		expression.NewIdentifier("a"),
		expression.NewStar(),
		expression.NewIdentifier("b"),
	}

	result, same, err := Exprs(exprs, func(e sql.Expression) ([]sql.Expression, TreeIdentity, error) {
		if _, ok := e.(*expression.Star); ok {
			return []sql.Expression{
				expression.NewGetField(0, "x"),
				expression.NewGetField(1, "y"),
			}, NewTree, nil
		}
		return []sql.Expression{e}, SameTree, nil
	})
	require.NoError(err)
	require.Equal(NewTree, same)
	require.Len(result, 4)
	require.IsType((*expression.Identifier)(nil), result[0])
	require.IsType((*expression.GetField)(nil), result[1])
	require.IsType((*expression.GetField)(nil), result[2])
	require.IsType((*expression.Identifier)(nil), result[3])
}

func TestExprsNoChange(t *testing.T) {
	require := require.New(t)

	exprs := []sql.Expression{
		expression.NewIdentifier("a"),
		expression.NewIdentifier("b"),
	}

	result, same, err := Exprs(exprs, func(e sql.Expression) ([]sql.Expression, TreeIdentity, error) {
		return []sql.Expression{e}, SameTree, nil
	})
	require.NoError(err)
	require.Equal(SameTree, same)
	require.Len(result, 2)
}

func TestInspectExpr(t *testing.T) {
	require := require.New(t)

	e := expression.NewAnd(
		expression.NewIdentifier("a"),
		expression.NewOr(
			expression.NewIdentifier("b"),
			expression.NewLiteral(int64(1)),
		),
	)

	var idents []string
	InspectExpr(e, func(e sql.Expression) bool {
		if id, ok := e.(*expression.Identifier); ok {
			idents = append(idents, id.Last())
		}
		return true
	})
	require.Equal([]string{"a", "b"}, idents)
}

func TestClone(t *testing.T) {
	require := require.New(t)

	e := expression.NewEquals(
		expression.NewIdentifier("t", "a"),
		expression.NewLiteral(int64(1)),
	)

	cloned, err := Clone(e)
	require.NoError(err)
	require.Equal(e.String(), cloned.String())

	// Rewriting the clone must not touch the original.
	rewritten, _, err := Expr(cloned, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		if _, ok := e.(*expression.Identifier); ok {
			return expression.NewGetField(3, "a"), NewTree, nil
		}
		return e, SameTree, nil
	})
	require.NoError(err)
	require.NotEqual(e.String(), rewritten.String())
	require.IsType((*expression.Identifier)(nil), e.Left)
}
