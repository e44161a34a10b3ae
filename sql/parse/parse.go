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

// Package parse translates SQL text into the statement form the engine
// executes.
package parse

import (
	"strconv"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/plan"
)

// Parse parses the given SELECT statement.
func Parse(ctx *sql.Context, query string) (*plan.Select, error) {
	span, _ := ctx.Span("parse", opentracing.Tag{Key: "query", Value: query})
	defer span.Finish()

	s := strings.TrimSpace(query)
	if strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	if s == "" {
		return nil, sql.ErrSyntaxError.New(query)
	}

	stmt, err := sqlparser.Parse(s)
	if err != nil {
		return nil, sql.ErrSyntaxError.New(err.Error())
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, sql.ErrUnsupportedSyntax.New(stmt)
	}
	return convertSelect(sel)
}

func convertSelect(s *sqlparser.Select) (*plan.Select, error) {
	result := &plan.Select{Distinct: s.Distinct != ""}

	targets, err := selectExprsToExpressions(s.SelectExprs)
	if err != nil {
		return nil, err
	}
	result.Targets = targets

	result.From, result.FromAlias, err = fromToTable(s.From)
	if err != nil {
		return nil, err
	}

	if s.Where != nil {
		result.Where, err = exprToExpression(s.Where.Expr)
		if err != nil {
			return nil, err
		}
	}

	for _, g := range s.GroupBy {
		e, err := exprToExpression(g)
		if err != nil {
			return nil, err
		}
		result.GroupBy = append(result.GroupBy, e)
	}

	if s.Having != nil {
		result.Having, err = exprToExpression(s.Having.Expr)
		if err != nil {
			return nil, err
		}
	}

	result.OrderBy, err = orderByToSortFields(s.OrderBy)
	if err != nil {
		return nil, err
	}

	if s.Limit != nil {
		result.Limit, err = limitValue(s.Limit.Rowcount)
		if err != nil {
			return nil, err
		}
		if s.Limit.Offset != nil {
			result.Offset, err = limitValue(s.Limit.Offset)
			if err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// fromToTable extracts the single table reference of the FROM clause. The
// engine executes over one registered frame; joining happens at the step
// layer, so joins inside a statement are not translated.
func fromToTable(te sqlparser.TableExprs) (table, alias string, err error) {
	if len(te) == 0 {
		return "", "", nil
	}
	if len(te) > 1 {
		return "", "", sql.ErrUnsupportedFeature.New("more than one table in FROM")
	}

	t, ok := te[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", "", sql.ErrUnsupportedFeature.New("joins inside a statement")
	}
	name, ok := t.Expr.(sqlparser.TableName)
	if !ok {
		return "", "", sql.ErrUnsupportedSyntax.New(t.Expr)
	}

	table = name.Name.String()
	if table == "dual" {
		return "", "", nil
	}
	if !name.Qualifier.IsEmpty() {
		table = name.Qualifier.String() + "." + table
	}
	if !t.As.IsEmpty() {
		alias = t.As.String()
	}
	return table, alias, nil
}

func orderByToSortFields(ob sqlparser.OrderBy) ([]plan.SortField, error) {
	var fields []plan.SortField
	for _, o := range ob {
		e, err := exprToExpression(o.Expr)
		if err != nil {
			return nil, err
		}

		var so plan.SortOrder
		switch o.Direction {
		case sqlparser.AscScr:
			so = plan.Ascending
		case sqlparser.DescScr:
			so = plan.Descending
		default:
			return nil, sql.ErrUnsupportedSyntax.New(o.Direction)
		}
		fields = append(fields, plan.SortField{Column: e, Order: so})
	}
	return fields, nil
}

func limitValue(e sqlparser.Expr) (*int64, error) {
	v, ok := e.(*sqlparser.SQLVal)
	if !ok || v.Type != sqlparser.IntVal {
		return nil, sql.ErrUnsupportedFeature.New("LIMIT with non-integer literal")
	}
	n, err := strconv.ParseInt(string(v.Val), 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func selectExprsToExpressions(se sqlparser.SelectExprs) ([]sql.Expression, error) {
	var exprs []sql.Expression
	for _, e := range se {
		pe, err := selectExprToExpression(e)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, pe)
	}
	return exprs, nil
}

func selectExprToExpression(se sqlparser.SelectExpr) (sql.Expression, error) {
	switch e := se.(type) {
	case *sqlparser.StarExpr:
		if e.TableName.IsEmpty() {
			return expression.NewStar(), nil
		}
		return expression.NewQualifiedStar(e.TableName.Name.String()), nil
	case *sqlparser.AliasedExpr:
		expr, err := exprToExpression(e.Expr)
		if err != nil {
			return nil, err
		}
		if e.As.String() == "" {
			return expr, nil
		}
		return expression.NewAlias(expr, e.As.String()), nil
	default:
		return nil, sql.ErrUnsupportedSyntax.New(e)
	}
}

func exprToExpression(e sqlparser.Expr) (sql.Expression, error) {
	switch v := e.(type) {
	case *sqlparser.ColName:
		name := v.Name.String()
		if strings.HasPrefix(name, "@@") {
			return expression.NewSystemVariable(strings.TrimPrefix(name, "@@")), nil
		}
		if !v.Qualifier.IsEmpty() {
			return expression.NewIdentifier(v.Qualifier.Name.String(), name), nil
		}
		return expression.NewIdentifier(name), nil
	case *sqlparser.SQLVal:
		return convertVal(v)
	case sqlparser.BoolVal:
		return expression.NewLiteral(bool(v)), nil
	case *sqlparser.NullVal:
		return expression.NewLiteral(nil), nil
	case *sqlparser.ComparisonExpr:
		return comparisonExprToExpression(v)
	case *sqlparser.IsExpr:
		return isExprToExpression(v)
	case *sqlparser.NotExpr:
		c, err := exprToExpression(v.Expr)
		if err != nil {
			return nil, err
		}
		return expression.NewNot(c), nil
	case *sqlparser.ParenExpr:
		return exprToExpression(v.Expr)
	case *sqlparser.AndExpr:
		lhs, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewAnd(lhs, rhs), nil
	case *sqlparser.OrExpr:
		lhs, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewOr(lhs, rhs), nil
	case *sqlparser.RangeCond:
		val, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}
		lower, err := exprToExpression(v.From)
		if err != nil {
			return nil, err
		}
		upper, err := exprToExpression(v.To)
		if err != nil {
			return nil, err
		}
		switch v.Operator {
		case sqlparser.BetweenStr:
			return expression.NewBetween(val, lower, upper), nil
		case sqlparser.NotBetweenStr:
			return expression.NewNot(expression.NewBetween(val, lower, upper)), nil
		default:
			return nil, sql.ErrUnsupportedFeature.New("RangeCond with operator: " + v.Operator)
		}
	case sqlparser.ValTuple:
		var exprs = make([]sql.Expression, len(v))
		for i, e := range v {
			expr, err := exprToExpression(e)
			if err != nil {
				return nil, err
			}
			exprs[i] = expr
		}
		return expression.NewTuple(exprs...), nil
	case *sqlparser.FuncExpr:
		exprs, err := selectExprsToExpressions(v.Exprs)
		if err != nil {
			return nil, err
		}
		return expression.NewUnresolvedFunction(v.Name.Lowered(), v.IsAggregate(), exprs...), nil
	case *sqlparser.BinaryExpr:
		return binaryExprToExpression(v)
	case *sqlparser.UnaryExpr:
		switch v.Operator {
		case sqlparser.UPlusStr:
			return exprToExpression(v.Expr)
		case sqlparser.UMinusStr:
			c, err := exprToExpression(v.Expr)
			if err != nil {
				return nil, err
			}
			if lit, ok := c.(*expression.Literal); ok {
				switch n := lit.Value().(type) {
				case int64:
					return expression.NewLiteral(-n), nil
				case float64:
					return expression.NewLiteral(-n), nil
				}
			}
			return expression.NewMinus(expression.NewLiteral(int64(0)), c), nil
		default:
			return nil, sql.ErrUnsupportedFeature.New("unary operator: " + v.Operator)
		}
	default:
		return nil, sql.ErrUnsupportedSyntax.New(e)
	}
}

func convertVal(v *sqlparser.SQLVal) (sql.Expression, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return expression.NewLiteral(string(v.Val)), nil
	case sqlparser.IntVal:
		val, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val), nil
	case sqlparser.FloatVal:
		val, err := strconv.ParseFloat(string(v.Val), 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val), nil
	case sqlparser.HexNum:
		s := strings.ToLower(string(v.Val))
		if strings.HasPrefix(s, "0x") {
			s = s[2:]
		}
		val, err := strconv.ParseInt(s, 16, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val), nil
	}
	return nil, sql.ErrUnsupportedSyntax.New(v)
}

func isExprToExpression(c *sqlparser.IsExpr) (sql.Expression, error) {
	e, err := exprToExpression(c.Expr)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	case sqlparser.IsNullStr:
		return expression.NewIsNull(e), nil
	case sqlparser.IsNotNullStr:
		return expression.NewNot(expression.NewIsNull(e)), nil
	default:
		return nil, sql.ErrUnsupportedSyntax.New(c)
	}
}

func comparisonExprToExpression(c *sqlparser.ComparisonExpr) (sql.Expression, error) {
	left, err := exprToExpression(c.Left)
	if err != nil {
		return nil, err
	}
	right, err := exprToExpression(c.Right)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	case sqlparser.EqualStr:
		return expression.NewEquals(left, right), nil
	case sqlparser.LessThanStr:
		return expression.NewLessThan(left, right), nil
	case sqlparser.LessEqualStr:
		return expression.NewLessThanOrEqual(left, right), nil
	case sqlparser.GreaterThanStr:
		return expression.NewGreaterThan(left, right), nil
	case sqlparser.GreaterEqualStr:
		return expression.NewGreaterThanOrEqual(left, right), nil
	case sqlparser.NotEqualStr:
		return expression.NewNot(expression.NewEquals(left, right)), nil
	case sqlparser.InStr:
		return expression.NewIn(left, right), nil
	case sqlparser.NotInStr:
		return expression.NewNotIn(left, right), nil
	case sqlparser.LikeStr:
		return expression.NewLike(left, right), nil
	case sqlparser.NotLikeStr:
		return expression.NewNot(expression.NewLike(left, right)), nil
	default:
		return nil, sql.ErrUnsupportedFeature.New(c.Operator)
	}
}

func binaryExprToExpression(be *sqlparser.BinaryExpr) (sql.Expression, error) {
	switch be.Operator {
	case sqlparser.PlusStr,
		sqlparser.MinusStr,
		sqlparser.MultStr,
		sqlparser.DivStr,
		sqlparser.ModStr:

		l, err := exprToExpression(be.Left)
		if err != nil {
			return nil, err
		}
		r, err := exprToExpression(be.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewArithmetic(l, r, be.Operator), nil
	default:
		return nil, sql.ErrUnsupportedFeature.New(be.Operator)
	}
}
