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
	"strconv"
	"strings"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/plan"
	"github.com/dolthub/stepflow/sql/transform"
)

// QueryStep runs a statement over a previous step's result or a literal
// frame.
type QueryStep struct {
	Num int
	// FromTable references the step whose result the statement runs over.
	FromTable *StepRef
	// Frame is a literal input, used when the statement runs over data
	// that did not come from a step.
	Frame *sql.DataFrame
	Query *plan.Select
	// StrictWhere, when false, neutralizes conditions over columns the
	// input does not carry instead of failing resolution.
	StrictWhere bool
}

// StepNum implements the Step interface.
func (s *QueryStep) StepNum() int { return s.Num }

func (e *Executor) queryStep(ctx *sql.Context, step *QueryStep) (*sql.ResultSet, error) {
	span, ctx := ctx.Span("executor.QueryStep")
	defer span.Finish()

	stmt := cloneSelect(step.Query)
	if err := checkClientProbes(stmt); err != nil {
		return nil, err
	}

	var rs *sql.ResultSet
	switch {
	case step.FromTable != nil:
		var err error
		rs, err = e.input(*step.FromTable)
		if err != nil {
			return nil, err
		}
	case step.Frame != nil:
		rs = sql.ResultSetFromDataFrame(step.Frame, "", "df_table")
	default:
		// the planner can embed a step result directly in the FROM clause
		ref, ok := stepResultTable(stmt.From)
		if !ok {
			return nil, sql.ErrUnsupportedFeature.New("query step without an input")
		}
		var err error
		rs, err = e.input(ref)
		if err != nil {
			return nil, err
		}
	}

	idx := newColIndex(rs, "")
	df, colMap := rs.ToDataFrameCols("")

	if err := e.fillSelectParams(stmt); err != nil {
		return nil, err
	}

	aliases := targetAliases(stmt.Targets)
	targets, err := e.resolveQueryTargets(ctx, stmt.Targets, idx, aliases)
	if err != nil {
		return nil, err
	}
	stmt.Targets = targets

	if stmt.Where != nil {
		if !step.StrictWhere {
			stmt.Where = relaxWhere(stmt.Where, idx)
		}
		if stmt.Where, _, err = e.resolveQueryExpr(ctx, stmt.Where, idx, aliases); err != nil {
			return nil, err
		}
	}
	for i, g := range stmt.GroupBy {
		if stmt.GroupBy[i], _, err = e.resolveQueryExpr(ctx, g, idx, aliases); err != nil {
			return nil, err
		}
	}
	if stmt.Having != nil {
		if stmt.Having, _, err = e.resolveQueryExpr(ctx, stmt.Having, idx, aliases); err != nil {
			return nil, err
		}
	}
	for i, f := range stmt.OrderBy {
		col, _, err := e.resolveQueryExpr(ctx, f.Column, idx, aliases)
		if err != nil {
			return nil, err
		}
		stmt.OrderBy[i] = plan.SortField{Column: col, Order: f.Order}
	}

	stmt.From = "df_table"
	stmt.FromAlias = ""

	res, err := e.Engine.QueryWithTypeFallback(ctx, stmt,
		map[string]*sql.DataFrame{"df_table": df})
	if err != nil {
		return nil, err
	}
	return sql.ResultSetFromDataFrameCols(res, colMap, false)
}

// resolveQueryTargets rewrites the select list: stars expand, session
// constructs become literals, column references become hash names.
func (e *Executor) resolveQueryTargets(ctx *sql.Context, targets []sql.Expression, idx *colIndex, aliases map[string]struct{}) ([]sql.Expression, error) {
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
		t, same, err := e.resolveQueryExpr(ctx, t, idx, aliases)
		return []sql.Expression{t}, same, err
	})
	return resolved, err
}

func (e *Executor) resolveQueryExpr(ctx *sql.Context, t sql.Expression, idx *colIndex, aliases map[string]struct{}) (sql.Expression, transform.TreeIdentity, error) {
	return transform.Expr(t, func(t sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch v := t.(type) {
		case *expression.UnresolvedFunction:
			if len(v.Arguments) > 0 {
				return t, transform.SameTree, nil
			}
			val, ok := sessionFunctionValue(ctx, v.Name())
			if !ok {
				return t, transform.SameTree, nil
			}
			return expression.NewAlias(expression.NewLiteral(val), v.String()), transform.NewTree, nil
		case *expression.Identifier:
			return resolveQueryIdentifier(ctx, v, idx, aliases)
		}
		return t, transform.SameTree, nil
	})
}

// resolveQueryIdentifier maps one column reference to its hash name. An
// unresolvable bare name passes through: it may be a projection alias the
// engine binds later. An unresolvable qualified name is an error carrying
// the valid keys.
func resolveQueryIdentifier(ctx *sql.Context, id *expression.Identifier, idx *colIndex, aliases map[string]struct{}) (sql.Expression, transform.TreeIdentity, error) {
	if id.Qualifier() == "" {
		if strings.ToLower(id.Last()) == "session_user" {
			return expression.NewAlias(
				expression.NewLiteral(ctx.Username), "session_user"), transform.NewTree, nil
		}
		if _, ok := aliases[id.Last()]; ok {
			return id, transform.SameTree, nil
		}
		if hash, ok := idx.lookup(id); ok {
			return expression.NewIdentifier(hash), transform.NewTree, nil
		}
		return id, transform.SameTree, nil
	}
	hash, ok := idx.lookup(id)
	if !ok {
		return nil, transform.SameTree, sql.ErrKeyColumnDoesNotExist.New(
			id.String(), idx.Sample())
	}
	return expression.NewIdentifier(hash), transform.NewTree, nil
}

// sessionFunctionValue resolves the zero-argument system functions clients
// probe session state with.
func sessionFunctionValue(ctx *sql.Context, name string) (interface{}, bool) {
	switch name {
	case "database":
		return ctx.Database, true
	case "current_user", "user":
		return ctx.Username, true
	case "version":
		return sql.ServerVersion, true
	case "current_schema", "schema":
		return "public", true
	case "connection_id":
		return int64(ctx.ConnectionID), true
	}
	return nil, false
}

// stepResultTable recognizes a FROM clause naming a step result, in the form
// step-result placeholders render as.
func stepResultTable(name string) (StepRef, bool) {
	const prefix = "$result_"
	if !strings.HasPrefix(name, prefix) {
		return StepRef{}, false
	}
	num, err := strconv.Atoi(name[len(prefix):])
	if err != nil {
		return StepRef{}, false
	}
	return StepRef{StepNum: num}, true
}

// targetAliases collects the display aliases of the select list, which later
// clauses may reference.
func targetAliases(targets []sql.Expression) map[string]struct{} {
	aliases := map[string]struct{}{}
	for _, t := range targets {
		if alias, ok := t.(*expression.Alias); ok {
			aliases[alias.Name()] = struct{}{}
		}
	}
	return aliases
}
