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

// Package stepflow embeds an analytic SQL engine over in-memory data
// frames. The step layer rewrites logical column references to physical
// frame names and hands the statement here for execution.
package stepflow

import (
	"strings"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/expression/function"
	"github.com/dolthub/stepflow/sql/parse"
	"github.com/dolthub/stepflow/sql/plan"
	"github.com/dolthub/stepflow/sql/transform"
)

// Engine executes Select statements against named in-memory frames.
type Engine struct {
	// Functions the engine binds UnresolvedFunction nodes against.
	Functions map[string]function.CreateFunc
}

// New creates a new Engine with the default function registry.
func New() *Engine {
	return &Engine{Functions: function.Defaults}
}

// NamedFrame is a frame registered under the name queries reference it by.
type NamedFrame struct {
	Name  string
	Frame *sql.DataFrame
}

// Query executes the statement against the given frames and returns the
// result frame. NaN floats in the output are normalized to nil.
func (e *Engine) Query(ctx *sql.Context, stmt *plan.Select, frames map[string]*sql.DataFrame) (*sql.DataFrame, error) {
	span, ctx := ctx.Span("engine.Query")
	defer span.Finish()

	node, err := e.buildPlan(stmt, frames)
	if err != nil {
		return nil, err
	}
	return runPlan(ctx, node)
}

// QueryWithTypeFallback executes the statement and, if it fails under strict
// type inference, retries once with relaxed type inference. Frames composed
// from heterogeneous backends routinely mix value types within a column.
func (e *Engine) QueryWithTypeFallback(ctx *sql.Context, stmt *plan.Select, frames map[string]*sql.DataFrame) (*sql.DataFrame, error) {
	res, err := e.Query(ctx, stmt, frames)
	if err == nil || ctx.RelaxedTypes() {
		return res, err
	}
	ctx.Logger().WithError(err).Warn("query failed, retrying with relaxed type inference")
	return e.Query(ctx.WithRelaxedTypes(), stmt, frames)
}

// QueryString parses the given SQL text and executes it against the frames.
func (e *Engine) QueryString(ctx *sql.Context, query string, frames map[string]*sql.DataFrame) (*sql.DataFrame, error) {
	stmt, err := parse.Parse(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.Query(ctx, stmt, frames)
}

// Join combines two named frames. The condition and targets reference
// columns as <frame name>.<column>; a nil target list selects every column
// of both frames, left side first.
func (e *Engine) Join(ctx *sql.Context, left, right NamedFrame, joinType plan.JoinType, cond sql.Expression, targets []sql.Expression) (*sql.DataFrame, error) {
	span, ctx := ctx.Span("engine.Join")
	defer span.Finish()

	b := &joinBinder{left: left, right: right}

	var boundCond sql.Expression
	if cond != nil {
		var err error
		boundCond, err = b.bind(cond)
		if err != nil {
			return nil, err
		}
	}

	var node sql.Node = plan.NewJoin(
		plan.NewFrame(left.Name, left.Frame),
		plan.NewFrame(right.Name, right.Frame),
		joinType,
		boundCond,
	)

	if len(targets) > 0 {
		bound := make([]sql.Expression, len(targets))
		for i, t := range targets {
			var err error
			bound[i], err = b.bind(t)
			if err != nil {
				return nil, err
			}
		}
		node = plan.NewProject(bound, node)
	}
	return runPlan(ctx, node)
}

// JoinWithTypeFallback is Join with the relaxed type inference retry of
// QueryWithTypeFallback.
func (e *Engine) JoinWithTypeFallback(ctx *sql.Context, left, right NamedFrame, joinType plan.JoinType, cond sql.Expression, targets []sql.Expression) (*sql.DataFrame, error) {
	res, err := e.Join(ctx, left, right, joinType, cond, targets)
	if err == nil || ctx.RelaxedTypes() {
		return res, err
	}
	ctx.Logger().WithError(err).Warn("join failed, retrying with relaxed type inference")
	return e.Join(ctx.WithRelaxedTypes(), left, right, joinType, cond, targets)
}

func runPlan(ctx *sql.Context, node sql.Node) (*sql.DataFrame, error) {
	iter, err := node.RowIter(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := sql.RowIterToRows(iter)
	if err != nil {
		return nil, err
	}
	df := sql.NewDataFrameFromRows(node.Schema(), rows)
	df.NormalizeNulls()
	return df, nil
}

func (e *Engine) buildPlan(stmt *plan.Select, frames map[string]*sql.DataFrame) (sql.Node, error) {
	var source sql.Node
	if stmt.From == "" {
		source = oneRow{}
	} else {
		df, ok := frames[stmt.From]
		if !ok {
			for name, f := range frames {
				if strings.EqualFold(name, stmt.From) {
					df, ok = f, true
					break
				}
			}
		}
		if !ok {
			return nil, sql.ErrTableNotFound.New(stmt.From)
		}
		source = plan.NewFrame(stmt.From, df)
	}

	b := &binder{
		engine:   e,
		schema:   source.Schema(),
		tableRef: stmt.TableRef(),
	}

	targets, err := b.expandStars(stmt.Targets)
	if err != nil {
		return nil, err
	}
	bound := make([]sql.Expression, len(targets))
	for i, t := range targets {
		bound[i], err = b.bind(t)
		if err != nil {
			return nil, err
		}
	}

	node := source
	if stmt.Where != nil {
		where, err := b.bind(stmt.Where)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(where, node)
	}

	if hasAggregation(bound) || len(stmt.GroupBy) > 0 {
		node, err = e.buildAggregatePlan(stmt, bound, b, node)
	} else {
		node, err = e.buildProjectPlan(stmt, bound, b, node)
	}
	if err != nil {
		return nil, err
	}

	if stmt.Distinct {
		node = plan.NewDistinct(node)
	}
	if hasAggregation(bound) || len(stmt.GroupBy) > 0 {
		// aggregate sorts run over the grouped output
		if len(stmt.OrderBy) > 0 {
			fields, err := bindOutputSortFields(stmt.OrderBy, node.Schema(), bound, b)
			if err != nil {
				return nil, err
			}
			node = plan.NewSort(fields, node)
		}
	}
	if stmt.Limit != nil || stmt.Offset != nil {
		limit := int64(-1)
		if stmt.Limit != nil {
			limit = *stmt.Limit
		}
		var offset int64
		if stmt.Offset != nil {
			offset = *stmt.Offset
		}
		node = plan.NewLimit(limit, offset, node)
	}
	return node, nil
}

// buildProjectPlan sorts below the projection so that ORDER BY can reference
// source columns that the select list drops.
func (e *Engine) buildProjectPlan(stmt *plan.Select, bound []sql.Expression, b *binder, node sql.Node) (sql.Node, error) {
	if len(stmt.OrderBy) > 0 {
		var fields []plan.SortField
		for _, f := range stmt.OrderBy {
			col, err := bindSortColumn(f.Column, bound, b)
			if err != nil {
				return nil, err
			}
			fields = append(fields, plan.SortField{Column: col, Order: f.Order})
		}
		node = plan.NewSort(fields, node)
	}
	return plan.NewProject(bound, node), nil
}

func (e *Engine) buildAggregatePlan(stmt *plan.Select, bound []sql.Expression, b *binder, node sql.Node) (sql.Node, error) {
	grouping := make([]sql.Expression, len(stmt.GroupBy))
	for i, g := range stmt.GroupBy {
		var err error
		grouping[i], err = bindSortColumn(g, bound, b)
		if err != nil {
			return nil, err
		}
	}
	node = plan.NewGroupBy(bound, grouping, node)

	if stmt.Having != nil {
		having, err := bindOutputExpr(stmt.Having, node.Schema(), bound, b)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(having, node)
	}
	return node, nil
}

// bindSortColumn binds an ORDER BY or GROUP BY term: a name matching a
// select-list alias refers to that target, anything else is a source column.
func bindSortColumn(e sql.Expression, bound []sql.Expression, b *binder) (sql.Expression, error) {
	if id, ok := e.(*expression.Identifier); ok && id.Qualifier() == "" {
		if target, ok := matchTarget(id.Last(), bound); ok {
			return target, nil
		}
	}
	return b.bind(e)
}

// matchTarget finds the bound select target the given name refers to. An
// aliased target is matched by its alias and unwrapped.
func matchTarget(name string, bound []sql.Expression) (sql.Expression, bool) {
	for _, t := range bound {
		if alias, ok := t.(*expression.Alias); ok {
			if strings.EqualFold(alias.Name(), name) {
				return alias.Child, true
			}
			continue
		}
		if strings.EqualFold(plan.ExprName(t), name) {
			return t, true
		}
	}
	return nil, false
}

// bindOutputExpr binds an expression evaluated over the grouped output:
// names resolve to output positions, aggregate calls resolve to the select
// target computing the same aggregation.
func bindOutputExpr(e sql.Expression, outNames []string, bound []sql.Expression, b *binder) (sql.Expression, error) {
	e, _, err := transform.ExprDown(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch v := e.(type) {
		case *expression.Identifier:
			idx := indexOfFold(outNames, v.Last(), v.LastQuoted())
			if idx < 0 {
				return nil, transform.SameTree, sql.ErrColumnNotFound.New(v.Last())
			}
			return expression.NewGetField(idx, outNames[idx]), transform.NewTree, nil
		case *expression.UnresolvedFunction:
			resolved, err := b.bind(v)
			if err != nil {
				return nil, transform.SameTree, err
			}
			for i, t := range bound {
				cmp := t
				if alias, ok := t.(*expression.Alias); ok {
					cmp = alias.Child
				}
				if cmp.String() == resolved.String() {
					return expression.NewGetField(i, outNames[i]), transform.NewTree, nil
				}
			}
			return nil, transform.SameTree, sql.ErrUnsupportedFeature.New(
				"aggregate " + resolved.String() + " not present in the select list")
		}
		return e, transform.SameTree, nil
	})
	return e, err
}

func bindOutputSortFields(fields []plan.SortField, outNames []string, bound []sql.Expression, b *binder) ([]plan.SortField, error) {
	result := make([]plan.SortField, len(fields))
	for i, f := range fields {
		col, err := bindOutputExpr(f.Column, outNames, bound, b)
		if err != nil {
			return nil, err
		}
		result[i] = plan.SortField{Column: col, Order: f.Order}
	}
	return result, nil
}

func hasAggregation(exprs []sql.Expression) bool {
	for _, e := range exprs {
		var found bool
		transform.InspectExpr(e, func(e sql.Expression) bool {
			if _, ok := e.(sql.Aggregation); ok {
				found = true
				return false
			}
			if fn, ok := e.(*expression.UnresolvedFunction); ok && fn.IsAggregate {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// binder rewrites unresolved expressions against the schema of a single
// source frame.
type binder struct {
	engine   *Engine
	schema   []string
	tableRef string
}

// expandStars replaces star targets with one identifier per frame column, in
// frame order.
func (b *binder) expandStars(targets []sql.Expression) ([]sql.Expression, error) {
	result, _, err := transform.Exprs(targets, func(e sql.Expression) ([]sql.Expression, transform.TreeIdentity, error) {
		star, ok := e.(*expression.Star)
		if !ok {
			return []sql.Expression{e}, transform.SameTree, nil
		}
		if star.Table != "" && !strings.EqualFold(star.Table, b.tableRef) {
			return nil, transform.SameTree, sql.ErrTableNotFound.New(star.Table)
		}
		expanded := make([]sql.Expression, len(b.schema))
		for i, name := range b.schema {
			expanded[i] = expression.NewGetField(i, name)
		}
		return expanded, transform.NewTree, nil
	})
	return result, err
}

func (b *binder) bind(e sql.Expression) (sql.Expression, error) {
	e, _, err := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch v := e.(type) {
		case *expression.Identifier:
			idx, err := b.columnIndex(v)
			if err != nil {
				return nil, transform.SameTree, err
			}
			return expression.NewGetFieldWithTable(idx, b.tableRef, b.schema[idx]), transform.NewTree, nil
		case *expression.SystemVariable:
			key := "@@" + strings.ToLower(v.Name())
			val, ok := sql.ServerVariables[key]
			if !ok {
				return nil, transform.SameTree, sql.ErrUnknownSystemVariable.New(v.Name())
			}
			return expression.NewAlias(expression.NewLiteral(val), key), transform.NewTree, nil
		case *expression.UnresolvedFunction:
			ctor, ok := b.engine.Functions[v.Name()]
			if !ok {
				return nil, transform.SameTree, sql.ErrFunctionNotFound.New(v.Name())
			}
			fn, err := ctor(v.Arguments...)
			if err != nil {
				return nil, transform.SameTree, err
			}
			return fn, transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
	return e, err
}

func (b *binder) columnIndex(id *expression.Identifier) (int, error) {
	if q := id.Qualifier(); q != "" && !strings.EqualFold(q, b.tableRef) {
		return 0, sql.ErrTableNotFound.New(q)
	}
	idx := indexOfFold(b.schema, id.Last(), id.LastQuoted())
	if idx < 0 {
		return 0, sql.ErrColumnNotFound.New(id.Last())
	}
	return idx, nil
}

// indexOfFold finds a name in the list: exact match first, then, unless the
// reference was quoted, a case-insensitive match.
func indexOfFold(names []string, name string, quoted bool) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	if quoted {
		return -1
	}
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}

// joinBinder rewrites references over the concatenated schema of a join:
// left frame columns first, then right.
type joinBinder struct {
	left  NamedFrame
	right NamedFrame
}

func (b *joinBinder) bind(e sql.Expression) (sql.Expression, error) {
	e, _, err := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		id, ok := e.(*expression.Identifier)
		if !ok {
			return e, transform.SameTree, nil
		}
		idx, table, name, err := b.columnIndex(id)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return expression.NewGetFieldWithTable(idx, table, name), transform.NewTree, nil
	})
	return e, err
}

func (b *joinBinder) columnIndex(id *expression.Identifier) (int, string, string, error) {
	leftNames := b.left.Frame.Names()
	rightNames := b.right.Frame.Names()

	switch q := id.Qualifier(); {
	case q == "":
		l := indexOfFold(leftNames, id.Last(), id.LastQuoted())
		r := indexOfFold(rightNames, id.Last(), id.LastQuoted())
		if l >= 0 && r >= 0 {
			return 0, "", "", sql.ErrAmbiguousColumnName.New(
				id.Last(), []string{b.left.Name, b.right.Name})
		}
		if l >= 0 {
			return l, b.left.Name, leftNames[l], nil
		}
		if r >= 0 {
			return len(leftNames) + r, b.right.Name, rightNames[r], nil
		}
	case strings.EqualFold(q, b.left.Name):
		if l := indexOfFold(leftNames, id.Last(), id.LastQuoted()); l >= 0 {
			return l, b.left.Name, leftNames[l], nil
		}
	case strings.EqualFold(q, b.right.Name):
		if r := indexOfFold(rightNames, id.Last(), id.LastQuoted()); r >= 0 {
			return len(leftNames) + r, b.right.Name, rightNames[r], nil
		}
	default:
		return 0, "", "", sql.ErrTableNotFound.New(q)
	}
	return 0, "", "", sql.ErrColumnNotFound.New(id.Last())
}

// oneRow is the source of statements with no FROM clause.
type oneRow struct{}

var _ sql.Node = oneRow{}

func (oneRow) Schema() []string     { return nil }
func (oneRow) Children() []sql.Node { return nil }

func (oneRow) RowIter(*sql.Context) (sql.RowIter, error) {
	return sql.RowsToRowIter(sql.Row{}), nil
}

func (o oneRow) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(o, len(children), 0)
	}
	return o, nil
}

func (oneRow) String() string { return "OneRow" }
