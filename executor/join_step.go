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
	"fmt"
	"strconv"
	"strings"

	"github.com/dolthub/stepflow"
	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/plan"
	"github.com/dolthub/stepflow/sql/transform"
)

// RowIDColumn is the helper column row-identity joins correlate on. It is
// injected into source results before inference and stripped from join
// output.
const RowIDColumn = "__mindsdb_row_id"

// crossJoinRowLimit bounds the output of a join without a condition.
const crossJoinRowLimit = 10_000_000

// JoinStep combines the results of two previous steps.
type JoinStep struct {
	Num         int
	Left, Right StepRef
	// JoinType is the SQL join keyword, lowercased ("left join"). The bare
	// "join" resolves by which side is a prediction when one is.
	JoinType string
	// Condition of the join. Nil requests a cross join, which is subject
	// to the output row limit. Ignored when a side is a prediction: those
	// joins correlate by row id.
	Condition sql.Expression
}

// StepNum implements the Step interface.
func (s *JoinStep) StepNum() int { return s.Num }

// ParseJoinType maps a SQL join keyword to the engine's join type.
func ParseJoinType(keyword string) (plan.JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(keyword)) {
	case "", "join", "inner join":
		return plan.JoinTypeInner, nil
	case "left join":
		return plan.JoinTypeLeft, nil
	case "right join":
		return plan.JoinTypeRight, nil
	case "cross join":
		return plan.JoinTypeCross, nil
	}
	return 0, sql.ErrNotSupportedYet.New("join type " + keyword)
}

func (e *Executor) joinStep(ctx *sql.Context, step *JoinStep) (*sql.ResultSet, error) {
	span, ctx := ctx.Span("executor.JoinStep")
	defer span.Finish()

	left, err := e.input(step.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.input(step.Right)
	if err != nil {
		return nil, err
	}
	if left.IsPrediction || right.IsPrediction {
		return e.joinByRowID(ctx, step, left, right)
	}
	return e.joinByCondition(ctx, step, left, right)
}

// joinByRowID correlates a prediction result with its input by the row id
// column. A side missing the column inherits the counterpart's values: the
// inference output rows are positionally aligned with the input that
// produced them.
func (e *Executor) joinByRowID(ctx *sql.Context, step *JoinStep, left, right *sql.ResultSet) (*sql.ResultSet, error) {
	leftID := left.FindColumns(RowIDColumn)
	rightID := right.FindColumns(RowIDColumn)
	if len(leftID) == 0 && len(rightID) == 0 {
		return nil, sql.ErrRowIDNotFound.New()
	}
	if len(leftID) == 0 {
		left.SetColumnValues(RowIDColumn, right.ColumnValues(right.ColumnIndex(rightID[0])))
		leftID = left.FindColumns(RowIDColumn)
	}
	if len(rightID) == 0 {
		right.SetColumnValues(RowIDColumn, left.ColumnValues(left.ColumnIndex(leftID[0])))
		rightID = right.FindColumns(RowIDColumn)
	}

	joinType := step.JoinType
	if strings.ToLower(strings.TrimSpace(joinType)) == "join" || joinType == "" {
		if left.IsPrediction {
			joinType = "left join"
		} else {
			joinType = "right join"
		}
	}
	jt, err := ParseJoinType(joinType)
	if err != nil {
		return nil, err
	}

	leftFrame, leftCols := left.ToDataFrameCols("A")
	rightFrame, rightCols := right.ToDataFrameCols("B")

	cond := expression.NewEquals(
		expression.NewIdentifier("table_a", leftID[0].HashName("A")),
		expression.NewIdentifier("table_b", rightID[0].HashName("B")),
	)
	df, err := e.Engine.JoinWithTypeFallback(ctx,
		stepflow.NamedFrame{Name: "table_a", Frame: leftFrame},
		stepflow.NamedFrame{Name: "table_b", Frame: rightFrame},
		jt, cond, nil,
	)
	if err != nil {
		return nil, err
	}
	return joinResult(df, leftCols, rightCols)
}

func (e *Executor) joinByCondition(ctx *sql.Context, step *JoinStep, left, right *sql.ResultSet) (*sql.ResultSet, error) {
	leftAlias, rightAlias := "table_a", "table_b"
	if cols := left.Columns(); len(cols) > 0 && cols[0].TableAlias != "" {
		leftAlias = cols[0].TableAlias
	}
	if cols := right.Columns(); len(cols) > 0 && cols[0].TableAlias != "" {
		rightAlias = cols[0].TableAlias
	}
	if rightAlias == leftAlias {
		rightAlias += "_r"
	}

	// targets project every column of both sides under its hash name; the
	// mapping restores the metadata afterwards
	var targets []sql.Expression
	leftCols := map[string]*sql.Column{}
	for _, col := range left.Columns() {
		hash := col.HashName("A")
		leftCols[hash] = col
		targets = append(targets, expression.NewAlias(
			expression.NewIdentifier(leftAlias, col.Alias), hash))
	}
	rightCols := map[string]*sql.Column{}
	for _, col := range right.Columns() {
		hash := col.HashName("B")
		rightCols[hash] = col
		targets = append(targets, expression.NewAlias(
			expression.NewIdentifier(rightAlias, col.Alias), hash))
	}

	cond := step.Condition
	if cond == nil {
		product := left.Len() * right.Len()
		if product >= crossJoinRowLimit {
			return nil, sql.ErrNotSupportedYet.New(fmt.Sprintf(
				"Unable to join tables without a condition: the resulting cross join "+
					"would produce %s rows (%s x %s), exceeding the %s row limit.\n"+
					"Hint: Add an ON clause, e.g.: SELECT * FROM t1 JOIN t2 ON t1.id = t2.id",
				thousands(product), thousands(left.Len()), thousands(right.Len()),
				thousands(crossJoinRowLimit)))
		}
		cond = expression.NewEquals(
			expression.NewLiteral(int64(0)),
			expression.NewLiteral(int64(0)),
		)
	} else {
		var err error
		cond, err = transform.Clone(cond)
		if err != nil {
			return nil, err
		}
	}

	jt, err := ParseJoinType(step.JoinType)
	if err != nil {
		return nil, err
	}

	df, err := e.Engine.JoinWithTypeFallback(ctx,
		stepflow.NamedFrame{Name: leftAlias, Frame: left.ToDataFrame()},
		stepflow.NamedFrame{Name: rightAlias, Frame: right.ToDataFrame()},
		jt, cond, targets,
	)
	if err != nil {
		return nil, err
	}
	return joinResult(df, leftCols, rightCols)
}

// joinResult restores column metadata on the joined frame and strips the row
// id helper columns.
func joinResult(df *sql.DataFrame, leftCols, rightCols map[string]*sql.Column) (*sql.ResultSet, error) {
	merged := make(map[string]*sql.Column, len(leftCols)+len(rightCols))
	for hash, col := range leftCols {
		merged[hash] = col
	}
	for hash, col := range rightCols {
		merged[hash] = col
	}
	rs, err := sql.ResultSetFromDataFrameCols(df, merged, false)
	if err != nil {
		return nil, err
	}
	for _, col := range rs.FindColumns(RowIDColumn) {
		rs.DelColumn(col)
	}
	return rs, nil
}

// thousands renders an integer with comma separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	start := len(s) % 3
	if start == 0 {
		start = 3
	}
	var b strings.Builder
	b.WriteString(s[:start])
	for i := start; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
