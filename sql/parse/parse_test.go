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

package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression"
	"github.com/dolthub/stepflow/sql/plan"
)

func TestParseSelectStar(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(), "SELECT * FROM tab;")
	require.NoError(err)
	require.Equal("tab", s.From)
	require.Len(s.Targets, 1)
	require.IsType((*expression.Star)(nil), s.Targets[0])
	require.Nil(s.Where)
	require.False(s.Distinct)
}

func TestParseQualifiedStar(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(), "SELECT t.* FROM tab AS t")
	require.NoError(err)
	require.Equal("tab", s.From)
	require.Equal("t", s.FromAlias)
	star, ok := s.Targets[0].(*expression.Star)
	require.True(ok)
	require.Equal("t", star.Table)
}

func TestParseTargets(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(), "SELECT a, t.b AS x, a + 1 FROM tab t")
	require.NoError(err)
	require.Len(s.Targets, 3)

	id, ok := s.Targets[0].(*expression.Identifier)
	require.True(ok)
	require.Equal("a", id.Last())
	require.Equal("", id.Qualifier())

	alias, ok := s.Targets[1].(*expression.Alias)
	require.True(ok)
	require.Equal("x", alias.Name())
	qid, ok := alias.Child.(*expression.Identifier)
	require.True(ok)
	require.Equal("t", qid.Qualifier())
	require.Equal("b", qid.Last())

	require.IsType((*expression.Arithmetic)(nil), s.Targets[2])
}

func TestParseWhere(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(),
		"SELECT * FROM tab WHERE a = 1 AND b BETWEEN 2 AND 3 OR c IN (4, 5)")
	require.NoError(err)
	require.NotNil(s.Where)

	or, ok := s.Where.(*expression.Or)
	require.True(ok)
	and, ok := or.Left.(*expression.And)
	require.True(ok)
	require.IsType((*expression.Equals)(nil), and.Left)
	require.IsType((*expression.Between)(nil), and.Right)
	require.IsType((*expression.In)(nil), or.Right)
}

func TestParseOrderByLimit(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(),
		"SELECT a FROM tab ORDER BY a DESC, b LIMIT 5 OFFSET 2")
	require.NoError(err)
	require.Len(s.OrderBy, 2)
	require.Equal(plan.Descending, s.OrderBy[0].Order)
	require.Equal(plan.Ascending, s.OrderBy[1].Order)
	require.NotNil(s.Limit)
	require.Equal(int64(5), *s.Limit)
	require.NotNil(s.Offset)
	require.Equal(int64(2), *s.Offset)
}

func TestParseGroupByHaving(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(),
		"SELECT cat, count(*) AS c FROM tab GROUP BY cat HAVING count(*) > 1")
	require.NoError(err)
	require.Len(s.GroupBy, 1)
	require.NotNil(s.Having)

	alias, ok := s.Targets[1].(*expression.Alias)
	require.True(ok)
	fn, ok := alias.Child.(*expression.UnresolvedFunction)
	require.True(ok)
	require.True(fn.IsAggregate)
	require.Equal("count", fn.Name())
}

func TestParseDistinct(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(), "SELECT DISTINCT a FROM tab")
	require.NoError(err)
	require.True(s.Distinct)
}

func TestParseSystemVariable(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(), "SELECT @@version_comment")
	require.NoError(err)
	require.Equal("", s.From)
	v, ok := s.Targets[0].(*expression.SystemVariable)
	require.True(ok)
	require.Equal("version_comment", v.Name())
}

func TestParseNoFrom(t *testing.T) {
	require := require.New(t)

	s, err := Parse(sql.NewEmptyContext(), "SELECT 1")
	require.NoError(err)
	require.Equal("", s.From)
	lit, ok := s.Targets[0].(*expression.Literal)
	require.True(ok)
	require.Equal(int64(1), lit.Value())
}

func TestParseSyntaxError(t *testing.T) {
	require := require.New(t)

	_, err := Parse(sql.NewEmptyContext(), "SELECT FROM WHERE")
	require.Error(err)
	require.True(sql.ErrSyntaxError.Is(err))
}

func TestParseNonSelect(t *testing.T) {
	require := require.New(t)

	_, err := Parse(sql.NewEmptyContext(), "INSERT INTO t VALUES (1)")
	require.Error(err)
	require.True(sql.ErrUnsupportedSyntax.Is(err))
}
