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
	"github.com/dolthub/stepflow/sql/plan"
	"github.com/dolthub/stepflow/sql/transform"
)

// checkClientProbes rejects statements carrying client handshake probe
// tokens before any column resolution happens. MySQL clients since 9.0 send
// SELECT $$ during connection setup and expect the server's parse error to
// identify the flavor; answering it with a resolution error breaks the
// handshake.
func checkClientProbes(stmt *plan.Select) error {
	exprs := append([]sql.Expression(nil), stmt.Targets...)
	if stmt.Where != nil {
		exprs = append(exprs, stmt.Where)
	}
	exprs = append(exprs, stmt.GroupBy...)
	if stmt.Having != nil {
		exprs = append(exprs, stmt.Having)
	}
	for _, f := range stmt.OrderBy {
		exprs = append(exprs, f.Column)
	}

	for _, t := range exprs {
		var probed bool
		transform.InspectExpr(t, func(e sql.Expression) bool {
			if id, ok := e.(*expression.Identifier); ok && strings.ToLower(id.Last()) == "$$" {
				probed = true
				return false
			}
			return true
		})
		if probed {
			return sql.ErrSyntaxError.New("$$")
		}
	}
	return nil
}
