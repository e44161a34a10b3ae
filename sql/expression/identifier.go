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

package expression

import (
	"strings"

	"github.com/dolthub/stepflow/sql"
)

// Identifier is an unbound column reference: one or more dotted parts, the
// last being the column name and the one before it, if any, the table
// qualifier. Each part records whether it was quoted in the source query;
// quoted parts resolve case-sensitively, unquoted ones do not. Step calls
// rewrite Identifiers to physical hash names before handing the query to
// the engine.
type Identifier struct {
	parts  []string
	quoted []bool
}

var _ sql.Expression = (*Identifier)(nil)

// NewIdentifier creates an unquoted identifier from the given parts.
func NewIdentifier(parts ...string) *Identifier {
	return &Identifier{parts: parts, quoted: make([]bool, len(parts))}
}

// NewQuotedIdentifier creates an identifier with every part quoted.
func NewQuotedIdentifier(parts ...string) *Identifier {
	quoted := make([]bool, len(parts))
	for i := range quoted {
		quoted[i] = true
	}
	return &Identifier{parts: parts, quoted: quoted}
}

// Parts returns the dotted parts of the identifier.
func (i *Identifier) Parts() []string {
	return i.parts
}

// Last returns the column part of the identifier.
func (i *Identifier) Last() string {
	return i.parts[len(i.parts)-1]
}

// Qualifier returns the table part of the identifier, or an empty string
// for a bare column reference.
func (i *Identifier) Qualifier() string {
	if len(i.parts) < 2 {
		return ""
	}
	return i.parts[len(i.parts)-2]
}

// LastQuoted reports whether the column part was quoted.
func (i *Identifier) LastQuoted() bool {
	return i.quoted[len(i.quoted)-1]
}

// Resolved implements the Expression interface.
func (i *Identifier) Resolved() bool {
	return false
}

// Eval implements the Expression interface.
func (i *Identifier) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, ErrUnresolvedExpression.New(i.String())
}

// Children implements the Expression interface.
func (i *Identifier) Children() []sql.Expression {
	return nil
}

// WithChildren implements the Expression interface.
func (i *Identifier) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(i, len(children), 0)
	}
	return i, nil
}

// Name implements the Nameable interface.
func (i *Identifier) Name() string {
	return i.Last()
}

func (i *Identifier) String() string {
	return strings.Join(i.parts, ".")
}
