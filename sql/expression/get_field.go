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
	"fmt"

	"github.com/dolthub/stepflow/sql"
)

// GetField is a column reference bound to a position of the row the engine
// evaluates over.
type GetField struct {
	fieldIndex int
	table      string
	name       string
}

var _ sql.Expression = (*GetField)(nil)

// NewGetField creates a GetField expression.
func NewGetField(index int, fieldName string) *GetField {
	return NewGetFieldWithTable(index, "", fieldName)
}

// NewGetFieldWithTable creates a GetField expression with a table name. The
// table name may be an alias.
func NewGetFieldWithTable(index int, table, fieldName string) *GetField {
	return &GetField{
		fieldIndex: index,
		table:      table,
		name:       fieldName,
	}
}

// Index returns the position this field reads from a row.
func (p *GetField) Index() int { return p.fieldIndex }

// Table implements the Tableable interface.
func (p *GetField) Table() string { return p.table }

// Name implements the Nameable interface.
func (p *GetField) Name() string { return p.name }

// Resolved implements the Expression interface.
func (p *GetField) Resolved() bool {
	return true
}

// Eval implements the Expression interface.
func (p *GetField) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if p.fieldIndex < 0 || p.fieldIndex >= len(row) {
		return nil, sql.ErrColumnNotFound.New(p.name)
	}
	return row[p.fieldIndex], nil
}

// Children implements the Expression interface.
func (p *GetField) Children() []sql.Expression {
	return nil
}

// WithChildren implements the Expression interface.
func (p *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

func (p *GetField) String() string {
	if p.table == "" {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.table, p.name)
}
