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

package sql

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
)

// Column describes one column of a ResultSet. Name is the physical name on
// the producing source, Alias the logical display name, TableName and
// TableAlias the source table and its alias in the query, and Database the
// source database. Within one ResultSet the (TableAlias, Alias) pair is
// unique; the bare Alias need not be.
type Column struct {
	Name       string
	Alias      string
	TableName  string
	TableAlias string
	Database   string
}

// NewColumn creates a column whose alias defaults to its name.
func NewColumn(name string) *Column {
	return &Column{Name: name, Alias: name}
}

// hashKey is the content-addressed identity of a column: the pair that is
// unique within a ResultSet.
type hashKey struct {
	TableAlias string
	Alias      string
}

// HashName returns the disambiguating physical column name for this column
// under the given role prefix ("A" for the left side of a two-input
// operation, "B" for the right). The hash is a deterministic function of
// (TableAlias, Alias), so repeated executions produce the same frame names.
func (c *Column) HashName(prefix string) string {
	h, err := hashstructure.Hash(hashKey{TableAlias: c.TableAlias, Alias: c.Alias}, nil)
	if err != nil {
		// hashstructure cannot fail on a struct of strings
		panic(err)
	}
	return fmt.Sprintf("%s%x", prefix, h)
}

// TableNames returns the names the column's table can be referenced by: the
// table name, plus the table alias when it differs. Empty names are skipped.
func (c *Column) TableNames() []string {
	var names []string
	if c.TableName != "" {
		names = append(names, c.TableName)
	}
	if c.TableAlias != "" && c.TableAlias != c.TableName {
		names = append(names, c.TableAlias)
	}
	return names
}

// Equals checks whether two columns carry the same metadata.
func (c *Column) Equals(c2 *Column) bool {
	return c.Name == c2.Name &&
		c.Alias == c2.Alias &&
		c.TableName == c2.TableName &&
		c.TableAlias == c2.TableAlias &&
		c.Database == c2.Database
}
