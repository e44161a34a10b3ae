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
)

type tableKey struct {
	Table string
	Alias string
}

// colIndex maps the logical column references of a statement to the hash
// names of a result set's frame. Exact-case entries serve quoted references,
// lowercased entries serve unquoted ones. Registration follows result-set
// order and later entries overwrite earlier ones, so a duplicate bare alias
// resolves to the rightmost column.
type colIndex struct {
	byAlias          map[string]string
	byQualified      map[tableKey]string
	lowerByAlias     map[string]string
	lowerByQualified map[tableKey]string
	// byTable holds the hash names of each table's columns in result-set
	// order, keyed by both table name and table alias.
	byTable map[string][]string
	// sample lists the referenceable keys in result-set order for
	// resolution error messages.
	sample []string
}

// newColIndex builds the reference index of a result set whose frame was
// produced with the given hash-name prefix.
func newColIndex(rs *sql.ResultSet, prefix string) *colIndex {
	idx := &colIndex{
		byAlias:          map[string]string{},
		byQualified:      map[tableKey]string{},
		lowerByAlias:     map[string]string{},
		lowerByQualified: map[tableKey]string{},
		byTable:          map[string][]string{},
	}
	for _, col := range rs.Columns() {
		hash := col.HashName(prefix)

		if _, ok := idx.byAlias[col.Alias]; !ok {
			idx.sample = append(idx.sample, col.Alias)
		}
		idx.byAlias[col.Alias] = hash
		lowerAlias := strings.ToLower(col.Alias)
		idx.lowerByAlias[lowerAlias] = hash

		for _, table := range col.TableNames() {
			key := tableKey{Table: table, Alias: col.Alias}
			if _, ok := idx.byQualified[key]; !ok {
				idx.sample = append(idx.sample, table+"."+col.Alias)
			}
			idx.byQualified[key] = hash
			idx.lowerByQualified[tableKey{
				Table: strings.ToLower(table),
				Alias: lowerAlias,
			}] = hash
			idx.byTable[table] = append(idx.byTable[table], hash)
		}
	}
	return idx
}

// lookup resolves an identifier to a hash name. Quoted references match
// exactly, unquoted ones match exactly first and case-insensitively second.
func (idx *colIndex) lookup(id *expression.Identifier) (string, bool) {
	name := id.Last()
	if q := id.Qualifier(); q != "" {
		if hash, ok := idx.byQualified[tableKey{Table: q, Alias: name}]; ok {
			return hash, true
		}
		if id.LastQuoted() {
			return "", false
		}
		hash, ok := idx.lowerByQualified[tableKey{
			Table: strings.ToLower(q),
			Alias: strings.ToLower(name),
		}]
		return hash, ok
	}
	if hash, ok := idx.byAlias[name]; ok {
		return hash, true
	}
	if id.LastQuoted() {
		return "", false
	}
	hash, ok := idx.lowerByAlias[strings.ToLower(name)]
	return hash, ok
}

// has reports whether a qualified reference resolves, without returning the
// hash name.
func (idx *colIndex) has(id *expression.Identifier) bool {
	_, ok := idx.lookup(id)
	return ok
}

// tableColumns returns the hash names of every column of the given table, in
// result-set order.
func (idx *colIndex) tableColumns(table string) ([]string, bool) {
	if hashes, ok := idx.byTable[table]; ok {
		return hashes, true
	}
	for name, hashes := range idx.byTable {
		if strings.EqualFold(name, table) {
			return hashes, true
		}
	}
	return nil, false
}

// Sample returns the referenceable keys for error messages.
func (idx *colIndex) Sample() string {
	return sql.FormatColumnSample(idx.sample)
}
