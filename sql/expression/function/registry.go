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

package function

import (
	"github.com/dolthub/stepflow/sql"
	"github.com/dolthub/stepflow/sql/expression/aggregation"
)

// CreateFunc builds a resolved function expression from its arguments.
type CreateFunc func(args ...sql.Expression) (sql.Expression, error)

// Defaults is the default function registry the engine binds
// UnresolvedFunction nodes against.
var Defaults = map[string]CreateFunc{
	"lower":    createUnary("lower", NewLower),
	"upper":    createUnary("upper", NewUpper),
	"length":   createUnary("length", NewLength),
	"abs":      createUnary("abs", NewAbs),
	"round":    NewRound,
	"concat":   NewConcat,
	"coalesce": NewCoalesce,

	"count": createUnary("count", aggregation.NewCount),
	"sum":   createUnary("sum", aggregation.NewSum),
	"avg":   createUnary("avg", aggregation.NewAvg),
	"min":   createUnary("min", aggregation.NewMin),
	"max":   createUnary("max", aggregation.NewMax),
}

// Get returns the constructor registered under the given name.
func Get(name string) (CreateFunc, error) {
	fn, ok := Defaults[name]
	if !ok {
		return nil, sql.ErrFunctionNotFound.New(name)
	}
	return fn, nil
}

func createUnary(name string, ctor func(sql.Expression) sql.Expression) CreateFunc {
	return func(args ...sql.Expression) (sql.Expression, error) {
		if len(args) != 1 {
			return nil, sql.ErrInvalidArgumentNumber.New(name, 1, len(args))
		}
		return ctor(args[0]), nil
	}
}
