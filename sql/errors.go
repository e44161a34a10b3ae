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
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrKeyColumnDoesNotExist is returned when an identifier cannot be bound
	// to any physical column or session construct. The message carries a
	// bounded sample of the valid alternatives.
	ErrKeyColumnDoesNotExist = errors.NewKind("column not found: %s. available columns: %s")

	// ErrNotSupportedYet is returned for operations the engine refuses to
	// perform, such as unconditioned cross joins over the safety bound.
	ErrNotSupportedYet = errors.NewKind("not supported: %s")

	// ErrRowIDNotFound is returned when a row-identity join is requested but
	// neither side carries a row id column.
	ErrRowIDNotFound = errors.NewKind("unable to find row id")

	// ErrUnknownSystemVariable is returned when a @@variable reference does
	// not match any known server variable.
	ErrUnknownSystemVariable = errors.NewKind("unknown variable %q")

	// ErrColumnNotFound is returned when the engine cannot bind a column name
	// against the frame it executes over.
	ErrColumnNotFound = errors.NewKind("column %q could not be found in any table in scope")

	// ErrTableNotFound is returned when the query references a frame that was
	// not registered with the engine call.
	ErrTableNotFound = errors.NewKind("table not found: %s")

	// ErrAmbiguousColumnName is returned when an unqualified column reference
	// matches columns on both sides of a join.
	ErrAmbiguousColumnName = errors.NewKind("ambiguous column name %q, it's present in all these tables: %v")

	// ErrSyntaxError mirrors the MySQL server parse error text. It is raised
	// deliberately for client probe tokens that must be answered with a parse
	// error for the connection to continue.
	ErrSyntaxError = errors.NewKind(
		"You have an error in your SQL syntax; check the manual that corresponds " +
			"to your server version for the right syntax to use near '%s' at line 1")

	// ErrUnsupportedSyntax is returned for SQL constructs the parse layer
	// does not translate.
	ErrUnsupportedSyntax = errors.NewKind("unsupported syntax: %#v")

	// ErrUnsupportedFeature is returned for SQL features out of the scope of
	// this engine.
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %v")

	// ErrInvalidChildrenNumber is returned when WithChildren is called with
	// the wrong number of children.
	ErrInvalidChildrenNumber = errors.NewKind("%v: invalid children number, got %d, expected %d")

	// ErrInvalidType is returned when a value of an unexpected type reaches
	// comparison or arithmetic evaluation.
	ErrInvalidType = errors.NewKind("invalid type: %T")

	// ErrTypeMismatch is returned when two values cannot be compared under
	// strict type inference.
	ErrTypeMismatch = errors.NewKind("cannot compare values of types %T and %T")

	// ErrFunctionNotFound is returned when a function name cannot be bound
	// against the registry.
	ErrFunctionNotFound = errors.NewKind("function not found: %s")

	// ErrInvalidArgumentNumber is returned when a function is called with the
	// wrong number of arguments.
	ErrInvalidArgumentNumber = errors.NewKind("function %s expected %v arguments, %v received")

	// ErrStepResultNotFound is returned when a parameter placeholder
	// references a step number with no published result.
	ErrStepResultNotFound = errors.NewKind("no result available for step %d")
)

// columnSampleSize bounds how many valid alternatives are listed in a
// KeyColumnDoesNotExist message.
const columnSampleSize = 20

// FormatColumnSample renders a bounded, comma-separated sample of column
// names for resolution error messages, with a trailing count of the
// remainder.
func FormatColumnSample(names []string) string {
	if len(names) <= columnSampleSize {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s ... and %d more",
		strings.Join(names[:columnSampleSize], ", "), len(names)-columnSampleSize)
}
