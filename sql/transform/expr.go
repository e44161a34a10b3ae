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

// Package transform provides helpers for rewriting expression trees.
package transform

import "github.com/dolthub/stepflow/sql"

// TreeIdentity tracks whether the output of a transformation is the same as
// its input.
type TreeIdentity bool

const (
	// SameTree is returned when the transform did not change the tree.
	SameTree TreeIdentity = true
	// NewTree is returned when the transform replaced at least one node.
	NewTree TreeIdentity = false
)

// ExprFunc is a function that given an expression returns either a
// transformed expression or the expression as it was.
type ExprFunc func(e sql.Expression) (sql.Expression, TreeIdentity, error)

// Expr applies a transformation function to the given expression from the
// bottom up.
func Expr(e sql.Expression, f ExprFunc) (sql.Expression, TreeIdentity, error) {
	children := e.Children()
	if len(children) == 0 {
		return f(e)
	}

	var (
		newChildren []sql.Expression
		err         error
	)
	for i := range children {
		c := children[i]
		c, same, err := Expr(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Expression, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = c
		}
	}

	sameC := SameTree
	if len(newChildren) > 0 {
		sameC = NewTree
		e, err = e.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	e, sameN, err := f(e)
	if err != nil {
		return nil, SameTree, err
	}
	return e, sameC && sameN, nil
}

// ExprDown applies a transformation function to the given expression from the
// top down. When the function replaces a node, the replacement is NOT
// revisited, so rewrites whose output would match the input pattern again do
// not loop.
func ExprDown(e sql.Expression, f ExprFunc) (sql.Expression, TreeIdentity, error) {
	e, sameN, err := f(e)
	if err != nil {
		return nil, SameTree, err
	}
	if !sameN {
		return e, NewTree, nil
	}

	children := e.Children()
	if len(children) == 0 {
		return e, SameTree, nil
	}

	var newChildren []sql.Expression
	for i := range children {
		c := children[i]
		c, same, err := ExprDown(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Expression, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = c
		}
	}

	if len(newChildren) == 0 {
		return e, SameTree, nil
	}
	e, err = e.WithChildren(newChildren...)
	if err != nil {
		return nil, SameTree, err
	}
	return e, NewTree, nil
}

// ExprsFunc is a function that given an expression returns its replacements,
// or the expression itself in a single-element slice when unchanged. A
// one-to-many replacement is allowed, as when a star target expands into the
// columns of its table.
type ExprsFunc func(e sql.Expression) ([]sql.Expression, TreeIdentity, error)

// Exprs applies a transformation function to every expression of the given
// list. Positions where the function returns more than one expression grow
// the list in place.
func Exprs(exprs []sql.Expression, f ExprsFunc) ([]sql.Expression, TreeIdentity, error) {
	var (
		result []sql.Expression
		same   = SameTree
	)
	for i, e := range exprs {
		replacement, sameE, err := f(e)
		if err != nil {
			return nil, SameTree, err
		}
		if sameE && same {
			continue
		}
		if same {
			same = NewTree
			result = make([]sql.Expression, 0, len(exprs))
			result = append(result, exprs[:i]...)
		}
		if sameE {
			result = append(result, e)
		} else {
			same = NewTree
			result = append(result, replacement...)
		}
	}
	if same {
		return exprs, SameTree, nil
	}
	return result, NewTree, nil
}

// InspectExpr traverses the given expression tree top down and calls f on
// each node. Traversal stops on the subtree when f returns false.
func InspectExpr(e sql.Expression, f func(sql.Expression) bool) {
	if !f(e) {
		return
	}
	for _, child := range e.Children() {
		InspectExpr(child, f)
	}
}

// Clone returns a deep copy of the given expression tree. Leaf nodes are
// shared, internal nodes are rebuilt, so rewriting the copy never changes the
// original.
func Clone(e sql.Expression) (sql.Expression, error) {
	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}
	newChildren := make([]sql.Expression, len(children))
	for i, c := range children {
		var err error
		newChildren[i], err = Clone(c)
		if err != nil {
			return nil, err
		}
	}
	return e.WithChildren(newChildren...)
}
