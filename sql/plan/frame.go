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

package plan

import (
	"fmt"
	"io"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/dolthub/stepflow/sql"
)

// Frame is a leaf node producing the rows of an in-memory data frame.
type Frame struct {
	name string
	df   *sql.DataFrame
}

var _ sql.Node = (*Frame)(nil)

// NewFrame creates a Frame node over the given data frame.
func NewFrame(name string, df *sql.DataFrame) *Frame {
	return &Frame{name: name, df: df}
}

// Name returns the name the frame was registered under.
func (f *Frame) Name() string { return f.name }

// Schema implements the Node interface.
func (f *Frame) Schema() []string {
	return f.df.Names()
}

// Children implements the Node interface.
func (f *Frame) Children() []sql.Node {
	return nil
}

// RowIter implements the Node interface.
func (f *Frame) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, _ := ctx.Span("plan.Frame", opentracing.Tag{Key: "frame", Value: f.name})
	return sql.NewSpanIter(span, &frameIter{df: f.df}), nil
}

// WithChildren implements the Node interface.
func (f *Frame) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 0)
	}
	return f, nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(%s)", f.name)
}

type frameIter struct {
	df  *sql.DataFrame
	idx int
}

func (i *frameIter) Next() (sql.Row, error) {
	if i.idx >= i.df.NumRows() {
		return nil, io.EOF
	}
	row := i.df.Row(i.idx)
	i.idx++
	return row, nil
}

func (i *frameIter) Close() error {
	return nil
}
