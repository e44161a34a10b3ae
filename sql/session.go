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
	"context"
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Session holds the per-connection state the step layer resolves system
// functions and variables against. It is read-mostly and shared by every
// step call of a query.
type Session struct {
	// Database is the currently selected database.
	Database string
	// Username of the connected user.
	Username string
	// ConnectionID of the client connection.
	ConnectionID uint32
}

// NewSession creates a session.
func NewSession(database, username string, connectionID uint32) *Session {
	return &Session{
		Database:     database,
		Username:     username,
		ConnectionID: connectionID,
	}
}

// Context of the query execution. Carries the session, a tracer, a logger
// and a query id for log correlation. Step calls never mutate it; the
// relaxed-types variant is a copy.
type Context struct {
	context.Context
	*Session
	id      string
	tracer  opentracing.Tracer
	logger  *logrus.Entry
	relaxed bool
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithSession adds the given session to the context.
func WithSession(s *Session) ContextOption {
	return func(ctx *Context) {
		ctx.Session = s
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithLogger adds the given logger to the context.
func WithLogger(l *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = l
	}
}

// NewContext creates a new query context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	id, err := uuid.NewV4()
	c := &Context{
		Context: ctx,
		Session: NewSession("", "", 0),
		tracer:  opentracing.NoopTracer{},
	}
	if err == nil {
		c.id = id.String()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a default context with no values.
func NewEmptyContext() *Context {
	return NewContext(context.TODO())
}

// ID returns the unique id of this query context.
func (c *Context) ID() string {
	return c.id
}

// Logger returns the logger of this context, defaulting to the standard
// logger tagged with the query id.
func (c *Context) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.StandardLogger().WithField("query_id", c.id)
	}
	return c.logger
}

// Span creates a new tracing span with the given operation name. It returns
// the span and a new context with the span attached.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)

	ctx := opentracing.ContextWithSpan(c.Context, span)
	newCtx := *c
	newCtx.Context = ctx
	return span, &newCtx
}

// RelaxedTypes reports whether comparisons run with relaxed type inference,
// coercing incomparable values through their string rendering.
func (c *Context) RelaxedTypes() bool {
	return c.relaxed
}

// WithRelaxedTypes returns a copy of the context with relaxed type
// inference enabled.
func (c *Context) WithRelaxedTypes() *Context {
	newCtx := *c
	newCtx.relaxed = true
	return &newCtx
}

// NewSpanIter creates a RowIter that finishes the given span when the
// underlying iterator is drained or closed.
func NewSpanIter(span opentracing.Span, iter RowIter) RowIter {
	return &spanIter{span: span, iter: iter}
}

type spanIter struct {
	span opentracing.Span
	iter RowIter
	done bool
}

func (i *spanIter) Next() (Row, error) {
	row, err := i.iter.Next()
	if err == io.EOF {
		i.finish()
		return nil, err
	}
	if err != nil {
		i.finishWithError(err)
		return nil, err
	}
	return row, nil
}

func (i *spanIter) finish() {
	if !i.done {
		i.span.Finish()
		i.done = true
	}
}

func (i *spanIter) finishWithError(err error) {
	if !i.done {
		i.span.LogKV("error", err.Error())
		i.span.Finish()
		i.done = true
	}
}

func (i *spanIter) Close() error {
	i.finish()
	return i.iter.Close()
}
