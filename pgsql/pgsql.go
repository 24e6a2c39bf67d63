/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package pgsql

import (
	"context"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opConnect    = call.MustOp(safecall.Database, "pg_connect")
	opQuery      = call.MustOp(safecall.Database, "pg_query")
	opPrepare    = call.MustOp(safecall.Database, "pg_prepare")
	opExecute    = call.MustOp(safecall.Database, "pg_execute")
	opPing       = call.MustOp(safecall.Database, "pg_ping")
	opClose      = call.MustOp(safecall.Database, "pg_close")
	opFetchAssoc = call.MustOp(safecall.Database, "pg_fetch_assoc")
	opFetchAll   = call.MustOp(safecall.Database, "pg_fetch_all")
	opFree       = call.MustOp(safecall.Database, "pg_free_result")
)

// Connect opens a connection described by dsn, a URL or keyword/value
// connection string.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Conn, error) {
	o := apply(opts)
	return call.Ambient(o.env, opConnect, call.Nil[Conn](), func() *Conn { return connect(ctx, o, dsn) })
}

// Query runs sql with positional parameters ($1, $2, ...) and buffers the
// whole result.
func (c *Conn) Query(ctx context.Context, sql string, params ...any) (*Result, error) {
	return call.Handle(c.env, &c.cell, opQuery, call.Nil[Result](), func() *Result { return c.query(ctx, sql, params) })
}

// Prepare creates the named prepared statement.
func (c *Conn) Prepare(ctx context.Context, name, sql string) error {
	return call.HandleBool(c.env, &c.cell, opPrepare, func() bool { return c.prepare(ctx, name, sql) })
}

// Execute runs a statement created by Prepare.
func (c *Conn) Execute(ctx context.Context, name string, params ...any) (*Result, error) {
	return call.Handle(c.env, &c.cell, opExecute, call.Nil[Result](), func() *Result { return c.execute(ctx, name, params) })
}

// Ping checks that the server is reachable.
func (c *Conn) Ping(ctx context.Context) error {
	return call.HandleBool(c.env, &c.cell, opPing, func() bool { return c.ping(ctx) })
}

// Close closes the connection.
func (c *Conn) Close(ctx context.Context) error {
	return call.HandleBool(c.env, &c.cell, opClose, func() bool { return c.close(ctx) })
}

// FetchAssoc returns the next row keyed by column name. After the last
// row it returns nil and no error.
func (r *Result) FetchAssoc() (map[string]any, error) {
	var done bool
	failed := func(m map[string]any) bool { return m == nil && !done }
	return call.Handle(r.env, &r.cell, opFetchAssoc, failed, func() map[string]any {
		m, end := r.fetchAssoc()
		done = end
		return m
	})
}

// FetchAll returns every row keyed by column name. An empty result is an
// empty slice.
func (r *Result) FetchAll() ([]map[string]any, error) {
	return call.Handle(r.env, &r.cell, opFetchAll, call.NilSlice[map[string]any](), r.fetchAll)
}

// Free releases the rows held by r.
func (r *Result) Free() error {
	return call.HandleBool(r.env, &r.cell, opFree, r.free)
}
