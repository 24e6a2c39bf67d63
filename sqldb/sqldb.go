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

package sqldb

import (
	"context"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opConnect    = call.MustOp(safecall.SQL, "connect")
	opParse      = call.MustOp(safecall.SQL, "parse")
	opBind       = call.MustOp(safecall.SQL, "bind_by_name")
	opExecute    = call.MustOp(safecall.SQL, "execute")
	opFetchAssoc = call.MustOp(safecall.SQL, "fetch_assoc")
	opFetchAll   = call.MustOp(safecall.SQL, "fetch_all")
	opNumRows    = call.MustOp(safecall.SQL, "num_rows")
	opCommit     = call.MustOp(safecall.SQL, "commit")
	opRollback   = call.MustOp(safecall.SQL, "rollback")
	opFree       = call.MustOp(safecall.SQL, "free_statement")
	opClose      = call.MustOp(safecall.SQL, "close")
)

// Connect opens the SQLite database named by dsn, a file path or
// ":memory:".
func Connect(ctx context.Context, dsn string, opts ...Option) (*Conn, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return call.Ambient(o.env, opConnect, call.Nil[Conn](), func() *Conn { return connect(ctx, o, dsn) })
}

// Parse prepares text for execution. Parameters are written :name.
// Syntax errors surface from Execute.
func (c *Conn) Parse(text string) (*Statement, error) {
	return call.Handle(c.env, &c.cell, opParse, call.Nil[Statement](), func() *Statement { return c.parse(text) })
}

// BindByName binds value to the parameter name, with or without the
// leading colon.
func (s *Statement) BindByName(name string, value any) error {
	return call.HandleBool(s.conn.env, &s.cell, opBind, func() bool { return s.bind(name, value) })
}

// Execute runs the statement. mode defaults to CommitOnSuccess. Query
// results are buffered for the fetch methods.
func (s *Statement) Execute(ctx context.Context, mode call.Opt[Mode]) error {
	return call.HandleBool(s.conn.env, &s.cell, opExecute, func() bool { return s.execute(ctx, mode.Or(CommitOnSuccess)) })
}

// FetchAssoc returns the next row keyed by column name. After the last
// row it returns nil and no error.
func (s *Statement) FetchAssoc() (map[string]any, error) {
	var done bool
	failed := func(m map[string]any) bool { return m == nil && !done }
	return call.Handle(s.conn.env, &s.cell, opFetchAssoc, failed, func() map[string]any {
		m, end := s.fetchAssoc()
		done = end
		return m
	})
}

// FetchAll returns the remaining rows.
func (s *Statement) FetchAll() ([]map[string]any, error) {
	return call.Handle(s.conn.env, &s.cell, opFetchAll, call.NilSlice[map[string]any](), s.fetchAll)
}

// NumRows returns the rows fetched so far for a query, or the rows
// affected by any other statement.
func (s *Statement) NumRows() (int64, error) {
	return call.Handle(s.conn.env, &s.cell, opNumRows, call.Negative[int64](), s.numRows)
}

// FreeStatement releases s.
func (s *Statement) FreeStatement() error {
	return call.HandleBool(s.conn.env, &s.cell, opFree, s.free)
}

// Commit commits the open transaction. Without one it does nothing.
func (c *Conn) Commit() error {
	return call.HandleBool(c.env, &c.cell, opCommit, func() bool { return c.finish(true) })
}

// Rollback rolls back the open transaction. Without one it does nothing.
func (c *Conn) Rollback() error {
	return call.HandleBool(c.env, &c.cell, opRollback, func() bool { return c.finish(false) })
}

// Close rolls back any open transaction and closes the connection.
func (c *Conn) Close() error {
	return call.HandleBool(c.env, &c.cell, opClose, c.close)
}
