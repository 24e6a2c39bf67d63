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
	"database/sql"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

// DriverName is the database/sql driver Connect opens.
const DriverName = "sqlite"

// Mode controls what Execute does with the current transaction.
type Mode int

const (
	// CommitOnSuccess commits the current transaction, if any, after a
	// successful statement. Statements outside a transaction autocommit.
	CommitOnSuccess Mode = iota
	// NoAutoCommit starts a transaction if none is open and leaves it open.
	NoAutoCommit
)

// ErrorInfo is the last failure recorded on a connection or statement.
type ErrorInfo struct {
	Code    int
	Message string
	SQLText string
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn is a database connection. It keeps the error of its last call.
type Conn struct {
	cell lasterr.Cell

	db     *sql.DB
	tx     *sql.Tx
	env    *call.Env
	closed bool
}

// Statement is a parsed SQL statement. It keeps the error of its last
// call and, after a query, the buffered rows.
type Statement struct {
	cell lasterr.Cell

	conn   *Conn
	text   string
	kind   string
	names  []string
	binds  map[string]any
	cols   []string
	rows   [][]any
	pos    int
	count  int64
	freed  bool
	loaded bool
}

// Option configures Connect.
type Option func(*options)

type options struct {
	env *call.Env
}

// WithEnv runs the connection's wrapped calls in env.
func WithEnv(env *call.Env) Option {
	return func(o *options) { o.env = env }
}

func (c *Conn) executor() execer {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

// Error returns the last failure on c, or nil.
func (c *Conn) Error() *ErrorInfo {
	ctx, ok := c.cell.Last()
	if !ok {
		return nil
	}
	return &ErrorInfo{Code: ctx.Number, Message: ctx.Message}
}

// Error returns the last failure on s, or nil.
func (s *Statement) Error() *ErrorInfo {
	ctx, ok := s.cell.Last()
	if !ok {
		return nil
	}
	return &ErrorInfo{Code: ctx.Number, Message: ctx.Message, SQLText: s.text}
}

// Type returns the statement's leading keyword in upper case, such as
// "SELECT" or "INSERT", or "UNKNOWN".
func (s *Statement) Type() string { return s.kind }

// Columns returns the column names of the last query.
func (s *Statement) Columns() []string { return s.cols }
