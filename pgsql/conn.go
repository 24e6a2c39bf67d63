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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

// Driver is the part of a PostgreSQL connection a Conn drives. *pgx.Conn
// satisfies it.
type Driver interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var _ Driver = (*pgx.Conn)(nil)

// Conn is a database connection. Each connection keeps the error of its
// last call, read by LastError.
type Conn struct {
	cell lasterr.Cell

	drv      Driver
	env      *call.Env
	prepared map[string]bool
	closed   bool
}

// Result is a fully buffered query result. Each result keeps the error of
// its last fetch.
type Result struct {
	cell lasterr.Cell

	env      *call.Env
	cols     []string
	rows     [][]any
	pos      int
	affected int64
	status   string
	freed    bool
}

// Option configures Connect.
type Option func(*options)

type options struct {
	env     *call.Env
	connect func(ctx context.Context, dsn string) (Driver, error)
}

// WithEnv runs the connection's wrapped calls in env. Without it each
// connection gets a fork of call.Default, so a slow connect never stalls
// other calls.
func WithEnv(env *call.Env) Option {
	return func(o *options) { o.env = env }
}

// WithConnector replaces pgx.Connect.
func WithConnector(connect func(ctx context.Context, dsn string) (Driver, error)) Option {
	return func(o *options) { o.connect = connect }
}

func apply(opts []Option) options {
	o := options{connect: func(ctx context.Context, dsn string) (Driver, error) {
		c, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return c, nil
	}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.env == nil {
		o.env = call.Default.Fork()
	}
	return o
}

// LastError returns the message of the last failed call on c, "" after a
// success.
func (c *Conn) LastError() string { return c.cell.Message() }

// NumRows returns the number of rows in r.
func (r *Result) NumRows() int { return len(r.rows) }

// FieldNames returns the column names of r.
func (r *Result) FieldNames() []string { return r.cols }

// AffectedRows returns the number of rows the statement inserted, updated,
// deleted or selected.
func (r *Result) AffectedRows() int64 { return r.affected }

// Status returns the command tag, e.g. "INSERT 0 1".
func (r *Result) Status() string { return r.status }
