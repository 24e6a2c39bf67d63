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
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/lasterr"
)

// record builds the record for a driver failure. Server errors are
// classified by SQLSTATE; connection failures without one are treated as
// class 08.
func record(err error) lasterr.Context {
	ctx := lasterr.Context{Message: err.Error(), Cause: err}
	var (
		pe  *pgconn.PgError
		ce  *pgconn.ConnectError
		pce *pgconn.ParseConfigError
	)
	switch {
	case errors.As(err, &pe):
		ctx.Message = pe.Severity + ":  " + pe.Message
		ctx.Code = Classify(pe.Code)
		ctx.Details = pgDetails(pe)
	case errors.Is(err, context.Canceled):
		ctx.Code = code.Canceled
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		ctx.Code = code.Timeout
	case errors.As(err, &pce):
		ctx.Code = code.Invalid
	case errors.As(err, &ce):
		ctx.Code = code.Unavailable
		ctx.Details = map[string]any{"sqlstate": "08006"}
	default:
		ctx.Code = code.Internal
	}
	return ctx
}

func pgDetails(pe *pgconn.PgError) map[string]any {
	d := map[string]any{"sqlstate": pe.Code}
	for k, v := range map[string]string{
		"detail":     pe.Detail,
		"hint":       pe.Hint,
		"constraint": pe.ConstraintName,
		"table":      pe.TableName,
		"column":     pe.ColumnName,
	} {
		if v != "" {
			d[k] = v
		}
	}
	return d
}

func connect(ctx context.Context, o options, dsn string) *Conn {
	drv, err := o.connect(ctx, dsn)
	if err != nil {
		o.env.Register().Report(record(err))
		return nil
	}
	return &Conn{drv: drv, env: o.env, prepared: map[string]bool{}}
}

func (c *Conn) usable() bool {
	if c.closed {
		c.cell.Report(lasterr.Context{Message: "connection is closed", Code: code.BadHandle})
		return false
	}
	return true
}

func (c *Conn) fail(err error) {
	c.cell.Report(record(err))
}

func (c *Conn) query(ctx context.Context, sql string, args []any) *Result {
	if !c.usable() {
		return nil
	}
	rows, err := c.drv.Query(ctx, sql, args...)
	if err != nil {
		c.fail(err)
		return nil
	}
	defer rows.Close()

	res := &Result{env: c.env}
	for _, fd := range rows.FieldDescriptions() {
		res.cols = append(res.cols, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			c.fail(err)
			return nil
		}
		res.rows = append(res.rows, vals)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		c.fail(err)
		return nil
	}
	tag := rows.CommandTag()
	res.affected = tag.RowsAffected()
	res.status = tag.String()
	return res
}

func (c *Conn) prepare(ctx context.Context, name, sql string) bool {
	if !c.usable() {
		return false
	}
	if _, err := c.drv.Prepare(ctx, name, sql); err != nil {
		c.fail(err)
		return false
	}
	c.prepared[name] = true
	return true
}

func (c *Conn) execute(ctx context.Context, name string, args []any) *Result {
	if !c.usable() {
		return nil
	}
	if !c.prepared[name] {
		c.cell.Report(lasterr.Context{
			Message: fmt.Sprintf("ERROR:  prepared statement %q does not exist", name),
			Code:    Classify("26000"),
			Details: map[string]any{"sqlstate": "26000"},
		})
		return nil
	}
	return c.query(ctx, name, args)
}

func (c *Conn) ping(ctx context.Context) bool {
	if !c.usable() {
		return false
	}
	if err := c.drv.Ping(ctx); err != nil {
		c.fail(err)
		return false
	}
	return true
}

func (c *Conn) close(ctx context.Context) bool {
	if !c.usable() {
		return false
	}
	c.closed = true
	if err := c.drv.Close(ctx); err != nil {
		c.fail(err)
		return false
	}
	return true
}

func (r *Result) live() bool {
	if r.freed {
		r.cell.Report(lasterr.Context{Message: "result has already been freed", Code: code.BadHandle})
		return false
	}
	return true
}

func (r *Result) row(i int) map[string]any {
	m := make(map[string]any, len(r.cols))
	for j, name := range r.cols {
		if j < len(r.rows[i]) {
			m[name] = r.rows[i][j]
		}
	}
	return m
}

// fetchAssoc returns the next row, or nil with done set at the end.
func (r *Result) fetchAssoc() (m map[string]any, done bool) {
	if !r.live() {
		return nil, false
	}
	if r.pos >= len(r.rows) {
		return nil, true
	}
	m = r.row(r.pos)
	r.pos++
	return m, false
}

func (r *Result) fetchAll() []map[string]any {
	if !r.live() {
		return nil
	}
	out := make([]map[string]any, 0, len(r.rows))
	for i := range r.rows {
		out = append(out, r.row(i))
	}
	return out
}

func (r *Result) free() bool {
	if !r.live() {
		return false
	}
	r.freed = true
	r.rows = nil
	return true
}
