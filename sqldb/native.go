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
	"errors"
	"fmt"
	"strings"
	"unicode"

	sqlite "github.com/glebarez/go-sqlite"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/lasterr"
)

var queryKinds = map[string]bool{
	"SELECT": true, "WITH": true, "PRAGMA": true, "VALUES": true, "EXPLAIN": true,
}

func record(err error) lasterr.Context {
	ctx := lasterr.Context{Message: err.Error(), Cause: err}
	var se *sqlite.Error
	switch {
	case errors.As(err, &se):
		ctx.Number = se.Code()
		ctx.Code = Classify(se.Code())
	case errors.Is(err, context.Canceled):
		ctx.Code = code.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		ctx.Code = code.Timeout
	case errors.Is(err, sql.ErrTxDone), errors.Is(err, sql.ErrConnDone):
		ctx.Code = code.PreconditionFailed
	default:
		ctx.Code = code.Internal
	}
	return ctx
}

func connect(ctx context.Context, o options, dsn string) *Conn {
	db, err := sql.Open(DriverName, dsn)
	if err == nil {
		// One connection keeps ":memory:" databases and transactions on
		// the same session.
		db.SetMaxOpenConns(1)
		err = db.PingContext(ctx)
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		o.env.Register().Report(record(err))
		return nil
	}
	return &Conn{db: db, env: o.env}
}

func closedConn() lasterr.Context {
	return lasterr.Context{Message: "connection is closed", Code: code.BadHandle}
}

func (c *Conn) usable() bool {
	if c.closed {
		c.cell.Report(closedConn())
		return false
	}
	return true
}

func (c *Conn) parse(text string) *Statement {
	if !c.usable() {
		return nil
	}
	if strings.TrimSpace(text) == "" {
		c.cell.Report(lasterr.Context{Message: "empty statement", Code: code.Invalid})
		return nil
	}
	return &Statement{
		conn:  c,
		text:  text,
		kind:  keyword(text),
		names: placeholders(text),
		binds: map[string]any{},
	}
}

func keyword(text string) string {
	f := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	if len(f) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(f[0])
}

// placeholders returns the distinct :name parameters of text in order of
// appearance, skipping quoted strings and identifiers.
func placeholders(text string) []string {
	var (
		names []string
		seen  = map[string]bool{}
		quote rune
	)
	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ':' && i+1 < len(rs) && isIdentStart(rs[i+1]):
			j := i + 1
			for j < len(rs) && isIdent(rs[j]) {
				j++
			}
			name := string(rs[i+1 : j])
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i = j - 1
		}
	}
	return names
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdent(r rune) bool      { return isIdentStart(r) || unicode.IsDigit(r) }

func (s *Statement) live() bool {
	if s.freed {
		s.cell.Report(lasterr.Context{Message: "statement has been freed", Code: code.BadHandle})
		return false
	}
	return true
}

func (s *Statement) bind(name string, v any) bool {
	if !s.live() {
		return false
	}
	name = strings.TrimPrefix(name, ":")
	for _, n := range s.names {
		if n == name {
			s.binds[name] = v
			return true
		}
	}
	s.cell.Report(lasterr.Context{
		Message: fmt.Sprintf("bind variable %q does not occur in the statement", ":"+name),
		Code:    code.Invalid,
	})
	return false
}

func (s *Statement) execute(ctx context.Context, mode Mode) bool {
	if !s.live() {
		return false
	}
	c := s.conn
	c.cell.Lock()
	defer c.cell.Unlock()
	if c.closed {
		s.cell.Report(closedConn())
		return false
	}
	args := make([]any, 0, len(s.names))
	for _, n := range s.names {
		v, ok := s.binds[n]
		if !ok {
			s.cell.Report(lasterr.Context{
				Message: fmt.Sprintf("not all variables bound: %q", ":"+n),
				Code:    code.Invalid,
			})
			return false
		}
		args = append(args, sql.Named(n, v))
	}
	if mode == NoAutoCommit && c.tx == nil {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			s.cell.Report(record(err))
			return false
		}
		c.tx = tx
	}

	s.cols, s.rows, s.pos, s.count = nil, nil, 0, 0
	var err error
	if queryKinds[s.kind] {
		err = s.query(ctx, c.executor(), args)
	} else {
		var res sql.Result
		if res, err = c.executor().ExecContext(ctx, s.text, args...); err == nil {
			s.count, _ = res.RowsAffected()
		}
	}
	if err != nil {
		s.cell.Report(record(err))
		return false
	}
	s.loaded = true

	if mode == CommitOnSuccess && c.tx != nil {
		tx := c.tx
		c.tx = nil
		if err := tx.Commit(); err != nil {
			s.cell.Report(record(err))
			return false
		}
	}
	return true
}

func (s *Statement) query(ctx context.Context, ex execer, args []any) error {
	rows, err := ex.QueryContext(ctx, s.text, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	if s.cols, err = rows.Columns(); err != nil {
		return err
	}
	for rows.Next() {
		vals := make([]any, len(s.cols))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		s.rows = append(s.rows, vals)
	}
	return rows.Err()
}

func (s *Statement) ready() bool {
	if !s.live() {
		return false
	}
	if !s.loaded {
		s.cell.Report(lasterr.Context{Message: "statement has not been executed", Code: code.PreconditionFailed})
		return false
	}
	return true
}

func (s *Statement) row(i int) map[string]any {
	m := make(map[string]any, len(s.cols))
	for j, name := range s.cols {
		m[name] = s.rows[i][j]
	}
	return m
}

// fetchAssoc returns the next row, or nil with done set at the end.
func (s *Statement) fetchAssoc() (m map[string]any, done bool) {
	if !s.ready() {
		return nil, false
	}
	if s.pos >= len(s.rows) {
		return nil, true
	}
	m = s.row(s.pos)
	s.pos++
	return m, false
}

// fetchAll returns the rows not fetched yet.
func (s *Statement) fetchAll() []map[string]any {
	if !s.ready() {
		return nil
	}
	out := make([]map[string]any, 0, len(s.rows)-s.pos)
	for ; s.pos < len(s.rows); s.pos++ {
		out = append(out, s.row(s.pos))
	}
	return out
}

// numRows is the number of rows fetched so far for a query, or the number
// of rows affected otherwise.
func (s *Statement) numRows() int64 {
	if !s.ready() {
		return -1
	}
	if queryKinds[s.kind] {
		return int64(s.pos)
	}
	return s.count
}

func (s *Statement) free() bool {
	if !s.live() {
		return false
	}
	s.freed = true
	s.rows, s.binds = nil, nil
	return true
}

func (c *Conn) finish(commit bool) bool {
	if !c.usable() {
		return false
	}
	if c.tx == nil {
		return true
	}
	tx := c.tx
	c.tx = nil
	var err error
	if commit {
		err = tx.Commit()
	} else {
		err = tx.Rollback()
	}
	if err != nil {
		c.cell.Report(record(err))
		return false
	}
	return true
}

func (c *Conn) close() bool {
	if !c.usable() {
		return false
	}
	c.closed = true
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	if err := c.db.Close(); err != nil {
		c.cell.Report(record(err))
		return false
	}
	return true
}
