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
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/code"
)

func open(t *testing.T) *Conn {
	t.Helper()
	c, err := Connect(context.Background(), ":memory:", WithEnv(call.NewEnv()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	run(t, c, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE, age INTEGER CHECK (age >= 0))")
	return c
}

func run(t *testing.T, c *Conn, text string, binds ...any) *Statement {
	t.Helper()
	s, err := c.Parse(text)
	require.NoError(t, err)
	for i := 0; i+1 < len(binds); i += 2 {
		require.NoError(t, s.BindByName(binds[i].(string), binds[i+1]))
	}
	require.NoError(t, s.Execute(context.Background(), call.Opt[Mode]{}))
	return s
}

func requireSQLError(t *testing.T, err error, c code.Code, op string, rc int) *safecall.Error {
	t.Helper()
	require.Error(t, err)
	var se *safecall.SQLError
	require.True(t, errors.As(err, &se), "want *safecall.SQLError, got %T", err)
	assert.Equal(t, c, se.Err.Code)
	assert.Equal(t, op, se.Err.Op)
	assert.Equal(t, "sql."+op, se.Err.Reason.String())
	assert.Equal(t, rc, se.Err.Errno)
	return se.Err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		rc   int
		want code.Code
	}{
		{ConstraintUnique, code.AlreadyExists},
		{ConstraintPrimaryKey, code.AlreadyExists},
		{ConstraintNotNull, code.Invalid},
		{ConstraintCheck, code.PreconditionFailed},
		{ConstraintForeignKey, code.NotFound},
		{ResultConstraint, code.Conflict},
		{ResultError, code.Invalid},
		{ResultBusy, code.WouldBlock},
		{ResultCantOpen, code.Unavailable},
		{ResultFull, code.QuotaExceeded},
		{266, code.IOFailure},
		{9999 << 8, code.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.rc), "result code %d", tt.rc)
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"name", "age"},
		placeholders("INSERT INTO t VALUES (:name, :age, ':quoted', :name)"))
	assert.Empty(t, placeholders("SELECT 1"))
	assert.Equal(t, "SELECT", keyword("  select * from t"))
	assert.Equal(t, "UNKNOWN", keyword("  ;"))
}

func TestInsertAndFetch(t *testing.T) {
	c := open(t)

	s := run(t, c, "INSERT INTO users(name, age) VALUES (:name, :age)", ":name", "ada", "age", 36)
	assert.Equal(t, "INSERT", s.Type())
	n, err := s.NumRows()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	run(t, c, "INSERT INTO users(name, age) VALUES (:name, :age)", "name", "grace", "age", 45)

	s = run(t, c, "SELECT name, age FROM users ORDER BY age")
	assert.Equal(t, []string{"name", "age"}, s.Columns())
	row, err := s.FetchAssoc()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ada", "age": int64(36)}, row)
	n, err = s.NumRows()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "rows fetched so far")

	rest, err := s.FetchAll()
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "grace", rest[0]["name"])

	row, err = s.FetchAssoc()
	require.NoError(t, err, "end of rows is not a failure")
	assert.Nil(t, row)
	assert.Nil(t, s.Error())
}

func TestExecuteFailures(t *testing.T) {
	c := open(t)
	run(t, c, "INSERT INTO users(name) VALUES (:n)", "n", "ada")

	s, err := c.Parse("INSERT INTO users(name) VALUES (:n)")
	require.NoError(t, err)
	require.NoError(t, s.BindByName("n", "ada"))
	err = s.Execute(context.Background(), call.Opt[Mode]{})
	e := requireSQLError(t, err, code.AlreadyExists, "execute", ConstraintUnique)
	assert.Equal(t, ConstraintUnique, e.Details["native_code"])
	info := s.Error()
	require.NotNil(t, info)
	assert.Equal(t, ConstraintUnique, info.Code)
	assert.Contains(t, info.Message, "UNIQUE constraint failed")
	assert.Equal(t, "INSERT INTO users(name) VALUES (:n)", info.SQLText)

	s, err = c.Parse("INSERT INTO users(name, age) VALUES (:n, :a)")
	require.NoError(t, err)
	require.NoError(t, s.BindByName("n", "linus"))
	e = requireSQLError(t, s.Execute(context.Background(), call.Opt[Mode]{}), code.Invalid, "execute", 0)
	assert.Equal(t, `not all variables bound: ":a"`, e.Message)
	require.NoError(t, s.BindByName("a", -1))
	requireSQLError(t, s.Execute(context.Background(), call.Opt[Mode]{}), code.PreconditionFailed, "execute", ConstraintCheck)

	e = requireSQLError(t, s.BindByName("missing", 1), code.Invalid, "bind_by_name", 0)
	assert.Equal(t, `bind variable ":missing" does not occur in the statement`, e.Message)

	s, err = c.Parse("SELEC 1")
	require.NoError(t, err, "syntax errors surface from Execute")
	requireSQLError(t, s.Execute(context.Background(), call.Opt[Mode]{}), code.Invalid, "execute", ResultError)

	s, err = c.Parse("SELECT * FROM missing")
	require.NoError(t, err)
	requireSQLError(t, s.Execute(context.Background(), call.Opt[Mode]{}), code.Invalid, "execute", ResultError)

	_, err = c.Parse("   ")
	requireSQLError(t, err, code.Invalid, "parse", 0)
	require.NotNil(t, c.Error())
	assert.Equal(t, "empty statement", c.Error().Message)
}

func TestFetchBeforeExecute(t *testing.T) {
	c := open(t)
	s, err := c.Parse("SELECT name FROM users")
	require.NoError(t, err)

	_, err = s.FetchAssoc()
	requireSQLError(t, err, code.PreconditionFailed, "fetch_assoc", 0)
	_, err = s.NumRows()
	requireSQLError(t, err, code.PreconditionFailed, "num_rows", 0)

	require.NoError(t, s.Execute(context.Background(), call.Opt[Mode]{}))
	all, err := s.FetchAll()
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestTransactions(t *testing.T) {
	c := open(t)
	ctx := context.Background()
	count := func() int64 {
		s, err := c.Parse("SELECT name FROM users")
		require.NoError(t, err)
		require.NoError(t, s.Execute(ctx, call.Some(NoAutoCommit)))
		rows, err := s.FetchAll()
		require.NoError(t, err)
		return int64(len(rows))
	}

	s, err := c.Parse("INSERT INTO users(name) VALUES (:n)")
	require.NoError(t, err)
	require.NoError(t, s.BindByName("n", "ada"))
	require.NoError(t, s.Execute(ctx, call.Some(NoAutoCommit)))
	assert.Equal(t, int64(1), count(), "the open transaction sees its own rows")
	require.NoError(t, c.Rollback())
	assert.Zero(t, count())

	require.NoError(t, s.Execute(ctx, call.Some(NoAutoCommit)))
	require.NoError(t, c.Commit())
	require.NoError(t, c.Rollback(), "rollback without a transaction does nothing")
	assert.Equal(t, int64(1), count())

	require.NoError(t, s.BindByName("n", "grace"))
	require.NoError(t, s.Execute(ctx, call.Some(NoAutoCommit)))
	require.NoError(t, s.BindByName("n", "linus"))
	require.NoError(t, s.Execute(ctx, call.Some(CommitOnSuccess)))
	require.NoError(t, c.Rollback())
	assert.Equal(t, int64(3), count(), "CommitOnSuccess commits the open transaction")
}

func TestTransactions_ConcurrentCommit(t *testing.T) {
	c := open(t)
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	for g := range 2 {
		s, err := c.Parse("INSERT INTO users(name) VALUES (:n)")
		require.NoError(t, err)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range n {
				assert.NoError(t, s.BindByName("n", fmt.Sprintf("user-%d-%d", g, i)))
				assert.NoError(t, s.Execute(ctx, call.Some(NoAutoCommit)))
			}
		}()
		go func() {
			defer wg.Done()
			for range n {
				assert.NoError(t, c.Commit())
			}
		}()
	}
	wg.Wait()
	require.NoError(t, c.Commit())

	s := run(t, c, "SELECT COUNT(*) AS n FROM users")
	rows, err := s.FetchAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 2*n, rows[0]["n"])
}

func TestFreeAndClose(t *testing.T) {
	c, err := Connect(context.Background(), ":memory:", WithEnv(call.NewEnv()))
	require.NoError(t, err)
	s, err := c.Parse("SELECT 1 AS one")
	require.NoError(t, err)
	require.NoError(t, s.Execute(context.Background(), call.Opt[Mode]{}))

	require.NoError(t, s.FreeStatement())
	requireSQLError(t, s.FreeStatement(), code.BadHandle, "free_statement", 0)
	_, err = s.FetchAll()
	requireSQLError(t, err, code.BadHandle, "fetch_all", 0)

	s, err = c.Parse("SELECT 1")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	requireSQLError(t, c.Close(), code.BadHandle, "close", 0)
	requireSQLError(t, s.Execute(context.Background(), call.Opt[Mode]{}), code.BadHandle, "execute", 0)
	_, err = c.Parse("SELECT 1")
	e := requireSQLError(t, err, code.BadHandle, "parse", 0)
	assert.Equal(t, "connection is closed", e.Message)
}

func TestConnect_CannotOpen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "missing", "db.sqlite")
	c, err := Connect(context.Background(), dsn, WithEnv(call.NewEnv()))
	assert.Nil(t, c)
	requireSQLError(t, err, code.Unavailable, "connect", ResultCantOpen)
}
