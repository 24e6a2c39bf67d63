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

package lasterr

import (
	"fmt"
	"io/fs"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/safecall/code"
)

func TestCell_ZeroValueIsEmpty(t *testing.T) {
	var c Cell
	_, ok := c.Last()
	assert.False(t, ok)
	assert.Empty(t, c.Message())
	assert.Zero(t, c.Number())
}

func TestCell_ReportAndClear(t *testing.T) {
	var c Cell
	c.Reportf(int(syscall.ENOENT), "chmod(%s): %s", "/x", "No such file or directory")

	ctx, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, "chmod(/x): No such file or directory", ctx.Message)
	assert.Equal(t, int(syscall.ENOENT), ctx.Number)
	assert.Equal(t, "chmod(/x): No such file or directory", c.Message())

	c.Clear()
	_, ok = c.Last()
	assert.False(t, ok)
}

func TestCell_ReportReplaces(t *testing.T) {
	var c Cell
	c.Report(Context{Message: "first", Number: 1})
	c.Report(Context{Message: "second", Number: 2, Code: code.InvalidCredentials})

	ctx, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, "second", ctx.Message)
	assert.Equal(t, code.InvalidCredentials, ctx.Code)
}

func TestCell_DetailsAreCopied(t *testing.T) {
	var c Cell
	in := map[string]any{"sqlstate": "23505"}
	c.Report(Context{Message: "dup", Details: in})
	in["sqlstate"] = "changed"

	ctx, _ := c.Last()
	assert.Equal(t, "23505", ctx.Details["sqlstate"])
	ctx.Details["sqlstate"] = "mutated"

	again, _ := c.Last()
	assert.Equal(t, "23505", again.Details["sqlstate"])
}

func TestCell_ReportError(t *testing.T) {
	var c Cell
	c.ReportError(nil)
	_, ok := c.Last()
	assert.False(t, ok, "nil errors are not recorded")

	err := fmt.Errorf("open: %w", fs.ErrNotExist)
	c.ReportError(err)
	ctx, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, int(syscall.ENOENT), ctx.Number)
	assert.ErrorIs(t, ctx.Cause, fs.ErrNotExist)
	assert.Equal(t, err.Error(), ctx.Message)
}

func TestRegister_GuardSerializes(t *testing.T) {
	r := NewRegister()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Lock()
			defer r.Unlock()
			r.Clear()
			counter++
			r.Reportf(counter, "call %d", counter)
			ctx, ok := r.Last()
			if !ok || ctx.Number != counter {
				t.Errorf("observed foreign record: %+v", ctx)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestFromError(t *testing.T) {
	assert.Equal(t, Context{}, FromError(nil))
	ctx := FromError(syscall.EBADF)
	assert.Equal(t, int(syscall.EBADF), ctx.Number)
	assert.Equal(t, syscall.EBADF.Error(), ctx.Message)
}
