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
	"maps"
	"sync"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/errno"
)

// Context is what a native layer recorded about its most recent failure.
type Context struct {
	// Message is the human-readable text, e.g. "No such file or directory".
	Message string

	// Number is the native error number. Filesystem and stream natives
	// report POSIX errno values; protocol natives report their own result
	// codes (LDAP result code, curl code) together with Code.
	Number int

	// Code overrides errno classification of Number. Protocol natives whose
	// numbers are not errno values must set it.
	Code code.Code

	// Details are copied into the resulting error's details.
	Details map[string]any

	// Cause is the Go error the native layer failed with, if any.
	Cause error
}

// Source is anything a wrapped call can reset and read back.
type Source interface {
	// Clear forgets the recorded failure.
	Clear()
	// Last returns the recorded failure, if any.
	Last() (Context, bool)
}

// Cell is a single-slot error store. The zero value is empty and ready to
// use. Cell implements sync.Locker: package call holds the lock around a
// reset-invoke-read sequence on the cell.
type Cell struct {
	guard sync.Mutex

	mu  sync.Mutex
	ctx Context
	set bool
}

var (
	_ Source      = (*Cell)(nil)
	_ sync.Locker = (*Cell)(nil)
)

// Lock acquires the cell's call guard.
func (c *Cell) Lock() { c.guard.Lock() }

// Unlock releases the cell's call guard.
func (c *Cell) Unlock() { c.guard.Unlock() }

// Clear forgets the recorded failure.
func (c *Cell) Clear() {
	c.mu.Lock()
	c.ctx = Context{}
	c.set = false
	c.mu.Unlock()
}

// Last returns a copy of the recorded failure.
func (c *Cell) Last() (Context, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return Context{}, false
	}
	out := c.ctx
	out.Details = maps.Clone(c.ctx.Details)
	return out, true
}

// Report records ctx, replacing any previous record.
func (c *Cell) Report(ctx Context) {
	ctx.Details = maps.Clone(ctx.Details)
	c.mu.Lock()
	c.ctx = ctx
	c.set = true
	c.mu.Unlock()
}

// ReportError records err with its errno as the number.
func (c *Cell) ReportError(err error) {
	if err == nil {
		return
	}
	c.Report(FromError(err))
}

// Reportf records a formatted message with number n.
func (c *Cell) Reportf(n int, format string, args ...any) {
	c.Report(Context{Number: n, Message: fmt.Sprintf(format, args...)})
}

// Message returns the recorded message, or "" when nothing is recorded.
// It is the handle-level "error string" accessor.
func (c *Cell) Message() string {
	ctx, _ := c.Last()
	return ctx.Message
}

// Number returns the recorded number, or 0 when nothing is recorded.
// It is the handle-level "error number" accessor.
func (c *Cell) Number() int {
	ctx, _ := c.Last()
	return ctx.Number
}

// Register is the ambient last-error register. One Register belongs to one
// call.Env.
type Register struct {
	Cell
}

// NewRegister returns an empty register.
func NewRegister() *Register {
	return &Register{}
}

// FromError builds a Context from a Go error: the message is err.Error(),
// the number is errno.Number(err), and err is kept as the cause.
func FromError(err error) Context {
	if err == nil {
		return Context{}
	}
	return Context{
		Message: err.Error(),
		Number:  errno.Number(err),
		Cause:   err,
	}
}
