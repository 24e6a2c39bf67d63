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

package call

import (
	"sync"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/errno"
	"dirpx.dev/safecall/lasterr"
)

// Ambient invokes fn and translates its sentinel into an error read from
// the Env's register.
//
// On success the value fn returned is handed back unchanged with a nil
// error. On failure the zero value of T is returned together with exactly
// one error, a taxonomy leaf for op.Domain.
func Ambient[T any](env *Env, op Op, failed Sentinel[T], fn func() T) (T, error) {
	env = env.orDefault()
	return run(env, env.reg, StrategyAmbient, op, failed, fn)
}

// Handle is Ambient for operations whose subsystem keeps per-handle error
// state. The error is read from src instead of the ambient register. A nil
// src is treated as a source that never has a record.
func Handle[T any](env *Env, src lasterr.Source, op Op, failed Sentinel[T], fn func() T) (T, error) {
	env = env.orDefault()
	if src == nil {
		src = noSource{}
	}
	return run(env, src, StrategyHandle, op, failed, fn)
}

// AmbientBool wraps a native that reports failure with false.
func AmbientBool(env *Env, op Op, fn func() bool) error {
	_, err := Ambient(env, op, False, fn)
	return err
}

// HandleBool wraps a handle native that reports failure with false.
func HandleBool(env *Env, src lasterr.Source, op Op, fn func() bool) error {
	_, err := Handle(env, src, op, False, fn)
	return err
}

func run[T any](env *Env, src lasterr.Source, s Strategy, op Op, failed Sentinel[T], fn func() T) (T, error) {
	start := env.now()
	v, rec, hit, bad := invoke(src, failed, fn)
	ev := Event{Op: op, Strategy: s, Duration: env.now().Sub(start)}
	if !bad {
		env.observe(ev)
		return v, nil
	}
	e := build(op, rec, hit)
	ev.Err = e
	env.observe(ev)
	var zero T
	return zero, safecall.Wrap(e)
}

// invoke performs reset, call and read as one unit with respect to src.
func invoke[T any](src lasterr.Source, failed Sentinel[T], fn func() T) (v T, rec lasterr.Context, hit, bad bool) {
	if l, ok := src.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}
	src.Clear()
	v = fn()
	if bad = failed(v); bad {
		rec, hit = src.Last()
	}
	return v, rec, hit, bad
}

// build turns a record into an *Error. A sentinel without a record still
// produces an error: code.Internal with "<op> failed".
func build(op Op, rec lasterr.Context, hit bool) *safecall.Error {
	msg := rec.Message
	if !hit || msg == "" {
		msg = op.String() + " failed"
	}
	c := rec.Code
	if c == code.Empty {
		c = errno.Classify(rec.Number)
	}
	e := safecall.E(c, msg,
		safecall.WithReasonOption(op.Reason()),
		safecall.WithOpOption(op.Domain, op.Name),
		safecall.WithErrnoOption(rec.Number),
		safecall.WithDetailsOption(rec.Details),
		safecall.WithCauseOption(rec.Cause),
	)
	if rec.Number == 0 {
		return e
	}
	if rec.Code != code.Empty {
		return e.WithDetail("native_code", rec.Number)
	}
	e = e.WithDetail("errno", rec.Number)
	if name := errno.Name(rec.Number); name != "" {
		e = e.WithDetail("errno_name", name)
	}
	return e
}

type noSource struct{}

func (noSource) Clear()                        {}
func (noSource) Last() (lasterr.Context, bool) { return lasterr.Context{}, false }
