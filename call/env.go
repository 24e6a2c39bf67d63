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
	"time"

	"dirpx.dev/safecall/lasterr"
)

// Env is the runtime a family of wrapped calls runs in: the ambient
// register they share and the observer told about each call.
//
// An Env is safe for concurrent use. A nil *Env means Default.
type Env struct {
	reg *lasterr.Register
	obs Observer
	now func() time.Time
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithRegister makes the Env use r as its ambient register.
func WithRegister(r *lasterr.Register) EnvOption {
	return func(e *Env) {
		if r != nil {
			e.reg = r
		}
	}
}

// WithObserver sets the observer notified after each wrapped call.
func WithObserver(o Observer) EnvOption {
	return func(e *Env) { e.obs = o }
}

// WithClock replaces the time source used for call durations.
func WithClock(now func() time.Time) EnvOption {
	return func(e *Env) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEnv returns an Env with its own register.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{reg: lasterr.NewRegister(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Default is the Env used when a binding is given a nil Env.
var Default = NewEnv()

// Fork returns an Env with a register of its own that shares e's observer
// and clock. A nil e forks Default. Ambient calls in the fork never wait on
// e's guard.
func (e *Env) Fork() *Env {
	e = e.orDefault()
	return &Env{reg: lasterr.NewRegister(), obs: e.obs, now: e.now}
}

// Register returns the Env's ambient register. Native layers report into
// it; nothing else should.
func (e *Env) Register() *lasterr.Register {
	return e.orDefault().reg
}

func (e *Env) orDefault() *Env {
	if e == nil {
		return Default
	}
	return e
}

func (e *Env) observe(ev Event) {
	if e.obs != nil {
		e.obs.Observe(ev)
	}
}
