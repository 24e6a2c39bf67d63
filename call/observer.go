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

	"dirpx.dev/safecall"
)

// Strategy names where a wrapped call read its error from.
type Strategy string

const (
	StrategyAmbient Strategy = "ambient"
	StrategyHandle  Strategy = "handle"
)

// Event describes one completed wrapped call.
type Event struct {
	Op       Op
	Strategy Strategy
	Duration time.Duration
	// Err is nil when the native call succeeded.
	Err *safecall.Error
}

// Failed reports whether the call hit its sentinel.
func (e Event) Failed() bool { return e.Err != nil }

// Observer is notified after every wrapped call on an Env. Observe runs on
// the caller's goroutine after the register guard has been released.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Observers fans one event out to several observers. Nil entries are
// skipped.
func Observers(obs ...Observer) Observer {
	list := make(multi, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multi []Observer

func (m multi) Observe(ev Event) {
	for _, o := range m {
		o.Observe(ev)
	}
}
