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

package safecall

import "dirpx.dev/safecall/reason"

// Option is a functional option for E.
type Option func(*Error) *Error

// WithReasonOption sets the Reason.
func WithReasonOption(r reason.Reason) Option {
	return func(e *Error) *Error {
		return e.WithReason(r)
	}
}

// WithOpOption tags the error with its domain and operation name.
func WithOpOption(d Domain, op string) Option {
	return func(e *Error) *Error {
		return e.WithOp(d, op)
	}
}

// WithErrnoOption records the native error number.
func WithErrnoOption(n int) Option {
	return func(e *Error) *Error {
		return e.WithErrno(n)
	}
}

// WithDetailOption adds a single detail key/value.
func WithDetailOption(k string, v any) Option {
	return func(e *Error) *Error {
		return e.WithDetail(k, v)
	}
}

// WithDetailsOption merges several detail key/values.
func WithDetailsOption(kv map[string]any) Option {
	return func(e *Error) *Error {
		return e.WithDetails(kv)
	}
}

// WithCauseOption attaches a cause.
func WithCauseOption(err error) Option {
	return func(e *Error) *Error {
		return e.WithCause(err)
	}
}
