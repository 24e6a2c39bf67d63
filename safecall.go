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

import (
	"fmt"
	"maps"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/reason"
)

// Error is the failure record produced when a wrapped native call returns
// its sentinel.
//
// It carries:
//   - Code: what kind of failure this is (required);
//   - Reason: "<domain>.<operation>" of the call that failed;
//   - Domain: the subsystem the operation belongs to;
//   - Op: the bare operation name, e.g. "chmod";
//   - Errno: the native error number, 0 when none was reported;
//   - Message: what the last-error source reported;
//   - Details: extra key/value payload (errno name, SQLSTATE, paths);
//   - Cause: the Go error the native layer failed with, if any.
//
// All WithX helpers return a shallow copy. An Error is never mutated after
// it has been returned from a wrapped call.
type Error struct {
	// Code is the primary classification, e.g. "not_found".
	Code code.Code

	// Reason identifies the wrapped operation, e.g. "filesystem.chmod".
	Reason reason.Reason

	// Domain is the subsystem tag. It selects the taxonomy leaf the error
	// is wrapped in.
	Domain Domain

	// Op is the operation name within Domain.
	Op string

	// Errno is the number read from the last-error source. For POSIX
	// natives it is an errno value; directory and database natives report
	// protocol result codes.
	Errno int

	// Message is the human-readable text read from the last-error source.
	Message string

	// Details is a shallow map of extra fields. It is copied on every
	// WithDetail/WithDetails call.
	Details map[string]any

	// Cause is the underlying Go error, for errors.Is / errors.As.
	Cause error
}

// E builds a new Error and applies opts in order.
//
//	return safecall.E(code.NotFound, "no such file",
//	    safecall.WithReasonOption("filesystem.chmod"),
//	    safecall.WithErrnoOption(2),
//	)
func E(c code.Code, msg string, opts ...Option) *Error {
	e := &Error{Code: c, Message: msg}
	for _, opt := range opts {
		e = opt(e)
	}
	return e
}

// Error implements the error interface.
//
// The format is "<code>: <message>", or "<code>:<reason>: <message>" when a
// reason is set.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s:%s: %s", e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// ErrorCode returns the error code.
func (e *Error) ErrorCode() code.Code { return e.Code }

// ErrorReason returns the error reason.
func (e *Error) ErrorReason() reason.Reason { return e.Reason }

// ErrorDetails returns the details map. Callers must not modify it.
func (e *Error) ErrorDetails() map[string]any { return e.Details }

// ErrorCause returns the underlying cause.
func (e *Error) ErrorCause() error { return e.Cause }

// ErrorMessage returns the bare message, without the code and reason.
func (e *Error) ErrorMessage() string { return e.Message }

// ErrorDomain returns the domain tag as a string.
func (e *Error) ErrorDomain() string { return string(e.Domain) }

// ErrorOp returns the operation name.
func (e *Error) ErrorOp() string { return e.Op }

// ErrorNumber returns the native error number.
func (e *Error) ErrorNumber() int { return e.Errno }

// WithReason returns a copy of e with the given Reason.
func (e *Error) WithReason(r reason.Reason) *Error {
	cp := *e
	cp.Reason = r
	return &cp
}

// WithMessage returns a copy of e with a replaced message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithOp returns a copy of e tagged with domain d and operation op.
func (e *Error) WithOp(d Domain, op string) *Error {
	cp := *e
	cp.Domain = d
	cp.Op = op
	return &cp
}

// WithErrno returns a copy of e carrying the native error number n.
func (e *Error) WithErrno(n int) *Error {
	cp := *e
	cp.Errno = n
	return &cp
}

// WithDetail returns a copy of e with one extra key/value in Details.
func (e *Error) WithDetail(k string, v any) *Error {
	cp := *e
	m := make(map[string]any, len(cp.Details)+1)
	maps.Copy(m, cp.Details)
	m[k] = v
	cp.Details = m
	return &cp
}

// WithDetails returns a copy of e with kv merged into Details. Keys in kv
// win on conflict.
func (e *Error) WithDetails(kv map[string]any) *Error {
	if len(kv) == 0 {
		return e
	}
	cp := *e
	m := make(map[string]any, len(cp.Details)+len(kv))
	maps.Copy(m, cp.Details)
	maps.Copy(m, kv)
	cp.Details = m
	return &cp
}

// WithCause returns a copy of e with err attached as the cause.
// A nil err returns e unchanged.
func (e *Error) WithCause(err error) *Error {
	if err == nil {
		return e
	}
	cp := *e
	cp.Cause = err
	return &cp
}
