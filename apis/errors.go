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

package apis

import (
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/reason"
)

// CodedError is an error classified by a canonical code.
//
// Adapters treat unknown or empty codes as internal errors.
type CodedError interface {
	error

	// ErrorCode returns the machine-readable code, e.g. "not_found".
	ErrorCode() code.Code
}

// ReasonedError is an error that names the operation that failed.
//
//	code:   "not_found"
//	reason: "filesystem.chmod"
//
// The reason may be empty; callers must handle that case.
type ReasonedError interface {
	error

	ErrorReason() reason.Reason
}

// DetailedError exposes extra key/value data about a failure (errno name,
// SQLSTATE, LDAP matched DN). The returned map must not be modified.
type DetailedError interface {
	error

	ErrorDetails() map[string]any
}

// CausedError exposes the direct underlying cause. It may return nil.
type CausedError interface {
	error

	ErrorCause() error
}

// NativeError is implemented by errors produced from a wrapped native call.
type NativeError interface {
	error

	// ErrorDomain returns the subsystem tag, e.g. "filesystem".
	ErrorDomain() string
	// ErrorOp returns the operation name within the domain, e.g. "chmod".
	ErrorOp() string
	// ErrorNumber returns the native error number, 0 when none was reported.
	ErrorNumber() int
}
