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

package code

// Generic codes.
//
// These are the fallbacks used when a native failure carries no number that
// can be classified more precisely.
const (
	// Internal is an unclassified failure. Used when the native layer
	// signalled its sentinel without recording anything useful, or when the
	// recorded number has no better mapping.
	//
	// Can be mapped to an HTTP 500.
	Internal Code = "internal"

	// Invalid means the arguments handed to the native call were rejected:
	// EINVAL, EISDIR/ENOTDIR on path arguments, malformed URLs, bad SQL.
	//
	// Can be mapped to an HTTP 400.
	Invalid Code = "invalid"

	// Missing means a required argument or structure was absent, including
	// a supplied optional argument that follows an omitted one.
	//
	// Can be mapped to an HTTP 400.
	Missing Code = "missing"

	// Unsupported means the backend does not implement the operation
	// (ENOTSUP, ENOSYS, an in-memory filesystem asked to chown).
	//
	// Can be mapped to an HTTP 501.
	Unsupported Code = "unsupported"
)

// Runtime codes.
//
// Transient conditions reported by the native layer. The translation layer
// never retries; these only tell the caller what kind of failure it was.
const (
	// Unavailable means a peer could not be reached: ECONNREFUSED,
	// EHOSTUNREACH, ENETUNREACH, LDAP busy/unavailable, SQLSTATE class 08.
	//
	// Can be mapped to an HTTP 503.
	Unavailable Code = "unavailable"

	// Timeout means the native call ran out of time: ETIMEDOUT,
	// os.ErrDeadlineExceeded, curl code 28.
	//
	// Can be mapped to an HTTP 504.
	Timeout Code = "timeout"

	// Canceled means the call was interrupted by its context or by the
	// backend (ECANCELED, SQLSTATE 57014).
	//
	// Can be mapped to an HTTP 408 (or 499 by policy).
	Canceled Code = "canceled"

	// DependencyFailed means a remote peer answered, but with a failure:
	// an HTTP error status with fail-on-error enabled (curl code 22).
	//
	// Can be mapped to an HTTP 502.
	DependencyFailed Code = "dependency_failed"

	// Overloaded means a bounded resource inside the native layer is
	// exhausted, for example the descriptor table (EMFILE, ENFILE).
	//
	// Can be mapped to an HTTP 503.
	Overloaded Code = "overloaded"

	// WouldBlock means a non-blocking operation could not complete without
	// waiting (EAGAIN / EWOULDBLOCK, a held lock under LOCK_NB, a full eio
	// submission queue, an unfinished eio request).
	//
	// Can be mapped to an HTTP 503.
	WouldBlock Code = "would_block"
)

// Resource codes.
const (
	// NotFound means the referenced file, entry, row or relation does not
	// exist (ENOENT, LDAP 32, SQLSTATE 42P01).
	//
	// Can be mapped to an HTTP 404.
	NotFound Code = "not_found"

	// AlreadyExists means the target identity is taken (EEXIST, LDAP 68,
	// SQLSTATE 23505).
	//
	// Can be mapped to an HTTP 409.
	AlreadyExists Code = "already_exists"

	// Conflict means the resource is busy or was concurrently modified
	// (EBUSY, SQLSTATE 40001).
	//
	// Can be mapped to an HTTP 409.
	Conflict Code = "conflict"

	// PreconditionFailed means the resource is not in the state the
	// operation needs (ENOTEMPTY, drawing outside of a page).
	//
	// Can be mapped to an HTTP 412.
	PreconditionFailed Code = "precondition_failed"

	// BadHandle means the handle, descriptor or resource passed in is closed
	// or was never valid (EBADF, fs.ErrClosed).
	//
	// Can be mapped to an HTTP 400.
	BadHandle Code = "bad_handle"

	// IOFailure means the device or transport failed while moving bytes
	// (EIO, unexpected EOF, encoder failures).
	//
	// Can be mapped to an HTTP 500.
	IOFailure Code = "io_failure"
)

// Authentication / authorization codes.
const (
	// Unauthenticated means no identity could be established.
	//
	// Can be mapped to an HTTP 401.
	Unauthenticated Code = "unauthenticated"

	// InvalidCredentials means an identity was presented and rejected
	// (LDAP 49, SQLSTATE 28P01).
	//
	// Can be mapped to an HTTP 401.
	InvalidCredentials Code = "invalid_credentials"

	// PermissionDenied means the identity lacks rights (EACCES, EPERM,
	// LDAP 50, SQLSTATE 42501).
	//
	// Can be mapped to an HTTP 403.
	PermissionDenied Code = "permission_denied"
)

// Quota codes.
const (
	// QuotaExceeded means storage or memory ran out (ENOSPC, EDQUOT,
	// SQLSTATE class 53).
	//
	// Can be mapped to an HTTP 507 or 429 depending on policy.
	QuotaExceeded Code = "quota_exceeded"
)

// declared lists every code above, in declaration order.
var declared = []Code{
	Internal, Invalid, Missing, Unsupported,
	Unavailable, Timeout, Canceled, DependencyFailed, Overloaded, WouldBlock,
	NotFound, AlreadyExists, Conflict, PreconditionFailed, BadHandle, IOFailure,
	Unauthenticated, InvalidCredentials, PermissionDenied,
	QuotaExceeded,
}

var known = func() map[Code]struct{} {
	m := make(map[Code]struct{}, len(declared))
	for _, c := range declared {
		m[c] = struct{}{}
	}
	return m
}()
