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

package errno

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"os"
	"syscall"

	"dirpx.dev/safecall/code"
)

// table is filled entry by entry because several platforms alias constants
// (EAGAIN == EWOULDBLOCK, ENOTSUP == EOPNOTSUPP on Linux).
var table = func() map[syscall.Errno]code.Code {
	m := make(map[syscall.Errno]code.Code, 40)
	set := func(c code.Code, ns ...syscall.Errno) {
		for _, n := range ns {
			m[n] = c
		}
	}
	set(code.NotFound, syscall.ENOENT, syscall.ESRCH, syscall.ENXIO)
	set(code.AlreadyExists, syscall.EEXIST)
	set(code.PermissionDenied, syscall.EACCES, syscall.EPERM, syscall.EROFS)
	set(code.Invalid, syscall.EINVAL, syscall.EISDIR, syscall.ENOTDIR,
		syscall.ENAMETOOLONG, syscall.ELOOP, syscall.EFAULT, syscall.ERANGE)
	set(code.Unsupported, syscall.ENOSYS, syscall.EOPNOTSUPP, syscall.ENOTSUP,
		syscall.EXDEV, syscall.EAFNOSUPPORT, syscall.EPROTONOSUPPORT)
	set(code.Timeout, syscall.ETIMEDOUT)
	set(code.Unavailable, syscall.ECONNREFUSED, syscall.EHOSTUNREACH,
		syscall.ENETUNREACH, syscall.ENETDOWN, syscall.ECONNRESET,
		syscall.ECONNABORTED, syscall.ENOTCONN, syscall.EADDRNOTAVAIL)
	set(code.Conflict, syscall.EBUSY, syscall.EADDRINUSE, syscall.ETXTBSY, syscall.EDEADLK)
	set(code.WouldBlock, syscall.EAGAIN, syscall.EWOULDBLOCK, syscall.EINPROGRESS,
		syscall.EALREADY)
	set(code.QuotaExceeded, syscall.ENOSPC, syscall.EDQUOT, syscall.EFBIG, syscall.ENOMEM)
	set(code.Overloaded, syscall.EMFILE, syscall.ENFILE)
	set(code.PreconditionFailed, syscall.ENOTEMPTY, syscall.EMLINK)
	set(code.BadHandle, syscall.EBADF)
	set(code.IOFailure, syscall.EIO, syscall.EPIPE)
	set(code.Canceled, syscall.ECANCELED, syscall.EINTR)
	return m
}()

// Classify maps a native error number to a code. Zero and unknown numbers
// classify as code.Internal.
func Classify(n int) code.Code {
	if n == 0 {
		return code.Internal
	}
	if c, ok := table[syscall.Errno(n)]; ok {
		return c
	}
	return code.Internal
}

// FromError extracts the syscall.Errno carried anywhere in err's chain.
func FromError(err error) (int, bool) {
	var n syscall.Errno
	if errors.As(err, &n) && n != 0 {
		return int(n), true
	}
	return 0, false
}

// Number returns the errno a native layer should record for err.
//
// A syscall.Errno in the chain wins. Otherwise the portable sentinel errors
// of io/fs, os, io and context are translated to their POSIX counterparts.
// Errors with no POSIX meaning yield 0.
func Number(err error) int {
	if err == nil {
		return 0
	}
	if n, ok := FromError(err); ok {
		return n
	}
	var ne net.Error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return int(syscall.ENOENT)
	case errors.Is(err, fs.ErrExist):
		return int(syscall.EEXIST)
	case errors.Is(err, fs.ErrPermission):
		return int(syscall.EACCES)
	case errors.Is(err, fs.ErrClosed), errors.Is(err, net.ErrClosed):
		return int(syscall.EBADF)
	case errors.Is(err, fs.ErrInvalid):
		return int(syscall.EINVAL)
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return int(syscall.ETIMEDOUT)
	case errors.Is(err, context.Canceled):
		return int(syscall.ECANCELED)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrShortWrite):
		return int(syscall.EIO)
	case errors.As(err, &ne) && ne.Timeout():
		return int(syscall.ETIMEDOUT)
	}
	return 0
}

// ClassifyError is Classify(Number(err)).
func ClassifyError(err error) code.Code {
	return Classify(Number(err))
}

// Message renders the platform text for n ("no such file or directory").
// Zero yields "".
func Message(n int) string {
	if n == 0 {
		return ""
	}
	return syscall.Errno(n).Error()
}
