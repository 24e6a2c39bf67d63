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

package eio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"syscall"

	"github.com/go-git/go-billy/v5"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/errno"
	"dirpx.dev/safecall/lasterr"
)

func failure(kind Kind, subject string, err error) *lasterr.Context {
	ctx := lasterr.FromError(err)
	text := err.Error()
	if ctx.Number != 0 {
		text = errno.Message(ctx.Number)
	}
	ctx.Message = fmt.Sprintf("eio_%s(%s): %s", kind, subject, text)
	return &ctx
}

func failNo(kind Kind, subject string, n syscall.Errno) *lasterr.Context {
	return &lasterr.Context{
		Number:  int(n),
		Message: fmt.Sprintf("eio_%s(%s): %s", kind, subject, errno.Message(int(n))),
	}
}

// submit queues req. It fails with EAGAIN when the queue is full and EBADF
// when the loop is closed.
func (l *Loop) submit(req *Request) *Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.env.Register().Report(lasterr.Context{Number: int(syscall.EBADF), Message: "event loop is closed"})
		return nil
	}
	l.nextID++
	req.id = l.nextID
	req.loop = l
	select {
	case l.queue <- req:
	default:
		l.nextID--
		l.env.Register().Reportf(int(syscall.EAGAIN), "eio_%s: request queue is full", req.kind)
		return nil
	}
	l.pending++
	return req
}

// collect hands over every finished request.
func (l *Loop) collect() []*Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.env.Register().Report(lasterr.Context{Number: int(syscall.EBADF), Message: "event loop is closed"})
		return nil
	}
	out := l.finished
	if out == nil {
		out = []*Request{}
	}
	l.finished = nil
	l.pending -= len(out)
	return out
}

func (l *Loop) interrupted(ctx context.Context) bool {
	c := lasterr.FromError(ctx.Err())
	c.Message = fmt.Sprintf("eio_event_loop: %v", ctx.Err())
	l.env.Register().Report(c)
	return false
}

func (r *Request) cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != queued || r.canceled {
		r.cell.Report(lasterr.Context{
			Number:  int(syscall.EALREADY),
			Code:    code.PreconditionFailed,
			Message: fmt.Sprintf("eio_cancel: request %d has already started", r.id),
		})
		return false
	}
	r.canceled = true
	return true
}

// value returns the request's result, re-recording its failure in the
// request's cell.
func (r *Request) value() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.state != done:
		r.cell.Reportf(int(syscall.EINPROGRESS), "eio: request %d has not finished", r.id)
		return nil
	case r.failed:
		r.cell.Report(r.failure)
		return nil
	}
	return r.result
}

func (r *Request) execute(ctx context.Context) {
	r.mu.Lock()
	if r.canceled {
		r.mu.Unlock()
		r.finish(nil, failNo(r.kind, r.subject(), syscall.ECANCELED))
		return
	}
	r.state = running
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		r.finish(nil, failure(r.kind, r.subject(), err))
		return
	}
	v, fail := r.loop.perform(r)
	r.finish(v, fail)
}

func (r *Request) subject() string {
	switch r.kind {
	case KindRead, KindWrite, KindClose:
		return fmt.Sprint(r.fd)
	case KindNop:
		return ""
	}
	return r.path
}

func (l *Loop) perform(r *Request) (any, *lasterr.Context) {
	switch r.kind {
	case KindNop:
		return 0, nil
	case KindOpen:
		return l.open(r)
	case KindRead:
		return l.read(r)
	case KindWrite:
		return l.write(r)
	case KindClose:
		return l.close(r)
	case KindMkdir:
		return l.mkdir(r)
	case KindUnlink:
		return l.unlink(r)
	case KindRename:
		if err := l.fs.Rename(r.path, r.to); err != nil {
			return nil, failure(r.kind, r.path, err)
		}
		return 0, nil
	case KindStat:
		fi, err := l.fs.Stat(r.path)
		if err != nil {
			return nil, failure(r.kind, r.path, err)
		}
		return fi, nil
	}
	return nil, failNo(r.kind, r.subject(), syscall.ENOSYS)
}

func (l *Loop) open(r *Request) (any, *lasterr.Context) {
	f, err := l.fs.OpenFile(r.path, r.flags, r.mode)
	if err != nil {
		return nil, failure(r.kind, r.path, err)
	}
	l.mu.Lock()
	fd := l.nextFD
	l.nextFD++
	l.files[fd] = f
	l.mu.Unlock()
	return fd, nil
}

func (l *Loop) file(r *Request) (billy.File, *lasterr.Context) {
	l.mu.Lock()
	f, ok := l.files[r.fd]
	l.mu.Unlock()
	if !ok {
		return nil, failNo(r.kind, r.subject(), syscall.EBADF)
	}
	return f, nil
}

func (l *Loop) read(r *Request) (any, *lasterr.Context) {
	if r.length < 0 {
		return nil, failNo(r.kind, r.subject(), syscall.EINVAL)
	}
	f, fail := l.file(r)
	if fail != nil {
		return nil, fail
	}
	buf := make([]byte, r.length)
	var (
		n   int
		err error
	)
	if r.offset < 0 {
		n, err = f.Read(buf)
	} else {
		n, err = f.ReadAt(buf, r.offset)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, failure(r.kind, r.subject(), err)
	}
	return buf[:n], nil
}

func (l *Loop) write(r *Request) (any, *lasterr.Context) {
	f, fail := l.file(r)
	if fail != nil {
		return nil, fail
	}
	if r.offset >= 0 {
		if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
			return nil, failure(r.kind, r.subject(), err)
		}
	}
	n, err := f.Write(r.data)
	if err != nil {
		return nil, failure(r.kind, r.subject(), err)
	}
	return n, nil
}

func (l *Loop) close(r *Request) (any, *lasterr.Context) {
	l.mu.Lock()
	f, ok := l.files[r.fd]
	delete(l.files, r.fd)
	l.mu.Unlock()
	if !ok {
		return nil, failNo(r.kind, r.subject(), syscall.EBADF)
	}
	if err := f.Close(); err != nil {
		return nil, failure(r.kind, r.subject(), err)
	}
	return 0, nil
}

// mkdir creates one directory; the parent must exist.
func (l *Loop) mkdir(r *Request) (any, *lasterr.Context) {
	if _, err := l.fs.Stat(r.path); err == nil {
		return nil, failNo(r.kind, r.path, syscall.EEXIST)
	}
	if parent := path.Dir(r.path); parent != "." && parent != "/" {
		fi, err := l.fs.Stat(parent)
		if err != nil {
			return nil, failure(r.kind, r.path, err)
		}
		if !fi.IsDir() {
			return nil, failNo(r.kind, r.path, syscall.ENOTDIR)
		}
	}
	if err := l.fs.MkdirAll(r.path, r.mode); err != nil {
		return nil, failure(r.kind, r.path, err)
	}
	return 0, nil
}

func (l *Loop) unlink(r *Request) (any, *lasterr.Context) {
	fi, err := l.fs.Lstat(r.path)
	if err != nil {
		return nil, failure(r.kind, r.path, err)
	}
	if fi.IsDir() {
		return nil, failNo(r.kind, r.path, syscall.EISDIR)
	}
	if err := l.fs.Remove(r.path); err != nil {
		return nil, failure(r.kind, r.path, err)
	}
	return 0, nil
}
