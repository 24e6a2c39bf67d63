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
	"io/fs"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opNop       = call.MustOp(safecall.AsyncIO, "eio_nop")
	opOpen      = call.MustOp(safecall.AsyncIO, "eio_open")
	opRead      = call.MustOp(safecall.AsyncIO, "eio_read")
	opWrite     = call.MustOp(safecall.AsyncIO, "eio_write")
	opClose     = call.MustOp(safecall.AsyncIO, "eio_close")
	opMkdir     = call.MustOp(safecall.AsyncIO, "eio_mkdir")
	opUnlink    = call.MustOp(safecall.AsyncIO, "eio_unlink")
	opRename    = call.MustOp(safecall.AsyncIO, "eio_rename")
	opStat      = call.MustOp(safecall.AsyncIO, "eio_stat")
	opPoll      = call.MustOp(safecall.AsyncIO, "eio_poll")
	opEventLoop = call.MustOp(safecall.AsyncIO, "eio_event_loop")
	opCancel    = call.MustOp(safecall.AsyncIO, "eio_cancel")
	opResult    = call.MustOp(safecall.AsyncIO, "eio_get_result")
)

func (l *Loop) enqueue(op call.Op, req *Request) (*Request, error) {
	return call.Ambient(l.env, op, call.Nil[Request](), func() *Request { return l.submit(req) })
}

// Nop submits a request that does nothing. Its result is 0.
func (l *Loop) Nop(cb Callback) (*Request, error) {
	return l.enqueue(opNop, &Request{kind: KindNop, cb: cb})
}

// Open submits opening name with os.OpenFile flags. Its result is a file
// descriptor (int) valid for Read, Write and Close on this loop.
func (l *Loop) Open(name string, flags int, mode fs.FileMode, cb Callback) (*Request, error) {
	return l.enqueue(opOpen, &Request{kind: KindOpen, path: name, flags: flags, mode: mode, cb: cb})
}

// Read submits reading up to length bytes from fd at offset; a negative
// offset reads from the current position. Its result is a []byte, short
// at end of file.
func (l *Loop) Read(fd, length int, offset int64, cb Callback) (*Request, error) {
	return l.enqueue(opRead, &Request{kind: KindRead, fd: fd, length: length, offset: offset, cb: cb})
}

// Write submits writing data to fd at offset; a negative offset writes at
// the current position. Its result is the number of bytes written (int).
func (l *Loop) Write(fd int, data []byte, offset int64, cb Callback) (*Request, error) {
	return l.enqueue(opWrite, &Request{kind: KindWrite, fd: fd, data: data, offset: offset, cb: cb})
}

// Close submits closing fd.
func (l *Loop) Close(fd int, cb Callback) (*Request, error) {
	return l.enqueue(opClose, &Request{kind: KindClose, fd: fd, cb: cb})
}

// Mkdir submits creating the directory name. The parent must exist.
func (l *Loop) Mkdir(name string, mode fs.FileMode, cb Callback) (*Request, error) {
	return l.enqueue(opMkdir, &Request{kind: KindMkdir, path: name, mode: mode, cb: cb})
}

// Unlink submits removing the file name.
func (l *Loop) Unlink(name string, cb Callback) (*Request, error) {
	return l.enqueue(opUnlink, &Request{kind: KindUnlink, path: name, cb: cb})
}

// Rename submits renaming from to to.
func (l *Loop) Rename(from, to string, cb Callback) (*Request, error) {
	return l.enqueue(opRename, &Request{kind: KindRename, path: from, to: to, cb: cb})
}

// Stat submits a stat of name. Its result is an fs.FileInfo.
func (l *Loop) Stat(name string, cb Callback) (*Request, error) {
	return l.enqueue(opStat, &Request{kind: KindStat, path: name, cb: cb})
}

// Poll runs the callbacks of every request finished since the last poll
// and returns how many it delivered. It does not block.
func (l *Loop) Poll() (int, error) {
	reqs, err := call.Ambient(l.env, opPoll, call.NilSlice[*Request](), l.collect)
	if err != nil {
		return 0, err
	}
	for _, r := range reqs {
		if r.cb != nil {
			r.cb(r)
		}
	}
	return len(reqs), nil
}

// EventLoop polls until every submitted request has been delivered,
// including requests submitted by callbacks along the way.
func (l *Loop) EventLoop(ctx context.Context) error {
	for {
		if _, err := l.Poll(); err != nil {
			return err
		}
		if l.Pending() == 0 {
			return nil
		}
		select {
		case <-l.ready:
		case <-ctx.Done():
			return call.AmbientBool(l.env, opEventLoop, func() bool { return l.interrupted(ctx) })
		}
	}
}

// Cancel stops a request that has not started. Its callback still runs,
// and its result is an ECANCELED failure.
func (l *Loop) Cancel(req *Request) error {
	return call.HandleBool(l.env, &req.cell, opCancel, req.cancel)
}

// Result returns the request's result, or the error it failed with. It
// fails with EINPROGRESS while the request is unfinished.
func (r *Request) Result() (any, error) {
	return call.Handle(r.loop.env, &r.cell, opResult, call.NilValue[any](), r.value)
}
