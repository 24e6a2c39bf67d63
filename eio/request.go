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
	"io/fs"
	"sync"

	"dirpx.dev/safecall/lasterr"
)

// Kind identifies a request's operation.
type Kind string

const (
	KindNop    Kind = "nop"
	KindOpen   Kind = "open"
	KindRead   Kind = "read"
	KindWrite  Kind = "write"
	KindClose  Kind = "close"
	KindMkdir  Kind = "mkdir"
	KindUnlink Kind = "unlink"
	KindRename Kind = "rename"
	KindStat   Kind = "stat"
)

// Callback receives a finished request. It runs on the goroutine calling
// Poll or EventLoop.
type Callback func(req *Request)

// Request is a submitted operation. It keeps its own result and the error
// of the last call made on it.
type Request struct {
	cell lasterr.Cell

	id   uint64
	kind Kind
	loop *Loop
	cb   Callback

	path, to string
	flags    int
	mode     fs.FileMode
	fd       int
	data     []byte
	length   int
	offset   int64

	mu       sync.Mutex
	state    state
	result   any
	failure  lasterr.Context
	failed   bool
	canceled bool
}

type state int

const (
	queued state = iota
	running
	done
)

// ID returns the request's sequence number, unique within its loop.
func (r *Request) ID() uint64 { return r.id }

// Kind returns the request's operation.
func (r *Request) Kind() Kind { return r.kind }

// Done reports whether the request has finished, successfully or not.
func (r *Request) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == done
}

// LastError returns the message of the request's failure, or "" if it has
// not failed.
func (r *Request) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.failed {
		return ""
	}
	return r.failure.Message
}

func (r *Request) finish(v any, failure *lasterr.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = done
	if failure != nil {
		r.failure, r.failed = *failure, true
		return
	}
	r.result = v
}
