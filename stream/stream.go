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

package stream

import (
	"io"
	"time"

	"github.com/go-git/go-billy/v5/memfs"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

// defaultTimeout applies to connects and accepts that were not given one.
const defaultTimeout = 60 * time.Second

// nonBlockingWindow is the read deadline used in non-blocking mode. A
// deadline already in the past fails before buffered data is looked at.
const nonBlockingWindow = time.Millisecond

// deadliner is implemented by net.Conn and by os.File on pollable fds.
type deadliner interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Stream is a byte stream over any io.ReadWriteCloser. Reads and writes
// pass through the stream's filter chain.
//
// A Stream is not safe for concurrent use. Its wrapped calls hold the
// Env's guard for their whole duration, including blocking socket reads.
// Without WithEnv every Stream and Server gets a fork of call.Default, so a
// pending read or accept never stalls unrelated calls.
type Stream struct {
	env  *call.Env
	base io.ReadWriteCloser
	conn deadliner

	r       io.Reader
	w       io.Writer
	filters []*Filter

	blocking bool
	timeout  time.Duration
	eof      bool
	closed   bool
}

// Option configures a Stream or Server.
type Option func(*options)

type options struct {
	env    *call.Env
	forked bool
}

// WithEnv runs the stream's wrapped calls in env instead of a private fork
// of call.Default. Streams sharing env serialize on its guard.
func WithEnv(env *call.Env) Option {
	return func(o *options) { o.env = env }
}

func apply(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.env == nil {
		o.env, o.forked = call.Default.Fork(), true
	}
	return o
}

// child returns the options for a stream created by a dial or accept.
// A forked parent hands each child a fork of its own.
func (o options) child() options {
	if o.forked {
		o.env = call.Default.Fork()
	}
	return o
}

// Open wraps rwc. Deadline support, and with it SetBlocking and
// SetTimeout, is available when rwc has SetReadDeadline and
// SetWriteDeadline.
func Open(rwc io.ReadWriteCloser, opts ...Option) *Stream {
	return newStream(rwc, apply(opts))
}

// Memory returns a seekable in-memory stream holding data, positioned at
// the start.
func Memory(data []byte, opts ...Option) *Stream {
	f, err := memfs.New().Create("memory")
	if err != nil {
		// memfs cannot fail to create a file in an empty filesystem.
		panic(err)
	}
	_, _ = f.Write(data)
	_, _ = f.Seek(0, io.SeekStart)
	return newStream(f, apply(opts))
}

func newStream(rwc io.ReadWriteCloser, o options) *Stream {
	s := &Stream{env: o.env, base: rwc, r: rwc, w: rwc, blocking: true}
	if d, ok := rwc.(deadliner); ok {
		s.conn = d
	}
	return s
}

// EOF reports whether a read has hit the end of the stream.
func (s *Stream) EOF() bool { return s.eof }

// Unwrap returns the underlying io.ReadWriteCloser.
func (s *Stream) Unwrap() io.ReadWriteCloser { return s.base }

func (s *Stream) reg() *lasterr.Register { return s.env.Register() }
