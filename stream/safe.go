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
	"context"
	"net"
	"time"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opRead         = call.MustOp(safecall.Stream, "read")
	opWrite        = call.MustOp(safecall.Stream, "write")
	opCopyToStream = call.MustOp(safecall.Stream, "copy_to_stream")
	opGetContents  = call.MustOp(safecall.Stream, "get_contents")
	opAppendFilter = call.MustOp(safecall.Stream, "filter_append")
	opRemoveFilter = call.MustOp(safecall.Stream, "filter_remove")
	opSocketClient = call.MustOp(safecall.Stream, "socket_client")
	opSocketServer = call.MustOp(safecall.Stream, "socket_server")
	opAccept       = call.MustOp(safecall.Stream, "socket_accept")
	opSetBlocking  = call.MustOp(safecall.Stream, "set_blocking")
	opSetTimeout   = call.MustOp(safecall.Stream, "set_timeout")
	opClose        = call.MustOp(safecall.Stream, "close")
)

// Server is a listening socket.
type Server struct {
	ln     net.Listener
	o      options
	closed bool
}

// Addr returns the address the server listens on.
func (srv *Server) Addr() net.Addr { return srv.ln.Addr() }

// Read reads up to length bytes. Fewer bytes than asked for is not an
// error. At end of stream, and when a non-blocking stream has nothing
// buffered, Read returns an empty non-nil slice.
func (s *Stream) Read(length int) ([]byte, error) {
	return call.Ambient(s.env, opRead, call.NilSlice[byte](), func() []byte { return s.read(length) })
}

// Write writes data through the write filters and returns the number of
// bytes accepted.
func (s *Stream) Write(data []byte) (int, error) {
	return call.Ambient(s.env, opWrite, call.Negative[int](), func() int { return s.write(data) })
}

// GetContents reads the remainder of s. maxLength caps the result (-1
// reads everything); offset skips bytes first and can only be given
// together with maxLength.
func (s *Stream) GetContents(maxLength, offset call.Opt[int64]) ([]byte, error) {
	tail, err := call.Tail(opGetContents, maxLength, offset)
	if err != nil {
		return nil, err
	}
	return call.Ambient(s.env, opGetContents, call.NilSlice[byte](), func() []byte { return s.getContents(tail...) })
}

// CopyToStream copies from src to dst and returns the number of bytes
// copied. The optional arguments behave as in GetContents.
func CopyToStream(src, dst *Stream, maxLength, offset call.Opt[int64]) (int64, error) {
	tail, err := call.Tail(opCopyToStream, maxLength, offset)
	if err != nil {
		return 0, err
	}
	return call.Ambient(src.env, opCopyToStream, call.Negative[int64](), func() int64 { return src.copyTo(dst, tail...) })
}

// AppendFilter attaches the named filter on top of the chain. Without a
// mode the filter applies to every direction it supports.
func (s *Stream) AppendFilter(name string, mode call.Opt[FilterMode]) (*Filter, error) {
	return call.Ambient(s.env, opAppendFilter, call.Nil[Filter](), func() *Filter { return s.appendFilter(name, mode) })
}

// RemoveFilter detaches f, flushing any data it buffers.
func (s *Stream) RemoveFilter(f *Filter) error {
	return call.AmbientBool(s.env, opRemoveFilter, func() bool { return s.removeFilter(f) })
}

// SetBlocking switches s between blocking and non-blocking reads. Only
// streams with deadline support can be switched.
func (s *Stream) SetBlocking(blocking bool) error {
	return call.AmbientBool(s.env, opSetBlocking, func() bool { return s.setBlocking(blocking) })
}

// SetTimeout sets the read and write timeout of a blocking stream. Reads
// that time out fail with code.Timeout.
func (s *Stream) SetTimeout(seconds int, microseconds call.Opt[int]) error {
	return call.AmbientBool(s.env, opSetTimeout, func() bool { return s.setTimeout(seconds, microseconds) })
}

// Close flushes the filter chain and closes the stream.
func (s *Stream) Close() error {
	return call.AmbientBool(s.env, opClose, func() bool { return s.close() })
}

// SocketClient connects to address ("tcp://host:port", "unix:///path",
// or a bare "host:port"). errno and errstr may be nil; otherwise they are
// set on every call, to 0 and "" on success.
func SocketClient(ctx context.Context, address string, errno *int, errstr *string, timeout call.Opt[time.Duration], opts ...Option) (*Stream, error) {
	o := apply(opts)
	return call.Ambient(o.env, opSocketClient, call.Nil[Stream](), func() *Stream {
		return socketClient(ctx, o, address, errno, errstr, timeout)
	})
}

// SocketServer listens on address. Streams accepted from the server share
// its options.
func SocketServer(address string, errno *int, errstr *string, opts ...Option) (*Server, error) {
	o := apply(opts)
	return call.Ambient(o.env, opSocketServer, call.Nil[Server](), func() *Server {
		return socketServer(o, address, errno, errstr)
	})
}

// Accept waits for a connection, at most timeout (60s when omitted).
func (srv *Server) Accept(timeout call.Opt[time.Duration]) (*Stream, error) {
	return call.Ambient(srv.o.env, opAccept, call.Nil[Stream](), func() *Stream { return srv.accept(timeout) })
}

// Close stops listening.
func (srv *Server) Close() error {
	return call.AmbientBool(srv.o.env, opClose, func() bool { return srv.close() })
}
