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
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/filesystem"
)

var none = call.Opt[int64]{}

func requireStreamError(t *testing.T, err error, c code.Code, op string) *safecall.Error {
	t.Helper()
	require.Error(t, err)
	var se *safecall.StreamError
	require.True(t, errors.As(err, &se), "want *safecall.StreamError, got %T", err)
	assert.Equal(t, c, se.Err.Code)
	assert.Equal(t, "stream."+op, se.Err.Reason.String())
	return se.Err
}

func rewind(t *testing.T, s *Stream) {
	t.Helper()
	_, err := s.Unwrap().(io.Seeker).Seek(0, io.SeekStart)
	require.NoError(t, err)
}

func TestRead_ShortAndEOF(t *testing.T) {
	s := Memory([]byte("hello"), WithEnv(call.NewEnv()))

	got, err := s.Read(3)
	require.NoError(t, err)
	assert.Equal(t, "hel", string(got))

	got, err = s.Read(10)
	require.NoError(t, err, "a short read is a success")
	assert.Equal(t, "lo", string(got))

	got, err = s.Read(10)
	require.NoError(t, err, "end of stream is not a failure")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, s.EOF())

	got, err = s.Read(0)
	requireStreamError(t, err, code.Invalid, "read")
	assert.Nil(t, got)
}

func TestWriteAndGetContents(t *testing.T) {
	s := Memory([]byte("0123456789"), WithEnv(call.NewEnv()))

	got, err := s.GetContents(call.Some[int64](3), call.Some[int64](2))
	require.NoError(t, err)
	assert.Equal(t, "234", string(got))

	got, err = s.GetContents(none, none)
	require.NoError(t, err)
	assert.Equal(t, "56789", string(got))

	got, err = s.GetContents(none, none)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = s.GetContents(none, call.Some[int64](1))
	e := requireStreamError(t, err, code.Invalid, "get_contents")
	assert.Equal(t, 2, e.Details["argument"])

	n, err := s.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCopyToStream(t *testing.T) {
	env := call.NewEnv()
	src := Memory([]byte("0123456789"), WithEnv(env))
	dst := Memory(nil, WithEnv(env))

	n, err := CopyToStream(src, dst, call.Some[int64](4), call.Some[int64](1))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = CopyToStream(src, dst, none, none)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	rewind(t, dst)
	got, err := dst.GetContents(none, none)
	require.NoError(t, err)
	assert.Equal(t, "123456789", string(got))

	require.NoError(t, dst.Close())
	_, err = CopyToStream(src, dst, none, none)
	requireStreamError(t, err, code.BadHandle, "copy_to_stream")
}

func TestFilters_StringTransforms(t *testing.T) {
	env := call.NewEnv()

	w := Memory(nil, WithEnv(env))
	_, err := w.AppendFilter("string.toupper", call.Some(FilterWrite))
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	rewind(t, w)
	got, err := w.Read(16)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(got), "write-only filter must not touch reads")

	r := Memory([]byte("uryyb"), WithEnv(env))
	f, err := r.AppendFilter("string.rot13", call.Opt[FilterMode]{})
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f.Mode())
	got, err = r.Read(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, r.RemoveFilter(f))
	requireStreamError(t, r.RemoveFilter(f), code.Invalid, "filter_remove")
}

func TestFilters_ZlibRoundTrip(t *testing.T) {
	env := call.NewEnv()
	payload := bytes.Repeat([]byte("safecall "), 64)

	s := Memory(nil, WithEnv(env))
	def, err := s.AppendFilter("zlib.deflate", call.Opt[FilterMode]{})
	require.NoError(t, err)
	assert.Equal(t, FilterWrite, def.Mode())
	_, err = s.Write(payload)
	require.NoError(t, err)
	require.NoError(t, s.RemoveFilter(def))

	rewind(t, s)
	raw, err := s.GetContents(none, none)
	require.NoError(t, err)
	assert.Less(t, len(raw), len(payload))

	rewind(t, s)
	_, err = s.AppendFilter("zlib.inflate", call.Opt[FilterMode]{})
	require.NoError(t, err)
	got, err := s.GetContents(none, none)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFilters_RemoveKeepsOtherStages(t *testing.T) {
	env := call.NewEnv()

	s := Memory(nil, WithEnv(env))
	def, err := s.AppendFilter("zlib.deflate", call.Opt[FilterMode]{})
	require.NoError(t, err)
	up, err := s.AppendFilter("string.toupper", call.Some(FilterWrite))
	require.NoError(t, err)
	_, err = s.Write([]byte("hello "))
	require.NoError(t, err)
	require.NoError(t, s.RemoveFilter(up))
	_, err = s.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, s.RemoveFilter(def))

	rewind(t, s)
	_, err = s.AppendFilter("zlib.inflate", call.Opt[FilterMode]{})
	require.NoError(t, err)
	got, err := s.GetContents(none, none)
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", string(got), "deflate must stay one zlib stream")

	r := Memory([]byte("abcdef"), WithEnv(env))
	up, err = r.AppendFilter("string.toupper", call.Some(FilterRead))
	require.NoError(t, err)
	_, err = r.AppendFilter("string.rot13", call.Some(FilterRead))
	require.NoError(t, err)
	got, err = r.Read(3)
	require.NoError(t, err)
	assert.Equal(t, "NOP", string(got))
	require.NoError(t, r.RemoveFilter(up))
	got, err = r.Read(3)
	require.NoError(t, err)
	assert.Equal(t, "qrs", string(got))
}

func TestFilters_Rejected(t *testing.T) {
	s := Memory(nil, WithEnv(call.NewEnv()))

	f, err := s.AppendFilter("string.nope", call.Opt[FilterMode]{})
	requireStreamError(t, err, code.Invalid, "filter_append")
	assert.Nil(t, f)

	_, err = s.AppendFilter("zlib.deflate", call.Some(FilterRead))
	requireStreamError(t, err, code.Invalid, "filter_append")
}

func TestMemory_NoDeadlines(t *testing.T) {
	s := Memory(nil, WithEnv(call.NewEnv()))
	requireStreamError(t, s.SetBlocking(false), code.Unsupported, "set_blocking")
	requireStreamError(t, s.SetTimeout(1, call.Opt[int]{}), code.Unsupported, "set_timeout")

	require.NoError(t, s.Close())
	requireStreamError(t, s.Close(), code.BadHandle, "close")
	_, err := s.Read(1)
	requireStreamError(t, err, code.BadHandle, "read")
}

func TestSockets(t *testing.T) {
	// Server and client use separate Envs: a blocking call holds its Env's
	// guard until it returns.
	srvEnv, cliEnv := call.NewEnv(), call.NewEnv()

	var eno int
	var estr string
	srv, err := SocketServer("tcp://127.0.0.1:0", &eno, &estr, WithEnv(srvEnv))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	eno, estr = -1, "stale"
	cli, err := SocketClient(context.Background(), "tcp://"+srv.Addr().String(), &eno, &estr,
		call.Some(time.Second), WithEnv(cliEnv))
	require.NoError(t, err)
	assert.Zero(t, eno, "out-params are written on success")
	assert.Empty(t, estr)

	conn, err := srv.Accept(call.Some(time.Second))
	require.NoError(t, err)

	_, err = cli.Write([]byte("ping"))
	require.NoError(t, err)
	got, err := conn.GetContents(call.Some[int64](4), none)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(got))

	t.Run("non-blocking read with nothing buffered", func(t *testing.T) {
		require.NoError(t, conn.SetBlocking(false))
		got, err := conn.Read(16)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("blocking read times out", func(t *testing.T) {
		require.NoError(t, conn.SetBlocking(true))
		require.NoError(t, conn.SetTimeout(0, call.Some(50_000)))
		got, err := conn.Read(16)
		requireStreamError(t, err, code.Timeout, "read")
		assert.Nil(t, got)
	})

	require.NoError(t, cli.Close())
	require.NoError(t, conn.Close())
}

func TestSocketClient_Failures(t *testing.T) {
	env := call.NewEnv()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	var eno int
	var estr string
	s, err := SocketClient(context.Background(), addr, &eno, &estr, call.Some(time.Second), WithEnv(env))
	e := requireStreamError(t, err, code.Unavailable, "socket_client")
	assert.Nil(t, s)
	assert.Equal(t, int(syscall.ECONNREFUSED), eno)
	assert.NotEmpty(t, estr)
	assert.Equal(t, eno, e.Errno)

	_, err = SocketClient(context.Background(), "ftp://example.com:21", &eno, &estr, call.Opt[time.Duration]{}, WithEnv(env))
	requireStreamError(t, err, code.Unsupported, "socket_client")
	assert.Equal(t, int(syscall.EPROTONOSUPPORT), eno)
}

func TestAccept_Timeout(t *testing.T) {
	env := call.NewEnv()
	srv, err := SocketServer("127.0.0.1:0", nil, nil, WithEnv(env))
	require.NoError(t, err)

	_, err = srv.Accept(call.Some(20 * time.Millisecond))
	requireStreamError(t, err, code.Timeout, "socket_accept")

	require.NoError(t, srv.Close())
	requireStreamError(t, srv.Close(), code.BadHandle, "close")
	_, err = srv.Accept(call.Opt[time.Duration]{})
	requireStreamError(t, err, code.BadHandle, "socket_accept")
}

func TestAccept_PendingDoesNotStallDefaultEnv(t *testing.T) {
	srv, err := SocketServer("127.0.0.1:0", nil, nil)
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	accepted := make(chan error, 1)
	go func() {
		_, err := srv.Accept(call.Some(2 * time.Second))
		accepted <- err
	}()
	time.Sleep(50 * time.Millisecond)

	mem := filesystem.NewMemory()
	done := make(chan error, 1)
	go func() { done <- mem.Mkdir("/pending", call.Opt[fs.FileMode]{}, call.Opt[bool]{}) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("filesystem call waited on a pending accept")
	}

	select {
	case err := <-accepted:
		t.Fatalf("accept returned early: %v", err)
	default:
	}
	requireStreamError(t, <-accepted, code.Timeout, "socket_accept")
}
