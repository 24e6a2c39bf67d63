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
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/code"
)

// gatedFS blocks Stat of "/gate" until release is closed.
type gatedFS struct {
	billy.Filesystem
	started chan struct{}
	release chan struct{}
}

func (g *gatedFS) Stat(name string) (fs.FileInfo, error) {
	if name == "/gate" {
		g.started <- struct{}{}
		<-g.release
		return nil, os.ErrNotExist
	}
	return g.Filesystem.Stat(name)
}

func newLoop(t *testing.T, opts ...Option) *Loop {
	t.Helper()
	l := New(append([]Option{WithEnv(call.NewEnv()), WithFilesystem(memfs.New())}, opts...)...)
	t.Cleanup(func() { _ = l.Shutdown() })
	return l
}

// blocked returns a one-worker loop whose worker is stuck until the
// returned function is called.
func blocked(t *testing.T, queue int) (*Loop, func()) {
	t.Helper()
	g := &gatedFS{Filesystem: memfs.New(), started: make(chan struct{}), release: make(chan struct{})}
	l := newLoop(t, WithFilesystem(g), WithWorkers(1), WithQueueSize(queue))
	_, err := l.Stat("/gate", nil)
	require.NoError(t, err)
	<-g.started
	return l, func() { close(g.release) }
}

func requireAIOError(t *testing.T, err error, c code.Code, op string, n syscall.Errno) *safecall.Error {
	t.Helper()
	require.Error(t, err)
	var ae *safecall.AsyncIOError
	require.True(t, errors.As(err, &ae), "want *safecall.AsyncIOError, got %T", err)
	assert.Equal(t, c, ae.Err.Code)
	assert.Equal(t, op, ae.Err.Op)
	assert.Equal(t, "async_io."+op, ae.Err.Reason.String())
	assert.Equal(t, int(n), ae.Err.Errno)
	return ae.Err
}

func result(t *testing.T, req *Request) any {
	t.Helper()
	v, err := req.Result()
	require.NoError(t, err)
	return v
}

func TestFileRoundTrip(t *testing.T) {
	l := newLoop(t)
	ctx := context.Background()

	open, err := l.Open("/notes.txt", os.O_RDWR|os.O_CREATE, 0o644, nil)
	require.NoError(t, err)
	require.NoError(t, l.EventLoop(ctx))
	fd := result(t, open).(int)

	w, err := l.Write(fd, []byte("hello, world"), 0, nil)
	require.NoError(t, err)
	require.NoError(t, l.EventLoop(ctx))
	assert.Equal(t, 12, result(t, w))

	r, err := l.Read(fd, 5, 7, nil)
	require.NoError(t, err)
	tail, err := l.Read(fd, 64, 7, nil)
	require.NoError(t, err)
	require.NoError(t, l.EventLoop(ctx))
	assert.Equal(t, []byte("world"), result(t, r))
	assert.Equal(t, []byte("world"), result(t, tail), "a short read at end of file is a success")

	st, err := l.Stat("/notes.txt", nil)
	require.NoError(t, err)
	c, err := l.Close(fd, nil)
	require.NoError(t, err)
	require.NoError(t, l.EventLoop(ctx))
	assert.Equal(t, int64(12), result(t, st).(fs.FileInfo).Size())
	assert.Equal(t, 0, result(t, c))

	r, err = l.Read(fd, 1, 0, nil)
	require.NoError(t, err)
	require.NoError(t, l.EventLoop(ctx))
	_, err = r.Result()
	e := requireAIOError(t, err, code.BadHandle, "eio_get_result", syscall.EBADF)
	assert.Equal(t, "eio_read(3): bad file descriptor", e.Message)
	assert.Equal(t, e.Message, r.LastError())
}

func TestDirectoryRequests(t *testing.T) {
	l := newLoop(t)
	ctx := context.Background()

	mk, _ := l.Mkdir("/data", 0o755, nil)
	require.NoError(t, l.EventLoop(ctx))
	assert.Equal(t, 0, result(t, mk))

	again, _ := l.Mkdir("/data", 0o755, nil)
	orphan, _ := l.Mkdir("/missing/child", 0o755, nil)
	unlinkDir, _ := l.Unlink("/data", nil)
	stat, _ := l.Stat("/nope", nil)
	require.NoError(t, l.EventLoop(ctx))

	_, err := again.Result()
	requireAIOError(t, err, code.AlreadyExists, "eio_get_result", syscall.EEXIST)
	_, err = orphan.Result()
	requireAIOError(t, err, code.NotFound, "eio_get_result", syscall.ENOENT)
	_, err = unlinkDir.Result()
	requireAIOError(t, err, code.Invalid, "eio_get_result", syscall.EISDIR)
	_, err = stat.Result()
	e := requireAIOError(t, err, code.NotFound, "eio_get_result", syscall.ENOENT)
	assert.Equal(t, "eio_stat(/nope): no such file or directory", e.Message)

	open, _ := l.Open("/data/a", os.O_CREATE|os.O_WRONLY, 0o644, nil)
	require.NoError(t, l.EventLoop(ctx))
	cl, _ := l.Close(result(t, open).(int), nil)
	require.NoError(t, l.EventLoop(ctx))
	result(t, cl)

	mv, _ := l.Rename("/data/a", "/data/b", nil)
	require.NoError(t, l.EventLoop(ctx))
	result(t, mv)
	rm, _ := l.Unlink("/data/b", nil)
	require.NoError(t, l.EventLoop(ctx))
	result(t, rm)
}

func TestCallbacksMaySubmit(t *testing.T) {
	l := newLoop(t)
	var seen []Kind
	_, err := l.Nop(func(req *Request) {
		seen = append(seen, req.Kind())
		assert.Equal(t, 0, result(t, req))
		_, err := l.Mkdir("/inner", 0o755, func(req *Request) { seen = append(seen, req.Kind()) })
		assert.NoError(t, err)
	})
	require.NoError(t, err)

	require.NoError(t, l.EventLoop(context.Background()))
	assert.Equal(t, []Kind{KindNop, KindMkdir}, seen)
	assert.Zero(t, l.Pending())
}

func TestQueueFull(t *testing.T) {
	l, release := blocked(t, 1)

	queued, err := l.Nop(nil)
	require.NoError(t, err)
	req, err := l.Nop(nil)
	assert.Nil(t, req)
	e := requireAIOError(t, err, code.WouldBlock, "eio_nop", syscall.EAGAIN)
	assert.Equal(t, "eio_nop: request queue is full", e.Message)

	_, err = queued.Result()
	requireAIOError(t, err, code.WouldBlock, "eio_get_result", syscall.EINPROGRESS)

	release()
	require.NoError(t, l.EventLoop(context.Background()))
	assert.Equal(t, 0, result(t, queued))
}

func TestCancel(t *testing.T) {
	l, release := blocked(t, 4)

	var delivered *Request
	req, err := l.Nop(func(r *Request) { delivered = r })
	require.NoError(t, err)
	require.NoError(t, l.Cancel(req))
	requireAIOError(t, l.Cancel(req), code.PreconditionFailed, "eio_cancel", syscall.EALREADY)

	release()
	require.NoError(t, l.EventLoop(context.Background()))
	require.Same(t, req, delivered, "a canceled request is still delivered")
	_, err = req.Result()
	requireAIOError(t, err, code.Canceled, "eio_get_result", syscall.ECANCELED)
}

func TestEventLoop_ContextCanceled(t *testing.T) {
	l, release := blocked(t, 1)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.EventLoop(ctx)
	requireAIOError(t, err, code.Canceled, "eio_event_loop", syscall.ECANCELED)
}

func TestShutdown(t *testing.T) {
	l := New(WithEnv(call.NewEnv()), WithFilesystem(memfs.New()))
	_, err := l.Open("/f", os.O_CREATE|os.O_RDWR, 0o644, nil)
	require.NoError(t, err)
	require.NoError(t, l.EventLoop(context.Background()))

	require.NoError(t, l.Shutdown())
	require.NoError(t, l.Shutdown())
	_, err = l.Nop(nil)
	e := requireAIOError(t, err, code.BadHandle, "eio_nop", syscall.EBADF)
	assert.Equal(t, "event loop is closed", e.Message)
	_, err = l.Poll()
	requireAIOError(t, err, code.BadHandle, "eio_poll", syscall.EBADF)
}
