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
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/safecall/call"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
)

// Loop is an asynchronous request queue. Submitted requests run on a fixed
// pool of workers; Poll and EventLoop deliver finished requests to their
// callbacks on the caller's goroutine.
type Loop struct {
	env     *call.Env
	fs      billy.Filesystem
	workers int

	queue chan *Request
	group *errgroup.Group
	ready chan struct{}

	mu       sync.Mutex
	closed   bool
	nextID   uint64
	pending  int
	finished []*Request
	files    map[int]billy.File
	nextFD   int
}

// Option configures a Loop.
type Option func(*Loop)

// WithEnv runs the loop's wrapped calls in env.
func WithEnv(env *call.Env) Option {
	return func(l *Loop) { l.env = env }
}

// WithFilesystem runs file requests against fs instead of the host
// filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(l *Loop) { l.fs = fs }
}

// WithWorkers sets the number of workers. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithQueueSize sets how many requests may wait for a worker before
// submissions fail. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make(chan *Request, n)
		}
	}
}

// New starts a loop and its workers.
func New(opts ...Option) *Loop {
	l := &Loop{
		workers: defaultWorkers,
		queue:   make(chan *Request, defaultQueueSize),
		ready:   make(chan struct{}, 1),
		files:   make(map[int]billy.File),
		nextFD:  3,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fs == nil {
		l.fs = osfs.New("/")
	}

	g, ctx := errgroup.WithContext(context.Background())
	for range l.workers {
		g.Go(func() error {
			l.work(ctx)
			return nil
		})
	}
	l.group = g
	return l
}

func (l *Loop) work(ctx context.Context) {
	for req := range l.queue {
		req.execute(ctx)
		l.mu.Lock()
		l.finished = append(l.finished, req)
		l.mu.Unlock()
		select {
		case l.ready <- struct{}{}:
		default:
		}
	}
}

// Pending returns the number of submitted requests whose callbacks have
// not run yet.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Shutdown stops accepting requests, waits for queued requests to finish
// and closes files still open through the loop. Callbacks of requests not
// yet polled do not run.
func (l *Loop) Shutdown() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	err := l.group.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	for fd, f := range l.files {
		_ = f.Close()
		delete(l.files, fd)
	}
	return err
}
