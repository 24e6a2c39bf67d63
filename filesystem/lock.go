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

package filesystem

import (
	"os"
	"syscall"

	"github.com/go-git/go-billy/v5"
)

// LockOp is a Flock operation, optionally combined with LockNonBlocking.
type LockOp int

const (
	LockShared    LockOp = 1
	LockExclusive LockOp = 2
	LockUnlock    LockOp = 3

	// LockNonBlocking makes a conflicting lock fail with would_block and
	// sets the caller's wouldBlock flag.
	LockNonBlocking LockOp = 4
)

// File is an open file handle.
type File struct {
	fs     *FS
	f      billy.File
	path   string
	closed bool
}

// Path returns the canonical path the handle was opened with.
func (h *File) Path() string { return h.path }

// lockState tracks advisory locks held on one path.
type lockState struct {
	holders map[*File]LockOp
}

// openFlags maps fopen-style modes to os flags.
var openFlags = map[string]int{
	"r":  os.O_RDONLY,
	"r+": os.O_RDWR,
	"w":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"w+": os.O_RDWR | os.O_CREATE | os.O_TRUNC,
	"a":  os.O_WRONLY | os.O_CREATE | os.O_APPEND,
	"a+": os.O_RDWR | os.O_CREATE | os.O_APPEND,
	"x":  os.O_WRONLY | os.O_CREATE | os.O_EXCL,
	"x+": os.O_RDWR | os.O_CREATE | os.O_EXCL,
	"c":  os.O_WRONLY | os.O_CREATE,
	"c+": os.O_RDWR | os.O_CREATE,
}

func (f *FS) fopen(name, mode string) *File {
	p := clean(name)
	flag, ok := openFlags[mode]
	if !ok {
		f.failNo("fopen", p, syscall.EINVAL)
		return nil
	}
	if fi, err := f.bfs.Stat(rel(p)); err == nil && fi.IsDir() {
		f.failNo("fopen", p, syscall.EISDIR)
		return nil
	}
	if flag&os.O_EXCL != 0 {
		if _, err := f.bfs.Lstat(rel(p)); err == nil {
			f.failNo("fopen", p, syscall.EEXIST)
			return nil
		}
	}
	bf, err := f.bfs.OpenFile(rel(p), flag, 0o666)
	if err != nil {
		f.fail("fopen", p, err)
		return nil
	}
	return &File{fs: f, f: bf, path: p}
}

func (f *FS) fclose(h *File) bool {
	if h == nil || h.fs != f || h.closed {
		return f.failNo("fclose", handlePath(h), syscall.EBADF)
	}
	f.mu.Lock()
	f.release(h)
	f.mu.Unlock()
	h.closed = true
	if err := h.f.Close(); err != nil {
		return f.fail("fclose", h.path, err)
	}
	return true
}

// flock applies op to h. wouldBlock is written on every path: true only
// when a non-blocking request conflicts with a lock held elsewhere.
//
// A blocking request that conflicts fails with EDEADLK: waiting would hold
// the call guard the current holder needs to unlock.
func (f *FS) flock(h *File, op LockOp, wouldBlock *bool) bool {
	if wouldBlock != nil {
		*wouldBlock = false
	}
	if h == nil || h.fs != f || h.closed {
		return f.failNo("flock", handlePath(h), syscall.EBADF)
	}
	nb := op&LockNonBlocking != 0
	mode := op &^ LockNonBlocking

	f.mu.Lock()
	defer f.mu.Unlock()
	switch mode {
	case LockUnlock:
		f.release(h)
		return true
	case LockShared, LockExclusive:
	default:
		return f.failNo("flock", h.path, syscall.EINVAL)
	}

	st := f.locks[h.path]
	if st == nil {
		st = &lockState{holders: make(map[*File]LockOp)}
		f.locks[h.path] = st
	}
	for other, held := range st.holders {
		if other == h {
			continue
		}
		if mode == LockExclusive || held == LockExclusive {
			if nb {
				if wouldBlock != nil {
					*wouldBlock = true
				}
				return f.failNo("flock", h.path, syscall.EWOULDBLOCK)
			}
			return f.failNo("flock", h.path, syscall.EDEADLK)
		}
	}

	prev := st.holders[h]
	switch {
	case mode == LockExclusive && prev != LockExclusive:
		if err := h.f.Lock(); err != nil {
			return f.fail("flock", h.path, err)
		}
	case mode == LockShared && prev == LockExclusive:
		if err := h.f.Unlock(); err != nil {
			return f.fail("flock", h.path, err)
		}
	}
	st.holders[h] = mode
	return true
}

// release drops every lock h holds. f.mu must be held.
func (f *FS) release(h *File) {
	st := f.locks[h.path]
	if st == nil {
		return
	}
	if st.holders[h] == LockExclusive {
		_ = h.f.Unlock()
	}
	delete(st.holders, h)
	if len(st.holders) == 0 {
		delete(f.locks, h.path)
	}
}

// locked reports whether any handle holds a lock on p.
func (f *FS) locked(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locks[p] != nil
}

func handlePath(h *File) string {
	if h == nil {
		return "<nil>"
	}
	return h.path
}
