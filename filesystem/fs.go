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
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

// FS is a filesystem whose operations report failure the sentinel way and
// are exposed through the safe methods in this package.
//
// Paths are slash-separated and resolved against the FS root; "a/b" and
// "/a/b" name the same file.
type FS struct {
	bfs  billy.Filesystem
	env  *call.Env
	root string // host directory for NewLocal, "" otherwise

	mu    sync.Mutex
	attrs map[string]attr
	locks map[string]*lockState
}

// attr holds metadata for backends that cannot store it themselves.
type attr struct {
	mode     fs.FileMode
	hasMode  bool
	uid, gid int
	hasOwner bool
}

// Option configures an FS.
type Option func(*FS)

// WithEnv runs the FS's wrapped calls in env instead of call.Default.
func WithEnv(env *call.Env) Option {
	return func(f *FS) { f.env = env }
}

// New wraps a billy filesystem.
func New(bfs billy.Filesystem, opts ...Option) *FS {
	f := &FS{
		bfs:   bfs,
		attrs: make(map[string]attr),
		locks: make(map[string]*lockState),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewMemory returns an empty in-memory FS.
func NewMemory(opts ...Option) *FS {
	return New(memfs.New(), opts...)
}

// NewLocal returns an FS bound to the host directory root. Symlinks cannot
// escape root.
func NewLocal(root string, opts ...Option) *FS {
	f := New(osfs.New(root, osfs.WithBoundOS()), opts...)
	f.root = root
	return f
}

// Unwrap returns the underlying billy filesystem.
func (f *FS) Unwrap() billy.Filesystem { return f.bfs }

func (f *FS) reg() *lasterr.Register { return f.env.Register() }

// clean returns the canonical form of name: rooted, slash-separated.
func clean(name string) string {
	return path.Clean("/" + filepath.ToSlash(name))
}

// rel converts a canonical path into the form billy backends expect.
func rel(p string) string {
	r := strings.TrimPrefix(p, "/")
	if r == "" {
		return "."
	}
	return r
}

// host returns the host path of p for NewLocal filesystems.
func (f *FS) host(p string) string {
	return filepath.Join(f.root, filepath.FromSlash(rel(p)))
}

// fromBackend turns a name returned by the backend into a canonical path.
func (f *FS) fromBackend(name string) string {
	if f.root != "" {
		if r, err := filepath.Rel(f.root, name); err == nil && !strings.HasPrefix(r, "..") {
			return clean(r)
		}
	}
	return clean(name)
}
