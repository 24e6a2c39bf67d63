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
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/errno"
	"dirpx.dev/safecall/lasterr"
)

// The functions in this file are the native layer: they return the
// domain's sentinel and leave the failure in the register. They run inside
// a wrapped call, which holds the register's guard.

const (
	defaultDirMode = fs.FileMode(0o777)
	maxSymlinkHops = 40
)

// fail records err for op on p and returns false.
func (f *FS) fail(op, p string, err error) bool {
	ctx := lasterr.FromError(err)
	ctx.Message = fmt.Sprintf("%s(%s): %s", op, p, describe(ctx.Number, err))
	f.reg().Report(ctx)
	return false
}

// failNo records the errno n for op on p and returns false.
func (f *FS) failNo(op, p string, n syscall.Errno) bool {
	f.reg().Report(lasterr.Context{
		Number:  int(n),
		Message: fmt.Sprintf("%s(%s): %s", op, p, errno.Message(int(n))),
	})
	return false
}

func describe(n int, err error) string {
	if n != 0 {
		return errno.Message(n)
	}
	return err.Error()
}

func (f *FS) chmod(name string, mode fs.FileMode) bool {
	p := clean(name)
	if _, err := f.bfs.Stat(rel(p)); err != nil {
		return f.fail("chmod", p, err)
	}
	var err error
	switch c, ok := f.bfs.(billy.Change); {
	case ok:
		err = c.Chmod(rel(p), mode)
	case f.root != "":
		err = os.Chmod(f.host(p), mode)
	default:
		f.setAttr(p, func(a *attr) { a.mode, a.hasMode = mode.Perm(), true })
	}
	if err != nil {
		return f.fail("chmod", p, err)
	}
	return true
}

func (f *FS) chown(name string, uid, gid int) bool {
	p := clean(name)
	if _, err := f.bfs.Stat(rel(p)); err != nil {
		return f.fail("chown", p, err)
	}
	var err error
	switch c, ok := f.bfs.(billy.Change); {
	case ok:
		err = c.Chown(rel(p), uid, gid)
	case f.root != "":
		err = os.Chown(f.host(p), uid, gid)
	default:
		f.setAttr(p, func(a *attr) { a.uid, a.gid, a.hasOwner = uid, gid, true })
	}
	if err != nil {
		return f.fail("chown", p, err)
	}
	return true
}

func (f *FS) fileperms(name string) int {
	p := clean(name)
	fi, err := f.bfs.Stat(rel(p))
	if err != nil {
		f.fail("fileperms", p, err)
		return -1
	}
	f.mu.Lock()
	a, ok := f.attrs[p]
	f.mu.Unlock()
	if ok && a.hasMode {
		return int(a.mode)
	}
	return int(fi.Mode().Perm())
}

func (f *FS) copy(src, dst string) bool {
	s, d := clean(src), clean(dst)
	fi, err := f.bfs.Stat(rel(s))
	if err != nil {
		return f.fail("copy", s, err)
	}
	if fi.IsDir() {
		return f.failNo("copy", s, syscall.EISDIR)
	}
	in, err := f.bfs.Open(rel(s))
	if err != nil {
		return f.fail("copy", s, err)
	}
	defer in.Close()
	out, err := f.bfs.Create(rel(d))
	if err != nil {
		return f.fail("copy", d, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return f.fail("copy", d, err)
	}
	if err := out.Close(); err != nil {
		return f.fail("copy", d, err)
	}
	return true
}

// getContents reads name. tail holds the supplied optional arguments in
// order: offset, then maximum length.
func (f *FS) getContents(name string, tail ...int64) []byte {
	p := clean(name)
	fi, err := f.bfs.Stat(rel(p))
	if err != nil {
		f.fail("file_get_contents", p, err)
		return nil
	}
	if fi.IsDir() {
		f.failNo("file_get_contents", p, syscall.EISDIR)
		return nil
	}
	data, err := util.ReadFile(f.bfs, rel(p))
	if err != nil {
		f.fail("file_get_contents", p, err)
		return nil
	}
	if len(tail) > 0 {
		off := tail[0]
		if off < 0 || off > int64(len(data)) {
			f.failNo("file_get_contents", p, syscall.EINVAL)
			return nil
		}
		data = data[off:]
	}
	if len(tail) > 1 {
		n := tail[1]
		if n < 0 {
			f.failNo("file_get_contents", p, syscall.EINVAL)
			return nil
		}
		data = data[:min(n, int64(len(data)))]
	}
	if data == nil {
		data = []byte{}
	}
	return data
}

func (f *FS) putContents(name string, data []byte, flags call.Opt[PutFlag]) int {
	p := clean(name)
	fl := flags.Or(0)
	if fl&^(FileAppend|LockEx) != 0 {
		f.failNo("file_put_contents", p, syscall.EINVAL)
		return -1
	}
	if fl&LockEx != 0 && f.locked(p) {
		f.failNo("file_put_contents", p, syscall.EWOULDBLOCK)
		return -1
	}
	if fi, err := f.bfs.Stat(rel(p)); err == nil && fi.IsDir() {
		f.failNo("file_put_contents", p, syscall.EISDIR)
		return -1
	}
	mode := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if fl&FileAppend != 0 {
		mode = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	out, err := f.bfs.OpenFile(rel(p), mode, 0o666)
	if err != nil {
		f.fail("file_put_contents", p, err)
		return -1
	}
	n, err := out.Write(data)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.fail("file_put_contents", p, err)
		return -1
	}
	return n
}

func (f *FS) filesize(name string) int64 {
	p := clean(name)
	fi, err := f.bfs.Stat(rel(p))
	if err != nil {
		f.fail("filesize", p, err)
		return -1
	}
	return fi.Size()
}

func (f *FS) mkdir(name string, mode call.Opt[fs.FileMode], recursive call.Opt[bool]) bool {
	p := clean(name)
	if _, err := f.bfs.Lstat(rel(p)); err == nil {
		return f.failNo("mkdir", p, syscall.EEXIST)
	}
	if !recursive.Or(false) {
		parent, err := f.bfs.Stat(rel(path.Dir(p)))
		if err != nil {
			return f.failNo("mkdir", p, syscall.ENOENT)
		}
		if !parent.IsDir() {
			return f.failNo("mkdir", p, syscall.ENOTDIR)
		}
	}
	if err := f.bfs.MkdirAll(rel(p), mode.Or(defaultDirMode)); err != nil {
		return f.fail("mkdir", p, err)
	}
	return true
}

func (f *FS) rename(from, to string) bool {
	src, dst := clean(from), clean(to)
	if _, err := f.bfs.Lstat(rel(src)); err != nil {
		return f.fail("rename", src, err)
	}
	if err := f.bfs.Rename(rel(src), rel(dst)); err != nil {
		return f.fail("rename", src, err)
	}
	f.mu.Lock()
	if a, ok := f.attrs[src]; ok {
		delete(f.attrs, src)
		f.attrs[dst] = a
	}
	f.mu.Unlock()
	return true
}

func (f *FS) unlink(name string) bool {
	p := clean(name)
	fi, err := f.bfs.Lstat(rel(p))
	if err != nil {
		return f.fail("unlink", p, err)
	}
	if fi.IsDir() {
		return f.failNo("unlink", p, syscall.EISDIR)
	}
	if err := f.bfs.Remove(rel(p)); err != nil {
		return f.fail("unlink", p, err)
	}
	f.forget(p)
	return true
}

func (f *FS) rmdir(name string) bool {
	p := clean(name)
	fi, err := f.bfs.Lstat(rel(p))
	if err != nil {
		return f.fail("rmdir", p, err)
	}
	if !fi.IsDir() {
		return f.failNo("rmdir", p, syscall.ENOTDIR)
	}
	if p == "/" {
		return f.failNo("rmdir", p, syscall.EBUSY)
	}
	entries, err := f.bfs.ReadDir(rel(p))
	if err != nil {
		return f.fail("rmdir", p, err)
	}
	if len(entries) > 0 {
		return f.failNo("rmdir", p, syscall.ENOTEMPTY)
	}
	if err := f.bfs.Remove(rel(p)); err != nil {
		return f.fail("rmdir", p, err)
	}
	f.forget(p)
	return true
}

func (f *FS) scandir(dir string, order call.Opt[SortOrder]) []string {
	p := clean(dir)
	fi, err := f.bfs.Stat(rel(p))
	if err != nil {
		f.fail("scandir", p, err)
		return nil
	}
	if !fi.IsDir() {
		f.failNo("scandir", p, syscall.ENOTDIR)
		return nil
	}
	entries, err := f.bfs.ReadDir(rel(p))
	if err != nil {
		f.fail("scandir", p, err)
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	switch order.Or(SortAscending) {
	case SortAscending:
		slices.Sort(names)
	case SortDescending:
		slices.Sort(names)
		slices.Reverse(names)
	case SortNone:
	default:
		f.failNo("scandir", p, syscall.EINVAL)
		return nil
	}
	return names
}

func (f *FS) symlink(target, link string) bool {
	l := clean(link)
	if _, err := f.bfs.Lstat(rel(l)); err == nil {
		return f.failNo("symlink", l, syscall.EEXIST)
	}
	if err := f.bfs.Symlink(target, rel(l)); err != nil {
		return f.fail("symlink", l, err)
	}
	return true
}

func (f *FS) readlink(link string) string {
	l := clean(link)
	fi, err := f.bfs.Lstat(rel(l))
	if err != nil {
		f.fail("readlink", l, err)
		return ""
	}
	if fi.Mode()&fs.ModeSymlink == 0 {
		f.failNo("readlink", l, syscall.EINVAL)
		return ""
	}
	target, err := f.bfs.Readlink(rel(l))
	if err != nil {
		f.fail("readlink", l, err)
		return ""
	}
	return target
}

func (f *FS) tempnam(dir, prefix string) string {
	d := clean(dir)
	fi, err := f.bfs.Stat(rel(d))
	if err != nil {
		f.fail("tempnam", d, err)
		return ""
	}
	if !fi.IsDir() {
		f.failNo("tempnam", d, syscall.ENOTDIR)
		return ""
	}
	tmp, err := f.bfs.TempFile(rel(d), prefix)
	if err != nil {
		f.fail("tempnam", d, err)
		return ""
	}
	name := f.fromBackend(tmp.Name())
	if err := tmp.Close(); err != nil {
		f.fail("tempnam", d, err)
		return ""
	}
	return name
}

// realpath resolves every symlink in name and returns the canonical path
// inside the FS. Dot-dot segments are applied after the symlinks before
// them are resolved, so name is not cleaned up front.
func (f *FS) realpath(name string) string {
	p := "/" + strings.TrimPrefix(filepath.ToSlash(name), "/")
	pending := strings.Split(p, "/")
	cur := "/"
	hops := 0
	for len(pending) > 0 {
		seg := pending[0]
		pending = pending[1:]
		switch seg {
		case "", ".":
			continue
		case "..":
			cur = path.Dir(cur)
			continue
		}
		next := path.Join(cur, seg)
		fi, err := f.bfs.Lstat(rel(next))
		if err != nil {
			f.fail("realpath", p, err)
			return ""
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			if hops++; hops > maxSymlinkHops {
				f.failNo("realpath", p, syscall.ELOOP)
				return ""
			}
			target, err := f.bfs.Readlink(rel(next))
			if err != nil {
				f.fail("realpath", p, err)
				return ""
			}
			if path.IsAbs(target) {
				cur = "/"
			}
			pending = append(strings.Split(target, "/"), pending...)
			continue
		}
		if !fi.IsDir() && slices.ContainsFunc(pending, func(s string) bool { return s != "" && s != "." }) {
			f.failNo("realpath", p, syscall.ENOTDIR)
			return ""
		}
		cur = next
	}
	return cur
}

func (f *FS) setAttr(p string, apply func(*attr)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.attrs[p]
	apply(&a)
	f.attrs[p] = a
}

func (f *FS) forget(p string) {
	f.mu.Lock()
	delete(f.attrs, p)
	f.mu.Unlock()
}
