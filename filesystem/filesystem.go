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

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

// PutFlag modifies FilePutContents.
type PutFlag int

const (
	// FileAppend appends instead of truncating.
	FileAppend PutFlag = 1 << iota
	// LockEx refuses to write while any handle holds a lock on the file.
	LockEx
)

// SortOrder selects the order of Scandir results.
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
	SortNone
)

var (
	opChmod           = call.MustOp(safecall.Filesystem, "chmod")
	opChown           = call.MustOp(safecall.Filesystem, "chown")
	opFileperms       = call.MustOp(safecall.Filesystem, "fileperms")
	opCopy            = call.MustOp(safecall.Filesystem, "copy")
	opFileGetContents = call.MustOp(safecall.Filesystem, "file_get_contents")
	opFilePutContents = call.MustOp(safecall.Filesystem, "file_put_contents")
	opFilesize        = call.MustOp(safecall.Filesystem, "filesize")
	opMkdir           = call.MustOp(safecall.Filesystem, "mkdir")
	opRename          = call.MustOp(safecall.Filesystem, "rename")
	opUnlink          = call.MustOp(safecall.Filesystem, "unlink")
	opRmdir           = call.MustOp(safecall.Filesystem, "rmdir")
	opScandir         = call.MustOp(safecall.Filesystem, "scandir")
	opSymlink         = call.MustOp(safecall.Filesystem, "symlink")
	opReadlink        = call.MustOp(safecall.Filesystem, "readlink")
	opTempnam         = call.MustOp(safecall.Filesystem, "tempnam")
	opRealpath        = call.MustOp(safecall.Filesystem, "realpath")
	opFopen           = call.MustOp(safecall.Filesystem, "fopen")
	opFclose          = call.MustOp(safecall.Filesystem, "fclose")
	opFlock           = call.MustOp(safecall.Filesystem, "flock")
)

// Chmod changes the permission bits of name.
func (f *FS) Chmod(name string, mode fs.FileMode) error {
	return call.AmbientBool(f.env, opChmod, func() bool { return f.chmod(name, mode) })
}

// Chown changes the owner of name.
func (f *FS) Chown(name string, uid, gid int) error {
	return call.AmbientBool(f.env, opChown, func() bool { return f.chown(name, uid, gid) })
}

// Fileperms returns the permission bits of name.
func (f *FS) Fileperms(name string) (fs.FileMode, error) {
	n, err := call.Ambient(f.env, opFileperms, call.Negative[int](), func() int { return f.fileperms(name) })
	return fs.FileMode(n), err
}

// Copy copies the regular file src to dst, replacing dst.
func (f *FS) Copy(src, dst string) error {
	return call.AmbientBool(f.env, opCopy, func() bool { return f.copy(src, dst) })
}

// FileGetContents reads name. offset skips leading bytes and maxLen caps
// the result; maxLen can only be given together with offset.
//
// An empty file yields an empty, non-nil slice.
func (f *FS) FileGetContents(name string, offset, maxLen call.Opt[int64]) ([]byte, error) {
	tail, err := call.Tail(opFileGetContents, offset, maxLen)
	if err != nil {
		return nil, err
	}
	return call.Ambient(f.env, opFileGetContents, call.NilSlice[byte](), func() []byte {
		return f.getContents(name, tail...)
	})
}

// FilePutContents writes data to name and returns the number of bytes
// written.
func (f *FS) FilePutContents(name string, data []byte, flags call.Opt[PutFlag]) (int, error) {
	return call.Ambient(f.env, opFilePutContents, call.Negative[int](), func() int {
		return f.putContents(name, data, flags)
	})
}

// Filesize returns the size of name in bytes.
func (f *FS) Filesize(name string) (int64, error) {
	return call.Ambient(f.env, opFilesize, call.Negative[int64](), func() int64 { return f.filesize(name) })
}

// Mkdir creates the directory name. mode defaults to 0777; recursive
// creates missing parents and can only be given together with mode.
func (f *FS) Mkdir(name string, mode call.Opt[fs.FileMode], recursive call.Opt[bool]) error {
	if _, err := call.Arity(opMkdir, mode.Supplied(), recursive.Supplied()); err != nil {
		return err
	}
	return call.AmbientBool(f.env, opMkdir, func() bool { return f.mkdir(name, mode, recursive) })
}

// Rename moves from to to.
func (f *FS) Rename(from, to string) error {
	return call.AmbientBool(f.env, opRename, func() bool { return f.rename(from, to) })
}

// Unlink removes a file or symlink.
func (f *FS) Unlink(name string) error {
	return call.AmbientBool(f.env, opUnlink, func() bool { return f.unlink(name) })
}

// Rmdir removes an empty directory.
func (f *FS) Rmdir(name string) error {
	return call.AmbientBool(f.env, opRmdir, func() bool { return f.rmdir(name) })
}

// Scandir lists the entry names of dir, sorted ascending unless order says
// otherwise. An empty directory yields an empty, non-nil slice.
func (f *FS) Scandir(dir string, order call.Opt[SortOrder]) ([]string, error) {
	return call.Ambient(f.env, opScandir, call.NilSlice[string](), func() []string { return f.scandir(dir, order) })
}

// Symlink creates link pointing at target.
func (f *FS) Symlink(target, link string) error {
	return call.AmbientBool(f.env, opSymlink, func() bool { return f.symlink(target, link) })
}

// Readlink returns the target of link.
func (f *FS) Readlink(link string) (string, error) {
	return call.Ambient(f.env, opReadlink, call.Zero[string](), func() string { return f.readlink(link) })
}

// Tempnam creates a unique empty file in dir whose name starts with prefix
// and returns its path.
func (f *FS) Tempnam(dir, prefix string) (string, error) {
	return call.Ambient(f.env, opTempnam, call.Zero[string](), func() string { return f.tempnam(dir, prefix) })
}

// Realpath resolves symlinks and dot segments in name. The file must exist.
func (f *FS) Realpath(name string) (string, error) {
	return call.Ambient(f.env, opRealpath, call.Zero[string](), func() string { return f.realpath(name) })
}

// Fopen opens name with an fopen-style mode ("r", "w+", "a", "x", "c+").
func (f *FS) Fopen(name, mode string) (*File, error) {
	return call.Ambient(f.env, opFopen, call.Nil[File](), func() *File { return f.fopen(name, mode) })
}

// Fclose closes h and releases its locks.
func (f *FS) Fclose(h *File) error {
	return call.AmbientBool(f.env, opFclose, func() bool { return f.fclose(h) })
}

// Flock applies an advisory lock operation to h. wouldBlock may be nil;
// otherwise it is set on every call, true only when a LockNonBlocking
// request was refused because another handle holds a conflicting lock.
func (f *FS) Flock(h *File, op LockOp, wouldBlock *bool) error {
	return call.AmbientBool(f.env, opFlock, func() bool { return f.flock(h, op, wouldBlock) })
}
