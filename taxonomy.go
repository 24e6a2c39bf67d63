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

package safecall

import "errors"

// The taxonomy has one leaf per Domain. A leaf is inert data: it holds the
// *Error that describes the failure and unwraps to it, so callers can match
// either the domain
//
//	var fsErr *safecall.FilesystemError
//	if errors.As(err, &fsErr) { ... }
//
// or the shared record
//
//	var e *safecall.Error
//	if errors.As(err, &e) && e.Code == code.NotFound { ... }

// FilesystemError is returned by wrapped filesystem operations.
type FilesystemError struct{ Err *Error }

// StreamError is returned by wrapped byte-stream and socket operations.
type StreamError struct{ Err *Error }

// NetworkError is returned by wrapped transfer-handle operations.
type NetworkError struct{ Err *Error }

// ImageError is returned by wrapped raster image operations.
type ImageError struct{ Err *Error }

// DirectoryError is returned by wrapped directory-protocol operations.
type DirectoryError struct{ Err *Error }

// DatabaseError is returned by wrapped PostgreSQL operations.
type DatabaseError struct{ Err *Error }

// SQLError is returned by wrapped statement-handle database operations.
type SQLError struct{ Err *Error }

// AsyncIOError is returned by wrapped asynchronous request submissions.
type AsyncIOError struct{ Err *Error }

// DocumentError is returned by wrapped PostScript document operations.
type DocumentError struct{ Err *Error }

func (e *FilesystemError) Error() string { return e.Err.Error() }
func (e *FilesystemError) Unwrap() error { return e.Err }
func (e *StreamError) Error() string     { return e.Err.Error() }
func (e *StreamError) Unwrap() error     { return e.Err }
func (e *NetworkError) Error() string    { return e.Err.Error() }
func (e *NetworkError) Unwrap() error    { return e.Err }
func (e *ImageError) Error() string      { return e.Err.Error() }
func (e *ImageError) Unwrap() error      { return e.Err }
func (e *DirectoryError) Error() string  { return e.Err.Error() }
func (e *DirectoryError) Unwrap() error  { return e.Err }
func (e *DatabaseError) Error() string   { return e.Err.Error() }
func (e *DatabaseError) Unwrap() error   { return e.Err }
func (e *SQLError) Error() string        { return e.Err.Error() }
func (e *SQLError) Unwrap() error        { return e.Err }
func (e *AsyncIOError) Error() string    { return e.Err.Error() }
func (e *AsyncIOError) Unwrap() error    { return e.Err }
func (e *DocumentError) Error() string   { return e.Err.Error() }
func (e *DocumentError) Unwrap() error   { return e.Err }

// Wrap places e in the taxonomy leaf of its Domain. An Error whose Domain is
// not known is returned as is. Wrap(nil) returns nil.
func Wrap(e *Error) error {
	if e == nil {
		return nil
	}
	switch e.Domain {
	case Filesystem:
		return &FilesystemError{Err: e}
	case Stream:
		return &StreamError{Err: e}
	case Network:
		return &NetworkError{Err: e}
	case Image:
		return &ImageError{Err: e}
	case Directory:
		return &DirectoryError{Err: e}
	case Database:
		return &DatabaseError{Err: e}
	case SQL:
		return &SQLError{Err: e}
	case AsyncIO:
		return &AsyncIOError{Err: e}
	case Document:
		return &DocumentError{Err: e}
	default:
		return e
	}
}

// AsError finds the *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// DomainOf reports the domain of a wrapped-call error.
func DomainOf(err error) (Domain, bool) {
	e, ok := AsError(err)
	if !ok || e.Domain == "" {
		return "", false
	}
	return e.Domain, true
}
