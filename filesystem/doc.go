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

// Package filesystem exposes file operations over go-billy backends with
// typed errors.
//
// Each exported method wraps a native operation that returns false, -1,
// nil or "" on failure and records an errno in the Env's register:
//
//	fsys := filesystem.NewMemory()
//	if err := fsys.Chmod("/etc/app.conf", 0o600); err != nil {
//	    var fe *safecall.FilesystemError
//	    errors.As(err, &fe) // fe.Err.Code == code.NotFound
//	}
//
// Backends without permission or ownership support keep that metadata in
// the FS itself, so Chmod followed by Fileperms behaves the same on every
// backend.
package filesystem
