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

// Package curl binds an HTTP transfer handle to the safecall convention.
//
// It uses the handle strategy: every Handle owns a lasterr.Cell, so
// Errno and Error report the last call on that handle and never a call on
// another one. Failed calls return a *safecall.NetworkError whose Errno is
// a libcurl-style result code (see Classify); the code travels in the
// "native_code" detail rather than being read as a POSIX errno.
//
//	h, err := curl.Init(call.Some("https://example.com"))
//	if err != nil {
//		return err
//	}
//	defer h.Close()
//	_ = h.Setopt(curl.OptFailOnError, true)
//	body, err := h.Exec(ctx)
package curl
