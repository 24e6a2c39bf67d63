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

// Package stream wraps byte streams and sockets with typed errors.
//
// A read that returns fewer bytes than requested succeeds. A read at end of
// stream returns an empty, non-nil slice; only a failed read returns nil
// together with a *safecall.StreamError.
//
// Filters transform data as it passes through a stream. The registered
// filters are string.toupper, string.rot13, zlib.deflate (write only) and
// zlib.inflate (read only).
package stream
