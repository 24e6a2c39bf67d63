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

// Package safecall turns sentinel-style failure reporting into typed Go
// errors.
//
// Native layers in this module behave the way C-style runtimes do: on
// failure they return a distinguished value (false, -1, nil) and leave a
// message and number in a last-error source. Package call wraps such a
// native function as
//
//	reset last error -> invoke -> check sentinel -> value or typed error
//
// and the error it returns is always one of the taxonomy leaves defined
// here (FilesystemError, NetworkError, ...) wrapping an *Error.
//
// Subpackages:
//
//   - code, reason: validated classification and "<domain>.<op>" markers;
//   - errno: POSIX errno and Go error classification;
//   - lasterr: the ambient register and per-handle error cells;
//   - call: the invocation wrapper, sentinel predicates and optional
//     argument forwarding;
//   - mapper, adapter, grpcx, httpx: transport mapping;
//   - logging, metrics, config: ambient stack;
//   - filesystem, stream, curl, gd, directory, pgsql, sqldb, eio, ps:
//     domain bindings.
package safecall
