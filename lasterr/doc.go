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

// Package lasterr holds the "last error" state that native layers report
// into and wrapped calls read back.
//
// Two kinds of source exist:
//
//   - Register: the ambient register owned by a call.Env. Every wrapped
//     call on that Env clears it, invokes the native function and reads it
//     while holding the register's guard, so concurrent calls never observe
//     each other's failures.
//   - Cell: per-handle error state, embedded in connection, statement and
//     transfer handles whose subsystem keeps its own error accessor.
//
// Native code writes through Report, ReportError and Reportf. Nothing else
// should write to a source.
package lasterr
