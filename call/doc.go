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

// Package call wraps sentinel-returning native functions.
//
// Every wrapper follows the same four steps:
//
//  1. clear the last-error source;
//  2. invoke the native function;
//  3. test the result with the binding's sentinel predicate;
//  4. return the result unchanged, or build a typed error from the source.
//
// Ambient reads the Env's register and holds its guard across steps 1-3, so
// two wrapped calls on one Env never see each other's failures. Handle reads
// an error source that belongs to a resource (a connection, a statement, a
// transfer handle) and locks it the same way when the source is a
// sync.Locker.
//
// A binding looks like:
//
//	var opChmod = call.MustOp(safecall.Filesystem, "chmod")
//
//	func (f *FS) Chmod(path string, mode fs.FileMode) error {
//	    return call.AmbientBool(f.env, opChmod, func() bool {
//	        return f.native.chmod(path, mode)
//	    })
//	}
//
// Native functions must not call back into a wrapper on the same Env: the
// guard is not reentrant.
package call
