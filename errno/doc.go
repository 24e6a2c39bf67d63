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

// Package errno classifies native error numbers and Go errors into codes.
//
// Native layers record a POSIX errno (or 0) in the last-error source. When a
// wrapped call fails, package call uses Classify to pick the code of the
// resulting error and Name to attach a symbolic name ("ENOENT") to its
// details. Number bridges the other way: it turns a Go error returned by a
// library (fs.ErrNotExist, a *PathError, a net timeout) into the errno a
// native layer should record.
package errno
