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

// Package code defines the machine-readable classification attached to every
// error produced by a wrapped native call.
//
// A code answers "what kind of failure was this?" independently of the
// domain the call belongs to: a missing file and a missing LDAP entry are
// both NotFound. Codes are:
//
//   - short and stable;
//   - lowercased;
//   - underscore-separated (not dash-separated);
//   - suitable for JSON/proto payloads and for lookup in registries.
//
// Numeric errors reported by native layers (POSIX errno, LDAP result codes,
// SQLSTATE) are classified into these codes by package errno and by the
// individual bindings.
package code
