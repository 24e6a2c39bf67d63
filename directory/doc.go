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

// Package directory binds LDAP operations, through github.com/go-ldap/ldap/v3,
// to the safecall convention.
//
// A Link keeps the result of its last operation, so Errno and Error behave
// like a per-connection "last result" accessor. Failed calls return a
// *safecall.DirectoryError carrying the LDAP result code as Errno and in
// the "native_code" detail. Classify maps result codes to codes:
// 49 is code.InvalidCredentials, 32 code.NotFound, 68 code.AlreadyExists,
// 50 code.PermissionDenied, 3 code.Timeout, 51 and 52 code.Unavailable.
//
// Compare returns -1 from its native layer on failure; 0 and 1 are
// results.
package directory
