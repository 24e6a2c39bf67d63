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

// Package reason defines the structured "where did it fail" part of an error.
//
// Where a code answers "what kind of failure is this?", a reason names the
// wrapped operation that failed:
//
//   - "filesystem.chmod"
//   - "directory.bind"
//   - "sql.execute"
//
// Every error produced by package call carries the reason
// "<domain>.<operation>". Mappers can match reasons by segment prefix.
package reason
