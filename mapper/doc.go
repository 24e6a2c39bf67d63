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

// Package mapper resolves the (code, reason) of a wrapped-call error into
// HTTP and gRPC statuses.
//
// Every error produced by package call carries a code ("not_found") and a
// reason naming the failed operation ("filesystem.chmod"). A Mapper turns
// that pair into transport statuses with this precedence:
//
//  1. exact override for the code;
//  2. deepest matching reason prefix registered for the code;
//  3. default for the code (built in, adjustable);
//  4. fallback (500 / codes.Internal).
//
// Prefix rules are segment-aware, and "*" matches exactly one segment:
//
//	m, err := mapper.New(
//	    mapper.WithHTTPOverride(code.Canceled, 499),
//	    mapper.WithHTTPPrefix(code.Unavailable, "database", 502),
//	    mapper.WithHTTPPrefix(code.Timeout, "*.exec", 504),
//	)
//
//	st := m.Status(code.Unavailable, "database.connect")
//	// st.HTTP == 502, st.GRPC == codes.Unavailable
//
// A Mapper copies everything it is built from and is safe for concurrent
// use. Explain reports which tier matched and is meant for debugging, not
// for machine parsing.
package mapper
