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

package sqldb

import "dirpx.dev/safecall/code"

// SQLite primary result codes.
const (
	ResultError      = 1
	ResultPerm       = 3
	ResultAbort      = 4
	ResultBusy       = 5
	ResultLocked     = 6
	ResultNoMem      = 7
	ResultReadOnly   = 8
	ResultInterrupt  = 9
	ResultIOErr      = 10
	ResultCorrupt    = 11
	ResultFull       = 13
	ResultCantOpen   = 14
	ResultTooBig     = 18
	ResultConstraint = 19
	ResultMismatch   = 20
	ResultMisuse     = 21
	ResultAuth       = 23
	ResultRange      = 25
	ResultNotADB     = 26
)

// SQLite extended constraint codes.
const (
	ConstraintCheck      = 275
	ConstraintForeignKey = 787
	ConstraintNotNull    = 1299
	ConstraintPrimaryKey = 1555
	ConstraintUnique     = 2067
)

var extended = map[int]code.Code{
	ConstraintCheck:      code.PreconditionFailed,
	ConstraintForeignKey: code.NotFound,
	ConstraintNotNull:    code.Invalid,
	ConstraintPrimaryKey: code.AlreadyExists,
	ConstraintUnique:     code.AlreadyExists,
}

var primary = map[int]code.Code{
	ResultError:      code.Invalid,
	ResultPerm:       code.PermissionDenied,
	ResultAbort:      code.Canceled,
	ResultBusy:       code.WouldBlock,
	ResultLocked:     code.Conflict,
	ResultNoMem:      code.QuotaExceeded,
	ResultReadOnly:   code.PermissionDenied,
	ResultInterrupt:  code.Canceled,
	ResultIOErr:      code.IOFailure,
	ResultCorrupt:    code.IOFailure,
	ResultFull:       code.QuotaExceeded,
	ResultCantOpen:   code.Unavailable,
	ResultTooBig:     code.Invalid,
	ResultConstraint: code.Conflict,
	ResultMismatch:   code.Invalid,
	ResultMisuse:     code.Internal,
	ResultAuth:       code.PermissionDenied,
	ResultRange:      code.Invalid,
	ResultNotADB:     code.Invalid,
}

// Classify maps an SQLite result code, extended or primary, to a code.
// Extended codes fall back to their primary code (the low byte).
func Classify(rc int) code.Code {
	if c, ok := extended[rc]; ok {
		return c
	}
	if c, ok := primary[rc&0xff]; ok {
		return c
	}
	return code.Internal
}
