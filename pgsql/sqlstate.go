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

package pgsql

import "dirpx.dev/safecall/code"

var states = map[string]code.Code{
	"23505": code.AlreadyExists,
	"23503": code.NotFound,
	"23502": code.Invalid,
	"23514": code.PreconditionFailed,
	"42P01": code.NotFound,
	"42703": code.NotFound,
	"42883": code.NotFound,
	"3D000": code.NotFound,
	"26000": code.NotFound,
	"42P05": code.AlreadyExists,
	"42P07": code.AlreadyExists,
	"42601": code.Invalid,
	"42501": code.PermissionDenied,
	"28P01": code.InvalidCredentials,
	"28000": code.Unauthenticated,
	"57014": code.Canceled,
	"40001": code.Conflict,
	"40P01": code.Conflict,
	"55P03": code.WouldBlock,
	"25P02": code.PreconditionFailed,
	"0A000": code.Unsupported,
	"57P01": code.Unavailable,
	"57P03": code.Unavailable,
}

var classes = map[string]code.Code{
	"08": code.Unavailable,
	"22": code.Invalid,
	"23": code.Conflict,
	"25": code.PreconditionFailed,
	"28": code.Unauthenticated,
	"40": code.Conflict,
	"42": code.Invalid,
	"53": code.QuotaExceeded,
	"54": code.QuotaExceeded,
	"57": code.Unavailable,
	"58": code.IOFailure,
}

// Classify maps a SQLSTATE to a code: an exact match first, then the
// two-character class. Anything else is code.Internal.
func Classify(state string) code.Code {
	if c, ok := states[state]; ok {
		return c
	}
	if len(state) == 5 {
		if c, ok := classes[state[:2]]; ok {
			return c
		}
	}
	return code.Internal
}
