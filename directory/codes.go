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

package directory

import (
	"github.com/go-ldap/ldap/v3"

	"dirpx.dev/safecall/code"
)

var classes = map[int]code.Code{
	ldap.LDAPResultOperationsError:              code.Internal,
	ldap.LDAPResultProtocolError:                code.Invalid,
	ldap.LDAPResultTimeLimitExceeded:            code.Timeout,
	ldap.LDAPResultSizeLimitExceeded:            code.QuotaExceeded,
	ldap.LDAPResultAuthMethodNotSupported:       code.Unsupported,
	ldap.LDAPResultStrongAuthRequired:           code.Unauthenticated,
	ldap.LDAPResultAdminLimitExceeded:           code.QuotaExceeded,
	ldap.LDAPResultUnavailableCriticalExtension: code.Unsupported,
	ldap.LDAPResultConfidentialityRequired:      code.PermissionDenied,
	ldap.LDAPResultNoSuchAttribute:              code.NotFound,
	ldap.LDAPResultUndefinedAttributeType:       code.Invalid,
	ldap.LDAPResultInappropriateMatching:        code.Invalid,
	ldap.LDAPResultConstraintViolation:          code.PreconditionFailed,
	ldap.LDAPResultAttributeOrValueExists:       code.AlreadyExists,
	ldap.LDAPResultInvalidAttributeSyntax:       code.Invalid,
	ldap.LDAPResultNoSuchObject:                 code.NotFound,
	ldap.LDAPResultInvalidDNSyntax:              code.Invalid,
	ldap.LDAPResultInappropriateAuthentication:  code.Unauthenticated,
	ldap.LDAPResultInvalidCredentials:           code.InvalidCredentials,
	ldap.LDAPResultInsufficientAccessRights:     code.PermissionDenied,
	ldap.LDAPResultBusy:                         code.Unavailable,
	ldap.LDAPResultUnavailable:                  code.Unavailable,
	ldap.LDAPResultUnwillingToPerform:           code.Unsupported,
	ldap.LDAPResultLoopDetect:                   code.Conflict,
	ldap.LDAPResultNamingViolation:              code.Invalid,
	ldap.LDAPResultObjectClassViolation:         code.PreconditionFailed,
	ldap.LDAPResultNotAllowedOnNonLeaf:          code.PreconditionFailed,
	ldap.LDAPResultNotAllowedOnRDN:              code.PreconditionFailed,
	ldap.LDAPResultEntryAlreadyExists:           code.AlreadyExists,
	ldap.LDAPResultObjectClassModsProhibited:    code.PreconditionFailed,
	ldap.LDAPResultResultsTooLarge:              code.QuotaExceeded,
	ldap.LDAPResultServerDown:                   code.Unavailable,
	ldap.LDAPResultTimeout:                      code.Timeout,
	ldap.LDAPResultFilterError:                  code.Invalid,
	ldap.LDAPResultUserCanceled:                 code.Canceled,
	ldap.LDAPResultParamError:                   code.Invalid,
	ldap.LDAPResultNoMemory:                     code.QuotaExceeded,
	ldap.LDAPResultConnectError:                 code.Unavailable,
	ldap.LDAPResultNotSupported:                 code.Unsupported,
	ldap.LDAPResultCanceled:                     code.Canceled,
	ldap.LDAPResultAssertionFailed:              code.PreconditionFailed,
	ldap.LDAPResultAuthorizationDenied:          code.PermissionDenied,
	ldap.ErrorNetwork:                           code.Unavailable,
	ldap.ErrorFilterCompile:                     code.Invalid,
	ldap.ErrorFilterDecompile:                   code.Invalid,
	ldap.ErrorUnexpectedMessage:                 code.DependencyFailed,
	ldap.ErrorUnexpectedResponse:                code.DependencyFailed,
	ldap.ErrorEmptyPassword:                     code.Invalid,
}

// Classify maps an LDAP result code to a code.Code. Unknown codes are
// code.Internal.
func Classify(n int) code.Code {
	if c, ok := classes[n]; ok {
		return c
	}
	return code.Internal
}

// Message returns the standard description of an LDAP result code.
func Message(n int) string {
	if n < 0 || n > 0xffff {
		return "Unknown error"
	}
	if s, ok := ldap.LDAPResultCodeMap[uint16(n)]; ok {
		return s
	}
	return "Unknown error"
}
