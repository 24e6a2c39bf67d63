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

package curl

import "dirpx.dev/safecall/code"

// Result codes recorded by failed transfers. The numbers are libcurl's.
const (
	EOK                  = 0
	EUnsupportedProtocol = 1
	EURLMalformat        = 3
	ECouldntResolveHost  = 6
	ECouldntConnect      = 7
	EHTTPReturnedError   = 22
	EOperationTimedout   = 28
	EAbortedByCallback   = 42
	EBadFunctionArgument = 43
	ETooManyRedirects    = 47
	EUnknownOption       = 48
	ERecvError           = 56
)

var classes = map[int]code.Code{
	EUnsupportedProtocol: code.Unsupported,
	EURLMalformat:        code.Invalid,
	ECouldntResolveHost:  code.Unavailable,
	ECouldntConnect:      code.Unavailable,
	EHTTPReturnedError:   code.DependencyFailed,
	EOperationTimedout:   code.Timeout,
	EAbortedByCallback:   code.Canceled,
	EBadFunctionArgument: code.Invalid,
	ETooManyRedirects:    code.DependencyFailed,
	EUnknownOption:       code.Invalid,
	ERecvError:           code.IOFailure,
}

// Classify maps a curl result code to a code.Code. Unknown codes are
// code.Internal.
func Classify(n int) code.Code {
	if c, ok := classes[n]; ok {
		return c
	}
	return code.Internal
}

var strerror = map[int]string{
	EOK:                  "No error",
	EUnsupportedProtocol: "Unsupported protocol",
	EURLMalformat:        "URL using bad/illegal format or missing URL",
	ECouldntResolveHost:  "Couldn't resolve host name",
	ECouldntConnect:      "Couldn't connect to server",
	EHTTPReturnedError:   "HTTP response code said error",
	EOperationTimedout:   "Timeout was reached",
	EAbortedByCallback:   "Operation was aborted by an application callback",
	EBadFunctionArgument: "A libcurl function was given a bad argument",
	ETooManyRedirects:    "Number of redirects hit maximum amount",
	EUnknownOption:       "An unknown option was passed in to libcurl",
	ERecvError:           "Failure when receiving data from the peer",
}

// Strerror returns the generic text for a result code.
func Strerror(n int) string {
	if s, ok := strerror[n]; ok {
		return s
	}
	return "Unknown error"
}
