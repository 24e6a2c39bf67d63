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

package apis

// ErrorDescriptor is a flat description of an error together with its
// resolved transport statuses, for structured logs and message buses.
//
// Fields are plain strings and ints so the descriptor can be marshalled
// without the code and reason value types.
type ErrorDescriptor struct {
	// Code is the canonical code, e.g. "not_found".
	Code string `json:"code"`

	// Reason is "<domain>.<operation>", e.g. "filesystem.chmod".
	Reason string `json:"reason,omitempty"`

	// Domain is the subsystem tag, e.g. "filesystem".
	Domain string `json:"domain,omitempty"`

	// Errno is the native error number, 0 when none was reported.
	Errno int `json:"errno,omitempty"`

	// HTTPStatus is the resolved HTTP status, 0 when unresolved.
	HTTPStatus int `json:"http_status,omitempty"`

	// GRPCCode is the resolved gRPC code as an integer, 0 when unresolved.
	GRPCCode int `json:"grpc_code,omitempty"`

	// Message is the message read from the last-error source.
	Message string `json:"message,omitempty"`
}
