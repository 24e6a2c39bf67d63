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

// ViewProvider is implemented by errors that can render their own
// client-facing view.
type ViewProvider interface {
	error

	ErrorView() ErrorView
}

// ErrorView is the client-facing shape of an error. It holds only what is
// safe to send over the wire.
type ErrorView struct {
	// Code is the canonical code, e.g. "not_found".
	Code string `json:"code"`

	// Reason is "<domain>.<operation>".
	Reason string `json:"reason,omitempty"`

	// Domain is the subsystem tag.
	Domain string `json:"domain,omitempty"`

	// Message is the human-readable message.
	Message string `json:"message,omitempty"`

	// Details are the error's details, sorted by key.
	Details []Detail `json:"details,omitempty"`
}
