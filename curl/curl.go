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

import (
	"context"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opInit    = call.MustOp(safecall.Network, "curl_init")
	opSetopt  = call.MustOp(safecall.Network, "curl_setopt")
	opExec    = call.MustOp(safecall.Network, "curl_exec")
	opGetinfo = call.MustOp(safecall.Network, "curl_getinfo")
	opClose   = call.MustOp(safecall.Network, "curl_close")
)

// Init creates a transfer handle, optionally preset to url.
func Init(url call.Opt[string], opts ...InitOption) (*Handle, error) {
	h := newHandle(opts)
	raw, has := url.Get()
	return call.Ambient(h.env, opInit, call.Nil[Handle](), func() *Handle {
		return h.init(h.env.Register(), raw, has)
	})
}

// Setopt sets one transfer option. The value's type must match the
// option: string for URLs, methods and the user agent, []string for
// headers, string or []byte for the request body, bool for flags,
// time.Duration or whole seconds for the timeout.
func (h *Handle) Setopt(opt Option, value any) error {
	return call.HandleBool(h.env, &h.cell, opSetopt, func() bool { return h.setopt(opt, value) })
}

// Exec performs the transfer and returns the response body. With
// OptFailOnError set, HTTP statuses of 400 and above fail with
// EHTTPReturnedError.
func (h *Handle) Exec(ctx context.Context) ([]byte, error) {
	return call.Handle(h.env, &h.cell, opExec, call.NilSlice[byte](), func() []byte { return h.exec(ctx) })
}

// Getinfo returns one property of the last transfer.
func (h *Handle) Getinfo(key InfoKey) (any, error) {
	return call.Handle(h.env, &h.cell, opGetinfo, call.NilValue[any](), func() any { return h.getinfo(key) })
}

// Reset returns every option to the handle's defaults and forgets the
// last transfer. The recorded error is kept.
func (h *Handle) Reset() {
	h.cell.Lock()
	defer h.cell.Unlock()
	h.reset()
}

// Close releases the handle. Calls on a closed handle fail with
// code.BadHandle.
func (h *Handle) Close() error {
	return call.HandleBool(h.env, &h.cell, opClose, func() bool { return h.close() })
}
