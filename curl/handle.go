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
	"net/http"
	"time"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

// Option identifies a transfer setting for Setopt.
type Option int

const (
	OptURL            Option = 10002
	OptCustomRequest  Option = 10036
	OptHTTPHeader     Option = 10023
	OptPostFields     Option = 10015
	OptUserAgent      Option = 10018
	OptTimeout        Option = 13
	OptFollowLocation Option = 52
	OptFailOnError    Option = 45
	OptMaxRedirs      Option = 68
)

// InfoKey identifies a transfer property for Getinfo.
type InfoKey int

const (
	InfoEffectiveURL InfoKey = iota + 1
	InfoResponseCode
	InfoContentType
	InfoTotalTime
	InfoRedirectCount
	InfoSizeDownload
)

// Info describes the last completed transfer.
type Info struct {
	EffectiveURL  string
	ResponseCode  int
	ContentType   string
	TotalTime     time.Duration
	RedirectCount int
	SizeDownload  int64
}

// Defaults are the settings a handle starts with and returns to on Reset.
// A MaxRedirects of zero or less means 20; Setopt(OptMaxRedirs, 0) limits
// a single handle to no redirects.
type Defaults struct {
	Timeout         time.Duration
	UserAgent       string
	FollowRedirects bool
	MaxRedirects    int
}

// settings is the mutable transfer configuration of a handle.
type settings struct {
	url         string
	method      string
	header      http.Header
	body        []byte
	hasBody     bool
	userAgent   string
	timeout     time.Duration
	follow      bool
	failOnError bool
	maxRedirs   int
}

func (d Defaults) settings() settings {
	maxRedirs := d.MaxRedirects
	if maxRedirs <= 0 {
		maxRedirs = 20
	}
	return settings{
		header:    make(http.Header),
		userAgent: d.UserAgent,
		timeout:   d.Timeout,
		follow:    d.FollowRedirects,
		maxRedirs: maxRedirs,
	}
}

// Handle is a transfer handle. Failures of calls on a handle are recorded
// in the handle's own error cell, read back by Errno and Error.
//
// Calls on one handle are serialized.
type Handle struct {
	cell lasterr.Cell

	env      *call.Env
	client   *http.Client
	defaults Defaults
	set      settings
	info     Info
	closed   bool
}

// InitOption configures Init.
type InitOption func(*Handle)

// WithEnv runs the handle's wrapped calls in env.
func WithEnv(env *call.Env) InitOption {
	return func(h *Handle) { h.env = env }
}

// WithClient sends transfers through c instead of a fresh client.
func WithClient(c *http.Client) InitOption {
	return func(h *Handle) {
		if c != nil {
			h.client = c
		}
	}
}

// WithDefaults sets the handle's initial settings.
func WithDefaults(d Defaults) InitOption {
	return func(h *Handle) { h.defaults = d }
}

func newHandle(opts []InitOption) *Handle {
	h := &Handle{client: &http.Client{}}
	for _, opt := range opts {
		opt(h)
	}
	h.set = h.defaults.settings()
	return h
}

// Errno returns the result code of the last call on h, 0 after a success.
func (h *Handle) Errno() int { return h.cell.Number() }

// Error returns the message of the last call on h, "" after a success.
func (h *Handle) Error() string { return h.cell.Message() }

// Info returns the properties of the last completed transfer.
func (h *Handle) Info() Info { return h.info }
