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

package mapper

import (
	"google.golang.org/grpc/codes"

	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
)

// Option configures a Mapper at build time. Invalid arguments are collected
// and reported by New.
type Option func(*builder)

// WithHTTPDefault replaces the default HTTP status for c.
func WithHTTPDefault(c code.Code, status int) Option {
	return func(b *builder) {
		if b.checkCode(c) && b.checkHTTP(c, status) {
			b.http.defaults[c] = status
		}
	}
}

// WithGRPCDefault replaces the default gRPC code for c.
func WithGRPCDefault(c code.Code, grpc codes.Code) Option {
	return func(b *builder) {
		if b.checkCode(c) && b.checkGRPC(c, grpc) {
			b.grpc.defaults[c] = grpc
		}
	}
}

// WithDefault replaces both default statuses for c.
func WithDefault(c code.Code, st apis.Status) Option {
	return func(b *builder) { b.setStatus(c, st, b.http.defaults, b.grpc.defaults) }
}

// WithHTTPOverride forces the HTTP status for c regardless of reason.
// Overrides win over prefix rules and defaults.
func WithHTTPOverride(c code.Code, status int) Option {
	return func(b *builder) {
		if b.checkCode(c) && b.checkHTTP(c, status) {
			b.http.override[c] = status
		}
	}
}

// WithGRPCOverride forces the gRPC code for c regardless of reason.
func WithGRPCOverride(c code.Code, grpc codes.Code) Option {
	return func(b *builder) {
		if b.checkCode(c) && b.checkGRPC(c, grpc) {
			b.grpc.override[c] = grpc
		}
	}
}

// WithOverride forces both statuses for c.
func WithOverride(c code.Code, st apis.Status) Option {
	return func(b *builder) { b.setStatus(c, st, b.http.override, b.grpc.override) }
}

// WithHTTPPrefix maps errors with code c whose reason starts with prefix
// to status. The deepest matching prefix wins; "*" matches one segment:
//
//	WithHTTPPrefix(code.Timeout, "network.exec", 504)
//	WithHTTPPrefix(code.Unavailable, "database.*", 502)
func WithHTTPPrefix(c code.Code, prefix string, status int) Option {
	return func(b *builder) {
		if b.checkCode(c) && b.checkHTTP(c, status) {
			b.http.prefixes[c] = append(b.http.prefixes[c], prefixRule[int]{prefix, status})
		}
	}
}

// WithGRPCPrefix is WithHTTPPrefix for gRPC.
func WithGRPCPrefix(c code.Code, prefix string, grpc codes.Code) Option {
	return func(b *builder) {
		if b.checkCode(c) && b.checkGRPC(c, grpc) {
			b.grpc.prefixes[c] = append(b.grpc.prefixes[c], prefixRule[codes.Code]{prefix, grpc})
		}
	}
}

// WithPrefix registers the same prefix for both transports.
func WithPrefix(c code.Code, prefix string, st apis.Status) Option {
	return func(b *builder) {
		WithHTTPPrefix(c, prefix, st.HTTP)(b)
		WithGRPCPrefix(c, prefix, st.GRPC)(b)
	}
}

// WithFallback replaces the statuses used for codes without any rule.
func WithFallback(st apis.Status) Option {
	return func(b *builder) {
		if b.checkHTTP(code.Internal, st.HTTP) && b.checkGRPC(code.Internal, st.GRPC) {
			b.http.fallback = st.HTTP
			b.grpc.fallback = st.GRPC
		}
	}
}
