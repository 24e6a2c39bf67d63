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
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"

	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/mapper/internal/segmenttrie"
	"dirpx.dev/safecall/reason"
)

// New builds an immutable apis.Mapper.
//
// Library defaults are seeded first, then opts are applied in order, then
// every prefix rule is normalized and compiled into a per-code segment
// trie. The result shares no storage with the options or with other
// mappers.
func New(opts ...Option) (apis.Mapper, error) {
	b := newBuilder()
	for _, opt := range opts {
		opt(b)
	}
	if err := b.err(); err != nil {
		return nil, err
	}

	httpTable, err := compile("HTTP", b.http)
	if err != nil {
		return nil, err
	}
	grpcTable, err := compile("gRPC", b.grpc)
	if err != nil {
		return nil, err
	}
	return &mapper{http: httpTable, grpc: grpcTable}, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) apis.Mapper {
	m, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// source names the tier that resolved a status.
type source string

const (
	sourceOverride source = "override"
	sourcePrefix   source = "prefix"
	sourceDefault  source = "default"
	sourceFallback source = "fallback"
)

// table holds the compiled rules of one transport.
type table[V any] struct {
	def      map[code.Code]V
	override map[code.Code]V
	trie     map[code.Code]*segmenttrie.Trie[V]
	fallback V
}

// resolve applies override > prefix > default > fallback.
func (t table[V]) resolve(c code.Code, r reason.Reason) (V, source, string) {
	if v, ok := t.override[c]; ok {
		return v, sourceOverride, ""
	}
	if tr := t.trie[c]; tr != nil {
		if v, ok, pat := tr.MatchWithPattern(string(r)); ok {
			return v, sourcePrefix, pat
		}
	}
	if v, ok := t.def[c]; ok {
		return v, sourceDefault, ""
	}
	return t.fallback, sourceFallback, ""
}

type mapper struct {
	http table[int]
	grpc table[codes.Code]
}

// HTTPStatus resolves the HTTP status for (c, r).
func (m *mapper) HTTPStatus(c code.Code, r reason.Reason) int {
	v, _, _ := m.http.resolve(c, r)
	return v
}

// GRPCStatus resolves the gRPC code for (c, r).
func (m *mapper) GRPCStatus(c code.Code, r reason.Reason) codes.Code {
	v, _, _ := m.grpc.resolve(c, r)
	return v
}

// Status resolves both transports.
func (m *mapper) Status(c code.Code, r reason.Reason) apis.Status {
	return apis.Status{HTTP: m.HTTPStatus(c, r), GRPC: m.GRPCStatus(c, r)}
}

// Explain traces how (c, r) was resolved:
//
//	code="timeout" reason="network.exec"
//	http: source=prefix pattern="network.exec" -> 504
//	grpc: source=default -> DEADLINE_EXCEEDED(4)
func (m *mapper) Explain(c code.Code, r reason.Reason) string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "code=%q reason=%q\n", c, r)

	hv, hs, hp := m.http.resolve(c, r)
	_, _ = fmt.Fprintf(&b, "http: %s -> %d\n", describe(hs, hp), hv)

	gv, gs, gp := m.grpc.resolve(c, r)
	_, _ = fmt.Fprintf(&b, "grpc: %s -> %s(%d)", describe(gs, gp), GRPCName(gv), int(gv))
	return b.String()
}

func describe(s source, pattern string) string {
	if s == sourcePrefix {
		return fmt.Sprintf("source=%s pattern=%q", s, pattern)
	}
	return "source=" + string(s)
}
