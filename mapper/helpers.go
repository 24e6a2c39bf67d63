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
	"maps"
	"strings"

	"google.golang.org/grpc/codes"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/mapper/internal/segmenttrie"
	"dirpx.dev/safecall/reason"
)

// freeze copies m so the mapper never shares storage with the builder.
// Empty maps become nil.
func freeze[K comparable, V any](m map[K]V) map[K]V {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

// compile turns one side of the builder into an immutable table.
func compile[V any](transport string, s side[V]) (table[V], error) {
	tries := make(map[code.Code]*segmenttrie.Trie[V], len(s.prefixes))
	for c, rules := range s.prefixes {
		if len(rules) == 0 {
			continue
		}
		t := segmenttrie.New[V]()
		for _, r := range rules {
			p, err := normalizePrefix(r.prefix)
			if err != nil {
				return table[V]{}, fmt.Errorf("mapper: invalid %s reason-prefix %q for code %q: %w", transport, r.prefix, c, err)
			}
			if err := t.Insert(p, r.val); err != nil {
				return table[V]{}, fmt.Errorf("mapper: cannot insert %s prefix %q for code %q: %w", transport, p, c, err)
			}
		}
		tries[c] = t
	}
	return table[V]{
		def:      freeze(s.defaults),
		override: freeze(s.override),
		trie:     freeze(tries),
		fallback: s.fallback,
	}, nil
}

// normalizePrefix canonicalizes a reason prefix. "*" is accepted as a
// single-segment wildcard, but a prefix needs at least one concrete segment.
func normalizePrefix(raw string) (string, error) {
	p := reason.Normalize(raw)
	if p == "" {
		return "", fmt.Errorf("empty prefix")
	}
	concrete := false
	for _, seg := range strings.Split(p, ".") {
		if seg == segmenttrie.Wildcard {
			continue
		}
		if _, err := reason.Join(seg); err != nil {
			return "", fmt.Errorf("invalid segment %q", seg)
		}
		concrete = true
	}
	if !concrete {
		return "", fmt.Errorf("prefix cannot consist of '*' only")
	}
	return p, nil
}

// GRPCName renders c in the canonical upper-snake form used by the gRPC
// status names: codes.DeadlineExceeded -> "DEADLINE_EXCEEDED".
func GRPCName(c codes.Code) string {
	s := c.String()
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if i > 0 && ch >= 'A' && ch <= 'Z' && s[i-1] >= 'a' && s[i-1] <= 'z' {
			b.WriteByte('_')
		}
		b.WriteByte(ch)
	}
	return strings.ToUpper(b.String())
}

// ParseGRPCCode accepts a code name ("NOT_FOUND", "not-found",
// "DeadlineExceeded") or its number ("5").
func ParseGRPCCode(s string) (codes.Code, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "CANCELLED") {
		return codes.Canceled, nil
	}
	for c := codes.OK; c <= codes.Unauthenticated; c++ {
		if s == fmt.Sprint(uint32(c)) {
			return c, nil
		}
		name := GRPCName(c)
		norm := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
		if norm == name || strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return codes.Unknown, fmt.Errorf("mapper: unknown gRPC code %q", s)
}
