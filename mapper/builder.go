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
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"

	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
)

type prefixRule[V any] struct {
	// prefix is the raw reason prefix; it is normalized when compiled.
	prefix string
	val    V
}

// side collects the rules for one transport before New compiles them.
type side[V any] struct {
	defaults map[code.Code]V
	override map[code.Code]V
	prefixes map[code.Code][]prefixRule[V]
	fallback V
}

func newSide[V any](fallback V) side[V] {
	return side[V]{
		defaults: make(map[code.Code]V, len(defaults)),
		override: make(map[code.Code]V),
		prefixes: make(map[code.Code][]prefixRule[V]),
		fallback: fallback,
	}
}

type builder struct {
	http side[int]
	grpc side[codes.Code]
	errs []error
}

func newBuilder() *builder {
	b := &builder{
		http: newSide(fallback.HTTP),
		grpc: newSide(fallback.GRPC),
	}
	for c, st := range defaults {
		b.http.defaults[c] = st.HTTP
		b.grpc.defaults[c] = st.GRPC
	}
	return b
}

func (b *builder) checkCode(c code.Code) bool {
	if err := code.Validate(c); err != nil {
		b.errs = append(b.errs, fmt.Errorf("mapper: code %q: %w", c, err))
		return false
	}
	return true
}

func (b *builder) checkHTTP(c code.Code, v int) bool {
	if v < 100 || v > 599 {
		b.errs = append(b.errs, fmt.Errorf("mapper: HTTP status %d for code %q out of range", v, c))
		return false
	}
	return true
}

func (b *builder) checkGRPC(c code.Code, v codes.Code) bool {
	if v > codes.Unauthenticated {
		b.errs = append(b.errs, fmt.Errorf("mapper: gRPC code %d for code %q out of range", v, c))
		return false
	}
	return true
}

func (b *builder) setStatus(c code.Code, st apis.Status, http map[code.Code]int, grpc map[code.Code]codes.Code) {
	if b.checkCode(c) && b.checkHTTP(c, st.HTTP) && b.checkGRPC(c, st.GRPC) {
		http[c] = st.HTTP
		grpc[c] = st.GRPC
	}
}

func (b *builder) err() error {
	return errors.Join(b.errs...)
}
