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

package call

import (
	"fmt"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/code"
)

// Opt is an optional argument that remembers whether the caller supplied
// it. The zero value is "not supplied".
type Opt[T any] struct {
	v  T
	ok bool
}

// Some marks v as supplied.
func Some[T any](v T) Opt[T] {
	return Opt[T]{v: v, ok: true}
}

// Get returns the value and whether it was supplied.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

// Supplied reports whether the caller supplied the argument.
func (o Opt[T]) Supplied() bool { return o.ok }

// Or returns the supplied value, or def. Only native layers use it, to
// apply their own default.
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Arity returns how many leading optional arguments were supplied.
//
// Natives take optional arguments positionally, so an argument cannot be
// supplied after an omitted one; that is reported as a code.Invalid error in
// op's domain, before the native is ever called.
func Arity(op Op, supplied ...bool) (int, error) {
	n := 0
	for n < len(supplied) && supplied[n] {
		n++
	}
	for i := n; i < len(supplied); i++ {
		if supplied[i] {
			return 0, argumentGap(op, n, i)
		}
	}
	return n, nil
}

// Tail returns exactly the supplied leading values of opts, ready to be
// spread into a variadic native: Tail(op) and Tail(op, Opt[T]{}) both
// yield an empty tail, Tail(op, Some(1), Some(2)) yields [1 2].
func Tail[T any](op Op, opts ...Opt[T]) ([]T, error) {
	flags := make([]bool, len(opts))
	for i, o := range opts {
		flags[i] = o.ok
	}
	n, err := Arity(op, flags...)
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		out[i] = opts[i].v
	}
	return out, nil
}

func argumentGap(op Op, omitted, supplied int) error {
	return safecall.Wrap(safecall.E(code.Invalid,
		fmt.Sprintf("%s: optional argument %d supplied after omitted argument %d", op, supplied+1, omitted+1),
		safecall.WithReasonOption(op.Reason()),
		safecall.WithOpOption(op.Domain, op.Name),
		safecall.WithDetailOption("argument", supplied+1),
	))
}
