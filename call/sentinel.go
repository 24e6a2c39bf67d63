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

// Sentinel reports whether a native result means "failed".
//
// Each binding supplies its own predicate. A binding whose legitimate
// results can look like the failure value combines the predicate with a
// secondary signal inside the native closure (see stream.Read).
type Sentinel[T any] func(T) bool

// False treats false as failure.
var False Sentinel[bool] = func(ok bool) bool { return !ok }

// Nil treats a nil pointer as failure.
func Nil[T any]() Sentinel[*T] {
	return func(p *T) bool { return p == nil }
}

// NilSlice treats a nil slice as failure. An empty, non-nil slice is a
// legitimate result.
func NilSlice[T any]() Sentinel[[]T] {
	return func(s []T) bool { return s == nil }
}

// NilMap treats a nil map as failure. An empty, non-nil map is a
// legitimate result.
func NilMap[K comparable, V any]() Sentinel[map[K]V] {
	return func(m map[K]V) bool { return m == nil }
}

// NilValue treats a nil interface value as failure. Use it for natives that
// return opaque handles typed as interfaces.
func NilValue[T any]() Sentinel[T] {
	return func(v T) bool { return any(v) == nil }
}

// Number is the set of types Negative accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Negative treats any value below zero as failure. Zero is legitimate.
func Negative[N Number]() Sentinel[N] {
	return func(n N) bool { return n < 0 }
}

// Equal treats exactly v as failure.
func Equal[T comparable](v T) Sentinel[T] {
	return func(got T) bool { return got == v }
}

// Zero treats the zero value of T as failure.
func Zero[T comparable]() Sentinel[T] {
	var zero T
	return Equal(zero)
}

// Any fails when at least one of preds fails.
func Any[T any](preds ...Sentinel[T]) Sentinel[T] {
	return func(v T) bool {
		for _, p := range preds {
			if p(v) {
				return true
			}
		}
		return false
	}
}
