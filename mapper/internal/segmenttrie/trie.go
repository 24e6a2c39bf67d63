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

package segmenttrie

import (
	"errors"
	"strings"
)

// Wildcard matches exactly one segment.
const Wildcard = "*"

// Trie indexes dot-separated reason prefixes such as "network.exec" or
// "database.*.connect" and answers longest-prefix-match queries on segment
// boundaries. When an exact segment and the wildcard lead to equally deep
// matches, the exact one wins.
//
// A Trie is built once and then only read; reads are safe for concurrent use.
type Trie[T any] struct {
	children map[string]*Trie[T]
	hasVal   bool
	val      T
	// pattern is the prefix as inserted, kept for Explain.
	pattern string
}

// ErrInvalidPrefix is returned by Insert for empty prefixes, empty or
// malformed segments, and prefixes made only of wildcards.
var ErrInvalidPrefix = errors.New("segmenttrie: invalid prefix")

// New returns an empty trie.
func New[T any]() *Trie[T] {
	return &Trie[T]{children: make(map[string]*Trie[T])}
}

// Insert associates val with prefix. Inserting the same prefix twice keeps
// the last value.
func (t *Trie[T]) Insert(prefix string, val T) error {
	if t == nil || prefix == "" {
		return ErrInvalidPrefix
	}
	segs := strings.Split(prefix, ".")
	concrete := false
	for _, s := range segs {
		if s == Wildcard {
			continue
		}
		if !validSegment(s) {
			return ErrInvalidPrefix
		}
		concrete = true
	}
	if !concrete {
		return ErrInvalidPrefix
	}

	cur := t
	for _, s := range segs {
		next, ok := cur.children[s]
		if !ok {
			next = New[T]()
			cur.children[s] = next
		}
		cur = next
	}
	cur.hasVal = true
	cur.val = val
	cur.pattern = prefix
	return nil
}

// Match returns the value of the deepest prefix of reason.
func (t *Trie[T]) Match(reason string) (T, bool) {
	v, ok, _ := t.MatchWithPattern(reason)
	return v, ok
}

// MatchWithPattern is Match that also returns the matching prefix as it was
// inserted. Lookups do not allocate.
func (t *Trie[T]) MatchWithPattern(reason string) (T, bool, string) {
	var zero T
	if t == nil {
		return zero, false, ""
	}
	best, _ := t.deepest(reason, 0, 0, nil, -1)
	if best == nil {
		return zero, false, ""
	}
	return best.val, true, best.pattern
}

// deepest walks every branch reason can follow from t and returns the
// deepest node carrying a value. Exact children are tried before the
// wildcard, and only a strictly deeper match replaces the current best.
func (t *Trie[T]) deepest(reason string, off, depth int, best *Trie[T], bestDepth int) (*Trie[T], int) {
	if t.hasVal && depth > bestDepth {
		best, bestDepth = t, depth
	}
	if off >= len(reason) {
		return best, bestDepth
	}
	seg, next, ok := segmentAt(reason, off)
	if !ok {
		return best, bestDepth
	}
	if child, found := t.children[seg]; found {
		best, bestDepth = child.deepest(reason, next, depth+1, best, bestDepth)
	}
	if child, found := t.children[Wildcard]; found {
		best, bestDepth = child.deepest(reason, next, depth+1, best, bestDepth)
	}
	return best, bestDepth
}

// segmentAt returns the segment starting at off and the offset of the
// segment after it. ok is false when the segment is malformed.
func segmentAt(s string, off int) (seg string, next int, ok bool) {
	end := strings.IndexByte(s[off:], '.')
	if end < 0 {
		end = len(s)
	} else {
		end += off
	}
	seg = s[off:end]
	if !validSegment(seg) {
		return "", 0, false
	}
	if end < len(s) {
		end++
	}
	return seg, end, true
}

// validSegment reports whether seg matches [a-z][a-z0-9_]*.
func validSegment(seg string) bool {
	if seg == "" || seg[0] < 'a' || seg[0] > 'z' {
		return false
	}
	for i := 1; i < len(seg); i++ {
		c := seg[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}
