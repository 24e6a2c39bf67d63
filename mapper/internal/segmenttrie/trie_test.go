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

import "testing"

func TestInsertAndMatch_Simple(t *testing.T) {
	tr := New[int]()
	must(t, tr.Insert("network", 502))
	must(t, tr.Insert("network.exec", 504))
	must(t, tr.Insert("database.query.sqlstate", 409))

	tests := []struct {
		reason  string
		want    int
		pattern string
	}{
		{"network.exec", 504, "network.exec"},
		{"network.setopt", 502, "network"},
		{"database.query.sqlstate.c23505", 409, "database.query.sqlstate"},
	}
	for _, tt := range tests {
		v, ok, p := tr.MatchWithPattern(tt.reason)
		if !ok || v != tt.want || p != tt.pattern {
			t.Fatalf("match %q => ok=%v v=%v p=%q; want %v %q", tt.reason, ok, v, p, tt.want, tt.pattern)
		}
	}
	if _, ok := tr.Match("filesystem.chmod"); ok {
		t.Fatalf("unrelated reason must not match")
	}
	if _, ok := tr.Match("networking.exec"); ok {
		t.Fatalf("prefix must not match inside a segment")
	}
}

func TestWildcard_OneSegment(t *testing.T) {
	tr := New[int]()
	must(t, tr.Insert("database.*.connect", 503))
	must(t, tr.Insert("database.pg.connect", 502))

	if v, ok, p := tr.MatchWithPattern("database.pg.connect"); !ok || v != 502 || p != "database.pg.connect" {
		t.Fatalf("exact must win over wildcard, got ok=%v v=%v p=%q", ok, v, p)
	}
	if v, ok, p := tr.MatchWithPattern("database.oci.connect.tls"); !ok || v != 503 || p != "database.*.connect" {
		t.Fatalf("wildcard match failed: ok=%v v=%v p=%q", ok, v, p)
	}
	if _, ok := tr.Match("database.connect"); ok {
		t.Fatalf("wildcard must not match zero segments")
	}
}

func TestLPM_PrefersDeeperWildcardPath(t *testing.T) {
	tr := New[int]()
	must(t, tr.Insert("a.*.c", 7))
	must(t, tr.Insert("a.b", 1))

	if v, ok, p := tr.MatchWithPattern("a.b.c"); !ok || v != 7 || p != "a.*.c" {
		t.Fatalf("LPM must choose wildcard path: ok=%v v=%v p=%q", ok, v, p)
	}
}

func TestInsert_ReplacesValue(t *testing.T) {
	tr := New[int]()
	must(t, tr.Insert("stream.read", 1))
	must(t, tr.Insert("stream.read", 2))
	if v, _ := tr.Match("stream.read"); v != 2 {
		t.Fatalf("second insert must win, got %d", v)
	}
}

func TestInvalidInputs(t *testing.T) {
	tr := New[int]()
	for _, p := range []string{"", "UPPER.case", "a..b", "*", "*.*", "a.", "1a"} {
		if err := tr.Insert(p, 1); err == nil {
			t.Fatalf("Insert(%q) must fail", p)
		}
	}
	var nilTrie *Trie[int]
	if err := nilTrie.Insert("a", 1); err == nil {
		t.Fatalf("insert on nil trie must fail")
	}
	if _, ok := nilTrie.Match("a"); ok {
		t.Fatalf("match on nil trie must fail")
	}

	must(t, tr.Insert("upper", 1))
	for _, r := range []string{"UPPER.case", "a..b", ""} {
		if _, ok := tr.Match(r); ok {
			t.Fatalf("Match(%q) must be false", r)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
