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

package safecall

import (
	"errors"
	"io/fs"
	"testing"

	"dirpx.dev/safecall/code"
)

func TestWrap_OneLeafPerDomain(t *testing.T) {
	tests := []struct {
		domain Domain
		match  func(error) bool
	}{
		{Filesystem, func(err error) bool { var l *FilesystemError; return errors.As(err, &l) }},
		{Stream, func(err error) bool { var l *StreamError; return errors.As(err, &l) }},
		{Network, func(err error) bool { var l *NetworkError; return errors.As(err, &l) }},
		{Image, func(err error) bool { var l *ImageError; return errors.As(err, &l) }},
		{Directory, func(err error) bool { var l *DirectoryError; return errors.As(err, &l) }},
		{Database, func(err error) bool { var l *DatabaseError; return errors.As(err, &l) }},
		{SQL, func(err error) bool { var l *SQLError; return errors.As(err, &l) }},
		{AsyncIO, func(err error) bool { var l *AsyncIOError; return errors.As(err, &l) }},
		{Document, func(err error) bool { var l *DocumentError; return errors.As(err, &l) }},
	}
	if len(tests) != len(Domains()) {
		t.Fatalf("table covers %d domains, want %d", len(tests), len(Domains()))
	}

	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			err := Wrap(E(code.Internal, "x", WithOpOption(tt.domain, "op")))
			matched := 0
			for _, other := range tests {
				if other.match(err) {
					matched++
					if other.domain != tt.domain {
						t.Fatalf("error for %q matched leaf of %q", tt.domain, other.domain)
					}
				}
			}
			if matched != 1 {
				t.Fatalf("matched %d leaves, want 1", matched)
			}

			e, ok := AsError(err)
			if !ok || e.Domain != tt.domain {
				t.Fatalf("AsError = %v, %v", e, ok)
			}
			d, ok := DomainOf(err)
			if !ok || d != tt.domain {
				t.Fatalf("DomainOf = %q, %v", d, ok)
			}
			if err.Error() != e.Error() {
				t.Fatalf("leaf must render as its record: %q vs %q", err.Error(), e.Error())
			}
		})
	}
}

func TestWrap_CauseReachableThroughLeaf(t *testing.T) {
	err := Wrap(E(code.NotFound, "gone",
		WithOpOption(Filesystem, "unlink"),
		WithCauseOption(fs.ErrNotExist),
	))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("cause must be reachable through the leaf")
	}
}

func TestWrap_UnknownDomainAndNil(t *testing.T) {
	e := E(code.Internal, "x")
	if Wrap(e) != error(e) {
		t.Fatal("error without domain must be returned as is")
	}
	if Wrap(nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
	if _, ok := DomainOf(e); ok {
		t.Fatal("DomainOf must report false for an untagged error")
	}
	if _, ok := DomainOf(errors.New("plain")); ok {
		t.Fatal("DomainOf must report false for foreign errors")
	}
}
