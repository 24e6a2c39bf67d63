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

package ps

import (
	"bufio"
	"bytes"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"dirpx.dev/safecall/call"
)

// Scope is where a document is in its lifecycle. Each operation is
// allowed in some scopes only.
type Scope int

const (
	ScopeObject Scope = iota
	ScopeDocument
	ScopePage
	ScopePath
	ScopeClosed
)

var scopeNames = [...]string{"object", "document", "page", "path", "closed"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}

// ColorSpace selects how SetColor interprets its components.
type ColorSpace string

const (
	Gray ColorSpace = "gray"
	RGB  ColorSpace = "rgb"
	CMYK ColorSpace = "cmyk"
)

// ColorTarget selects which color SetColor changes.
type ColorTarget string

const (
	FillColor   ColorTarget = "fill"
	StrokeColor ColorTarget = "stroke"
	BothColors  ColorTarget = "both"
)

type font struct {
	name string
}

type color struct {
	space ColorSpace
	c     [4]float64
}

// Document is a PostScript document being written.
type Document struct {
	env *call.Env
	fs  billy.Filesystem

	scope  Scope
	out    *bufio.Writer
	closer io.Closer
	mem    *bytes.Buffer

	info   map[string]string
	pages  int
	fonts  []font
	font   int
	size   float64
	fill   color
	stroke color
	saves  int
}

// Option configures a Document.
type Option func(*Document)

// WithEnv runs the document's wrapped calls in env.
func WithEnv(env *call.Env) Option {
	return func(d *Document) { d.env = env }
}

// WithFilesystem makes OpenFile create files in fs instead of the host
// filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(d *Document) { d.fs = fs }
}

// Scope returns the document's current scope.
func (d *Document) Scope() Scope { return d.scope }

// Pages returns the number of pages begun so far.
func (d *Document) Pages() int { return d.pages }

func newDocument(opts []Option) *Document {
	d := &Document{info: map[string]string{}}
	for _, opt := range opts {
		opt(d)
	}
	if d.fs == nil {
		d.fs = osfs.New("/")
	}
	return d
}
