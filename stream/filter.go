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

package stream

import (
	"io"
	"slices"

	"github.com/klauspost/compress/zlib"
)

// FilterMode selects the directions a filter applies to.
type FilterMode int

const (
	FilterRead  FilterMode = 1
	FilterWrite FilterMode = 2
	FilterAll              = FilterRead | FilterWrite
)

// Filter is a filter attached to a stream.
type Filter struct {
	s       *Stream
	name    string
	mode    FilterMode
	in, out *relay
	closer  io.Closer
	removed bool
}

// Name returns the filter's registered name.
func (f *Filter) Name() string { return f.name }

// Mode returns the directions the filter applies to.
func (f *Filter) Mode() FilterMode { return f.mode }

// filterSpec builds one stage of a chain. A nil function means the filter
// does not support that direction.
type filterSpec struct {
	read  func(io.Reader) io.Reader
	write func(io.Writer) io.WriteCloser
}

func (sp filterSpec) supports() FilterMode {
	var m FilterMode
	if sp.read != nil {
		m |= FilterRead
	}
	if sp.write != nil {
		m |= FilterWrite
	}
	return m
}

var registry = map[string]filterSpec{
	"string.toupper": byteFilter(toUpper),
	"string.rot13":   byteFilter(rot13),
	"zlib.deflate": {
		write: func(w io.Writer) io.WriteCloser { return zlib.NewWriter(w) },
	},
	"zlib.inflate": {
		read: func(r io.Reader) io.Reader { return &inflater{src: r} },
	},
}

// Filters lists the registered filter names.
func Filters() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

func toUpper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func rot13(b byte) byte {
	switch {
	case 'a' <= b && b <= 'z':
		return 'a' + (b-'a'+13)%26
	case 'A' <= b && b <= 'Z':
		return 'A' + (b-'A'+13)%26
	}
	return b
}

func byteFilter(fn func(byte) byte) filterSpec {
	return filterSpec{
		read:  func(r io.Reader) io.Reader { return &mapReader{r: r, fn: fn} },
		write: func(w io.Writer) io.WriteCloser { return &mapWriter{w: w, fn: fn} },
	}
}

type mapReader struct {
	r  io.Reader
	fn func(byte) byte
}

func (m *mapReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	for i := range p[:n] {
		p[i] = m.fn(p[i])
	}
	return n, err
}

type mapWriter struct {
	w  io.Writer
	fn func(byte) byte
}

func (m *mapWriter) Write(p []byte) (int, error) {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = m.fn(b)
	}
	return m.w.Write(out)
}

func (m *mapWriter) Close() error { return nil }

// inflater defers reading the zlib header to the first Read.
type inflater struct {
	src io.Reader
	zr  io.ReadCloser
}

func (in *inflater) Read(p []byte) (int, error) {
	if in.zr == nil {
		zr, err := zlib.NewReader(in.src)
		if err != nil {
			return 0, err
		}
		in.zr = zr
	}
	return in.zr.Read(p)
}

// relay is the link between a stage and the one below it. Re-pointing a
// relay splices a stage out without rebuilding the stages above it.
type relay struct {
	r io.Reader
	w io.Writer
}

func (rl *relay) Read(p []byte) (int, error)  { return rl.r.Read(p) }
func (rl *relay) Write(p []byte) (int, error) { return rl.w.Write(p) }

// attach appends one stage for f on top of the current chain.
func (s *Stream) attach(f *Filter, sp filterSpec) {
	if f.mode&FilterRead != 0 {
		f.in = &relay{r: s.r}
		s.r = sp.read(f.in)
	}
	if f.mode&FilterWrite != 0 {
		f.out = &relay{w: s.w}
		wc := sp.write(f.out)
		s.w, f.closer = wc, wc
	}
}

// detach flushes f's write stage into the stage below it and splices f out
// of both chains. Every other stage keeps its state.
func (s *Stream) detach(f *Filter) error {
	var err error
	if f.closer != nil {
		err = f.closer.Close()
		f.closer = nil
	}
	i := slices.Index(s.filters, f)
	s.filters = slices.Delete(s.filters, i, i+1)
	if f.in != nil {
		if up := s.above(i, FilterRead); up != nil {
			up.in.r = f.in.r
		} else {
			s.r = f.in.r
		}
	}
	if f.out != nil {
		if up := s.above(i, FilterWrite); up != nil {
			up.out.w = f.out.w
		} else {
			s.w = f.out.w
		}
	}
	return err
}

// above returns the lowest filter from index i up with a stage in dir.
func (s *Stream) above(i int, dir FilterMode) *Filter {
	for _, f := range s.filters[i:] {
		if f.mode&dir != 0 {
			return f
		}
	}
	return nil
}

// flush closes every write stage, top of the chain first.
func (s *Stream) flush() error {
	var first error
	for i := len(s.filters) - 1; i >= 0; i-- {
		if c := s.filters[i].closer; c != nil {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
			s.filters[i].closer = nil
		}
	}
	return first
}
