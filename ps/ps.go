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
	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opOpenFile     = call.MustOp(safecall.Document, "ps_open_file")
	opOpenMemory   = call.MustOp(safecall.Document, "ps_open_memory")
	opSetInfo      = call.MustOp(safecall.Document, "ps_set_info")
	opBeginPage    = call.MustOp(safecall.Document, "ps_begin_page")
	opEndPage      = call.MustOp(safecall.Document, "ps_end_page")
	opFindFont     = call.MustOp(safecall.Document, "ps_findfont")
	opSetFont      = call.MustOp(safecall.Document, "ps_setfont")
	opShowXY       = call.MustOp(safecall.Document, "ps_show_xy")
	opMoveTo       = call.MustOp(safecall.Document, "ps_moveto")
	opLineTo       = call.MustOp(safecall.Document, "ps_lineto")
	opRect         = call.MustOp(safecall.Document, "ps_rect")
	opStroke       = call.MustOp(safecall.Document, "ps_stroke")
	opFill         = call.MustOp(safecall.Document, "ps_fill")
	opSetColor     = call.MustOp(safecall.Document, "ps_setcolor")
	opSetLineWidth = call.MustOp(safecall.Document, "ps_setlinewidth")
	opSave         = call.MustOp(safecall.Document, "ps_save")
	opRestore      = call.MustOp(safecall.Document, "ps_restore")
	opClose        = call.MustOp(safecall.Document, "ps_close")
	opGetBuffer    = call.MustOp(safecall.Document, "ps_get_buffer")
)

// New returns a document in object scope. Call OpenFile or OpenMemory
// before anything else.
func New(opts ...Option) *Document {
	return newDocument(opts)
}

func (d *Document) do(op call.Op, fn func() bool) error {
	return call.AmbientBool(d.env, op, fn)
}

// OpenFile starts writing the document to the file name.
func (d *Document) OpenFile(name string) error {
	return d.do(opOpenFile, func() bool { return d.openFile(name) })
}

// OpenMemory starts writing the document to memory; see Buffer.
func (d *Document) OpenMemory() error {
	return d.do(opOpenMemory, d.openMemory)
}

// SetInfo sets a DSC header field such as "Title" or "BoundingBox". It
// must be called before the first page.
func (d *Document) SetInfo(key, value string) error {
	return d.do(opSetInfo, func() bool { return d.setInfo(key, value) })
}

// BeginPage starts a page of the given size in points.
func (d *Document) BeginPage(width, height float64) error {
	return d.do(opBeginPage, func() bool { return d.beginPage(width, height) })
}

// EndPage finishes the current page, discarding an unpainted path.
func (d *Document) EndPage() error {
	return d.do(opEndPage, d.endPage)
}

// FindFont loads one of the standard PostScript fonts and returns its id
// for SetFont.
func (d *Document) FindFont(name string) (int, error) {
	return call.Ambient(d.env, opFindFont, call.Zero[int](), func() int { return d.findFont(name) })
}

// SetFont selects a font loaded by FindFont.
func (d *Document) SetFont(id int, size float64) error {
	return d.do(opSetFont, func() bool { return d.setFont(id, size) })
}

// ShowXY draws text with its baseline starting at (x, y).
func (d *Document) ShowXY(text string, x, y float64) error {
	return d.do(opShowXY, func() bool { return d.showXY(text, x, y) })
}

// MoveTo starts a new subpath at (x, y).
func (d *Document) MoveTo(x, y float64) error {
	return d.do(opMoveTo, func() bool { return d.moveTo(x, y) })
}

// LineTo extends the current path to (x, y).
func (d *Document) LineTo(x, y float64) error {
	return d.do(opLineTo, func() bool { return d.lineTo(x, y) })
}

// Rect adds a closed rectangle to the current path.
func (d *Document) Rect(x, y, width, height float64) error {
	return d.do(opRect, func() bool { return d.rect(x, y, width, height) })
}

// Stroke paints the current path with the stroke color.
func (d *Document) Stroke() error {
	return d.do(opStroke, func() bool { return d.paint("ps_stroke", "stroke", d.stroke) })
}

// Fill fills the current path with the fill color.
func (d *Document) Fill() error {
	return d.do(opFill, func() bool { return d.paint("ps_fill", "fill", d.fill) })
}

// SetColor sets the fill or stroke color, or both. Components lie in
// [0, 1]: one for Gray, three for RGB, four for CMYK.
func (d *Document) SetColor(target ColorTarget, space ColorSpace, components ...float64) error {
	return d.do(opSetColor, func() bool { return d.setColor(target, space, components) })
}

// SetLineWidth sets the stroke width in points.
func (d *Document) SetLineWidth(width float64) error {
	return d.do(opSetLineWidth, func() bool { return d.setLineWidth(width) })
}

// Save pushes the graphics state.
func (d *Document) Save() error {
	return d.do(opSave, d.save)
}

// Restore pops the graphics state pushed by Save.
func (d *Document) Restore() error {
	return d.do(opRestore, d.restore)
}

// Close ends an open page, writes the trailer and closes the output.
func (d *Document) Close() error {
	return d.do(opClose, d.close)
}

// Buffer returns what a memory document has written so far.
func (d *Document) Buffer() ([]byte, error) {
	return call.Ambient(d.env, opGetBuffer, call.NilSlice[byte](), d.buffer)
}
