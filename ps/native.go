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
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/lasterr"
)

// standardFonts are the base fonts every PostScript interpreter provides.
var standardFonts = []string{
	"AvantGarde-Book", "AvantGarde-BookOblique", "AvantGarde-Demi", "AvantGarde-DemiOblique",
	"Bookman-Demi", "Bookman-DemiItalic", "Bookman-Light", "Bookman-LightItalic",
	"Courier", "Courier-Bold", "Courier-BoldOblique", "Courier-Oblique",
	"Helvetica", "Helvetica-Bold", "Helvetica-BoldOblique", "Helvetica-Oblique",
	"Helvetica-Narrow", "Helvetica-Narrow-Bold", "Helvetica-Narrow-BoldOblique", "Helvetica-Narrow-Oblique",
	"NewCenturySchlbk-Bold", "NewCenturySchlbk-BoldItalic", "NewCenturySchlbk-Italic", "NewCenturySchlbk-Roman",
	"Palatino-Bold", "Palatino-BoldItalic", "Palatino-Italic", "Palatino-Roman",
	"Symbol",
	"Times-Bold", "Times-BoldItalic", "Times-Italic", "Times-Roman",
	"ZapfChancery-MediumItalic", "ZapfDingbats",
}

var infoKeys = []string{"Author", "BoundingBox", "Creator", "Keywords", "Orientation", "Subject", "Title"}

func (d *Document) report(fn string, c code.Code, format string, args ...any) {
	d.env.Register().Report(lasterr.Context{
		Message: fn + "(): " + fmt.Sprintf(format, args...),
		Code:    c,
	})
}

func (d *Document) reportErr(fn string, err error) {
	ctx := lasterr.FromError(err)
	ctx.Message = fn + "(): " + err.Error()
	d.env.Register().Report(ctx)
}

// in checks that the document is in one of scopes.
func (d *Document) in(fn string, scopes ...Scope) bool {
	if slices.Contains(scopes, d.scope) {
		return true
	}
	d.report(fn, code.PreconditionFailed, "operation not allowed in %s scope", d.scope)
	return false
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (d *Document) emit(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *Document) openFile(name string) bool {
	if !d.in("ps_open_file", ScopeObject) {
		return false
	}
	if name == "" {
		d.report("ps_open_file", code.Invalid, "empty file name")
		return false
	}
	f, err := d.fs.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		d.reportErr("ps_open_file", err)
		return false
	}
	d.out, d.closer = bufio.NewWriter(f), f
	d.scope = ScopeDocument
	return true
}

func (d *Document) openMemory() bool {
	if !d.in("ps_open_memory", ScopeObject) {
		return false
	}
	d.mem = &bytes.Buffer{}
	d.out = bufio.NewWriter(d.mem)
	d.scope = ScopeDocument
	return true
}

func (d *Document) setInfo(key, value string) bool {
	if !d.in("ps_set_info", ScopeObject, ScopeDocument) {
		return false
	}
	if !slices.Contains(infoKeys, key) {
		d.report("ps_set_info", code.Invalid, "unknown info key %q", key)
		return false
	}
	if d.pages > 0 {
		d.report("ps_set_info", code.PreconditionFailed, "info must be set before the first page")
		return false
	}
	d.info[key] = value
	return true
}

func (d *Document) header() {
	d.emit("%%!PS-Adobe-3.0\n")
	for _, k := range infoKeys {
		if v, ok := d.info[k]; ok {
			d.emit("%%%%%s: %s\n", k, v)
		}
	}
	d.emit("%%%%Pages: (atend)\n%%%%EndComments\n")
}

func (d *Document) beginPage(w, h float64) bool {
	if !d.in("ps_begin_page", ScopeDocument) {
		return false
	}
	if w <= 0 || h <= 0 {
		d.report("ps_begin_page", code.Invalid, "page size must be positive, got %sx%s", num(w), num(h))
		return false
	}
	if d.pages == 0 {
		d.header()
	}
	d.pages++
	d.emit("%%%%Page: %d %d\n%%%%PageBoundingBox: 0 0 %s %s\nsave\n", d.pages, d.pages, num(w), num(h))
	d.font, d.size, d.saves = 0, 0, 0
	d.scope = ScopePage
	return true
}

func (d *Document) endPage() bool {
	if !d.in("ps_end_page", ScopePage, ScopePath) {
		return false
	}
	if d.scope == ScopePath {
		d.emit("newpath\n")
	}
	d.emit("%srestore\nshowpage\n", strings.Repeat("grestore\n", d.saves))
	d.saves = 0
	d.scope = ScopeDocument
	if err := d.out.Flush(); err != nil {
		d.reportErr("ps_end_page", err)
		return false
	}
	return true
}

// findFont returns the font's id, 0 on failure.
func (d *Document) findFont(name string) int {
	if !d.in("ps_findfont", ScopeDocument, ScopePage) {
		return 0
	}
	for i, f := range d.fonts {
		if f.name == name {
			return i + 1
		}
	}
	if !slices.Contains(standardFonts, name) {
		d.env.Register().Report(lasterr.Context{
			Number:  int(syscall.ENOENT),
			Message: fmt.Sprintf("ps_findfont(): font %q not found", name),
		})
		return 0
	}
	d.fonts = append(d.fonts, font{name: name})
	return len(d.fonts)
}

func (d *Document) setFont(id int, size float64) bool {
	if !d.in("ps_setfont", ScopePage) {
		return false
	}
	if id < 1 || id > len(d.fonts) {
		d.report("ps_setfont", code.Invalid, "font %d was not loaded", id)
		return false
	}
	if size <= 0 {
		d.report("ps_setfont", code.Invalid, "font size must be positive, got %s", num(size))
		return false
	}
	d.font, d.size = id, size
	d.emit("/%s findfont %s scalefont setfont\n", d.fonts[id-1].name, num(size))
	return true
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func (d *Document) showXY(text string, x, y float64) bool {
	if !d.in("ps_show_xy", ScopePage) {
		return false
	}
	if d.font == 0 {
		d.report("ps_show_xy", code.PreconditionFailed, "no font set")
		return false
	}
	d.useColor(d.fill)
	d.emit("%s %s moveto (%s) show\n", num(x), num(y), escape(text))
	return true
}

func (d *Document) moveTo(x, y float64) bool {
	if !d.in("ps_moveto", ScopePage, ScopePath) {
		return false
	}
	d.emit("%s %s moveto\n", num(x), num(y))
	d.scope = ScopePath
	return true
}

func (d *Document) lineTo(x, y float64) bool {
	if !d.in("ps_lineto", ScopePath) {
		return false
	}
	d.emit("%s %s lineto\n", num(x), num(y))
	return true
}

func (d *Document) rect(x, y, w, h float64) bool {
	if !d.in("ps_rect", ScopePage, ScopePath) {
		return false
	}
	d.emit("%s %s moveto %s 0 rlineto 0 %s rlineto %s 0 rlineto closepath\n",
		num(x), num(y), num(w), num(h), num(-w))
	d.scope = ScopePath
	return true
}

func (d *Document) paint(fn, operator string, c color) bool {
	if !d.in(fn, ScopePath) {
		return false
	}
	d.useColor(c)
	d.emit("%s\n", operator)
	d.scope = ScopePage
	return true
}

func (d *Document) useColor(c color) {
	switch c.space {
	case RGB:
		d.emit("%s %s %s setrgbcolor\n", num(c.c[0]), num(c.c[1]), num(c.c[2]))
	case CMYK:
		d.emit("%s %s %s %s setcmykcolor\n", num(c.c[0]), num(c.c[1]), num(c.c[2]), num(c.c[3]))
	default:
		d.emit("%s setgray\n", num(c.c[0]))
	}
}

func (d *Document) setColor(target ColorTarget, space ColorSpace, c []float64) bool {
	if !d.in("ps_setcolor", ScopeDocument, ScopePage, ScopePath) {
		return false
	}
	want := map[ColorSpace]int{Gray: 1, RGB: 3, CMYK: 4}[space]
	if want == 0 {
		d.report("ps_setcolor", code.Invalid, "unknown color space %q", space)
		return false
	}
	if len(c) != want {
		d.report("ps_setcolor", code.Invalid, "color space %s takes %d components, got %d", space, want, len(c))
		return false
	}
	var col color
	col.space = space
	for i, v := range c {
		if v < 0 || v > 1 {
			d.report("ps_setcolor", code.Invalid, "component %d out of range [0,1]: %s", i+1, num(v))
			return false
		}
		col.c[i] = v
	}
	switch target {
	case FillColor:
		d.fill = col
	case StrokeColor:
		d.stroke = col
	case BothColors:
		d.fill, d.stroke = col, col
	default:
		d.report("ps_setcolor", code.Invalid, "unknown color target %q", target)
		return false
	}
	return true
}

func (d *Document) setLineWidth(w float64) bool {
	if !d.in("ps_setlinewidth", ScopePage, ScopePath) {
		return false
	}
	if w <= 0 {
		d.report("ps_setlinewidth", code.Invalid, "line width must be positive, got %s", num(w))
		return false
	}
	d.emit("%s setlinewidth\n", num(w))
	return true
}

func (d *Document) save() bool {
	if !d.in("ps_save", ScopePage) {
		return false
	}
	d.saves++
	d.emit("gsave\n")
	return true
}

func (d *Document) restore() bool {
	if !d.in("ps_restore", ScopePage) {
		return false
	}
	if d.saves == 0 {
		d.report("ps_restore", code.PreconditionFailed, "no saved graphics state")
		return false
	}
	d.saves--
	d.emit("grestore\n")
	return true
}

func (d *Document) close() bool {
	if !d.in("ps_close", ScopeDocument, ScopePage, ScopePath) {
		return false
	}
	if d.scope != ScopeDocument && !d.endPage() {
		return false
	}
	if d.pages == 0 {
		d.header()
	}
	d.emit("%%%%Trailer\n%%%%Pages: %d\n%%%%EOF\n", d.pages)
	d.scope = ScopeClosed
	err := d.out.Flush()
	if d.closer != nil {
		if cerr := d.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		d.reportErr("ps_close", err)
		return false
	}
	return true
}

func (d *Document) buffer() []byte {
	if d.mem == nil {
		d.report("ps_get_buffer", code.PreconditionFailed, "document is not in memory")
		return nil
	}
	if d.scope != ScopeClosed {
		if err := d.out.Flush(); err != nil {
			d.reportErr("ps_get_buffer", err)
			return nil
		}
	}
	return append([]byte{}, d.mem.Bytes()...)
}
