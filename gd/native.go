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

package gd

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"syscall"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

func report(reg *lasterr.Register, fn string, n syscall.Errno, format string, args ...any) {
	reg.Reportf(int(n), "%s(): %s", fn, fmt.Sprintf(format, args...))
}

func reportErr(reg *lasterr.Register, fn string, n syscall.Errno, err error) {
	reg.Report(lasterr.Context{
		Message: fmt.Sprintf("%s(): %s", fn, err.Error()),
		Number:  int(n),
		Cause:   err,
	})
}

func checkSize(reg *lasterr.Register, fn string, w, h int) bool {
	if w <= 0 || h <= 0 {
		report(reg, fn, syscall.EINVAL, "Invalid image dimensions %dx%d", w, h)
		return false
	}
	if w > maxPixels/h {
		report(reg, fn, syscall.ENOMEM, "Image dimensions %dx%d are too large", w, h)
		return false
	}
	return true
}

func create(o options, w, h int) *Image {
	if !checkSize(o.env.Register(), "imagecreate", w, h) {
		return nil
	}
	return &Image{img: image.NewPaletted(image.Rect(0, 0, w, h), nil), env: o.env}
}

func createTrueColor(o options, w, h int) *Image {
	if !checkSize(o.env.Register(), "imagecreatetruecolor", w, h) {
		return nil
	}
	return &Image{img: image.NewNRGBA(image.Rect(0, 0, w, h)), env: o.env}
}

func createFromBytes(o options, data []byte) *Image {
	reg := o.env.Register()
	if len(data) == 0 {
		report(reg, "imagecreatefromstring", syscall.EINVAL, "Empty string or invalid image")
		return nil
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		reg.Report(lasterr.Context{
			Message: "imagecreatefromstring(): Data is not in a recognized format",
			Number:  int(syscall.EINVAL),
			Cause:   err,
		})
		return nil
	}
	return &Image{img: adopt(src), env: o.env, format: format}
}

func (im *Image) alive(fn string) bool {
	if im.destroyed {
		report(im.reg(), fn, syscall.EBADF, "Image has already been destroyed")
		return false
	}
	return true
}

func (im *Image) checkColor(fn string, c int) bool {
	if !im.valid(c) {
		report(im.reg(), fn, syscall.EINVAL, "Color index %d out of range", c)
		return false
	}
	return true
}

func inRange(v, lo, hi int) bool { return lo <= v && v <= hi }

func (im *Image) colorAllocate(fn string, r, g, b, a int) int {
	if !im.alive(fn) {
		return -1
	}
	for _, v := range [...]int{r, g, b} {
		if !inRange(v, 0, 255) {
			report(im.reg(), fn, syscall.EINVAL, "Color component %d must be between 0 and 255", v)
			return -1
		}
	}
	if !inRange(a, 0, 127) {
		report(im.reg(), fn, syscall.EINVAL, "Alpha %d must be between 0 and 127", a)
		return -1
	}
	p, ok := im.img.(*image.Paletted)
	if !ok {
		return TrueColor(r, g, b, a)
	}
	if len(p.Palette) >= maxPalette {
		report(im.reg(), fn, syscall.ENOSPC, "Palette is full (%d colors)", maxPalette)
		return -1
	}
	p.Palette = append(p.Palette, unpack(TrueColor(r, g, b, a)))
	return len(p.Palette) - 1
}

func (im *Image) colorAt(x, y int) int {
	if !im.alive("imagecolorat") {
		return -1
	}
	if !(image.Point{X: x, Y: y}).In(im.img.Bounds()) {
		report(im.reg(), "imagecolorat", syscall.EINVAL, "%d,%d is out of bounds", x, y)
		return -1
	}
	return im.at(x, y)
}

func (im *Image) setPixel(x, y, c int) bool {
	if !im.alive("imagesetpixel") || !im.checkColor("imagesetpixel", c) {
		return false
	}
	im.set(x, y, c)
	return true
}

func (im *Image) line(x1, y1, x2, y2, c int) bool {
	if !im.alive("imageline") || !im.checkColor("imageline", c) {
		return false
	}
	x1, y1, x2, y2, ok := clipLine(im.img.Bounds(), x1, y1, x2, y2)
	if !ok {
		return true
	}
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := sign(x2-x1), sign(y2-y1)
	e := dx + dy
	for {
		im.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return true
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

func (im *Image) rectangle(fn string, x1, y1, x2, y2, c int, filled bool) bool {
	if !im.alive(fn) || !im.checkColor(fn, c) {
		return false
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	b := im.img.Bounds()
	cx1, cy1 := max(x1, b.Min.X), max(y1, b.Min.Y)
	cx2, cy2 := min(x2, b.Max.X-1), min(y2, b.Max.Y-1)
	if cx1 > cx2 || cy1 > cy2 {
		return true
	}
	if filled {
		for y := cy1; y <= cy2; y++ {
			for x := cx1; x <= cx2; x++ {
				im.set(x, y, c)
			}
		}
		return true
	}
	for x := cx1; x <= cx2; x++ {
		if y1 == cy1 {
			im.set(x, y1, c)
		}
		if y2 == cy2 {
			im.set(x, y2, c)
		}
	}
	for y := cy1; y <= cy2; y++ {
		if x1 == cx1 {
			im.set(x1, y, c)
		}
		if x2 == cx2 {
			im.set(x2, y, c)
		}
	}
	return true
}

// clipLine cuts the segment to the pixels of b (Liang-Barsky). Segments
// that lie inside b are returned unchanged; ok is false when nothing of the
// segment is inside.
func clipLine(b image.Rectangle, x1, y1, x2, y2 int) (int, int, int, int, bool) {
	if (image.Point{X: x1, Y: y1}).In(b) && (image.Point{X: x2, Y: y2}).In(b) {
		return x1, y1, x2, y2, true
	}
	if b.Empty() {
		return 0, 0, 0, 0, false
	}
	fx1, fy1 := float64(x1), float64(y1)
	dx, dy := float64(x2)-fx1, float64(y2)-fy1
	xmin, xmax := float64(b.Min.X), float64(b.Max.X-1)
	ymin, ymax := float64(b.Min.Y), float64(b.Max.Y-1)
	t0, t1 := 0.0, 1.0
	for _, pq := range [4][2]float64{
		{-dx, fx1 - xmin}, {dx, xmax - fx1},
		{-dy, fy1 - ymin}, {dy, ymax - fy1},
	} {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	clamp := func(v float64, lo, hi int) int {
		return min(max(int(math.Round(v)), lo), hi)
	}
	return clamp(fx1+t0*dx, b.Min.X, b.Max.X-1), clamp(fy1+t0*dy, b.Min.Y, b.Max.Y-1),
		clamp(fx1+t1*dx, b.Min.X, b.Max.X-1), clamp(fy1+t1*dy, b.Min.Y, b.Max.Y-1), true
}

// fill flood-fills the 4-connected region around (x, y) that shares its
// color.
func (im *Image) fill(x, y, c int) bool {
	if !im.alive("imagefill") || !im.checkColor("imagefill", c) {
		return false
	}
	b := im.img.Bounds()
	if !(image.Point{X: x, Y: y}).In(b) {
		report(im.reg(), "imagefill", syscall.EINVAL, "%d,%d is out of bounds", x, y)
		return false
	}
	target := im.at(x, y)
	if target == c {
		return true
	}
	stack := []image.Point{{X: x, Y: y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.In(b) || im.at(p.X, p.Y) != target {
			continue
		}
		im.set(p.X, p.Y, c)
		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y}, image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1}, image.Point{X: p.X, Y: p.Y - 1})
	}
	return true
}

func (im *Image) drawString(fontID, x, y int, s string, c int) bool {
	if !im.alive("imagestring") || !im.checkColor("imagestring", c) {
		return false
	}
	if !inRange(fontID, 1, 5) {
		report(im.reg(), "imagestring", syscall.EINVAL, "Font %d is not a built-in font", fontID)
		return false
	}
	var src color.Color
	if p, ok := im.img.(*image.Paletted); ok {
		src = p.Palette[c]
	} else {
		src = unpack(c)
	}
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  im.img,
		Src:  image.NewUniform(src),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(s)
	return true
}

func (im *Image) copyFrom(src *Image, dstX, dstY, srcX, srcY, w, h int) bool {
	if !im.alive("imagecopy") {
		return false
	}
	if src.destroyed {
		report(im.reg(), "imagecopy", syscall.EBADF, "Source image has already been destroyed")
		return false
	}
	if p, ok := src.img.(*image.Paletted); ok && len(p.Palette) == 0 {
		report(im.reg(), "imagecopy", syscall.EINVAL, "Source image has no allocated colors")
		return false
	}
	if w < 0 || h < 0 {
		report(im.reg(), "imagecopy", syscall.EINVAL, "Negative copy size %dx%d", w, h)
		return false
	}
	r := image.Rect(dstX, dstY, dstX+w, dstY+h)
	draw.Draw(im.img, r, src.img, image.Pt(srcX, srcY), draw.Src)
	return true
}

func (im *Image) scale(w int, h call.Opt[int]) *Image {
	if !im.alive("imagescale") || !im.colored("imagescale") {
		return nil
	}
	nh := h.Or(-1)
	if nh < 0 && w > 0 {
		nh = im.SY() * w / im.SX()
		if nh == 0 {
			nh = 1
		}
	}
	if !checkSize(im.reg(), "imagescale", w, nh) {
		return nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), im.img, im.img.Bounds(), xdraw.Src, nil)
	return &Image{img: dst, env: im.env}
}

func (im *Image) crop(r image.Rectangle) *Image {
	if !im.alive("imagecrop") {
		return nil
	}
	r = r.Canon().Intersect(im.img.Bounds())
	if r.Empty() {
		report(im.reg(), "imagecrop", syscall.EINVAL, "Crop rectangle is outside the image")
		return nil
	}
	out := im.blank(r.Dx(), r.Dy())
	if p, ok := im.img.(*image.Paletted); ok {
		dst := out.img.(*image.Paletted)
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				dst.SetColorIndex(x, y, p.ColorIndexAt(r.Min.X+x, r.Min.Y+y))
			}
		}
		return out
	}
	draw.Draw(out.img, out.img.Bounds(), im.img, r.Min, draw.Src)
	return out
}

// colored reports whether im's pixels have colors to read.
func (im *Image) colored(fn string) bool {
	if p, ok := im.img.(*image.Paletted); ok && len(p.Palette) == 0 {
		report(im.reg(), fn, syscall.EINVAL, "Image has no allocated colors")
		return false
	}
	return true
}

func (im *Image) encode(fn string, w io.Writer, enc func(io.Writer, image.Image) error) bool {
	if !im.alive(fn) || !im.colored(fn) {
		return false
	}
	if err := enc(w, im.img); err != nil {
		reportErr(im.reg(), fn, syscall.EIO, err)
		return false
	}
	return true
}

func pngLevel(level int) (png.CompressionLevel, bool) {
	switch {
	case level == -1:
		return png.DefaultCompression, true
	case level == 0:
		return png.NoCompression, true
	case inRange(level, 1, 3):
		return png.BestSpeed, true
	case inRange(level, 4, 8):
		return png.DefaultCompression, true
	case level == 9:
		return png.BestCompression, true
	}
	return 0, false
}

func (im *Image) png(w io.Writer, level call.Opt[int]) bool {
	lv, ok := pngLevel(level.Or(-1))
	if !ok {
		report(im.reg(), "imagepng", syscall.EINVAL, "Compression level %d must be between -1 and 9", level.Or(-1))
		return false
	}
	enc := png.Encoder{CompressionLevel: lv}
	return im.encode("imagepng", w, enc.Encode)
}

func (im *Image) jpeg(w io.Writer, quality call.Opt[int]) bool {
	q := quality.Or(-1)
	if q == -1 {
		q = jpeg.DefaultQuality
	}
	if !inRange(q, 0, 100) {
		report(im.reg(), "imagejpeg", syscall.EINVAL, "Quality %d must be between -1 and 100", q)
		return false
	}
	return im.encode("imagejpeg", w, func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, &jpeg.Options{Quality: q})
	})
}

func (im *Image) gif(w io.Writer) bool {
	return im.encode("imagegif", w, func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) })
}

func (im *Image) bmp(w io.Writer) bool {
	return im.encode("imagebmp", w, bmp.Encode)
}

func (im *Image) destroy() bool {
	if !im.alive("imagedestroy") {
		return false
	}
	im.destroyed = true
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
