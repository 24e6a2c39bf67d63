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
	"image"
	"io"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opCreate             = call.MustOp(safecall.Image, "create")
	opCreateTrueColor    = call.MustOp(safecall.Image, "create_truecolor")
	opCreateFromBytes    = call.MustOp(safecall.Image, "create_from_string")
	opColorAllocate      = call.MustOp(safecall.Image, "color_allocate")
	opColorAllocateAlpha = call.MustOp(safecall.Image, "color_allocate_alpha")
	opColorAt            = call.MustOp(safecall.Image, "color_at")
	opSetPixel           = call.MustOp(safecall.Image, "set_pixel")
	opLine               = call.MustOp(safecall.Image, "line")
	opRectangle          = call.MustOp(safecall.Image, "rectangle")
	opFilledRectangle    = call.MustOp(safecall.Image, "filled_rectangle")
	opFill               = call.MustOp(safecall.Image, "fill")
	opString             = call.MustOp(safecall.Image, "string")
	opCopy               = call.MustOp(safecall.Image, "copy")
	opScale              = call.MustOp(safecall.Image, "scale")
	opCrop               = call.MustOp(safecall.Image, "crop")
	opPNG                = call.MustOp(safecall.Image, "png")
	opJPEG               = call.MustOp(safecall.Image, "jpeg")
	opGIF                = call.MustOp(safecall.Image, "gif")
	opBMP                = call.MustOp(safecall.Image, "bmp")
	opDestroy            = call.MustOp(safecall.Image, "destroy")
)

// Create returns a palette image of w by h pixels with no colors
// allocated.
func Create(w, h int, opts ...Option) (*Image, error) {
	o := apply(opts)
	return call.Ambient(o.env, opCreate, call.Nil[Image](), func() *Image { return create(o, w, h) })
}

// CreateTrueColor returns a true-color image of w by h transparent-black
// pixels.
func CreateTrueColor(w, h int, opts ...Option) (*Image, error) {
	o := apply(opts)
	return call.Ambient(o.env, opCreateTrueColor, call.Nil[Image](), func() *Image { return createTrueColor(o, w, h) })
}

// CreateFromBytes decodes a PNG, JPEG, GIF, BMP or WebP image. Palette
// sources stay palette images.
func CreateFromBytes(data []byte, opts ...Option) (*Image, error) {
	o := apply(opts)
	return call.Ambient(o.env, opCreateFromBytes, call.Nil[Image](), func() *Image { return createFromBytes(o, data) })
}

// ColorAllocate allocates an opaque color. On palette images the result
// is the palette index, so the first allocation returns 0.
func (im *Image) ColorAllocate(r, g, b int) (int, error) {
	return call.Ambient(im.env, opColorAllocate, call.Negative[int](), func() int {
		return im.colorAllocate("imagecolorallocate", r, g, b, 0)
	})
}

// ColorAllocateAlpha allocates a color with GD alpha a (0 opaque, 127
// transparent).
func (im *Image) ColorAllocateAlpha(r, g, b, a int) (int, error) {
	return call.Ambient(im.env, opColorAllocateAlpha, call.Negative[int](), func() int {
		return im.colorAllocate("imagecolorallocatealpha", r, g, b, a)
	})
}

// ColorAt returns the color at (x, y).
func (im *Image) ColorAt(x, y int) (int, error) {
	return call.Ambient(im.env, opColorAt, call.Negative[int](), func() int { return im.colorAt(x, y) })
}

// SetPixel sets one pixel. Points outside the image are ignored.
func (im *Image) SetPixel(x, y, color int) error {
	return call.AmbientBool(im.env, opSetPixel, func() bool { return im.setPixel(x, y, color) })
}

// Line draws a one-pixel line between two points, both included.
func (im *Image) Line(x1, y1, x2, y2, color int) error {
	return call.AmbientBool(im.env, opLine, func() bool { return im.line(x1, y1, x2, y2, color) })
}

// Rectangle outlines the rectangle with corners (x1, y1) and (x2, y2).
func (im *Image) Rectangle(x1, y1, x2, y2, color int) error {
	return call.AmbientBool(im.env, opRectangle, func() bool {
		return im.rectangle("imagerectangle", x1, y1, x2, y2, color, false)
	})
}

// FilledRectangle fills the rectangle with corners (x1, y1) and (x2, y2).
func (im *Image) FilledRectangle(x1, y1, x2, y2, color int) error {
	return call.AmbientBool(im.env, opFilledRectangle, func() bool {
		return im.rectangle("imagefilledrectangle", x1, y1, x2, y2, color, true)
	})
}

// Fill flood-fills the region around (x, y).
func (im *Image) Fill(x, y, color int) error {
	return call.AmbientBool(im.env, opFill, func() bool { return im.fill(x, y, color) })
}

// String draws s with its top-left corner at (x, y). Built-in fonts 1 to
// 5 all render with a 7x13 bitmap face.
func (im *Image) String(font, x, y int, s string, color int) error {
	return call.AmbientBool(im.env, opString, func() bool { return im.drawString(font, x, y, s, color) })
}

// Copy copies a w by h region of src at (srcX, srcY) onto im at
// (dstX, dstY).
func (im *Image) Copy(src *Image, dstX, dstY, srcX, srcY, w, h int) error {
	return call.AmbientBool(im.env, opCopy, func() bool { return im.copyFrom(src, dstX, dstY, srcX, srcY, w, h) })
}

// Scale returns a true-color copy of im resized to w pixels wide. Without
// a height, or with -1, the aspect ratio is kept.
func (im *Image) Scale(w int, h call.Opt[int]) (*Image, error) {
	return call.Ambient(im.env, opScale, call.Nil[Image](), func() *Image { return im.scale(w, h) })
}

// Crop returns the part of im inside r.
func (im *Image) Crop(r image.Rectangle) (*Image, error) {
	return call.Ambient(im.env, opCrop, call.Nil[Image](), func() *Image { return im.crop(r) })
}

// PNG encodes im to w. level is the zlib level, -1 to 9.
func (im *Image) PNG(w io.Writer, level call.Opt[int]) error {
	return call.AmbientBool(im.env, opPNG, func() bool { return im.png(w, level) })
}

// JPEG encodes im to w. quality runs from 0 to 100, -1 for the default.
func (im *Image) JPEG(w io.Writer, quality call.Opt[int]) error {
	return call.AmbientBool(im.env, opJPEG, func() bool { return im.jpeg(w, quality) })
}

// GIF encodes im to w.
func (im *Image) GIF(w io.Writer) error {
	return call.AmbientBool(im.env, opGIF, func() bool { return im.gif(w) })
}

// BMP encodes im to w.
func (im *Image) BMP(w io.Writer) error {
	return call.AmbientBool(im.env, opBMP, func() bool { return im.bmp(w) })
}

// Destroy releases im. Later calls on it fail with code.BadHandle.
func (im *Image) Destroy() error {
	return call.AmbientBool(im.env, opDestroy, func() bool { return im.destroy() })
}
