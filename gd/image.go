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
	"image/color"
	"image/draw"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

// maxPixels bounds the area of a created image.
const maxPixels = 1 << 28

// maxPalette is the number of colors a palette image can allocate.
const maxPalette = 256

// Image is a raster image. Palette images address colors by palette
// index; true-color images by a packed value 0xAARRGGBB where alpha runs
// from 0 (opaque) to 127 (transparent).
type Image struct {
	img       draw.Image
	env       *call.Env
	format    string
	destroyed bool
}

// Option configures image construction.
type Option func(*options)

type options struct {
	env *call.Env
}

// WithEnv runs the image's wrapped calls in env.
func WithEnv(env *call.Env) Option {
	return func(o *options) { o.env = env }
}

func apply(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SX returns the image width.
func (im *Image) SX() int { return im.img.Bounds().Dx() }

// SY returns the image height.
func (im *Image) SY() int { return im.img.Bounds().Dy() }

// IsTrueColor reports whether im is a true-color image.
func (im *Image) IsTrueColor() bool {
	_, ok := im.img.(*image.Paletted)
	return !ok
}

// Colors returns the number of allocated palette entries, 0 for a
// true-color image.
func (im *Image) Colors() int {
	if p, ok := im.img.(*image.Paletted); ok {
		return len(p.Palette)
	}
	return 0
}

// Format returns the name of the format im was decoded from, "" for
// created images.
func (im *Image) Format() string { return im.format }

// Image returns the underlying raster.
func (im *Image) Image() image.Image { return im.img }

func (im *Image) reg() *lasterr.Register { return im.env.Register() }

// TrueColor packs r, g, b and a GD alpha value (0..127) into a true-color
// value.
func TrueColor(r, g, b, a int) int {
	return a<<24 | r<<16 | g<<8 | b
}

func unpack(c int) color.NRGBA {
	a := (c >> 24) & 0x7f
	return color.NRGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: uint8(255 - a*255/127),
	}
}

func pack(c color.Color) int {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	a := 127 - int(n.A)*127/255
	return TrueColor(int(n.R), int(n.G), int(n.B), a)
}

// valid reports whether c addresses a color of im.
func (im *Image) valid(c int) bool {
	if p, ok := im.img.(*image.Paletted); ok {
		return c >= 0 && c < len(p.Palette)
	}
	return c >= 0 && c>>24 <= 0x7f
}

// set writes color c at (x, y). Points outside the image are ignored.
func (im *Image) set(x, y, c int) {
	if !(image.Point{X: x, Y: y}).In(im.img.Bounds()) {
		return
	}
	switch m := im.img.(type) {
	case *image.Paletted:
		m.SetColorIndex(x, y, uint8(c))
	case *image.NRGBA:
		m.SetNRGBA(x, y, unpack(c))
	default:
		m.Set(x, y, unpack(c))
	}
}

// at returns the color value at (x, y), which must be in bounds.
func (im *Image) at(x, y int) int {
	if p, ok := im.img.(*image.Paletted); ok {
		return int(p.ColorIndexAt(x, y))
	}
	return pack(im.img.At(x, y))
}

// blank returns an empty image of the same kind as im.
func (im *Image) blank(w, h int) *Image {
	r := image.Rect(0, 0, w, h)
	var dst draw.Image
	if p, ok := im.img.(*image.Paletted); ok {
		dst = image.NewPaletted(r, append(color.Palette(nil), p.Palette...))
	} else {
		dst = image.NewNRGBA(r)
	}
	return &Image{img: dst, env: im.env}
}

// adopt turns a decoded image into a drawable one.
func adopt(src image.Image) draw.Image {
	switch m := src.(type) {
	case *image.Paletted:
		return m
	case *image.NRGBA:
		return m
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
