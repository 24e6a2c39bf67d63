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
	"errors"
	"image"
	"math"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/code"
)

func env() Option { return WithEnv(call.NewEnv()) }

func requireImageError(t *testing.T, err error, c code.Code, op string) *safecall.Error {
	t.Helper()
	require.Error(t, err)
	var ie *safecall.ImageError
	require.True(t, errors.As(err, &ie), "want *safecall.ImageError, got %T", err)
	assert.Equal(t, c, ie.Err.Code)
	assert.Equal(t, op, ie.Err.Op)
	assert.Equal(t, "image."+op, ie.Err.Reason.String())
	return ie.Err
}

func trueColor(t *testing.T, w, h int) (*Image, int) {
	t.Helper()
	im, err := CreateTrueColor(w, h, env())
	require.NoError(t, err)
	red, err := im.ColorAllocate(255, 0, 0)
	require.NoError(t, err)
	return im, red
}

func TestCreate_Dimensions(t *testing.T) {
	im, err := Create(0, 5, env())
	assert.Nil(t, im)
	e := requireImageError(t, err, code.Invalid, "create")
	assert.Equal(t, int(syscall.EINVAL), e.Errno)
	assert.Contains(t, e.Message, "imagecreate(): Invalid image dimensions 0x5")

	_, err = CreateTrueColor(1<<20, 1<<20, env())
	requireImageError(t, err, code.QuotaExceeded, "create_truecolor")

	im, err = Create(3, 2, env())
	require.NoError(t, err)
	assert.Equal(t, 3, im.SX())
	assert.Equal(t, 2, im.SY())
	assert.False(t, im.IsTrueColor())
}

func TestColorAllocate_PaletteIndexZeroIsValid(t *testing.T) {
	im, err := Create(4, 4, env())
	require.NoError(t, err)

	first, err := im.ColorAllocate(255, 255, 255)
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	second, err := im.ColorAllocate(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, second)

	for i := 2; i < maxPalette; i++ {
		_, err := im.ColorAllocate(i%256, 0, 0)
		require.NoError(t, err)
	}
	n, err := im.ColorAllocate(1, 2, 3)
	assert.Zero(t, n)
	e := requireImageError(t, err, code.QuotaExceeded, "color_allocate")
	assert.Equal(t, "ENOSPC", e.Details["errno_name"])

	_, err = im.ColorAllocate(256, 0, 0)
	requireImageError(t, err, code.Invalid, "color_allocate")
	_, err = im.ColorAllocateAlpha(0, 0, 0, 128)
	requireImageError(t, err, code.Invalid, "color_allocate_alpha")
}

func TestTrueColorValues(t *testing.T) {
	im, red := trueColor(t, 4, 4)
	assert.Equal(t, 0xFF0000, red)
	half, err := im.ColorAllocateAlpha(0, 0, 255, 127)
	require.NoError(t, err)
	assert.Equal(t, TrueColor(0, 0, 255, 127), half)

	require.NoError(t, im.SetPixel(1, 1, red))
	require.NoError(t, im.SetPixel(10, 10, red), "points outside the image are ignored")
	got, err := im.ColorAt(1, 1)
	require.NoError(t, err)
	assert.Equal(t, red, got)

	_, err = im.ColorAt(4, 0)
	requireImageError(t, err, code.Invalid, "color_at")
	requireImageError(t, im.SetPixel(0, 0, -5), code.Invalid, "set_pixel")
}

func TestDrawing(t *testing.T) {
	im, red := trueColor(t, 10, 10)

	require.NoError(t, im.Line(0, 0, 4, 4, red))
	c, _ := im.ColorAt(2, 2)
	assert.Equal(t, red, c)
	c, _ = im.ColorAt(0, 1)
	assert.NotEqual(t, red, c)

	require.NoError(t, im.Rectangle(6, 6, 8, 8, red))
	c, _ = im.ColorAt(6, 7)
	assert.Equal(t, red, c)
	c, _ = im.ColorAt(7, 7)
	assert.NotEqual(t, red, c)

	require.NoError(t, im.FilledRectangle(8, 0, 6, 2, red))
	c, _ = im.ColorAt(7, 1)
	assert.Equal(t, red, c)
}

func countColor(t *testing.T, im *Image, c int) int {
	t.Helper()
	n := 0
	for y := range im.SY() {
		for x := range im.SX() {
			got, err := im.ColorAt(x, y)
			require.NoError(t, err)
			if got == c {
				n++
			}
		}
	}
	return n
}

func TestDrawing_ClipsToImage(t *testing.T) {
	im, red := trueColor(t, 10, 10)
	require.NoError(t, im.FilledRectangle(-20000, -20000, 20000, 20000, red))
	assert.Equal(t, 100, countColor(t, im, red))

	im, red = trueColor(t, 10, 10)
	require.NoError(t, im.FilledRectangle(0, 0, math.MaxInt, 0, red))
	assert.Equal(t, 10, countColor(t, im, red))

	im, red = trueColor(t, 10, 10)
	require.NoError(t, im.Rectangle(2, 2, math.MaxInt, math.MaxInt, red))
	assert.Equal(t, 15, countColor(t, im, red), "only the top and left edges are inside")
	c, _ := im.ColorAt(5, 5)
	assert.NotEqual(t, red, c)

	im, red = trueColor(t, 10, 10)
	require.NoError(t, im.Rectangle(math.MinInt, math.MinInt, math.MaxInt, math.MaxInt, red))
	require.NoError(t, im.FilledRectangle(20, 20, 30, 30, red))
	assert.Zero(t, countColor(t, im, red))

	im, red = trueColor(t, 10, 10)
	require.NoError(t, im.Line(-100, 5, 100, 5, red))
	assert.Equal(t, 10, countColor(t, im, red))
	require.NoError(t, im.Line(0, 0, math.MaxInt, math.MaxInt, red))
	c, _ = im.ColorAt(7, 7)
	assert.Equal(t, red, c)
	require.NoError(t, im.Line(math.MinInt, 0, math.MaxInt, 0, red))
	require.NoError(t, im.Line(50, 50, 60, 70, red))
}

func TestFill(t *testing.T) {
	im, err := Create(10, 10, env())
	require.NoError(t, err)
	bg, _ := im.ColorAllocate(255, 255, 255)
	border, _ := im.ColorAllocate(0, 0, 0)
	inner, _ := im.ColorAllocate(0, 255, 0)

	require.NoError(t, im.Rectangle(0, 0, 9, 9, border))
	require.NoError(t, im.Fill(5, 5, inner))

	c, _ := im.ColorAt(1, 1)
	assert.Equal(t, inner, c)
	c, _ = im.ColorAt(0, 0)
	assert.Equal(t, border, c)
	assert.NotEqual(t, bg, inner)

	requireImageError(t, im.Fill(20, 0, inner), code.Invalid, "fill")
}

func TestString(t *testing.T) {
	im, err := CreateTrueColor(30, 20, env())
	require.NoError(t, err)
	white, _ := im.ColorAllocate(255, 255, 255)
	black, _ := im.ColorAllocate(0, 0, 0)
	require.NoError(t, im.FilledRectangle(0, 0, 29, 19, white))

	require.NoError(t, im.String(1, 2, 2, "Hi", black))
	inked := 0
	for y := 0; y < im.SY(); y++ {
		for x := 0; x < im.SX(); x++ {
			if c, _ := im.ColorAt(x, y); c == black {
				inked++
			}
		}
	}
	assert.Positive(t, inked)

	requireImageError(t, im.String(6, 0, 0, "x", black), code.Invalid, "string")
}

func TestCopyScaleCrop(t *testing.T) {
	src, red := trueColor(t, 4, 4)
	require.NoError(t, src.FilledRectangle(0, 0, 1, 1, red))
	dst, _ := trueColor(t, 10, 10)

	require.NoError(t, dst.Copy(src, 5, 5, 0, 0, 2, 2))
	c, _ := dst.ColorAt(6, 6)
	assert.Equal(t, red, c)
	c, _ = dst.ColorAt(7, 7)
	assert.NotEqual(t, red, c)
	requireImageError(t, dst.Copy(src, 0, 0, 0, 0, -1, 1), code.Invalid, "copy")

	tall, _ := trueColor(t, 10, 20)
	small, err := tall.Scale(5, call.Opt[int]{})
	require.NoError(t, err)
	assert.Equal(t, 5, small.SX())
	assert.Equal(t, 10, small.SY())
	_, err = tall.Scale(0, call.Opt[int]{})
	requireImageError(t, err, code.Invalid, "scale")

	part, err := dst.Crop(image.Rect(2, 2, 6, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, part.SX())
	assert.Equal(t, 3, part.SY())
	_, err = dst.Crop(image.Rect(50, 50, 60, 60))
	requireImageError(t, err, code.Invalid, "crop")

	empty, _ := Create(2, 2, env())
	_, err = empty.Scale(1, call.Some(1))
	requireImageError(t, err, code.Invalid, "scale")
}

func TestEncodeDecode(t *testing.T) {
	im, red := trueColor(t, 3, 3)
	require.NoError(t, im.FilledRectangle(0, 0, 2, 2, red))

	var buf bytes.Buffer
	require.NoError(t, im.PNG(&buf, call.Some(9)))
	back, err := CreateFromBytes(buf.Bytes(), env())
	require.NoError(t, err)
	assert.Equal(t, "png", back.Format())
	c, _ := back.ColorAt(1, 1)
	assert.Equal(t, red, c)

	buf.Reset()
	require.NoError(t, im.BMP(&buf))
	back, err = CreateFromBytes(buf.Bytes(), env())
	require.NoError(t, err)
	assert.Equal(t, "bmp", back.Format())
	c, _ = back.ColorAt(2, 2)
	assert.Equal(t, red, c)

	buf.Reset()
	require.NoError(t, im.JPEG(&buf, call.Opt[int]{}))
	back, err = CreateFromBytes(buf.Bytes(), env())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", back.Format())
	assert.Equal(t, 3, back.SX())

	pal, _ := Create(2, 2, env())
	_, _ = pal.ColorAllocate(0, 0, 0)
	blue, _ := pal.ColorAllocate(0, 0, 255)
	require.NoError(t, pal.SetPixel(1, 0, blue))
	buf.Reset()
	require.NoError(t, pal.GIF(&buf))
	back, err = CreateFromBytes(buf.Bytes(), env())
	require.NoError(t, err)
	assert.Equal(t, "gif", back.Format())
	assert.False(t, back.IsTrueColor())
	c, _ = back.ColorAt(1, 0)
	assert.Equal(t, blue, c)
}

func TestEncode_Failures(t *testing.T) {
	im, _ := trueColor(t, 2, 2)
	requireImageError(t, im.PNG(&bytes.Buffer{}, call.Some(10)), code.Invalid, "png")
	requireImageError(t, im.JPEG(&bytes.Buffer{}, call.Some(101)), code.Invalid, "jpeg")

	e := requireImageError(t, im.PNG(failingWriter{}, call.Opt[int]{}), code.IOFailure, "png")
	assert.ErrorIs(t, e.Cause, errDiskFull)

	empty, _ := Create(2, 2, env())
	requireImageError(t, empty.GIF(&bytes.Buffer{}), code.Invalid, "gif")

	_, err := CreateFromBytes([]byte("not an image"), env())
	e = requireImageError(t, err, code.Invalid, "create_from_string")
	assert.ErrorIs(t, e.Cause, image.ErrFormat)
	_, err = CreateFromBytes(nil, env())
	requireImageError(t, err, code.Invalid, "create_from_string")
}

func TestDestroy(t *testing.T) {
	im, _ := trueColor(t, 2, 2)
	require.NoError(t, im.Destroy())

	requireImageError(t, im.Destroy(), code.BadHandle, "destroy")
	_, err := im.ColorAt(0, 0)
	requireImageError(t, err, code.BadHandle, "color_at")

	dst, _ := trueColor(t, 2, 2)
	requireImageError(t, dst.Copy(im, 0, 0, 0, 0, 1, 1), code.BadHandle, "copy")
}

var errDiskFull = errors.New("disk full")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }
