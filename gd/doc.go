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

// Package gd is a raster image toolkit in the GD style, bound to the
// safecall convention.
//
// Images are either palette images (Create), whose colors are palette
// indices starting at 0, or true-color images (CreateTrueColor), whose
// colors are packed 0xAARRGGBB values. Color lookups and allocations
// return -1 from the native layer on failure, which the wrappers turn
// into a *safecall.ImageError; 0 is a valid color. Decoding covers PNG,
// JPEG and GIF from the standard library plus BMP and WebP from
// golang.org/x/image.
package gd
