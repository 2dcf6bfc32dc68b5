// SPDX-License-Identifier: MPL-2.0

// Package raster provides the pixel-level operations of the pipeline:
// decoding source images, trimming transparent borders, and
// nearest-neighbor magnification.
//
// Every function here is pure with respect to the filesystem — callers
// hand in bytes or buffers and get buffers back. All buffers are
// straight-alpha RGBA (image.NRGBA), 8 bits per channel, which is the
// only raster format the pipeline supports.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// DecodeError is returned when source bytes are not a valid raster of
// the supported format (PNG, 8-bit-per-channel, RGBA-representable).
type DecodeError struct {
	// Path identifies the source asset the bytes came from.
	Path string
	// Cause is the underlying codec error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("decode %s: unsupported image data", e.Path)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *DecodeError) Unwrap() error { return e.Cause }

// Decode parses PNG bytes into a straight-alpha RGBA buffer. The path is
// carried only for error attribution; Decode performs no I/O.
func Decode(path string, data []byte) (*image.NRGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Path: path, Cause: err}
	}
	return toNRGBA(img), nil
}

// toNRGBA normalizes any decoded image into a zero-origin NRGBA buffer.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Trim crops src to the minimal bounding box of its non-fully-transparent
// pixels. A fully transparent image trims to a defined 1×1 transparent
// raster rather than an error, so downstream layout always has a
// positive-area item to place.
func Trim(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, y) : src.PixOffset(b.Max.X, y) : src.PixOffset(b.Max.X, y)]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			px := b.Min.X + x
			if px < minX {
				minX = px
			}
			if px+1 > maxX {
				maxX = px + 1
			}
			if y < minY {
				minY = y
			}
			if y+1 > maxY {
				maxY = y + 1
			}
		}
	}

	if minX >= maxX || minY >= maxY {
		// Entirely transparent.
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}

	box := image.Rect(minX, minY, maxX, maxY)
	dst := image.NewNRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(dst, dst.Bounds(), src, box.Min, draw.Src)
	return dst
}

// Scale magnifies src by an integer factor using nearest-neighbor
// sampling: each destination pixel copies the source pixel at
// (x/factor, y/factor). Nearest-neighbor is the only filter the pipeline
// supports; anything that interpolates would smear pixel-art edges.
// Factors below 1 are rejected.
func Scale(src *image.NRGBA, factor int) (*image.NRGBA, error) {
	if factor < 1 {
		return nil, fmt.Errorf("scale factor must be >= 1, got %d", factor)
	}
	b := src.Bounds()
	if factor == 1 {
		// Identity, but still a fresh buffer so callers can't alias the source.
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		copy(dst.Pix, src.Pix)
		return dst, nil
	}

	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w*factor, h*factor))
	for dy := 0; dy < h*factor; dy++ {
		sy := dy / factor
		srcRow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+sy):]
		dstRow := dst.Pix[dst.PixOffset(0, dy):]
		for dx := 0; dx < w*factor; dx++ {
			sx := dx / factor
			copy(dstRow[dx*4:dx*4+4], srcRow[sx*4:sx*4+4])
		}
	}
	return dst, nil
}
