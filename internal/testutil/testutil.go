// SPDX-License-Identifier: MPL-2.0

// Package testutil provides shared fixtures for pipeline tests: tiny
// PNG sources written to disk and in-memory raster builders.
package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Solid returns a w×h buffer filled with one color.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// WritePNG encodes img to root/rel (slash-separated), creating parent
// directories as needed.
func WritePNG(t *testing.T, root, rel string, img image.Image) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(full)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return full
}

// WriteSolidPNG writes a w×h single-color PNG source asset.
func WriteSolidPNG(t *testing.T, root, rel string, w, h int, c color.NRGBA) string {
	t.Helper()
	return WritePNG(t, root, rel, Solid(w, h, c))
}

// ReadPNG decodes an output file back into a raster for assertions.
func ReadPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}
