// SPDX-License-Identifier: MPL-2.0

package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// encodePNG is a test helper that serializes an image to PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_ValidPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 10, B: 30, A: 255})

	got, err := Decode("a.png", encodePNG(t, src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Errorf("Decode() bounds = %v, want 3x2", got.Bounds())
	}
	if got.NRGBAAt(1, 1) != (color.NRGBA{R: 200, G: 10, B: 30, A: 255}) {
		t.Errorf("Decode() pixel (1,1) = %v", got.NRGBAAt(1, 1))
	}
}

func TestDecode_InvalidBytes(t *testing.T) {
	_, err := Decode("broken.png", []byte("not a png at all"))
	if err == nil {
		t.Fatal("Decode() expected error for invalid bytes")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Decode() error type = %T, want *DecodeError", err)
	}
	if decodeErr.Path != "broken.png" {
		t.Errorf("DecodeError.Path = %q, want broken.png", decodeErr.Path)
	}
}

func TestDecode_NonZeroOriginNormalized(t *testing.T) {
	// Decoders may hand back sub-images with shifted bounds; the pipeline
	// requires zero-origin buffers.
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	sub := src.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)

	got, err := Decode("sub.png", encodePNG(t, sub))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Bounds().Min != (image.Point{}) {
		t.Errorf("Decode() origin = %v, want (0,0)", got.Bounds().Min)
	}
}

func TestTrim_CropsToOpaqueBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	src.SetNRGBA(2, 3, color.NRGBA{R: 1, A: 255})
	src.SetNRGBA(5, 6, color.NRGBA{G: 1, A: 128})

	got := Trim(src)
	if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 4 {
		t.Fatalf("Trim() size = %dx%d, want 4x4", got.Bounds().Dx(), got.Bounds().Dy())
	}
	if got.NRGBAAt(0, 0) != (color.NRGBA{R: 1, A: 255}) {
		t.Errorf("Trim() corner pixel = %v", got.NRGBAAt(0, 0))
	}
	if got.NRGBAAt(3, 3) != (color.NRGBA{G: 1, A: 128}) {
		t.Errorf("Trim() far corner pixel = %v", got.NRGBAAt(3, 3))
	}
}

func TestTrim_FullyTransparent(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))

	got := Trim(src)
	if got.Bounds().Dx() != 1 || got.Bounds().Dy() != 1 {
		t.Fatalf("Trim() fully transparent = %dx%d, want 1x1", got.Bounds().Dx(), got.Bounds().Dy())
	}
	if got.NRGBAAt(0, 0).A != 0 {
		t.Errorf("Trim() 1x1 result should stay transparent, got %v", got.NRGBAAt(0, 0))
	}
}

func TestTrim_OpaqueImageUnchanged(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 7))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}

	got := Trim(src)
	if got.Bounds().Dx() != 5 || got.Bounds().Dy() != 7 {
		t.Errorf("Trim() opaque image resized to %v", got.Bounds())
	}
}

func TestScale_Exactness(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		factor int
	}{
		{"1x identity", 16, 16, 1},
		{"2x", 16, 16, 2},
		{"4x", 16, 16, 4},
		{"3x non-square", 5, 9, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			got, err := Scale(src, tt.factor)
			if err != nil {
				t.Fatalf("Scale() error = %v", err)
			}
			if got.Bounds().Dx() != tt.w*tt.factor || got.Bounds().Dy() != tt.h*tt.factor {
				t.Errorf("Scale() = %dx%d, want %dx%d",
					got.Bounds().Dx(), got.Bounds().Dy(), tt.w*tt.factor, tt.h*tt.factor)
			}
		})
	}
}

func TestScale_NearestNeighborBlocks(t *testing.T) {
	// A 2x2 checker scaled 3x must become 3x3 blocks with hard edges.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, blue)
	src.SetNRGBA(0, 1, blue)
	src.SetNRGBA(1, 1, red)

	got, err := Scale(src, 3)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			want := red
			if (x/3)^(y/3) == 1 {
				want = blue
			}
			if got.NRGBAAt(x, y) != want {
				t.Fatalf("Scale() pixel (%d,%d) = %v, want %v", x, y, got.NRGBAAt(x, y), want)
			}
		}
	}
}

func TestScale_IdentityIsPixelExactCopy(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 2, color.NRGBA{R: 9, G: 8, B: 7, A: 6})

	got, err := Scale(src, 1)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Error("Scale(1) must be pixel-identical to the source")
	}
	got.SetNRGBA(0, 0, color.NRGBA{A: 1})
	if src.NRGBAAt(0, 0).A != 0 {
		t.Error("Scale(1) must not alias the source buffer")
	}
}

func TestScale_RejectsFactorBelowOne(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for _, f := range []int{0, -1} {
		if _, err := Scale(src, f); err == nil {
			t.Errorf("Scale(%d) expected error", f)
		}
	}
}
