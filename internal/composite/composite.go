// SPDX-License-Identifier: MPL-2.0

// Package composite renders layout plans into single output rasters and
// applies the preview watermark.
//
// Watermarking is deliberately only reachable through the Preview type:
// the export path hands around bare *image.NRGBA buffers and has no way
// to call into the watermark code. That keeps "exports are never
// watermarked" a property of the type graph instead of a convention.
package composite

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"welder-cli/internal/layout"
)

// MaxCanvasPixels bounds composite allocations. 64 megapixels is a
// 256 MiB RGBA buffer, far beyond any sane store preview.
const MaxCanvasPixels = 64 << 20

// CanvasSizeError is returned when a plan's canvas exceeds the
// implementation ceiling.
type CanvasSizeError struct {
	Width  int
	Height int
}

// Error implements the error interface.
func (e *CanvasSizeError) Error() string {
	return fmt.Sprintf("canvas %dx%d exceeds the %d-pixel ceiling", e.Width, e.Height, MaxCanvasPixels)
}

// Anchor is one of the five fixed watermark positions.
type Anchor string

const (
	AnchorTopLeft     Anchor = "tl"
	AnchorTopRight    Anchor = "tr"
	AnchorBottomLeft  Anchor = "bl"
	AnchorBottomRight Anchor = "br"
	AnchorCenter      Anchor = "center"
)

// IsValid reports whether the anchor is one of the five supported positions.
func (a Anchor) IsValid() bool {
	switch a {
	case AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight, AnchorCenter:
		return true
	}
	return false
}

// Watermark describes the translucent text overlay for previews.
type Watermark struct {
	Enabled  bool
	Text     string
	Opacity  float64 // [0,1]
	Position Anchor
	MarginPx int
}

// Render draws every placement of the plan onto a fresh canvas filled
// with the background color. Rasters are alpha-composited in placement
// order, not overwritten, so transparent sprite borders blend correctly.
func Render(plan *layout.Plan, rasters map[string]*image.NRGBA, background color.NRGBA) (*image.NRGBA, error) {
	if plan.Width <= 0 || plan.Height <= 0 {
		// Degenerate plan (no assets): a 1x1 background-only canvas keeps
		// the output contract intact without special-casing callers.
		canvas := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		canvas.SetNRGBA(0, 0, background)
		return canvas, nil
	}
	if plan.Width*plan.Height > MaxCanvasPixels {
		return nil, &CanvasSizeError{Width: plan.Width, Height: plan.Height}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for _, p := range plan.Placements {
		src, ok := rasters[p.ID]
		if !ok {
			return nil, fmt.Errorf("plan references unknown raster %q", p.ID)
		}
		rect := image.Rect(p.X, p.Y, p.X+p.W, p.Y+p.H)
		draw.Draw(canvas, rect, src, src.Bounds().Min, draw.Over)
	}
	return canvas, nil
}

// Preview wraps a composited canvas destined for dist/previews. It is
// the only type with a watermark entry point.
type Preview struct {
	canvas *image.NRGBA
}

// NewPreview takes ownership of a composited canvas for preview output.
func NewPreview(canvas *image.NRGBA) *Preview {
	return &Preview{canvas: canvas}
}

// Image returns the (possibly watermarked) preview raster.
func (p *Preview) Image() *image.NRGBA {
	return p.canvas
}

// ApplyWatermark blends the watermark text over the canvas with straight
// alpha at the configured opacity. Disabled or empty specs are no-ops.
func (p *Preview) ApplyWatermark(spec Watermark) {
	if !spec.Enabled || spec.Text == "" || spec.Opacity <= 0 {
		return
	}

	face := basicfont.Face7x13
	textW := font.MeasureString(face, spec.Text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	textH := ascent + metrics.Descent.Ceil()

	b := p.canvas.Bounds()
	x, y := anchorOrigin(spec.Position, b.Dx(), b.Dy(), textW, textH, spec.MarginPx)

	alpha := uint8(spec.Opacity*255 + 0.5)
	drawer := &font.Drawer{
		Dst:  p.canvas,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: alpha}),
		Face: face,
		Dot:  fixed.P(x, y+ascent),
	}
	drawer.DrawString(spec.Text)
}

// anchorOrigin computes the top-left corner of the text box for an
// anchor, offset inward by margin and clamped to the canvas.
func anchorOrigin(anchor Anchor, canvasW, canvasH, textW, textH, margin int) (int, int) {
	var x, y int
	switch anchor {
	case AnchorTopLeft:
		x, y = margin, margin
	case AnchorTopRight:
		x, y = canvasW-textW-margin, margin
	case AnchorBottomLeft:
		x, y = margin, canvasH-textH-margin
	case AnchorCenter:
		x, y = (canvasW-textW)/2, (canvasH-textH)/2
	default: // AnchorBottomRight
		x, y = canvasW-textW-margin, canvasH-textH-margin
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
