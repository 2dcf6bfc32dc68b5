// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"welder-cli/internal/composite"
	"welder-cli/internal/config"
	"welder-cli/internal/discovery"
	"welder-cli/internal/layout"
	"welder-cli/internal/raster"
)

// PreviewOptions are the per-invocation switches of the preview command.
type PreviewOptions struct {
	// Styles is the resolved style list ("sheet", "grid"). Empty means
	// the configured preview.styles.
	Styles []string
	// DryRun stops after layout planning, reporting planned canvas
	// dimensions and output paths without compositing or writing.
	DryRun bool
}

// CanvasInfo is the planned size of one preview composite.
type CanvasInfo struct {
	Width  int
	Height int
}

// PreviewResult reports what a preview run produced (or planned).
type PreviewResult struct {
	// Assets is the canonical sorted list of discovered source paths.
	Assets []string
	// Files is the ordered output path list, sheet before grid.
	Files []string
	// Canvases maps style name to its planned canvas size.
	Canvases map[string]CanvasInfo
	// Diagnostics carries non-fatal layout warnings (grid cell overflow).
	Diagnostics []string
	// DryRun records whether the files were actually written.
	DryRun bool
}

// previewStyleOrder fixes the processing order when multiple styles run
// in one invocation.
var previewStyleOrder = []string{config.StyleSheet, config.StyleGrid}

// Preview runs the preview pipeline once per requested style: discover,
// decode, resample at preview scale, plan the layout, composite, apply
// the watermark, write. This is the only code path that can reach the
// watermark.
func Preview(ctx context.Context, cfg *config.Config, opts PreviewOptions) (*PreviewResult, error) {
	styles := opts.Styles
	if len(styles) == 0 {
		styles = cfg.Preview.Styles
	}
	requested := make(map[string]bool, len(styles))
	for _, s := range styles {
		requested[s] = true
	}

	inputRoot := cfg.Paths.Input
	previewRoot := filepath.Join(cfg.Paths.Dist, cfg.Paths.Previews)

	background, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}

	rels, err := discovery.Discover(inputRoot, cfg.Inputs.Include, cfg.Inputs.Exclude)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered assets", "count", len(rels))

	sources, err := decodeAssets(ctx, inputRoot, rels, cfg.Build.TrimTransparent)
	if err != nil {
		return nil, err
	}

	// Resample once at the preview scale; both styles share the rasters.
	scaled := make(map[string]*image.NRGBA, len(rels))
	items := make([]layout.Item, len(rels))
	for i, rel := range rels {
		img, err := raster.Scale(sources[i], cfg.Preview.Scale)
		if err != nil {
			return nil, err
		}
		scaled[rel] = img
		items[i] = layout.Item{ID: rel, W: img.Bounds().Dx(), H: img.Bounds().Dy()}
	}

	result := &PreviewResult{
		Assets:   rels,
		Canvases: make(map[string]CanvasInfo, len(requested)),
		DryRun:   opts.DryRun,
	}

	for _, style := range previewStyleOrder {
		if !requested[style] {
			continue
		}

		var plan *layout.Plan
		switch style {
		case config.StyleSheet:
			plan, err = layout.PlanSheet(items, layout.SheetConstraints{
				MaxWidth:  cfg.Sheet.MaxWidth,
				MaxHeight: cfg.Sheet.MaxHeight,
				Padding:   cfg.Sheet.PaddingPx,
				Sort:      layout.SortKey(cfg.Sheet.Sort),
			})
			if err != nil {
				return nil, err
			}
		case config.StyleGrid:
			plan = layout.PlanGrid(items, layout.GridConstraints{
				CellPx:  cfg.Grid.CellPx,
				Padding: cfg.Grid.PaddingPx,
				Columns: cfg.Grid.Columns,
			})
			result.Diagnostics = append(result.Diagnostics, plan.Diagnostics...)
		}

		out := PreviewPath(previewRoot, style)
		result.Files = append(result.Files, out)
		result.Canvases[style] = CanvasInfo{Width: plan.Width, Height: plan.Height}
		logger.Debug("planned layout", "style", style,
			"canvas", fmt.Sprintf("%dx%d", plan.Width, plan.Height),
			"items", len(plan.Placements))

		if opts.DryRun {
			continue
		}

		canvas, err := composite.Render(plan, scaled, background)
		if err != nil {
			return nil, err
		}

		preview := composite.NewPreview(canvas)
		wm := cfg.Preview.Watermark
		preview.ApplyWatermark(composite.Watermark{
			Enabled:  wm.Enabled,
			Text:     wm.Text,
			Opacity:  wm.Opacity,
			Position: composite.Anchor(wm.Position),
			MarginPx: wm.MarginPx,
		})

		if err := writeAtomicPNG(out, preview.Image()); err != nil {
			return nil, err
		}
		logger.Debug("wrote preview", "style", style)
	}

	return result, nil
}
