// SPDX-License-Identifier: MPL-2.0

// Package pipeline sequences discovery, resampling, layout, compositing
// and filesystem writes for the build and preview commands.
//
// Everything that decides output content or ordering is derived from the
// canonical sorted asset list and the validated configuration — never
// from traversal order, wall clock, or goroutine scheduling. Given
// identical sources and configuration, two runs produce byte-identical
// files.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"welder-cli/internal/raster"
)

// logger reports pipeline progress on stderr; Debug level is gated
// behind SetVerbose so default runs stay quiet.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "welder",
})

// SetVerbose switches the pipeline logger to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// decodeAssets reads and decodes every discovered asset in parallel,
// optionally trimming transparent borders. The result slice is indexed
// by the canonical sort order of rels, so concurrency never leaks into
// downstream ordering; the returned slice is the synchronization barrier
// the layout stage waits on.
func decodeAssets(ctx context.Context, inputRoot string, rels []string, trim bool) ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, len(rels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rel := range rels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(inputRoot, filepath.FromSlash(rel)))
			if err != nil {
				return fmt.Errorf("read source %s: %w", rel, err)
			}
			img, err := raster.Decode(rel, data)
			if err != nil {
				return err
			}
			if trim {
				img = raster.Trim(img)
			}
			out[i] = img
			logger.Debug("decoded", "asset", rel,
				"size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
