// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"welder-cli/internal/config"
	"welder-cli/internal/discovery"
	"welder-cli/internal/raster"
)

// BuildOptions are the per-invocation switches of the build command.
// Profile selection and --res overrides are resolved into cfg before
// the pipeline runs; the orchestrator only sees final values.
type BuildOptions struct {
	// Clean removes the prior export tree before the first write.
	Clean bool
	// DryRun computes and reports the output path set without touching
	// the filesystem. Discovery and decode still run, so a dry run
	// surfaces the same errors a real run would.
	DryRun bool
}

// BuildResult reports what an export run produced (or, for a dry run,
// would produce).
type BuildResult struct {
	// Assets is the canonical sorted list of discovered source paths.
	Assets []string
	// Files is the ordered output path list: tier-major ascending, then
	// asset order. Identical between dry and real runs.
	Files []string
	// DryRun records whether the files were actually written.
	DryRun bool
}

// Build runs the export pipeline: discover sources, decode them once,
// then resample and write every (asset, tier) pair in ascending tier
// order. Exports never pass through the watermark path — nothing in
// this file can reach it.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*BuildResult, error) {
	inputRoot := cfg.Paths.Input
	exportRoot := filepath.Join(cfg.Paths.Dist, cfg.Paths.Exports)
	tiers := cfg.Build.Resolutions

	if opts.Clean && !opts.DryRun {
		logger.Debug("clearing export tree", "dir", exportRoot)
		if err := os.RemoveAll(exportRoot); err != nil {
			return nil, &WriteError{Path: exportRoot, Cause: err}
		}
	}

	rels, err := discovery.Discover(inputRoot, cfg.Inputs.Include, cfg.Inputs.Exclude)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered assets", "count", len(rels))

	files := ExportPaths(exportRoot, rels, tiers)

	// Decode even on a dry run so corrupt sources fail either way.
	sources, err := decodeAssets(ctx, inputRoot, rels, cfg.Build.TrimTransparent)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return &BuildResult{Assets: rels, Files: files, DryRun: true}, nil
	}

	// Tiers are written in ascending order; within a tier the writes are
	// independent and run in parallel. File contents and paths depend
	// only on (asset, tier), so completion order is irrelevant.
	for _, tier := range tiers {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, rel := range rels {
			g.Go(func() error {
				scaled, err := raster.Scale(sources[i], tier)
				if err != nil {
					return err
				}
				out := filepath.Join(exportRoot, filepath.FromSlash(ExportRelPath(rel, tier)))
				if err := writeAtomicPNG(out, scaled); err != nil {
					return err
				}
				logger.Debug("wrote export", "asset", rel, "tier", tier)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &BuildResult{Assets: rels, Files: files, DryRun: false}, nil
}
