// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"welder-cli/internal/pack"
)

var (
	packageProfile         string
	packageOut             string
	packageIncludePreviews bool

	// packageCmd archives the built outputs into a versioned zip.
	packageCmd = &cobra.Command{
		Use:   "package",
		Short: "Create a versioned zip in dist/package/",
		Long: `Archive the export tree into dist/package/<slug>-v<version>.zip.

Packaging never regenerates pixels; it serializes exactly what build
(and, with --include-previews, preview) already wrote. Identical trees
produce byte-identical archives.

Examples:
  welder package
  welder package --include-previews
  welder package --out ./dungeon-pack.zip`,
		RunE: runPackage,
	}
)

func init() {
	packageCmd.Flags().StringVar(&packageProfile, "profile", "default", "config profile to apply")
	packageCmd.Flags().StringVar(&packageOut, "out", "", "output path for the zip (default: dist/package/<slug>-v<version>.zip)")
	packageCmd.Flags().BoolVar(&packageIncludePreviews, "include-previews", false, "also archive dist/previews")
}

func runPackage(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(packageProfile)
	if err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}

	outPath := packageOut
	if outPath == "" {
		outPath = filepath.Join(cfg.Paths.Dist, cfg.Paths.Package,
			pack.DefaultArchiveName(cfg.Pack.Slug, cfg.Pack.Version))
	}

	result, err := pack.Archive(cfg.Paths.Dist, cfg.Paths.Exports, cfg.Paths.Previews, outPath, packageIncludePreviews)
	if err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}

	exports, previews := 0, 0
	for _, entry := range result.Entries {
		if pack.EntryUnder(entry, cfg.Paths.Exports) {
			exports++
		} else if pack.EntryUnder(entry, cfg.Paths.Previews) {
			previews++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Packaged %s\n", SuccessStyle.Render("✓"), ValueStyle.Render(result.Path))
	fmt.Fprintf(out, "  %d export file(s), %d preview file(s)\n", exports, previews)
	return nil
}
