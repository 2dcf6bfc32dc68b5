// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"welder-cli/internal/config"
	"welder-cli/internal/pipeline"
)

var (
	previewProfile string
	previewStyle   string
	previewDryRun  bool

	// previewCmd renders the store-preview composites.
	previewCmd = &cobra.Command{
		Use:   "preview",
		Short: "Generate preview composites (sheet/grid)",
		Long: `Render store-preview composites into dist/previews/.

The sheet style shelf-packs all assets into one sprite sheet; the grid
style places them into fixed-size cells. Previews carry the configured
watermark when enabled; exports never do.

Examples:
  welder preview
  welder preview --style sheet
  welder preview --style both --dry-run`,
		RunE: runPreview,
	}
)

func init() {
	previewCmd.Flags().StringVar(&previewProfile, "profile", "default", "config profile to apply")
	previewCmd.Flags().StringVar(&previewStyle, "style", "both", "preview style: sheet, grid, or both")
	previewCmd.Flags().BoolVar(&previewDryRun, "dry-run", false, "plan layouts without writing files")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(previewProfile)
	if err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}

	styles, err := resolveStyles(previewStyle, cfg)
	if err != nil {
		return err
	}

	result, err := pipeline.Preview(cmd.Context(), cfg, pipeline.PreviewOptions{
		Styles: styles,
		DryRun: previewDryRun,
	})
	if err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}

	out := cmd.OutOrStdout()
	for _, warning := range result.Diagnostics {
		fmt.Fprintf(out, "%s %s\n", WarningStyle.Render("!"), warning)
	}

	if result.DryRun {
		fmt.Fprintln(out, TitleStyle.Render("Dry Run"))
		for _, f := range result.Files {
			fmt.Fprintf(out, "  %s\n", ValueStyle.Render(f))
		}
		for _, style := range styles {
			if c, ok := result.Canvases[style]; ok {
				fmt.Fprintf(out, "  %s canvas: %s\n", style, ValueStyle.Render(fmt.Sprintf("%dx%d", c.Width, c.Height)))
			}
		}
		return nil
	}

	fmt.Fprintf(out, "%s Wrote %d preview file(s) for %d asset(s)\n",
		SuccessStyle.Render("✓"), len(result.Files), len(result.Assets))
	return nil
}

// resolveStyles maps the --style flag onto the configured style list.
func resolveStyles(flag string, cfg *config.Config) ([]string, error) {
	switch flag {
	case "both", "":
		return cfg.Preview.Styles, nil
	case config.StyleSheet, config.StyleGrid:
		return []string{flag}, nil
	}
	return nil, fmt.Errorf("--style must be sheet, grid, or both (got %q)", flag)
}
