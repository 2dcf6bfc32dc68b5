// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"welder-cli/internal/config"
	"welder-cli/internal/pipeline"
)

var (
	buildProfile string
	buildRes     string
	buildClean   bool
	buildDryRun  bool

	// buildCmd exports every source asset at every configured tier.
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build scaled exports into dist/",
		Long: `Export every source asset at every configured resolution tier.

Tiers are written in ascending order under dist/exports/<tier>x/,
mirroring the source directory structure. Exports are never watermarked.

Examples:
  welder build
  welder build --res 1,2,4 --clean
  welder build --dry-run`,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVar(&buildProfile, "profile", "default", "config profile to apply")
	buildCmd.Flags().StringVar(&buildRes, "res", "", "override resolutions (comma-separated integers)")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "delete the prior export tree before building")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "report the output plan without writing files")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(buildProfile)
	if err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}

	if buildRes != "" {
		resolutions, err := parseResolutions(buildRes)
		if err != nil {
			return err
		}
		cfg.Build.Resolutions = resolutions
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	result, err := pipeline.Build(cmd.Context(), cfg, pipeline.BuildOptions{
		Clean:  buildClean,
		DryRun: buildDryRun,
	})
	if err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}

	out := cmd.OutOrStdout()
	if result.DryRun {
		fmt.Fprintln(out, TitleStyle.Render("Dry Run"))
		fmt.Fprintf(out, "  %d assets, %d tiers, %d planned files:\n",
			len(result.Assets), len(cfg.Build.Resolutions), len(result.Files))
		for _, f := range result.Files {
			fmt.Fprintf(out, "    %s\n", ValueStyle.Render(f))
		}
		return nil
	}

	fmt.Fprintf(out, "%s Exported %d files (%d assets × %d tiers)\n",
		SuccessStyle.Render("✓"), len(result.Files), len(result.Assets), len(cfg.Build.Resolutions))
	return nil
}

// parseResolutions parses the --res override ("1,2,4") into tier values.
func parseResolutions(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	resolutions := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("--res value %q is not an integer", part)
		}
		resolutions = append(resolutions, n)
	}
	return resolutions, nil
}
