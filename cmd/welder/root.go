// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"welder-cli/internal/config"
	"welder-cli/internal/pipeline"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	// workDir switches the project directory before any command runs.
	workDir string
	// cfgFile is the config file path, relative to the project directory.
	cfgFile string
	// verbose enables debug-level pipeline logging.
	verbose bool

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "welder",
		Short: "Turn raw pixel art into ship-ready asset packs",
		Long: TitleStyle.Render("welder") + SubtitleStyle.Render(" - deterministic pixel-art asset pipelines") + `

welder reads a directory of pixel-art sources and produces a versioned
asset pack: nearest-neighbor scaled export tiers, sprite-sheet and grid
preview composites, and a zip archive ready for the store page.

Identical sources plus identical configuration always produce
byte-identical output files.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'welder init' to scaffold welder.toml and the src/ directory
  2. Drop your .png sources under src/
  3. Run 'welder build' and 'welder preview'

` + SubtitleStyle.Render("Examples:") + `
  welder build --res 1,2,4       Export three scale tiers into dist/
  welder preview --style sheet   Render only the sprite-sheet preview
  welder package                 Zip dist/exports into dist/package/
  welder publish --channel beta  Push the archive to itch.io via butler`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if workDir != "." {
				if err := os.Chdir(workDir); err != nil {
					return fmt.Errorf("change to project directory %s: %w", workDir, err)
				}
			}
			pipeline.SetVerbose(verbose)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDir, "cwd", "C", ".", "project directory to operate in")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(publishCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Execute runs the root command. It is called once from main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// loadProjectConfig loads welder.toml and applies the selected profile.
func loadProjectConfig(profile string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyProfile(cfg, profile); err != nil {
		return nil, err
	}
	return cfg, nil
}
