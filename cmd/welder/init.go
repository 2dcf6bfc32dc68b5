// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"welder-cli/internal/config"
)

var (
	initName   string
	initAuthor string
	initBrand  string
	initInput  string
	initYes    bool
	initForce  bool

	// initCmd scaffolds welder.toml and the project directories.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Scaffold welder.toml and project folders",
		Long: `Create a welder.toml in the current directory along with the input
and dist directories.

The generated file documents every default; edit it to fit your pack.

Examples:
  welder init --name "Dungeon Pack" --author pixelsmith
  welder init --yes`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "pack name")
	initCmd.Flags().StringVar(&initAuthor, "author", "", "pack author (itch.io username)")
	initCmd.Flags().StringVar(&initBrand, "brand", "", "brand or studio name")
	initCmd.Flags().StringVar(&initInput, "input", "src", "input directory for source images")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept defaults for unset values")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing welder.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists. Use --force to overwrite", cfgFile)
	}
	if initName == "" && !initYes {
		return fmt.Errorf("provide --name, or --yes to accept defaults")
	}

	cfg := config.Default()
	if initName != "" {
		cfg.Pack.Name = initName
		cfg.Pack.Slug = slugify(initName)
	}
	cfg.Pack.Author = initAuthor
	cfg.Pack.Brand = initBrand
	cfg.Paths.Input = initInput

	if err := config.Validate(cfg); err != nil {
		return err
	}

	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if err := os.WriteFile(cfgFile, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfgFile, err)
	}

	for _, dir := range []string{cfg.Paths.Input, cfg.Paths.Dist} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	out := cmd.OutOrStdout()
	absPath, _ := filepath.Abs(cfgFile)
	fmt.Fprintf(out, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintf(out, "  1. Drop your .png sources under %s/\n", cfg.Paths.Input)
	fmt.Fprintln(out, "  2. Run 'welder build' to export scale tiers")
	fmt.Fprintln(out, "  3. Run 'welder preview' to render store composites")
	return nil
}

// slugify lowercases a pack name and replaces runs of non-alphanumerics
// with single hyphens.
func slugify(name string) string {
	var b []rune
	lastHyphen := true
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			b = append(b, r+('a'-'A'))
			lastHyphen = false
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b = append(b, r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b = append(b, '-')
				lastHyphen = true
			}
		}
	}
	for len(b) > 0 && b[len(b)-1] == '-' {
		b = b[:len(b)-1]
	}
	if len(b) == 0 {
		return "asset-pack"
	}
	return string(b)
}
