// SPDX-License-Identifier: MPL-2.0

// Package config owns the welder.toml contract: schema types, defaults,
// loading, profile overlays, and validation. Everything downstream of
// this package receives an already-validated *Config.
package config

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"

	"welder-cli/internal/composite"
	"welder-cli/internal/discovery"
	"welder-cli/internal/issue"
	"welder-cli/internal/layout"
)

// DefaultFileName is the config file welder looks for in the project root.
const DefaultFileName = "welder.toml"

// Load reads and validates a welder.toml. Values omitted from the file
// fall back to Default(). The returned config has not had any profile
// applied yet; see ApplyProfile.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Run 'welder init' to scaffold a new project").
			WithSuggestion("Use --config to point at a config file elsewhere").
			Wrap(err).
			BuildError()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse configuration").
			WithResource(path).
			WithSuggestion("Check the file contains valid TOML syntax").
			Wrap(err).
			BuildError()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse configuration").
			WithResource(path).
			WithSuggestion("Verify the configuration values match the expected schema").
			Wrap(err).
			BuildError()
	}

	if err := Validate(cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			Wrap(err).
			BuildError()
	}
	return cfg, nil
}

// setDefaults registers every schema default so partial files resolve to
// the same document Default() describes.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("pack.name", d.Pack.Name)
	v.SetDefault("pack.slug", d.Pack.Slug)
	v.SetDefault("pack.author", d.Pack.Author)
	v.SetDefault("pack.brand", d.Pack.Brand)
	v.SetDefault("pack.license", d.Pack.License)
	v.SetDefault("pack.version", d.Pack.Version)

	v.SetDefault("paths.input", d.Paths.Input)
	v.SetDefault("paths.dist", d.Paths.Dist)
	v.SetDefault("paths.previews", d.Paths.Previews)
	v.SetDefault("paths.exports", d.Paths.Exports)
	v.SetDefault("paths.sheets", d.Paths.Sheets)
	v.SetDefault("paths.package", d.Paths.Package)

	v.SetDefault("inputs.include", d.Inputs.Include)
	v.SetDefault("inputs.exclude", d.Inputs.Exclude)

	v.SetDefault("build.resolutions", d.Build.Resolutions)
	v.SetDefault("build.filter", d.Build.Filter)
	v.SetDefault("build.trim_transparent", d.Build.TrimTransparent)

	v.SetDefault("preview.styles", d.Preview.Styles)
	v.SetDefault("preview.background", d.Preview.Background)
	v.SetDefault("preview.scale", d.Preview.Scale)
	v.SetDefault("preview.watermark.enabled", d.Preview.Watermark.Enabled)
	v.SetDefault("preview.watermark.text", d.Preview.Watermark.Text)
	v.SetDefault("preview.watermark.opacity", d.Preview.Watermark.Opacity)
	v.SetDefault("preview.watermark.position", d.Preview.Watermark.Position)
	v.SetDefault("preview.watermark.margin_px", d.Preview.Watermark.MarginPx)

	v.SetDefault("sheet.max_width", d.Sheet.MaxWidth)
	v.SetDefault("sheet.max_height", d.Sheet.MaxHeight)
	v.SetDefault("sheet.padding_px", d.Sheet.PaddingPx)
	v.SetDefault("sheet.sort", d.Sheet.Sort)

	v.SetDefault("grid.cell_px", d.Grid.CellPx)
	v.SetDefault("grid.padding_px", d.Grid.PaddingPx)
	v.SetDefault("grid.columns", d.Grid.Columns)
}

// Validate checks every closed-set and range constraint of the schema.
// It normalizes build.resolutions to ascending order as a side effect.
func Validate(cfg *Config) error {
	if cfg.Pack.Slug == "" {
		return fmt.Errorf("pack.slug must not be empty")
	}
	for _, r := range cfg.Pack.Slug {
		if r == '/' || r == '\\' || r == ' ' {
			return fmt.Errorf("pack.slug %q must not contain path separators or spaces", cfg.Pack.Slug)
		}
	}
	if _, err := semver.NewVersion(cfg.Pack.Version); err != nil {
		return fmt.Errorf("pack.version %q is not valid semver: %w", cfg.Pack.Version, err)
	}

	if len(cfg.Inputs.Include) == 0 {
		return fmt.Errorf("inputs.include must list at least one pattern")
	}
	if err := discovery.ValidatePatterns(cfg.Inputs.Include); err != nil {
		return fmt.Errorf("inputs.include: %w", err)
	}
	if err := discovery.ValidatePatterns(cfg.Inputs.Exclude); err != nil {
		return fmt.Errorf("inputs.exclude: %w", err)
	}

	if len(cfg.Build.Resolutions) == 0 {
		return fmt.Errorf("build.resolutions must list at least one tier")
	}
	for _, res := range cfg.Build.Resolutions {
		if res < 1 {
			return fmt.Errorf("build.resolutions entry %d must be a positive integer", res)
		}
	}
	sort.Ints(cfg.Build.Resolutions)
	if hasDuplicates(cfg.Build.Resolutions) {
		return fmt.Errorf("build.resolutions must not repeat tiers: %v", cfg.Build.Resolutions)
	}
	if cfg.Build.Filter != FilterNearest {
		return fmt.Errorf("build.filter %q is not supported (only %q)", cfg.Build.Filter, FilterNearest)
	}

	if len(cfg.Preview.Styles) == 0 {
		return fmt.Errorf("preview.styles must list at least one style")
	}
	for _, s := range cfg.Preview.Styles {
		if s != StyleSheet && s != StyleGrid {
			return fmt.Errorf("preview.styles entry %q must be %q or %q", s, StyleSheet, StyleGrid)
		}
	}
	if _, err := ParseHexColor(cfg.Preview.Background); err != nil {
		return fmt.Errorf("preview.background: %w", err)
	}
	if cfg.Preview.Scale < 1 {
		return fmt.Errorf("preview.scale must be >= 1, got %d", cfg.Preview.Scale)
	}

	wm := cfg.Preview.Watermark
	if wm.Opacity < 0 || wm.Opacity > 1 {
		return fmt.Errorf("preview.watermark.opacity %g must be within [0,1]", wm.Opacity)
	}
	if !composite.Anchor(wm.Position).IsValid() {
		return fmt.Errorf("preview.watermark.position %q must be one of tl, tr, bl, br, center", wm.Position)
	}
	if wm.MarginPx < 0 {
		return fmt.Errorf("preview.watermark.margin_px must not be negative")
	}

	if cfg.Sheet.MaxWidth < 1 || cfg.Sheet.MaxHeight < 1 {
		return fmt.Errorf("sheet.max_width and sheet.max_height must be >= 1")
	}
	if cfg.Sheet.PaddingPx < 0 {
		return fmt.Errorf("sheet.padding_px must not be negative")
	}
	if !layout.SortKey(cfg.Sheet.Sort).IsValid() {
		return fmt.Errorf("sheet.sort %q must be %q or %q", cfg.Sheet.Sort, layout.SortName, layout.SortHeight)
	}

	if cfg.Grid.CellPx < 1 {
		return fmt.Errorf("grid.cell_px must be >= 1")
	}
	if cfg.Grid.Columns < 1 {
		return fmt.Errorf("grid.columns must be >= 1")
	}
	if cfg.Grid.PaddingPx < 0 {
		return fmt.Errorf("grid.padding_px must not be negative")
	}

	return nil
}

func hasDuplicates(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return true
		}
	}
	return false
}

// ApplyProfile overlays the named profile onto cfg. The "default"
// profile always exists as an empty overlay; any other name must be
// declared under [profiles.<name>].
func ApplyProfile(cfg *Config, name string) error {
	if name == "" {
		name = "default"
	}
	if name == "default" {
		if _, ok := cfg.Profiles["default"]; !ok {
			return nil
		}
	}
	p, ok := cfg.Profiles[name]
	if !ok {
		known := make([]string, 0, len(cfg.Profiles)+1)
		known = append(known, "default")
		for k := range cfg.Profiles {
			known = append(known, k)
		}
		sort.Strings(known)
		return fmt.Errorf("unknown profile %q (available: %v)", name, slices.Compact(known))
	}

	if len(p.Resolutions) > 0 {
		cfg.Build.Resolutions = slices.Clone(p.Resolutions)
	}
	if p.TrimTransparent != nil {
		cfg.Build.TrimTransparent = *p.TrimTransparent
	}
	if len(p.Styles) > 0 {
		cfg.Preview.Styles = slices.Clone(p.Styles)
	}
	if p.Scale != nil {
		cfg.Preview.Scale = *p.Scale
	}

	// Overlays can introduce out-of-range values; re-check.
	return Validate(cfg)
}
