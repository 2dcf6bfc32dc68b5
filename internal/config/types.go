// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"image/color"
)

type (
	// Config is the fully-resolved welder.toml document. The pipeline
	// consumes it as an already-validated, already-typed object; all
	// parsing and validation happens in this package.
	Config struct {
		Pack     PackConfig              `mapstructure:"pack" toml:"pack"`
		Paths    PathsConfig             `mapstructure:"paths" toml:"paths"`
		Inputs   InputsConfig            `mapstructure:"inputs" toml:"inputs"`
		Build    BuildConfig             `mapstructure:"build" toml:"build"`
		Preview  PreviewConfig           `mapstructure:"preview" toml:"preview"`
		Sheet    SheetConfig             `mapstructure:"sheet" toml:"sheet"`
		Grid     GridConfig              `mapstructure:"grid" toml:"grid"`
		Profiles map[string]ProfileConfig `mapstructure:"profiles" toml:"profiles,omitempty"`
	}

	// PackConfig identifies the asset pack being produced.
	PackConfig struct {
		Name    string `mapstructure:"name" toml:"name"`
		Slug    string `mapstructure:"slug" toml:"slug"`
		Author  string `mapstructure:"author" toml:"author"`
		Brand   string `mapstructure:"brand" toml:"brand"`
		License string `mapstructure:"license" toml:"license"`
		Version string `mapstructure:"version" toml:"version"`
	}

	// PathsConfig holds the project-relative directory layout. Input is
	// relative to the project root; the rest are relative to Dist.
	PathsConfig struct {
		Input    string `mapstructure:"input" toml:"input"`
		Dist     string `mapstructure:"dist" toml:"dist"`
		Previews string `mapstructure:"previews" toml:"previews"`
		Exports  string `mapstructure:"exports" toml:"exports"`
		Sheets   string `mapstructure:"sheets" toml:"sheets"`
		Package  string `mapstructure:"package" toml:"package"`
	}

	// InputsConfig selects source assets by glob.
	InputsConfig struct {
		Include []string `mapstructure:"include" toml:"include"`
		Exclude []string `mapstructure:"exclude" toml:"exclude"`
	}

	// BuildConfig controls the export tiers.
	BuildConfig struct {
		Resolutions     []int  `mapstructure:"resolutions" toml:"resolutions"`
		Filter          string `mapstructure:"filter" toml:"filter"`
		TrimTransparent bool   `mapstructure:"trim_transparent" toml:"trim_transparent"`
	}

	// PreviewConfig controls composite generation.
	PreviewConfig struct {
		Styles     []string        `mapstructure:"styles" toml:"styles"`
		Background string          `mapstructure:"background" toml:"background"`
		Scale      int             `mapstructure:"scale" toml:"scale"`
		Watermark  WatermarkConfig `mapstructure:"watermark" toml:"watermark"`
	}

	// WatermarkConfig is the preview-only translucent overlay.
	WatermarkConfig struct {
		Enabled  bool    `mapstructure:"enabled" toml:"enabled"`
		Text     string  `mapstructure:"text" toml:"text"`
		Opacity  float64 `mapstructure:"opacity" toml:"opacity"`
		Position string  `mapstructure:"position" toml:"position"`
		MarginPx int     `mapstructure:"margin_px" toml:"margin_px"`
	}

	// SheetConfig bounds the shelf-packed sheet preview.
	SheetConfig struct {
		MaxWidth  int    `mapstructure:"max_width" toml:"max_width"`
		MaxHeight int    `mapstructure:"max_height" toml:"max_height"`
		PaddingPx int    `mapstructure:"padding_px" toml:"padding_px"`
		Sort      string `mapstructure:"sort" toml:"sort"`
	}

	// GridConfig describes the fixed-cell grid preview.
	GridConfig struct {
		CellPx    int `mapstructure:"cell_px" toml:"cell_px"`
		PaddingPx int `mapstructure:"padding_px" toml:"padding_px"`
		Columns   int `mapstructure:"columns" toml:"columns"`
	}

	// ProfileConfig is a partial overlay applied on top of the base
	// config when the profile is selected. Nil fields keep the base
	// value.
	ProfileConfig struct {
		Resolutions     []int    `mapstructure:"resolutions" toml:"resolutions,omitempty"`
		TrimTransparent *bool    `mapstructure:"trim_transparent" toml:"trim_transparent,omitempty"`
		Styles          []string `mapstructure:"styles" toml:"styles,omitempty"`
		Scale           *int     `mapstructure:"scale" toml:"scale,omitempty"`
	}
)

// Style names accepted in preview.styles.
const (
	StyleSheet = "sheet"
	StyleGrid  = "grid"
)

// FilterNearest is the only resampling filter v1 supports.
const FilterNearest = "nearest"

// Default returns the configuration welder assumes when welder.toml
// omits a value. `welder init` scaffolds exactly this document.
func Default() *Config {
	return &Config{
		Pack: PackConfig{
			Name:    "my-asset-pack",
			Slug:    "my-asset-pack",
			License: "CC-BY-4.0",
			Version: "0.1.0",
		},
		Paths: PathsConfig{
			Input:    "src",
			Dist:     "dist",
			Previews: "previews",
			Exports:  "exports",
			Sheets:   "sheets",
			Package:  "package",
		},
		Inputs: InputsConfig{
			Include: []string{"**/*.png"},
		},
		Build: BuildConfig{
			Resolutions: []int{1, 2, 4},
			Filter:      FilterNearest,
		},
		Preview: PreviewConfig{
			Styles:     []string{StyleSheet, StyleGrid},
			Background: "#00000000",
			Scale:      1,
			Watermark: WatermarkConfig{
				Text:     "PREVIEW",
				Opacity:  0.35,
				Position: "br",
				MarginPx: 8,
			},
		},
		Sheet: SheetConfig{
			MaxWidth:  2048,
			MaxHeight: 2048,
			PaddingPx: 2,
			Sort:      "name",
		},
		Grid: GridConfig{
			CellPx:    64,
			PaddingPx: 8,
			Columns:   8,
		},
	}
}

// BackgroundColor parses preview.background (#RRGGBB or #RRGGBBAA) into
// a straight-alpha color.
func (c *Config) BackgroundColor() (color.NRGBA, error) {
	return ParseHexColor(c.Preview.Background)
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (case-insensitive hex).
// A six-digit color is fully opaque.
func ParseHexColor(s string) (color.NRGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q must start with '#'", s)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("color %q must be #RRGGBB or #RRGGBBAA", s)
	}

	var v [4]uint8
	v[3] = 0xFF
	for i := 0; i < len(hex)/2; i++ {
		hi, okHi := hexVal(hex[i*2])
		lo, okLo := hexVal(hex[i*2+1])
		if !okHi || !okLo {
			return color.NRGBA{}, fmt.Errorf("color %q contains a non-hex digit", s)
		}
		v[i] = hi<<4 | lo
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func hexVal(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
