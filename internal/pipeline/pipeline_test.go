// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"welder-cli/internal/config"
	"welder-cli/internal/raster"
	"welder-cli/internal/testutil"
)

// testConfig returns a validated default config rooted in fresh temp
// directories.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Input = filepath.Join(t.TempDir(), "src")
	cfg.Paths.Dist = filepath.Join(t.TempDir(), "dist")
	if err := os.MkdirAll(cfg.Paths.Input, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("fixture config invalid: %v", err)
	}
	return cfg
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func TestBuild_TierScenario(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Resolutions = []int{1, 2, 4}
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "hero.png", 16, 16, color.NRGBA{R: 200, A: 255})

	res, err := Build(context.Background(), cfg, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	exportRoot := filepath.Join(cfg.Paths.Dist, cfg.Paths.Exports)
	want := []string{
		filepath.Join(exportRoot, "1x", "hero.png"),
		filepath.Join(exportRoot, "2x", "hero.png"),
		filepath.Join(exportRoot, "4x", "hero.png"),
	}
	if !reflect.DeepEqual(res.Files, want) {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}

	for i, size := range []int{16, 32, 64} {
		img := testutil.ReadPNG(t, want[i])
		if img.Bounds().Dx() != size || img.Bounds().Dy() != size {
			t.Errorf("tier %d export = %v, want %dx%d", i, img.Bounds(), size, size)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "ui/button.png", 8, 8, color.NRGBA{G: 120, A: 255})
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "ui/panel.png", 12, 6, color.NRGBA{B: 90, A: 200})

	first, err := Build(context.Background(), cfg, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	snapshot := make(map[string][]byte, len(first.Files))
	for _, f := range first.Files {
		snapshot[f] = readFile(t, f)
	}

	second, err := Build(context.Background(), cfg, BuildOptions{Clean: true})
	if err != nil {
		t.Fatalf("Build() second run error = %v", err)
	}
	if !reflect.DeepEqual(first.Files, second.Files) {
		t.Fatalf("file lists differ between runs:\n%v\n%v", first.Files, second.Files)
	}
	for _, f := range second.Files {
		if !reflect.DeepEqual(snapshot[f], readFile(t, f)) {
			t.Errorf("output %s not byte-identical across runs", f)
		}
	}
}

func TestBuild_DryRunMatchesRealRun(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "a.png", 4, 4, color.NRGBA{A: 255})
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "b.png", 4, 4, color.NRGBA{A: 255})

	dry, err := Build(context.Background(), cfg, BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build(dry) error = %v", err)
	}
	if !dry.DryRun {
		t.Error("DryRun flag not set on result")
	}
	if _, err := os.Stat(cfg.Paths.Dist); !os.IsNotExist(err) {
		t.Error("dry run must not create the dist tree")
	}

	actual, err := Build(context.Background(), cfg, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !reflect.DeepEqual(dry.Files, actual.Files) {
		t.Errorf("dry-run path list differs from actual run:\n%v\n%v", dry.Files, actual.Files)
	}
	for _, f := range actual.Files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("declared output %s missing: %v", f, err)
		}
	}
}

func TestBuild_DryRunSurfacesDecodeErrors(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Paths.Input, "bad.png"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Build(context.Background(), cfg, BuildOptions{DryRun: true})
	var decodeErr *raster.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Build(dry) error = %v, want *raster.DecodeError", err)
	}
	if decodeErr.Path != "bad.png" {
		t.Errorf("DecodeError.Path = %q", decodeErr.Path)
	}
}

func TestBuild_CleanRemovesStaleOutputs(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "keep.png", 4, 4, color.NRGBA{A: 255})

	exportRoot := filepath.Join(cfg.Paths.Dist, cfg.Paths.Exports)
	stale := filepath.Join(exportRoot, "1x", "stale.png")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Build(context.Background(), cfg, BuildOptions{Clean: true}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("--clean must remove stale files from the export tree")
	}
	if _, err := os.Stat(filepath.Join(exportRoot, "1x", "keep.png")); err != nil {
		t.Errorf("fresh output missing after clean build: %v", err)
	}
}

func TestBuild_EmptyInputIsDegenerateNotError(t *testing.T) {
	cfg := testConfig(t)

	res, err := Build(context.Background(), cfg, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(res.Files) != 0 {
		t.Errorf("Files = %v, want none", res.Files)
	}
}

func TestBuild_MissingInputRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Input = filepath.Join(cfg.Paths.Input, "missing")

	if _, err := Build(context.Background(), cfg, BuildOptions{}); err == nil {
		t.Fatal("Build() expected discovery error")
	}
}

func TestPreview_WritesRequestedStyles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preview.Background = "#101010"
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "a.png", 16, 16, color.NRGBA{R: 255, A: 255})
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "b.png", 16, 16, color.NRGBA{G: 255, A: 255})

	res, err := Preview(context.Background(), cfg, PreviewOptions{})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	previewRoot := filepath.Join(cfg.Paths.Dist, cfg.Paths.Previews)
	want := []string{
		filepath.Join(previewRoot, "sheet.png"),
		filepath.Join(previewRoot, "grid.png"),
	}
	if !reflect.DeepEqual(res.Files, want) {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}
	for _, f := range want {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("preview %s missing: %v", f, err)
		}
	}

	// Grid canvas for 2 items at default 64px cells, 8px padding.
	if got := res.Canvases[config.StyleGrid]; got.Width != 136 || got.Height != 64 {
		t.Errorf("grid canvas = %+v, want 136x64", got)
	}
}

func TestPreview_SingleStyle(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "a.png", 8, 8, color.NRGBA{A: 255})

	res, err := Preview(context.Background(), cfg, PreviewOptions{Styles: []string{config.StyleGrid}})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(res.Files) != 1 || filepath.Base(res.Files[0]) != "grid.png" {
		t.Errorf("Files = %v, want just grid.png", res.Files)
	}
}

func TestPreview_DryRunPlansWithoutWriting(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "a.png", 8, 8, color.NRGBA{A: 255})

	res, err := Preview(context.Background(), cfg, PreviewOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Preview(dry) error = %v", err)
	}
	if len(res.Files) != 2 || len(res.Canvases) != 2 {
		t.Errorf("dry run should report both styles: %+v", res)
	}
	if _, err := os.Stat(cfg.Paths.Dist); !os.IsNotExist(err) {
		t.Error("dry run must not create the dist tree")
	}
}

func TestPreview_ScaleAppliesBeforeLayout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preview.Scale = 2
	cfg.Preview.Styles = []string{config.StyleSheet}
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "a.png", 10, 10, color.NRGBA{A: 255})

	res, err := Preview(context.Background(), cfg, PreviewOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if got := res.Canvases[config.StyleSheet]; got.Width != 20 || got.Height != 20 {
		t.Errorf("sheet canvas = %+v, want 20x20 (scaled)", got)
	}
}

func TestWatermark_PreviewsOnlyNeverExports(t *testing.T) {
	plain := testConfig(t)
	plain.Preview.Background = "#202020"
	marked := testConfig(t)
	marked.Preview.Background = "#202020"
	marked.Preview.Watermark.Enabled = true
	marked.Preview.Watermark.Opacity = 0.8

	for _, cfg := range []*config.Config{plain, marked} {
		testutil.WriteSolidPNG(t, cfg.Paths.Input, "a.png", 40, 20, color.NRGBA{R: 30, G: 30, B: 30, A: 255})
	}

	plainPrev, err := Preview(context.Background(), plain, PreviewOptions{Styles: []string{config.StyleSheet}})
	if err != nil {
		t.Fatalf("Preview(plain) error = %v", err)
	}
	markedPrev, err := Preview(context.Background(), marked, PreviewOptions{Styles: []string{config.StyleSheet}})
	if err != nil {
		t.Fatalf("Preview(marked) error = %v", err)
	}
	if reflect.DeepEqual(readFile(t, plainPrev.Files[0]), readFile(t, markedPrev.Files[0])) {
		t.Error("watermark-enabled preview should differ from plain preview")
	}

	// Exports must be identical no matter what the watermark config says.
	plainBuild, err := Build(context.Background(), plain, BuildOptions{})
	if err != nil {
		t.Fatalf("Build(plain) error = %v", err)
	}
	markedBuild, err := Build(context.Background(), marked, BuildOptions{})
	if err != nil {
		t.Fatalf("Build(marked) error = %v", err)
	}
	for i := range plainBuild.Files {
		if !reflect.DeepEqual(readFile(t, plainBuild.Files[i]), readFile(t, markedBuild.Files[i])) {
			t.Errorf("export %s affected by watermark config", plainBuild.Files[i])
		}
	}
}

func TestPreview_GridDiagnosticsForOversizedItems(t *testing.T) {
	cfg := testConfig(t)
	cfg.Grid.CellPx = 8
	testutil.WriteSolidPNG(t, cfg.Paths.Input, "big.png", 32, 32, color.NRGBA{A: 255})

	res, err := Preview(context.Background(), cfg, PreviewOptions{Styles: []string{config.StyleGrid}})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(res.Diagnostics) == 0 {
		t.Error("expected an oversized-item diagnostic")
	}
}

func TestExportRelPath(t *testing.T) {
	tests := []struct {
		rel  string
		tier int
		want string
	}{
		{"hero.png", 1, "1x/hero.png"},
		{"ui/button.png", 2, "2x/ui/button.png"},
		{"chars/boss.PNG", 4, "4x/chars/boss.png"},
	}
	for _, tt := range tests {
		if got := ExportRelPath(tt.rel, tt.tier); got != tt.want {
			t.Errorf("ExportRelPath(%q, %d) = %q, want %q", tt.rel, tt.tier, got, tt.want)
		}
	}
}

func TestWriteAtomicPNG_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	if err := writeAtomicPNG(out, testutil.Solid(2, 2, color.NRGBA{A: 255})); err != nil {
		t.Fatalf("writeAtomicPNG() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.png" {
		t.Errorf("directory contents = %v, want only out.png", entries)
	}
}
