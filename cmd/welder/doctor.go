// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"welder-cli/internal/config"
	"welder-cli/internal/publish"
)

var (
	doctorButler bool

	// doctorCmd verifies environment, config, and external dependencies.
	doctorCmd = &cobra.Command{
		Use:   "doctor",
		Short: "Verify environment, config, and external dependencies",
		Long: `Run project health checks: the config file parses and validates, the
input directory exists, and the dist directory is writable. With
--butler, also verify the itch.io uploader is installed.

Exits non-zero if any check fails.`,
		RunE: runDoctor,
	}
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorButler, "butler", false, "also check the butler binary")
}

// doctorCheck is one named health check.
type doctorCheck struct {
	name string
	run  func(cmd *cobra.Command) error
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := []doctorCheck{
		{"config file parses and validates", checkConfig},
		{"input directory exists", checkInputDir},
		{"dist directory is writable", checkDistWritable},
	}
	if doctorButler {
		checks = append(checks, doctorCheck{"butler is installed", checkButler})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("welder doctor"))

	failed := 0
	for _, check := range checks {
		if err := check.run(cmd); err != nil {
			failed++
			fmt.Fprintf(out, "  %s %s\n", ErrorStyle.Render("✗"), check.name)
			fmt.Fprintf(out, "    %s\n", SubtitleStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", SuccessStyle.Render("✓"), check.name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	fmt.Fprintf(out, "\n%s All checks passed\n", SuccessStyle.Render("✓"))
	return nil
}

func checkConfig(cmd *cobra.Command) error {
	_, err := config.Load(cfgFile)
	return err
}

func checkInputDir(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("skipped: config did not load")
	}
	info, err := os.Stat(cfg.Paths.Input)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Paths.Input, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", cfg.Paths.Input)
	}
	return nil
}

func checkDistWritable(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("skipped: config did not load")
	}
	if err := os.MkdirAll(cfg.Paths.Dist, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(cfg.Paths.Dist, ".welder-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}

func checkButler(cmd *cobra.Command) error {
	path, err := publish.LookPath()
	if err != nil {
		return err
	}
	var version strings.Builder
	if err := publish.Version(cmd.Context(), &version); err != nil {
		return fmt.Errorf("found %s but 'butler version' failed: %w", path, err)
	}
	if v := strings.TrimSpace(version.String()); v != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", SubtitleStyle.Render(firstLine(v)))
	}
	return nil
}

// firstLine trims butler's multi-line version banner to its first line.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
