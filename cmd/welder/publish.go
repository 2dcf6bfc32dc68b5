// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"welder-cli/internal/pack"
	"welder-cli/internal/publish"
)

var (
	publishProfile string
	publishChannel string
	publishDryRun  bool
	publishYes     bool

	// publishCmd packages the built outputs and pushes them via butler.
	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Package and publish to itch.io via butler",
		Long: `Archive the export tree and push it to itch.io with butler.

The push target is <author>/<slug>:<channel>, derived from [pack] in
welder.toml. butler must be installed and logged in; run
'welder doctor --butler' to check.

Examples:
  welder publish
  welder publish --channel beta
  welder publish --dry-run`,
		RunE: runPublish,
	}
)

func init() {
	publishCmd.Flags().StringVar(&publishProfile, "profile", "default", "config profile to apply")
	publishCmd.Flags().StringVar(&publishChannel, "channel", "", "butler channel (default: "+publish.DefaultChannel+")")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "print the butler command without running it")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "skip the confirmation prompt")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(publishProfile)
	if err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}
	if cfg.Pack.Author == "" {
		return fmt.Errorf("pack.author must be set in %s to publish", cfgFile)
	}

	archivePath := filepath.Join(cfg.Paths.Dist, cfg.Paths.Package,
		pack.DefaultArchiveName(cfg.Pack.Slug, cfg.Pack.Version))
	target := publish.Target(cfg.Pack.Author, cfg.Pack.Slug, publishChannel)
	argv := publish.Command(archivePath, target)

	out := cmd.OutOrStdout()
	if publishDryRun {
		fmt.Fprintln(out, TitleStyle.Render("Dry Run"))
		fmt.Fprintf(out, "  %s\n", ValueStyle.Render(strings.Join(argv, " ")))
		return nil
	}

	if _, err := publish.LookPath(); err != nil {
		return fmt.Errorf("%w (install it from https://itch.io/docs/butler)", err)
	}

	// Package fresh so the archive always matches the built tree.
	if _, err := pack.Archive(cfg.Paths.Dist, cfg.Paths.Exports, cfg.Paths.Previews, archivePath, false); err != nil {
		return errors.New(formatErrorForDisplay(err, verbose))
	}

	if !publishYes {
		fmt.Fprintf(out, "Push %s to %s? [y/N] ", ValueStyle.Render(archivePath), ValueStyle.Render(target))
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := publish.Run(cmd.Context(), argv, os.Stdout, os.Stderr); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Published %s\n", SuccessStyle.Render("✓"), ValueStyle.Render(target))
	return nil
}
