// SPDX-License-Identifier: MPL-2.0

// Package publish shells out to itch.io's butler binary. The pipeline
// core knows nothing about publishing; this package only consumes the
// archive path that pack declared.
package publish

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultChannel is used when neither the flag nor the config names one.
const DefaultChannel = "assets"

// ButlerBinary is the external uploader expected on PATH.
const ButlerBinary = "butler"

// Target composes butler's "<user>/<game>:<channel>" push target.
func Target(author, slug, channel string) string {
	if channel == "" {
		channel = DefaultChannel
	}
	return fmt.Sprintf("%s/%s:%s", strings.ToLower(author), slug, channel)
}

// Command returns the exact argv a push would execute. Dry runs print
// this verbatim.
func Command(archivePath, target string) []string {
	return []string{ButlerBinary, "push", archivePath, target}
}

// LookPath verifies the butler binary is installed, returning its
// resolved location.
func LookPath() (string, error) {
	path, err := exec.LookPath(ButlerBinary)
	if err != nil {
		return "", fmt.Errorf("butler not found on PATH: %w", err)
	}
	return path, nil
}

// Run executes the push, streaming butler's output to the given writers.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return nil
}

// Version runs "butler version" for environment checks.
func Version(ctx context.Context, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, ButlerBinary, "version")
	cmd.Stdout = stdout
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("butler version: %w", err)
	}
	return nil
}
