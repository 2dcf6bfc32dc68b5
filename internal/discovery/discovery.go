// SPDX-License-Identifier: MPL-2.0

// Package discovery enumerates source assets under the configured input
// root. Results are always returned in canonical order (full relative
// path, case-sensitive, ascending) so that nothing downstream ever
// depends on filesystem traversal order.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// RootError is returned when the input root does not exist or cannot be
// read. An empty match set is NOT an error — only a missing root is.
type RootError struct {
	Root  string
	Cause error
}

// Error implements the error interface.
func (e *RootError) Error() string {
	return fmt.Sprintf("input root %s: %v", e.Root, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *RootError) Unwrap() error { return e.Cause }

// Discover walks root and returns the relative (slash-separated) paths
// of every regular file that matches at least one include pattern and no
// exclude pattern. Exclusion always wins. The returned slice is sorted
// by the canonical key.
func Discover(root string, include, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &RootError{Root: root, Cause: err}
	}
	if !info.IsDir() {
		return nil, &RootError{Root: root, Cause: fmt.Errorf("not a directory")}
	}

	var matches []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &RootError{Root: root, Cause: err}
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matchesAny(include, rel) || matchesAny(exclude, rel) {
			return nil
		}
		matches = append(matches, rel)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(matches)
	return matches, nil
}

// matchesAny reports whether rel matches at least one of the glob
// patterns. Patterns use doublestar syntax, so "**/*.png" matches at any
// depth. Malformed patterns never match; they are rejected up front by
// config validation.
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first syntactically invalid glob in the
// given pattern lists, for use by config validation.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}
