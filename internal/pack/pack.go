// SPDX-License-Identifier: MPL-2.0

// Package pack serializes the pipeline's declared output tree into a
// versioned zip archive. Packaging is a pure serialization step: it
// never regenerates pixels, it only archives what build and preview
// already wrote.
package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Result reports the archive written and its contents.
type Result struct {
	// Path is the archive location on disk.
	Path string
	// Entries is the sorted list of archived file names.
	Entries []string
}

// DefaultArchiveName composes the versioned archive file name.
func DefaultArchiveName(slug, version string) string {
	return fmt.Sprintf("%s-v%s.zip", slug, version)
}

// Archive zips the export tree (and optionally previews) under distRoot
// into outPath. Entries are written in sorted name order with zeroed
// timestamps and a fixed method, so identical trees produce
// byte-identical archives.
func Archive(distRoot, exportsDir, previewsDir, outPath string, includePreviews bool) (*Result, error) {
	roots := []string{exportsDir}
	if includePreviews {
		roots = append(roots, previewsDir)
	}

	var entries []string
	for _, root := range roots {
		dir := filepath.Join(distRoot, root)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(distRoot, path)
			if err != nil {
				return err
			}
			entries = append(entries, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collect archive entries: %w", err)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("nothing to package under %s (run 'welder build' first)", distRoot)
	}
	sort.Strings(entries)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("create package directory: %w", err)
	}

	tmp := outPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	if err := writeEntries(f, distRoot, entries); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	return &Result{Path: outPath, Entries: entries}, nil
}

// writeEntries streams the sorted entry list into a zip. Headers carry
// no timestamps or platform bits; the archive depends only on entry
// names and file contents.
func writeEntries(w io.Writer, distRoot string, entries []string) error {
	zw := zip.NewWriter(w)
	for _, name := range entries {
		hdr := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		dst, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("archive entry %s: %w", name, err)
		}
		src, err := os.Open(filepath.Join(distRoot, filepath.FromSlash(name)))
		if err != nil {
			return fmt.Errorf("archive entry %s: %w", name, err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			src.Close()
			return fmt.Errorf("archive entry %s: %w", name, err)
		}
		src.Close()
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}

// EntryUnder reports whether an archive entry path sits under the given
// top-level directory.
func EntryUnder(entry, dir string) bool {
	return strings.HasPrefix(entry, dir+"/")
}
