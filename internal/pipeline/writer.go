// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// WriteError is returned on any output filesystem failure, attributed
// to the path being written.
type WriteError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *WriteError) Unwrap() error { return e.Cause }

// pngEncoder is the single encoder configuration every output file goes
// through. One fixed compression level, no ancillary chunks: identical
// pixels always serialize to identical bytes.
var pngEncoder = png.Encoder{CompressionLevel: png.BestCompression}

// writeAtomicPNG encodes img to a temporary file next to path and
// renames it into place, so an interrupted run never leaves a
// half-written file visible at its final name.
func writeAtomicPNG(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Cause: err}
	}

	tmp, err := os.CreateTemp(dir, ".welder-*.png.tmp")
	if err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	tmpName := tmp.Name()

	if err := pngEncoder.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}
