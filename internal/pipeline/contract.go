// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"path"
	"path/filepath"
)

// The output contract: the full set of paths a run will produce is
// computable from (sorted asset list, configuration) alone. Dry runs
// report exactly this set; --clean deletes exactly this tree.

// ExportRelPath maps a source asset and tier to its path under the
// export root: "<tier>x/<relative-source-path>.png". The source
// extension is replaced so non-".png" spellings (".PNG") still land on
// the contract name.
func ExportRelPath(rel string, tier int) string {
	stem := rel[:len(rel)-len(path.Ext(rel))]
	return fmt.Sprintf("%dx/%s.png", tier, stem)
}

// ExportPaths returns every output path of an export run, tier-major in
// ascending tier order, assets in canonical order within each tier.
func ExportPaths(exportRoot string, rels []string, tiers []int) []string {
	paths := make([]string, 0, len(rels)*len(tiers))
	for _, tier := range tiers {
		for _, rel := range rels {
			paths = append(paths, filepath.Join(exportRoot, filepath.FromSlash(ExportRelPath(rel, tier))))
		}
	}
	return paths
}

// PreviewPath returns the output path for one preview style.
func PreviewPath(previewRoot, style string) string {
	return filepath.Join(previewRoot, style+".png")
}
