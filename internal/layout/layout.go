// SPDX-License-Identifier: MPL-2.0

// Package layout computes deterministic placements for preview
// composites. Both planners are pure functions of the item list and the
// constraints: same inputs, same plan, regardless of platform or the
// order the caller enumerated files in.
package layout

import (
	"fmt"
	"sort"
)

// SortKey selects the ordering applied to items before placement.
type SortKey string

const (
	// SortName orders items lexicographically by identity (the default).
	SortName SortKey = "name"
	// SortHeight orders items tallest-first, ties broken by identity, which
	// packs mixed-size sheets tighter while staying deterministic.
	SortHeight SortKey = "height"
)

// IsValid reports whether the sort key is one of the supported values.
func (k SortKey) IsValid() bool {
	return k == SortName || k == SortHeight
}

// Item is one raster to place, identified by its canonical relative path.
type Item struct {
	ID string
	W  int
	H  int
}

// Placement is the planned position of one item on the canvas.
type Placement struct {
	ID string
	X  int
	Y  int
	W  int
	H  int
}

// Plan is the full result of a layout pass: every placement plus the
// canvas size that tightly bounds them. Diagnostics carries non-fatal
// warnings (e.g. grid items larger than their cell).
type Plan struct {
	Placements  []Placement
	Width       int
	Height      int
	Diagnostics []string
}

// SheetConstraints bound the shelf-packed sheet layout.
type SheetConstraints struct {
	MaxWidth  int
	MaxHeight int
	Padding   int
	Sort      SortKey
}

// GridConstraints describe the fixed-cell grid layout.
type GridConstraints struct {
	CellPx  int
	Padding int
	Columns int
}

// OverflowError is returned when sheet content cannot fit the configured
// bounds. Overflow is a hard failure: silently clipping a sheet would
// ship a preview with missing assets.
type OverflowError struct {
	// ItemID names the item that failed to fit, if a single item is at fault.
	ItemID string
	// Height is the packed height that exceeded MaxHeight (0 for width faults).
	Height    int
	MaxWidth  int
	MaxHeight int
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("sheet layout overflow: item %q is wider than max_width %d", e.ItemID, e.MaxWidth)
	}
	return fmt.Sprintf("sheet layout overflow: packed height %d exceeds max_height %d", e.Height, e.MaxHeight)
}

// sortItems returns a sorted copy; the input slice is never reordered.
func sortItems(items []Item, key SortKey) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	switch key {
	case SortHeight:
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].H != sorted[j].H {
				return sorted[i].H > sorted[j].H
			}
			return sorted[i].ID < sorted[j].ID
		})
	default:
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	}
	return sorted
}

// PlanSheet packs items into horizontal shelves: left to right within a
// row, a new row whenever the next item would pass MaxWidth. Row height
// is the tallest item in that row. The algorithm trades density for
// reproducibility — no rotation, no skyline backfill.
func PlanSheet(items []Item, c SheetConstraints) (*Plan, error) {
	sorted := sortItems(items, c.Sort)

	plan := &Plan{}
	cursorX, cursorY, rowH := 0, 0, 0

	for _, it := range sorted {
		if it.W > c.MaxWidth {
			return nil, &OverflowError{ItemID: it.ID, MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
		}
		if cursorX > 0 && cursorX+c.Padding+it.W > c.MaxWidth {
			// Shelf full: drop to the next row.
			cursorY += rowH + c.Padding
			cursorX = 0
			rowH = 0
		}
		x := cursorX
		if cursorX > 0 {
			x += c.Padding
		}
		plan.Placements = append(plan.Placements, Placement{ID: it.ID, X: x, Y: cursorY, W: it.W, H: it.H})
		cursorX = x + it.W
		if it.H > rowH {
			rowH = it.H
		}
		if right := x + it.W; right > plan.Width {
			plan.Width = right
		}
	}

	if len(plan.Placements) > 0 {
		plan.Height = cursorY + rowH
	}
	if plan.Height > c.MaxHeight {
		return nil, &OverflowError{Height: plan.Height, MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
	}
	return plan, nil
}

// PlanGrid places items row-major into fixed-size cells: item i lands in
// column i%Columns, row i/Columns. Items larger than the cell are placed
// at the cell origin anyway — pre-scaling is the caller's job — and the
// mismatch is reported as a diagnostic, not an error.
func PlanGrid(items []Item, c GridConstraints) *Plan {
	sorted := sortItems(items, SortName)

	plan := &Plan{}
	for i, it := range sorted {
		col := i % c.Columns
		row := i / c.Columns
		x := col * (c.CellPx + c.Padding)
		y := row * (c.CellPx + c.Padding)
		plan.Placements = append(plan.Placements, Placement{ID: it.ID, X: x, Y: y, W: it.W, H: it.H})

		if it.W > c.CellPx || it.H > c.CellPx {
			plan.Diagnostics = append(plan.Diagnostics,
				fmt.Sprintf("item %q (%dx%d) exceeds cell size %d", it.ID, it.W, it.H, c.CellPx))
		}
	}

	if n := len(sorted); n > 0 {
		cols := c.Columns
		if n < cols {
			cols = n
		}
		rows := (n + c.Columns - 1) / c.Columns
		plan.Width = cols*c.CellPx + (cols-1)*c.Padding
		plan.Height = rows*c.CellPx + (rows-1)*c.Padding

		// Oversized items still have to land inside the canvas.
		for _, p := range plan.Placements {
			if right := p.X + p.W; right > plan.Width {
				plan.Width = right
			}
			if bottom := p.Y + p.H; bottom > plan.Height {
				plan.Height = bottom
			}
		}
	}
	return plan
}
