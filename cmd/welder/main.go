// SPDX-License-Identifier: MPL-2.0

// welder turns raw pixel art into ship-ready asset packs: scaled export
// tiers, store-preview composites, and a versioned archive.
package main

func main() {
	Execute()
}
