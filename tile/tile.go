/*
Package tile implements the Game Boy and Super Game Boy tile encoders and
decoders.

A tile is an 8 by 8 block of color indices. The Game Boy stores a tile as
sixteen bytes; two bit planes per row with bit 7 of each byte being the
leftmost pixel. The Super Game Boy border format used here stores four bits
per pixel, two pixels per byte, for thirty two bytes per tile.
*/
package tile

import "image"

const (
	// Width is the width of a tile in pixels
	Width = 8
	// Height is the height of a tile in pixels
	Height = Width
	// Pixels is the number of pixels in a tile
	Pixels = Width * Height
)

// Tile holds the color indices of a single tile in row-major order.
type Tile [Pixels]uint8

// At returns the color index at column x, row y.
func (t *Tile) At(x, y int) uint8 {
	return t[y*Width+x]
}

// Set sets the color index at column x, row y.
func (t *Tile) Set(x, y int, v uint8) {
	t[y*Width+x] = v
}

// Extract copies the tile at tile coordinates tx, ty out of m. The image is
// expected to already have its top-left corner at (0, 0).
func Extract(m *image.Paletted, tx, ty int) Tile {
	var t Tile
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			t.Set(x, y, m.ColorIndexAt(tx*Width+x, ty*Height+y))
		}
	}
	return t
}

// Colors returns the distinct color indices used by the tile in the order
// they are first encountered.
func (t *Tile) Colors() []uint8 {
	var seen [256]bool
	colors := make([]uint8, 0, 4)
	for _, v := range t {
		if !seen[v] {
			seen[v] = true
			colors = append(colors, v)
		}
	}
	return colors
}
