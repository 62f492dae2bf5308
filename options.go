package imgtogb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bodgit/imgtogb/tile"
)

// Layout selects the shape of the output.
type Layout int

const (
	// Sprites writes every tile in order with no tile map
	Sprites Layout = iota
	// Map deduplicates tiles and writes a tile map
	Map
	// Border writes a Super Game Boy border
	Border
)

var layoutNames = map[Layout]string{
	Sprites: "sprites",
	Map:     "map",
	Border:  "border",
}

func (l Layout) String() string {
	if s, ok := layoutNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout returns the Layout named s.
func ParseLayout(s string) (Layout, error) {
	for l, name := range layoutNames {
		if strings.EqualFold(s, name) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("imgtogb: unknown layout %q", s)
}

// Colors selects how tiles are colored.
type Colors int

const (
	// Monochrome uses the image indices as they are, no palettes
	Monochrome Colors = iota
	// Color assigns every tile one of a set of generated palettes
	Color
	// Dual keeps monochrome tile data and derives palettes from a
	// colored reference image
	Dual
)

var colorsNames = map[Colors]string{
	Monochrome: "mono",
	Color:      "color",
	Dual:       "dx",
}

func (c Colors) String() string {
	if s, ok := colorsNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Colors(%d)", int(c))
}

// ParseColors returns the Colors named s.
func ParseColors(s string) (Colors, error) {
	for c, name := range colorsNames {
		if strings.EqualFold(s, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("imgtogb: unknown color mode %q", s)
}

// Options controls a conversion.
type Options struct {
	Layout Layout
	Colors Colors
	// Tall orders tiles for 8x16 sprites
	Tall bool
	// RLE compresses the tile data, tile map and palette indices
	RLE bool
	// TileOffset is added to every tile map entry
	TileOffset int
	// PaletteOffset is added to every palette index
	PaletteOffset int
	// Quantize, if non-zero, is the number of colors non-indexed images
	// are reduced to; otherwise they are rejected
	Quantize int
}

var errOptions = errors.New("imgtogb: invalid options")

// Validate checks the combination of options is supported.
func (o Options) Validate() error {
	if _, ok := layoutNames[o.Layout]; !ok {
		return fmt.Errorf("%w: %v", errOptions, o.Layout)
	}
	if _, ok := colorsNames[o.Colors]; !ok {
		return fmt.Errorf("%w: %v", errOptions, o.Colors)
	}
	if o.Layout == Border {
		if o.Colors != Color {
			return fmt.Errorf("%w: border requires color mode", errOptions)
		}
		if o.Tall {
			return fmt.Errorf("%w: border cannot use 8x16 ordering", errOptions)
		}
		if o.RLE {
			return fmt.Errorf("%w: border cannot be compressed", errOptions)
		}
	}
	if o.Quantize < 0 || o.Quantize > 256 {
		return fmt.Errorf("%w: cannot quantize to %d colors", errOptions, o.Quantize)
	}
	return nil
}

// String returns a stable description of the options, suitable as part of
// a cache key.
func (o Options) String() string {
	return fmt.Sprintf("layout=%v colors=%v tall=%t rle=%t offset=%d palette_offset=%d quantize=%d",
		o.Layout, o.Colors, o.Tall, o.RLE, o.TileOffset, o.PaletteOffset, o.Quantize)
}

// profile holds the hardware parameters implied by a set of options.
type profile struct {
	depth tile.Depth
	// capacity is the number of colors in a palette
	capacity int
	// transparent reserves palette slot 0 for the transparent color
	transparent bool
	dedup       bool
}

func (o Options) profile() profile {
	switch o.Layout {
	case Border:
		return profile{
			depth:       tile.Nibble4,
			capacity:    16,
			transparent: true,
			dedup:       true,
		}
	case Map:
		return profile{
			depth:    tile.Planar2,
			capacity: 4,
			dedup:    true,
		}
	default:
		return profile{
			depth:    tile.Planar2,
			capacity: 4,
		}
	}
}
