package tile

import (
	"errors"
	"fmt"
)

var (
	// ErrColorOverflow is returned when a tile uses more distinct colors
	// than the bit depth can represent
	ErrColorOverflow = errors.New("tile: too many colors in tile")
	// ErrCapacity is returned when a pixel, after palette mapping, does
	// not fit in the bit depth
	ErrCapacity = errors.New("tile: color index exceeds bit depth")
	// ErrUnmapped is returned when a tile color is not in its palette
	ErrUnmapped = errors.New("tile: color not in palette")
	// ErrSize is returned when decoding a byte sequence of the wrong length
	ErrSize = errors.New("tile: wrong amount of tile data")
)

// Depth selects the packed layout of a tile.
type Depth int

const (
	// Planar2 is the Game Boy 2bpp layout, two bit planes per row
	Planar2 Depth = iota
	// Nibble4 is the 4bpp layout, two pixels per byte
	Nibble4
)

// Colors returns the number of distinct colors representable.
func (d Depth) Colors() int {
	if d == Nibble4 {
		return 16
	}
	return 4
}

// Size returns the number of bytes in an encoded tile.
func (d Depth) Size() int {
	if d == Nibble4 {
		return 32
	}
	return 16
}

func (d Depth) String() string {
	switch d {
	case Planar2:
		return "2bpp"
	case Nibble4:
		return "4bpp"
	}
	return fmt.Sprintf("Depth(%d)", int(d))
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

func upperNibble(b byte) byte {
	return b & 0xf0
}

// Encode packs t using bit depth d. If p is not nil each pixel is first
// replaced by the position of its color in p.
func Encode(t Tile, d Depth, p []uint8) ([]byte, error) {
	if len(t.Colors()) > d.Colors() {
		return nil, ErrColorOverflow
	}

	if p != nil {
		var m [256]int
		for i := range m {
			m[i] = -1
		}
		for i, c := range p {
			if m[c] < 0 {
				m[c] = i
			}
		}
		for i, v := range t {
			if m[v] < 0 {
				return nil, fmt.Errorf("%w: index %d", ErrUnmapped, v)
			}
			t[i] = uint8(m[v])
		}
	}

	for _, v := range t {
		if int(v) >= d.Colors() {
			return nil, fmt.Errorf("%w: index %d", ErrCapacity, v)
		}
	}

	b := make([]byte, 0, d.Size())
	switch d {
	case Planar2:
		for y := 0; y < Height; y++ {
			var b0, b1 byte
			for x := 0; x < Width; x++ {
				v := t.At(x, y)
				b0 |= (v & 1) << (7 - x)
				b1 |= (v >> 1 & 1) << (7 - x)
			}
			b = append(b, b0, b1)
		}
	case Nibble4:
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x += 4 {
				b = append(b, t.At(x, y)|t.At(x+1, y)<<4, t.At(x+2, y)|t.At(x+3, y)<<4)
			}
		}
	default:
		return nil, fmt.Errorf("tile: unknown depth %v", d)
	}

	return b, nil
}

// Decode unpacks a tile previously packed with Encode. Palette mapping is
// not reversed; the returned indices are palette slots.
func Decode(b []byte, d Depth) (Tile, error) {
	var t Tile
	if len(b) != d.Size() {
		return t, ErrSize
	}

	switch d {
	case Planar2:
		for y := 0; y < Height; y++ {
			b0, b1 := b[y*2], b[y*2+1]
			for x := 0; x < Width; x++ {
				t.Set(x, y, b0>>(7-x)&1|(b1>>(7-x)&1)<<1)
			}
		}
	case Nibble4:
		for y := 0; y < Height; y++ {
			for x := 0; x < Width>>1; x++ {
				v := b[y*Width>>1+x]
				t.Set(x<<1, y, lowerNibble(v))
				t.Set(x<<1+1, y, upperNibble(v)>>4)
			}
		}
	default:
		return t, fmt.Errorf("tile: unknown depth %v", d)
	}

	return t, nil
}
