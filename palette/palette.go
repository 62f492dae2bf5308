/*
Package palette implements the palette allocation used when converting
images to tiles.

Each tile may only use the colors of a single hardware palette and the
hardware only has a handful of small palettes, so tiles must share. The
Allocator packs tiles into palettes first-fit in the order they are
presented; the Reconciler builds palettes for a monochrome image that must
agree with a colored reference image.
*/
package palette

import "errors"

// ErrCapacity is returned when a set of colors cannot fit in any palette,
// not even a new one
var ErrCapacity = errors.New("palette: too many colors for palette")

// Palette is an ordered list of color table indices. The position of an
// index is the slot it occupies in the hardware palette.
type Palette []uint8

// Contains reports whether index c is present in the palette.
func (p Palette) Contains(c uint8) bool {
	for _, v := range p {
		if v == c {
			return true
		}
	}
	return false
}

// missing counts the colors in c that are not yet in p.
func (p Palette) missing(c []uint8) int {
	n := 0
	for _, v := range c {
		if !p.Contains(v) {
			n++
		}
	}
	return n
}

// Allocator assigns candidate color sets to palettes of a fixed capacity.
// Palettes are only ever appended to, so an id once returned stays valid.
type Allocator struct {
	capacity int
	reserved Palette
	palettes []Palette
}

// NewAllocator returns an Allocator whose palettes hold at most capacity
// colors. Any reserved colors occupy the first slots of every palette.
func NewAllocator(capacity int, reserved ...uint8) *Allocator {
	return &Allocator{
		capacity: capacity,
		reserved: append(Palette(nil), reserved...),
	}
}

// Fits reports whether the candidate could be stored in a fresh palette.
func (a *Allocator) Fits(candidate []uint8) bool {
	return len(a.reserved)+a.reserved.missing(candidate) <= a.capacity
}

// Assign returns the id of the first palette that can hold every color in
// candidate, appending a new palette if none can. Colors not already in
// the palette are added in candidate order.
func (a *Allocator) Assign(candidate []uint8) (int, error) {
	if !a.Fits(candidate) {
		return 0, ErrCapacity
	}

	index := -1
	for i, p := range a.palettes {
		if len(p)+p.missing(candidate) <= a.capacity {
			index = i
			break
		}
	}

	if index == -1 {
		index = len(a.palettes)
		a.palettes = append(a.palettes, append(Palette(nil), a.reserved...))
	}

	for _, c := range candidate {
		if !a.palettes[index].Contains(c) {
			a.palettes[index] = append(a.palettes[index], c)
		}
	}

	return index, nil
}

// Len returns the number of palettes allocated so far.
func (a *Allocator) Len() int {
	return len(a.palettes)
}

// Palettes returns the allocated palettes in id order.
func (a *Allocator) Palettes() []Palette {
	return a.palettes
}
