package palette

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrOverloaded is returned when a source color index maps to more than one
// reference color within a single tile
var ErrOverloaded = errors.New("palette: overloaded colors")

// Rules maps color indices in the source image to color indices in the
// reference image.
type Rules map[uint8]uint8

// NewRules pairs up the pixels of a source tile with the same pixels in the
// reference tile.
func NewRules(src, ref []uint8) (Rules, error) {
	if len(src) != len(ref) {
		return nil, fmt.Errorf("palette: mismatched pixel counts %d and %d", len(src), len(ref))
	}
	r := make(Rules)
	for i, s := range src {
		if v, ok := r[s]; ok {
			if v != ref[i] {
				return nil, fmt.Errorf("%w: index %d maps to %d and %d", ErrOverloaded, s, v, ref[i])
			}
			continue
		}
		r[s] = ref[i]
	}
	return r, nil
}

// Compatible reports whether no index is mapped differently by r and o.
func (r Rules) Compatible(o Rules) bool {
	for k, v := range o {
		if w, ok := r[k]; ok && w != v {
			return false
		}
	}
	return true
}

// Reconciler groups per-tile rules into shared palettes. A palette accepts a
// tile whenever their rules agree; there is no limit on how many rules a
// palette accumulates.
type Reconciler struct {
	palettes []Rules
}

// NewReconciler returns an empty Reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Assign returns the id of the first palette compatible with r, starting a
// new palette if there is none, and merges r into it.
func (rc *Reconciler) Assign(r Rules) int {
	index := -1
	for i, p := range rc.palettes {
		if p.Compatible(r) {
			index = i
			break
		}
	}

	if index == -1 {
		index = len(rc.palettes)
		rc.palettes = append(rc.palettes, make(Rules, len(r)))
	}

	for k, v := range r {
		rc.palettes[index][k] = v
	}

	return index
}

// Len returns the number of palettes started so far.
func (rc *Reconciler) Len() int {
	return len(rc.palettes)
}

// Rules returns the merged rules of every palette in id order.
func (rc *Reconciler) Rules() []Rules {
	return rc.palettes
}

// Colors resolves slots 0 to slots-1 of every palette against the reference
// color table. Unmapped slots are encoded as zero.
func (rc *Reconciler) Colors(colors color.Palette, slots int) []uint16 {
	out := make([]uint16, 0, len(rc.palettes)*slots)
	for _, p := range rc.palettes {
		for i := 0; i < slots; i++ {
			if v, ok := p[uint8(i)]; ok && int(v) < len(colors) {
				out = append(out, RGB15(colors[v]))
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}
