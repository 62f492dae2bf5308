package palette

import (
	"image/color"
)

// Transparent is used when an image has no transparent color of its own
var Transparent = color.RGBA{0, 0, 0, 0}

// to5 scales an 8-bit channel to 5 bits rounding to nearest. c*31/255 is
// never exactly halfway for integer c so the tie rule never applies.
func to5(c uint32) uint16 {
	return uint16((c*31 + 127) / 255)
}

// RGB15 returns c packed as 0BBBBBGGGGGRRRRR.
func RGB15(c color.Color) uint16 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return to5(uint32(n.R)) | to5(uint32(n.G))<<5 | to5(uint32(n.B))<<10
}

// IsTransparent reports whether c has any transparency.
func IsTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a < 0xffff
}

// Table returns slots colors per palette, looking each index up in colors.
// Short palettes are padded with zero.
func Table(palettes []Palette, colors color.Palette, slots int) []uint16 {
	out := make([]uint16, 0, len(palettes)*slots)
	for _, p := range palettes {
		for i := 0; i < slots; i++ {
			if i < len(p) && int(p[i]) < len(colors) {
				out = append(out, RGB15(colors[p[i]]))
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

// Bytes splits each color into two bytes, low byte first.
func Bytes(colors []uint16) []byte {
	b := make([]byte, 0, len(colors)*2)
	for _, c := range colors {
		b = append(b, byte(c&0xff), byte(c>>8))
	}
	return b
}
