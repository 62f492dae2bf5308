package imgtogb

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.RGBA{0x00, 0x00, 0x00, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
	red   = color.RGBA{0xff, 0x00, 0x00, 0xff}
	green = color.RGBA{0x00, 0xff, 0x00, 0xff}
	blue  = color.RGBA{0x00, 0x00, 0xff, 0xff}
	grey  = color.RGBA{0x80, 0x80, 0x80, 0xff}
)

var dmg = color.Palette{white, grey, color.RGBA{0x40, 0x40, 0x40, 0xff}, black}

func newImage(w, h int, p color.Palette) *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, w, h), p)
}

// fill sets every pixel of tile tx, ty to index v
func fill(m *image.Paletted, tx, ty int, v uint8) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			m.SetColorIndex(tx*8+x, ty*8+y, v)
		}
	}
}

func convert(t *testing.T, opts Options, m, ref *image.Paletted) *Result {
	c, err := New(opts, nil)
	require.NoError(t, err)
	r, err := c.Convert(m, ref)
	require.NoError(t, err)
	return r
}

func TestConvertSprites(t *testing.T) {
	m := newImage(16, 8, dmg)
	m.SetColorIndex(1, 0, 1)

	r := convert(t, Options{}, m, nil)
	require.Len(t, r.TileData, 32)
	assert.Equal(t, byte(0x40), r.TileData[0])
	assert.Equal(t, make([]byte, 16), r.TileData[16:])
	assert.Equal(t, 2, r.TileCount)
	assert.Equal(t, 16, r.TileSize)
	assert.False(t, r.HasMap())
	assert.False(t, r.HasPalettes())
}

func TestConvertRLE(t *testing.T) {
	m := newImage(16, 8, dmg)
	m.SetColorIndex(1, 0, 1)

	r := convert(t, Options{RLE: true}, m, nil)
	assert.True(t, r.RLE)
	assert.Equal(t, 2, r.TileCount)
	assert.Equal(t, []byte{0x40, 0x00, 0x00, 31}, r.TileData)
}

func TestConvertMap(t *testing.T) {
	m := newImage(32, 8, dmg)
	fill(m, 1, 0, 3)
	fill(m, 3, 0, 3)

	r := convert(t, Options{Layout: Map, TileOffset: 5}, m, nil)
	assert.Equal(t, 2, r.TileCount)
	assert.Len(t, r.TileData, 32)
	assert.Equal(t, []int{5, 6, 5, 6}, r.Tiles)
	assert.Equal(t, 4, r.TilesWidth)
	assert.Equal(t, 1, r.TilesHeight)
	assert.Equal(t, 5, r.TilesOffset)
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 16), r.TileData[16:])

	r = convert(t, Options{Layout: Map, RLE: true}, m, nil)
	assert.Equal(t, []int{0, 1, 0, 1}, r.Tiles)
}

func TestConvertColor(t *testing.T) {
	m := newImage(24, 8, color.Palette{black, white, red, green, blue, grey})
	for x := 0; x < 4; x++ {
		m.SetColorIndex(x, 0, uint8(x))
	}
	fill(m, 1, 0, 4)
	m.SetColorIndex(8, 0, 5)
	fill(m, 2, 0, 1)

	r := convert(t, Options{Layout: Map, Colors: Color, PaletteOffset: 2}, m, nil)
	assert.Equal(t, []int{2, 3, 2}, r.Palettes)
	assert.Equal(t, 2, r.PaletteCount)
	assert.Equal(t, 2, r.PaletteOffset)
	assert.Equal(t, []int{
		0x0000, 0x7fff, 0x001f, 0x03e0,
		0x4210, 0x7c00, 0x0000, 0x0000,
	}, r.PaletteData)

	// white is slot 1 of the first palette
	assert.Equal(t, bytes.Repeat([]byte{0xff, 0x00}, 8), r.TileData[32:48])
}

func TestConvertTileColorOverflow(t *testing.T) {
	m := newImage(16, 16, color.Palette{black, white, red, green, blue})
	for x := 0; x < 5; x++ {
		m.SetColorIndex(8+x, 8, uint8(x))
	}

	for _, colors := range []Colors{Monochrome, Color} {
		c, err := New(Options{Colors: colors}, nil)
		require.NoError(t, err)
		r, err := c.Convert(m, nil)
		assert.Nil(t, r)
		require.ErrorIs(t, err, ErrTileColorOverflow, colors.String())

		var te *TileError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, 1, te.X)
		assert.Equal(t, 1, te.Y)
	}
}

func TestConvertEncodeCapacity(t *testing.T) {
	m := newImage(8, 8, color.Palette{black, white, red, green, blue})
	m.SetColorIndex(0, 0, 4)

	c, err := New(Options{}, nil)
	require.NoError(t, err)
	_, err = c.Convert(m, nil)
	assert.ErrorIs(t, err, ErrEncodeCapacity)
}

func TestConvertShape(t *testing.T) {
	c, err := New(Options{}, nil)
	require.NoError(t, err)

	_, err = c.Convert(newImage(12, 8, dmg), nil)
	assert.ErrorIs(t, err, ErrShape)

	_, err = c.Convert(newImage(8, 8, color.Palette{}), nil)
	assert.ErrorIs(t, err, ErrPaletteSource)

	c, err = New(Options{Tall: true}, nil)
	require.NoError(t, err)
	_, err = c.Convert(newImage(8, 8, dmg), nil)
	assert.ErrorIs(t, err, ErrShape)
}

func TestConvertTall(t *testing.T) {
	m := newImage(16, 16, dmg)
	fill(m, 0, 0, 0)
	fill(m, 1, 0, 1)
	fill(m, 0, 1, 2)
	fill(m, 1, 1, 3)

	r := convert(t, Options{Tall: true}, m, nil)
	require.Len(t, r.TileData, 64)
	plane := func(i int) []byte { return r.TileData[i*16 : i*16+2] }
	assert.Equal(t, []byte{0x00, 0x00}, plane(0))
	assert.Equal(t, []byte{0x00, 0xff}, plane(1))
	assert.Equal(t, []byte{0xff, 0x00}, plane(2))
	assert.Equal(t, []byte{0xff, 0xff}, plane(3))
}

func TestConvertTallColor(t *testing.T) {
	p := color.Palette{black, white, red, green, blue, grey, dmg[1], dmg[2]}
	m := newImage(16, 16, p)
	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			for x := 0; x < 4; x++ {
				// left column uses colors 0-3, right column 4-7
				m.SetColorIndex(tx*8+x, ty*8, uint8(tx*4+x))
			}
			for x := 4; x < 8; x++ {
				m.SetColorIndex(tx*8+x, ty*8, uint8(tx*4))
			}
			for y := 1; y < 8; y++ {
				for x := 0; x < 8; x++ {
					m.SetColorIndex(tx*8+x, ty*8+y, uint8(tx*4))
				}
			}
		}
	}

	r := convert(t, Options{Colors: Color, Tall: true}, m, nil)
	assert.Equal(t, 4, r.TileCount)
	assert.Equal(t, 2, r.PaletteCount)
	assert.Equal(t, []int{0, 0, 1, 1}, r.Palettes)
}

func TestConvertMapRLE(t *testing.T) {
	m := newImage(32, 8, dmg)

	r := convert(t, Options{Layout: Map, Colors: Color, RLE: true}, m, nil)
	assert.Equal(t, 1, r.TileCount)
	assert.Equal(t, 1, r.PaletteCount)
	assert.Equal(t, []byte{0, 0, 16}, r.TileData)
	assert.Equal(t, []int{0, 0, 4}, r.Tiles)
	assert.Equal(t, []int{0, 0, 4}, r.Palettes)
	// palette colors are never compressed
	assert.Equal(t, []int{0x7fff, 0, 0, 0}, r.PaletteData)
}

func TestConvertDual(t *testing.T) {
	m := newImage(16, 8, dmg)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(8, 0, 1)

	ref := newImage(16, 8, color.Palette{black, white, red})
	ref.SetColorIndex(0, 0, 1)
	ref.SetColorIndex(8, 0, 2)

	r := convert(t, Options{Colors: Dual}, m, ref)
	assert.Equal(t, []int{0, 1}, r.Palettes)
	assert.Equal(t, 2, r.PaletteCount)
	assert.Equal(t, []int{0, 0x7fff, 0, 0, 0, 0x001f, 0, 0}, r.PaletteData)
	assert.Equal(t, byte(0x80), r.TileData[0])
	assert.Equal(t, byte(0x80), r.TileData[16])
}

func TestConvertDualErrors(t *testing.T) {
	m := newImage(16, 8, dmg)
	ref := newImage(16, 8, color.Palette{black, white})
	ref.SetColorIndex(9, 3, 1)

	c, err := New(Options{Colors: Dual}, nil)
	require.NoError(t, err)

	_, err = c.Convert(m, ref)
	require.ErrorIs(t, err, ErrOverloadedColorMapping)
	var te *TileError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, image.Pt(1, 0), image.Pt(te.X, te.Y))

	_, err = c.Convert(m, newImage(8, 8, dmg))
	assert.ErrorIs(t, err, ErrShape)

	_, err = c.Convert(m, nil)
	assert.ErrorIs(t, err, ErrPaletteSource)
}

func TestConvertBorder(t *testing.T) {
	p := color.Palette{red, color.NRGBA{0x00, 0x00, 0x00, 0x00}, blue, color.NRGBA{0, 0, 0, 0x80}}
	m := newImage(24, 8, p)
	fill(m, 0, 0, 0)
	m.SetColorIndex(0, 0, 3)
	fill(m, 1, 0, 2)
	m.SetColorIndex(8, 0, 1)
	fill(m, 2, 0, 0)
	m.SetColorIndex(16, 0, 1)

	r := convert(t, Options{Layout: Border, Colors: Color}, m, nil)
	assert.Equal(t, 32, r.TileSize)
	assert.Equal(t, 2, r.TileCount)
	assert.Equal(t, []int{0, 1, 0}, r.Tiles)
	assert.Equal(t, []int{0, 0, 0}, r.Palettes)
	assert.Equal(t, 1, r.PaletteCount)
	require.Len(t, r.PaletteData, 32)
	assert.Equal(t, []int{0, 0, 0x1f, 0x00, 0x00, 0x7c}, r.PaletteData[:6])

	// transparent is slot 0, red slot 1
	assert.Equal(t, byte(0x10), r.TileData[0])
	assert.Equal(t, byte(0x11), r.TileData[1])
	// blue is slot 2
	assert.Equal(t, byte(0x20), r.TileData[32])

	// the input image is left alone
	assert.Equal(t, uint8(3), m.ColorIndexAt(0, 0))
}

func TestConvertBorderAddsTransparent(t *testing.T) {
	m := newImage(8, 8, color.Palette{red, blue})
	m.SetColorIndex(0, 0, 1)

	r := convert(t, Options{Layout: Border, Colors: Color}, m, nil)
	assert.Equal(t, []int{0, 0, 0x00, 0x7c, 0x1f, 0x00}, r.PaletteData[:6])
}

func TestConvertBorderOverflow(t *testing.T) {
	p := make(color.Palette, 16)
	for i := range p {
		p[i] = color.RGBA{uint8(i * 16), 0, 0, 0xff}
	}
	m := newImage(8, 8, p)
	for i := 0; i < 16; i++ {
		m.SetColorIndex(i%8, i/8, uint8(i))
	}

	c, err := New(Options{Layout: Border, Colors: Color}, nil)
	require.NoError(t, err)
	_, err = c.Convert(m, nil)
	assert.ErrorIs(t, err, ErrTileColorOverflow)
}

func TestConvertSubImage(t *testing.T) {
	m := newImage(16, 8, dmg)
	m.SetColorIndex(9, 0, 3)
	sub := m.SubImage(image.Rect(8, 0, 16, 8)).(*image.Paletted)

	r := convert(t, Options{}, sub, nil)
	assert.Equal(t, []byte{0x40, 0x40}, r.TileData[:2])
}

func TestConvertDeterministic(t *testing.T) {
	m := newImage(64, 64, color.Palette{black, white, red, green, blue, grey})
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			m.SetColorIndex(x, y, uint8((x/8+y/8*3+x%2)%6))
		}
	}

	opts := Options{Layout: Map, Colors: Color, RLE: true}
	r1 := convert(t, opts, m, nil)
	r2 := convert(t, opts, m, nil)
	assert.Equal(t, r1, r2)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{Layout: Border, Colors: Color}.Validate())
	assert.Error(t, Options{Layout: Border}.Validate())
	assert.Error(t, Options{Layout: Border, Colors: Color, Tall: true}.Validate())
	assert.Error(t, Options{Layout: Border, Colors: Color, RLE: true}.Validate())
	assert.Error(t, Options{Layout: Layout(9)}.Validate())
	assert.Error(t, Options{Quantize: 1000}.Validate())

	_, err := New(Options{Colors: Colors(7)}, nil)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	l, err := ParseLayout("Map")
	require.NoError(t, err)
	assert.Equal(t, Map, l)
	_, err = ParseLayout("nope")
	assert.Error(t, err)

	c, err := ParseColors("dx")
	require.NoError(t, err)
	assert.Equal(t, Dual, c)
	assert.Equal(t, "color", Color.String())
}
