package imgtogb

import (
	"fmt"
	"image"
	"image/color"

	"github.com/bodgit/imgtogb/palette"
	"github.com/bodgit/imgtogb/rle"
	"github.com/bodgit/imgtogb/tile"
	"github.com/bodgit/imgtogb/tilemap"
)

// dxSlots is the number of colors in a Game Boy Color palette
const dxSlots = 4

// Result holds everything produced by a conversion.
type Result struct {
	Layout Layout `yaml:"layout"`

	// TileData is the packed tiles, run-length encoded if RLE is set
	TileData []byte `yaml:"tile_data,flow"`
	// TileCount is the number of tiles in TileData before compression
	TileCount int `yaml:"tile_count"`
	// TileSize is the number of bytes per tile
	TileSize int `yaml:"tile_size"`

	// Tiles is the tile map, only for the map and border layouts
	Tiles       []int `yaml:"tiles,flow,omitempty"`
	TilesWidth  int   `yaml:"tiles_width"`
	TilesHeight int   `yaml:"tiles_height"`
	TilesOffset int   `yaml:"tiles_offset"`

	// Palettes is the palette index of every tile or tile map entry
	Palettes []int `yaml:"palettes,flow,omitempty"`
	// PaletteData is one 15-bit color per slot, or for a border two bytes
	// per slot
	PaletteData   []int `yaml:"palette_data,flow,omitempty"`
	PaletteCount  int   `yaml:"palette_count"`
	PaletteOffset int   `yaml:"palette_offset"`

	RLE bool `yaml:"rle"`
}

// HasPalettes reports whether the conversion produced palettes.
func (r *Result) HasPalettes() bool {
	return r.Palettes != nil
}

// HasMap reports whether the conversion produced a tile map.
func (r *Result) HasMap() bool {
	return r.Tiles != nil
}

func checkShape(m *image.Paletted, tall bool) error {
	b := m.Bounds()
	if b.Dx()%tile.Width != 0 || b.Dy()%tile.Height != 0 {
		return fmt.Errorf("%w: %dx%d not divisible by %d", ErrShape, b.Dx(), b.Dy(), tile.Width)
	}
	if tall && b.Dy()%(tile.Height*2) != 0 {
		return fmt.Errorf("%w: height %d not divisible by %d for 8x16 sprites", ErrShape, b.Dy(), tile.Height*2)
	}
	if len(m.Palette) == 0 {
		return ErrPaletteSource
	}
	return nil
}

// normalize adjusts the image so that the top-left corner is at (0, 0).
func normalize(m *image.Paletted) *image.Paletted {
	if m.Rect.Min != (image.Point{}) {
		dup := *m
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		return &dup
	}
	return m
}

// tileOrder returns the tile coordinates in output order. 8x16 sprites take
// each column pair of two tile rows at a time.
func tileOrder(tilesX, tilesY int, tall bool) []image.Point {
	order := make([]image.Point, 0, tilesX*tilesY)
	if tall {
		for y := 0; y < tilesY; y += 2 {
			for x := 0; x < tilesX*2; x++ {
				order = append(order, image.Pt(x>>1, y+x&1))
			}
		}
		return order
	}
	for y := 0; y < tilesY; y++ {
		for x := 0; x < tilesX; x++ {
			order = append(order, image.Pt(x, y))
		}
	}
	return order
}

// consolidateTransparent returns a copy of m where every transparent color
// is replaced by the first one, appending a transparent color if there is
// none, along with the index of that color.
func consolidateTransparent(m *image.Paletted) (*image.Paletted, uint8, error) {
	trans := -1
	var remap [256]uint8
	for i := range remap {
		remap[i] = uint8(i)
	}
	for i, c := range m.Palette {
		if palette.IsTransparent(c) {
			if trans < 0 {
				trans = i
			}
			remap[i] = uint8(trans)
		}
	}

	p := append(color.Palette(nil), m.Palette...)
	if trans < 0 {
		if len(p) >= 256 {
			return nil, 0, fmt.Errorf("%w: no room for a transparent color", ErrPaletteSource)
		}
		trans = len(p)
		p = append(p, palette.Transparent)
	}

	b := m.Bounds()
	dup := image.NewPaletted(b, p)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dup.SetColorIndex(x, y, remap[m.ColorIndexAt(x, y)])
		}
	}
	return dup, uint8(trans), nil
}

// Convert converts m. The reference image ref is only used, and required,
// when the color mode is Dual. Nothing is returned unless every tile
// converts successfully.
func (c *Converter) Convert(m, ref *image.Paletted) (*Result, error) {
	if err := checkShape(m, c.opts.Tall); err != nil {
		return nil, err
	}
	m = normalize(m)

	tilesX, tilesY := m.Rect.Dx()/tile.Width, m.Rect.Dy()/tile.Height
	order := tileOrder(tilesX, tilesY, c.opts.Tall)

	var (
		data        [][]byte
		ids         []int
		paletteData []int
		palettes    int
		err         error
	)

	switch c.opts.Colors {
	case Monochrome, Dual:
		if data, err = c.encodeTiles(m, order, nil, nil); err != nil {
			return nil, err
		}
		if c.opts.Colors == Dual {
			if ids, paletteData, palettes, err = c.reconcile(m, ref, tilesX, tilesY); err != nil {
				return nil, err
			}
		}
	case Color:
		var reserved []uint8
		if c.profile.transparent {
			var trans uint8
			if m, trans, err = consolidateTransparent(m); err != nil {
				return nil, err
			}
			reserved = append(reserved, trans)
		}

		a := palette.NewAllocator(c.profile.capacity, reserved...)
		if ids, err = c.allocate(a, m, tilesX, tilesY); err != nil {
			return nil, err
		}
		if data, err = c.encodeTiles(m, order, ids, a.Palettes()); err != nil {
			return nil, err
		}

		colors := palette.Table(a.Palettes(), m.Palette, c.profile.capacity)
		if c.profile.transparent {
			for _, b := range palette.Bytes(colors) {
				paletteData = append(paletteData, int(b))
			}
		} else {
			for _, v := range colors {
				paletteData = append(paletteData, int(v))
			}
		}
		palettes = a.Len()
	}

	r := &Result{
		Layout:        c.opts.Layout,
		TileSize:      c.profile.depth.Size(),
		TilesWidth:    tilesX,
		TilesHeight:   tilesY,
		TilesOffset:   c.opts.TileOffset,
		PaletteOffset: c.opts.PaletteOffset,
		RLE:           c.opts.RLE,
	}

	if ids != nil {
		// Palette indices follow the tile data rather than the raster
		r.Palettes = make([]int, len(order))
		for i, pt := range order {
			r.Palettes[i] = ids[pt.Y*tilesX+pt.X] + c.opts.PaletteOffset
		}
		r.PaletteData = paletteData
		r.PaletteCount = palettes
	}

	if c.profile.dedup {
		t, tiles := tilemap.Build(data, c.opts.TileOffset)
		r.TileData = t.Bytes()
		r.TileCount = t.Len()
		r.Tiles = tiles
	} else {
		for _, b := range data {
			r.TileData = append(r.TileData, b...)
		}
		r.TileCount = len(data)
	}

	c.logger.Printf("Converted %d tiles into %d unique tiles with %d palettes\n", len(data), r.TileCount, r.PaletteCount)

	if c.opts.RLE {
		if r.TileData, err = rle.Uint8s(rle.Compress(rle.Ints(r.TileData))); err != nil {
			return nil, err
		}
		if r.Tiles != nil {
			r.Tiles = rle.Compress(r.Tiles)
		}
		if r.Palettes != nil {
			r.Palettes = rle.Compress(r.Palettes)
		}
		c.logger.Printf("Compressed tile data to %d bytes\n", len(r.TileData))
	}

	return r, nil
}

// allocate assigns every tile a palette, in raster order, returning the
// palette index of each tile.
func (c *Converter) allocate(a *palette.Allocator, m *image.Paletted, tilesX, tilesY int) ([]int, error) {
	ids := make([]int, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			t := tile.Extract(m, tx, ty)
			colors := t.Colors()
			if len(colors) > c.profile.depth.Colors() || !a.Fits(colors) {
				return nil, &TileError{X: tx, Y: ty, Err: fmt.Errorf("%w: %d colors", ErrTileColorOverflow, len(colors))}
			}
			id, err := a.Assign(colors)
			if err != nil {
				return nil, &TileError{X: tx, Y: ty, Err: err}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// reconcile builds palettes for a monochrome image from a colored reference
// image with the same layout.
func (c *Converter) reconcile(m, ref *image.Paletted, tilesX, tilesY int) ([]int, []int, int, error) {
	if ref == nil || len(ref.Palette) == 0 {
		return nil, nil, 0, fmt.Errorf("%w: reference image", ErrPaletteSource)
	}
	if ref.Rect.Size() != m.Rect.Size() {
		return nil, nil, 0, fmt.Errorf("%w: reference image is %v, expected %v", ErrShape, ref.Rect.Size(), m.Rect.Size())
	}
	ref = normalize(ref)

	rc := palette.NewReconciler()
	ids := make([]int, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			src, dst := tile.Extract(m, tx, ty), tile.Extract(ref, tx, ty)
			rules, err := palette.NewRules(src[:], dst[:])
			if err != nil {
				return nil, nil, 0, &TileError{X: tx, Y: ty, Err: err}
			}
			ids = append(ids, rc.Assign(rules))
		}
	}

	colors := rc.Colors(ref.Palette, dxSlots)
	data := make([]int, len(colors))
	for i, v := range colors {
		data[i] = int(v)
	}

	return ids, data, rc.Len(), nil
}

// encodeTiles packs every tile in order. If palettes is not nil each tile is
// mapped through the palette given by ids, which is in raster order.
func (c *Converter) encodeTiles(m *image.Paletted, order []image.Point, ids []int, palettes []palette.Palette) ([][]byte, error) {
	tilesX := m.Rect.Dx() / tile.Width
	data := make([][]byte, 0, len(order))
	for _, pt := range order {
		var p []uint8
		if palettes != nil {
			p = palettes[ids[pt.Y*tilesX+pt.X]]
		}
		b, err := tile.Encode(tile.Extract(m, pt.X, pt.Y), c.profile.depth, p)
		if err != nil {
			return nil, &TileError{X: pt.X, Y: pt.Y, Err: err}
		}
		data = append(data, b)
	}
	return data, nil
}
