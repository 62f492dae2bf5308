package imgtogb

import (
	"errors"
	"fmt"

	"github.com/bodgit/imgtogb/palette"
	"github.com/bodgit/imgtogb/tile"
)

var (
	// ErrShape is returned when image dimensions are not a multiple of
	// the tile size or paired images differ in size
	ErrShape = errors.New("imgtogb: bad image dimensions")
	// ErrPaletteSource is returned when an image has no usable color table
	ErrPaletteSource = errors.New("imgtogb: image is not indexed")
	// ErrTileColorOverflow is returned when a tile uses more colors than
	// a palette can hold
	ErrTileColorOverflow = tile.ErrColorOverflow
	// ErrOverloadedColorMapping is returned when one color in a
	// monochrome tile corresponds to several colors in the reference tile
	ErrOverloadedColorMapping = palette.ErrOverloaded
	// ErrEncodeCapacity is returned when a pixel cannot be represented
	// after palette mapping
	ErrEncodeCapacity = tile.ErrCapacity
)

// TileError records the tile that caused a conversion to fail.
type TileError struct {
	X, Y int
	Err  error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("imgtogb: tile (%d,%d): %v", e.X, e.Y, e.Err)
}

func (e *TileError) Unwrap() error {
	return e.Err
}
