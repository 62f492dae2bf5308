package imgtogb

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register decoder
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/ericpauley/go-quantize/quantize"
)

// Paletted returns m as an indexed image. Images that are not already
// indexed are converted if their color model is a palette, otherwise they
// are reduced to n colors with a median cut quantizer. With n of zero such
// images are rejected.
func Paletted(m image.Image, n int) (*image.Paletted, error) {
	if pm, ok := m.(*image.Paletted); ok {
		return pm, nil
	}

	b := m.Bounds()
	if cp, ok := m.ColorModel().(color.Palette); ok {
		pm := image.NewPaletted(b, cp)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pm.Set(x, y, cp.Convert(m.At(x, y)))
			}
		}
		return pm, nil
	}

	if n <= 0 {
		return nil, ErrPaletteSource
	}

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	return pm, nil
}

// Decode reads an image from r and returns it as an indexed image, see
// Paletted.
func Decode(r io.Reader, n int) (*image.Paletted, error) {
	m, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return Paletted(m, n)
}

func decodeFile(file string, n int) (*image.Paletted, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Decode(f, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

// ConvertFile decodes and converts the image in file. The reference file is
// only read in Dual color mode.
func (c *Converter) ConvertFile(file, reference string) (*Result, error) {
	m, err := decodeFile(file, c.opts.Quantize)
	if err != nil {
		return nil, err
	}

	var ref *image.Paletted
	if c.opts.Colors == Dual {
		if reference == "" {
			return nil, fmt.Errorf("%w: no reference image", ErrPaletteSource)
		}
		if ref, err = decodeFile(reference, c.opts.Quantize); err != nil {
			return nil, err
		}
	}

	c.logger.Printf("Converting \"%s\" as %v/%v\n", file, c.opts.Layout, c.opts.Colors)

	return c.Convert(m, ref)
}
