/*
Package export writes conversion results as C source for use with GBDK.

Either a single header holding both declarations and data is written, or a
header of declarations plus a separate source file holding the data.
*/
package export

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/bodgit/imgtogb"
)

// perLine is the number of values written on each line
const perLine = 16

const headerTemplate = `#ifndef {{.Guard}}
#define {{.Guard}}
#define {{.Name}}_data_length {{.DataLength}}
{{- if .RLE}}
#define {{.Name}}_rle 1
{{- end}}
{{.Extern}}const unsigned char {{.Name}}_data[]{{if .Data}} = {
    {{.Data}}
}{{end}};
{{- if .Map}}
#define {{.Name}}_tiles_width {{.Width}}
#define {{.Name}}_tiles_height {{.Height}}
{{- if not .Border}}
#define {{.Name}}_tiles_offset {{.Offset}}
{{- end}}
{{.Extern}}const unsigned char {{.Name}}_tiles[]{{if .Tiles}} = {
    {{.Tiles}}
}{{end}};
{{- end}}
{{- if .HasPalettes}}
{{.Extern}}const unsigned char {{.Name}}_palettes[]{{if .Palettes}} = {
    {{.Palettes}}
}{{end}};
#define {{.Name}}_{{if .Border}}num_palettes{{else}}palette_data_length{{end}} {{.PaletteLength}}
{{.Extern}}const unsigned {{.PaletteType}} {{.Name}}_palette_data[]{{if .PaletteData}} = {
    {{.PaletteData}}
}{{end}};
{{- end}}
#endif
`

const sourceTemplate = `const unsigned char {{.Name}}_data[] = {
    {{.Data}}
};
{{- if .Map}}
const unsigned char {{.Name}}_tiles[] = {
    {{.Tiles}}
};
{{- end}}
{{- if .HasPalettes}}
const unsigned char {{.Name}}_palettes[] = {
    {{.Palettes}}
};
const unsigned {{.PaletteType}} {{.Name}}_palette_data[] = {
    {{.PaletteData}}
};
{{- end}}
`

var (
	header = template.Must(template.New("header").Parse(headerTemplate))
	source = template.Must(template.New("source").Parse(sourceTemplate))
)

type view struct {
	Name   string
	Guard  string
	Extern string

	Border      bool
	Map         bool
	RLE         bool
	HasPalettes bool

	DataLength    int
	Width         int
	Height        int
	Offset        int
	PaletteLength int
	PaletteType   string

	Data        string
	Tiles       string
	Palettes    string
	PaletteData string
}

// pretty formats values as comma separated, right-justified columns.
func pretty(values []int) string {
	lines := make([]string, 0, len(values)/perLine+1)
	for i := 0; i < len(values); i += perLine {
		j := i + perLine
		if j > len(values) {
			j = len(values)
		}
		cols := make([]string, 0, perLine)
		for _, v := range values[i:j] {
			cols = append(cols, fmt.Sprintf("%3d", v))
		}
		lines = append(lines, strings.Join(cols, ", "))
	}
	return strings.Join(lines, ",\n    ")
}

func ints(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// Name returns the C identifier prefix for a file, its base name without
// the extension.
func Name(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newView(name string, r *imgtogb.Result, data bool) view {
	v := view{
		Name:          name,
		Border:        r.Layout == imgtogb.Border,
		Map:           r.HasMap(),
		RLE:           r.RLE,
		HasPalettes:   r.HasPalettes(),
		DataLength:    r.TileCount,
		Width:         r.TilesWidth,
		Height:        r.TilesHeight,
		Offset:        r.TilesOffset,
		PaletteLength: r.PaletteCount,
		PaletteType:   "int",
	}

	switch r.Layout {
	case imgtogb.Map:
		v.Guard = strings.ToUpper(name) + "_MAP_H"
	case imgtogb.Border:
		v.Guard = strings.ToUpper(name) + "_BORDER_H"
		v.PaletteType = "char"
	default:
		v.Guard = strings.ToUpper(name) + "_SPRITES_H"
	}

	if data {
		v.Data = pretty(ints(r.TileData))
		v.Tiles = pretty(r.Tiles)
		v.Palettes = pretty(r.Palettes)
		v.PaletteData = pretty(r.PaletteData)
	} else {
		v.Extern = "extern "
	}

	return v
}

// WriteHeader writes r to w as a single header file.
func WriteHeader(w io.Writer, name string, r *imgtogb.Result) error {
	return header.Execute(w, newView(name, r, true))
}

// WriteSource writes the data in r to c and the matching declarations to h.
func WriteSource(c, h io.Writer, name string, r *imgtogb.Result) error {
	if err := source.Execute(c, newView(name, r, true)); err != nil {
		return err
	}
	return header.Execute(h, newView(name, r, false))
}

// WriteFiles renders r and writes it to the header file hfile, and to the
// source file cfile if it is not empty. Nothing is written if rendering
// fails.
func WriteFiles(hfile, cfile string, r *imgtogb.Result) error {
	name := Name(hfile)

	var h, c bytes.Buffer
	if cfile == "" {
		if err := WriteHeader(&h, name, r); err != nil {
			return err
		}
	} else {
		if err := WriteSource(&c, &h, name, r); err != nil {
			return err
		}
		if err := ioutil.WriteFile(cfile, c.Bytes(), 0644); err != nil {
			return err
		}
	}

	return ioutil.WriteFile(hfile, h.Bytes(), 0644)
}
