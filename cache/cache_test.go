package cache

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/imgtogb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "cache")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestKey(t *testing.T) {
	opts := imgtogb.Options{}

	k1, err := Key(opts, strings.NewReader("abc"))
	require.NoError(t, err)
	k2, err := Key(opts, strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 40)

	k3, err := Key(imgtogb.Options{RLE: true}, strings.NewReader("abc"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	k4, err := Key(opts, strings.NewReader("ab"), strings.NewReader("c"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)
}

func TestPutGet(t *testing.T) {
	c, err := Open(filepath.Join(tempDir(t), "cache.db"), nil)
	require.NoError(t, err)
	defer c.Close()

	r, err := c.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, r)

	want := &imgtogb.Result{
		Layout:       imgtogb.Map,
		TileData:     []byte{0, 0, 16, 0xff},
		TileCount:    2,
		TileSize:     16,
		Tiles:        []int{0, 1, 0},
		TilesWidth:   3,
		TilesHeight:  1,
		Palettes:     []int{0, 0, 0},
		PaletteData:  []int{0, 0x7fff, 0, 0},
		PaletteCount: 1,
		RLE:          true,
	}
	require.NoError(t, c.Put("key", want))
	require.NoError(t, c.Put("key", want))

	got, err := c.Get("key")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConvert(t *testing.T) {
	dir := tempDir(t)
	file := filepath.Join(dir, "in.png")

	m := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{color.White, color.Black})
	m.SetColorIndex(0, 0, 1)
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, m))
	require.NoError(t, ioutil.WriteFile(file, b.Bytes(), 0644))

	c, err := Open(filepath.Join(dir, "cache.db"), nil)
	require.NoError(t, err)
	defer c.Close()

	conv, err := imgtogb.New(imgtogb.Options{}, nil)
	require.NoError(t, err)

	r1, err := c.Convert(conv, file, "")
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), r1.TileData[0])

	key, err := FileKey(conv.Options(), file)
	require.NoError(t, err)
	cached, err := c.Get(key)
	require.NoError(t, err)
	require.NotNil(t, cached)

	r2, err := c.Convert(conv, file, "")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
