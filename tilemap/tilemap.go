/*
Package tilemap implements tile deduplication.

Identical packed tiles are stored once in a Table and every tile position is
replaced by the id of its entry. Ids are handed out densely in the order
tiles are first seen, starting at zero.
*/
package tilemap

// Table is a content addressed set of packed tiles.
type Table struct {
	ids   map[string]int
	tiles [][]byte
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		ids: make(map[string]int),
	}
}

// Add returns the id of tile b, adding it to the table if it is new.
func (t *Table) Add(b []byte) int {
	if id, ok := t.ids[string(b)]; ok {
		return id
	}
	id := len(t.tiles)
	t.tiles = append(t.tiles, append([]byte(nil), b...))
	t.ids[string(b)] = id
	return id
}

// Len returns the number of distinct tiles.
func (t *Table) Len() int {
	return len(t.tiles)
}

// Tile returns the packed tile with the given id.
func (t *Table) Tile(id int) []byte {
	return t.tiles[id]
}

// Bytes returns every distinct tile concatenated in id order.
func (t *Table) Bytes() []byte {
	n := 0
	for _, b := range t.tiles {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range t.tiles {
		out = append(out, b...)
	}
	return out
}

// Build deduplicates tiles, returning the table and the id of each tile
// shifted by offset.
func Build(tiles [][]byte, offset int) (*Table, []int) {
	t := New()
	ids := make([]int, len(tiles))
	for i, b := range tiles {
		ids[i] = t.Add(b) + offset
	}
	return t, ids
}
