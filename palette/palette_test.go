package palette

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorFirstFit(t *testing.T) {
	a := NewAllocator(4)

	tests := []struct {
		candidate []uint8
		want      int
	}{
		{[]uint8{0, 1}, 0},
		{[]uint8{2, 3}, 0},
		{[]uint8{4, 5}, 1},
		{[]uint8{1, 3}, 0},
		{[]uint8{5, 6, 7}, 1},
		{[]uint8{0, 4, 8}, 2},
		{[]uint8{9}, 2},
	}

	for _, tt := range tests {
		got, err := a.Assign(tt.candidate)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "candidate %v", tt.candidate)
	}

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []Palette{{0, 1, 2, 3}, {4, 5, 6, 7}, {0, 4, 8, 9}}, a.Palettes())
}

func TestAllocatorReserved(t *testing.T) {
	a := NewAllocator(4, 7)

	id, err := a.Assign([]uint8{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	id, err = a.Assign([]uint8{7, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	id, err = a.Assign([]uint8{4})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, []Palette{{7, 1, 2, 3}, {7, 4}}, a.Palettes())

	_, err = a.Assign([]uint8{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrCapacity)
	assert.True(t, a.Fits([]uint8{7, 1, 2, 3}))
}

func TestAllocatorInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	a := NewAllocator(4)
	for n := 0; n < 1000; n++ {
		seen := make(map[uint8]bool)
		var candidate []uint8
		for i := r.Intn(4) + 1; i > 0; i-- {
			c := uint8(r.Intn(12))
			if !seen[c] {
				seen[c] = true
				candidate = append(candidate, c)
			}
		}
		id, err := a.Assign(candidate)
		require.NoError(t, err)
		p := a.Palettes()[id]
		for _, c := range candidate {
			assert.True(t, p.Contains(c))
		}
		for _, p := range a.Palettes() {
			assert.LessOrEqual(t, len(p), 4)
		}
	}
}

func TestAllocatorDeterministic(t *testing.T) {
	run := func() ([]int, []Palette) {
		r := rand.New(rand.NewSource(7))
		a := NewAllocator(16, 0)
		var ids []int
		for n := 0; n < 200; n++ {
			id, err := a.Assign([]uint8{uint8(r.Intn(40)), uint8(r.Intn(40)), uint8(r.Intn(40))})
			require.NoError(t, err)
			ids = append(ids, id)
		}
		return ids, a.Palettes()
	}
	ids1, p1 := run()
	ids2, p2 := run()
	assert.Equal(t, ids1, ids2)
	assert.Equal(t, p1, p2)
}
