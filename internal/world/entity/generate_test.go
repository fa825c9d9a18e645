package entity

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFilled(w *World) int {
	n := 0
	for _, tile := range w.Tiles() {
		if tile.HasItem() {
			n++
		}
	}
	return n
}

func TestGenerate_10x10恰好5个物品(t *testing.T) {
	w := Generate(rand.New(rand.NewPCG(1, 2)), 10, 10)
	assert.Equal(t, 5, countFilled(w))
	assert.Equal(t, 95, 100-countFilled(w))
	assert.False(t, w.Dirty())
}

func TestGenerate_同一种子可复现(t *testing.T) {
	a := Generate(rand.New(rand.NewPCG(99, 5)), 10, 10)
	b := Generate(rand.New(rand.NewPCG(99, 5)), 10, 10)
	assert.Equal(t, a.Snapshot(0).Tiles, b.Snapshot(0).Tiles)
}

func TestGenerate_少于20格不放物品(t *testing.T) {
	for _, dim := range [][2]int{{1, 1}, {4, 4}, {19, 1}, {0, 0}, {0, 50}} {
		w := Generate(rand.New(rand.NewPCG(7, 7)), dim[0], dim[1])
		assert.Equal(t, 0, countFilled(w), "dim=%v", dim)
	}
}

func TestOreCount(t *testing.T) {
	assert.Equal(t, 0, OreCount(19, 1))
	assert.Equal(t, 1, OreCount(20, 1))
	assert.Equal(t, 5, OreCount(10, 10))
	assert.Equal(t, 0, OreCount(-3, 10))
}

// 任意尺寸、任意放置率（包括铺满）都必须在有限步内放置恰好 count 个物品。
func TestFillRandomTiles_任意放置率都能结束(t *testing.T) {
	seed := rand.New(rand.NewPCG(11, 13))
	for round := 0; round < 200; round++ {
		x, y := 1+seed.IntN(30), 1+seed.IntN(30)
		n := x * y
		count := seed.IntN(n + 1)
		if round%10 == 0 {
			count = n
		}
		w := NewWorld(x, y)
		rng := rand.New(rand.NewPCG(uint64(round), 1))
		placed := w.FillRandomTiles(rng, count)
		require.Equal(t, count, placed, "x=%d y=%d", x, y)
		require.Equal(t, count, countFilled(w), "x=%d y=%d", x, y)
	}
}

func TestFillRandomTiles_不覆盖已有物品(t *testing.T) {
	w := NewWorld(5, 5)
	rng := rand.New(rand.NewPCG(5, 5))
	assert.Equal(t, 20, w.FillRandomTiles(rng, 20))
	// 只剩 5 个空格子
	assert.Equal(t, 5, w.FillRandomTiles(rng, 10))
	assert.Equal(t, 0, w.FillRandomTiles(rng, 1))
	assert.Equal(t, 25, countFilled(w))
}
