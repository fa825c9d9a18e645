package entity

// OreCount 是 x*y 的地图在生成时放置的物品数：每 20 格一个。
func OreCount(x, y int) int {
	if x <= 0 || y <= 0 {
		return 0
	}
	return x * y / 20
}

// Generate 创建世界并随机放置恰好 OreCount(x, y) 个物品，同一随机源结果可复现。
func Generate(rng Rand, x, y int, opts ...Option) *World {
	w := NewWorld(x, y, opts...)
	w.FillRandomTiles(rng, OreCount(x, y))
	w.ClearDirty()
	return w
}

// FillRandomTiles 在空格子里随机放置 count 个物品，返回实际放置数（空格子不足时截断）。
//
// 放置率不超过一半时用拒绝采样：随机抽线性下标，已有物品就重抽，期望抽取次数 < 2*count。
// 超过一半后改为从剩余空格子中无放回抽取，保证任意 count <= 格子数都能在有限步内结束。
func (w *World) FillRandomTiles(rng Rand, count int) int {
	n := len(w.tiles)
	filled := 0
	for _, t := range w.tiles {
		if t.HasItem() {
			filled++
		}
	}
	target := min(max(count, 0), n-filled)
	if target == 0 {
		return 0
	}

	placed := 0
	for placed < target && (filled+placed)*2 < n {
		i := rng.IntN(n)
		if w.tiles[i].HasItem() {
			continue
		}
		w.tiles[i].FillRandomly(rng)
		placed++
	}

	if placed < target {
		empty := make([]int, 0, n-filled-placed)
		for i, t := range w.tiles {
			if !t.HasItem() {
				empty = append(empty, i)
			}
		}
		for ; placed < target; placed++ {
			k := rng.IntN(len(empty))
			w.tiles[empty[k]].FillRandomly(rng)
			empty[k] = empty[len(empty)-1]
			empty = empty[:len(empty)-1]
		}
	}
	w.dirty = true
	return placed
}
