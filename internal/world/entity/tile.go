package entity

// Tile 是地图上的一个格子，最多放一个物品。零值为空格子。
type Tile struct {
	item   Item
	filled bool
}

func (t *Tile) HasItem() bool {
	return t.filled
}

// FillRandomly 无条件覆盖格子内容，是否允许覆盖由调用方（生成器）决定。
func (t *Tile) FillRandomly(rng Rand) {
	t.Put(RandomItem(rng))
}

// Put 无条件放入物品。
func (t *Tile) Put(item Item) {
	t.item = item
	t.filled = true
}

// Content 返回格子里的物品，空格子 ok=false。
func (t Tile) Content() (Item, bool) {
	return t.item, t.filled
}

// Take 取走物品并清空格子。
func (t *Tile) Take() (Item, bool) {
	if !t.filled {
		return Item{}, false
	}
	item := t.item
	*t = Tile{}
	return item, true
}
