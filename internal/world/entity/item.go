package entity

import (
	"fmt"
	"strings"
)

// Ore 是六种矿石之一，按固定顺序编号 0..5。
type Ore uint8

const (
	Linemate Ore = iota
	Deraumere
	Sibur
	Mendiane
	Phiras
	Thystame
)

const (
	// OreKinds 是矿石种类数。
	OreKinds = 6
	// ItemKinds 是物品种类数：食物 + 每种矿石。
	ItemKinds = OreKinds + 1
)

const foodName = "nourriture"

var oreNames = [OreKinds]string{"linemate", "deraumere", "sibur", "mendiane", "phiras", "thystame"}

// OreFromIndex 把 0..5 转换为对应矿石，越界返回 ErrInvalidOreNumber。
func OreFromIndex(n int) (Ore, error) {
	if n < 0 || n >= OreKinds {
		return 0, invalidOreNumber(n)
	}
	return Ore(n), nil
}

// ParseOre 按名字（大小写不敏感）查找矿石。
func ParseOre(name string) (Ore, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range oreNames {
		if n == name {
			return Ore(i), nil
		}
	}
	return 0, ErrInvalidOreNumber.WithMsgf("unknown ore %q", name).WithData("name", name)
}

// Ores 按编号顺序返回全部矿石。
func Ores() []Ore {
	out := make([]Ore, OreKinds)
	for i := range out {
		out[i] = Ore(i)
	}
	return out
}

func (o Ore) String() string {
	if int(o) < OreKinds {
		return oreNames[o]
	}
	return fmt.Sprintf("ore(%d)", uint8(o))
}

// ItemKind 区分食物与矿石。
type ItemKind uint8

const (
	KindFood ItemKind = iota
	KindOre
)

// Item 是 {Food, Ore(kind)} 的标签联合。值类型，可作为 map key。
type Item struct {
	kind ItemKind
	ore  Ore
}

func Food() Item {
	return Item{kind: KindFood}
}

func OreItem(o Ore) Item {
	return Item{kind: KindOre, ore: o}
}

func (i Item) Kind() ItemKind {
	return i.kind
}

func (i Item) IsFood() bool {
	return i.kind == KindFood
}

// Ore 返回矿石种类；食物返回 ok=false。
func (i Item) Ore() (Ore, bool) {
	if i.kind != KindOre {
		return 0, false
	}
	return i.ore, true
}

// Index 是物品的稳定编号：0 为食物，1..6 为矿石。用于统计与持久化。
func (i Item) Index() int {
	if i.kind == KindFood {
		return 0
	}
	return int(i.ore) + 1
}

func (i Item) String() string {
	if i.kind == KindFood {
		return foodName
	}
	return i.ore.String()
}

// ItemFromIndex 是 Index 的逆运算。
func ItemFromIndex(n int) (Item, error) {
	if n == 0 {
		return Food(), nil
	}
	if n < 0 || n >= ItemKinds {
		return Item{}, ErrInvalidItem.WithMsgf("invalid item index %d", n).WithData("index", n)
	}
	return OreItem(Ore(n - 1)), nil
}

// ParseItem 接受 "nourriture"/"food" 或矿石名。
func ParseItem(name string) (Item, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case foodName, "food":
		return Food(), nil
	}
	o, err := ParseOre(name)
	if err != nil {
		return Item{}, ErrInvalidItem.WithMsgf("unknown item %q", name).WithData("name", name)
	}
	return OreItem(o), nil
}

// Items 按 Index 顺序返回全部物品。
func Items() []Item {
	out := make([]Item, 0, ItemKinds)
	out = append(out, Food())
	for _, o := range Ores() {
		out = append(out, OreItem(o))
	}
	return out
}

// Rand 是生成世界所需的最小随机源，*math/rand/v2.Rand 直接满足。
type Rand interface {
	IntN(n int) int
}

// RandomItem 在 ItemKinds 个结果中均匀抽取：0 为食物，k>0 为第 k-1 种矿石。
func RandomItem(rng Rand) Item {
	k := rng.IntN(ItemKinds)
	if k == 0 {
		return Food()
	}
	// ItemKinds == OreKinds+1，k-1 必然落在 0..OreKinds-1。
	o, _ := OreFromIndex(k - 1)
	return OreItem(o)
}
