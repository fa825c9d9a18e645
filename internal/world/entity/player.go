package entity

import "maps"

// MaxLevel 是玩家可达到的最高等级。
const MaxLevel = 8

// Player 只有等级和背包；身份由所在队伍的槽位号决定。
type Player struct {
	level     int
	inventory map[Item]int
}

func NewPlayer() *Player {
	return &Player{
		inventory: make(map[Item]int),
	}
}

func (p *Player) Level() int {
	return p.level
}

func (p *Player) LevelUp() error {
	if p.level >= MaxLevel {
		return ErrMaxLevel.WithData("level", p.level)
	}
	p.level++
	return nil
}

// Count 返回背包里某种物品的数量。
func (p *Player) Count(item Item) int {
	return p.inventory[item]
}

// Inventory 返回背包拷贝，只包含数量大于 0 的物品。
func (p *Player) Inventory() map[Item]int {
	return maps.Clone(p.inventory)
}

func (p *Player) AddItem(item Item, n int) {
	if n <= 0 {
		return
	}
	p.inventory[item] += n
}

// RemoveItem 数量不足时不做任何修改并返回 false。
func (p *Player) RemoveItem(item Item, n int) bool {
	if n <= 0 {
		return true
	}
	have := p.inventory[item]
	if have < n {
		return false
	}
	if have == n {
		delete(p.inventory, item)
	} else {
		p.inventory[item] = have - n
	}
	return true
}

func (p *Player) clone() *Player {
	return &Player{
		level:     p.level,
		inventory: maps.Clone(p.inventory),
	}
}
