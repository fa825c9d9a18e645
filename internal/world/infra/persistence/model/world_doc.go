package model

import (
	"time"

	"zappy/internal/world/entity"
)

// WorldDoc 是 mongodb 中一个世界对应的一篇文档，_id 为世界 id。
type WorldDoc struct {
	WorldID   int       `bson:"_id"`
	Version   uint64    `bson:"version"`
	Width     int       `bson:"width"`
	Height    int       `bson:"height"`
	TeamSize  int       `bson:"team_size"`
	Tiles     []int     `bson:"tiles"`
	Teams     []TeamDoc `bson:"teams"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type TeamDoc struct {
	Name    string      `bson:"name"`
	Players []PlayerDoc `bson:"players"`
}

type PlayerDoc struct {
	ID        int            `bson:"id"`
	Level     int            `bson:"level"`
	X         int            `bson:"x"`
	Y         int            `bson:"y"`
	Seq       int            `bson:"seq"`
	Inventory []InventoryDoc `bson:"inventory,omitempty"`
}

// InventoryDoc 用数组而非 map 存背包：bson 文档的键只能是字符串。
type InventoryDoc struct {
	Item  int `bson:"item"`
	Count int `bson:"count"`
}

func SnapshotToDoc(s *entity.WorldPersistSnapshot, now time.Time) WorldDoc {
	doc := WorldDoc{
		WorldID:   int(s.WorldID),
		Version:   s.Version,
		Width:     s.Width,
		Height:    s.Height,
		TeamSize:  s.TeamSize,
		Tiles:     append([]int(nil), s.Tiles...),
		Teams:     make([]TeamDoc, 0, len(s.Teams)),
		UpdatedAt: now,
	}
	for _, t := range s.Teams {
		td := TeamDoc{Name: t.Name, Players: make([]PlayerDoc, 0, len(t.Players))}
		for _, p := range t.Players {
			td.Players = append(td.Players, PlayerDoc{
				ID:        p.ID,
				Level:     p.Level,
				X:         p.X,
				Y:         p.Y,
				Seq:       p.Seq,
				Inventory: inventoryToDocs(p.Inventory),
			})
		}
		doc.Teams = append(doc.Teams, td)
	}
	return doc
}

func DocToSnapshot(doc WorldDoc) *entity.WorldPersistSnapshot {
	s := &entity.WorldPersistSnapshot{
		Version:  doc.Version,
		WorldID:  entity.WorldID(doc.WorldID),
		Width:    doc.Width,
		Height:   doc.Height,
		TeamSize: doc.TeamSize,
		Tiles:    append([]int(nil), doc.Tiles...),
		Teams:    make([]entity.TeamSnapshot, 0, len(doc.Teams)),
	}
	for _, td := range doc.Teams {
		ts := entity.TeamSnapshot{Name: td.Name, Players: make([]entity.PlayerSnapshot, 0, len(td.Players))}
		for _, p := range td.Players {
			inv := make(map[int]int, len(p.Inventory))
			for _, it := range p.Inventory {
				inv[it.Item] += it.Count
			}
			ts.Players = append(ts.Players, entity.PlayerSnapshot{
				ID:        p.ID,
				Level:     p.Level,
				X:         p.X,
				Y:         p.Y,
				Seq:       p.Seq,
				Inventory: inv,
			})
		}
		s.Teams = append(s.Teams, ts)
	}
	return s
}

func inventoryToDocs(inv map[int]int) []InventoryDoc {
	if len(inv) == 0 {
		return nil
	}
	out := make([]InventoryDoc, 0, len(inv))
	for item := 0; item < entity.ItemKinds; item++ {
		if n := inv[item]; n > 0 {
			out = append(out, InventoryDoc{Item: item, Count: n})
		}
	}
	return out
}
