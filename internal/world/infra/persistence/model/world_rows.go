package model

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"zappy/internal/world/entity"
)

const teamNameSize = 64

// TeamName 是队伍名列。世界里队伍名区分大小写，MySQL 默认排序规则不区分，
// 所以在 MySQL 上固定为二进制排序；PostgreSQL 本身区分大小写。
type TeamName string

func (TeamName) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return fmt.Sprintf("varchar(%d) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin", teamNameSize)
	}
	return fmt.Sprintf("varchar(%d)", teamNameSize)
}

// World 是世界主表，一行一个世界。
type World struct {
	WorldID   int       `gorm:"column:world_id;primaryKey;autoIncrement:false;comment:世界id"`
	Version   uint64    `gorm:"column:version;not null;comment:快照版本"`
	Width     int       `gorm:"column:width;not null"`
	Height    int       `gorm:"column:height;not null"`
	TeamSize  int       `gorm:"column:team_size;not null;comment:队伍容量"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (*World) TableName() string {
	return "world"
}

// WorldTile 只存有物品的格子，空格子不落库。
type WorldTile struct {
	WorldID int `gorm:"column:world_id;primaryKey;autoIncrement:false"`
	Idx     int `gorm:"column:idx;primaryKey;autoIncrement:false;comment:线性下标 y*width+x"`
	Item    int `gorm:"column:item;not null;comment:0 食物 1..6 矿石"`
}

func (*WorldTile) TableName() string {
	return "world_tile"
}

type WorldTeam struct {
	WorldID int      `gorm:"column:world_id;primaryKey;autoIncrement:false"`
	Name    TeamName `gorm:"column:name;primaryKey"`
}

func (*WorldTeam) TableName() string {
	return "world_team"
}

type WorldPlayer struct {
	WorldID int      `gorm:"column:world_id;primaryKey;autoIncrement:false"`
	Team    TeamName `gorm:"column:team;primaryKey"`
	Slot    int      `gorm:"column:slot;primaryKey;autoIncrement:false;comment:队伍内槽位即玩家 id"`
	Level   int      `gorm:"column:level;not null"`
	X       int      `gorm:"column:x;not null"`
	Y       int      `gorm:"column:y;not null"`
	Seq     int      `gorm:"column:seq;not null;comment:所在格子内的进入顺序"`
}

func (*WorldPlayer) TableName() string {
	return "world_player"
}

type WorldInventory struct {
	WorldID int      `gorm:"column:world_id;primaryKey;autoIncrement:false"`
	Team    TeamName `gorm:"column:team;primaryKey"`
	Slot    int      `gorm:"column:slot;primaryKey;autoIncrement:false"`
	Item    int      `gorm:"column:item;primaryKey;autoIncrement:false"`
	Count   int      `gorm:"column:count;not null"`
}

func (*WorldInventory) TableName() string {
	return "world_inventory"
}

// Rows 是一个世界快照拆成的全部关系行。
type Rows struct {
	World     World
	Tiles     []WorldTile
	Teams     []WorldTeam
	Players   []WorldPlayer
	Inventory []WorldInventory
}

// AllModels 供 AutoMigrate 使用。
func AllModels() []any {
	return []any{&World{}, &WorldTile{}, &WorldTeam{}, &WorldPlayer{}, &WorldInventory{}}
}

func SnapshotToRows(s *entity.WorldPersistSnapshot, now time.Time) Rows {
	id := int(s.WorldID)
	rows := Rows{
		World: World{
			WorldID:   id,
			Version:   s.Version,
			Width:     s.Width,
			Height:    s.Height,
			TeamSize:  s.TeamSize,
			UpdatedAt: now,
		},
	}
	for i, item := range s.Tiles {
		if item != entity.EmptyTile {
			rows.Tiles = append(rows.Tiles, WorldTile{WorldID: id, Idx: i, Item: item})
		}
	}
	for _, t := range s.Teams {
		name := TeamName(t.Name)
		rows.Teams = append(rows.Teams, WorldTeam{WorldID: id, Name: name})
		for _, p := range t.Players {
			rows.Players = append(rows.Players, WorldPlayer{
				WorldID: id, Team: name, Slot: p.ID,
				Level: p.Level, X: p.X, Y: p.Y, Seq: p.Seq,
			})
			for item, n := range p.Inventory {
				if n > 0 {
					rows.Inventory = append(rows.Inventory, WorldInventory{
						WorldID: id, Team: name, Slot: p.ID, Item: item, Count: n,
					})
				}
			}
		}
	}
	return rows
}

// RowsToSnapshot 是 SnapshotToRows 的逆运算，队伍按名字、玩家按槽位排序。
func RowsToSnapshot(rows Rows) *entity.WorldPersistSnapshot {
	w := rows.World
	s := &entity.WorldPersistSnapshot{
		Version:  w.Version,
		WorldID:  entity.WorldID(w.WorldID),
		Width:    w.Width,
		Height:   w.Height,
		TeamSize: w.TeamSize,
		Tiles:    make([]int, max(w.Width*w.Height, 0)),
	}
	for i := range s.Tiles {
		s.Tiles[i] = entity.EmptyTile
	}
	for _, t := range rows.Tiles {
		if t.Idx >= 0 && t.Idx < len(s.Tiles) {
			s.Tiles[t.Idx] = t.Item
		}
	}

	type key struct {
		team TeamName
		slot int
	}
	inv := make(map[key]map[int]int)
	for _, it := range rows.Inventory {
		k := key{it.Team, it.Slot}
		if inv[k] == nil {
			inv[k] = make(map[int]int)
		}
		inv[k][it.Item] = it.Count
	}

	byTeam := make(map[TeamName][]entity.PlayerSnapshot, len(rows.Teams))
	for _, p := range rows.Players {
		items := inv[key{p.Team, p.Slot}]
		if items == nil {
			items = make(map[int]int)
		}
		byTeam[p.Team] = append(byTeam[p.Team], entity.PlayerSnapshot{
			ID: p.Slot, Level: p.Level, X: p.X, Y: p.Y, Seq: p.Seq, Inventory: items,
		})
	}

	teams := slices.Clone(rows.Teams)
	slices.SortFunc(teams, func(a, b WorldTeam) int { return cmp.Compare(a.Name, b.Name) })
	s.Teams = make([]entity.TeamSnapshot, 0, len(teams))
	for _, t := range teams {
		players := byTeam[t.Name]
		slices.SortFunc(players, func(a, b entity.PlayerSnapshot) int { return cmp.Compare(a.ID, b.ID) })
		if players == nil {
			players = []entity.PlayerSnapshot{}
		}
		s.Teams = append(s.Teams, entity.TeamSnapshot{Name: string(t.Name), Players: players})
	}
	return s
}
