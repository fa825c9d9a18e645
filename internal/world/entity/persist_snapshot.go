package entity

import (
	"cmp"
	"slices"

	"zappy/modules/kit/errx"
)

// EmptyTile 表示快照里的空格子。
const EmptyTile = -1

// WorldPersistSnapshot 是世界的不可变拷贝，交给持久化层异步写入。
type WorldPersistSnapshot struct {
	Version  uint64
	WorldID  WorldID
	Width    int
	Height   int
	TeamSize int
	Tiles    []int
	Teams    []TeamSnapshot
}

type TeamSnapshot struct {
	Name    string
	Players []PlayerSnapshot
}

// PlayerSnapshot 的 Seq 是玩家在所在格子列表里的顺序。
type PlayerSnapshot struct {
	ID        int
	Level     int
	Inventory map[int]int
	X, Y      int
	Seq       int
}

// BuildPersistSnapshot 只在世界有未落盘修改时生成快照。
func (w *World) BuildPersistSnapshot(version uint64) (*WorldPersistSnapshot, bool) {
	if w == nil || !w.Dirty() {
		return nil, false
	}
	return w.Snapshot(version), true
}

// Snapshot 无条件生成快照。
func (w *World) Snapshot(version uint64) *WorldPersistSnapshot {
	s := &WorldPersistSnapshot{
		Version:  version,
		WorldID:  w.id,
		Width:    w.width,
		Height:   w.height,
		TeamSize: w.teamSize,
		Tiles:    make([]int, len(w.tiles)),
		Teams:    make([]TeamSnapshot, 0, len(w.teams)),
	}
	for i, t := range w.tiles {
		s.Tiles[i] = EmptyTile
		if item, ok := t.Content(); ok {
			s.Tiles[i] = item.Index()
		}
	}
	for _, name := range w.Teams() {
		t := w.teams[name]
		ts := TeamSnapshot{Name: name, Players: make([]PlayerSnapshot, 0, t.Len())}
		for _, id := range t.IDs() {
			p := t.players[id]
			occ := Occupant{Team: name, ID: id}
			pos := w.where[occ]
			ps := PlayerSnapshot{
				ID:        id,
				Level:     p.level,
				Inventory: make(map[int]int, len(p.inventory)),
				X:         pos.X,
				Y:         pos.Y,
				Seq:       slices.Index(w.positions[pos], occ),
			}
			for item, n := range p.inventory {
				ps.Inventory[item.Index()] = n
			}
			ts.Players = append(ts.Players, ps)
		}
		s.Teams = append(s.Teams, ts)
	}
	return s
}

// RestoreWorld 从快照重建世界，并校验所有不变量。队伍容量以快照为准。
func RestoreWorld(s *WorldPersistSnapshot, opts ...Option) (*World, error) {
	if s == nil {
		return nil, corrupted("snapshot is nil")
	}
	if s.Width < 0 || s.Height < 0 || s.TeamSize < 0 {
		return nil, corrupted("negative dimensions")
	}
	if len(s.Tiles) != s.Width*s.Height {
		return nil, corrupted("tile count mismatch").WithDataMap(map[string]any{
			"tiles": len(s.Tiles), "width": s.Width, "height": s.Height,
		})
	}

	w := NewWorld(s.Width, s.Height, opts...)
	w.id = s.WorldID
	w.teamSize = s.TeamSize

	for i, idx := range s.Tiles {
		if idx == EmptyTile {
			continue
		}
		item, err := ItemFromIndex(idx)
		if err != nil {
			return nil, corrupted("invalid tile item").WithData("tile", i).WithCause(err)
		}
		w.tiles[i].Put(item)
	}

	type placed struct {
		pos Position
		seq int
		occ Occupant
	}
	var all []placed
	for _, ts := range s.Teams {
		if _, ok := w.teams[ts.Name]; ok {
			return nil, corrupted("duplicate team").WithData("team", ts.Name)
		}
		t := NewTeam(ts.Name, w.teamSize)
		w.teams[ts.Name] = t
		for _, ps := range ts.Players {
			if ps.ID < 0 || ps.ID >= t.Capacity() || t.players[ps.ID] != nil {
				return nil, corrupted("invalid player slot").WithDataMap(map[string]any{"team": ts.Name, "id": ps.ID})
			}
			if len(w.tiles) > 0 {
				if _, ok := w.Index(ps.X, ps.Y); !ok {
					return nil, corrupted("player outside map").WithDataMap(map[string]any{"team": ts.Name, "id": ps.ID})
				}
			}
			if ps.Level < 0 || ps.Level > MaxLevel {
				return nil, corrupted("invalid player level").WithDataMap(map[string]any{"team": ts.Name, "id": ps.ID, "level": ps.Level})
			}
			p := NewPlayer()
			p.level = ps.Level
			for idx, n := range ps.Inventory {
				item, err := ItemFromIndex(idx)
				if err != nil {
					return nil, corrupted("invalid inventory item").WithCause(err)
				}
				if n <= 0 {
					return nil, corrupted("non-positive inventory count").WithDataMap(map[string]any{"team": ts.Name, "id": ps.ID, "item": idx, "count": n})
				}
				p.AddItem(item, n)
			}
			t.players[ps.ID] = p
			all = append(all, placed{
				pos: Position{X: ps.X, Y: ps.Y},
				seq: ps.Seq,
				occ: Occupant{Team: ts.Name, ID: ps.ID},
			})
		}
	}

	slices.SortStableFunc(all, func(a, b placed) int {
		if c := cmp.Compare(a.pos.Y, b.pos.Y); c != 0 {
			return c
		}
		if c := cmp.Compare(a.pos.X, b.pos.X); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for _, p := range all {
		w.place(p.pos, p.occ)
	}
	return w, nil
}

func corrupted(msg string) *errx.Error {
	return errx.ErrDataCorrupted.WithMsg("world snapshot: " + msg)
}
