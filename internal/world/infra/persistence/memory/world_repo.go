package memory

import (
	"context"
	"maps"
	"sync"

	"zappy/internal/world/app/port"
	"zappy/internal/world/entity"
)

// WorldRepository 把快照保存在进程内，存取都做深拷贝。用于单机运行和测试。
type WorldRepository struct {
	mu     sync.RWMutex
	worlds map[entity.WorldID]*entity.WorldPersistSnapshot
	saves  int
}

func NewWorldRepository() *WorldRepository {
	return &WorldRepository{
		worlds: make(map[entity.WorldID]*entity.WorldPersistSnapshot),
	}
}

func (r *WorldRepository) LoadWorld(ctx context.Context, id entity.WorldID) (*entity.WorldPersistSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.worlds[id]
	if !ok {
		return nil, port.ErrWorldNotFound.WithData("world_id", int(id))
	}
	return clone(s), nil
}

// Save 忽略版本不高于已保存版本的快照。
func (r *WorldRepository) Save(ctx context.Context, s *entity.WorldPersistSnapshot) error {
	if s == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.worlds[s.WorldID]; ok && old.Version >= s.Version {
		return nil
	}
	r.worlds[s.WorldID] = clone(s)
	r.saves++
	return nil
}

// Saves 返回实际写入的次数。
func (r *WorldRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

func clone(s *entity.WorldPersistSnapshot) *entity.WorldPersistSnapshot {
	out := *s
	out.Tiles = append([]int(nil), s.Tiles...)
	out.Teams = make([]entity.TeamSnapshot, len(s.Teams))
	for i, t := range s.Teams {
		players := make([]entity.PlayerSnapshot, len(t.Players))
		for j, p := range t.Players {
			p.Inventory = maps.Clone(p.Inventory)
			players[j] = p
		}
		out.Teams[i] = entity.TeamSnapshot{Name: t.Name, Players: players}
	}
	return &out
}
