package entity

import (
	"math/rand/v2"
	"testing"

	"zappy/modules/kit/errx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorld_全空(t *testing.T) {
	w := NewWorld(4, 3)
	assert.Equal(t, 4, w.X())
	assert.Equal(t, 3, w.Y())
	n := 0
	for _, tile := range w.Tiles() {
		assert.False(t, tile.HasItem())
		n++
	}
	assert.Equal(t, 12, n)
	assert.Empty(t, w.Teams())
	for range w.Positions() {
		t.Fatal("期望位置索引为空")
	}
}

func TestWorld_线性下标(t *testing.T) {
	w := NewWorld(5, 4)
	tile, ok := w.TileAtMut(3, 2)
	require.True(t, ok)
	tile.Put(OreItem(Mendiane))

	got, ok := w.TileAtIndex(2*5 + 3)
	require.True(t, ok)
	item, ok := got.Content()
	require.True(t, ok)
	assert.Equal(t, OreItem(Mendiane), item)

	_, ok = w.TileAt(5, 0)
	assert.False(t, ok)
	_, ok = w.TileAtIndex(20)
	assert.False(t, ok)

	for pos, tile := range w.Tiles() {
		if tile.HasItem() {
			assert.Equal(t, Position{X: 3, Y: 2}, pos)
		}
	}
}

func TestWorld_AddTeam重复失败(t *testing.T) {
	w := NewWorld(10, 10)
	require.NoError(t, w.AddTeam("A"))
	err := w.AddTeam("A")
	require.ErrorIs(t, err, ErrTeamExists)
	e, ok := errx.As(err)
	require.True(t, ok)
	assert.Equal(t, "A", e.Data()["team"])
}

func TestWorld_RemoveTeam不存在失败(t *testing.T) {
	w := NewWorld(10, 10)
	err := w.RemoveTeam("B")
	require.ErrorIs(t, err, ErrTeamDoesntExist)
	assert.EqualError(t, err, "WORLD_TEAM_DOESNT_EXIST: team 'B' doesn't exist")
}

func TestWorld_AddPlayer不存在的队伍优先报错(t *testing.T) {
	w := NewWorld(10, 10, WithTeamSize(0))
	_, err := w.AddPlayer("ghost")
	assert.ErrorIs(t, err, ErrTeamDoesntExist)
	assert.NotErrorIs(t, err, ErrTeamIsFull)

	assert.ErrorIs(t, w.RemovePlayer("ghost", 99), ErrTeamDoesntExist)
	_, err = w.Player("ghost", 99)
	assert.ErrorIs(t, err, ErrTeamDoesntExist)
}

func TestWorld_容量加一次添加玩家(t *testing.T) {
	const size = 5
	w := NewWorld(10, 10, WithTeamSize(size))
	require.NoError(t, w.AddTeam("A"))
	for want := 0; want < size; want++ {
		id, err := w.AddPlayer("A")
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	_, err := w.AddPlayer("A")
	assert.ErrorIs(t, err, ErrTeamIsFull)
	assert.Len(t, w.PlayersAt(0, 0), size)
}

func TestWorld_删除id2后再添加得到2(t *testing.T) {
	w := NewWorld(10, 10, WithTeamSize(4))
	require.NoError(t, w.AddTeam("A"))
	for i := 0; i < 4; i++ {
		_, err := w.AddPlayer("A")
		require.NoError(t, err)
	}
	require.NoError(t, w.RemovePlayer("A", 2))
	id, err := w.AddPlayer("A")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestWorld_RemovePlayer越界与空槽位(t *testing.T) {
	w := NewWorld(10, 10, WithTeamSize(3))
	require.NoError(t, w.AddTeam("A"))
	_, err := w.AddPlayer("A")
	require.NoError(t, err)

	assert.ErrorIs(t, w.RemovePlayer("A", 3), ErrPlayerOutOfBounds)
	assert.ErrorIs(t, w.RemovePlayer("A", 1), ErrPlayerNotFound)

	_, err = w.Player("A", 3)
	assert.ErrorIs(t, err, ErrPlayerOutOfBounds)
	_, err = w.PlayerMut("A", 1)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestWorld_默认出生在原点_删除玩家同步清理索引(t *testing.T) {
	w := NewWorld(10, 10)
	require.NoError(t, w.AddTeam("A"))
	require.NoError(t, w.AddTeam("B"))
	a0, _ := w.AddPlayer("A")
	b0, _ := w.AddPlayer("B")
	a1, _ := w.AddPlayer("A")

	assert.Equal(t, []Occupant{{"A", a0}, {"B", b0}, {"A", a1}}, w.PlayersAt(0, 0))

	require.NoError(t, w.RemovePlayer("B", b0))
	assert.Equal(t, []Occupant{{"A", a0}, {"A", a1}}, w.PlayersAt(0, 0))

	require.NoError(t, w.RemoveTeam("A"))
	assert.Empty(t, w.PlayersAt(0, 0))
	for range w.Positions() {
		t.Fatal("期望删除队伍后位置索引为空")
	}
}

func TestWorld_Player返回拷贝_PlayerMut可修改(t *testing.T) {
	w := NewWorld(10, 10)
	require.NoError(t, w.AddTeam("A"))
	id, _ := w.AddPlayer("A")
	w.ClearDirty()

	cp, err := w.Player("A", id)
	require.NoError(t, err)
	cp.AddItem(Food(), 5)
	assert.False(t, w.Dirty())

	p, err := w.PlayerMut("A", id)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Count(Food()), "拷贝的修改不应影响世界")
	require.NoError(t, p.LevelUp())
	assert.True(t, w.Dirty())

	got, _ := w.Player("A", id)
	assert.Equal(t, 1, got.Level())
}

func TestWorld_MovePlayer与Positions顺序(t *testing.T) {
	w := NewWorld(4, 4)
	require.NoError(t, w.AddTeam("A"))
	id0, _ := w.AddPlayer("A")
	id1, _ := w.AddPlayer("A")

	require.NoError(t, w.MovePlayer("A", id0, 2, 3))
	require.NoError(t, w.MovePlayer("A", id1, 3, 1))
	assert.ErrorIs(t, w.MovePlayer("A", id1, 4, 0), ErrPositionOutOfBounds)
	assert.ErrorIs(t, w.MovePlayer("A", 5, 0, 0), ErrPlayerNotFound)

	var got []Position
	for pos, occ := range w.Positions() {
		require.Len(t, occ, 1)
		got = append(got, pos)
	}
	assert.Equal(t, []Position{{3, 1}, {2, 3}}, got)

	pos, err := w.PlayerPosition("A", id0)
	require.NoError(t, err)
	assert.Equal(t, Position{2, 3}, pos)
}

func TestWorld_RandomSpawn在地图内(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	w := NewWorld(7, 5, WithTeamSize(50), WithSpawnPolicy(RandomSpawn(rng)))
	require.NoError(t, w.AddTeam("A"))
	for i := 0; i < 50; i++ {
		id, err := w.AddPlayer("A")
		require.NoError(t, err)
		pos, err := w.PlayerPosition("A", id)
		require.NoError(t, err)
		_, ok := w.Index(pos.X, pos.Y)
		assert.True(t, ok, "pos=%v", pos)
	}
}

func TestWorld_PickUp(t *testing.T) {
	w := NewWorld(3, 3)
	require.NoError(t, w.AddTeam("A"))
	id, _ := w.AddPlayer("A")

	_, err := w.PickUp("A", id)
	assert.ErrorIs(t, err, ErrTileEmpty)

	tile, _ := w.TileAtMut(0, 0)
	tile.Put(OreItem(Thystame))
	item, err := w.PickUp("A", id)
	require.NoError(t, err)
	assert.Equal(t, OreItem(Thystame), item)

	p, _ := w.Player("A", id)
	assert.Equal(t, 1, p.Count(OreItem(Thystame)))
	tileAfter, _ := w.TileAt(0, 0)
	assert.False(t, tileAfter.HasItem())
}

// 随机操作序列之后，位置索引只引用已占用槽位，且每个已占用槽位恰好出现一次。
func TestWorld_随机操作后索引一致(t *testing.T) {
	rng := rand.New(rand.NewPCG(2024, 1))
	w := NewWorld(6, 6, WithTeamSize(4), WithSpawnPolicy(RandomSpawn(rng)))
	teams := []string{"a", "b", "c"}

	for step := 0; step < 5000; step++ {
		name := teams[rng.IntN(len(teams))]
		switch rng.IntN(6) {
		case 0:
			_ = w.AddTeam(name)
		case 1:
			if rng.IntN(4) == 0 {
				_ = w.RemoveTeam(name)
			}
		case 2, 3:
			_, _ = w.AddPlayer(name)
		case 4:
			_ = w.RemovePlayer(name, rng.IntN(6)-1)
		case 5:
			_ = w.MovePlayer(name, rng.IntN(4), rng.IntN(7), rng.IntN(7))
		}
	}

	indexed := make(map[Occupant]int)
	for pos, list := range w.Positions() {
		assert.Equal(t, list, w.positions[pos], "索引里不应残留失效条目")
		for _, occ := range list {
			indexed[occ]++
		}
	}
	total := 0
	for _, name := range w.Teams() {
		team, err := w.Team(name)
		require.NoError(t, err)
		require.LessOrEqual(t, team.Len(), team.Capacity())
		for _, id := range team.IDs() {
			assert.Equal(t, 1, indexed[Occupant{Team: name, ID: id}])
			total++
		}
	}
	assert.Len(t, indexed, total)
	assert.Len(t, w.where, total)
}

func TestWorld_Stats(t *testing.T) {
	w := NewWorld(2, 2)
	tile, _ := w.TileAtMut(1, 1)
	tile.Put(Food())
	require.NoError(t, w.AddTeam("A"))
	_, _ = w.AddPlayer("A")

	s := w.Stats()
	assert.Equal(t, 4, s.Tiles)
	assert.Equal(t, 1, s.Filled)
	assert.Equal(t, 1, s.Items["nourriture"])
	assert.Equal(t, 1, s.Teams)
	assert.Equal(t, 1, s.Players)
}
