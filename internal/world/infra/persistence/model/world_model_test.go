package model

import (
	"math/rand/v2"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"zappy/internal/world/entity"
)

func sampleSnapshot(t *testing.T) *entity.WorldPersistSnapshot {
	t.Helper()
	w := entity.Generate(rand.New(rand.NewPCG(5, 5)), 9, 7, entity.WithID(2), entity.WithTeamSize(3))
	require.NoError(t, w.AddTeam("red"))
	require.NoError(t, w.AddTeam("blue"))
	r0, _ := w.AddPlayer("red")
	_, _ = w.AddPlayer("red")
	b0, _ := w.AddPlayer("blue")
	require.NoError(t, w.MovePlayer("red", r0, 4, 2))
	p, err := w.PlayerMut("blue", b0)
	require.NoError(t, err)
	p.AddItem(entity.Food(), 3)
	p.AddItem(entity.OreItem(entity.Thystame), 1)
	return w.Snapshot(7)
}

func TestWorldDoc_快照往返(t *testing.T) {
	s := sampleSnapshot(t)
	now := time.Unix(1700000000, 0)
	doc := SnapshotToDoc(s, now)

	assert.Equal(t, 2, doc.WorldID)
	assert.Equal(t, now, doc.UpdatedAt)
	assert.Equal(t, s, DocToSnapshot(doc))
}

func TestWorldDoc_背包按物品下标有序(t *testing.T) {
	docs := inventoryToDocs(map[int]int{6: 1, 0: 2, 3: 0})
	assert.Equal(t, []InventoryDoc{{Item: 0, Count: 2}, {Item: 6, Count: 1}}, docs)
	assert.Nil(t, inventoryToDocs(nil))
}

func TestWorldRows_只存非空格子_往返一致(t *testing.T) {
	s := sampleSnapshot(t)
	rows := SnapshotToRows(s, time.Now())

	filled := 0
	for _, item := range s.Tiles {
		if item != entity.EmptyTile {
			filled++
		}
	}
	assert.Len(t, rows.Tiles, filled)
	assert.Len(t, rows.Teams, 2)
	assert.Len(t, rows.Players, 3)
	assert.Len(t, rows.Inventory, 2)

	assert.Equal(t, s, RowsToSnapshot(rows))
}

func TestWorldRows_空队伍保留(t *testing.T) {
	w := entity.NewWorld(3, 3)
	require.NoError(t, w.AddTeam("lonely"))
	s := w.Snapshot(1)

	got := RowsToSnapshot(SnapshotToRows(s, time.Now()))
	require.Len(t, got.Teams, 1)
	assert.Equal(t, "lonely", got.Teams[0].Name)
	assert.Empty(t, got.Teams[0].Players)
}

func TestTeamName_MySQL上区分大小写(t *testing.T) {
	my := &gorm.DB{Config: &gorm.Config{Dialector: mysql.New(mysql.Config{})}}
	pg := &gorm.DB{Config: &gorm.Config{Dialector: postgres.New(postgres.Config{})}}

	assert.Contains(t, TeamName("").GormDBDataType(my, nil), "COLLATE utf8mb4_bin")
	assert.Equal(t, "varchar(64)", TeamName("").GormDBDataType(pg, nil))

	// 三张表里构成主键的队伍名列都要走这个类型
	cache := &sync.Map{}
	for _, c := range []struct {
		model  any
		column string
	}{
		{&WorldTeam{}, "name"},
		{&WorldPlayer{}, "team"},
		{&WorldInventory{}, "team"},
	} {
		s, err := schema.Parse(c.model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		f := s.LookUpField(c.column)
		require.NotNil(t, f, c.column)
		assert.True(t, f.PrimaryKey)
		assert.Equal(t, reflect.TypeOf(TeamName("")), f.FieldType)
	}
}

func TestWorldRows_大小写不同的队伍各自成行(t *testing.T) {
	w := entity.Generate(rand.New(rand.NewPCG(1, 1)), 4, 4, entity.WithID(3), entity.WithTeamSize(2))
	require.NoError(t, w.AddTeam("A"))
	require.NoError(t, w.AddTeam("a"))
	_, err := w.AddPlayer("a")
	require.NoError(t, err)
	s := w.Snapshot(1)

	rows := SnapshotToRows(s, time.Now())
	require.Len(t, rows.Teams, 2)
	assert.Equal(t, s, RowsToSnapshot(rows))
}
