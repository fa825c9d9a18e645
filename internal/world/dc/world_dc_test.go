package dc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zappy/internal/world/entity"
	"zappy/internal/world/infra/persistence/memory"
)

func newWorld(id WorldID) *entity.World {
	return entity.NewWorld(5, 4, entity.WithID(id), entity.WithTeamSize(2))
}

func TestWorldDC_仓库为空时生成并首轮落库(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWorldRepository()
	d := NewWorldDC(repo, newWorld)

	w, err := d.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, WorldID(7), w.ID())
	assert.True(t, d.IsDirty())

	require.NoError(t, d.Close(ctx))
	assert.False(t, d.IsDirty())
	assert.Equal(t, uint64(1), d.SavedVersion())

	s, err := repo.LoadWorld(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Width)
	assert.Equal(t, 2, s.TeamSize)
}

func TestWorldDC_重启后从仓库还原并延续版本(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWorldRepository()

	first := NewWorldDC(repo, newWorld)
	w, err := first.Load(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, w.AddTeam("A"))
	_, err = w.AddPlayer("A")
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second := NewWorldDC(repo, func(WorldID) *entity.World {
		t.Fatal("factory must not be called when the world exists")
		return nil
	})
	got, err := second.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Teams())
	assert.False(t, second.IsDirty())
	assert.Equal(t, first.Version(), second.Version())

	require.NoError(t, got.AddTeam("B"))
	require.NoError(t, second.Flush(ctx))
	assert.Equal(t, first.Version()+1, second.Version())
	require.NoError(t, second.Close(ctx))
}

func TestWorldDC_没有factory时透传NotFound(t *testing.T) {
	d := NewWorldDC(memory.NewWorldRepository(), nil)
	defer d.Close(context.Background())

	_, err := d.Load(context.Background(), 1)
	assert.Error(t, err)
}

func TestWorldDC_不脏时Flush不产生版本(t *testing.T) {
	ctx := context.Background()
	d := NewWorldDC(memory.NewWorldRepository(), newWorld)
	_, err := d.Load(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, d.Flush(ctx))
	require.NoError(t, d.Flush(ctx))
	assert.Equal(t, uint64(1), d.Version())
	require.NoError(t, d.Close(ctx))
}

type flakyRepo struct {
	*memory.WorldRepository

	mu    sync.Mutex
	fails int
}

func (r *flakyRepo) Save(ctx context.Context, s *entity.WorldPersistSnapshot) error {
	r.mu.Lock()
	if r.fails > 0 {
		r.fails--
		r.mu.Unlock()
		return errors.New("db down")
	}
	r.mu.Unlock()
	return r.WorldRepository.Save(ctx, s)
}

func TestWorldDC_写库失败后重试(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{WorldRepository: memory.NewWorldRepository(), fails: 2}
	d := NewWorldDC(repo, newWorld, WithRetryDelay(time.Millisecond))

	_, err := d.Load(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, d.Flush(ctx))

	require.Eventually(t, func() bool { return d.SavedVersion() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Close(ctx))
	assert.Equal(t, 1, repo.Saves())
}

func TestWorldDC_仓库一直失败时Close仍会返回(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{WorldRepository: memory.NewWorldRepository(), fails: 1 << 30}
	d := NewWorldDC(repo, newWorld, WithRetryDelay(time.Millisecond))

	_, err := d.Load(ctx, 3)
	require.NoError(t, err)

	closeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, d.Close(closeCtx))
	assert.Zero(t, d.SavedVersion())
}
