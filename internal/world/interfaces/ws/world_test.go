package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/shared/gameconfig/rules"
	"zappy/internal/shared/security"
	"zappy/internal/shared/serverconfig"
	"zappy/internal/shared/session"
	"zappy/internal/shared/transport"
	tws "zappy/internal/shared/transport/ws"
	"zappy/internal/world/actor"
	"zappy/internal/world/actors"
	"zappy/internal/world/infra/persistence/memory"
)

type fakeConn struct {
	id     int64
	mu     sync.Mutex
	pushed []string
	props  map[string]any
	done   chan struct{}
}

func newFakeConn(id int64) *fakeConn {
	return &fakeConn{id: id, props: make(map[string]any), done: make(chan struct{})}
}

func (c *fakeConn) ID() int64 { return c.id }
func (c *fakeConn) Addr() string { return "test" }

func (c *fakeConn) SetProperty(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props[key] = value
}

func (c *fakeConn) GetProperty(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props[key]
}

func (c *fakeConn) RemoveProperty(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.props, key)
}
func (c *fakeConn) Close() {}
func (c *fakeConn) Done() <-chan struct{} { return c.done }

func (c *fakeConn) Push(name string, _ any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushed = append(c.pushed, name)
	return true
}

func (c *fakeConn) pushes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pushed)
}

func setup(t *testing.T, frameEvery time.Duration) (*tws.Router, *session.Hub) {
	t.Helper()
	r, hub, _ := setupWith(t, frameEvery, false)
	return r, hub
}

func setupWith(t *testing.T, frameEvery time.Duration, needAuth bool) (*tws.Router, *session.Hub, *actor.Runtime) {
	t.Helper()
	r, err := rules.Resolve(serverconfig.LogicConfig{Width: 10, Height: 10, TeamSize: 3, Seed: 3, FlushInterval: time.Hour})
	require.NoError(t, err)
	hub := session.NewHub()
	rt, err := actor.NewRuntime(actors.Deps{
		Repo:          memory.NewWorldRepository(),
		Rules:         r,
		Publisher:     NewFramePublisher(hub),
		FrameInterval: frameEvery,
	}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = rt.Shutdown(ctx)
	})

	router := tws.NewRouter(nil)
	NewWorld(rt, hub, 1, nil, needAuth).RegisterRoutes(router)
	return router, hub, rt
}

func call(r *tws.Router, conn tws.WSConn, name string, msg any) *tws.RespBody {
	resp := &tws.WsMsgResp{Body: &tws.RespBody{Name: name}}
	r.Dispatch(context.Background(), &tws.WsMsgReq{Body: &tws.ReqBody{Name: name, Msg: msg}, Conn: conn}, resp)
	return resp.Body
}

func TestWorldRoutes_团队玩家流程(t *testing.T) {
	r, _ := setup(t, 0)

	body := call(r, nil, "team.add", map[string]any{"name": "red"})
	require.Equal(t, transport.OK, body.Code)

	body = call(r, nil, "team.add", map[string]any{"name": "red"})
	assert.Equal(t, transport.Conflict, body.Code)

	body = call(r, nil, "player.add", map[string]any{"team": "red"})
	require.Equal(t, transport.OK, body.Code)
	added := body.Msg.(messages.WHAddPlayer)
	assert.Equal(t, 0, added.Player.ID)

	body = call(r, nil, "player.move", map[string]any{"team": "red", "id": 0, "x": 3, "y": "4"})
	require.Equal(t, transport.OK, body.Code)
	assert.Equal(t, 4, body.Msg.(messages.WHMovePlayer).Player.Y)

	body = call(r, nil, "player.remove", map[string]any{"team": "red", "id": 1})
	assert.Equal(t, transport.NotFound, body.Code)

	body = call(r, nil, "player.add", map[string]any{"team": "ghost"})
	assert.Equal(t, transport.NotFound, body.Code)

	body = call(r, nil, "world.map", nil)
	require.Equal(t, transport.OK, body.Code)
	assert.Len(t, body.Msg.(messages.WHWorldMap).Tiles, 100)

	body = call(r, nil, "team.add", "oops")
	assert.Equal(t, transport.InvalidParam, body.Code)
}

func TestWorldRoutes_订阅后收到帧(t *testing.T) {
	r, hub := setup(t, 10*time.Millisecond)
	conn := newFakeConn(42)

	body := call(r, conn, "world.subscribe", nil)
	require.Equal(t, transport.OK, body.Code)
	assert.Equal(t, 1, hub.Subscribers(FrameTopic(1)))

	require.Eventually(t, func() bool { return conn.pushes() >= 1 }, 2*time.Second, 10*time.Millisecond)

	body = call(r, conn, "world.unsubscribe", nil)
	require.Equal(t, transport.OK, body.Code)
	assert.Zero(t, hub.Subscribers(FrameTopic(1)))
}

func TestWorldRoutes_没有连接时不能订阅(t *testing.T) {
	r, _ := setup(t, 0)
	body := call(r, nil, "world.subscribe", nil)
	assert.Equal(t, transport.Unavailable, body.Code)
}

func TestWorldRoutes_缺少整数字段不落到0号玩家(t *testing.T) {
	r, _ := setup(t, 0)
	require.Equal(t, transport.OK, call(r, nil, "team.add", map[string]any{"name": "red"}).Code)
	require.Equal(t, transport.OK, call(r, nil, "player.add", map[string]any{"team": "red"}).Code)

	body := call(r, nil, "player.remove", map[string]any{"team": "red"})
	assert.Equal(t, transport.InvalidParam, body.Code)

	body = call(r, nil, "player.move", map[string]any{"team": "red", "id": 0})
	assert.Equal(t, transport.InvalidParam, body.Code)

	body = call(r, nil, "player.remove", map[string]any{"team": "red", "id": 1.9})
	assert.Equal(t, transport.InvalidParam, body.Code)

	body = call(r, nil, "player.get", map[string]any{"team": "red", "id": 0})
	require.Equal(t, transport.OK, body.Code)
	assert.Equal(t, 0, body.Msg.(messages.WHGetPlayer).Player.ID)
}

func TestWorldRoutes_开启鉴权后写操作要求admin(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	r, _, rt := setupWith(t, 0, true)
	anon := newFakeConn(1)

	body := call(r, anon, "team.add", map[string]any{"name": "evil"})
	assert.Equal(t, transport.Unauthorized, body.Code)
	body = call(r, nil, "player.remove", map[string]any{"team": "evil", "id": 0})
	assert.Equal(t, transport.Unauthorized, body.Code)

	teams, err := rt.Teams(context.Background())
	require.NoError(t, err)
	assert.Empty(t, teams.Teams)

	// 只读路由不受影响
	assert.Equal(t, transport.OK, call(r, anon, "team.list", nil).Code)

	observer, err := security.Award("viewer", security.RoleObserver, time.Minute)
	require.NoError(t, err)
	require.Equal(t, transport.OK, call(r, anon, "auth.login", map[string]any{"token": observer}).Code)
	body = call(r, anon, "team.add", map[string]any{"name": "evil"})
	assert.Equal(t, transport.Forbidden, body.Code)

	body = call(r, anon, "auth.login", map[string]any{"token": "garbage"})
	assert.Equal(t, transport.Unauthorized, body.Code)
	assert.Nil(t, anon.GetProperty(tws.ConnKeyRole))

	admin, err := security.Award("ops", security.RoleAdmin, time.Minute)
	require.NoError(t, err)
	require.Equal(t, transport.OK, call(r, anon, "auth.login", map[string]any{"token": admin}).Code)
	body = call(r, anon, "team.add", map[string]any{"name": "red"})
	assert.Equal(t, transport.OK, body.Code)
}

func TestWorld_升级请求头带token(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	admin, err := security.Award("ops", security.RoleAdmin, time.Minute)
	require.NoError(t, err)
	w := NewWorld(nil, nil, 1, nil, true)

	conn := newFakeConn(1)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w.Authenticate(req, conn)
	assert.Equal(t, security.RoleAdmin, conn.GetProperty(tws.ConnKeyRole))

	bad := newFakeConn(2)
	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w.Authenticate(req, bad)
	assert.Nil(t, bad.GetProperty(tws.ConnKeyRole))
}
