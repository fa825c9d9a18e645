package interfaces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func newRuntime(t *testing.T) *actor.Runtime {
	t.Helper()
	r, err := rules.Resolve(serverconfig.LogicConfig{Width: 6, Height: 5, TeamSize: 2, Seed: 7, FlushInterval: time.Hour})
	require.NoError(t, err)
	rt, err := actor.NewRuntime(actors.Deps{Repo: memory.NewWorldRepository(), Rules: r}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = rt.Shutdown(ctx)
	})
	return rt
}

// 起一个真实的 ws 服务，升级请求带上 header。
func dialWS(t *testing.T, m *Module, header http.Header) *websocket.Conn {
	t.Helper()
	router := tws.NewRouter(nil)
	m.Register(router)
	srv := httptest.NewServer(tws.NewServer(router, nil, tws.WithOnUpgrade(m.AuthenticateWS)))
	t.Cleanup(srv.Close)
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	return c
}

func send(t *testing.T, c *websocket.Conn, seq int64, name string, msg any) tws.RespBody {
	t.Helper()
	require.NoError(t, c.WriteJSON(tws.ReqBody{Seq: seq, Name: name, Msg: msg}))
	var resp tws.RespBody
	require.NoError(t, c.ReadJSON(&resp))
	require.Equal(t, seq, resp.Seq)
	return resp
}

func TestModule_开启鉴权时两种协议都拦截匿名写(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	rt := newRuntime(t)
	m := New(rt, Options{WorldID: 1, NeedAuth: true, Hub: session.NewHub()})

	gin.SetMode(gin.TestMode)
	e := gin.New()
	m.RegisterHTTP(e.Group(""))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader(`{"name":"evil"}`))
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	anon := dialWS(t, m, nil)
	resp := send(t, anon, 1, "team.add", map[string]any{"name": "evil"})
	assert.Equal(t, transport.Unauthorized, resp.Code)
	resp = send(t, anon, 2, "player.add", map[string]any{"team": "evil"})
	assert.Equal(t, transport.Unauthorized, resp.Code)

	teams, err := rt.Teams(context.Background())
	require.NoError(t, err)
	assert.Empty(t, teams.Teams)

	token, err := security.Award("ops", security.RoleAdmin, time.Minute)
	require.NoError(t, err)
	admin := dialWS(t, m, http.Header{"Authorization": []string{"Bearer " + token}})
	resp = send(t, admin, 1, "team.add", map[string]any{"name": "red"})
	assert.Equal(t, transport.OK, resp.Code)
}
