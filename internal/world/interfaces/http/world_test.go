package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zappy/internal/shared/gameconfig/rules"
	"zappy/internal/shared/security"
	"zappy/internal/shared/serverconfig"
	"zappy/internal/shared/transport"
	"zappy/internal/world/actor"
	"zappy/internal/world/actors"
	"zappy/internal/world/infra/persistence/memory"
	"zappy/modules/kit/logx"
)

func newTestEngine(t *testing.T, needAuth bool) *gin.Engine {
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

	gin.SetMode(gin.TestMode)
	e := gin.New()
	NewWorld(rt, logx.Nop(), needAuth).RegisterRoutes(e.Group(""))
	return e
}

type response struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Reason string          `json:"reason"`
	Data   json.RawMessage `json:"data"`
}

func do(t *testing.T, e *gin.Engine, method, path, body string, header ...string) (int, response) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	var out response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func TestWorldRoutes_团队与玩家管理(t *testing.T) {
	e := newTestEngine(t, false)

	status, resp := do(t, e, http.MethodPost, "/teams", `{"name":"red"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, transport.OK, resp.Code)

	status, resp = do(t, e, http.MethodPost, "/teams", `{"name":"red"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, transport.Conflict, resp.Code)
	assert.Equal(t, "WORLD_TEAM_EXISTS", resp.Reason)

	for i := 0; i < 2; i++ {
		status, _ = do(t, e, http.MethodPost, "/teams/red/players", "")
		require.Equal(t, http.StatusCreated, status)
	}
	status, resp = do(t, e, http.MethodPost, "/teams/red/players", "")
	assert.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, transport.PreconditionErr, resp.Code)

	status, resp = do(t, e, http.MethodPut, "/teams/red/players/1/position", `{"x":5,"y":4}`)
	require.Equal(t, http.StatusOK, status)
	var moved struct {
		Player struct{ X, Y int } `json:"player"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &moved))
	assert.Equal(t, 5, moved.Player.X)
	assert.Equal(t, 4, moved.Player.Y)

	status, _ = do(t, e, http.MethodPut, "/teams/red/players/1/position", `{"x":6,"y":0}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, e, http.MethodDelete, "/teams/red/players/2", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, e, http.MethodDelete, "/teams/red/players/0", "")
	require.Equal(t, http.StatusOK, status)
	status, resp = do(t, e, http.MethodGet, "/teams/red/players/0", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "WORLD_PLAYER_NOT_FOUND", resp.Reason)

	status, _ = do(t, e, http.MethodDelete, "/teams/blue", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWorldRoutes_观察接口(t *testing.T) {
	e := newTestEngine(t, false)

	status, resp := do(t, e, http.MethodGet, "/world", "")
	require.Equal(t, http.StatusOK, status)
	var st struct {
		Stats struct {
			Tiles  int `json:"tiles"`
			Filled int `json:"filled"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.Equal(t, 30, st.Stats.Tiles)
	assert.Equal(t, 1, st.Stats.Filled)

	status, resp = do(t, e, http.MethodGet, "/world/tiles", "")
	require.Equal(t, http.StatusOK, status)
	var m struct {
		Tiles []json.RawMessage `json:"tiles"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &m))
	assert.Len(t, m.Tiles, 30)

	status, _ = do(t, e, http.MethodGet, "/world/players", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestWorldRoutes_参数错误(t *testing.T) {
	e := newTestEngine(t, false)

	status, resp := do(t, e, http.MethodPost, "/teams", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, transport.InvalidParam, resp.Code)

	status, _ = do(t, e, http.MethodGet, "/teams/red/players/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, e, http.MethodPost, "/teams", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWorldRoutes_管理接口需要admin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	e := newTestEngine(t, true)

	status, _ := do(t, e, http.MethodPost, "/teams", `{"name":"red"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, e, http.MethodGet, "/teams", "")
	assert.Equal(t, http.StatusOK, status)

	token, err := security.Award("ops", security.RoleAdmin, time.Minute)
	require.NoError(t, err)
	status, _ = do(t, e, http.MethodPost, "/teams", `{"name":"red"}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, status)
}
