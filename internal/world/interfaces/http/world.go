package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/shared/security"
	"zappy/internal/shared/transport"
	"zappy/internal/shared/transport/http/middleware"
	"zappy/internal/world/interfaces/errmap"
	"zappy/modules/kit/errx"
	"zappy/modules/kit/logx"
)

// WorldAPI 是 HTTP 层需要的世界操作，*actor.Runtime 实现了它。
type WorldAPI interface {
	Map(ctx context.Context) (messages.WHWorldMap, error)
	Players(ctx context.Context) (messages.WHWorldPlayers, error)
	Stats(ctx context.Context) (messages.WHWorldStats, error)
	Teams(ctx context.Context) (messages.WHTeams, error)
	AddTeam(ctx context.Context, name string) (messages.WHAddTeam, error)
	RemoveTeam(ctx context.Context, name string) (messages.WHRemoveTeam, error)
	AddPlayer(ctx context.Context, team string) (messages.WHAddPlayer, error)
	RemovePlayer(ctx context.Context, team string, id int) (messages.WHRemovePlayer, error)
	GetPlayer(ctx context.Context, team string, id int) (messages.WHGetPlayer, error)
	MovePlayer(ctx context.Context, team string, id, x, y int) (messages.WHMovePlayer, error)
	PickUp(ctx context.Context, team string, id int) (messages.WHPickUp, error)
}

type World struct {
	api      WorldAPI
	log      logx.Logger
	needAuth bool
}

func NewWorld(api WorldAPI, log logx.Logger, needAuth bool) *World {
	if log == nil {
		log = logx.Nop()
	}
	return &World{api: api, log: log, needAuth: needAuth}
}

type addTeamReq struct {
	Name string `json:"name" binding:"required"`
}

type moveReq struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

func (h *World) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/world", h.stats)
	g.GET("/world/tiles", h.tiles)
	g.GET("/world/players", h.players)
	g.GET("/teams", h.teams)
	g.GET("/teams/:name/players/:id", h.getPlayer)

	admin := g.Group("", middleware.Auth(h.needAuth, security.RoleAdmin))
	admin.POST("/teams", h.addTeam)
	admin.DELETE("/teams/:name", h.removeTeam)
	admin.POST("/teams/:name/players", h.addPlayer)
	admin.DELETE("/teams/:name/players/:id", h.removePlayer)
	admin.PUT("/teams/:name/players/:id/position", h.movePlayer)
	admin.POST("/teams/:name/players/:id/pickup", h.pickUp)
}

func (h *World) stats(c *gin.Context) {
	h.write(c, http.StatusOK)(h.api.Stats(c.Request.Context()))
}

func (h *World) tiles(c *gin.Context) {
	h.write(c, http.StatusOK)(h.api.Map(c.Request.Context()))
}

func (h *World) players(c *gin.Context) {
	h.write(c, http.StatusOK)(h.api.Players(c.Request.Context()))
}

func (h *World) teams(c *gin.Context) {
	h.write(c, http.StatusOK)(h.api.Teams(c.Request.Context()))
}

func (h *World) addTeam(c *gin.Context) {
	var req addTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errx.ErrReqParamERR.WithMsg("body must be {\"name\": string}").WithCause(err))
		return
	}
	h.write(c, http.StatusCreated)(h.api.AddTeam(c.Request.Context(), req.Name))
}

func (h *World) removeTeam(c *gin.Context) {
	h.write(c, http.StatusOK)(h.api.RemoveTeam(c.Request.Context(), c.Param("name")))
}

func (h *World) addPlayer(c *gin.Context) {
	h.write(c, http.StatusCreated)(h.api.AddPlayer(c.Request.Context(), c.Param("name")))
}

func (h *World) removePlayer(c *gin.Context) {
	id, ok := h.playerID(c)
	if !ok {
		return
	}
	h.write(c, http.StatusOK)(h.api.RemovePlayer(c.Request.Context(), c.Param("name"), id))
}

func (h *World) getPlayer(c *gin.Context) {
	id, ok := h.playerID(c)
	if !ok {
		return
	}
	h.write(c, http.StatusOK)(h.api.GetPlayer(c.Request.Context(), c.Param("name"), id))
}

func (h *World) movePlayer(c *gin.Context) {
	id, ok := h.playerID(c)
	if !ok {
		return
	}
	var req moveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errx.ErrReqParamERR.WithMsg("body must be {\"x\": int, \"y\": int}").WithCause(err))
		return
	}
	h.write(c, http.StatusOK)(h.api.MovePlayer(c.Request.Context(), c.Param("name"), id, *req.X, *req.Y))
}

func (h *World) pickUp(c *gin.Context) {
	id, ok := h.playerID(c)
	if !ok {
		return
	}
	h.write(c, http.StatusOK)(h.api.PickUp(c.Request.Context(), c.Param("name"), id))
}

func (h *World) playerID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.fail(c, errx.ErrReqParamERR.WithMsgf("player id %q is not an integer", c.Param("id")))
		return 0, false
	}
	return id, true
}

// write 返回一个接收 (data, err) 的函数：h.write(c, status)(h.api.Op(...))。
func (h *World) write(c *gin.Context, okStatus int) func(any, error) {
	return func(data any, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		transport.SetBizCode(c.Request.Context(), transport.OK)
		c.JSON(okStatus, transport.Body{Code: transport.OK, Data: data})
	}
}

func (h *World) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	body := errmap.Body(err)
	transport.SetBizCode(ctx, body.Code)
	transport.SetErrorReason(ctx, body.Reason)
	if errmap.IsSystem(err) {
		logx.ReportError(ctx, h.log, c.Request.Method+" "+c.FullPath(), err,
			zap.String("client_ip", c.ClientIP()),
		)
	}
	c.JSON(errmap.HTTPStatus(body.Code), body)
}
