package ws

import (
	"context"
	"fmt"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/shared/session"
	"zappy/internal/shared/transport"
	tws "zappy/internal/shared/transport/ws"
	"zappy/internal/world/entity"
	"zappy/internal/world/interfaces/errmap"
	"zappy/modules/kit/errx"
	"zappy/modules/kit/logx"
)

const FrameMsg = "world.frame"

// WorldAPI 是 ws 路由需要的世界操作，*actor.Runtime 实现了它。
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

// FrameTopic 是某个世界的帧推送主题。
func FrameTopic(id entity.WorldID) string {
	return fmt.Sprintf("world.%d.frame", id)
}

// FramePublisher 通过会话中心把帧推给订阅者，实现 actors.Publisher。
type FramePublisher struct {
	hub *session.Hub
}

func NewFramePublisher(hub *session.Hub) *FramePublisher {
	return &FramePublisher{hub: hub}
}

func (p *FramePublisher) Wants(id entity.WorldID) bool {
	return p.hub.Subscribers(FrameTopic(id)) > 0
}

func (p *FramePublisher) PublishFrame(id entity.WorldID, frame messages.WHFrame) {
	p.hub.Broadcast(FrameTopic(id), FrameMsg, frame)
}

type World struct {
	api      WorldAPI
	hub      *session.Hub
	worldID  entity.WorldID
	log      logx.Logger
	needAuth bool
}

// NewWorld needAuth=true 时写操作要求连接持有 admin 角色。
func NewWorld(api WorldAPI, hub *session.Hub, worldID entity.WorldID, log logx.Logger, needAuth bool) *World {
	if log == nil {
		log = logx.Nop()
	}
	return &World{api: api, hub: hub, worldID: worldID, log: log, needAuth: needAuth}
}

type teamReq struct {
	Name string `json:"name"`
}

type addPlayerReq struct {
	Team string `json:"team"`
}

// 整数字段用指针区分缺省和 0
type playerReq struct {
	Team string `json:"team"`
	ID   *int   `json:"id"`
}

type moveReq struct {
	Team string `json:"team"`
	ID   *int   `json:"id"`
	X    *int   `json:"x"`
	Y    *int   `json:"y"`
}

func (w *World) RegisterRoutes(r *tws.Router) {
	g := r.Group("world")
	g.Handle("map", w.worldMap)
	g.Handle("players", w.players)
	g.Handle("stats", w.stats)
	g.Handle("subscribe", w.subscribe)
	g.Handle("unsubscribe", w.unsubscribe)

	r.Group("auth").Handle("login", w.login)

	t := r.Group("team")
	t.Handle("list", w.teams)
	t.Handle("add", w.admin(w.addTeam))
	t.Handle("remove", w.admin(w.removeTeam))

	p := r.Group("player")
	p.Handle("add", w.admin(w.addPlayer))
	p.Handle("remove", w.admin(w.removePlayer))
	p.Handle("get", w.getPlayer)
	p.Handle("move", w.admin(w.movePlayer))
	p.Handle("pickup", w.admin(w.pickUp))
}

func (w *World) worldMap(ctx context.Context, _ *tws.WsMsgReq, resp *tws.WsMsgResp) {
	w.write(ctx, resp)(w.api.Map(ctx))
}

func (w *World) players(ctx context.Context, _ *tws.WsMsgReq, resp *tws.WsMsgResp) {
	w.write(ctx, resp)(w.api.Players(ctx))
}

func (w *World) stats(ctx context.Context, _ *tws.WsMsgReq, resp *tws.WsMsgResp) {
	w.write(ctx, resp)(w.api.Stats(ctx))
}

// subscribe 让连接开始接收 world.frame 推送。
func (w *World) subscribe(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	if req.Conn == nil || w.hub == nil {
		w.fail(ctx, resp, errx.ErrUnavailable.WithMsg("frame push is not enabled"))
		return
	}
	w.hub.Register(req.Conn)
	if !w.hub.Subscribe(req.Conn, FrameTopic(w.worldID)) {
		w.fail(ctx, resp, errx.ErrUnavailable.WithMsg("connection is closed"))
		return
	}
	resp.Body.Code = transport.OK
	resp.Body.Msg = map[string]any{"topic": FrameTopic(w.worldID)}
}

func (w *World) unsubscribe(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	if req.Conn != nil && w.hub != nil {
		w.hub.Unsubscribe(req.Conn, FrameTopic(w.worldID))
	}
	resp.Body.Code = transport.OK
}

func (w *World) teams(ctx context.Context, _ *tws.WsMsgReq, resp *tws.WsMsgResp) {
	w.write(ctx, resp)(w.api.Teams(ctx))
}

func (w *World) addTeam(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m teamReq
	if !w.bind(ctx, req, resp, &m) {
		return
	}
	w.write(ctx, resp)(w.api.AddTeam(ctx, m.Name))
}

func (w *World) removeTeam(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m teamReq
	if !w.bind(ctx, req, resp, &m) {
		return
	}
	w.write(ctx, resp)(w.api.RemoveTeam(ctx, m.Name))
}

func (w *World) addPlayer(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m addPlayerReq
	if !w.bind(ctx, req, resp, &m) {
		return
	}
	w.write(ctx, resp)(w.api.AddPlayer(ctx, m.Team))
}

func (w *World) removePlayer(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m playerReq
	if !w.bind(ctx, req, resp, &m) || !w.required(ctx, resp, m.ID) {
		return
	}
	w.write(ctx, resp)(w.api.RemovePlayer(ctx, m.Team, *m.ID))
}

func (w *World) getPlayer(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m playerReq
	if !w.bind(ctx, req, resp, &m) || !w.required(ctx, resp, m.ID) {
		return
	}
	w.write(ctx, resp)(w.api.GetPlayer(ctx, m.Team, *m.ID))
}

func (w *World) movePlayer(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m moveReq
	if !w.bind(ctx, req, resp, &m) || !w.required(ctx, resp, m.ID, m.X, m.Y) {
		return
	}
	w.write(ctx, resp)(w.api.MovePlayer(ctx, m.Team, *m.ID, *m.X, *m.Y))
}

func (w *World) pickUp(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m playerReq
	if !w.bind(ctx, req, resp, &m) || !w.required(ctx, resp, m.ID) {
		return
	}
	w.write(ctx, resp)(w.api.PickUp(ctx, m.Team, *m.ID))
}

func (w *World) bind(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp, dst any) bool {
	if err := tws.BindJSON(req, dst); err != nil {
		w.fail(ctx, resp, errx.ErrReqParamERR.WithMsg("malformed message").WithCause(err))
		return false
	}
	return true
}

func (w *World) required(ctx context.Context, resp *tws.WsMsgResp, fields ...*int) bool {
	for _, f := range fields {
		if f == nil {
			w.fail(ctx, resp, errx.ErrReqParamERR.WithMsg("missing integer field"))
			return false
		}
	}
	return true
}

func (w *World) write(ctx context.Context, resp *tws.WsMsgResp) func(any, error) {
	return func(data any, err error) {
		if err != nil {
			w.fail(ctx, resp, err)
			return
		}
		resp.Body.Code = transport.OK
		resp.Body.Msg = data
	}
}

// fail 把错误写进响应；ws 的 Msg 字段承载失败原因。
func (w *World) fail(ctx context.Context, resp *tws.WsMsgResp, err error) {
	body := errmap.Body(err)
	transport.SetErrorReason(ctx, body.Reason)
	if errmap.IsSystem(err) {
		logx.ReportError(ctx, w.log, "ws world", err)
	}
	resp.Body.Code = body.Code
	resp.Body.Msg = body
}
