package actors

import (
	"github.com/asynkron/protoactor-go/actor"

	"zappy/internal/shared/actor/messages"
)

type WorldHandler struct{}

var WH = &WorldHandler{}

func (h *WorldHandler) HandleHWPing(ctx actor.Context, p *WorldActor, _ messages.HWPing) {
	ok(ctx, messages.WHPing{
		WorldID: int(p.worldID),
		State:   p.state.String(),
		Version: p.dc.Version(),
	})
}

func (h *WorldHandler) HandleHWWorldMap(ctx actor.Context, p *WorldActor, _ messages.HWWorldMap) {
	ok(ctx, p.service.Map(p.entity))
}

func (h *WorldHandler) HandleHWWorldPlayers(ctx actor.Context, p *WorldActor, _ messages.HWWorldPlayers) {
	ok(ctx, p.service.Players(p.entity))
}

func (h *WorldHandler) HandleHWWorldStats(ctx actor.Context, p *WorldActor, _ messages.HWWorldStats) {
	ok(ctx, p.service.Stats(p.entity))
}

func (h *WorldHandler) HandleHWFrame(ctx actor.Context, p *WorldActor, _ messages.HWFrame) {
	ok(ctx, p.currentFrame())
}

func (h *WorldHandler) HandleHWTeams(ctx actor.Context, p *WorldActor, _ messages.HWTeams) {
	ok(ctx, p.service.Teams(p.entity))
}

func (h *WorldHandler) HandleHWAddTeam(ctx actor.Context, p *WorldActor, req messages.HWAddTeam) {
	respond(ctx)(p.service.AddTeam(p.entity, req))
}

func (h *WorldHandler) HandleHWRemoveTeam(ctx actor.Context, p *WorldActor, req messages.HWRemoveTeam) {
	respond(ctx)(p.service.RemoveTeam(p.entity, req))
}

func (h *WorldHandler) HandleHWAddPlayer(ctx actor.Context, p *WorldActor, req messages.HWAddPlayer) {
	respond(ctx)(p.service.AddPlayer(p.entity, req))
}

func (h *WorldHandler) HandleHWRemovePlayer(ctx actor.Context, p *WorldActor, req messages.HWRemovePlayer) {
	respond(ctx)(p.service.RemovePlayer(p.entity, req))
}

func (h *WorldHandler) HandleHWGetPlayer(ctx actor.Context, p *WorldActor, req messages.HWGetPlayer) {
	respond(ctx)(p.service.GetPlayer(p.entity, req))
}

func (h *WorldHandler) HandleHWMovePlayer(ctx actor.Context, p *WorldActor, req messages.HWMovePlayer) {
	respond(ctx)(p.service.MovePlayer(p.entity, req))
}

func (h *WorldHandler) HandleHWPickUp(ctx actor.Context, p *WorldActor, req messages.HWPickUp) {
	respond(ctx)(p.service.PickUp(p.entity, req))
}

func ok(ctx actor.Context, body any) {
	ctx.Respond(messages.WorldReply{Body: body})
}

func fail(ctx actor.Context, err error) {
	ctx.Respond(messages.WorldReply{Err: err})
}

// respond 把 service 的 (body, err) 直接转成回复：respond(ctx)(svc.Op(...))。
func respond(ctx actor.Context) func(any, error) {
	return func(body any, err error) {
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, body)
	}
}
