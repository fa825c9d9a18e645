package actors

import (
	"reflect"

	"github.com/asynkron/protoactor-go/actor"

	"zappy/internal/shared/actor/messages"
	"zappy/modules/kit/errx"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, WH.HandleHWPing)
	register(d, WH.HandleHWWorldMap)
	register(d, WH.HandleHWWorldPlayers)
	register(d, WH.HandleHWWorldStats)
	register(d, WH.HandleHWFrame)
	register(d, WH.HandleHWTeams)
	register(d, WH.HandleHWAddTeam)
	register(d, WH.HandleHWRemoveTeam)
	register(d, WH.HandleHWAddPlayer)
	register(d, WH.HandleHWRemovePlayer)
	register(d, WH.HandleHWGetPlayer)
	register(d, WH.HandleHWMovePlayer)
	register(d, WH.HandleHWPickUp)
}

func register[Req messages.WorldMessage](
	d *Dispatcher,
	fn func(ctx actor.Context, p *WorldActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

// Has 报告是否注册了该请求类型。
func (d *Dispatcher) Has(req messages.WorldMessage) bool {
	_, ok := d.handlers[reflect.TypeOf(req)]
	return ok
}

func (d *Dispatcher) Dispatch(ctx actor.Context, p *WorldActor, req messages.WorldMessage) {
	if req == nil {
		ctx.Respond(messages.WorldReply{Err: errx.ErrReqParamERR.WithMsg("nil request")})
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		ctx.Respond(messages.WorldReply{
			Err: errx.ErrReqParamERR.WithMsgf("no handler for %s", bodyType),
		})
		return
	}

	if bodyType != handler.reqType {
		ctx.Respond(messages.WorldReply{Err: errx.ErrReqParamERR.WithMsg("request body type mismatch")})
		return
	}

	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(p),
		reflect.ValueOf(req),
	})
}
