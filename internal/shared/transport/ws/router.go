package ws

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"zappy/internal/shared/transport"
	"zappy/modules/kit/logx"
)

// HandlerFunc 处理一条 ws 请求；必须给 resp.Body.Code 赋值，否则按系统错误返回。
type HandlerFunc func(ctx context.Context, req *WsMsgReq, resp *WsMsgResp)

// Router 以 "组.动作" 命名路由，例如 team.add。
type Router struct {
	routes map[string]HandlerFunc
	log    logx.Logger
}

type Group struct {
	r      *Router
	prefix string
}

func NewRouter(l logx.Logger) *Router {
	if l == nil {
		l = logx.Nop()
	}
	return &Router{routes: make(map[string]HandlerFunc), log: l}
}

func (r *Router) Group(prefix string) *Group {
	return &Group{r: r, prefix: prefix}
}

func (g *Group) Handle(name string, h HandlerFunc) {
	g.r.routes[g.prefix+"."+name] = h
}

// Dispatch 查路由并执行；handler panic 只影响本条消息。
func (r *Router) Dispatch(parent context.Context, req *WsMsgReq, resp *WsMsgResp) {
	if resp == nil || resp.Body == nil {
		return
	}
	name := ""
	if req != nil && req.Body != nil {
		name = req.Body.Name
	}
	ctx := transport.Begin(parent, "WS "+name, "ws")
	resp.Body.Code, resp.Body.Msg = transport.SystemError, nil
	defer func() {
		if p := recover(); p != nil {
			r.log.WithContext(ctx).Error("ws handler panic", zap.String("panic", fmt.Sprint(p)), zap.Stack("stack"))
			resp.Body.Code, resp.Body.Msg = transport.SystemError, "internal error"
		}
		transport.Finish(ctx, r.log, resp.Body.Code)
	}()

	if !validRoute(name) {
		resp.Body.Code, resp.Body.Msg = transport.InvalidParam, "invalid route name"
		return
	}
	h := r.routes[name]
	if h == nil {
		resp.Body.Code, resp.Body.Msg = transport.NotFound, "route not found"
		return
	}
	h(ctx, req, resp)
}

func validRoute(name string) bool {
	prefix, action, ok := strings.Cut(name, ".")
	return ok && prefix != "" && action != "" && !strings.Contains(action, ".")
}
