package ws

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"zappy/internal/shared/security"
	"zappy/internal/shared/transport"
	tws "zappy/internal/shared/transport/ws"
	"zappy/modules/kit/errx"
)

type loginReq struct {
	Token string `json:"token"`
}

// Authenticate 读取升级请求的 Bearer token，合法时把角色记到连接上。
// 没带或不合法都不拒绝建连，只是连接没有角色。
func (w *World) Authenticate(r *http.Request, conn tws.WSConn) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}
	claims, err := security.RequireRole(strings.TrimSpace(raw), security.RoleAdmin, security.RoleObserver)
	if err != nil {
		w.log.Warn("ws upgrade token rejected", zap.Int64("conn_id", conn.ID()), zap.Error(err))
		return
	}
	conn.SetProperty(tws.ConnKeyRole, claims.Role)
}

// login 供无法设置升级请求头的客户端在连接内补交 token。
func (w *World) login(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
	var m loginReq
	if !w.bind(ctx, req, resp, &m) {
		return
	}
	if req.Conn == nil {
		w.fail(ctx, resp, errx.ErrUnavailable.WithMsg("connection is closed"))
		return
	}
	token := strings.TrimSpace(m.Token)
	if token == "" {
		w.fail(ctx, resp, errx.ErrUnauthorized.WithMsg("missing token"))
		return
	}
	claims, err := security.RequireRole(token, security.RoleAdmin, security.RoleObserver)
	if err != nil {
		req.Conn.RemoveProperty(tws.ConnKeyRole)
		w.fail(ctx, resp, errx.ErrUnauthorized.WithMsg("invalid token").WithCause(err))
		return
	}
	req.Conn.SetProperty(tws.ConnKeyRole, claims.Role)
	resp.Body.Code = transport.OK
	resp.Body.Msg = map[string]any{"role": claims.Role}
}

// admin 只放行持有 admin 角色的连接；未开启鉴权时原样返回 h。
func (w *World) admin(h tws.HandlerFunc) tws.HandlerFunc {
	if !w.needAuth {
		return h
	}
	return func(ctx context.Context, req *tws.WsMsgReq, resp *tws.WsMsgResp) {
		var role string
		if req.Conn != nil {
			role, _ = req.Conn.GetProperty(tws.ConnKeyRole).(string)
		}
		switch role {
		case security.RoleAdmin:
			h(ctx, req, resp)
		case "":
			w.fail(ctx, resp, errx.ErrUnauthorized.WithMsg("missing credentials"))
		default:
			w.fail(ctx, resp, errx.ErrForbidden.WithMsgf("role %q is not allowed", role))
		}
	}
}
