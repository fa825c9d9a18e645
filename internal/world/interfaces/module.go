package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zappy/internal/shared/session"
	tgrpc "zappy/internal/shared/transport/grpc"
	tws "zappy/internal/shared/transport/ws"
	"zappy/internal/world/entity"
	whttp "zappy/internal/world/interfaces/http"
	"zappy/internal/world/interfaces/rpc"
	wws "zappy/internal/world/interfaces/ws"
	"zappy/modules/kit/logx"
)

// API 是三种协议共同依赖的世界操作集合，*actor.Runtime 实现了它。
type API interface {
	whttp.WorldAPI
	wws.WorldAPI
	rpc.WorldAPI
}

type Options struct {
	WorldID  entity.WorldID
	NeedAuth bool
	Hub      *session.Hub
	Log      logx.Logger
}

type Module struct {
	http *whttp.World
	ws   *wws.World
	rpc  *rpc.World
}

func New(api API, opts Options) *Module {
	return &Module{
		http: whttp.NewWorld(api, opts.Log, opts.NeedAuth),
		ws:   wws.NewWorld(api, opts.Hub, opts.WorldID, opts.Log, opts.NeedAuth),
		rpc:  rpc.NewWorld(api, opts.Log),
	}
}

func (m *Module) RegisterHTTP(g *gin.RouterGroup) {
	m.http.RegisterRoutes(g)
}

func (m *Module) Register(r *tws.Router) {
	m.ws.RegisterRoutes(r)
}

// AuthenticateWS 挂到 ws 升级回调上，从请求头取角色。
func (m *Module) AuthenticateWS(r *http.Request, conn tws.WSConn) {
	m.ws.Authenticate(r, conn)
}

func (m *Module) RegisterRPC(s *tgrpc.Server) {
	s.Register(&rpc.WorldServiceDesc, m.rpc)
}
