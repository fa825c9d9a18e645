package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zappy/modules/kit/logx"
)

// Server 把 HTTP 请求升级为 websocket 连接，可直接挂到 gin：engine.GET(path, gin.WrapH(s))。
type Server struct {
	router     *Router
	needSecret bool
	onConnect  func(WSConn)
	onUpgrade  func(*http.Request, WSConn)
	upgrader   websocket.Upgrader
	log        logx.Logger
}

type ServerOption func(*Server)

func WithSecret(need bool) ServerOption {
	return func(s *Server) { s.needSecret = need }
}

// WithOnConnect 在连接开始收发前回调，常用于把连接登记到会话中心。
func WithOnConnect(fn func(WSConn)) ServerOption {
	return func(s *Server) { s.onConnect = fn }
}

// WithOnUpgrade 在升级成功后回调，可读取升级请求（例如 Authorization 头）给连接打属性。
func WithOnUpgrade(fn func(*http.Request, WSConn)) ServerOption {
	return func(s *Server) { s.onUpgrade = fn }
}

func NewServer(r *Router, l logx.Logger, opts ...ServerOption) *Server {
	if l == nil {
		l = logx.Nop()
	}
	s := &Server{
		router: r,
		log:    l,
		upgrader: websocket.Upgrader{
			// 观察端来自任意页面
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	wsConn, err := s.upgrader.Upgrade(resp, req, nil)
	if err != nil {
		s.log.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	conn := NewWsServer(wsConn, s.router, s.needSecret, s.log)
	s.log.Info("websocket connected", zap.Int64("conn_id", conn.ID()), zap.String("addr", conn.Addr()))
	if s.onUpgrade != nil {
		s.onUpgrade(req, conn)
	}
	if s.onConnect != nil {
		s.onConnect(conn)
	}
	conn.Run()
}
