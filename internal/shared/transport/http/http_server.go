package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zappy/internal/shared/transport/http/middleware"
	"zappy/modules/kit/logx"
)

const readyTimeout = 2 * time.Second

// Server 是挂好 recovery/cors/access 中间件的 gin 服务，自带 /healthz 与 /readyz。
type Server struct {
	engine *gin.Engine
	srv    *nethttp.Server
	ready  func(ctx context.Context) error
}

type Option func(*Server)

// WithReadiness 设置 /readyz 的检查；check 返回错误时 /readyz 回 503。
func WithReadiness(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

func NewServer(addr string, l logx.Logger, opts ...Option) *Server {
	if l == nil {
		l = logx.Nop()
	}
	engine := gin.New()
	engine.Use(middleware.Recovery(l), middleware.Cors(), middleware.AccessLog(l))

	s := &Server{
		engine: engine,
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/readyz", s.readyz)
	return s
}

func (s *Server) readyz(c *gin.Context) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(nethttp.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
	}
	c.JSON(nethttp.StatusOK, gin.H{"status": "ready"})
}

// Group 返回业务路由的根分组。
func (s *Server) Group() *gin.RouterGroup {
	return &s.engine.RouterGroup
}

// Mount 把非 gin 的 handler 挂到 GET path 上（ws 升级用）。
func (s *Server) Mount(path string, h nethttp.Handler) {
	s.engine.GET(path, gin.WrapH(h))
}

func (s *Server) Handler() nethttp.Handler {
	return s.engine
}

// Start 阻塞到服务关闭；正常关闭返回 nil。
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
