package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"zappy/internal/shared/transport"
	"zappy/modules/kit/logx"
)

// Server 包装 grpc.Server：统一挂 trace/access 拦截器与标准健康检查服务。
type Server struct {
	srv    *gogrpc.Server
	health *health.Server
	log    logx.Logger
}

func NewServer(l logx.Logger, opts ...gogrpc.ServerOption) *Server {
	if l == nil {
		l = logx.Nop()
	}
	opts = append([]gogrpc.ServerOption{
		gogrpc.ChainUnaryInterceptor(UnaryServerTraceInterceptor(), UnaryServerAccessLogInterceptor(l)),
	}, opts...)
	s := &Server{
		srv:    gogrpc.NewServer(opts...),
		health: health.NewServer(),
		log:    l,
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	return s
}

// Register 注册业务服务，并把它的健康状态置为 SERVING。
func (s *Server) Register(desc *gogrpc.ServiceDesc, impl any) {
	s.srv.RegisterService(desc, impl)
	s.health.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Serve 阻塞直到监听关闭。
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, gogrpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop 先把健康状态置为 NOT_SERVING，再优雅关闭；ctx 到期后强制停止。
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.srv.Stop()
	}
}

// UnaryServerAccessLogInterceptor 为每次 unary 调用写一条 access 日志，业务码取自 gRPC status。
func UnaryServerAccessLogInterceptor(l logx.Logger) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		ctx = transport.Begin(ctx, "GRPC "+info.FullMethod, "grpc")
		resp, err := handler(ctx, req)
		code := transport.OK
		if err != nil {
			code = transport.SystemError
			if st, ok := status.FromError(err); ok {
				code = HTTPCode(st.Code())
				transport.SetErrorReason(ctx, st.Message())
			}
		}
		transport.Finish(ctx, l, code)
		return resp, err
	}
}
