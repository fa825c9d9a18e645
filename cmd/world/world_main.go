package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zappy/internal/shared/gameconfig/rules"
	"zappy/internal/shared/logs"
	"zappy/internal/shared/security"
	"zappy/internal/shared/serverconfig"
	"zappy/internal/shared/session"
	tgrpc "zappy/internal/shared/transport/grpc"
	transporthttp "zappy/internal/shared/transport/http"
	"zappy/internal/shared/transport/ws"
	"zappy/internal/shared/utils"
	"zappy/internal/world/actor"
	"zappy/internal/world/actors"
	"zappy/internal/world/entity"
	"zappy/internal/world/interfaces"
	wws "zappy/internal/world/interfaces/ws"
	"zappy/modules/kit/logx"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultFrameInterval   = time.Second
	defaultWSPath          = "/ws"
)

func main() {
	cfgPath := flag.String("config", "", "config file, defaults to configs/conf.yml searched upward")
	issueRole := flag.String("issue-token", "", "print a JWT for the given role (admin|observer) and exit")
	flag.Parse()

	path, err := serverconfig.Load(*cfgPath, func(next serverconfig.Config) {
		lv := logs.SetLevel(next.Log.Level)
		logs.Info("config reloaded", zap.String("log_level", lv.String()))
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	if *issueRole != "" {
		token, err := security.Award("cli", *issueRole, serverconfig.Conf.Security.TokenTTL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := logs.Init("world", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer func() { _ = logs.Sync() }()
	logs.Info("conf", zap.String("path", path), zap.Any("logic", serverconfig.Conf.Logic))

	if err := run(); err != nil {
		logs.Error("world server exited", zap.Error(err))
		_ = logs.Sync()
		os.Exit(1)
	}
}

func run() error {
	conf := serverconfig.Conf
	baseLogger := logx.NewZapLogger(logs.Logger())

	if err := utils.InitSnowflake(int64(conf.Logic.ServerID)); err != nil {
		return fmt.Errorf("init snowflake: %w", err)
	}
	r, err := rules.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, r.Store, conf, baseLogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	hub := session.NewHub()
	frameInterval := conf.WS.FrameInterval
	if frameInterval <= 0 {
		frameInterval = defaultFrameInterval
	}
	rt, err := actor.NewRuntime(actors.Deps{
		Repo:          repo,
		Rules:         r,
		Log:           baseLogger.With(zap.String("component", "world")),
		Publisher:     wws.NewFramePublisher(hub),
		FrameInterval: frameInterval,
	}, 0)
	if err != nil {
		return fmt.Errorf("start actor runtime: %w", err)
	}
	ping, err := rt.Start(ctx)
	if err != nil {
		shutdownRuntime(rt)
		return fmt.Errorf("load world %d: %w", r.WorldID, err)
	}
	logs.Info("world ready",
		zap.Int("world_id", ping.WorldID),
		zap.Uint64("version", ping.Version),
		zap.String("store", r.Store),
	)

	module := interfaces.New(rt, interfaces.Options{
		WorldID:  entity.WorldID(r.WorldID),
		NeedAuth: conf.Security.NeedAuth,
		Hub:      hub,
		Log:      baseLogger,
	})

	gin.SetMode(gin.ReleaseMode)
	httpAddr := fmt.Sprintf("%s:%d", hostOr(conf.HTTP.Host), conf.HTTP.Port)
	httpServer := transporthttp.NewServer(httpAddr, baseLogger,
		transporthttp.WithReadiness(func(ctx context.Context) error {
			_, err := rt.Ping(ctx)
			return err
		}),
	)
	module.RegisterHTTP(httpServer.Group())

	wsRouter := ws.NewRouter(baseLogger)
	module.Register(wsRouter)
	wsServer := ws.NewServer(wsRouter, baseLogger,
		ws.WithSecret(conf.WS.NeedSecret),
		ws.WithOnUpgrade(module.AuthenticateWS),
		ws.WithOnConnect(hub.Register),
	)
	wsPath := conf.WS.Path
	if wsPath == "" {
		wsPath = defaultWSPath
	}
	httpServer.Mount(wsPath, wsServer)

	errCh := make(chan error, 2)
	go func() {
		logs.Info("http server listening", zap.String("addr", httpAddr), zap.String("ws", wsPath))
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcServer *tgrpc.Server
	if conf.GRPC.Enable {
		grpcAddr := fmt.Sprintf("%s:%d", hostOr(conf.GRPC.Host), conf.GRPC.Port)
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			_ = httpServer.Shutdown(context.Background())
			shutdownRuntime(rt)
			return fmt.Errorf("grpc listen %s: %w", grpcAddr, err)
		}
		grpcServer = tgrpc.NewServer(baseLogger)
		module.RegisterRPC(grpcServer)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case runErr = <-errCh:
		logs.Error("服务异常退出", zap.Error(runErr))
	}

	timeout := conf.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logs.Warn("http shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}
	if err := rt.Shutdown(shutdownCtx); err != nil {
		logs.Warn("actor runtime shutdown", zap.Error(err))
	}
	return runErr
}

func shutdownRuntime(rt *actor.Runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	_ = rt.Shutdown(ctx)
}

func hostOr(host string) string {
	if host == "" {
		return "0.0.0.0"
	}
	return host
}
