package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"zappy/internal/shared/serverconfig"
	"zappy/modules/kit/logx"
)

const defaultConnectTimeout = 3 * time.Second

var ErrEmptyURI = errors.New("mongodb uri is empty")

// Open 连接并 Ping 一次；失败时断开连接。
func Open(ctx context.Context, cfg serverconfig.MongoDBConfig, l logx.Logger) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, ErrEmptyURI
	}
	if l == nil {
		l = logx.Nop()
	}

	timeout := time.Duration(cfg.ConnectTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetAppName("zappy-world")
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	l.Info("open mongodb success", zap.String("database", cfg.Database))
	return client, nil
}

// Database 返回配置里的库；未配置库名时用 zappy。
func Database(client *mongo.Client, cfg serverconfig.MongoDBConfig) *mongo.Database {
	name := cfg.Database
	if name == "" {
		name = "zappy"
	}
	return client.Database(name)
}
