package main

import (
	"context"
	"fmt"

	"zappy/internal/shared/gameconfig/rules"
	sharedb "zappy/internal/shared/infrastructure/db"
	sharedmongo "zappy/internal/shared/infrastructure/mongo"
	"zappy/internal/shared/serverconfig"
	"zappy/internal/world/app/port"
	"zappy/internal/world/infra/persistence/memory"
	worldmongo "zappy/internal/world/infra/persistence/mongodb"
	worldsql "zappy/internal/world/infra/persistence/mysql"
	"zappy/modules/kit/logx"
)

// openRepository 按 logic.store 打开世界仓库，返回的 close 负责释放连接。
func openRepository(ctx context.Context, store string, conf serverconfig.Config, l logx.Logger) (port.WorldRepository, func(), error) {
	switch store {
	case rules.StoreMongo:
		client, err := sharedmongo.Open(ctx, conf.MongoDB, l)
		if err != nil {
			return nil, nil, fmt.Errorf("open mongodb: %w", err)
		}
		repo := worldmongo.NewWorldRepository(sharedmongo.Database(client, conf.MongoDB))
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	case rules.StoreMySQL:
		db, err := sharedb.Open(conf.Database, l)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		repo := worldsql.NewWorldRepository(db)
		if err = repo.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate world tables: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repo, closeDB, nil
	default:
		return memory.NewWorldRepository(), func() {}, nil
	}
}
