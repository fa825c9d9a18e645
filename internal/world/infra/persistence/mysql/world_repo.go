package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zappy/internal/world/app/port"
	"zappy/internal/world/entity"
	"zappy/internal/world/infra/persistence/model"
	"zappy/modules/kit/errx"
)

const batchSize = 500

// WorldRepository 把快照拆成 world/world_tile/world_team/world_player/world_inventory 五张表。
// 方言由 gorm.Dialector 决定，mysql 和 postgres 共用这一份实现。
type WorldRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewWorldRepository(db *gorm.DB) *WorldRepository {
	return &WorldRepository{db: db, now: time.Now}
}

func (r *WorldRepository) WithTx(tx *gorm.DB) *WorldRepository {
	return &WorldRepository{db: tx, now: r.now}
}

func (r *WorldRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(model.AllModels()...)
}

const OpLoadWorld = "repo.world.LoadWorld"

func (r *WorldRepository) LoadWorld(ctx context.Context, id entity.WorldID) (*entity.WorldPersistSnapshot, error) {
	rows, err := r.loadRows(ctx, id)
	switch {
	case err == nil:
		return model.RowsToSnapshot(rows), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, port.ErrWorldNotFound.WithData("world_id", int(id))
	default:
		// 纯技术错误（连接超时等）包装后交给 dc 记录
		return nil, wrap(OpLoadWorld, err, id)
	}
}

func (r *WorldRepository) loadRows(ctx context.Context, id entity.WorldID) (model.Rows, error) {
	var rows model.Rows
	db := r.db.WithContext(ctx)
	if err := db.Where("world_id = ?", int(id)).Take(&rows.World).Error; err != nil {
		return rows, err
	}
	if err := db.Where("world_id = ?", int(id)).Order("idx").Find(&rows.Tiles).Error; err != nil {
		return rows, err
	}
	if err := db.Where("world_id = ?", int(id)).Find(&rows.Teams).Error; err != nil {
		return rows, err
	}
	if err := db.Where("world_id = ?", int(id)).Find(&rows.Players).Error; err != nil {
		return rows, err
	}
	if err := db.Where("world_id = ?", int(id)).Find(&rows.Inventory).Error; err != nil {
		return rows, err
	}
	return rows, nil
}

const OpSaveWorld = "repo.world.Save"

// Save 在一个事务里先删后插子表；主表版本不低于快照版本时放弃本次写入。
func (r *WorldRepository) Save(ctx context.Context, s *entity.WorldPersistSnapshot) error {
	if s == nil {
		return nil
	}
	rows := model.SnapshotToRows(s, r.now())

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.WithTx(tx).saveRows(rows)
	})
	if err != nil {
		return wrap(OpSaveWorld, err, s.WorldID)
	}
	return nil
}

func (r *WorldRepository) saveRows(rows model.Rows) error {
	tx := r.db
	id := rows.World.WorldID

	var cur model.World
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("world_id = ?", id).Take(&cur).Error
	switch {
	case err == nil:
		if cur.Version >= rows.World.Version {
			return nil
		}
		err = tx.Save(&rows.World).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = tx.Create(&rows.World).Error
	}
	if err != nil {
		return err
	}

	for _, m := range []any{&model.WorldTile{}, &model.WorldTeam{}, &model.WorldPlayer{}, &model.WorldInventory{}} {
		if err = tx.Where("world_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	if len(rows.Tiles) > 0 {
		if err = tx.CreateInBatches(rows.Tiles, batchSize).Error; err != nil {
			return err
		}
	}
	if len(rows.Teams) > 0 {
		if err = tx.Create(&rows.Teams).Error; err != nil {
			return err
		}
	}
	if len(rows.Players) > 0 {
		if err = tx.Create(&rows.Players).Error; err != nil {
			return err
		}
	}
	if len(rows.Inventory) > 0 {
		if err = tx.Create(&rows.Inventory).Error; err != nil {
			return err
		}
	}
	return nil
}

func wrap(op string, err error, id entity.WorldID) error {
	return errx.ErrInternal.
		WithMsgf("%s failed", op).
		WithCause(err).
		WithData("world_id", int(id))
}
