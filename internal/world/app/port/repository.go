package port

import (
	"context"

	"zappy/internal/world/entity"
	"zappy/modules/kit/errx"
)

const CodeWorldNotFound errx.Code = "WORLD_NOT_FOUND"

// ErrWorldNotFound 表示仓库里没有该世界，调用方据此决定是否生成新世界。
var ErrWorldNotFound = errx.NewBiz(CodeWorldNotFound, "world not found")

// WorldRepository 以快照为单位读写世界；实现方不持有活的 *entity.World。
type WorldRepository interface {
	LoadWorld(ctx context.Context, id entity.WorldID) (*entity.WorldPersistSnapshot, error)
	Save(ctx context.Context, s *entity.WorldPersistSnapshot) error
}
