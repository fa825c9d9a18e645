package actors

import (
	"time"

	"go.uber.org/zap"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/shared/gameconfig/rules"
	"zappy/internal/shared/utils"
	"zappy/internal/world/app/port"
	"zappy/internal/world/dc"
	"zappy/internal/world/entity"
	"zappy/modules/kit/logx"
)

// Publisher 接收 WorldActor 定时生成的观察帧。
type Publisher interface {
	// Wants 为 false 时本轮不生成帧。
	Wants(id WorldID) bool
	PublishFrame(id WorldID, frame messages.WHFrame)
}

// Deps 是 ManagerActor 和它派生的 WorldActor 共享的依赖。
type Deps struct {
	Repo          port.WorldRepository
	Rules         rules.Rules
	Log           logx.Logger
	Publisher     Publisher
	FrameInterval time.Duration
	// Seed 为 nil 时使用 utils.TimeSeed。
	Seed func() uint64
}

func (d Deps) logger() logx.Logger {
	if d.Log == nil {
		return logx.Nop()
	}
	return d.Log
}

func (d Deps) defaultWorldID() WorldID {
	if d.Rules.WorldID == 0 {
		return WorldID(1)
	}
	return WorldID(d.Rules.WorldID)
}

// worldOptions 返回生成和还原共用的世界选项；随机出生点需要自己的随机源。
func (d Deps) worldOptions(id WorldID, seed uint64) []entity.Option {
	opts := []entity.Option{entity.WithID(id)}
	if d.Rules.TeamSize > 0 {
		opts = append(opts, entity.WithTeamSize(d.Rules.TeamSize))
	}
	if d.Rules.Spawn == rules.SpawnRandom {
		opts = append(opts, entity.WithSpawnPolicy(entity.RandomSpawn(utils.NewRand(seed+1))))
	}
	return opts
}

func (d Deps) seed() uint64 {
	fallback := d.Seed
	if fallback == nil {
		fallback = utils.TimeSeed
	}
	return d.Rules.SeedOr(fallback)
}

// factory 生成新世界，并创建配置里预置的队伍。
func (d Deps) factory(seed uint64) dc.Factory {
	return func(id WorldID) *entity.World {
		w := entity.Generate(utils.NewRand(seed), d.Rules.Width, d.Rules.Height, d.worldOptions(id, seed)...)
		for _, name := range d.Rules.Teams {
			if err := w.AddTeam(name); err != nil {
				d.logger().Warn("preset team not added", zap.String("team", name), zap.Error(err))
			}
		}
		return w
	}
}
