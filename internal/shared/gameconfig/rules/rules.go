package rules

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"zappy/internal/shared/serverconfig"
)

const (
	SpawnOrigin = "origin"
	SpawnRandom = "random"

	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"

	// MaxTeamNameLen 是队伍名的最大字符数，与关系库队伍名列宽一致。
	MaxTeamNameLen = 64
)

const (
	defaultWidth         = 10
	defaultHeight        = 10
	defaultTeamSize      = 6
	defaultWorldID       = 1
	defaultFlushInterval = 3 * time.Second
)

// Rules 是启动时解析一次、之后不再变化的世界规则。
type Rules struct {
	WorldID       int
	Width         int
	Height        int
	TeamSize      int
	Teams         []string
	Spawn         string
	Seed          uint64
	Store         string
	FlushInterval time.Duration
}

var (
	once     sync.Once
	resolved Rules
	loadErr  error
)

// Load 从 serverconfig.Conf.Logic 解析规则，只在第一次调用时生效。
func Load() (Rules, error) {
	once.Do(func() {
		resolved, loadErr = Resolve(serverconfig.Conf.Logic)
	})
	return resolved, loadErr
}

// Resolve 填默认值并校验配置。
func Resolve(cfg serverconfig.LogicConfig) (Rules, error) {
	r := Rules{
		WorldID:       cfg.WorldID,
		Width:         cfg.Width,
		Height:        cfg.Height,
		TeamSize:      cfg.TeamSize,
		Spawn:         strings.ToLower(strings.TrimSpace(cfg.Spawn)),
		Seed:          cfg.Seed,
		Store:         strings.ToLower(strings.TrimSpace(cfg.Store)),
		FlushInterval: cfg.FlushInterval,
	}
	if r.WorldID == 0 {
		r.WorldID = defaultWorldID
	}
	if r.Width == 0 {
		r.Width = defaultWidth
	}
	if r.Height == 0 {
		r.Height = defaultHeight
	}
	if r.TeamSize == 0 {
		r.TeamSize = defaultTeamSize
	}
	if r.Spawn == "" {
		r.Spawn = SpawnOrigin
	}
	if r.Store == "" {
		r.Store = StoreMemory
	}
	if r.FlushInterval <= 0 {
		r.FlushInterval = defaultFlushInterval
	}

	if r.Width < 0 || r.Height < 0 {
		return Rules{}, fmt.Errorf("logic: invalid map size %dx%d", r.Width, r.Height)
	}
	if r.TeamSize < 0 {
		return Rules{}, fmt.Errorf("logic: invalid team_size %d", r.TeamSize)
	}
	switch r.Spawn {
	case SpawnOrigin, SpawnRandom:
	default:
		return Rules{}, fmt.Errorf("logic: unknown spawn %q", cfg.Spawn)
	}
	switch r.Store {
	case StoreMemory, StoreMongo, StoreMySQL:
	default:
		return Rules{}, fmt.Errorf("logic: unknown store %q", cfg.Store)
	}

	seen := make(map[string]struct{}, len(cfg.Teams))
	for _, name := range cfg.Teams {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > MaxTeamNameLen {
			return Rules{}, fmt.Errorf("logic: team %q longer than %d characters", name, MaxTeamNameLen)
		}
		if _, dup := seen[name]; dup {
			return Rules{}, fmt.Errorf("logic: duplicate team %q", name)
		}
		seen[name] = struct{}{}
		r.Teams = append(r.Teams, name)
	}
	return r, nil
}

// SeedOr 返回配置的种子；未配置（0）时使用 fallback。
func (r Rules) SeedOr(fallback func() uint64) uint64 {
	if r.Seed != 0 || fallback == nil {
		return r.Seed
	}
	return fallback()
}
