package dc

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"zappy/internal/world/app/port"
	"zappy/internal/world/entity"
	"zappy/modules/kit/logx"
)

type WorldID = entity.WorldID

// Factory 在仓库里找不到世界时生成一个新世界。
type Factory func(id WorldID) *entity.World

const (
	defaultFlushEvery  = 3000 * time.Millisecond
	defaultSaveTimeout = 3 * time.Second
	defaultRetryDelay  = 200 * time.Millisecond
)

var errNilRepository = errors.New("world repository is nil")

type Option func(*WorldDC)

func WithFlushEvery(d time.Duration) Option {
	return func(dc *WorldDC) {
		dc.flushEvery = d
	}
}

func WithSaveTimeout(d time.Duration) Option {
	return func(dc *WorldDC) {
		if d > 0 {
			dc.saveTimeout = d
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(dc *WorldDC) {
		if d > 0 {
			dc.retryDelay = d
		}
	}
}

func WithLogger(l logx.Logger) Option {
	return func(dc *WorldDC) {
		if l != nil {
			dc.log = l
		}
	}
}

// WorldDC 持有活的世界，把脏状态做成版本化快照交给后台 writer 落库。
// entity 只能在所属 actor 的 goroutine 上访问；writer 只碰快照。
type WorldDC struct {
	repo        port.WorldRepository
	factory     Factory
	entity      *entity.World
	flushEvery  time.Duration
	saveTimeout time.Duration
	retryDelay  time.Duration
	log         logx.Logger

	mu      sync.Mutex
	pending *entity.WorldPersistSnapshot
	version uint64
	saved   uint64
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewWorldDC(repo port.WorldRepository, factory Factory, opts ...Option) *WorldDC {
	d := &WorldDC{
		repo:        repo,
		factory:     factory,
		flushEvery:  defaultFlushEvery,
		saveTimeout: defaultSaveTimeout,
		retryDelay:  defaultRetryDelay,
		log:         logx.Nop(),
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.writerLoop()
	return d
}

// Load 从仓库还原世界；不存在时用 factory 生成，新世界标记为脏以便首轮落库。
func (d *WorldDC) Load(ctx context.Context, id WorldID, opts ...entity.Option) (*entity.World, error) {
	if d.repo == nil {
		return nil, errNilRepository
	}
	s, err := d.repo.LoadWorld(ctx, id)
	switch {
	case err == nil:
		w, rerr := entity.RestoreWorld(s, opts...)
		if rerr != nil {
			return nil, rerr
		}
		d.mu.Lock()
		d.version = s.Version
		d.saved = s.Version
		d.mu.Unlock()
		d.entity = w
		d.log.Info("world restored",
			zap.Int("world_id", int(id)),
			zap.Uint64("version", s.Version),
		)
		return w, nil
	case errors.Is(err, port.ErrWorldNotFound) && d.factory != nil:
		w := d.factory(id)
		w.MarkDirty()
		d.entity = w
		d.log.Info("world generated",
			zap.Int("world_id", int(id)),
			zap.Int("width", w.X()),
			zap.Int("height", w.Y()),
		)
		return w, nil
	default:
		return nil, err
	}
}

// Flush 不阻塞：生成快照后只替换 pending，真正写库在 writer goroutine。
func (d *WorldDC) Flush(ctx context.Context) error {
	if !d.IsDirty() {
		return nil
	}
	if d.repo == nil {
		return errNilRepository
	}
	s, ok := d.buildNextSnapshot()
	if !ok {
		return nil
	}
	d.enqueueLatest(s)
	return nil
}

func (d *WorldDC) IsDirty() bool {
	if d.entity == nil {
		return false
	}
	return d.entity.Dirty()
}

func (d *WorldDC) Entity() *entity.World {
	return d.entity
}

func (d *WorldDC) FlushEvery() time.Duration {
	return d.flushEvery
}

// Version 返回最近一次生成的快照版本。
func (d *WorldDC) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// SavedVersion 返回仓库已确认写入的最高版本。
func (d *WorldDC) SavedVersion() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saved
}

// Close 先把当前脏状态入队，再等 writer 写完退出。
func (d *WorldDC) Close(ctx context.Context) error {
	_ = d.Flush(ctx)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *WorldDC) buildNextSnapshot() (*entity.WorldPersistSnapshot, bool) {
	if d.entity == nil {
		return nil, false
	}
	d.mu.Lock()
	d.version++
	version := d.version
	d.mu.Unlock()

	s, ok := d.entity.BuildPersistSnapshot(version)
	if !ok {
		return nil, false
	}
	d.entity.ClearDirty()
	return s, true
}

func (d *WorldDC) enqueueLatest(s *entity.WorldPersistSnapshot) {
	if s == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()

	d.signal()
}

func (d *WorldDC) popPending() *entity.WorldPersistSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.pending
	d.pending = nil
	return s
}

// requeueOnError 在关闭后也会重排，保证 Close 前入队的快照不会因一次失败丢失。
func (d *WorldDC) requeueOnError(s *entity.WorldPersistSnapshot) {
	d.mu.Lock()
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()

	d.signal()
}

func (d *WorldDC) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *WorldDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending(false)
		case <-d.stop:
			d.consumePending(true)
			return
		}
	}
}

func (d *WorldDC) consumePending(closing bool) {
	attempts := 0
	for {
		s := d.popPending()
		if s == nil {
			return
		}
		if err := d.save(s); err != nil {
			attempts++
			d.log.Error("world save failed",
				zap.Int("world_id", int(s.WorldID)),
				zap.Uint64("version", s.Version),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			// 关闭阶段只重试有限次，避免仓库不可用时 Close 永远等不到 done。
			if closing && attempts >= maxCloseAttempts {
				return
			}
			// 写库失败时重排当前快照；若已有更新快照，会被更高 version 覆盖。
			d.requeueOnError(s)
			select {
			case <-time.After(d.retryDelay):
			case <-d.stopped(closing):
				closing = true
			}
			continue
		}
		attempts = 0
		d.mu.Lock()
		if s.Version > d.saved {
			d.saved = s.Version
		}
		d.mu.Unlock()
	}
}

const maxCloseAttempts = 3

// stopped 在非关闭阶段返回 stop 通道，关闭阶段返回 nil 让 select 只等重试间隔。
func (d *WorldDC) stopped(closing bool) <-chan struct{} {
	if closing {
		return nil
	}
	return d.stop
}

func (d *WorldDC) save(s *entity.WorldPersistSnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.saveTimeout)
	defer cancel()
	return d.repo.Save(ctx, s)
}
