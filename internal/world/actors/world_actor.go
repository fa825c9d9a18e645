package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/world/dc"
	"zappy/internal/world/entity"
	"zappy/internal/world/service"
	"zappy/modules/kit/errx"
	"zappy/modules/kit/logx"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Init:
		return "init"
	case Online:
		return "online"
	case Offline:
		return "offline"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

const (
	loadTimeout  = 10 * time.Second
	closeTimeout = 3 * time.Second
)

// WorldActor 独占一个 *entity.World；所有读写都经过它的邮箱串行执行。
type WorldActor struct {
	state      State
	worldID    WorldID
	deps       Deps
	log        logx.Logger
	dc         *dc.WorldDC
	entity     *entity.World
	service    *service.WorldService
	dispatcher *Dispatcher
	loadErr    error
	seed       uint64
	frameSeq   uint64

	flushStop chan struct{}
	frameStop chan struct{}
}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

type frameTick struct{}

func (frameTick) NotInfluenceReceiveTimeout() {}

func NewWorldActor(worldID WorldID, deps Deps) *WorldActor {
	l := deps.logger().With(zap.Int("world_id", int(worldID)))
	seed := deps.seed()
	return &WorldActor{
		state:   None,
		worldID: worldID,
		deps:    deps,
		log:     l,
		seed:    seed,
		dc: dc.NewWorldDC(deps.Repo, deps.factory(seed),
			dc.WithFlushEvery(deps.Rules.FlushInterval),
			dc.WithLogger(l),
		),
		service:    service.NewWorldService(l),
		dispatcher: NewDispatcher(),
	}
}

func (p *WorldActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.shutdown()
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopLoops()
		p.state = Offline
		return
	case *actor.Restarting:
		p.shutdown()
		p.state = Init
		return
	case flushTick:
		if p.state != Online {
			return
		}
		if err := p.dc.Flush(context.Background()); err != nil {
			p.log.Error("world periodic flush failed", zap.Error(err))
		}
		return
	case frameTick:
		p.publishFrame()
		return
	case messages.WorldMessage:
		if p.state != Online {
			fail(ctx, p.unavailable())
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

// init 加载或生成世界。加载失败时 actor 保持 Offline，对请求回复 Unavailable。
func (p *WorldActor) init(ctx actor.Context) {
	loadCtx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	e, err := p.dc.Load(loadCtx, p.worldID, p.deps.worldOptions(p.worldID, p.seed)...)
	if err != nil {
		p.loadErr = err
		p.state = Offline
		logx.ReportError(loadCtx, p.log, "world load", err)
		return
	}
	p.state = Online
	p.entity = e
	if p.dc.IsDirty() {
		_ = p.dc.Flush(loadCtx)
	}
	p.flushStop = p.startTicker(ctx, p.dc.FlushEvery(), flushTick{})
	if p.deps.Publisher != nil {
		p.frameStop = p.startTicker(ctx, p.deps.FrameInterval, frameTick{})
	}
	p.log.Info("world online",
		zap.Int("width", e.X()),
		zap.Int("height", e.Y()),
		zap.Strings("teams", e.Teams()),
	)
}

func (p *WorldActor) shutdown() {
	p.stopLoops()
	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := p.dc.Close(closeCtx); err != nil {
		p.log.Error("world dc close failed", zap.Error(err))
		return
	}
	p.log.Info("world closed", zap.Uint64("saved_version", p.dc.SavedVersion()))
}

func (p *WorldActor) unavailable() error {
	err := errx.ErrUnavailable.WithMsgf("world %d is %s", p.worldID, p.state)
	if p.loadErr != nil {
		return err.WithCause(p.loadErr)
	}
	return err
}

// currentFrame 带上最近一次推送的序号，不推进序号。
func (p *WorldActor) currentFrame() messages.WHFrame {
	return p.service.Frame(p.entity, p.frameSeq)
}

// publishFrame 是唯一推进 frameSeq 的地方，订阅者看到的序号连续。
func (p *WorldActor) publishFrame() {
	pub := p.deps.Publisher
	if p.state != Online || pub == nil || !pub.Wants(p.worldID) {
		return
	}
	p.frameSeq++
	pub.PublishFrame(p.worldID, p.service.Frame(p.entity, p.frameSeq))
}

func (p *WorldActor) WorldID() WorldID {
	return p.worldID
}

func (p *WorldActor) Entity() *entity.World {
	return p.entity
}

func (p *WorldActor) DC() *dc.WorldDC {
	return p.dc
}

// startTicker 在独立 goroutine 里定时给自己发 msg；every<=0 时不启动。
func (p *WorldActor) startTicker(ctx actor.Context, every time.Duration, msg any) chan struct{} {
	if every <= 0 {
		return nil
	}
	stop := make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				root.Send(self, msg)
			case <-stop:
				return
			}
		}
	}()
	return stop
}

func (p *WorldActor) stopLoops() {
	if p.flushStop != nil {
		close(p.flushStop)
		p.flushStop = nil
	}
	if p.frameStop != nil {
		close(p.frameStop)
		p.frameStop = nil
	}
}
