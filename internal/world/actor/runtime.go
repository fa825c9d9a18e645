package actor

import (
	"context"
	"errors"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/world/actors"
	"zappy/modules/kit/errx"
)

const (
	defaultAskTimeout = 3 * time.Second
	managerName       = "world-manager"
)

// Runtime 是 HTTP/ws/gRPC 访问世界的唯一入口：把调用转成消息发给 actor，并按 ctx 截止时间等待回复。
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration
	worldID int
}

func NewRuntime(deps actors.Deps, askTimeout time.Duration) (*Runtime, error) {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(deps)
	})
	manager, err := root.SpawnNamed(managerProps, managerName)
	if err != nil {
		system.Shutdown()
		return nil, err
	}

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
		worldID: deps.Rules.WorldID,
	}, nil
}

// Start 探活默认世界，首次请求会触发加载或生成。
func (r *Runtime) Start(ctx context.Context) (messages.WHPing, error) {
	return r.Ping(ctx)
}

// Shutdown 停止 manager 并等待子 actor 落库完成，再关闭 actor 系统。
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil || r.root == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		done <- r.root.StopFuture(r.manager).Wait()
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	r.system.Shutdown()
	return err
}

func (r *Runtime) Ping(ctx context.Context) (messages.WHPing, error) {
	return ask[messages.WHPing](ctx, r, messages.HWPing{WorldBaseMessage: r.base()})
}

func (r *Runtime) Map(ctx context.Context) (messages.WHWorldMap, error) {
	return ask[messages.WHWorldMap](ctx, r, messages.HWWorldMap{WorldBaseMessage: r.base()})
}

func (r *Runtime) Players(ctx context.Context) (messages.WHWorldPlayers, error) {
	return ask[messages.WHWorldPlayers](ctx, r, messages.HWWorldPlayers{WorldBaseMessage: r.base()})
}

func (r *Runtime) Stats(ctx context.Context) (messages.WHWorldStats, error) {
	return ask[messages.WHWorldStats](ctx, r, messages.HWWorldStats{WorldBaseMessage: r.base()})
}

func (r *Runtime) Frame(ctx context.Context) (messages.WHFrame, error) {
	return ask[messages.WHFrame](ctx, r, messages.HWFrame{WorldBaseMessage: r.base()})
}

func (r *Runtime) Teams(ctx context.Context) (messages.WHTeams, error) {
	return ask[messages.WHTeams](ctx, r, messages.HWTeams{WorldBaseMessage: r.base()})
}

func (r *Runtime) AddTeam(ctx context.Context, name string) (messages.WHAddTeam, error) {
	return ask[messages.WHAddTeam](ctx, r, messages.HWAddTeam{WorldBaseMessage: r.base(), Name: name})
}

func (r *Runtime) RemoveTeam(ctx context.Context, name string) (messages.WHRemoveTeam, error) {
	return ask[messages.WHRemoveTeam](ctx, r, messages.HWRemoveTeam{WorldBaseMessage: r.base(), Name: name})
}

func (r *Runtime) AddPlayer(ctx context.Context, team string) (messages.WHAddPlayer, error) {
	return ask[messages.WHAddPlayer](ctx, r, messages.HWAddPlayer{WorldBaseMessage: r.base(), Team: team})
}

func (r *Runtime) RemovePlayer(ctx context.Context, team string, id int) (messages.WHRemovePlayer, error) {
	return ask[messages.WHRemovePlayer](ctx, r, messages.HWRemovePlayer{WorldBaseMessage: r.base(), Team: team, ID: id})
}

func (r *Runtime) GetPlayer(ctx context.Context, team string, id int) (messages.WHGetPlayer, error) {
	return ask[messages.WHGetPlayer](ctx, r, messages.HWGetPlayer{WorldBaseMessage: r.base(), Team: team, ID: id})
}

func (r *Runtime) MovePlayer(ctx context.Context, team string, id, x, y int) (messages.WHMovePlayer, error) {
	return ask[messages.WHMovePlayer](ctx, r, messages.HWMovePlayer{
		WorldBaseMessage: r.base(), Team: team, ID: id, X: x, Y: y,
	})
}

func (r *Runtime) PickUp(ctx context.Context, team string, id int) (messages.WHPickUp, error) {
	return ask[messages.WHPickUp](ctx, r, messages.HWPickUp{WorldBaseMessage: r.base(), Team: team, ID: id})
}

func (r *Runtime) base() messages.WorldBaseMessage {
	return messages.WorldBaseMessage{WorldId: r.worldID}
}

// ask 发送请求并把回复体断言成 T。actor 超时映射为 errx.ErrTimeout。
func ask[T any](ctx context.Context, r *Runtime, msg messages.WorldMessage) (T, error) {
	var zero T
	res, err := r.request(ctx, msg)
	if err != nil {
		return zero, err
	}
	reply, ok := res.(messages.WorldReply)
	if !ok {
		return zero, errx.ErrInternal.WithMsgf("unexpected actor reply %T", res)
	}
	if reply.Err != nil {
		return zero, reply.Err
	}
	body, ok := reply.Body.(T)
	if !ok {
		return zero, errx.ErrInternal.WithMsgf("unexpected reply body %T", reply.Body)
	}
	return body, nil
}

func (r *Runtime) request(ctx context.Context, msg any) (any, error) {
	if r == nil || r.root == nil || r.manager == nil {
		return nil, errx.ErrUnavailable.WithMsg("actor runtime not initialized")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, errx.ErrTimeout.WithCause(err)
		}
	}

	future := r.root.RequestFuture(r.manager, msg, r.timeoutFromContext(ctx))
	res, err := future.Result()
	if err != nil {
		if errors.Is(err, protoactor.ErrTimeout) {
			return nil, errx.ErrTimeout.WithMsg("world actor request timeout").WithCause(err)
		}
		return nil, errx.ErrUnavailable.WithMsg("world actor request failed").WithCause(err)
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}
