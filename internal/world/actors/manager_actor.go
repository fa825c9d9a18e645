package actors

import (
	"github.com/asynkron/protoactor-go/actor"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/world/entity"
)

type WorldID = entity.WorldID

// ManagerActor 按 WorldID 懒创建 WorldActor 并转发请求；停止时子 actor 随之停止并落库。
type ManagerActor struct {
	deps        Deps
	worldActors map[WorldID]*actor.PID
}

func NewManagerActor(deps Deps) *ManagerActor {
	return &ManagerActor{
		worldActors: make(map[WorldID]*actor.PID),
		deps:        deps,
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Terminated:
		for id, pid := range m.worldActors {
			if pid.Equal(msg.Who) {
				delete(m.worldActors, id)
			}
		}
	case messages.WorldMessage:
		id := WorldID(msg.WorldID())
		if id == 0 {
			id = m.deps.defaultWorldID()
		}
		ctx.Forward(m.getOrSpawn(ctx, id))
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, worldID WorldID) *actor.PID {
	if pid, ok := m.worldActors[worldID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewWorldActor(worldID, m.deps)
	})
	pid := ctx.Spawn(props)
	ctx.Watch(pid)
	m.worldActors[worldID] = pid
	return pid
}
