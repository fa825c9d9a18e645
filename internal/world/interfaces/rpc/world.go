package rpc

import (
	"context"
	"encoding/json"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/world/interfaces/errmap"
	"zappy/modules/kit/errx"
	"zappy/modules/kit/logx"
	"zappy/modules/kit/tracex"
)

// WorldAPI 是 gRPC 服务需要的世界操作。
type WorldAPI interface {
	Frame(ctx context.Context) (messages.WHFrame, error)
	Stats(ctx context.Context) (messages.WHWorldStats, error)
}

type World struct {
	api WorldAPI
	log logx.Logger
}

func NewWorld(api WorldAPI, log logx.Logger) *World {
	if log == nil {
		log = logx.Nop()
	}
	return &World{api: api, log: log}
}

func (w *World) Snapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx = tracex.WithSpanID(ctx, "world")

	frame, err := w.api.Frame(ctx)
	if err != nil {
		return nil, w.fail(ctx, "world snapshot", err)
	}
	return w.toStruct(ctx, "world snapshot", frame)
}

func (w *World) Stats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx = tracex.WithSpanID(ctx, "world")

	st, err := w.api.Stats(ctx)
	if err != nil {
		return nil, w.fail(ctx, "world stats", err)
	}
	return w.toStruct(ctx, "world stats", st.Stats)
}

// toStruct 经 json 转成 Struct，字段名与 HTTP/ws 的 json 保持一致。
func (w *World) toStruct(ctx context.Context, action string, v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, w.fail(ctx, action, errx.ErrInternal.WithCause(err))
	}
	var m map[string]any
	if err = json.Unmarshal(raw, &m); err != nil {
		return nil, w.fail(ctx, action, errx.ErrInternal.WithCause(err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, w.fail(ctx, action, errx.ErrInternal.WithCause(err))
	}
	return out, nil
}

func (w *World) fail(ctx context.Context, action string, err error) error {
	if errmap.IsSystem(err) {
		logx.ReportError(ctx, w.log, action, err)
	}
	return errmap.ToRPCError(err)
}

var _ WorldServer = (*World)(nil)
