// Package tracex 在 context 里携带 trace_id 与 span，供日志和跨进程透传使用。
package tracex

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type key uint8

const (
	traceKey key = iota
	spanKey
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) { return get(ctx, traceKey) }

func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanKey, spanID)
}

func SpanIDFrom(ctx context.Context) (string, bool) { return get(ctx, spanKey) }

func get(ctx context.Context, k key) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, _ := ctx.Value(k).(string)
	return s, s != ""
}

// NewTraceID 返回 32 位 hex；随机源失败时返回空串。
func NewTraceID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// Ensure 保留已有 trace_id，没有时生成一个；span 非空时覆盖当前 span。
func Ensure(ctx context.Context, span string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := TraceIDFrom(ctx); !ok {
		if tid := NewTraceID(); tid != "" {
			ctx = WithTraceID(ctx, tid)
		}
	}
	if span != "" {
		ctx = WithSpanID(ctx, span)
	}
	return ctx
}
