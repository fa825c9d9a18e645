package logx

import (
	"context"

	"zappy/modules/kit/tracex"

	"go.uber.org/zap"
)

// ZapLogger 用 zap 实现 Logger；nil 的 *zap.Logger 等价于 Nop。
type ZapLogger struct {
	*zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{Logger: l}
}

func (z *ZapLogger) With(fields ...zap.Field) Logger {
	if z == nil {
		return Nop()
	}
	return &ZapLogger{Logger: z.Logger.With(fields...)}
}

// WithContext 把 ctx 里的 trace_id 和 span_id 挂到后续每条日志上。
func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if z == nil {
		return Nop()
	}
	var fields []zap.Field
	if tid, ok := tracex.TraceIDFrom(ctx); ok {
		fields = append(fields, zap.String("trace_id", tid))
	}
	if sid, ok := tracex.SpanIDFrom(ctx); ok {
		fields = append(fields, zap.String("span_id", sid))
	}
	if len(fields) == 0 {
		return z
	}
	return &ZapLogger{Logger: z.Logger.With(fields...)}
}
