package logx

import (
	"context"

	"zappy/modules/kit/errx"

	"go.uber.org/zap"
)

// ReportAccess 记录一条访问日志，级别按 biz_code 区分：0 为 INFO，500 及以上为 ERROR，其余 WARN。
func ReportAccess(ctx context.Context, l Logger, action string, bizCode int, fields ...zap.Field) {
	if l == nil {
		return
	}
	fields = append([]zap.Field{
		zap.String("log_type", "access"),
		zap.String("action", action),
		zap.Int("biz_code", bizCode),
	}, fields...)

	out := l.WithContext(ctx)
	switch {
	case bizCode == 0:
		out.Info("access", fields...)
	case bizCode >= 500:
		out.Error("access", fields...)
	default:
		out.Warn("access", fields...)
	}
}

// ReportError 每个请求或消息只调一次。
// 业务拒绝记 INFO 且不带栈；其余错误记 ERROR，附 code、data、cause 链和发生处的栈。
func ReportError(ctx context.Context, l Logger, action string, err error, fields ...zap.Field) {
	if err == nil || l == nil {
		return
	}
	if e, ok := errx.As(err); ok && e.IsBiz() {
		reportBiz(ctx, l, action, e, fields)
		return
	}
	reportSys(ctx, l, action, err, fields)
}

func reportBiz(ctx context.Context, l Logger, action string, e *errx.Error, fields []zap.Field) {
	fields = append([]zap.Field{
		zap.String("err_type", "biz"),
		zap.String("action", action),
		zap.String("error_code", e.CodeText()),
		zap.String("biz_message", e.Msg()),
	}, fields...)
	if d := e.Data(); d != nil {
		fields = append(fields, zap.Any("error_data", d))
	}
	l.WithContext(ctx).Info(action+", reason:"+e.CodeText()+", msg:"+e.Msg(), fields...)
}

func reportSys(ctx context.Context, l Logger, action string, err error, fields []zap.Field) {
	meta := BuildErrorLog(err)
	base := []zap.Field{
		zap.String("err_type", "sys"),
		zap.String("action", action),
	}
	if meta.Code != "" {
		base = append(base, zap.String("error_code", meta.Code))
	}
	if meta.Data != nil {
		base = append(base, zap.Any("error_data", meta.Data))
	}
	if len(meta.CauseChain) > 0 {
		base = append(base, zap.Strings("cause_chain", meta.CauseChain))
	}
	if meta.Origin != "" {
		base = append(base, zap.String("origin_caller", meta.Origin), zap.String("stack_origin", meta.Stack))
	}
	l.WithContext(ctx).Error(action+", error:"+meta.Error, append(base, fields...)...)
}
