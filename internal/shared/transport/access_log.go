package transport

import (
	"context"
	"time"

	"go.uber.org/zap"

	"zappy/modules/kit/logx"
	"zappy/modules/kit/tracex"
)

// AccessLog 记录一次 HTTP 请求、ws 消息或 gRPC 调用的结果，结束时写一条访问日志。
type AccessLog struct {
	action  string
	start   time.Time
	code    BizCode
	codeSet bool
	reason  string
}

type accessLogKey struct{}

// Begin 在 parent 上挂 AccessLog，保留其取消信号与 trace_id。
func Begin(parent context.Context, action, span string) context.Context {
	if action == "" {
		action = "unknown"
	}
	al := &AccessLog{action: action, start: time.Now()}
	return context.WithValue(tracex.Ensure(parent, span), accessLogKey{}, al)
}

func FromContext(ctx context.Context) *AccessLog {
	if ctx == nil {
		return nil
	}
	al, _ := ctx.Value(accessLogKey{}).(*AccessLog)
	return al
}

// SetBizCode 由业务层写入响应码；没写过时 Finish 使用调用方给的兜底值。
func SetBizCode(ctx context.Context, code BizCode) {
	if al := FromContext(ctx); al != nil {
		al.code, al.codeSet = code, true
	}
}

func SetErrorReason(ctx context.Context, reason string) {
	if al := FromContext(ctx); al != nil && reason != "" {
		al.reason = reason
	}
}

// Finish 写访问日志。
func Finish(ctx context.Context, log logx.Logger, fallback BizCode) {
	al := FromContext(ctx)
	if al == nil || log == nil {
		return
	}
	code := fallback
	if al.codeSet {
		code = al.code
	}
	fields := []zap.Field{zap.Duration("latency", time.Since(al.start))}
	if code == OK {
		fields = append(fields, zap.String("result", "success"))
	} else {
		fields = append(fields, zap.String("result", "failure"))
		if al.reason != "" {
			fields = append(fields, zap.String("error_reason", al.reason))
		}
	}
	logx.ReportAccess(ctx, log, al.action, int(code), fields...)
}
