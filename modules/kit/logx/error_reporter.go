package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"zappy/modules/kit/errx"
)

const (
	maxCauseDepth = 20
	maxStackDepth = 32
)

// ErrorLog 是一条错误日志里可读的部分。
type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

// BuildErrorLog 取最外层 errx.Error 的语义，栈取链上第一个捕获过栈的 errx.Error。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	if e, ok := errx.As(err); ok {
		out.Code = e.CodeText()
		out.Msg = e.Msg()
		if d := e.Data(); len(d) > 0 {
			out.Data = d
		}
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		var e *errx.Error
		if !errors.As(cur, &e) {
			break
		}
		if pcs := e.Stack(); len(pcs) > 0 {
			out.Origin, out.Stack = formatStack(pcs)
			break
		}
		cur = e
	}
	out.CauseChain = causeChain(err)
	return out
}

func causeChain(err error) []string {
	var out []string
	cur := errors.Unwrap(err)
	for i := 0; i < maxCauseDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}
	return out
}

func formatStack(pcs []uintptr) (origin, stack string) {
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, 8)
	for range maxStackDepth {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	return lines[0], strings.Join(lines, "\n")
}
