package errx

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
)

// Code 是对外稳定的错误码。
type Code string

// Error 携带 code、描述、上下文数据与 cause 链。
// 派生方法都返回新对象，哨兵错误可以安全地全局共享。
// 系统类错误在首次挂 cause 时捕获一次调用栈。
type Error struct {
	code  Code
	msg   string
	data  map[string]any
	cause error
	stack []uintptr
	biz   bool
}

// NewBiz 定义一个调用方可纠正的业务拒绝。
func NewBiz(code Code, msg string) *Error {
	return &Error{code: code, msg: msg, biz: true}
}

// NewSys 定义一个技术类错误，需要告警和排障。
func NewSys(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.code)
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is 只比较 code。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && e.code == t.code
}

func (e *Error) Code() Code {
	if e == nil {
		return ""
	}
	return e.code
}

func (e *Error) CodeText() string { return string(e.Code()) }

func (e *Error) Msg() string {
	if e == nil {
		return ""
	}
	return e.msg
}

func (e *Error) IsBiz() bool { return e != nil && e.biz }

// Data 返回拷贝。
func (e *Error) Data() map[string]any {
	if e == nil || len(e.data) == 0 {
		return nil
	}
	return maps.Clone(e.data)
}

func (e *Error) Stack() []uintptr {
	if e == nil {
		return nil
	}
	return slices.Clone(e.stack)
}

func (e *Error) derive() *Error {
	next := *e
	next.data = maps.Clone(e.data)
	next.stack = slices.Clone(e.stack)
	return &next
}

func (e *Error) WithMsg(msg string) *Error {
	next := e.derive()
	next.msg = msg
	return next
}

func (e *Error) WithMsgf(format string, args ...any) *Error {
	return e.WithMsg(fmt.Sprintf(format, args...))
}

func (e *Error) WithData(key string, value any) *Error {
	return e.WithDataMap(map[string]any{key: value})
}

func (e *Error) WithDataMap(data map[string]any) *Error {
	next := e.derive()
	if len(data) == 0 {
		return next
	}
	if next.data == nil {
		next.data = make(map[string]any, len(data))
	}
	maps.Copy(next.data, data)
	return next
}

// WithCause 挂上原始错误；链上已有栈时不再重复捕获。
func (e *Error) WithCause(cause error) *Error {
	next := e.derive()
	next.cause = cause
	if !next.biz && cause != nil && len(next.stack) == 0 && !hasStack(cause) {
		next.stack = callers(3)
	}
	return next
}

// As 沿错误链取出第一个 *Error。
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

func callers(skip int) []uintptr {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	return pcs[:n]
}

func hasStack(err error) bool {
	for i := 0; i < 32 && err != nil; i++ {
		if e, ok := err.(*Error); ok && len(e.stack) > 0 {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
