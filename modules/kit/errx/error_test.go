package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is_只按code比较语义(t *testing.T) {
	e1 := NewBiz("WORLD_X", "x").WithData("team", "a").WithCause(errors.New("cause1"))
	e2 := NewBiz("WORLD_X", "x2").WithData("team", "b")
	if !errors.Is(e1, e2) {
		t.Fatalf("期望 errors.Is(e1, e2)==true（只按 code 判断语义），e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, NewBiz("WORLD_Y", "x")) {
		t.Fatalf("期望不同 code 不匹配")
	}
}

func TestError_WithMsg_不污染哨兵(t *testing.T) {
	base := NewBiz("WORLD_TEAM_EXISTS", "team already exists")
	err := base.WithMsgf("team '%s' already exists", "red")
	if base.Msg() != "team already exists" {
		t.Fatalf("期望哨兵 msg 不变，got=%q", base.Msg())
	}
	if got := err.Error(); got != "WORLD_TEAM_EXISTS: team 'red' already exists" {
		t.Fatalf("unexpected error text: %q", got)
	}
	if !errors.Is(fmt.Errorf("wrap: %w", err), base) {
		t.Fatalf("期望包装后仍能按 code 匹配")
	}
}

func TestError_业务错误不捕获栈_但保留cause链(t *testing.T) {
	cause := errors.New("store down")
	err := NewBiz("WORLD_TEAM_IS_FULL", "team is full").WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("期望业务错误不捕获栈，got=%v", got)
	}
	if !err.IsBiz() {
		t.Fatalf("期望 IsBiz()==true")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("期望 cause 链不丢，err=%v", err)
	}
}

func TestError_系统错误捕获一次栈_且不重复捕获(t *testing.T) {
	cause := errors.New("io timeout")
	sys := NewSys("SYS_STORE_UNAVAILABLE", "store unavailable").WithCause(cause)
	if got := sys.Stack(); len(got) == 0 {
		t.Fatalf("期望系统错误捕获栈，got=%v", got)
	}

	sys2 := NewSys("SYS_WORLD_FLUSH", "flush failed").WithCause(sys)
	if got := sys2.Stack(); got != nil {
		t.Fatalf("期望上层系统错误不重复捕获栈，got=%v", got)
	}
}

func TestError_Data_防止外部map污染(t *testing.T) {
	m := map[string]any{"k": "v"}
	err := NewBiz("WORLD_X", "").WithDataMap(m)
	m["k"] = "mutated"
	if got := err.Data()["k"]; got != "v" {
		t.Fatalf("期望构造时复制 data；got=%v", got)
	}
}

func TestAs_沿错误链取出(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewBiz("WORLD_X", "x"))
	e, ok := As(err)
	if !ok || e.Code() != "WORLD_X" {
		t.Fatalf("期望取出 WORLD_X, got=%v ok=%v", e, ok)
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("期望普通错误取不出 *Error")
	}
}
