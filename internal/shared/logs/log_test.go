package logs

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"zappy/internal/shared/serverconfig"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"WARN":   zapcore.WarnLevel,
		" error": zapcore.ErrorLevel,
		"":       zapcore.InfoLevel,
		"bogus":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestSetLevel_运行期生效(t *testing.T) {
	if err := Init("test", serverconfig.LogConfig{Level: "info"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Logger().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("info 级别不应输出 debug")
	}
	SetLevel("debug")
	if !Logger().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("SetLevel(debug) 后应输出 debug")
	}
	SetLevel("info")
}
