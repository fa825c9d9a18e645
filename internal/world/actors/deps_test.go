package actors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"zappy/internal/shared/gameconfig/rules"
	"zappy/modules/kit/logx"
)

func TestFactory_预置队伍失败时记日志(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := Deps{
		Rules: rules.Rules{Width: 3, Height: 3, TeamSize: 2, Teams: []string{"red", "red", "blue"}},
		Log:   logx.NewZapLogger(zap.New(core)),
	}

	w := d.factory(1)(WorldID(4))
	assert.Equal(t, []string{"blue", "red"}, w.Teams())

	entries := logs.FilterMessage("preset team not added").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "red", entries[0].ContextMap()["team"])
}
