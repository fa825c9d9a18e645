package logs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	glogger "gorm.io/gorm/logger"

	"zappy/modules/kit/logx"
	"zappy/modules/kit/tracex"
)

func TestGormLogger_Trace分级(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := NewGormLogger(logx.NewZapLogger(zap.New(core)), glogger.Warn, 10*time.Millisecond)
	ctx := tracex.WithTraceID(context.Background(), "t-1")
	sql := func() (string, int64) { return "SELECT 1", 1 }

	g.Trace(ctx, time.Now(), sql, nil)
	g.Trace(ctx, time.Now(), sql, glogger.ErrRecordNotFound)
	g.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	g.Trace(ctx, time.Now(), sql, errors.New("deadlock"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "slow sql", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "sql failed", entries[1].Message)
	assert.Equal(t, "t-1", entries[1].ContextMap()["trace_id"])
	assert.Equal(t, "gorm", entries[1].ContextMap()["component"])
}

func TestGormLogger_Silent不输出(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := NewGormLogger(logx.NewZapLogger(zap.New(core)), glogger.Warn, 0).LogMode(glogger.Silent)
	g.Trace(context.Background(), time.Now(), func() (string, int64) { return "", 0 }, errors.New("x"))
	assert.Empty(t, logs.All())
}
