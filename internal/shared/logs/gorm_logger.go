package logs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	glogger "gorm.io/gorm/logger"

	"zappy/modules/kit/logx"
)

// GormLogger 把 GORM 的日志转给 logx.Logger，ctx 里的 trace 会一并带上。
type GormLogger struct {
	log   logx.Logger
	level glogger.LogLevel
	slow  time.Duration
}

func NewGormLogger(l logx.Logger, level glogger.LogLevel, slow time.Duration) glogger.Interface {
	if l == nil {
		l = logx.Nop()
	}
	return &GormLogger{log: l.With(zap.String("component", "gorm")), level: level, slow: slow}
}

func (g *GormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	next := *g
	next.level = level
	return &next
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= glogger.Info {
		g.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= glogger.Warn {
		g.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= glogger.Error {
		g.log.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace 出错记 ERROR（记录不存在除外），慢查询记 WARN，其余只在 Info 级别下以 DEBUG 输出。
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= glogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	l := g.log.WithContext(ctx)
	fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql)}

	switch {
	case err != nil && !errors.Is(err, glogger.ErrRecordNotFound):
		l.Error("sql failed", append(fields, zap.Error(err))...)
	case g.slow > 0 && elapsed > g.slow:
		l.Warn("slow sql", fields...)
	case g.level >= glogger.Info:
		l.Debug("sql", fields...)
	}
}
