package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zappy/internal/shared/logs"
	"zappy/internal/shared/serverconfig"
	"zappy/modules/kit/logx"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	defaultSlowSQL = 200 * time.Millisecond
)

// Dialector 按 driver 选择 gorm 方言，driver 为空时默认 mysql。
func Dialector(cfg serverconfig.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverMySQL:
		charset := cfg.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		// username:password@protocol(address)/dbname?charset=utf8mb4&parseTime=True&loc=Local
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, charset)
		return mysql.Open(dsn), nil
	case DriverPostgres:
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslmode)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open 建连并设置连接池；SQL 日志走 l。
func Open(cfg serverconfig.DatabaseConfig, l logx.Logger) (*gorm.DB, error) {
	if l == nil {
		l = logx.Nop()
	}
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.ShowSQL {
		level = logger.Info
	}
	slow := cfg.SlowSQL
	if slow <= 0 {
		slow = defaultSlowSQL
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logs.NewGormLogger(l, level, slow),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}

	l.Info("open db success",
		zap.String("driver", dialector.Name()),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.DBName),
	)
	return db, nil
}
