// Package logging 构建服务使用的 zap 日志器
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/freedkr/orgchart/internal/config"
)

// New 根据日志配置创建日志器
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.Encoding != "" {
		zcfg.Encoding = cfg.Encoding
	}
	if zcfg.Encoding == "console" {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return zcfg.Build()
}

// ForService 创建带服务名字段的日志器，失败时退回到 Nop
func ForService(cfg *config.Config, service config.ServiceType) *zap.Logger {
	logger, err := New(cfg.Log)
	if err != nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("service", string(service)))
}
