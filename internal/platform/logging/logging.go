package logging

import (
	"os"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New は構造化ロガーを生成します。logging.file が設定されている場合は
// lumberjack によるローテーション付きファイル出力、未設定なら標準出力です。
func New(cfg config.LoggingConfig, service string) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	var sink zapcore.WriteSyncer
	if cfg.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 30),
			Compress:   true,
		})
	} else {
		sink = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, sink, zap.InfoLevel)
	return zap.New(core, zap.AddCaller()).With(zap.String("service", service))
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
