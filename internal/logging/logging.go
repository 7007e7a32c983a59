// Package logging builds the zap logger: one rotating JSON file per level
// plus an optional coloured console core.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rcliao/object-cueing/internal/config"
)

var fileLevels = []zapcore.Level{
	zapcore.DebugLevel,
	zapcore.InfoLevel,
	zapcore.WarnLevel,
	zapcore.ErrorLevel,
}

// New builds a logger from cfg. Entries below cfg.Level are dropped.
// Console output goes to console when cfg.Console is set.
func New(cfg config.LoggingConfig, console io.Writer) (*zap.Logger, error) {
	minLevel, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core
	if cfg.Directory != "" {
		if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		for _, level := range fileLevels {
			if level < minLevel {
				continue
			}
			cores = append(cores, newFileCore(cfg, level, encoderConfig))
		}
	}
	if cfg.Console && console != nil {
		cores = append(cores, newConsoleCore(console, minLevel))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// newFileCore writes exactly one level to a rotating file named like
// 2026-10-18-info.log.
func newFileCore(cfg config.LoggingConfig, level zapcore.Level, encoderConfig zapcore.EncoderConfig) zapcore.Core {
	fileName := filepath.Join(cfg.Directory, fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), level.String()))

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})

	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l == level
	})

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, levelEnabler)
}

func newConsoleCore(w io.Writer, minLevel zapcore.Level) zapcore.Core {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.AddSync(w),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= minLevel }),
	)
}
