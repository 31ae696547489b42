// Package logging builds the bot's zap logger.
package logging

import (
	"os"

	"panel-tickets/types"

	"github.com/infinitybotlist/eureka/snippets"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// parseLevel falls back to info for empty or unknown levels
func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)

	if err != nil {
		return zapcore.InfoLevel
	}

	return l
}

// New returns the eureka console logger at the default info level. Any other
// level, or a log file, gets a console logger at that level, teed with a
// rotating JSON file when one is configured.
func New(cfg types.ConfigLogging) *zap.Logger {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	if cfg.File == "" && level.Level() == zapcore.InfoLevel {
		return snippets.CreateZap()
	}

	fileEncoder := zap.NewProductionEncoderConfig()
	fileEncoder.TimeKey = "time"
	fileEncoder.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeLevel = zapcore.CapitalColorLevelEncoder

	console := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoder), zapcore.Lock(os.Stdout), level)

	if cfg.File == "" {
		return zap.New(console, zap.AddCaller())
	}

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	})

	core := zapcore.NewTee(
		console,
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), file, level),
	)

	return zap.New(core, zap.AddCaller())
}
