package cli

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// parseLogLevel maps a level name to a zap level. Unknown names fall back to
// info.
func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// createLogger builds the process logger. Logs go to stderr; stdout carries
// the result documents.
func createLogger(level, format string) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "message"

	encoding := "json"
	if strings.ToLower(format) == "console" {
		encoding = "console"
	}

	return zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLogLevel(level)),
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}.Build()
}
