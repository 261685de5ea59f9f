package infra

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// EnvLogLevel overrides the default Info level.
	EnvLogLevel = "STEAMSHIM_LOG_LEVEL"

	logFileName      = "steamshim.log"
	errorLogFileName = "steamshim.error.log"
)

// NewLogger builds a JSON file logger writing next to the shim library.
// Falls back to stderr if the files cannot be opened.
func NewLogger(dir string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{filepath.Join(dir, logFileName)}
	config.ErrorOutputPaths = []string{filepath.Join(dir, errorLogFileName)}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

// NewConsoleLogger builds the human-readable logger used by the CLI.
func NewConsoleLogger(verbose bool) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func parseLevel(raw string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}
