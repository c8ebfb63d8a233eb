package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HandleLoggingParams builds the node's logger from the application
// config, honoring a debug override from the command line. If LogPath
// is set it also writes to that file, creating its parent directory
// first.
func HandleLoggingParams(debug bool, cfg ApplicationConfiguration) (*zap.Logger, *zap.AtomicLevel, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, nil, fmt.Errorf("config: log level: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.Encoding = "console"
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Sampling = nil

	atom := zap.NewAtomicLevelAt(level)
	cc.Level = atom

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("config: creating log directory: %w", err)
		}
		cc.OutputPaths = append(cc.OutputPaths, cfg.LogPath)
	}

	logger, err := cc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("config: building logger: %w", err)
	}
	return logger, &atom, nil
}
