package config

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerName names every logger built by Prepare.
const LoggerName = "md2tex"

// Prepare returns the logger used by the program and a function closing its
// file sink. Console output is split: errors go to stderr, lower levels to
// stdout, filtered by Level. The file sink, when configured, always records
// debug output.
func (conf *LoggingConfig) Prepare(stdout, stderr io.Writer) (*zap.Logger, func() error, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	var consoleCoreHP, consoleCoreLP zapcore.Core
	switch conf.Level {
	case LevelNormal, "":
		consoleCoreLP = zapcore.NewCore(consoleEncoder, zapcore.AddSync(stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return zapcore.InfoLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleCoreHP = zapcore.NewCore(consoleEncoder, zapcore.AddSync(stderr), highPriority)
	case LevelDebug:
		consoleCoreLP = zapcore.NewCore(consoleEncoder, zapcore.AddSync(stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return zapcore.DebugLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleCoreHP = zapcore.NewCore(consoleEncoder, zapcore.AddSync(stderr), highPriority)
	default:
		consoleCoreLP = zapcore.NewNopCore()
		consoleCoreHP = zapcore.NewNopCore()
	}

	// File

	fileCore := zapcore.NewNopCore()
	closer := func() error { return nil }
	if conf.File != "" {
		f, err := os.OpenFile(conf.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) // #nosec G304 -- log path is user-provided
		if err != nil {
			return nil, nil, fmt.Errorf("unable to access log file (%s): %w", conf.File, err)
		}
		fileCore = zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(f), zap.NewAtomicLevelAt(zap.DebugLevel))
		closer = f.Close
	}

	logger := zap.New(zapcore.NewTee(consoleCoreHP, consoleCoreLP, fileCore))
	return logger.Named(LoggerName), closer, nil
}
