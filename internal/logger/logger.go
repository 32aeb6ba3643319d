// Package logger builds the zap loggers used by the binaries and holds the
// helpers that make user-supplied text safe to log.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavor
type Options struct {
	Debug bool
	// Console switches from JSON to the human-readable encoder
	Console bool
	// Service is attached to every entry when set
	Service string
}

// New builds a logger from opts
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if opts.Console {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig = zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
		config.DisableStacktrace = false
	}

	if opts.Debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := config.Build()
	if err != nil {
		return nil, err
	}
	if opts.Service != "" {
		l = l.With(zap.String("service", opts.Service))
	}
	return l, nil
}

// NewProductionLogger creates the JSON logger used by the server and worker
func NewProductionLogger(debugMode bool) (*zap.Logger, error) {
	return New(Options{Debug: debugMode})
}

// NewDevelopmentLogger creates a console logger for the CLI
func NewDevelopmentLogger(debugMode bool) (*zap.Logger, error) {
	return New(Options{Debug: debugMode, Console: true})
}

// Sync flushes buffered entries. Safe to call with a nil logger.
func Sync(l *zap.Logger) error {
	if l == nil {
		return nil
	}
	return l.Sync()
}
