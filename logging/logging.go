// Package logging provides the structured logger used across horloge.
// The logger is a thin facade over zap so that packages depend on a small
// interface rather than on a concrete logging backend.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields holds structured logging context
type Fields map[string]any

// Logger is the logging interface consumed by all components
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

type zapLogger struct {
	base *zap.SugaredLogger
}

// NewDefaultLogger creates a logger at info level writing to stderr
func NewDefaultLogger() Logger {
	return NewLogger("info")
}

// NewLogger creates a logger with the given level (debug, info, warn, error).
// Unknown levels fall back to info.
func NewLogger(level string) Logger {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		// zap's production config only fails on bad output paths;
		// stderr is always openable, but keep a safe fallback
		logger = zap.NewNop()
	}

	return &zapLogger{base: logger.Sugar()}
}

// NewNopLogger creates a logger that discards everything. Intended for tests.
func NewNopLogger() Logger {
	return &zapLogger{base: zap.NewNop().Sugar()}
}

// WithFields returns a package-level logger carrying the given context
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debugw(msg, flatten(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Infow(msg, flatten(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warnw(msg, flatten(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Fields) {
	l.base.Errorw(msg, flatten(fields)...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{base: l.base.With(flatten([]Fields{fields})...)}
}

// flatten converts Fields maps to zap's alternating key/value form
func flatten(fields []Fields) []any {
	var kv []any
	for _, f := range fields {
		for k, v := range f {
			kv = append(kv, k, v)
		}
	}
	return kv
}
