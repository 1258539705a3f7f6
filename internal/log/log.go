package log

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the global logger.
type Config struct {
	// Name is attached to every entry as the "logger" field.
	Name string `conf:"name" yaml:"name" json:"name"`
	// Level is one of debug, info, warn, error.
	Level string `conf:"level" yaml:"level" json:"level"`
	// Encoding is either "json" or "console".
	Encoding string `conf:"encoding" yaml:"encoding" json:"encoding"`
}

type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
	hooks []Hook
}

var (
	globalMu sync.RWMutex
	global   = NewLogger(Config{Name: "techstack", Level: "info", Encoding: "console"})
)

// NewLogger builds a logger from config. Unknown levels fall back to info.
func NewLogger(cfg Config) *Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}

	zapCfg := zap.Config{
		Level:            level,
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		logger = zap.NewNop()
	}

	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}

	return &Logger{
		zap:   logger,
		level: level,
		hooks: []Hook{HookFunc(requestFields)},
	}
}

// SetGlobalConfig replaces the global logger with one built from cfg.
func SetGlobalConfig(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()

	global = NewLogger(cfg)
}

// GetGlobalLogger returns the current global logger.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return global
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields []Field) {
	if !l.level.Enabled(level) {
		return
	}

	for _, hook := range l.hooks {
		fields = append(fields, hook.Apply(ctx, msg)...)
	}

	if ce := l.zap.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *Logger) DebugEnabled() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

// Package-level helpers targeting the global logger.

func Debug(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Error(ctx, msg, fields...)
}

func DebugEnabled() bool {
	return GetGlobalLogger().DebugEnabled()
}
