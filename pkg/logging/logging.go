// Package logging wraps zap with context-aware helpers so that a
// submission's trace and submission IDs are attached to every log line
// without each call site having to do it by hand.
package logging

import (
	"context"
	"fmt"
	"os"
	"time"

	"judgecore/pkg/ctxkeys"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *Logger

// Config controls how the process-wide logger is built.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // file path or "stdout"
	Service    string
	Env        string
}

// Logger wraps a zap.Logger.
type Logger struct {
	zap *zap.Logger
}

// Init builds and installs the global logger.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	global = l
	return nil
}

// New builds a standalone Logger without installing it globally.
func New(cfg Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     rfc3339TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	writer := zapcore.AddSync(os.Stdout)
	if cfg.OutputPath != "" && cfg.OutputPath != "stdout" {
		f, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writer = zapcore.AddSync(f)
	}

	core := zapcore.NewCore(encoder, writer, level)

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)}
	var statics []zap.Field
	if cfg.Service != "" {
		statics = append(statics, zap.String("service", cfg.Service))
	}
	if cfg.Env != "" {
		statics = append(statics, zap.String("env", cfg.Env))
	}
	if len(statics) > 0 {
		opts = append(opts, zap.Fields(statics...))
	}

	return &Logger{zap: zap.New(core, opts...)}, nil
}

func rfc3339TimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(time.RFC3339))
}

// Sync flushes the underlying core.
func (l *Logger) Sync() error { return l.zap.Sync() }

// WithContext returns a zap.Logger annotated with any trace/request/
// submission identifiers found in ctx.
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	return l.zap.With(fieldsFromContext(ctx)...)
}

func fieldsFromContext(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if v := ctx.Value(ctxkeys.TraceID); v != nil {
		fields = append(fields, zap.String("trace_id", fmt.Sprint(v)))
	}
	if v := ctx.Value(ctxkeys.RequestID); v != nil {
		fields = append(fields, zap.String("request_id", fmt.Sprint(v)))
	}
	if v := ctx.Value(ctxkeys.SubmissionID); v != nil {
		fields = append(fields, zap.String("submission_id", fmt.Sprint(v)))
	}
	return fields
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	if global == nil {
		return
	}
	global.WithContext(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	if global == nil {
		return
	}
	global.WithContext(ctx).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	if global == nil {
		return
	}
	global.WithContext(ctx).Error(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	if global == nil {
		return
	}
	global.WithContext(ctx).Debug(msg, fields...)
}

// Sync flushes the global logger, if installed.
func Sync() error {
	if global == nil {
		return nil
	}
	return global.Sync()
}
