// Package log carries a zap logger in a context.Context.
//
// Code that converts files never holds a logger of its own; it receives a context and logs through
// the package-level functions here.  A context without a logger discards everything, so library
// callers that do not care about diagnostics pay nothing for them.
//
// The convention is to name children from the parent:
//
//	go convert(log.Child(ctx, "file", zap.String("path", p)))
package log

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log field.
type Field = zap.Field

type loggerKey struct{}

var nop = zap.NewNop()

// AddLogger returns a context that logs to l.
func AddLogger(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		l = nop
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

func extractLogger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return nop
	}
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return nop
}

// Logger returns the logger attached to ctx, or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	return extractLogger(ctx)
}

// Child returns a context whose logger is named after its parent plus name, and which adds fields
// to every line.  The name can be empty.
func Child(ctx context.Context, name string, fields ...Field) context.Context {
	l := extractLogger(ctx)
	if name != "" {
		l = l.Named(name)
	}
	if len(fields) > 0 {
		l = l.With(fields...)
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// Debug logs a message intended for people debugging the converter.
func Debug(ctx context.Context, msg string, fields ...Field) {
	extractLogger(ctx).WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info logs per-file progress.
func Info(ctx context.Context, msg string, fields ...Field) {
	extractLogger(ctx).WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Warn logs a condition that did not stop the work but deserves attention.
func Warn(ctx context.Context, msg string, fields ...Field) {
	extractLogger(ctx).WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Error logs a failure.  The caller is expected to carry on with other work.
func Error(ctx context.Context, msg string, fields ...Field) {
	extractLogger(ctx).WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Format selects the encoder of a logger built by New.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// New builds a logger writing to w at the given level.
func New(w io.Writer, level zapcore.Level, format Format) (*zap.Logger, error) {
	var enc zapcore.Encoder
	switch format {
	case FormatConsole, "":
		enc = zapcore.NewConsoleEncoder(cliEncoder)
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(jsonEncoder)
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(w)))), nil
}
