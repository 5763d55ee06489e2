// Package logger is a thin structured-logging facade over log/slog shared
// by every component of the standings service. Components take a Logger,
// tag it with Named, and emit leveled records with typed fields.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Field is a structured log attribute.
type Field = slog.Attr

// Field constructors.
func String(key, val string) Field          { return slog.String(key, val) }
func Int(key string, val int) Field         { return slog.Int(key, val) }
func Float64(key string, val float64) Field { return slog.Float64(key, val) }
func Any(key string, val interface{}) Field { return slog.Any(key, val) }
func Error(err error) Field                 { return slog.Any("error", err) }

// Logger is the leveled, component-scoped logging interface.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// Named returns a child logger tagged with a component name; nested
	// names join with dots.
	Named(name string) Logger
}

// componentLogger tags every record with the component that emitted it.
type componentLogger struct {
	out  *slog.Logger // tagged with the component name
	base *slog.Logger // untagged root, for deriving children
	name string
}

func (l *componentLogger) Named(name string) Logger {
	child := name
	if l.name != "" {
		child = l.name + "." + name
	}
	return &componentLogger{
		out:  l.base.With(slog.String("component", child)),
		base: l.base,
		name: child,
	}
}

func (l *componentLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.out.LogAttrs(ctx, slog.LevelDebug, msg, fields...)
}

func (l *componentLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.out.LogAttrs(ctx, slog.LevelInfo, msg, fields...)
}

func (l *componentLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.out.LogAttrs(ctx, slog.LevelWarn, msg, fields...)
}

func (l *componentLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.out.LogAttrs(ctx, slog.LevelError, msg, fields...)
}

var (
	global   *componentLogger
	logLevel slog.LevelVar
)

// Init installs the process-wide logger writing text records to stdout at
// info level. SetLevelString adjusts the level afterwards.
func Init() error {
	logLevel.Set(slog.LevelInfo)
	root := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))
	global = &componentLogger{out: root, base: root}
	return nil
}

// Get returns the process-wide logger. Init must run first; components
// never log before the entrypoint has configured where records go.
func Get() Logger {
	if global == nil {
		panic("logger.Init must run before logger.Get")
	}
	return global
}

// Named returns a component-scoped child of the process-wide logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync exists for symmetry with buffered backends; slog writes through.
func Sync() error {
	return nil
}

// SetLevelString sets the minimum level from its configuration name.
// Accepts debug, info, warn/warning, and error; empty means info.
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "", "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
