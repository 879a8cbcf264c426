// Package logging wraps log/slog behind the context-first Logger interface
// used across the engine.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is the minimum level a logger writes.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a configuration value such as "debug" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func (l LogLevel) slogLevel() slog.Level {
	return map[LogLevel]slog.Level{
		LevelDebug: slog.LevelDebug,
		LevelWarn:  slog.LevelWarn,
		LevelError: slog.LevelError,
	}[l] // LevelInfo is the zero slog.Level
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// OpaqueLogger implements Logger on top of a slog.Logger. Fields are key
// value pairs; a trailing key without a value and non-string keys are
// dropped.
type OpaqueLogger struct {
	logger    *slog.Logger
	component string
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level  LogLevel
	Format string // "json" or "text"
	Output io.Writer
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger
func NewLogger(config *LoggerConfig) *OpaqueLogger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.slogLevel()}
	var handler slog.Handler = slog.NewTextHandler(output, opts)
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	}
	return &OpaqueLogger{logger: slog.New(handler)}
}

func (l *OpaqueLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelDebug, nil, msg, fields)
}

func (l *OpaqueLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelInfo, nil, msg, fields)
}

func (l *OpaqueLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelWarn, err, msg, fields)
}

func (l *OpaqueLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelError, err, msg, fields)
}

// With returns a logger that adds fields to every record.
func (l *OpaqueLogger) With(fields ...interface{}) Logger {
	return &OpaqueLogger{logger: l.logger.With(pairs(fields)...), component: l.component}
}

// WithComponent returns a logger tagging records with component, replacing
// any component set before.
func (l *OpaqueLogger) WithComponent(component string) Logger {
	return &OpaqueLogger{logger: l.logger, component: component}
}

func (l *OpaqueLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields []interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	args := make([]interface{}, 0, len(fields)+4)
	if l.component != "" {
		args = append(args, "component", l.component)
	}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.logger.Log(ctx, level, msg, append(args, pairs(fields)...)...)
}

func pairs(fields []interface{}) []interface{} {
	out := make([]interface{}, 0, len(fields))
	for i := 0; i+1 < len(fields); i += 2 {
		if _, ok := fields[i].(string); ok {
			out = append(out, fields[i], fields[i+1])
		}
	}
	return out
}

// SanitizeForLog strips control characters from client supplied values
// such as request paths before they are logged.
func SanitizeForLog(data string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, data)
}

// NopLogger discards everything. It is the default for library types
// constructed without a logger.
type NopLogger struct{}

// NewNopLogger returns a Logger that discards all records.
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Debug(context.Context, string, ...interface{})        {}
func (NopLogger) Info(context.Context, string, ...interface{})         {}
func (NopLogger) Warn(context.Context, error, string, ...interface{})  {}
func (NopLogger) Error(context.Context, error, string, ...interface{}) {}
func (n NopLogger) With(...interface{}) Logger                         { return n }
func (n NopLogger) WithComponent(string) Logger                        { return n }

// PerfLogger times one operation.
type PerfLogger struct {
	Logger
	start time.Time
}

// StartOperation begins timing operation on logger.
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{Logger: logger.With("operation", operation), start: time.Now()}
}

// End logs the elapsed time at debug level and returns it.
func (p *PerfLogger) End(ctx context.Context) time.Duration {
	d := time.Since(p.start)
	p.Debug(ctx, "Operation completed", "duration", d)
	return d
}

// EndWithError logs err with the elapsed time.
func (p *PerfLogger) EndWithError(ctx context.Context, err error) time.Duration {
	d := time.Since(p.start)
	p.Error(ctx, err, "Operation failed", "duration", d)
	return d
}
