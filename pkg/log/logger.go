// Package log provides the structured logging facade for nogu services.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", ...) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func levelFromZap(l zapcore.Level) Level {
	switch {
	case l <= zapcore.DebugLevel:
		return DebugLevel
	case l == zapcore.InfoLevel:
		return InfoLevel
	case l == zapcore.WarnLevel:
		return WarnLevel
	case l == zapcore.ErrorLevel:
		return ErrorLevel
	default:
		return FatalLevel
	}
}

// Field carries one unit of structured context attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// Str builds a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 builds an int64 field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Uint64 builds a uint64 field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Float64 builds a float64 field.
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Bool builds a bool field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Dur builds a duration field.
func Dur(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Any builds a field from an arbitrary value.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Err builds the conventional "error" field.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Component tags entries with the emitting component's name.
func Component(name string) Field { return Field{Key: "component", Value: name} }

// Logger defines the core logging interface for nogu components.
type Logger interface {
	// Leveled methods with structured context.
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// Printf-style variants.
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	// With returns a child logger carrying the given fields.
	With(fields ...Field) Logger

	// WithComponent tags logs with a component name.
	WithComponent(component string) Logger

	// WithError attaches an error field to the logger.
	WithError(err error) Logger

	// SetLevel sets the minimum log level.
	SetLevel(level Level)

	// GetLevel returns the current minimum log level.
	GetLevel() Level
}

// LoggerOption configures a logger under construction.
type LoggerOption func(*loggerOptions)

type loggerOptions struct {
	level  Level
	format string
	out    io.Writer
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(o *loggerOptions) { o.level = level }
}

// WithFormat selects the output encoding: "json" or "text".
func WithFormat(format string) LoggerOption {
	return func(o *loggerOptions) { o.format = format }
}

// WithOutput redirects log output to w.
func WithOutput(w io.Writer) LoggerOption {
	return func(o *loggerOptions) { o.out = w }
}

// zapLogger implements Logger on top of a zap core.
type zapLogger struct {
	z     *zap.Logger
	level zap.AtomicLevel
}

// NewLogger creates a new logger with the given options.
func NewLogger(options ...LoggerOption) Logger {
	opts := loggerOptions{level: InfoLevel, format: "text", out: os.Stderr}
	for _, option := range options {
		option(&opts)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	if opts.format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(opts.level.zapLevel())
	core := zapcore.NewCore(enc, zapcore.AddSync(opts.out), level)
	return &zapLogger{z: zap.New(core), level: level}
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, toZapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, toZapFields(fields)...) }

func (l *zapLogger) Debugf(format string, args ...interface{}) { l.z.Sugar().Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.z.Sugar().Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.z.Sugar().Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.z.Sugar().Errorf(format, args...) }
func (l *zapLogger) Fatalf(format string, args ...interface{}) { l.z.Sugar().Fatalf(format, args...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...), level: l.level}
}

func (l *zapLogger) WithComponent(component string) Logger { return l.With(Component(component)) }

func (l *zapLogger) WithError(err error) Logger { return l.With(Err(err)) }

func (l *zapLogger) SetLevel(level Level) { l.level.SetLevel(level.zapLevel()) }

func (l *zapLogger) GetLevel() Level { return levelFromZap(l.level.Level()) }
