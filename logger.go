package fileops

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// ErrorLogField is the key used for error fields in logs
	ErrorLogField string = "error"
)

// Logger interface - defines the common logging methods
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithErr(err error) Logger
}

// logLevel orders the severities understood by DefaultLogger.
type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

var logLevelNames = map[string]logLevel{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

func (l logLevel) tag() string {
	switch l {
	case levelDebug:
		return "[DEBUG]"
	case levelInfo:
		return "[INFO]"
	case levelWarn:
		return "[WARN]"
	default:
		return "[ERROR]"
	}
}

// DefaultLogger is a Logger backed by the standard log package. It never
// writes to stdout unless told to, since stdout carries the protocol.
type DefaultLogger struct {
	*log.Logger
	minLevel logLevel
	fields   map[string]interface{}
	err      error
}

// NewDefaultLogger creates a DefaultLogger that logs info and above to stderr.
func NewDefaultLogger() Logger {
	return NewDefaultLoggerWithWriter(os.Stderr, "info")
}

// NewDefaultLoggerWithWriter creates a DefaultLogger writing to w. Unknown
// level names fall back to info.
func NewDefaultLoggerWithWriter(w io.Writer, level string) Logger {
	minLevel, ok := logLevelNames[strings.ToLower(level)]
	if !ok {
		minLevel = levelInfo
	}
	return &DefaultLogger{
		Logger:   log.New(w, "", log.LstdFlags),
		minLevel: minLevel,
		fields:   make(map[string]interface{}),
	}
}

// Debug logs a message at debug level
func (l *DefaultLogger) Debug(args ...interface{}) { l.logWithFields(levelDebug, args...) }

// Info logs a message at info level
func (l *DefaultLogger) Info(args ...interface{}) { l.logWithFields(levelInfo, args...) }

// Warn logs a message at warn level
func (l *DefaultLogger) Warn(args ...interface{}) { l.logWithFields(levelWarn, args...) }

// Error logs a message at error level
func (l *DefaultLogger) Error(args ...interface{}) { l.logWithFields(levelError, args...) }

// WithFields returns a copy of the logger carrying the merged fields.
func (l *DefaultLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &DefaultLogger{Logger: l.Logger, minLevel: l.minLevel, fields: merged, err: l.err}
}

// WithContext is a no-op for DefaultLogger.
func (l *DefaultLogger) WithContext(ctx context.Context) Logger {
	return l
}

// WithErr returns a copy of the logger that appends err to every entry.
func (l *DefaultLogger) WithErr(err error) Logger {
	return &DefaultLogger{Logger: l.Logger, minLevel: l.minLevel, fields: l.fields, err: err}
}

func (l *DefaultLogger) logWithFields(level logLevel, args ...interface{}) {
	if level < l.minLevel {
		return
	}

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, l.fields[k]))
	}
	if l.err != nil {
		parts = append(parts, fmt.Sprintf("%s=%v", ErrorLogField, l.err))
	}

	msg := level.tag() + " " + fmt.Sprint(args...)
	if len(parts) > 0 {
		msg += " " + strings.Join(parts, " ")
	}
	l.Logger.Print(msg)
}

// NullLogger - a logger that does nothing
type NullLogger struct{}

// NewNullLogger creates a new NullLogger
func NewNullLogger() Logger {
	return &NullLogger{}
}

// Debug is a no-op for NullLogger
func (l *NullLogger) Debug(args ...interface{}) {}

// Info is a no-op for NullLogger
func (l *NullLogger) Info(args ...interface{}) {}

// Warn is a no-op for NullLogger
func (l *NullLogger) Warn(args ...interface{}) {}

// Error is a no-op for NullLogger
func (l *NullLogger) Error(args ...interface{}) {}

// WithFields is a no-op for NullLogger
func (l *NullLogger) WithFields(fields map[string]interface{}) Logger { return l }

// WithContext is a no-op for NullLogger
func (l *NullLogger) WithContext(ctx context.Context) Logger { return l }

// WithErr is a no-op for NullLogger
func (l *NullLogger) WithErr(err error) Logger { return l }

// SlogLogger implements the Logger interface using log/slog
type SlogLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

// NewSlogLogger wraps logger, falling back to slog.Default when nil.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger, ctx: context.Background()}
}

// Debug log for SlogLogger
func (l *SlogLogger) Debug(args ...interface{}) {
	l.logger.DebugContext(l.ctx, fmt.Sprint(args...))
}

// Info log for SlogLogger
func (l *SlogLogger) Info(args ...interface{}) {
	l.logger.InfoContext(l.ctx, fmt.Sprint(args...))
}

// Warn log for SlogLogger
func (l *SlogLogger) Warn(args ...interface{}) {
	l.logger.WarnContext(l.ctx, fmt.Sprint(args...))
}

// Error log for SlogLogger
func (l *SlogLogger) Error(args ...interface{}) {
	l.logger.ErrorContext(l.ctx, fmt.Sprint(args...))
}

// WithFields adds fields to the logger and returns a new SlogLogger
func (l *SlogLogger) WithFields(fields map[string]interface{}) Logger {
	attrs := make([]any, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return &SlogLogger{logger: l.logger.With(attrs...), ctx: l.ctx}
}

// WithContext keeps ctx so handlers that read context values can see it.
func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	return &SlogLogger{logger: l.logger, ctx: ctx}
}

// WithErr adds an error to the logger and returns a new SlogLogger
func (l *SlogLogger) WithErr(err error) Logger {
	return &SlogLogger{logger: l.logger.With(slog.Any(ErrorLogField, err)), ctx: l.ctx}
}

// LogrusLogger implements the Logger interface using logrus
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps logger, falling back to the logrus standard logger.
func NewLogrusLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: logrus.NewEntry(logger)}
}

// Debug log for LogrusLogger
func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }

// Info log for LogrusLogger
func (l *LogrusLogger) Info(args ...interface{}) { l.entry.Info(args...) }

// Warn log for LogrusLogger
func (l *LogrusLogger) Warn(args ...interface{}) { l.entry.Warn(args...) }

// Error log for LogrusLogger
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }

// WithFields adds fields to the logger and returns a new LogrusLogger
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithContext attaches ctx to the entry and returns a new LogrusLogger
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	return &LogrusLogger{entry: l.entry.WithContext(ctx)}
}

// WithErr adds an error to the logger and returns a new LogrusLogger
func (l *LogrusLogger) WithErr(err error) Logger {
	return &LogrusLogger{entry: l.entry.WithError(err)}
}

// ZapLogger implements the Logger interface using uber-go/zap
type ZapLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewZapLogger wraps logger, falling back to a production logger.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &ZapLogger{logger: logger, sugar: logger.Sugar()}
}

// Debug log for ZapLogger
func (l *ZapLogger) Debug(args ...interface{}) { l.sugar.Debug(args...) }

// Info log for ZapLogger
func (l *ZapLogger) Info(args ...interface{}) { l.sugar.Info(args...) }

// Warn log for ZapLogger
func (l *ZapLogger) Warn(args ...interface{}) { l.sugar.Warn(args...) }

// Error log for ZapLogger
func (l *ZapLogger) Error(args ...interface{}) { l.sugar.Error(args...) }

// WithFields adds fields to the logger and returns a new ZapLogger
func (l *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	zapFields := make([]zapcore.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return l.with(zapFields...)
}

// WithContext is a no-op for ZapLogger
func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	return l
}

// WithErr adds an error to the logger and returns a new ZapLogger
func (l *ZapLogger) WithErr(err error) Logger {
	return l.with(zap.Error(err))
}

func (l *ZapLogger) with(fields ...zapcore.Field) Logger {
	next := l.logger.With(fields...)
	return &ZapLogger{logger: next, sugar: next.Sugar()}
}
