package log

import (
	"io"
	"os"
	"sync"
	"time"
)

// BaseLogger is the default Logger implementation. It writes formatted
// entries to a single output writer.
type BaseLogger struct {
	mu        sync.Mutex
	level     Level
	formatter Formatter
	out       io.Writer
	fields    Fields
}

// Option configures a BaseLogger.
type Option func(*BaseLogger)

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(l *BaseLogger) { l.level = level }
}

// WithFormatter sets the entry formatter.
func WithFormatter(f Formatter) Option {
	return func(l *BaseLogger) { l.formatter = f }
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(l *BaseLogger) { l.out = w }
}

// NewLogger creates a new BaseLogger with the given options.
func NewLogger(opts ...Option) *BaseLogger {
	l := &BaseLogger{
		level:     InfoLevel,
		formatter: NewTextFormatter(),
		out:       os.Stderr,
		fields:    Fields{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	defaultLogger     Logger = NewLogger()
	defaultLoggerOnce sync.Mutex
)

// GetDefaultLogger returns the process-wide default logger.
func GetDefaultLogger() Logger {
	defaultLoggerOnce.Lock()
	defer defaultLoggerOnce.Unlock()
	return defaultLogger
}

// SetDefaultLogger replaces the process-wide default logger.
func SetDefaultLogger(l Logger) {
	defaultLoggerOnce.Lock()
	defer defaultLoggerOnce.Unlock()
	defaultLogger = l
}

// Debug logs a message at the debug level with fields.
func (l *BaseLogger) Debug(msg string, fields ...Field) {
	if l.level <= DebugLevel {
		l.log(DebugLevel, msg, fields)
	}
}

// Info logs a message at the info level with fields.
func (l *BaseLogger) Info(msg string, fields ...Field) {
	if l.level <= InfoLevel {
		l.log(InfoLevel, msg, fields)
	}
}

// Warn logs a message at the warn level with fields.
func (l *BaseLogger) Warn(msg string, fields ...Field) {
	if l.level <= WarnLevel {
		l.log(WarnLevel, msg, fields)
	}
}

// Error logs a message at the error level with fields.
func (l *BaseLogger) Error(msg string, fields ...Field) {
	if l.level <= ErrorLevel {
		l.log(ErrorLevel, msg, fields)
	}
}

// Fatal logs a message at the fatal level with fields and then exits.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	os.Exit(1)
}

// With returns a new logger with the fields added to it.
func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}

	newLogger := &BaseLogger{
		level:     l.level,
		formatter: l.formatter,
		out:       l.out,
		fields:    Fields{},
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for _, f := range fields {
		newLogger.fields[f.Key] = f.Value
	}
	return newLogger
}

// WithComponent tags logs with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	entry := &Entry{
		Level:     level,
		Message:   msg,
		Fields:    Fields{},
		Timestamp: time.Now(),
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}

	data, err := l.formatter.Format(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(data)
}
