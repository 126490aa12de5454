package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string to LogLevel
func ParseLogLevel(level string) LogLevel {
	switch level {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogField represents a structured log field
type LogField struct {
	Key   string
	Value interface{}
}

// LogEntry represents a log entry
type LogEntry struct {
	Level   LogLevel
	Message string
	Time    time.Time
	Fields  []LogField
}

// Logger interface defines the logging contract
type Logger interface {
	Debug(ctx context.Context, message string, fields ...LogField)
	Info(ctx context.Context, message string, fields ...LogField)
	Warn(ctx context.Context, message string, fields ...LogField)
	Error(ctx context.Context, message string, fields ...LogField)
	WithFields(fields ...LogField) Logger
	SetLevel(level LogLevel)
	GetLevel() LogLevel
	Close() error
}

// LogFormatter interface for formatting log entries
type LogFormatter interface {
	Format(entry LogEntry) ([]byte, error)
}

// TextFormatter formats log entries as text
type TextFormatter struct{}

// Format formats a log entry as text
func (f *TextFormatter) Format(entry LogEntry) ([]byte, error) {
	text := fmt.Sprintf("[%s] %s: %s",
		entry.Time.Format(time.RFC3339),
		entry.Level.String(),
		entry.Message)

	if len(entry.Fields) > 0 {
		text += " | "
		for i, field := range entry.Fields {
			if i > 0 {
				text += ", "
			}
			text += fmt.Sprintf("%s=%v", field.Key, field.Value)
		}
	}

	return []byte(text + "\n"), nil
}

// JSONFormatter formats log entries as JSON
type JSONFormatter struct{}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry LogEntry) ([]byte, error) {
	json := fmt.Sprintf(`{"level":"%s","message":%q,"time":"%s"`,
		entry.Level.String(), entry.Message, entry.Time.Format(time.RFC3339))

	if len(entry.Fields) > 0 {
		json += `,"fields":{`
		for i, field := range entry.Fields {
			if i > 0 {
				json += ","
			}
			json += fmt.Sprintf(`%q:"%v"`, field.Key, field.Value)
		}
		json += "}"
	}

	return []byte(json + "}\n"), nil
}

// BaseLogger implements the base logging functionality
type BaseLogger struct {
	level     LogLevel
	output    io.Writer
	formatter LogFormatter
	mutex     sync.RWMutex
	fields    []LogField
	closer    io.Closer
}

// NewLogger creates a new logger writing formatted entries to output
func NewLogger(level LogLevel, output io.Writer, formatter LogFormatter) *BaseLogger {
	if output == nil {
		output = os.Stdout
	}
	if formatter == nil {
		formatter = &TextFormatter{}
	}

	return &BaseLogger{
		level:     level,
		output:    output,
		formatter: formatter,
	}
}

// NewConsoleLogger creates a logger writing to stdout
func NewConsoleLogger(level LogLevel) *BaseLogger {
	return NewLogger(level, os.Stdout, &TextFormatter{})
}

// NewDebugLogger creates a logger writing to the debug output stream (stderr)
func NewDebugLogger(level LogLevel) *BaseLogger {
	return NewLogger(level, os.Stderr, &TextFormatter{})
}

// NewFileLogger creates a logger appending to the named file
func NewFileLogger(level LogLevel, path string) (*BaseLogger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logger := NewLogger(level, file, &TextFormatter{})
	logger.closer = file
	return logger, nil
}

// log logs a message at the specified level
func (l *BaseLogger) log(_ context.Context, level LogLevel, message string, fields ...LogField) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if level < l.level {
		return
	}

	allFields := make([]LogField, 0, len(l.fields)+len(fields))
	allFields = append(allFields, l.fields...)
	allFields = append(allFields, fields...)

	entry := LogEntry{
		Level:   level,
		Message: message,
		Time:    time.Now(),
		Fields:  allFields,
	}

	formatted, err := l.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to format log entry: %v\n", err)
		return
	}

	if _, err := l.output.Write(formatted); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to write log entry: %v\n", err)
	}
}

// Debug logs a debug message
func (l *BaseLogger) Debug(ctx context.Context, message string, fields ...LogField) {
	l.log(ctx, LogLevelDebug, message, fields...)
}

// Info logs an info message
func (l *BaseLogger) Info(ctx context.Context, message string, fields ...LogField) {
	l.log(ctx, LogLevelInfo, message, fields...)
}

// Warn logs a warning message
func (l *BaseLogger) Warn(ctx context.Context, message string, fields ...LogField) {
	l.log(ctx, LogLevelWarn, message, fields...)
}

// Error logs an error message
func (l *BaseLogger) Error(ctx context.Context, message string, fields ...LogField) {
	l.log(ctx, LogLevelError, message, fields...)
}

// WithFields creates a new logger with additional fields
func (l *BaseLogger) WithFields(fields ...LogField) Logger {
	newFields := make([]LogField, 0, len(l.fields)+len(fields))
	newFields = append(newFields, l.fields...)
	newFields = append(newFields, fields...)

	return &BaseLogger{
		level:     l.level,
		output:    l.output,
		formatter: l.formatter,
		fields:    newFields,
		closer:    l.closer,
	}
}

// SetLevel sets the log level
func (l *BaseLogger) SetLevel(level LogLevel) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.level = level
}

// GetLevel gets the current log level
func (l *BaseLogger) GetLevel() LogLevel {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.level
}

// Close closes the logger's output if it owns one
func (l *BaseLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Convenience functions for creating log fields

func String(key, value string) LogField {
	return LogField{Key: key, Value: value}
}

func Int(key string, value int) LogField {
	return LogField{Key: key, Value: value}
}

func Int64(key string, value int64) LogField {
	return LogField{Key: key, Value: value}
}

func Bool(key string, value bool) LogField {
	return LogField{Key: key, Value: value}
}

func Duration(key string, value time.Duration) LogField {
	return LogField{Key: key, Value: value}
}

func ErrorField(key string, value error) LogField {
	return LogField{Key: key, Value: value}
}

func Any(key string, value interface{}) LogField {
	return LogField{Key: key, Value: value}
}

// MultiLogger fans log entries out to multiple loggers. The runtime package
// uses it as the trace listener set.
type MultiLogger struct {
	mutex   sync.RWMutex
	loggers []Logger
}

// NewMultiLogger creates a new multi-logger
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Add registers an additional logger
func (ml *MultiLogger) Add(logger Logger) {
	if logger == nil {
		return
	}
	ml.mutex.Lock()
	defer ml.mutex.Unlock()
	ml.loggers = append(ml.loggers, logger)
}

// Clear closes and removes all registered loggers
func (ml *MultiLogger) Clear() {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()
	for _, logger := range ml.loggers {
		logger.Close()
	}
	ml.loggers = nil
}

// Len returns the number of registered loggers
func (ml *MultiLogger) Len() int {
	ml.mutex.RLock()
	defer ml.mutex.RUnlock()
	return len(ml.loggers)
}

func (ml *MultiLogger) each(fn func(Logger)) {
	ml.mutex.RLock()
	defer ml.mutex.RUnlock()
	for _, logger := range ml.loggers {
		if logger != nil {
			fn(logger)
		}
	}
}

// Debug logs to all loggers
func (ml *MultiLogger) Debug(ctx context.Context, message string, fields ...LogField) {
	ml.each(func(l Logger) { l.Debug(ctx, message, fields...) })
}

// Info logs to all loggers
func (ml *MultiLogger) Info(ctx context.Context, message string, fields ...LogField) {
	ml.each(func(l Logger) { l.Info(ctx, message, fields...) })
}

// Warn logs to all loggers
func (ml *MultiLogger) Warn(ctx context.Context, message string, fields ...LogField) {
	ml.each(func(l Logger) { l.Warn(ctx, message, fields...) })
}

// Error logs to all loggers
func (ml *MultiLogger) Error(ctx context.Context, message string, fields ...LogField) {
	ml.each(func(l Logger) { l.Error(ctx, message, fields...) })
}

// WithFields creates a new multi-logger with additional fields on every logger
func (ml *MultiLogger) WithFields(fields ...LogField) Logger {
	ml.mutex.RLock()
	defer ml.mutex.RUnlock()

	loggers := make([]Logger, len(ml.loggers))
	for i, logger := range ml.loggers {
		if logger != nil {
			loggers[i] = logger.WithFields(fields...)
		}
	}
	return NewMultiLogger(loggers...)
}

// SetLevel sets the log level for all loggers
func (ml *MultiLogger) SetLevel(level LogLevel) {
	ml.each(func(l Logger) { l.SetLevel(level) })
}

// GetLevel gets the log level (returns the first logger's level)
func (ml *MultiLogger) GetLevel() LogLevel {
	ml.mutex.RLock()
	defer ml.mutex.RUnlock()
	if len(ml.loggers) > 0 {
		return ml.loggers[0].GetLevel()
	}
	return LogLevelInfo
}

// Close closes all loggers
func (ml *MultiLogger) Close() error {
	var errs []error
	ml.each(func(l Logger) {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	})

	if len(errs) > 0 {
		return fmt.Errorf("failed to close loggers: %v", errs)
	}
	return nil
}

// NopLogger discards all log entries
type NopLogger struct{}

func (NopLogger) Debug(context.Context, string, ...LogField) {}
func (NopLogger) Info(context.Context, string, ...LogField)  {}
func (NopLogger) Warn(context.Context, string, ...LogField)  {}
func (NopLogger) Error(context.Context, string, ...LogField) {}
func (n NopLogger) WithFields(...LogField) Logger            { return n }
func (NopLogger) SetLevel(LogLevel)                          {}
func (NopLogger) GetLevel() LogLevel                         { return LogLevelError }
func (NopLogger) Close() error                               { return nil }
