// Package logging provides the structured JSON logger used by the
// optimization service, plus the adapter that routes the library's zap
// output through the same sink.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel is the severity of a log entry.
type LogLevel string

const (
	// DebugLevel entries are voluminous and usually disabled in production.
	DebugLevel LogLevel = "DEBUG"
	// InfoLevel is the default priority.
	InfoLevel LogLevel = "INFO"
	// WarnLevel entries are notable but need no individual review.
	WarnLevel LogLevel = "WARN"
	// ErrorLevel entries indicate a failed operation.
	ErrorLevel LogLevel = "ERROR"
	// FatalLevel logs the entry and then exits the process.
	FatalLevel LogLevel = "FATAL"
)

// severity orders levels for filtering. Unknown levels rank below Debug
// and are never emitted.
func severity(level LogLevel) int {
	switch level {
	case DebugLevel:
		return 1
	case InfoLevel:
		return 2
	case WarnLevel:
		return 3
	case ErrorLevel:
		return 4
	case FatalLevel:
		return 5
	}
	return 0
}

// Logger writes one JSON entry per line, carrying its bound fields plus
// the per-call ones. Loggers are immutable; the With helpers return
// derived copies.
type Logger struct {
	level LogLevel
	sink  io.Writer
	bound map[string]interface{}
}

// New creates a Logger emitting entries at or above level to sink.
func New(level LogLevel, sink io.Writer) *Logger {
	return &Logger{
		level: level,
		sink:  sink,
		bound: make(map[string]interface{}),
	}
}

// WithFields returns a Logger that attaches fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.bound)+len(fields))
	for k, v := range l.bound {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{level: l.level, sink: l.sink, bound: merged}
}

// WithField returns a Logger with one extra bound field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithError returns a Logger with the error bound under "error".
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err.Error())
}

func (l *Logger) shouldLog(level LogLevel) bool {
	s := severity(level)
	return s > 0 && s >= severity(l.level)
}

// log assembles and writes one entry. Caller information supplied by the
// zap adapter in fields wins over the computed call site.
func (l *Logger) log(level LogLevel, msg string, fields map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}

	entry := make(map[string]interface{}, len(l.bound)+len(fields)+4)
	for k, v := range l.bound {
		entry[k] = v
	}
	for k, v := range fields {
		entry[k] = v
	}
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level
	entry["message"] = msg
	if _, ok := entry["caller"]; !ok {
		entry["caller"] = callSite(2)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		// Unmarshalable field value; keep the entry as plain text.
		fmt.Fprintf(l.sink, "%s [%s] %s: %+v\n",
			time.Now().UTC().Format(time.RFC3339), level, msg, fields)
	} else {
		_, _ = l.sink.Write(append(line, '\n'))
	}

	if level == FatalLevel {
		os.Exit(1)
	}
}

// callSite reports the file:line skip frames above the caller, trimmed
// to the last two path elements.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		if j := strings.LastIndex(file[:i], "/"); j >= 0 {
			file = file[j+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func firstOf(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	return fields[0]
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(DebugLevel, msg, firstOf(fields))
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(InfoLevel, msg, firstOf(fields))
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(WarnLevel, msg, firstOf(fields))
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(ErrorLevel, msg, firstOf(fields))
}

// Fatal logs a message at FatalLevel and then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.log(FatalLevel, msg, firstOf(fields))
}

type ctxKey struct{}

// CtxLogger is a request-scoped Logger carried in a context. The HTTP
// middleware stores one per request with the request fields bound.
type CtxLogger struct {
	*Logger
}

// WithContext returns a context carrying the logger.
func (l *CtxLogger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or a default stderr
// logger when the context carries none.
func FromContext(ctx context.Context) *CtxLogger {
	if l, ok := ctx.Value(ctxKey{}).(*CtxLogger); ok {
		return l
	}
	return &CtxLogger{New(InfoLevel, os.Stderr)}
}
