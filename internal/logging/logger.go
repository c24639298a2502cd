package logging

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Configure sets the process-wide level and output format. JSON output is used
// outside development.
func Configure(level, appEnv string) {
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		base.SetLevel(lvl)
	}
	if appEnv != "" && appEnv != "development" {
		base.SetFormatter(&logrus.JSONFormatter{})
	}
}

// Base returns the shared logrus logger for code that has no request context.
func Base() *logrus.Logger {
	return base
}

// WithRequestID stores the request id on ctx.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request id from ctx, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides structured logging for services
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger carrying the request id found on ctx.
func NewLogger(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{entry: base.WithField("request_id", requestID)}
}

func (l *Logger) op(operation string) *logrus.Entry {
	return l.entry.WithField("operation", operation)
}

func (l *Logger) LogError(operation string, err error) {
	l.op(operation).WithError(err).Error("operation failed")
}

func (l *Logger) LogErrorf(operation string, format string, args ...interface{}) {
	l.op(operation).Errorf(format, args...)
}

func (l *Logger) LogInfo(operation string, message string) {
	l.op(operation).Info(message)
}

func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	l.op(operation).Infof(format, args...)
}

func (l *Logger) LogWarn(operation string, message string) {
	l.op(operation).Warn(message)
}

func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	l.op(operation).Warnf(format, args...)
}
