// Package logging provides the structured logger and the request context
// keys used to propagate identity and trace information.
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// CustomerIDKey carries the authenticated customer id.
	CustomerIDKey contextKey = "customer_id"
	// EmailKey carries the authenticated customer email.
	EmailKey contextKey = "email"
	// TraceIDKey carries the per-request trace id.
	TraceIDKey contextKey = "trace_id"
)

// Logger wraps a logrus entry with context-aware helpers.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger for the named service with the given level
// ("debug", "info", "warn", "error") and format ("json" or "text").
func New(service, level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	if strings.EqualFold(format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	return &Logger{entry: l.WithField("service", service)}
}

// NewDefault creates an info-level JSON logger.
func NewDefault(service string) *Logger {
	return New(service, "info", "json")
}

// WithContext returns a logger annotated with identity and trace fields
// found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	entry := l.entry
	if id := GetCustomerID(ctx); id != "" {
		entry = entry.WithField("customer_id", id)
	}
	if trace := GetTraceID(ctx); trace != "" {
		entry = entry.WithField("trace_id", trace)
	}
	return &Logger{entry: entry}
}

// WithError annotates the logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// WithField annotates the logger with a single field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields annotates the logger with multiple fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

// LogSecurityEvent records an auth or abuse related event at warn level.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(fields).WithField("security_event", event).Warn("security event")
}

// GetCustomerID extracts the authenticated customer id from ctx.
func GetCustomerID(ctx context.Context) string {
	if v, ok := ctx.Value(CustomerIDKey).(string); ok {
		return v
	}
	return ""
}

// GetEmail extracts the authenticated email from ctx.
func GetEmail(ctx context.Context) string {
	if v, ok := ctx.Value(EmailKey).(string); ok {
		return v
	}
	return ""
}

// GetTraceID extracts the trace id from ctx.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithTraceID stores the trace id in ctx, generating one if empty.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}
