package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

type ctxKey struct{}

// Initialize sets up the global logger with the specified level and format
func Initialize(level, format string) {
	defaultLogger = New(level, format, os.Stdout)
	slog.SetDefault(defaultLogger)
}

// New builds a logger writing to w. format is "json" or "text"; unknown levels
// fall back to info.
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "rentwear")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the default logger
func Get() *slog.Logger {
	if defaultLogger == nil {
		// Initialize with default settings if not yet initialized
		Initialize("info", "text")
	}
	return defaultLogger
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// InfoContext logs an info message with the request-scoped logger
func InfoContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).InfoContext(ctx, msg, args...)
}

// WithRequestID stores a request-scoped logger carrying the request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Get().With("request_id", requestID))
}

// FromContext returns the request-scoped logger, or the default logger
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return Get()
}

// trace emits a process-tracking record. A non-nil err raises it to error level.
func trace(msg string, err error, attrs []any, args []any) {
	attrs = append(attrs, args...)
	if err != nil {
		Get().Error(msg+" failed", append(attrs, "error", err)...)
		return
	}
	Get().Debug(msg, attrs...)
}

// EnterMethod logs method entry
func EnterMethod(methodName string, args ...any) {
	trace("→ Method entered", nil, []any{"method", methodName, "event", "enter"}, args)
}

// ExitMethod logs method exit
func ExitMethod(methodName string, args ...any) {
	trace("← Method exited", nil, []any{"method", methodName, "event", "exit"}, args)
}

// ExitMethodWithError logs method exit with error
func ExitMethodWithError(methodName string, err error, args ...any) {
	trace("← Method", err, []any{"method", methodName, "event", "exit"}, args)
}

// DatabaseCall logs a query before it runs
func DatabaseCall(operation, query string, args ...any) {
	trace("→ Database call", nil, []any{"operation", operation, "query", query}, args)
}

// DatabaseResult logs the outcome of a query
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	trace("← Database call", err, []any{"operation", operation, "rows_affected", rowsAffected}, args)
}

// ExternalServiceCall logs a call to a third-party API
func ExternalServiceCall(service, operation string, args ...any) {
	trace("→ External service call", nil, []any{"service", service, "operation", operation}, args)
}

// ExternalServiceResult logs the outcome of a third-party API call
func ExternalServiceResult(service, operation string, err error, args ...any) {
	trace("← External service call", err, []any{"service", service, "operation", operation}, args)
}
