package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With stores a child logger carrying extra fields in the context.
// Middleware uses it to stamp the trace ID onto every downstream log line.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in context, or the default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
