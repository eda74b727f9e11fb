package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ctxKey struct{}

// echoKey is where the request-scoped logger lives in the echo context.
// The request ID middleware seeds it; EchoWith layers fields on top as
// the pipeline learns more about the request (the active company, mainly).
const echoKey = "logger"

// WithContext returns a context carrying l.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or the global one.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// FromEcho returns the request-scoped logger. Falls back to the global
// logger when no middleware has run, so handlers under test log safely.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(echoKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// EchoWith enriches the request-scoped logger with fields and stores it
// back, so everything logged later in the request carries them.
func EchoWith(c echo.Context, fields ...zap.Field) *zap.Logger {
	l := FromEcho(c).With(fields...)
	c.Set(echoKey, l)
	return l
}
