package contextutils

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	clerkIDKey   contextKey = "clerk_id"
	loggerKey    contextKey = "logger"
)

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetClerkID retrieves the caller's identity provider subject, or ""
func GetClerkID(ctx context.Context) string {
	if id, ok := ctx.Value(clerkIDKey).(string); ok {
		return id
	}
	return ""
}

// WithClerkID adds the caller's identity provider subject to the context
func WithClerkID(ctx context.Context, clerkID string) context.Context {
	return context.WithValue(ctx, clerkIDKey, clerkID)
}

// GetLogger returns the request-scoped logger, or fallback
func GetLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// WithLogger adds a request-scoped logger to the context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
