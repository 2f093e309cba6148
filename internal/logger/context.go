package logger

import (
	"context"

	"go.uber.org/zap"
)

// Request-scoped fields attached to the context logger.
const (
	FieldRequestID = "request_id"
	FieldMessageID = "msgid"
	FieldTraceID   = "traceid"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithRequestID stores base tagged with the HTTP request id.
func WithRequestID(ctx context.Context, base *zap.Logger, requestID string) context.Context {
	return ContextWithLogger(ctx, base.With(zap.String(FieldRequestID, requestID)))
}

// WithMessage tags the context logger with the Beckn message and trace ids
// of the request being served. Empty ids are omitted.
func WithMessage(ctx context.Context, msgID, traceID string) context.Context {
	var fields []zap.Field
	if msgID != "" {
		fields = append(fields, zap.String(FieldMessageID, msgID))
	}
	if traceID != "" {
		fields = append(fields, zap.String(FieldTraceID, traceID))
	}
	if len(fields) == 0 {
		return ctx
	}
	return ContextWithLogger(ctx, FromContext(ctx).With(fields...))
}

// FromContext extracts a logger from the context, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
