package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	orderSnKey   contextKey = "order_sn"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithOrderSn stores the order being worked on in ctx
func WithOrderSn(ctx context.Context, orderSn string) context.Context {
	return context.WithValue(ctx, orderSnKey, orderSn)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetOrderSn retrieves the order serial number from context
func GetOrderSn(ctx context.Context) string {
	sn, _ := ctx.Value(orderSnKey).(string)
	return sn
}

// L returns the context logger enriched with trace_id, span_id, request_id
// and order_sn when present.
//
//	logger.L(ctx).Info("shipment submitted", zap.String("mode", "pickup"))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the context correlation fields to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}

	var fields []zap.Field
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		fields = append(fields,
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sn := GetOrderSn(ctx); sn != "" {
		fields = append(fields, zap.String("order_sn", sn))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
