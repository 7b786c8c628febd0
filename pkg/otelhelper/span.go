package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// nolint:ireturn,spancheck // Returning interface is intentional for OpenTelemetry tracing
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// SessionSpan starts a span stamped with the session ID, the attribute every
// pipeline span carries.
// nolint:ireturn,spancheck // Returning interface is intentional for OpenTelemetry tracing
func SessionSpan(ctx context.Context, tracer trace.Tracer, name, sessionID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String(SessionIDKey, sessionID)}, attrs...)

	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// SetError marks the span failed and records the error.
func SetError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
