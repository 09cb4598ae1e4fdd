package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	dbTracerName       = "ourastream/db"
	pipelineTracerName = "ourastream/pipeline"
)

type contextKey string

const (
	requestIDKey contextKey = "observability.request_id"
	routeKey     contextKey = "observability.route"
	dataTypeKey  contextKey = "observability.data_type"
	eventIDKey   contextKey = "observability.event_id"
)

// Span is the application-level tracing span contract.
type Span interface {
	End()
	RecordError(error)
}

type otelSpan struct {
	inner trace.Span
}

// StartDBSpan starts a database tracing span for one query operation.
func StartDBSpan(ctx context.Context, system, queryName, operation string) (context.Context, Span) {
	queryName = strings.TrimSpace(queryName)
	if queryName == "" {
		queryName = "unknown"
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.system.name", system),
		attribute.String("db.query_name", queryName),
		attribute.String("db.operation", strings.TrimSpace(operation)),
	}
	if dataType, ok := DataTypeFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("oura.data_type", dataType))
	}

	ctx, span := otel.Tracer(dbTracerName).Start(ctx, "db."+queryName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, otelSpan{inner: span}
}

// StartSpan starts an internal pipeline span (poll cycle, sink ingest, statement).
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span) {
	if dataType, ok := DataTypeFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("oura.data_type", dataType))
	}
	ctx, span := otel.Tracer(pipelineTracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, otelSpan{inner: span}
}

// WithDataType tags context and current span with the Oura data type being handled.
func WithDataType(ctx context.Context, dataType string) context.Context {
	dataType = strings.TrimSpace(dataType)
	if dataType == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, dataTypeKey, dataType)
	if span := trace.SpanFromContext(ctx); span != nil {
		span.SetAttributes(attribute.String("oura.data_type", dataType))
	}
	return ctx
}

// WithRequestMetadata enriches context and current span with request metadata.
func WithRequestMetadata(ctx context.Context, requestID, route string) context.Context {
	requestID = strings.TrimSpace(requestID)
	route = strings.TrimSpace(route)
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if route != "" {
		ctx = context.WithValue(ctx, routeKey, route)
	}
	setSpanRequestAttributes(ctx, requestID, route)
	return ctx
}

// WithEventID tags context and current span with a stored event id.
func WithEventID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("oura.event_id", id))
	return context.WithValue(ctx, eventIDKey, id)
}

// EventIDFromContext extracts the stored event id.
func EventIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(eventIDKey).(string)
	return value, ok && value != ""
}

// DataTypeFromContext extracts the Oura data type.
func DataTypeFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(dataTypeKey).(string)
	return value, ok && value != ""
}

// RequestIDFromContext extracts request id.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(requestIDKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// RouteFromContext extracts normalized route path.
func RouteFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(routeKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func setSpanRequestAttributes(ctx context.Context, requestID, route string) {
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 2)
	if requestID != "" {
		attrs = append(attrs, attribute.String("request.id", requestID))
	}
	if route != "" {
		attrs = append(attrs, attribute.String("http.route", route))
	}
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

func (s otelSpan) End() {
	if s.inner == nil {
		return
	}
	s.inner.End()
}

func (s otelSpan) RecordError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.RecordError(err)
	s.inner.SetStatus(codes.Error, err.Error())
}
