// Package otel provides OpenTelemetry instrumentation utilities for the bridge server.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by spans across the application.
const (
	AttrTargetName    = attribute.Key("target.name")
	AttrBackendName   = attribute.Key("backend.name")
	AttrObjectName    = attribute.Key("mbean.object")
	AttrAttributeName = attribute.Key("mbean.attribute")
	AttrCycleID       = attribute.Key("sync.cycle_id")
	AttrIgnoreCache   = attribute.Key("sync.ignore_cache")
	AttrResultCount   = attribute.Key("result.count")
	AttrWarningCount  = attribute.Key("sync.warning_count")
	AttrFailureKind   = attribute.Key("failure.kind")
)

// EventAttributeSkipped is recorded for each attribute left out of a batch.
const EventAttributeSkipped = "attribute.skipped"

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and sets the span status to error.
// The status description is generic so backend URLs and credentials stay out
// of it; the error itself is kept in the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}

// RecordSkipped adds an event for an attribute skipped during a sync. Skips do
// not change the span status.
func RecordSkipped(span trace.Span, attributeName, kind string) {
	if span == nil {
		return
	}
	span.AddEvent(EventAttributeSkipped, trace.WithAttributes(
		AttrAttributeName.String(attributeName),
		AttrFailureKind.String(kind),
	))
}
