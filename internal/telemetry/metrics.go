package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/stacklok/mbean-bridge/sync"

	// BackendMetricsMeterName is the name used for the backend metrics meter
	BackendMetricsMeterName = "github.com/stacklok/mbean-bridge/backend"
)

// SyncMetrics holds the OpenTelemetry instruments for target synchronization
type SyncMetrics struct {
	syncDuration    metric.Float64Histogram
	attributesRead  metric.Int64Counter
	warnings        metric.Int64Counter
	propertiesTotal metric.Int64Gauge
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"mbean_bridge_sync_duration_seconds",
		metric.WithDescription("Duration of target sync operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	attributesRead, err := meter.Int64Counter(
		"mbean_bridge_attributes_read_total",
		metric.WithDescription("Number of attributes read from backends"),
		metric.WithUnit("{attribute}"),
	)
	if err != nil {
		return nil, err
	}

	warnings, err := meter.Int64Counter(
		"mbean_bridge_sync_warnings_total",
		metric.WithDescription("Number of attributes skipped during sync, by failure kind"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, err
	}

	propertiesTotal, err := meter.Int64Gauge(
		"mbean_bridge_properties_total",
		metric.WithDescription("Number of bridged properties defined for each target"),
		metric.WithUnit("{property}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration:    syncDuration,
		attributesRead:  attributesRead,
		warnings:        warnings,
		propertiesTotal: propertiesTotal,
	}, nil
}

// RecordSyncDuration records the duration of a sync operation for a target
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, target string, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("target", target),
		attribute.Bool("success", success),
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAttributesRead records how many attributes a batch pulled successfully
func (m *SyncMetrics) RecordAttributesRead(ctx context.Context, target string, count int) {
	if m == nil || m.attributesRead == nil || count == 0 {
		return
	}
	m.attributesRead.Add(ctx, int64(count), metric.WithAttributes(attribute.String("target", target)))
}

// RecordWarning records one skipped attribute
func (m *SyncMetrics) RecordWarning(ctx context.Context, target, kind string) {
	if m == nil || m.warnings == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("target", target),
		attribute.String("kind", kind),
	}

	m.warnings.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPropertiesTotal records the number of bridged properties of a target
func (m *SyncMetrics) RecordPropertiesTotal(ctx context.Context, target string, count int64) {
	if m == nil || m.propertiesTotal == nil {
		return
	}
	m.propertiesTotal.Record(ctx, count, metric.WithAttributes(attribute.String("target", target)))
}

// BackendMetrics holds the OpenTelemetry instruments for backend calls
type BackendMetrics struct {
	requestDuration metric.Float64Histogram
	breakerState    metric.Int64Gauge
}

// NewBackendMetrics creates a new BackendMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewBackendMetrics(provider metric.MeterProvider) (*BackendMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(BackendMetricsMeterName)

	requestDuration, err := meter.Float64Histogram(
		"mbean_bridge_backend_request_duration_seconds",
		metric.WithDescription("Duration of backend requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	breakerState, err := meter.Int64Gauge(
		"mbean_bridge_backend_breaker_state",
		metric.WithDescription("Circuit breaker state per backend (0=closed, 1=half-open, 2=open)"),
	)
	if err != nil {
		return nil, err
	}

	return &BackendMetrics{
		requestDuration: requestDuration,
		breakerState:    breakerState,
	}, nil
}

// RecordRequest records one backend call
func (m *BackendMetrics) RecordRequest(ctx context.Context, backend, operation string, duration time.Duration, success bool) {
	if m == nil || m.requestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}

	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordBreakerState records the circuit breaker state of a backend
func (m *BackendMetrics) RecordBreakerState(ctx context.Context, backend string, state int64) {
	if m == nil || m.breakerState == nil {
		return
	}
	m.breakerState.Record(ctx, state, metric.WithAttributes(attribute.String("backend", backend)))
}
