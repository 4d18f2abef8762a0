package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader, scopeName string) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != scopeName {
			continue
		}
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNilMetricsAreNoOps(t *testing.T) {
	t.Parallel()

	syncMetrics, err := NewSyncMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, syncMetrics)

	backendMetrics, err := NewBackendMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, backendMetrics)

	ctx := context.Background()
	syncMetrics.RecordSyncDuration(ctx, "t", time.Second, true)
	syncMetrics.RecordAttributesRead(ctx, "t", 3)
	syncMetrics.RecordWarning(ctx, "t", "AttributeReadFailure")
	syncMetrics.RecordPropertiesTotal(ctx, "t", 4)
	backendMetrics.RecordRequest(ctx, "b", "read", time.Millisecond, false)
	backendMetrics.RecordBreakerState(ctx, "b", 2)
}

func TestSyncMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewSyncMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordSyncDuration(ctx, "server-1", 250*time.Millisecond, true)
	metrics.RecordAttributesRead(ctx, "server-1", 5)
	metrics.RecordAttributesRead(ctx, "server-1", 0)
	metrics.RecordWarning(ctx, "server-1", "ConversionError")
	metrics.RecordWarning(ctx, "server-1", "ConversionError")
	metrics.RecordPropertiesTotal(ctx, "server-1", 7)

	got := collect(t, reader, SyncMetricsMeterName)

	hist, ok := got["mbean_bridge_sync_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	reads, ok := got["mbean_bridge_attributes_read_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, reads.DataPoints, 1)
	assert.Equal(t, int64(5), reads.DataPoints[0].Value)

	warnings, ok := got["mbean_bridge_sync_warnings_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, warnings.DataPoints, 1)
	assert.Equal(t, int64(2), warnings.DataPoints[0].Value)
	kind, _ := warnings.DataPoints[0].Attributes.Value("kind")
	assert.Equal(t, "ConversionError", kind.AsString())

	props, ok := got["mbean_bridge_properties_total"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, props.DataPoints, 1)
	assert.Equal(t, int64(7), props.DataPoints[0].Value)
}

func TestBackendMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewBackendMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRequest(ctx, "local", "read", 20*time.Millisecond, true)
	metrics.RecordRequest(ctx, "local", "read", 30*time.Millisecond, false)
	metrics.RecordBreakerState(ctx, "local", 2)

	got := collect(t, reader, BackendMetricsMeterName)

	hist, ok := got["mbean_bridge_backend_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2, "success and failure are separate series")

	state, ok := got["mbean_bridge_backend_breaker_state"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, state.DataPoints, 1)
	assert.Equal(t, int64(2), state.DataPoints[0].Value)
}
