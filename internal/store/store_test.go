package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/config"
)

// exerciseSink runs the behaviour every PropertySink shares.
func exerciseSink(t *testing.T, sink PropertySink) {
	t.Helper()
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := sink.GetState(ctx, "server-1", "HeapMemoryUsage_used")
	require.ErrorIs(t, err, ErrStateNotFound)

	last, err := LastUpdate(ctx, sink, "server-1", "HeapMemoryUsage_used")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	require.NoError(t, sink.ApplyBatch(ctx, "server-1", []attribute.Row{
		{Name: "HeapMemoryUsage_used", Timestamp: ts, Value: attribute.LongValue(2048)},
		{Name: "Verbose", Timestamp: ts, Value: attribute.BoolValue(false)},
	}))

	st, err := sink.GetState(ctx, "server-1", "HeapMemoryUsage_used")
	require.NoError(t, err)
	assert.Equal(t, attribute.LongValue(2048), st.Value)
	assert.True(t, st.LastUpdate.Equal(ts))

	later := ts.Add(time.Minute)
	require.NoError(t, sink.ApplyBatch(ctx, "server-1", []attribute.Row{
		{Name: "Verbose", Timestamp: later, Value: attribute.BoolValue(true)},
	}))

	states, err := sink.ListStates(ctx, "server-1")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "HeapMemoryUsage_used", states[0].Name)
	assert.True(t, states[0].LastUpdate.Equal(ts), "untouched rows keep their timestamp")
	assert.Equal(t, attribute.BoolValue(true), states[1].Value)
	assert.True(t, states[1].LastUpdate.Equal(later))

	// a batch with an invalid row is rejected as a whole
	err = sink.ApplyBatch(ctx, "server-1", []attribute.Row{
		{Name: "Verbose", Timestamp: later.Add(time.Minute), Value: attribute.BoolValue(false)},
		{Name: "Broken", Timestamp: later.Add(time.Minute)},
	})
	require.Error(t, err)
	st, err = sink.GetState(ctx, "server-1", "Verbose")
	require.NoError(t, err)
	assert.Equal(t, attribute.BoolValue(true), st.Value)

	other, err := sink.ListStates(ctx, "server-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemorySink(t *testing.T) {
	t.Parallel()
	exerciseSink(t, NewMemorySink())
}

func TestFileSink(t *testing.T) {
	t.Parallel()
	exerciseSink(t, NewFileSink(t.TempDir()))
}

func TestFileSink_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := NewFileSink(dir)
	require.NoError(t, first.ApplyBatch(ctx, "server-1", []attribute.Row{
		{Name: "StartTime", Timestamp: ts, Value: attribute.DateTimeValue(ts)},
		{Name: "InputArguments", Timestamp: ts, Value: attribute.TableValue{
			Columns: []string{"value"},
			Rows:    []map[string]any{{"value": "-Xmx1g"}},
		}},
	}))
	assert.FileExists(t, filepath.Join(dir, "server-1", PropertiesFileName))
	assert.NoFileExists(t, filepath.Join(dir, "server-1", PropertiesFileName+".tmp"))

	second := NewFileSink(dir)
	st, err := second.GetState(ctx, "server-1", "StartTime")
	require.NoError(t, err)
	assert.True(t, time.Time(st.Value.(attribute.DateTimeValue)).Equal(ts))

	table, err := second.GetState(ctx, "server-1", "InputArguments")
	require.NoError(t, err)
	assert.Equal(t, attribute.TypeInfoTable, table.Value.Type())
}

func TestFileSink_CorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "server-1"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server-1", PropertiesFileName), []byte("{"), 0600))

	_, err := NewFileSink(dir).ListStates(context.Background(), "server-1")
	assert.ErrorContains(t, err, "failed to unmarshal properties")
}

func TestStaticDefinitions(t *testing.T) {
	t.Parallel()

	cacheTime := int64(5000)
	defs := NewStaticDefinitions([]config.TargetConfig{
		{
			Name:    "server-2",
			Backend: "local",
		},
		{
			Name:    "server-1",
			Backend: "local",
			Attributes: []config.AttributeConfig{
				{Name: "HeapMemoryUsage_used", Object: "java.lang:type=Memory", Type: "long", CacheTimeMs: &cacheTime},
				{Name: "Note", Object: "java.lang:type=Memory", Type: "string", Category: "other"},
			},
		},
	})
	ctx := context.Background()

	names, err := defs.ListTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"server-1", "server-2"}, names)

	all, err := defs.GetDefinitions(ctx, "server-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	synced, err := defs.GetDefinitions(ctx, "server-1", attribute.DefaultCategory)
	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, attribute.TypeLong, synced[0].Type)
	assert.Equal(t, int64(5000), *synced[0].CacheTime)

	_, err = defs.GetDefinitions(ctx, "nope", "")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestNewPropertySink(t *testing.T) {
	t.Parallel()

	sink, err := NewPropertySink(&config.Config{FileStorage: &config.FileStorageConfig{BaseDir: t.TempDir()}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, sink)

	_, err = NewPropertySink(&config.Config{Database: &config.DatabaseConfig{Host: "localhost"}}, nil)
	assert.ErrorContains(t, err, "database pool is required")
}
