package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/config"
)

func newInMemoryBadger(t *testing.T) *BadgerSink {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	s := NewBadgerSink(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func exerciseSink(t *testing.T, s Sink) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "server-1", []Entry{
		{Attribute: "HeapMemoryUsage_used", Timestamp: base.Add(2 * time.Second), Value: attribute.LongValue(30)},
		{Attribute: "HeapMemoryUsage_used", Timestamp: base, Value: attribute.LongValue(10)},
		{Attribute: "HeapMemoryUsage_used", Timestamp: base.Add(time.Second), Value: attribute.LongValue(20)},
		{Attribute: "Verbose", Timestamp: base, Value: attribute.BoolValue(true)},
	}))
	require.NoError(t, s.Append(ctx, "server-2", []Entry{
		{Attribute: "HeapMemoryUsage_used", Timestamp: base, Value: attribute.LongValue(99)},
	}))

	all, err := s.Query(ctx, "server-1", "HeapMemoryUsage_used", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, attribute.LongValue(10), all[0].Value)
	assert.Equal(t, attribute.LongValue(30), all[2].Value)

	window, err := s.Query(ctx, "server-1", "HeapMemoryUsage_used", base.Add(time.Second), base.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, attribute.LongValue(20), window[0].Value)

	none, err := s.Query(ctx, "server-1", "Missing", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, none)

	err = s.Append(ctx, "server-1", []Entry{{Attribute: "Broken", Timestamp: base}})
	assert.ErrorContains(t, err, "unsupported type")
}

func TestMemorySink(t *testing.T) {
	t.Parallel()
	exerciseSink(t, NewMemorySink())
}

func TestBadgerSink(t *testing.T) {
	t.Parallel()
	exerciseSink(t, newInMemoryBadger(t))
}

func TestBadgerSink_AllValueTypes(t *testing.T) {
	t.Parallel()

	s := newInMemoryBadger(t)
	ctx := context.Background()

	values := map[string]attribute.Value{
		"string":   attribute.StringValue("OpenJDK"),
		"bool":     attribute.BoolValue(false),
		"integer":  attribute.IntegerValue(-7),
		"long":     attribute.LongValue(1 << 40),
		"number":   attribute.NumberValue(0.25),
		"datetime": attribute.DateTimeValue(base),
		"blob":     attribute.BlobValue("hello"),
		"table": attribute.TableValue{
			Columns: []string{"value"},
			Rows:    []map[string]any{{"value": "-Xmx1g"}},
		},
		"location": attribute.LocationValue{Latitude: 48.1, Longitude: 11.5, Elevation: 520},
		"vec2":     attribute.Vec2Value{X: 1, Y: 2},
		"vec3":     attribute.Vec3Value{X: 1, Y: 2, Z: 3},
		"vec4":     attribute.Vec4Value{X: 1, Y: 2, Z: 3, W: 4},
		"code":     attribute.ThingCodeValue{Domain: 3, Instance: 9},
	}

	entries := make([]Entry, 0, len(values))
	for name, v := range values {
		entries = append(entries, Entry{Attribute: name, Timestamp: base, Value: v})
	}
	require.NoError(t, s.Append(ctx, "server-1", entries))

	for name, want := range values {
		got, err := s.Query(ctx, "server-1", name, time.Time{}, time.Time{})
		require.NoError(t, err, name)
		require.Len(t, got, 1, name)
		if name == "datetime" {
			assert.True(t, time.Time(got[0].Value.(attribute.DateTimeValue)).Equal(base))
			continue
		}
		assert.Equal(t, want.Type(), got[0].Value.Type(), name)
		if name != "table" {
			assert.Equal(t, want, got[0].Value, name)
		}
	}
}

func TestBadgerSink_NamesWithSlashes(t *testing.T) {
	t.Parallel()

	s := newInMemoryBadger(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "a/b", []Entry{{Attribute: "c", Timestamp: base, Value: attribute.LongValue(1)}}))
	require.NoError(t, s.Append(ctx, "a", []Entry{{Attribute: "b/c", Timestamp: base, Value: attribute.LongValue(2)}}))

	got, err := s.Query(ctx, "a/b", "c", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, attribute.LongValue(1), got[0].Value)
}

func TestNewSink(t *testing.T) {
	t.Parallel()

	sink, err := NewSink(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, sink)
	assert.NoError(t, sink.Append(context.Background(), "x", nil))

	sink, err = NewSink(&config.Config{History: &config.HistoryConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "history")}})
	require.NoError(t, err)
	assert.IsType(t, &BadgerSink{}, sink)
	require.NoError(t, sink.Close())
}
