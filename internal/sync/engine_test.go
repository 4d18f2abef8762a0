package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/backend/mocks"
	"github.com/stacklok/mbean-bridge/internal/resolver"
)

const (
	memoryObject = "java.lang:type=Memory"
	poolPattern  = "com.mchange.v2.c3p0:type=PooledDataSource,*"
	poolObject   = "com.mchange.v2.c3p0:type=PooledDataSource,identityToken=1hge1hv8"
)

var captureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestGateway(t *testing.T) *backend.StaticGateway {
	t.Helper()

	attrs := func(names ...string) []backend.StaticAttribute {
		out := make([]backend.StaticAttribute, 0, len(names))
		for _, n := range names {
			out = append(out, backend.StaticAttribute{Name: n})
		}
		return out
	}

	g := backend.NewStaticGateway("local")
	require.NoError(t, g.AddObject(backend.StaticObject{Name: memoryObject, Attributes: attrs("HeapMemoryUsage", "Verbose", "Nothing")}))
	require.NoError(t, g.AddObject(backend.StaticObject{Name: poolObject, Attributes: attrs("numBusyConnections")}))
	require.NoError(t, g.AddObject(backend.StaticObject{Name: "java.lang:type=Runtime", Attributes: attrs("VmName")}))

	heap := backend.NewComposite("", []string{"init", "used"}, map[string]backend.RawValue{
		"init": backend.Int(1024),
		"used": backend.Int(2048),
	})
	require.NoError(t, g.SetValue(memoryObject, "HeapMemoryUsage", heap))
	require.NoError(t, g.SetValue(memoryObject, "Verbose", backend.Bool(true)))
	require.NoError(t, g.SetValue(poolObject, "numBusyConnections", backend.Int(3)))
	require.NoError(t, g.SetValue("java.lang:type=Runtime", "VmName", backend.String("OpenJDK")))
	return g
}

func newTestEngine(t *testing.T, g backend.Gateway) *Engine {
	t.Helper()
	res := resolver.New(g, []resolver.Macro{{Token: "_C3P0_", Pattern: poolPattern}})
	return NewEngine(g, res)
}

func TestPull_PartialFailure(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, newTestGateway(t))
	defs := []attribute.Definition{
		{Name: "Verbose", Object: memoryObject, Type: attribute.TypeBoolean},
		{Name: "VmName", Object: "java.lang:type=Runtime", Type: attribute.TypeInteger},
		{Name: "HeapMemoryUsage_used", Object: memoryObject, Type: attribute.TypeLong},
	}

	result, err := engine.Pull(context.Background(), "server-1", defs, captureTime)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Verbose", result.Rows[0].Name)
	assert.Equal(t, attribute.BoolValue(true), result.Rows[0].Value)
	assert.Equal(t, "HeapMemoryUsage_used", result.Rows[1].Name)
	assert.Equal(t, attribute.LongValue(2048), result.Rows[1].Value)
	for _, row := range result.Rows {
		assert.True(t, row.Timestamp.Equal(captureTime), "rows share the capture timestamp")
	}

	require.Len(t, result.Warnings, 1)
	w := result.Warnings[0]
	assert.Equal(t, "VmName", w.Attribute)
	assert.Equal(t, WarningConversion, w.Kind)
	assert.ErrorIs(t, w, ErrConversion)
	var convErr *attribute.ConversionError
	assert.ErrorAs(t, w, &convErr)

	assert.NotEmpty(t, result.CycleID)
	assert.Equal(t, "server-1", result.Target)
}

func TestPull_WarningKinds(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)

	tests := []struct {
		name string
		def  attribute.Definition
		kind WarningKind
		is   error
	}{
		{
			name: "unknown object",
			def:  attribute.Definition{Name: "X", Object: "java.lang:type=Threading", Type: attribute.TypeString},
			kind: WarningAttributeRead,
			is:   backend.ErrObjectNotFound,
		},
		{
			name: "unknown attribute",
			def:  attribute.Definition{Name: "Missing", Object: memoryObject, Type: attribute.TypeString},
			kind: WarningAttributeRead,
			is:   backend.ErrAttributeNotFound,
		},
		{
			name: "missing subfield",
			def:  attribute.Definition{Name: "HeapMemoryUsage_max", Object: memoryObject, Type: attribute.TypeLong},
			kind: WarningAttributeRead,
			is:   ErrAttributeRead,
		},
		{
			name: "empty subfield of composite",
			def:  attribute.Definition{Name: "HeapMemoryUsage_", Object: memoryObject, Type: attribute.TypeString},
			kind: WarningAttributeRead,
			is:   ErrAttributeRead,
		},
		{
			name: "absent value with subfield",
			def:  attribute.Definition{Name: "Nothing_x", Object: memoryObject, Type: attribute.TypeString},
			kind: WarningAttributeRead,
			is:   attribute.ErrAbsentValue,
		},
		{
			name: "absent value",
			def:  attribute.Definition{Name: "Nothing", Object: memoryObject, Type: attribute.TypeString},
			kind: WarningAttributeRead,
			is:   attribute.ErrAbsentValue,
		},
		{
			name: "unresolvable macro",
			def:  attribute.Definition{Name: "numBusyConnections", Object: "_NOPOOL_", Type: attribute.TypeInteger},
			kind: WarningAddressUnresolvable,
			is:   ErrAddressUnresolvable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := resolver.New(g, []resolver.Macro{{Token: "_NOPOOL_", Pattern: "org.none:*"}})
			result, err := NewEngine(g, res).Pull(context.Background(), "server-1", []attribute.Definition{tt.def}, captureTime)
			require.NoError(t, err)
			assert.Empty(t, result.Rows)
			require.Len(t, result.Warnings, 1)
			assert.Equal(t, tt.kind, result.Warnings[0].Kind)
			assert.ErrorIs(t, result.Warnings[0], tt.is)
			assert.NotEmpty(t, result.Warnings[0].Message)
		})
	}
}

func TestPull_SubfieldOfScalarReadsWholeValue(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, newTestGateway(t))
	defs := []attribute.Definition{
		{Name: "Verbose_x", Object: memoryObject, Type: attribute.TypeBoolean},
		{Name: "numBusyConnections_max", Object: "_C3P0_", Type: attribute.TypeInteger},
	}

	result, err := engine.Pull(context.Background(), "server-1", defs, captureTime)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Verbose_x", result.Rows[0].Name)
	assert.Equal(t, attribute.BoolValue(true), result.Rows[0].Value)
	assert.Equal(t, "numBusyConnections_max", result.Rows[1].Name)
	assert.Equal(t, attribute.IntegerValue(3), result.Rows[1].Value)
}

func TestPull_MacroResolvedOnce(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	g := mocks.NewMockGateway(ctrl)
	g.EXPECT().Name().Return("local").AnyTimes()
	g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{poolObject}, nil).Times(1)
	g.EXPECT().GetAttributeValue(gomock.Any(), poolObject, "numBusyConnections").Return(backend.Int(3), nil).Times(2)
	g.EXPECT().GetAttributeValue(gomock.Any(), poolObject, "numIdleConnections").Return(backend.Int(7), nil).Times(2)

	engine := newTestEngine(t, g)
	defs := []attribute.Definition{
		{Name: "numBusyConnections", Object: "_C3P0_", Type: attribute.TypeInteger},
		{Name: "numIdleConnections", Object: "_C3P0_", Type: attribute.TypeInteger},
	}

	for range 2 {
		result, err := engine.Pull(context.Background(), "server-1", defs, captureTime)
		require.NoError(t, err)
		assert.Len(t, result.Rows, 2)
		assert.Empty(t, result.Warnings)
	}
}

func TestPull_Interrupted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	g := mocks.NewMockGateway(ctrl)
	g.EXPECT().Name().Return("local").AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	g.EXPECT().GetAttributeValue(gomock.Any(), memoryObject, "Verbose").
		DoAndReturn(func(context.Context, string, string) (backend.RawValue, error) {
			cancel()
			return backend.Bool(true), nil
		})

	defs := []attribute.Definition{
		{Name: "Verbose", Object: memoryObject, Type: attribute.TypeBoolean},
		{Name: "HeapMemoryUsage_used", Object: memoryObject, Type: attribute.TypeLong},
	}

	result, err := newTestEngine(t, g).Pull(ctx, "server-1", defs, captureTime)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPull_Empty(t *testing.T) {
	t.Parallel()

	result, err := newTestEngine(t, newTestGateway(t)).Pull(context.Background(), "server-1", nil, captureTime)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Warnings)
}
