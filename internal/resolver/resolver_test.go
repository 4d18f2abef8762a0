package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/backend/mocks"
)

const (
	poolToken   = "_C3P0_"
	poolPattern = "com.mchange.v2.c3p0:type=PooledDataSource,*"
	poolObject  = "com.mchange.v2.c3p0:type=PooledDataSource,identityToken=1hge1hv8"
)

func newMockGateway(t *testing.T) *mocks.MockGateway {
	t.Helper()
	ctrl := gomock.NewController(t)
	g := mocks.NewMockGateway(ctrl)
	g.EXPECT().Name().Return("local").AnyTimes()
	return g
}

func TestResolve_SplitsCompositeNames(t *testing.T) {
	t.Parallel()

	r := New(newMockGateway(t), nil)

	tests := []struct {
		name string
		want Address
	}{
		{name: "HeapMemoryUsage_used", want: Address{ObjectName: "java.lang:type=Memory", Attribute: "HeapMemoryUsage", Subfield: "used", HasSubfield: true}},
		{name: "Pool_Size", want: Address{ObjectName: "java.lang:type=Memory", Attribute: "Pool", Subfield: "Size", HasSubfield: true}},
		{name: "Heap", want: Address{ObjectName: "java.lang:type=Memory", Attribute: "Heap"}},
		{name: "_X", want: Address{ObjectName: "java.lang:type=Memory", Attribute: "_X"}},
		{name: "Heap_", want: Address{ObjectName: "java.lang:type=Memory", Attribute: "Heap", HasSubfield: true}},
		{name: "a_b_c", want: Address{ObjectName: "java.lang:type=Memory", Attribute: "a_b", Subfield: "c", HasSubfield: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Resolve(context.Background(), attribute.Definition{Name: tt.name, Object: "java.lang:type=Memory"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_MemoizesMacro(t *testing.T) {
	t.Parallel()

	g := newMockGateway(t)
	g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{poolObject}, nil).Times(1)

	r := New(g, []Macro{{Token: poolToken, Pattern: poolPattern}})
	ctx := context.Background()
	def := attribute.Definition{Name: "numBusyConnections", Object: poolToken}

	for range 2 {
		addr, err := r.Resolve(ctx, def)
		require.NoError(t, err)
		assert.Equal(t, poolObject, addr.ObjectName)
		assert.Equal(t, "numBusyConnections", addr.Attribute)
	}

	cached, ok := r.Cached(poolToken)
	assert.True(t, ok)
	assert.Equal(t, poolObject, cached)
}

func TestResolve_InvalidateTriggersOneMoreDiscovery(t *testing.T) {
	t.Parallel()

	renamed := "com.mchange.v2.c3p0:type=PooledDataSource,identityToken=zz99"
	g := newMockGateway(t)
	gomock.InOrder(
		g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{poolObject}, nil),
		g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{renamed}, nil),
	)

	r := New(g, []Macro{{Token: poolToken, Pattern: poolPattern}})
	ctx := context.Background()
	def := attribute.Definition{Name: "numBusyConnections", Object: poolToken}

	addr, err := r.Resolve(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, poolObject, addr.ObjectName)

	require.NoError(t, r.Invalidate(poolToken))
	_, ok := r.Cached(poolToken)
	assert.False(t, ok)

	for range 3 {
		addr, err = r.Resolve(ctx, def)
		require.NoError(t, err)
		assert.Equal(t, renamed, addr.ObjectName)
	}
}

func TestResolve_Unresolvable(t *testing.T) {
	t.Parallel()

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		g := newMockGateway(t)
		g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{}, nil).Times(2)

		r := New(g, []Macro{{Token: poolToken, Pattern: poolPattern}})
		def := attribute.Definition{Name: "numBusyConnections", Object: poolToken}

		_, err := r.Resolve(context.Background(), def)
		assert.ErrorIs(t, err, ErrAddressUnresolvable)

		// failures are not memoized
		_, err = r.Resolve(context.Background(), def)
		assert.ErrorIs(t, err, ErrAddressUnresolvable)
	})

	t.Run("backend failure", func(t *testing.T) {
		t.Parallel()
		g := newMockGateway(t)
		g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return(nil, backend.ErrBackendUnavailable)

		r := New(g, []Macro{{Token: poolToken, Pattern: poolPattern}})
		_, err := r.Resolve(context.Background(), attribute.Definition{Name: "x", Object: poolToken})
		assert.ErrorIs(t, err, ErrAddressUnresolvable)
		assert.ErrorIs(t, err, backend.ErrBackendUnavailable)
	})
}

func TestResolve_FirstMatchWins(t *testing.T) {
	t.Parallel()

	g := newMockGateway(t)
	g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{poolObject, poolObject + "x"}, nil)

	r := New(g, []Macro{{Token: poolToken, Pattern: poolPattern}})
	name, err := r.ResolveObject(context.Background(), poolToken)
	require.NoError(t, err)
	assert.Equal(t, poolObject, name)
}

func TestResolve_ConcurrentMissesShareDiscovery(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	g := newMockGateway(t)
	g.EXPECT().ListObjects(gomock.Any(), poolPattern).DoAndReturn(func(context.Context, string) ([]string, error) {
		<-release
		return []string{poolObject}, nil
	}).Times(1)

	r := New(g, []Macro{{Token: poolToken, Pattern: poolPattern}})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := r.ResolveObject(context.Background(), poolToken)
			assert.NoError(t, err)
			results[i] = name
		}()
	}
	close(release)
	wg.Wait()

	for _, name := range results {
		assert.Equal(t, poolObject, name)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	renamed := "com.mchange.v2.c3p0:type=PooledDataSource,identityToken=zz99"
	g := newMockGateway(t)
	gomock.InOrder(
		g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{poolObject}, nil),
		g.EXPECT().ListObjects(gomock.Any(), poolPattern).Return([]string{renamed}, nil),
	)

	r := New(g, []Macro{{Token: poolToken, Pattern: poolPattern}})
	ctx := context.Background()

	_, err := r.ResolveObject(ctx, poolToken)
	require.NoError(t, err)

	name, err := r.Reset(ctx, poolToken)
	require.NoError(t, err)
	assert.Equal(t, renamed, name)

	_, err = r.Reset(ctx, "_NOPE_")
	assert.ErrorIs(t, err, ErrUnknownMacro)
}

func TestMacros(t *testing.T) {
	t.Parallel()

	r := New(newMockGateway(t), []Macro{
		{Token: "_Z_", Pattern: "z:*"},
		{Token: poolToken, Pattern: poolPattern},
		{Token: "_Z_", Pattern: "ignored:*"},
	})

	assert.Equal(t, []Macro{{Token: poolToken, Pattern: poolPattern}, {Token: "_Z_", Pattern: "z:*"}}, r.Macros())
	assert.True(t, r.IsMacro("_Z_"))
	assert.False(t, r.IsMacro("java.lang:type=Memory"))
}

func TestMemoCell_InvalidateDuringDiscovery(t *testing.T) {
	t.Parallel()

	c := newMemoCell("p:*")
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, err := c.get(context.Background(), func(context.Context, string) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		assert.NoError(t, err)
		done <- v
	}()

	<-started
	c.invalidate()
	close(release)
	assert.Equal(t, "stale", <-done)

	_, ok := c.peek()
	assert.False(t, ok, "a discovery started before invalidation must not populate the cell")

	v, err := c.get(context.Background(), func(context.Context, string) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestMemoCell_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := newMemoCell("p:*")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)
	_, err := c.get(ctx, func(context.Context, string) (string, error) {
		<-block
		return "", errors.New("unreachable")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
