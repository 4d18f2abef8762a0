package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
	"github.com/stacklok/mbean-bridge/internal/sync"
	syncmocks "github.com/stacklok/mbean-bridge/internal/sync/mocks"
	"github.com/stacklok/mbean-bridge/internal/sync/state"
	statemocks "github.com/stacklok/mbean-bridge/internal/sync/state/mocks"
)

var startTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func testConfig() *config.Config {
	return &config.Config{
		Targets: []config.TargetConfig{
			{Name: "scheduled", Backend: "local", SyncPolicy: &config.SyncPolicyConfig{Interval: "30s"}},
			{Name: "on-demand", Backend: "local"},
		},
	}
}

func newTestCoordinator(t *testing.T, manager sync.Manager) (*defaultCoordinator, state.TargetStateService, *testClock) {
	t.Helper()

	cfg := testConfig()
	svc := state.NewFileStateService(status.NewFileStatusPersistence(t.TempDir()))
	require.NoError(t, svc.Initialize(context.Background(), cfg.Targets))

	clock := &testClock{now: startTime}
	c := New(manager, svc, cfg, WithClock(clock.Now)).(*defaultCoordinator)
	return c, svc, clock
}

func TestProcessSyncJobs_SyncsDueTargets(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	c, svc, clock := newTestCoordinator(t, manager)
	ctx := context.Background()

	manager.EXPECT().Refresh(gomock.Any(), "scheduled", false).Return(&sync.BatchResult{
		CycleID:   "cycle-1",
		Target:    "scheduled",
		Timestamp: startTime,
		Rows: []attribute.Row{
			{Name: "Verbose", Value: attribute.BoolValue(true), Timestamp: startTime},
			{Name: "HeapMemoryUsage_used", Value: attribute.LongValue(2048), Timestamp: startTime},
		},
		Warnings: []sync.Warning{{Attribute: "VmName", Kind: sync.WarningConversion}},
	}, nil).Times(1)

	c.processSyncJobs(ctx)

	got, err := svc.GetSyncStatus(ctx, "scheduled")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseComplete, got.Phase)
	assert.Equal(t, "Sync completed with 1 warnings", got.Message)
	assert.Equal(t, "cycle-1", got.LastCycleID)
	assert.Equal(t, 2, got.RowCount)
	assert.Equal(t, 1, got.WarningCount)
	assert.Equal(t, 0, got.AttemptCount)
	require.NotNil(t, got.LastAttempt)
	assert.True(t, got.LastAttempt.Equal(startTime))
	require.NotNil(t, got.LastSyncTime)
	assert.True(t, got.LastSyncTime.Equal(startTime))

	onDemand, err := svc.GetSyncStatus(ctx, "on-demand")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseFailed, onDemand.Phase, "targets without a policy are left alone")

	// still within the interval
	clock.now = startTime.Add(10 * time.Second)
	c.processSyncJobs(ctx)
}

func TestProcessSyncJobs_IntervalElapsed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	c, _, clock := newTestCoordinator(t, manager)

	manager.EXPECT().Refresh(gomock.Any(), "scheduled", false).
		Return(&sync.BatchResult{CycleID: "c", Timestamp: startTime}, nil).
		Times(2)

	c.processSyncJobs(context.Background())
	clock.now = startTime.Add(30 * time.Second)
	c.processSyncJobs(context.Background())
}

func TestProcessSyncJobs_Failure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	c, svc, clock := newTestCoordinator(t, manager)
	ctx := context.Background()

	failure := &sync.Error{
		Err:     errors.New("disk full"),
		Message: "failed to apply batch of target 'scheduled': disk full",
		Reason:  sync.ReasonStorageFailed,
	}
	manager.EXPECT().Refresh(gomock.Any(), "scheduled", false).Return(nil, failure).Times(2)

	c.processSyncJobs(ctx)
	clock.now = startTime.Add(time.Minute)
	c.processSyncJobs(ctx)

	got, err := svc.GetSyncStatus(ctx, "scheduled")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseFailed, got.Phase)
	assert.Equal(t, failure.Message, got.Message)
	assert.Equal(t, 2, got.AttemptCount)
	assert.Nil(t, got.LastSyncTime)
}

func TestProcessSyncJobs_ClaimError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	svc := statemocks.NewMockTargetStateService(ctrl)

	svc.EXPECT().UpdateStatusAtomically(gomock.Any(), "scheduled", gomock.Any()).
		Return(false, errors.New("connection refused"))
	manager.EXPECT().Refresh(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	c := New(manager, svc, testConfig()).(*defaultCoordinator)
	c.processSyncJobs(context.Background())
}

func TestCoordinator_StartStop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	svc := state.NewFileStateService(status.NewFileStatusPersistence(t.TempDir()))

	synced := make(chan struct{}, 1)
	manager.EXPECT().Refresh(gomock.Any(), "scheduled", false).
		DoAndReturn(func(context.Context, string, bool) (*sync.BatchResult, *sync.Error) {
			select {
			case synced <- struct{}{}:
			default:
			}
			return &sync.BatchResult{CycleID: "c", Timestamp: time.Now()}, nil
		}).
		MinTimes(1)

	c := New(manager, svc, testConfig(), WithPollingInterval(time.Hour))

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Start(context.Background())
	}()

	select {
	case <-synced:
	case <-time.After(5 * time.Second):
		t.Fatal("initial sync did not run")
	}

	require.NoError(t, c.Stop())
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}
}

func TestCoordinator_StartInitializeError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := statemocks.NewMockTargetStateService(ctrl)
	svc.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

	c := New(syncmocks.NewMockManager(ctrl), svc, testConfig())
	err := c.Start(context.Background())
	assert.ErrorContains(t, err, "failed to initialize target sync status")

	assert.NoError(t, c.Stop())
}

func TestCoordinator_StopBeforeStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	c := New(syncmocks.NewMockManager(ctrl), statemocks.NewMockTargetStateService(ctrl), testConfig())
	assert.NoError(t, c.Stop())
}

func TestCalculatePollingInterval(t *testing.T) {
	t.Parallel()

	for range 100 {
		got := calculatePollingInterval(10 * time.Second)
		assert.GreaterOrEqual(t, got, 9*time.Second)
		assert.Less(t, got, 11*time.Second)
	}
	assert.Equal(t, time.Duration(5), calculatePollingInterval(5))
}
