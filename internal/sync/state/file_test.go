package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
)

func testTargets() []config.TargetConfig {
	return []config.TargetConfig{
		{Name: "server-1", SyncPolicy: &config.SyncPolicyConfig{Interval: "30s"}},
		{Name: "server-2"},
	}
}

func TestFileStateService_Initialize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persistence := status.NewFileStatusPersistence(t.TempDir())

	svc := NewFileStateService(persistence)
	require.NoError(t, svc.Initialize(ctx, testTargets()))

	statuses, err := svc.ListSyncStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, status.SyncPhaseFailed, statuses["server-1"].Phase)
	assert.Equal(t, "No previous sync status found", statuses["server-1"].Message)
	assert.Equal(t, "30s", statuses["server-1"].SyncSchedule)
	assert.Empty(t, statuses["server-2"].SyncSchedule)

	// defaults are persisted
	saved, err := persistence.LoadStatus(ctx, "server-1")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseFailed, saved.Phase)

	_, err = svc.GetSyncStatus(ctx, "unknown")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestFileStateService_InterruptedSyncIsReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persistence := status.NewFileStatusPersistence(t.TempDir())
	last := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, persistence.SaveStatus(ctx, "server-1", &status.SyncStatus{
		Phase:        status.SyncPhaseSyncing,
		LastSyncTime: &last,
		RowCount:     4,
	}))

	svc := NewFileStateService(persistence)
	require.NoError(t, svc.Initialize(ctx, testTargets()))

	got, err := svc.GetSyncStatus(ctx, "server-1")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseFailed, got.Phase)
	assert.Equal(t, "Previous sync was interrupted", got.Message)
	assert.Equal(t, 4, got.RowCount)
	assert.Equal(t, "30s", got.SyncSchedule)
}

func TestFileStateService_Updates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	svc := NewFileStateService(status.NewFileStatusPersistence(dir))
	require.NoError(t, svc.Initialize(ctx, testTargets()))

	updated, err := svc.UpdateStatusAtomically(ctx, "server-1", func(s *status.SyncStatus) bool {
		if s.Phase == status.SyncPhaseSyncing {
			return false
		}
		s.Phase = status.SyncPhaseSyncing
		s.AttemptCount++
		return true
	})
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = svc.UpdateStatusAtomically(ctx, "server-1", func(s *status.SyncStatus) bool {
		return s.Phase != status.SyncPhaseSyncing
	})
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = svc.UpdateStatusAtomically(ctx, "unknown", func(*status.SyncStatus) bool { return true })
	assert.ErrorIs(t, err, ErrTargetNotFound)

	// returned statuses are copies
	got, err := svc.GetSyncStatus(ctx, "server-1")
	require.NoError(t, err)
	got.Phase = status.SyncPhaseComplete
	again, err := svc.GetSyncStatus(ctx, "server-1")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseSyncing, again.Phase)
	assert.Equal(t, 1, again.AttemptCount)

	now := time.Now().UTC()
	require.NoError(t, svc.UpdateSyncStatus(ctx, "server-1", &status.SyncStatus{
		Phase:        status.SyncPhaseComplete,
		LastSyncTime: &now,
		LastCycleID:  "cycle-1",
		RowCount:     3,
	}))

	reloaded, err := status.NewFileStatusPersistence(dir).LoadStatus(ctx, "server-1")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseComplete, reloaded.Phase)
	assert.Equal(t, "cycle-1", reloaded.LastCycleID)
	assert.Equal(t, 3, reloaded.RowCount)
}

func TestNewStateService(t *testing.T) {
	t.Parallel()

	svc, err := NewStateService(&config.Config{}, status.NewFileStatusPersistence(t.TempDir()), nil)
	require.NoError(t, err)
	assert.IsType(t, &fileStateService{}, svc)

	_, err = NewStateService(&config.Config{Database: &config.DatabaseConfig{Host: "localhost"}}, nil, nil)
	assert.ErrorContains(t, err, "database pool is required")
}
