package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
)

type fileStateService struct {
	statusPersistence status.StatusPersistence

	mu             sync.RWMutex
	cachedStatuses map[string]*status.SyncStatus
}

// NewFileStateService creates a new file-based target state service
func NewFileStateService(statusPersistence status.StatusPersistence) TargetStateService {
	return &fileStateService{
		statusPersistence: statusPersistence,
		cachedStatuses:    make(map[string]*status.SyncStatus),
	}
}

func (f *fileStateService) Initialize(ctx context.Context, targets []config.TargetConfig) error {
	loaded := make(map[string]*status.SyncStatus, len(targets))
	for i := range targets {
		loaded[targets[i].Name] = f.loadOrInitializeTargetStatus(ctx, &targets[i])
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cachedStatuses = loaded
	return nil
}

func (f *fileStateService) ListSyncStatuses(_ context.Context) (map[string]*status.SyncStatus, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make(map[string]*status.SyncStatus, len(f.cachedStatuses))
	for name, syncStatus := range f.cachedStatuses {
		statusCopy := *syncStatus
		result[name] = &statusCopy
	}
	return result, nil
}

func (f *fileStateService) GetSyncStatus(_ context.Context, target string) (*status.SyncStatus, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	syncStatus, exists := f.cachedStatuses[target]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	statusCopy := *syncStatus
	return &statusCopy, nil
}

func (f *fileStateService) UpdateStatusAtomically(
	ctx context.Context,
	target string,
	testAndUpdateFn func(syncStatus *status.SyncStatus) bool,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, exists := f.cachedStatuses[target]
	if !exists {
		return false, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}

	syncStatus := *current
	if !testAndUpdateFn(&syncStatus) {
		return false, nil
	}
	if err := f.statusPersistence.SaveStatus(ctx, target, &syncStatus); err != nil {
		return false, err
	}
	f.cachedStatuses[target] = &syncStatus
	return true, nil
}

func (f *fileStateService) UpdateSyncStatus(ctx context.Context, target string, syncStatus *status.SyncStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.statusPersistence.SaveStatus(ctx, target, syncStatus); err != nil {
		return err
	}
	statusCopy := *syncStatus
	f.cachedStatuses[target] = &statusCopy
	return nil
}

// loadOrInitializeTargetStatus loads the persisted status of a target. The
// file store assumes a single process owns it, so a status left in Syncing
// means the previous run was interrupted.
func (f *fileStateService) loadOrInitializeTargetStatus(ctx context.Context, target *config.TargetConfig) *status.SyncStatus {
	syncStatus, err := f.statusPersistence.LoadStatus(ctx, target.Name)
	if err != nil {
		slog.Warn("Failed to load sync status, initializing with defaults",
			"target", target.Name,
			"error", err)
		syncStatus = &status.SyncStatus{}
	}

	fresh := initialStatus(target)
	changed := syncStatus.SyncSchedule != fresh.SyncSchedule
	syncStatus.SyncSchedule = fresh.SyncSchedule

	switch {
	case syncStatus.Phase == "" && syncStatus.LastSyncTime == nil:
		slog.Info("No previous sync status found, initializing with defaults", "target", target.Name)
		syncStatus = fresh
		changed = true
	case syncStatus.Phase == status.SyncPhaseSyncing:
		slog.Warn("Previous sync was interrupted, resetting to Failed", "target", target.Name)
		syncStatus.Phase = status.SyncPhaseFailed
		syncStatus.Message = "Previous sync was interrupted"
		changed = true
	}

	if changed {
		if err := f.statusPersistence.SaveStatus(ctx, target.Name, syncStatus); err != nil {
			slog.Warn("Failed to persist sync status", "target", target.Name, "error", err)
		}
	}

	if syncStatus.LastSyncTime != nil {
		slog.Info("Loaded sync status",
			"target", target.Name,
			"phase", syncStatus.Phase,
			"last_sync", syncStatus.LastSyncTime.Format(time.RFC3339),
			"rows", syncStatus.RowCount)
	} else {
		slog.Info("Sync status loaded, no previous sync", "target", target.Name, "phase", syncStatus.Phase)
	}
	return syncStatus
}
