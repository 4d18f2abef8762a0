// Package state contains logic for managing the per-target sync state which
// the server persists.
package state

import (
	"context"
	"errors"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
)

// ErrTargetNotFound is returned when a target has no sync state.
var ErrTargetNotFound = errors.New("target not found")

// TargetStateService provides methods for inspecting and updating the sync
// state of targets.
//
//go:generate mockgen -destination=mocks/mock_target_state_service.go -package=mocks github.com/stacklok/mbean-bridge/internal/sync/state TargetStateService
type TargetStateService interface {
	// Initialize populates the state store with the set of targets.
	// It is intended that this is called at application startup. States of
	// targets no longer configured are removed.
	Initialize(ctx context.Context, targets []config.TargetConfig) error
	// ListSyncStatuses lists all available sync statuses.
	ListSyncStatuses(ctx context.Context) (map[string]*status.SyncStatus, error)
	// GetSyncStatus returns the status of the named target.
	GetSyncStatus(ctx context.Context, target string) (*status.SyncStatus, error)
	// UpdateSyncStatus overrides the status of the named target.
	UpdateSyncStatus(ctx context.Context, target string, syncStatus *status.SyncStatus) error
	// UpdateStatusAtomically fetches the status of a target, applies
	// testAndUpdateFn and stores the result if the function reports a change,
	// all as a single atomic action. The reported change is returned.
	UpdateStatusAtomically(
		ctx context.Context,
		target string,
		testAndUpdateFn func(syncStatus *status.SyncStatus) bool,
	) (bool, error)
}

// initialStatus is the status of a target that has never been synced
func initialStatus(target *config.TargetConfig) *status.SyncStatus {
	s := &status.SyncStatus{
		Phase:   status.SyncPhaseFailed,
		Message: "No previous sync status found",
	}
	if target.SyncPolicy != nil {
		s.SyncSchedule = target.SyncPolicy.Interval
	}
	return s
}
