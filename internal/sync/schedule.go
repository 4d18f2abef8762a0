package sync

import (
	"time"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
)

// Reasons returned by ShouldSync
const (
	ReasonAlreadyInProgress = "sync-already-in-progress"
	ReasonNeverSynced       = "never-synced"
	ReasonIntervalElapsed   = "interval-elapsed"
	ReasonUpToDate          = "up-to-date-with-policy"
	ReasonNoPolicy          = "no-sync-policy"
	ReasonInvalidInterval   = "error-parsing-sync-interval"
)

// ShouldSync decides whether the coordinator should refresh a target now. It
// returns the decision, the reason, and the next time a sync is due (zero when
// the target has no interval).
func ShouldSync(target *config.TargetConfig, syncStatus *status.SyncStatus, now time.Time) (bool, string, time.Time) {
	if syncStatus != nil && syncStatus.Phase == status.SyncPhaseSyncing {
		return false, ReasonAlreadyInProgress, time.Time{}
	}

	if target.SyncPolicy == nil || target.SyncPolicy.Interval == "" {
		return false, ReasonNoPolicy, time.Time{}
	}

	interval, err := time.ParseDuration(target.SyncPolicy.Interval)
	if err != nil || interval <= 0 {
		return false, ReasonInvalidInterval, time.Time{}
	}

	var lastAttempt *time.Time
	if syncStatus != nil {
		lastAttempt = syncStatus.LastAttempt
	}
	if lastAttempt == nil {
		return true, ReasonNeverSynced, now.Add(interval)
	}

	next := lastAttempt.Add(interval)
	if !now.Before(next) {
		return true, ReasonIntervalElapsed, now.Add(interval)
	}
	return false, ReasonUpToDate, next
}
