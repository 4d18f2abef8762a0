package status

import "time"

// SyncPhase represents the current phase of a target synchronization
type SyncPhase string

const (
	// SyncPhaseSyncing means a sync cycle is in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last sync cycle applied its batch
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last sync cycle applied nothing
	SyncPhaseFailed SyncPhase = "Failed"
)

// SyncStatus represents the synchronization state of one target
type SyncStatus struct {
	// Phase represents the current synchronization phase
	Phase SyncPhase `json:"phase"`

	// Message provides additional information about the sync status
	Message string `json:"message,omitempty"`

	// LastAttempt is the timestamp of the last sync attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of failed attempts since the last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSyncTime is the capture timestamp of the last applied batch
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// LastCycleID identifies the last applied sync cycle
	LastCycleID string `json:"lastCycleId,omitempty"`

	// RowCount is the number of rows in the last applied batch
	RowCount int `json:"rowCount"`

	// WarningCount is the number of skipped attributes in the last cycle
	WarningCount int `json:"warningCount"`

	// SyncSchedule is the configured sync interval, empty for on-demand targets
	SyncSchedule string `json:"syncSchedule,omitempty"`
}
