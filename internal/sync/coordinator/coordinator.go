package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
	pkgsync "github.com/stacklok/mbean-bridge/internal/sync"
	"github.com/stacklok/mbean-bridge/internal/sync/state"
)

// Coordinator manages background synchronization scheduling and execution for multiple targets
type Coordinator interface {
	// Start begins background sync coordination for all targets.
	// Blocks until context is cancelled or an unrecoverable error occurs
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator
	Stop() error
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager pkgsync.Manager
	config  *config.Config

	statusSvc state.TargetStateService

	pollingInterval time.Duration
	now             func() time.Time

	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithPollingInterval sets the base interval between target checks
func WithPollingInterval(interval time.Duration) Option {
	return func(c *defaultCoordinator) {
		if interval > 0 {
			c.pollingInterval = interval
		}
	}
}

// WithClock overrides the clock used for sync decisions
func WithClock(now func() time.Time) Option {
	return func(c *defaultCoordinator) {
		c.now = now
	}
}

// New creates a new coordinator with injected dependencies
func New(
	manager pkgsync.Manager,
	statusSvc state.TargetStateService,
	cfg *config.Config,
	opts ...Option,
) Coordinator {
	c := &defaultCoordinator{
		manager:         manager,
		statusSvc:       statusSvc,
		config:          cfg,
		pollingInterval: DefaultPollingInterval,
		now:             time.Now,
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins background sync coordination for all targets
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting background sync coordinator", "target_count", len(c.config.Targets))

	coordCtx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel
	defer func() {
		close(c.done)
		slog.Info("Background sync coordinator shutting down")
	}()

	if err := c.statusSvc.Initialize(ctx, c.config.Targets); err != nil {
		return fmt.Errorf("failed to initialize target sync status: %w", err)
	}

	interval := calculatePollingInterval(c.pollingInterval)
	slog.Info("Configured coordinator polling interval",
		"base_interval", c.pollingInterval,
		"actual_interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.processSyncJobs(coordCtx)

	for {
		select {
		case <-ticker.C:
			c.processSyncJobs(coordCtx)
			ticker.Reset(calculatePollingInterval(c.pollingInterval))
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	if c.cancelFunc != nil {
		slog.Info("Stopping sync coordinator")
		c.cancelFunc()
		<-c.done
	}
	return nil
}

// processSyncJobs syncs every target whose policy says it is due. Targets are
// processed one after another.
func (c *defaultCoordinator) processSyncJobs(ctx context.Context) {
	for i := range c.config.Targets {
		if ctx.Err() != nil {
			return
		}
		target := &c.config.Targets[i]
		if target.SyncPolicy == nil {
			continue
		}
		if c.claimTarget(ctx, target) {
			c.performTargetSync(ctx, target)
		}
	}
}

// claimTarget moves a due target into the Syncing phase. The status update is
// atomic, so only one server claims a target sharing a database.
func (c *defaultCoordinator) claimTarget(ctx context.Context, target *config.TargetConfig) bool {
	claimed, err := c.statusSvc.UpdateStatusAtomically(ctx, target.Name, func(syncStatus *status.SyncStatus) bool {
		now := c.now()
		shouldSync, reason, _ := pkgsync.ShouldSync(target, syncStatus, now)
		if !shouldSync {
			slog.Debug("Target does not need sync", "target", target.Name, "reason", reason)
			return false
		}
		syncStatus.Phase = status.SyncPhaseSyncing
		syncStatus.Message = "Sync in progress"
		syncStatus.LastAttempt = &now
		syncStatus.AttemptCount++
		return true
	})
	if err != nil {
		slog.Error("Error claiming sync job", "target", target.Name, "error", err)
		return false
	}
	return claimed
}

// performTargetSync refreshes a claimed target and records the outcome
func (c *defaultCoordinator) performTargetSync(ctx context.Context, target *config.TargetConfig) {
	targetName := target.Name
	slog.Info("Starting sync operation", "target", targetName)

	// The status is finalized even when the context was cancelled mid-sync.
	finalCtx := context.WithoutCancel(ctx)

	result, syncErr := c.manager.Refresh(ctx, targetName, false)

	_, err := c.statusSvc.UpdateStatusAtomically(finalCtx, targetName, func(syncStatus *status.SyncStatus) bool {
		if syncErr != nil {
			syncStatus.Phase = status.SyncPhaseFailed
			syncStatus.Message = syncErr.Message
			return true
		}

		syncStatus.Phase = status.SyncPhaseComplete
		syncStatus.Message = "Sync completed successfully"
		if n := len(result.Warnings); n > 0 {
			syncStatus.Message = fmt.Sprintf("Sync completed with %d warnings", n)
		}
		lastSync := result.Timestamp
		syncStatus.LastSyncTime = &lastSync
		syncStatus.LastCycleID = result.CycleID
		syncStatus.RowCount = len(result.Rows)
		syncStatus.WarningCount = len(result.Warnings)
		syncStatus.AttemptCount = 0
		return true
	})
	if err != nil {
		slog.Error("Error updating sync status", "target", targetName, "error", err)
	}

	if syncErr != nil {
		slog.Error("Sync failed",
			"target", targetName,
			"reason", syncErr.Reason,
			"error", syncErr.Message)
		return
	}
	slog.Info("Sync completed",
		"target", targetName,
		"cycle_id", result.CycleID,
		"rows", len(result.Rows),
		"warnings", len(result.Warnings))
}
