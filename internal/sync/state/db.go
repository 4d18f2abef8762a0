package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
)

const (
	initializeTargetSQL = `
INSERT INTO target_sync (target_id, phase, message, sync_schedule)
VALUES ($1, $2, $3, $4)
ON CONFLICT (target_id) DO UPDATE SET sync_schedule = EXCLUDED.sync_schedule`

	deleteTargetsNotInListSQL = `DELETE FROM target_sync WHERE NOT (target_id = ANY($1))`

	selectSyncColumns = `
SELECT target_id, phase, message, last_attempt, attempt_count, last_sync_time,
       last_cycle_id, row_count, warning_count, sync_schedule
FROM target_sync`

	upsertSyncSQL = `
INSERT INTO target_sync (target_id, phase, message, last_attempt, attempt_count, last_sync_time,
                         last_cycle_id, row_count, warning_count, sync_schedule)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (target_id) DO UPDATE SET
    phase = EXCLUDED.phase,
    message = EXCLUDED.message,
    last_attempt = EXCLUDED.last_attempt,
    attempt_count = EXCLUDED.attempt_count,
    last_sync_time = EXCLUDED.last_sync_time,
    last_cycle_id = EXCLUDED.last_cycle_id,
    row_count = EXCLUDED.row_count,
    warning_count = EXCLUDED.warning_count,
    sync_schedule = EXCLUDED.sync_schedule`
)

type dbStateService struct {
	pool *pgxpool.Pool
}

// NewDBStateService creates a new database-backed target state service.
// Several servers may share the table; a sync in progress is never reset on
// startup since another server may own it.
func NewDBStateService(pool *pgxpool.Pool) TargetStateService {
	return &dbStateService{pool: pool}
}

func (d *dbStateService) Initialize(ctx context.Context, targets []config.TargetConfig) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	names := make([]string, 0, len(targets))
	for i := range targets {
		initial := initialStatus(&targets[i])
		if _, err := tx.Exec(ctx, initializeTargetSQL,
			targets[i].Name, string(initial.Phase), initial.Message, nullString(initial.SyncSchedule),
		); err != nil {
			return fmt.Errorf("failed to initialize target '%s': %w", targets[i].Name, err)
		}
		names = append(names, targets[i].Name)
	}

	if _, err := tx.Exec(ctx, deleteTargetsNotInListSQL, names); err != nil {
		return fmt.Errorf("failed to remove stale targets: %w", err)
	}
	return tx.Commit(ctx)
}

func (d *dbStateService) ListSyncStatuses(ctx context.Context) (map[string]*status.SyncStatus, error) {
	rows, err := d.pool.Query(ctx, selectSyncColumns+` ORDER BY target_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]*status.SyncStatus)
	for rows.Next() {
		name, syncStatus, err := scanSyncStatus(rows)
		if err != nil {
			return nil, err
		}
		result[name] = syncStatus
	}
	return result, rows.Err()
}

func (d *dbStateService) GetSyncStatus(ctx context.Context, target string) (*status.SyncStatus, error) {
	_, syncStatus, err := scanSyncStatus(d.pool.QueryRow(ctx, selectSyncColumns+` WHERE target_id = $1`, target))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	return syncStatus, err
}

func (d *dbStateService) UpdateSyncStatus(ctx context.Context, target string, syncStatus *status.SyncStatus) error {
	_, err := d.pool.Exec(ctx, upsertSyncSQL, upsertArgs(target, syncStatus)...)
	return err
}

func (d *dbStateService) UpdateStatusAtomically(
	ctx context.Context,
	target string,
	testAndUpdateFn func(syncStatus *status.SyncStatus) bool,
) (bool, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, syncStatus, err := scanSyncStatus(tx.QueryRow(ctx, selectSyncColumns+` WHERE target_id = $1 FOR UPDATE`, target))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
		}
		return false, err
	}

	shouldUpdate := testAndUpdateFn(syncStatus)
	if shouldUpdate {
		if _, err := tx.Exec(ctx, upsertSyncSQL, upsertArgs(target, syncStatus)...); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return shouldUpdate, nil
}

func scanSyncStatus(row pgx.Row) (string, *status.SyncStatus, error) {
	var (
		name                  string
		phase                 string
		message, cycleID      *string
		schedule              *string
		lastAttempt, lastSync *time.Time
		attempts, rowCount    int32
		warnings              int32
	)
	if err := row.Scan(&name, &phase, &message, &lastAttempt, &attempts, &lastSync,
		&cycleID, &rowCount, &warnings, &schedule); err != nil {
		return "", nil, err
	}

	syncStatus := &status.SyncStatus{
		Phase:        status.SyncPhase(phase),
		LastAttempt:  lastAttempt,
		AttemptCount: int(attempts),
		LastSyncTime: lastSync,
		RowCount:     int(rowCount),
		WarningCount: int(warnings),
	}
	if message != nil {
		syncStatus.Message = *message
	}
	if cycleID != nil {
		syncStatus.LastCycleID = *cycleID
	}
	if schedule != nil {
		syncStatus.SyncSchedule = *schedule
	}
	return name, syncStatus, nil
}

func upsertArgs(target string, s *status.SyncStatus) []any {
	return []any{
		target,
		string(s.Phase),
		nullString(s.Message),
		s.LastAttempt,
		int32(s.AttemptCount), //nolint:gosec // attempt counts are small
		s.LastSyncTime,
		nullString(s.LastCycleID),
		int32(s.RowCount),     //nolint:gosec // row counts are bounded by the definitions
		int32(s.WarningCount), //nolint:gosec // as above
		nullString(s.SyncSchedule),
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
