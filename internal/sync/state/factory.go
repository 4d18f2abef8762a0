package state

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/status"
)

// NewStateService creates a TargetStateService based on the configured storage type.
//
// For file-based storage, it returns a file service that uses the provided
// StatusPersistence for persisting sync status to disk.
//
// For database storage, it returns a service that stores sync status in the
// target_sync table. The pool parameter must not be nil when database storage
// is configured.
func NewStateService(
	cfg *config.Config,
	statusPersistence status.StatusPersistence,
	pool *pgxpool.Pool,
) (TargetStateService, error) {
	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		if pool == nil {
			return nil, fmt.Errorf("database pool is required when storage type is database")
		}
		return NewDBStateService(pool), nil
	default:
		return NewFileStateService(statusPersistence), nil
	}
}
