package store

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/mbean-bridge/internal/config"
)

// NewPropertySink creates the PropertySink for the configured storage type.
// The pool must not be nil when database storage is configured.
func NewPropertySink(cfg *config.Config, pool *pgxpool.Pool) (PropertySink, error) {
	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		if pool == nil {
			return nil, fmt.Errorf("database pool is required when storage type is database")
		}
		return NewDBSink(pool), nil
	default:
		return NewFileSink(cfg.GetFileStorageBaseDir()), nil
	}
}
