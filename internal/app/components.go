package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/mbean-bridge/internal/history"
	"github.com/stacklok/mbean-bridge/internal/service"
	"github.com/stacklok/mbean-bridge/internal/sync/coordinator"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncCoordinator refreshes targets in the background
	SyncCoordinator coordinator.Coordinator

	// BridgeService provides bridge business logic
	BridgeService service.BridgeService

	// History is the property history store, closed on shutdown
	History history.Sink

	// Pool is the database connection pool (optional)
	Pool *pgxpool.Pool
}
