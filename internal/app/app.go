// Package app provides application lifecycle management for the bridge server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/mbean-bridge/internal/config"
)

// BridgeApp encapsulates all components needed to run the bridge API server
// It provides lifecycle management and graceful shutdown capabilities
type BridgeApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the application components (HTTP server and background sync)
// This method blocks until the HTTP server stops or encounters an error
func (app *BridgeApp) Start() error {
	go func() {
		if err := app.components.SyncCoordinator.Start(app.ctx); err != nil {
			slog.Error("Sync coordinator failed", "error", err)
		}
	}()

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout
// It stops the sync coordinator, shuts down the HTTP server and then
// releases the stores
func (app *BridgeApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if err := app.components.SyncCoordinator.Stop(); err != nil {
		slog.Error("Failed to stop sync coordinator", "error", err)
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	app.components.close()
	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *BridgeApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *BridgeApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// GetComponents returns the wired application components
func (app *BridgeApp) GetComponents() *AppComponents {
	return app.components
}

func (c *AppComponents) close() {
	if c.History != nil {
		if err := c.History.Close(); err != nil {
			slog.Error("Failed to close history store", "error", err)
		}
		c.History = nil
	}
	if c.Pool != nil {
		c.Pool.Close()
		c.Pool = nil
	}
}

// Close releases the stores without starting or stopping the server. It is
// used by one-shot commands.
func (app *BridgeApp) Close() {
	if app.cancelFunc != nil {
		app.cancelFunc()
	}
	app.components.close()
}
