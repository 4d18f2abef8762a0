package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	bridge "github.com/stacklok/mbean-bridge/internal/app"
	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/telemetry"
)

const defaultGracefulTimeout = 30 * time.Second // Kubernetes-friendly shutdown time

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bridge API server",
		Long: `Start the bridge API server and the background refresh of every target.

The server requires a configuration file (--config) that specifies:
- Backends (Jolokia agents or static fixtures) and macros
- Targets with their attribute definitions and sync policy
- Property storage (files or PostgreSQL), history and telemetry

Every flag can also be set through an MBEAN_BRIDGE_ prefixed environment
variable, e.g. MBEAN_BRIDGE_ADDRESS. See examples/ for sample configurations.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("data-dir", "./data", "Directory for sync status and lock files")
	cmd.Flags().Duration("backend-wait", 30*time.Second, "How long startup retries unreachable backends (0 disables)")
	addConfigFlag(cmd, false)

	return cmd
}

// flagValues reads flags with an environment fallback
func flagValues(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	v, err := flagValues(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	app, err := bridge.NewBridgeApp(ctx,
		bridge.WithConfig(cfg),
		bridge.WithAddress(v.GetString("address")),
		bridge.WithDataDirectory(v.GetString("data-dir")),
		bridge.WithBackendWait(v.GetDuration("backend-wait")),
		bridge.WithMeterProvider(tel.MeterProvider()),
		bridge.WithTracerProvider(tel.TracerProvider()),
		bridge.WithMetricsHandler(tel.MetricsHandler()),
	)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		app.Close()
		return err
	case <-quit:
	}

	return app.Stop(defaultGracefulTimeout)
}
