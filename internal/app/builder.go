package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/mbean-bridge/database"
	"github.com/stacklok/mbean-bridge/internal/api"
	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/backend/factory"
	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/db"
	"github.com/stacklok/mbean-bridge/internal/history"
	"github.com/stacklok/mbean-bridge/internal/resolver"
	"github.com/stacklok/mbean-bridge/internal/service"
	"github.com/stacklok/mbean-bridge/internal/status"
	"github.com/stacklok/mbean-bridge/internal/store"
	pkgsync "github.com/stacklok/mbean-bridge/internal/sync"
	"github.com/stacklok/mbean-bridge/internal/sync/coordinator"
	"github.com/stacklok/mbean-bridge/internal/sync/state"
	"github.com/stacklok/mbean-bridge/internal/telemetry"
)

const (
	defaultDataDir         = "./data"
	defaultHTTPAddress     = ":8080"
	defaultRequestTimeout  = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultBackendWaitTime = 30 * time.Second

	// TracerName is the name of the tracer used by sync and service components
	TracerName = "github.com/stacklok/mbean-bridge"
)

// BridgeAppOptions is a function that configures the bridge app builder
type BridgeAppOptions func(*bridgeAppConfig) error

// bridgeAppConfig collects the options of NewBridgeApp.
// It supports dependency injection for testing while providing sensible defaults for production
type bridgeAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	gateways    map[string]backend.Gateway
	syncManager pkgsync.Manager

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// dataDir holds sync status files and target lock files
	dataDir string

	// backendWait bounds how long startup waits for unreachable backends
	backendWait time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...BridgeAppOptions) (*bridgeAppConfig, error) {
	cfg := &bridgeAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		dataDir:        defaultDataDir,
		backendWait:    defaultBackendWaitTime,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return cfg, nil
}

// NewBridgeApp wires every component from the configuration
func NewBridgeApp(
	ctx context.Context,
	opts ...BridgeAppOptions,
) (*BridgeApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components := &AppComponents{}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			components.close()
		}
	}()

	if cfg.config.GetStorageType() == config.StorageTypeDatabase {
		components.Pool, err = buildDatabase(ctx, cfg.config)
		if err != nil {
			return nil, fmt.Errorf("failed to build database: %w", err)
		}
	}

	components.History, err = history.NewSink(cfg.config)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	gateways, resolvers, err := buildBackendComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend components: %w", err)
	}

	sink, err := store.NewPropertySink(cfg.config, components.Pool)
	if err != nil {
		return nil, fmt.Errorf("failed to create property sink: %w", err)
	}
	definitions := store.NewStaticDefinitions(cfg.config.Targets)

	stateService, err := state.NewStateService(
		cfg.config,
		status.NewFileStatusPersistence(cfg.dataDir),
		components.Pool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create state service: %w", err)
	}

	components.SyncCoordinator, err = buildSyncComponents(cfg, gateways, resolvers, definitions, sink, components.History, stateService)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	components.BridgeService, err = service.New(
		service.WithGateways(gateways),
		service.WithResolvers(resolvers),
		service.WithMacros(macrosFromConfig(cfg.config)),
		service.WithTargets(cfg.config.Targets),
		service.WithManager(cfg.syncManager),
		service.WithDefinitions(definitions),
		service.WithSink(sink),
		service.WithStateService(stateService),
		service.WithHistory(components.History),
		service.WithTracer(cfg.tracer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge service: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, components.BridgeService)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	// Cleanup is now handled by the app, not in defer
	cleanupNeeded = false

	return &BridgeApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		parts := strings.SplitN(addr, ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		host, port := parts[0], parts[1]
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithDataDirectory sets the directory for status and lock files
func WithDataDirectory(dir string) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		if dir == "" {
			return fmt.Errorf("data directory cannot be empty")
		}
		cfg.dataDir = dir
		return nil
	}
}

// WithBackendWait bounds how long startup retries unreachable backends.
// Zero disables waiting.
func WithBackendWait(d time.Duration) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		if d < 0 {
			return fmt.Errorf("backend wait cannot be negative")
		}
		cfg.backendWait = d
		return nil
	}
}

// WithGateways allows injecting backend gateways (for testing)
func WithGateways(gateways map[string]backend.Gateway) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		cfg.gateways = gateways
		return nil
	}
}

// WithSyncManager allows injecting a custom sync manager (for testing)
func WithSyncManager(sm pkgsync.Manager) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		cfg.syncManager = sm
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for sync, backend and HTTP metrics
func WithMeterProvider(mp metric.MeterProvider) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler exposes h at /metrics
func WithMetricsHandler(h http.Handler) BridgeAppOptions {
	return func(cfg *bridgeAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

func (b *bridgeAppConfig) tracer() trace.Tracer {
	if b.tracerProvider == nil {
		return nil
	}
	return b.tracerProvider.Tracer(TracerName)
}

// buildDatabase connects to PostgreSQL and applies pending migrations
func buildDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	slog.Info("Initializing database storage")

	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		return nil, err
	}
	if err := database.MigrateUp(connString); err != nil {
		return nil, err
	}

	return db.NewPool(ctx, cfg.Database)
}

// buildBackendComponents creates one gateway and one resolver per backend
func buildBackendComponents(
	ctx context.Context,
	b *bridgeAppConfig,
) (map[string]backend.Gateway, map[string]*resolver.Resolver, error) {
	slog.Info("Initializing backend components", "backend_count", len(b.config.Backends))

	gateways := b.gateways
	if gateways == nil {
		var backendMetrics *telemetry.BackendMetrics
		if b.meterProvider != nil {
			m, err := telemetry.NewBackendMetrics(b.meterProvider)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create backend metrics: %w", err)
			}
			backendMetrics = m
		}

		var err error
		gateways, err = factory.NewGateways(b.config, backendMetrics)
		if err != nil {
			return nil, nil, err
		}
	}

	for name, g := range gateways {
		waitForBackend(ctx, name, g, b.backendWait)
	}

	macros := macrosFromConfig(b.config)
	resolvers := make(map[string]*resolver.Resolver, len(gateways))
	for name, g := range gateways {
		resolvers[name] = resolver.New(g, macros)
	}
	return gateways, resolvers, nil
}

// waitForBackend retries the reachability probe with exponential backoff.
// An unreachable backend does not fail startup: its targets report errors
// until it comes back.
func waitForBackend(ctx context.Context, name string, g backend.Gateway, maxWait time.Duration) {
	if maxWait <= 0 {
		return
	}

	probe := func() (struct{}, error) {
		_, err := g.ListObjects(ctx, backend.ProbeObjectName)
		return struct{}{}, err
	}
	notify := func(err error, next time.Duration) {
		slog.Warn("Backend not reachable yet", "backend", name, "error", err, "retry_in", next)
	}

	_, err := backoff.Retry(ctx, probe,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxWait),
		backoff.WithNotify(notify),
	)
	if err != nil {
		slog.Error("Backend unreachable, continuing startup", "backend", name, "error", err)
		return
	}
	slog.Info("Backend reachable", "backend", name)
}

// buildSyncComponents builds the engines, sync manager and coordinator
func buildSyncComponents(
	b *bridgeAppConfig,
	gateways map[string]backend.Gateway,
	resolvers map[string]*resolver.Resolver,
	definitions store.DefinitionSource,
	sink store.PropertySink,
	historySink history.Sink,
	stateService state.TargetStateService,
) (coordinator.Coordinator, error) {
	slog.Info("Initializing sync components")

	var syncMetrics *telemetry.SyncMetrics
	if b.meterProvider != nil {
		m, err := telemetry.NewSyncMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create sync metrics: %w", err)
		}
		if m != nil {
			syncMetrics = m
			slog.Info("Sync metrics enabled")
		}
	}
	tracer := b.tracer()

	if b.syncManager == nil {
		// Engines are shared by every target of the same backend
		byBackend := make(map[string]*pkgsync.Engine, len(gateways))
		engines := make(map[string]*pkgsync.Engine, len(b.config.Targets))
		for _, target := range b.config.Targets {
			engine, ok := byBackend[target.Backend]
			if !ok {
				g, found := gateways[target.Backend]
				if !found {
					return nil, fmt.Errorf("target %s references unknown backend %s", target.Name, target.Backend)
				}
				engine = pkgsync.NewEngine(g, resolvers[target.Backend],
					pkgsync.WithEngineMetrics(syncMetrics),
					pkgsync.WithEngineTracer(tracer),
				)
				byBackend[target.Backend] = engine
			}
			engines[target.Name] = engine
		}

		b.syncManager = pkgsync.NewManager(engines, definitions, sink,
			pkgsync.WithHistory(historySink),
			pkgsync.WithLocker(store.NewTargetLocker(filepath.Join(b.dataDir, "locks"))),
			pkgsync.WithMetrics(syncMetrics),
			pkgsync.WithTracer(tracer),
		)
	}

	syncCoordinator := coordinator.New(b.syncManager, stateService, b.config)
	slog.Info("Sync components initialized successfully")

	return syncCoordinator, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(
	b *bridgeAppConfig,
	svc service.BridgeService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Telemetry goes first to capture every request
	if b.tracerProvider != nil || b.meterProvider != nil {
		telemetryMiddleware, err := telemetry.HTTPMiddleware(b.tracerProvider, b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create telemetry middleware: %w", err)
		}
		b.middlewares = append([]func(http.Handler) http.Handler{telemetryMiddleware}, b.middlewares...)
		slog.Info("HTTP telemetry middleware enabled",
			"tracing", b.tracerProvider != nil,
			"metrics", b.meterProvider != nil)
	}

	router := api.NewServer(svc,
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}

func macrosFromConfig(cfg *config.Config) []resolver.Macro {
	configured := cfg.GetMacros()
	macros := make([]resolver.Macro, 0, len(configured))
	for _, m := range configured {
		macros = append(macros, resolver.Macro{Token: m.Token, Pattern: m.Pattern})
	}
	return macros
}
