// Package factory creates backend gateways from configuration.
package factory

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/httpclient"
	"github.com/stacklok/mbean-bridge/internal/telemetry"
)

// NewGateway creates the gateway for a backend configuration. Every gateway is
// wrapped in a circuit breaker.
//
// For jolokia backends it returns an HTTP gateway authenticated with the
// configured username and password file.
//
// For static backends it loads the YAML fixture at the configured path.
func NewGateway(cfg *config.BackendConfig, metrics *telemetry.BackendMetrics) (backend.Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backend config cannot be nil")
	}

	var inner backend.Gateway
	switch cfg.GetType() {
	case config.BackendTypeJolokia:
		password, err := cfg.Jolokia.GetPassword()
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", cfg.Name, err)
		}
		var opts []httpclient.Option
		if cfg.Jolokia.Username != "" {
			opts = append(opts, httpclient.WithBasicAuth(cfg.Jolokia.Username, password))
		}
		timeout := cfg.Jolokia.GetTimeout()
		if timeout == 0 {
			timeout = httpclient.DefaultTimeout
		}
		slog.Info("Creating Jolokia backend", "backend", cfg.Name, "url", cfg.Jolokia.URL, "timeout", timeout)
		inner = backend.NewJolokiaGateway(cfg.Name, cfg.Jolokia.URL, httpclient.NewDefaultClient(timeout, opts...))

	case config.BackendTypeStatic:
		slog.Info("Creating static backend", "backend", cfg.Name, "path", cfg.Static.Path)
		static, err := backend.LoadStaticGateway(cfg.Name, cfg.Static.Path)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", cfg.Name, err)
		}
		inner = static

	default:
		return nil, fmt.Errorf("backend %s: unknown backend type", cfg.Name)
	}

	settings := backend.BreakerSettings{Metrics: metrics}
	if cb := cfg.CircuitBreaker; cb != nil {
		settings.MaxFailures = cb.MaxFailures
		if cb.OpenTimeout != "" {
			d, err := time.ParseDuration(cb.OpenTimeout)
			if err != nil {
				return nil, fmt.Errorf("backend %s: invalid circuitBreaker.openTimeout: %w", cfg.Name, err)
			}
			settings.OpenTimeout = d
		}
	}

	return backend.NewGuardedGateway(inner, settings), nil
}

// NewGateways creates one gateway per configured backend, keyed by name.
func NewGateways(cfg *config.Config, metrics *telemetry.BackendMetrics) (map[string]backend.Gateway, error) {
	gateways := make(map[string]backend.Gateway, len(cfg.Backends))
	for i := range cfg.Backends {
		g, err := NewGateway(&cfg.Backends[i], metrics)
		if err != nil {
			return nil, err
		}
		gateways[cfg.Backends[i].Name] = g
	}
	return gateways, nil
}
