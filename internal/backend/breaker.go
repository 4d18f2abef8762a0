package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/stacklok/mbean-bridge/internal/telemetry"
)

const (
	// DefaultBreakerMaxFailures is the number of consecutive failures that opens the breaker
	DefaultBreakerMaxFailures = 5

	// DefaultBreakerOpenTimeout is how long the breaker stays open before probing again
	DefaultBreakerOpenTimeout = 30 * time.Second

	breakerHalfOpenRequests = 1
)

// ErrBackendUnavailable is returned while the breaker of a backend is open.
var ErrBackendUnavailable = errors.New("backend unavailable")

// BreakerSettings configures a GuardedGateway.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
	Metrics     *telemetry.BackendMetrics
}

// GuardedGateway decorates a Gateway with a circuit breaker and request metrics.
// Missing objects and attributes are answers, not backend faults, and never
// trip the breaker. Calls are never retried.
type GuardedGateway struct {
	inner   Gateway
	cb      *gobreaker.CircuitBreaker[any]
	metrics *telemetry.BackendMetrics
}

// NewGuardedGateway wraps inner with a circuit breaker.
func NewGuardedGateway(inner Gateway, settings BreakerSettings) *GuardedGateway {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultBreakerMaxFailures
	}
	openTimeout := settings.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = DefaultBreakerOpenTimeout
	}

	g := &GuardedGateway{inner: inner, metrics: settings.Metrics}
	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: breakerHalfOpenRequests,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrAttributeNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Backend circuit breaker state changed",
				"backend", name,
				"from", from.String(),
				"to", to.String())
			g.metrics.RecordBreakerState(context.Background(), name, int64(to))
		},
	})
	return g
}

// Name returns the configured backend name
func (g *GuardedGateway) Name() string {
	return g.inner.Name()
}

// State returns the current breaker state
func (g *GuardedGateway) State() gobreaker.State {
	return g.cb.State()
}

// ListObjects implements Gateway
func (g *GuardedGateway) ListObjects(ctx context.Context, pattern string) ([]string, error) {
	result, err := g.execute(ctx, "list", func() (any, error) {
		return g.inner.ListObjects(ctx, pattern)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// DescribeObject implements Gateway
func (g *GuardedGateway) DescribeObject(ctx context.Context, objectName string) (*ObjectInfo, error) {
	result, err := g.execute(ctx, "describe", func() (any, error) {
		return g.inner.DescribeObject(ctx, objectName)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ObjectInfo), nil
}

// GetAttributeValue implements Gateway
func (g *GuardedGateway) GetAttributeValue(ctx context.Context, objectName, attribute string) (RawValue, error) {
	result, err := g.execute(ctx, "read", func() (any, error) {
		return g.inner.GetAttributeValue(ctx, objectName, attribute)
	})
	if err != nil {
		return Null(), err
	}
	return result.(RawValue), nil
}

func (g *GuardedGateway) execute(ctx context.Context, operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := g.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %w", g.inner.Name(), ErrBackendUnavailable, err)
	}
	g.metrics.RecordRequest(ctx, g.inner.Name(), operation, time.Since(start), err == nil)
	return result, err
}
