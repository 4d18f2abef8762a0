package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/otel"
	"github.com/stacklok/mbean-bridge/internal/resolver"
	"github.com/stacklok/mbean-bridge/internal/telemetry"
)

// BatchResult is the outcome of one sync cycle.
type BatchResult struct {
	CycleID   string          `json:"cycleId"`
	Target    string          `json:"target"`
	Timestamp time.Time       `json:"timestamp"`
	Rows      []attribute.Row `json:"rows"`
	Warnings  []Warning       `json:"warnings"`
}

// Engine pulls attribute values from one backend.
type Engine struct {
	gateway  backend.Gateway
	resolver *resolver.Resolver
	metrics  *telemetry.SyncMetrics
	tracer   trace.Tracer
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithEngineMetrics records cycle metrics
func WithEngineMetrics(m *telemetry.SyncMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithEngineTracer traces cycles
func WithEngineTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// NewEngine creates an engine reading through gateway with addresses from res.
func NewEngine(gateway backend.Gateway, res *resolver.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{gateway: gateway, resolver: res}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pull reads defs in order and returns the converted rows, all stamped with
// now, together with a warning for every skipped attribute. It fails only
// when ctx ends before the scan completes, in which case no result is returned.
func (e *Engine) Pull(ctx context.Context, target string, defs []attribute.Definition, now time.Time) (*BatchResult, error) {
	result := &BatchResult{
		CycleID:   uuid.NewString(),
		Target:    target,
		Timestamp: now,
		Rows:      make([]attribute.Row, 0, len(defs)),
	}

	ctx, span := otel.StartSpan(ctx, e.tracer, "sync.Pull", trace.WithAttributes(
		otel.AttrTargetName.String(target),
		otel.AttrBackendName.String(e.gateway.Name()),
		otel.AttrCycleID.String(result.CycleID),
	))
	defer span.End()

	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("sync cycle %s of target '%s' interrupted: %w", result.CycleID, target, err)
			otel.RecordError(span, err)
			return nil, err
		}

		value, warning := e.readOne(ctx, def)
		if warning != nil {
			slog.Warn("Attribute skipped",
				"target", target,
				"attribute", warning.Attribute,
				"object", warning.Object,
				"kind", string(warning.Kind),
				"error", warning.Message)
			otel.RecordSkipped(span, def.Name, string(warning.Kind))
			e.metrics.RecordWarning(ctx, target, string(warning.Kind))
			result.Warnings = append(result.Warnings, *warning)
			continue
		}
		result.Rows = append(result.Rows, attribute.Row{Name: def.Name, Timestamp: now, Value: value})
	}

	span.SetAttributes(
		otel.AttrResultCount.Int(len(result.Rows)),
		otel.AttrWarningCount.Int(len(result.Warnings)),
	)
	e.metrics.RecordAttributesRead(ctx, target, len(result.Rows))
	return result, nil
}

// readOne produces the value of one definition or the warning explaining why
// it was skipped.
func (e *Engine) readOne(ctx context.Context, def attribute.Definition) (attribute.Value, *Warning) {
	addr, err := e.resolver.Resolve(ctx, def)
	if err != nil {
		w := newWarning(def.Name, def.Object, WarningAddressUnresolvable, err)
		return nil, &w
	}

	raw, err := e.gateway.GetAttributeValue(ctx, addr.ObjectName, addr.Attribute)
	if err != nil {
		w := newWarning(def.Name, addr.ObjectName, WarningAttributeRead, fmt.Errorf("%w: %w", ErrAttributeRead, err))
		return nil, &w
	}

	// A sub-field only applies to composite values; scalars convert unchanged.
	if addr.HasSubfield && raw.Kind() == backend.KindComposite {
		raw, err = extractSubfield(raw, addr)
		if err != nil {
			w := newWarning(def.Name, addr.ObjectName, WarningAttributeRead, err)
			return nil, &w
		}
	}

	value, err := attribute.Convert(raw, def.Type)
	if err != nil {
		if errors.Is(err, attribute.ErrAbsentValue) {
			w := newWarning(def.Name, addr.ObjectName, WarningAttributeRead, fmt.Errorf("%w: %w", ErrAttributeRead, err))
			return nil, &w
		}
		w := newWarning(def.Name, addr.ObjectName, WarningConversion, fmt.Errorf("%w: %w", ErrConversion, err))
		return nil, &w
	}
	return value, nil
}

func extractSubfield(raw backend.RawValue, addr resolver.Address) (backend.RawValue, error) {
	field, ok := raw.Composite().Field(addr.Subfield)
	if !ok {
		return backend.Null(), fmt.Errorf("%w: composite %s has no field %q",
			ErrAttributeRead, addr.Attribute, addr.Subfield)
	}
	return field, nil
}
