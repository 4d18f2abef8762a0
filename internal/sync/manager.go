package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/history"
	"github.com/stacklok/mbean-bridge/internal/otel"
	"github.com/stacklok/mbean-bridge/internal/store"
	"github.com/stacklok/mbean-bridge/internal/telemetry"
)

// DemandReadResult is the outcome of a demand read.
type DemandReadResult struct {
	// State is the stored state after the read, nil when the property was never written
	State *attribute.State `json:"-"`

	// Refreshed reports whether the backend was read
	Refreshed bool `json:"refreshed"`

	// Warning is set when the backend read was skipped with a warning
	Warning *Warning `json:"warning,omitempty"`
}

// HistoryResult is the outcome of recording logged properties.
type HistoryResult struct {
	Timestamp time.Time    `json:"timestamp"`
	Count     int          `json:"count"`
	Refresh   *BatchResult `json:"refresh,omitempty"`
}

// Manager runs sync operations for targets
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/mbean-bridge/internal/sync Manager
type Manager interface {
	// Refresh pulls the due attributes of a target, or all of them when
	// ignoreCache is set, and applies the batch
	Refresh(ctx context.Context, target string, ignoreCache bool) (*BatchResult, *Error)

	// DemandRead returns the current value of one property, reading the
	// backend first when the cache policy says the value is stale
	DemandRead(ctx context.Context, target, name string) (*DemandReadResult, *Error)

	// WriteLoggedToHistory appends the current value of every logged property
	// to history with one shared timestamp, optionally refreshing first
	WriteLoggedToHistory(ctx context.Context, target string, forceRefresh bool) (*HistoryResult, *Error)
}

// Locker serializes work per target
type Locker interface {
	Lock(ctx context.Context, target string) (func(), error)
}

type defaultManager struct {
	engines     map[string]*Engine
	definitions store.DefinitionSource
	sink        store.PropertySink
	history     history.Sink
	locker      Locker
	metrics     *telemetry.SyncMetrics
	tracer      trace.Tracer
	now         func() time.Time
}

// ManagerOption configures the default manager
type ManagerOption func(*defaultManager)

// WithHistory forwards logged properties to h
func WithHistory(h history.Sink) ManagerOption {
	return func(m *defaultManager) {
		m.history = h
	}
}

// WithLocker replaces the in-process locker
func WithLocker(l Locker) ManagerOption {
	return func(m *defaultManager) {
		m.locker = l
	}
}

// WithMetrics records sync metrics
func WithMetrics(metrics *telemetry.SyncMetrics) ManagerOption {
	return func(m *defaultManager) {
		m.metrics = metrics
	}
}

// WithTracer traces manager operations
func WithTracer(t trace.Tracer) ManagerOption {
	return func(m *defaultManager) {
		m.tracer = t
	}
}

// WithClock overrides the capture clock
func WithClock(now func() time.Time) ManagerOption {
	return func(m *defaultManager) {
		m.now = now
	}
}

// NewManager creates a Manager. engines maps each target to the engine of its backend.
func NewManager(
	engines map[string]*Engine,
	definitions store.DefinitionSource,
	sink store.PropertySink,
	opts ...ManagerOption,
) Manager {
	m := &defaultManager{
		engines:     engines,
		definitions: definitions,
		sink:        sink,
		history:     history.NopSink{},
		locker:      store.NewTargetLocker(""),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *defaultManager) Refresh(ctx context.Context, target string, ignoreCache bool) (*BatchResult, *Error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.Refresh", trace.WithAttributes(
		otel.AttrTargetName.String(target),
		otel.AttrIgnoreCache.Bool(ignoreCache),
	))
	defer span.End()

	engine, defs, syncErr := m.prepare(ctx, target)
	if syncErr != nil {
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	unlock, err := m.locker.Lock(ctx, target)
	if err != nil {
		syncErr = newError(ReasonInterrupted, err, "failed to lock target '%s'", target)
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}
	defer unlock()

	start := time.Now()
	result, syncErr := m.refreshLocked(ctx, target, engine, defs, ignoreCache)
	m.metrics.RecordSyncDuration(ctx, target, time.Since(start), syncErr == nil)
	if syncErr != nil {
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	span.SetAttributes(
		otel.AttrCycleID.String(result.CycleID),
		otel.AttrResultCount.Int(len(result.Rows)),
		otel.AttrWarningCount.Int(len(result.Warnings)),
	)
	return result, nil
}

func (m *defaultManager) refreshLocked(
	ctx context.Context, target string, engine *Engine, defs []attribute.Definition, ignoreCache bool,
) (*BatchResult, *Error) {
	states, err := m.sink.ListStates(ctx, target)
	if err != nil {
		return nil, newError(ReasonStorageFailed, err, "failed to load state of target '%s'", target)
	}
	lastUpdates := make(map[string]time.Time, len(states))
	for _, st := range states {
		lastUpdates[st.Name] = st.LastUpdate
	}

	now := m.now()
	due := SelectDue(defs, lastUpdates, now, ignoreCache)

	result, err := engine.Pull(ctx, target, due, now)
	if err != nil {
		return nil, newError(ReasonInterrupted, err, "sync of target '%s' did not complete", target)
	}

	if syncErr := m.apply(ctx, target, defs, result.Rows); syncErr != nil {
		return nil, syncErr
	}

	m.metrics.RecordPropertiesTotal(ctx, target, int64(len(defs)))
	slog.Info("Target refreshed",
		"target", target,
		"cycle_id", result.CycleID,
		"candidates", len(defs),
		"due", len(due),
		"rows", len(result.Rows),
		"warnings", len(result.Warnings),
		"ignore_cache", ignoreCache)
	return result, nil
}

func (m *defaultManager) DemandRead(ctx context.Context, target, name string) (*DemandReadResult, *Error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.DemandRead", trace.WithAttributes(
		otel.AttrTargetName.String(target),
		otel.AttrAttributeName.String(name),
	))
	defer span.End()

	engine, defs, syncErr := m.prepare(ctx, target)
	if syncErr != nil {
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	var def *attribute.Definition
	for i := range defs {
		if defs[i].Name == name {
			def = &defs[i]
			break
		}
	}
	if def == nil {
		syncErr = newError(ReasonAttributeNotDefined, ErrAttributeNotDefined, "target '%s' has no attribute '%s'", target, name)
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	unlock, err := m.locker.Lock(ctx, target)
	if err != nil {
		return nil, newError(ReasonInterrupted, err, "failed to lock target '%s'", target)
	}
	defer unlock()

	current, err := m.sink.GetState(ctx, target, name)
	if err != nil && !errors.Is(err, store.ErrStateNotFound) {
		return nil, newError(ReasonStorageFailed, err, "failed to load state of '%s'", name)
	}
	var lastUpdate time.Time
	if current != nil {
		lastUpdate = current.LastUpdate
	}

	now := m.now()
	if !ShouldRead(def.CacheTime, lastUpdate, now, false) {
		return &DemandReadResult{State: current}, nil
	}

	result, err := engine.Pull(ctx, target, []attribute.Definition{*def}, now)
	if err != nil {
		return nil, newError(ReasonInterrupted, err, "demand read of '%s' did not complete", name)
	}
	if len(result.Warnings) > 0 {
		return &DemandReadResult{State: current, Refreshed: true, Warning: &result.Warnings[0]}, nil
	}

	if syncErr := m.apply(ctx, target, defs, result.Rows); syncErr != nil {
		return nil, syncErr
	}
	row := result.Rows[0]
	return &DemandReadResult{
		State:     &attribute.State{Name: row.Name, Value: row.Value, LastUpdate: row.Timestamp},
		Refreshed: true,
	}, nil
}

func (m *defaultManager) WriteLoggedToHistory(
	ctx context.Context, target string, forceRefresh bool,
) (*HistoryResult, *Error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.WriteLoggedToHistory", trace.WithAttributes(
		otel.AttrTargetName.String(target),
	))
	defer span.End()

	result := &HistoryResult{}
	if forceRefresh {
		refresh, syncErr := m.Refresh(ctx, target, true)
		if syncErr != nil {
			otel.RecordError(span, syncErr)
			return nil, syncErr
		}
		result.Refresh = refresh
	}

	_, defs, syncErr := m.prepare(ctx, target)
	if syncErr != nil {
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	result.Timestamp = m.now()
	var entries []history.Entry
	for _, def := range defs {
		if !def.Logged {
			continue
		}
		st, err := m.sink.GetState(ctx, target, def.Name)
		if errors.Is(err, store.ErrStateNotFound) {
			continue
		}
		if err != nil {
			return nil, newError(ReasonStorageFailed, err, "failed to load state of '%s'", def.Name)
		}
		entries = append(entries, history.Entry{Attribute: def.Name, Timestamp: result.Timestamp, Value: st.Value})
	}

	if err := m.history.Append(ctx, target, entries); err != nil {
		syncErr = newError(ReasonHistoryFailed, err, "failed to record history of target '%s'", target)
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}
	result.Count = len(entries)
	return result, nil
}

// prepare looks up the engine and the synchronized definitions of a target
func (m *defaultManager) prepare(ctx context.Context, target string) (*Engine, []attribute.Definition, *Error) {
	engine, ok := m.engines[target]
	if !ok {
		return nil, nil, newError(ReasonTargetUnresolvable, ErrTargetUnresolvable, "target '%s' has no backend", target)
	}

	defs, err := m.definitions.GetDefinitions(ctx, target, attribute.DefaultCategory)
	if err != nil {
		if errors.Is(err, store.ErrTargetNotFound) {
			return nil, nil, newError(ReasonTargetUnresolvable, errors.Join(ErrTargetUnresolvable, err),
				"target '%s' is not configured", target)
		}
		return nil, nil, newError(ReasonDefinitionsFailed, err, "failed to load definitions of target '%s'", target)
	}
	return engine, defs, nil
}

// apply writes rows as one batch and forwards logged rows to history.
// History is best effort once the batch is stored.
func (m *defaultManager) apply(ctx context.Context, target string, defs []attribute.Definition, rows []attribute.Row) *Error {
	if len(rows) == 0 {
		return nil
	}
	if err := m.sink.ApplyBatch(ctx, target, rows); err != nil {
		return newError(ReasonStorageFailed, err, "failed to apply batch of target '%s'", target)
	}

	logged := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.Logged {
			logged[def.Name] = true
		}
	}
	var entries []history.Entry
	for _, row := range rows {
		if logged[row.Name] {
			entries = append(entries, history.Entry{Attribute: row.Name, Timestamp: row.Timestamp, Value: row.Value})
		}
	}
	if err := m.history.Append(ctx, target, entries); err != nil {
		slog.Warn("Failed to record history", "target", target, "entries", len(entries), "error", err)
	}
	return nil
}
