package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/history"
	"github.com/stacklok/mbean-bridge/internal/otel"
	"github.com/stacklok/mbean-bridge/internal/resolver"
	"github.com/stacklok/mbean-bridge/internal/status"
	"github.com/stacklok/mbean-bridge/internal/store"
	"github.com/stacklok/mbean-bridge/internal/sync"
	"github.com/stacklok/mbean-bridge/internal/sync/state"
	"github.com/stacklok/mbean-bridge/internal/tree"
)

const (
	// ServiceTracerName is the name used for the service tracer
	ServiceTracerName = "github.com/stacklok/mbean-bridge/service"
)

// options holds configuration options for the bridge service
type options struct {
	gateways    map[string]backend.Gateway
	resolvers   map[string]*resolver.Resolver
	macros      []resolver.Macro
	targets     []config.TargetConfig
	manager     sync.Manager
	definitions store.DefinitionSource
	sink        store.PropertySink
	states      state.TargetStateService
	history     history.Sink
	tracer      trace.Tracer
}

// ServiceOption is a functional option for configuring the bridge service
//
//nolint:revive // Option is taken by the operation options
type ServiceOption func(*options) error

// WithGateways sets the backend gateways keyed by backend name
func WithGateways(gateways map[string]backend.Gateway) ServiceOption {
	return func(o *options) error {
		o.gateways = gateways
		return nil
	}
}

// WithResolvers sets the address resolvers keyed by backend name
func WithResolvers(resolvers map[string]*resolver.Resolver) ServiceOption {
	return func(o *options) error {
		o.resolvers = resolvers
		return nil
	}
}

// WithMacros sets the macros used to suggest definitions
func WithMacros(macros []resolver.Macro) ServiceOption {
	return func(o *options) error {
		o.macros = macros
		return nil
	}
}

// WithTargets sets the configured targets
func WithTargets(targets []config.TargetConfig) ServiceOption {
	return func(o *options) error {
		o.targets = targets
		return nil
	}
}

// WithManager sets the sync manager
func WithManager(manager sync.Manager) ServiceOption {
	return func(o *options) error {
		if manager == nil {
			return fmt.Errorf("sync manager is required")
		}
		o.manager = manager
		return nil
	}
}

// WithDefinitions sets the definition source
func WithDefinitions(definitions store.DefinitionSource) ServiceOption {
	return func(o *options) error {
		o.definitions = definitions
		return nil
	}
}

// WithSink sets the property sink
func WithSink(sink store.PropertySink) ServiceOption {
	return func(o *options) error {
		o.sink = sink
		return nil
	}
}

// WithStateService sets the target sync state service
func WithStateService(states state.TargetStateService) ServiceOption {
	return func(o *options) error {
		o.states = states
		return nil
	}
}

// WithHistory sets the history sink
func WithHistory(h history.Sink) ServiceOption {
	return func(o *options) error {
		o.history = h
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) ServiceOption {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// bridgeService implements the BridgeService interface
type bridgeService struct {
	gateways    map[string]backend.Gateway
	resolvers   map[string]*resolver.Resolver
	macros      []resolver.Macro
	targets     map[string]config.TargetConfig
	manager     sync.Manager
	definitions store.DefinitionSource
	sink        store.PropertySink
	states      state.TargetStateService
	history     history.Sink
	tracer      trace.Tracer
}

var _ BridgeService = (*bridgeService)(nil)

// New creates a new bridge service with the given options
func New(opts ...ServiceOption) (BridgeService, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.manager == nil {
		return nil, fmt.Errorf("sync manager is required")
	}
	if o.definitions == nil {
		o.definitions = store.NewStaticDefinitions(o.targets)
	}
	if o.sink == nil {
		return nil, fmt.Errorf("property sink is required")
	}
	if o.history == nil {
		o.history = history.NopSink{}
	}

	s := &bridgeService{
		gateways:    o.gateways,
		resolvers:   o.resolvers,
		macros:      o.macros,
		targets:     make(map[string]config.TargetConfig, len(o.targets)),
		manager:     o.manager,
		definitions: o.definitions,
		sink:        o.sink,
		states:      o.states,
		history:     o.history,
		tracer:      o.tracer,
	}
	for _, t := range o.targets {
		s.targets[t.Name] = t
	}
	return s, nil
}

// CheckReadiness checks that every backend answers and the property sink is readable
func (s *bridgeService) CheckReadiness(ctx context.Context) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.CheckReadiness")
	defer span.End()

	for name, g := range s.gateways {
		if _, err := g.ListObjects(ctx, backend.ProbeObjectName); err != nil {
			otel.RecordError(span, err)
			return fmt.Errorf("backend %s not ready: %w", name, err)
		}
	}

	names, err := s.definitions.ListTargets(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("definitions not ready: %w", err)
	}
	if len(names) > 0 {
		if _, err := s.sink.ListStates(ctx, names[0]); err != nil {
			otel.RecordError(span, err)
			return fmt.Errorf("property storage not ready: %w", err)
		}
	}
	return nil
}

// QueryObjects lists the objects of a backend matching a filter
func (s *bridgeService) QueryObjects(
	ctx context.Context, backendName string, opts ...Option[QueryOptions],
) ([]ObjectRow, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.QueryObjects", trace.WithAttributes(
		otel.AttrBackendName.String(backendName),
	))
	defer span.End()

	g, names, err := s.listObjects(ctx, backendName, opts)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	rows := make([]ObjectRow, 0, len(names))
	for _, name := range names {
		info, err := g.DescribeObject(ctx, name)
		if err != nil {
			// the object may have been unregistered since the listing
			if errors.Is(err, backend.ErrObjectNotFound) {
				continue
			}
			otel.RecordError(span, err)
			return nil, err
		}
		rows = append(rows, ObjectRow{
			ObjectName:  name,
			ClassName:   info.ClassName,
			Description: info.Description,
		})
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(rows)))
	return rows, nil
}

// QueryTree builds the namespace tree of a backend's objects matching a filter
func (s *bridgeService) QueryTree(
	ctx context.Context, backendName string, opts ...Option[QueryOptions],
) (*TreeResult, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.QueryTree", trace.WithAttributes(
		otel.AttrBackendName.String(backendName),
	))
	defer span.End()

	_, names, err := s.listObjects(ctx, backendName, opts)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	b := tree.NewBuilder()
	result := &TreeResult{}
	for _, name := range names {
		if _, err := b.Add(name); err != nil {
			slog.Warn("Object name rejected from tree", "backend", backendName, "object", name, "error", err)
			result.Rejected = append(result.Rejected, name)
		}
	}
	result.Nodes = b.Rows()

	span.SetAttributes(otel.AttrResultCount.Int(len(result.Nodes)))
	return result, nil
}

// ResetMacro drops the memoized object of a macro and resolves it again
func (s *bridgeService) ResetMacro(ctx context.Context, backendName, token string) (string, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.ResetMacro", trace.WithAttributes(
		otel.AttrBackendName.String(backendName),
		otel.AttrObjectName.String(token),
	))
	defer span.End()

	res, ok := s.resolvers[backendName]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrBackendNotFound, backendName)
	}

	objectName, err := res.Reset(ctx, token)
	if err != nil {
		otel.RecordError(span, err)
		if errors.Is(err, resolver.ErrUnknownMacro) {
			return "", fmt.Errorf("%w: %s", ErrMacroNotFound, token)
		}
		return "", err
	}
	slog.Info("Macro reset", "backend", backendName, "macro", token, "object", objectName)
	return objectName, nil
}

// ListTargets returns every configured target with its sync status
func (s *bridgeService) ListTargets(ctx context.Context) ([]TargetSummary, error) {
	names, err := s.definitions.ListTargets(ctx)
	if err != nil {
		return nil, err
	}

	var statuses map[string]*status.SyncStatus
	if s.states != nil {
		statuses, err = s.states.ListSyncStatuses(ctx)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]TargetSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, TargetSummary{
			Name:    name,
			Backend: s.targets[name].Backend,
			Status:  statuses[name],
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// GetTargetDefinitions returns the synchronized definitions of a target
func (s *bridgeService) GetTargetDefinitions(ctx context.Context, target string) ([]attribute.Definition, error) {
	defs, err := s.definitions.GetDefinitions(ctx, target, attribute.DefaultCategory)
	if errors.Is(err, store.ErrTargetNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	return defs, err
}

// GetTargetState returns the stored property states of a target
func (s *bridgeService) GetTargetState(ctx context.Context, target string) ([]attribute.State, error) {
	if err := s.checkTarget(target); err != nil {
		return nil, err
	}
	return s.sink.ListStates(ctx, target)
}

// GetTargetStatus returns the sync status of a target
func (s *bridgeService) GetTargetStatus(ctx context.Context, target string) (*status.SyncStatus, error) {
	if err := s.checkTarget(target); err != nil {
		return nil, err
	}
	if s.states == nil {
		return nil, fmt.Errorf("%w: %s has no sync status", ErrTargetNotFound, target)
	}
	st, err := s.states.GetSyncStatus(ctx, target)
	if errors.Is(err, state.ErrTargetNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	return st, err
}

// Refresh pulls the attributes of a target
func (s *bridgeService) Refresh(ctx context.Context, target string, ignoreCache bool) (*sync.BatchResult, error) {
	if err := s.checkTarget(target); err != nil {
		return nil, err
	}
	result, syncErr := s.manager.Refresh(ctx, target, ignoreCache)
	if syncErr != nil {
		return nil, syncErr
	}
	return result, nil
}

// DemandRead returns one property, reading the backend when stale
func (s *bridgeService) DemandRead(ctx context.Context, target, name string) (*sync.DemandReadResult, error) {
	if err := s.checkTarget(target); err != nil {
		return nil, err
	}
	result, syncErr := s.manager.DemandRead(ctx, target, name)
	if syncErr != nil {
		return nil, syncErr
	}
	return result, nil
}

// WriteLoggedToHistory records the logged properties of a target
func (s *bridgeService) WriteLoggedToHistory(
	ctx context.Context, target string, forceRefresh bool,
) (*sync.HistoryResult, error) {
	if err := s.checkTarget(target); err != nil {
		return nil, err
	}
	result, syncErr := s.manager.WriteLoggedToHistory(ctx, target, forceRefresh)
	if syncErr != nil {
		return nil, syncErr
	}
	return result, nil
}

// QueryHistory returns recorded values of one property
func (s *bridgeService) QueryHistory(
	ctx context.Context, target, name string, opts ...Option[HistoryOptions],
) ([]history.Entry, error) {
	if err := s.checkTarget(target); err != nil {
		return nil, err
	}
	o := &HistoryOptions{}
	if err := applyOptions(o, opts); err != nil {
		return nil, err
	}
	if !o.From.IsZero() && !o.To.IsZero() && o.To.Before(o.From) {
		return nil, fmt.Errorf("%w: history range ends before it starts", ErrInvalidInput)
	}
	return s.history.Query(ctx, target, name, o.From, o.To)
}

func (s *bridgeService) gateway(backendName string) (backend.Gateway, error) {
	g, ok := s.gateways[backendName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, backendName)
	}
	return g, nil
}

func (s *bridgeService) listObjects(
	ctx context.Context, backendName string, opts []Option[QueryOptions],
) (backend.Gateway, []string, error) {
	g, err := s.gateway(backendName)
	if err != nil {
		return nil, nil, err
	}
	o := &QueryOptions{}
	if err := applyOptions(o, opts); err != nil {
		return nil, nil, err
	}
	names, err := g.ListObjects(ctx, o.Filter)
	if err != nil {
		return nil, nil, err
	}
	return g, names, nil
}

func (s *bridgeService) checkTarget(target string) error {
	if _, ok := s.targets[target]; !ok {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	return nil
}
