// Package service provides the business logic behind the bridge API: backend
// discovery, target inspection and sync operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/history"
	"github.com/stacklok/mbean-bridge/internal/status"
	"github.com/stacklok/mbean-bridge/internal/sync"
	"github.com/stacklok/mbean-bridge/internal/tree"
)

var (
	// ErrBackendNotFound is returned when a backend is not configured
	ErrBackendNotFound = errors.New("backend not found")
	// ErrTargetNotFound is returned when a target is not configured
	ErrTargetNotFound = errors.New("target not found")
	// ErrMacroNotFound is returned when a macro token is not configured
	ErrMacroNotFound = errors.New("macro not found")
	// ErrInvalidInput is returned for malformed request parameters
	ErrInvalidInput = errors.New("invalid input")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go BridgeService

// BridgeService defines the interface for bridge operations
type BridgeService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// QueryObjects lists the objects of a backend matching a filter
	QueryObjects(ctx context.Context, backendName string, opts ...Option[QueryOptions]) ([]ObjectRow, error)

	// QueryTree builds the namespace tree of a backend's objects matching a filter
	QueryTree(ctx context.Context, backendName string, opts ...Option[QueryOptions]) (*TreeResult, error)

	// GetAttributesInfo describes the attributes of one object, expanding composites
	GetAttributesInfo(
		ctx context.Context, backendName, objectName string, opts ...Option[AttributesInfoOptions],
	) ([]AttributeInfoRow, error)

	// SuggestDefinitions turns attribute info rows into property definitions
	SuggestDefinitions(ctx context.Context, rows []AttributeInfoRow, logged bool) ([]attribute.Definition, error)

	// ResetMacro drops the memoized object of a macro and resolves it again
	ResetMacro(ctx context.Context, backendName, token string) (string, error)

	// ListTargets returns every configured target with its sync status
	ListTargets(ctx context.Context) ([]TargetSummary, error)

	// GetTargetDefinitions returns the synchronized definitions of a target
	GetTargetDefinitions(ctx context.Context, target string) ([]attribute.Definition, error)

	// GetTargetState returns the stored property states of a target
	GetTargetState(ctx context.Context, target string) ([]attribute.State, error)

	// GetTargetStatus returns the sync status of a target
	GetTargetStatus(ctx context.Context, target string) (*status.SyncStatus, error)

	// Refresh pulls the attributes of a target
	Refresh(ctx context.Context, target string, ignoreCache bool) (*sync.BatchResult, error)

	// DemandRead returns one property, reading the backend when stale
	DemandRead(ctx context.Context, target, name string) (*sync.DemandReadResult, error)

	// WriteLoggedToHistory records the logged properties of a target
	WriteLoggedToHistory(ctx context.Context, target string, forceRefresh bool) (*sync.HistoryResult, error)

	// QueryHistory returns recorded values of one property
	QueryHistory(ctx context.Context, target, name string, opts ...Option[HistoryOptions]) ([]history.Entry, error)
}

// ObjectRow describes one backend object
type ObjectRow struct {
	ObjectName  string `json:"objectName"`
	ClassName   string `json:"className"`
	Description string `json:"description"`
}

// TreeResult is a namespace tree and the names that could not be placed in it
type TreeResult struct {
	Nodes    []tree.Row `json:"nodes"`
	Rejected []string   `json:"rejected,omitempty"`
}

// AttributeInfoRow describes one attribute, or one field of a composite attribute
type AttributeInfoRow struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	IsWritable  bool    `json:"isWritable"`
	ObjectName  string  `json:"objectName"`
	Preview     *string `json:"preview,omitempty"`
}

// TargetSummary describes a configured target
type TargetSummary struct {
	Name    string             `json:"name"`
	Backend string             `json:"backend"`
	Status  *status.SyncStatus `json:"status,omitempty"`
}

// Option is a function that sets an option for the QueryObjects, QueryTree,
// GetAttributesInfo or QueryHistory operations
type Option[T QueryOptions | AttributesInfoOptions | HistoryOptions] func(*T) error

// QueryOptions is the options for the QueryObjects and QueryTree operations
type QueryOptions struct {
	Filter string
}

// AttributesInfoOptions is the options for the GetAttributesInfo operation
type AttributesInfoOptions struct {
	NotWritableOnly bool
	ShowPreview     bool
}

// HistoryOptions is the options for the QueryHistory operation
type HistoryOptions struct {
	From time.Time
	To   time.Time
}

// WithFilter sets the object name pattern
func WithFilter(filter string) Option[QueryOptions] {
	return func(o *QueryOptions) error {
		o.Filter = filter
		return nil
	}
}

// WithNotWritableOnly skips writable attributes when set. It is set by default.
func WithNotWritableOnly(notWritableOnly bool) Option[AttributesInfoOptions] {
	return func(o *AttributesInfoOptions) error {
		o.NotWritableOnly = notWritableOnly
		return nil
	}
}

// WithPreview reads each attribute and includes its current value
func WithPreview(showPreview bool) Option[AttributesInfoOptions] {
	return func(o *AttributesInfoOptions) error {
		o.ShowPreview = showPreview
		return nil
	}
}

// WithFrom sets the start of the history range
func WithFrom(from time.Time) Option[HistoryOptions] {
	return func(o *HistoryOptions) error {
		if from.IsZero() {
			return fmt.Errorf("%w: from: %s", ErrInvalidInput, from)
		}
		o.From = from
		return nil
	}
}

// WithTo sets the end of the history range
func WithTo(to time.Time) Option[HistoryOptions] {
	return func(o *HistoryOptions) error {
		if to.IsZero() {
			return fmt.Errorf("%w: to: %s", ErrInvalidInput, to)
		}
		o.To = to
		return nil
	}
}

func applyOptions[T QueryOptions | AttributesInfoOptions | HistoryOptions](o *T, opts []Option[T]) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}
