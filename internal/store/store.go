// Package store holds property state and attribute definitions for targets.
//
// A PropertySink receives whole sync batches and must apply each batch
// atomically: either every row of the batch becomes visible or none does.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/stacklok/mbean-bridge/internal/attribute"
)

var (
	// ErrTargetNotFound is returned when a target is not configured
	ErrTargetNotFound = errors.New("target not found")

	// ErrStateNotFound is returned when a property has never been written
	ErrStateNotFound = errors.New("property state not found")
)

// PropertySink stores the current value of each property of a target.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/stacklok/mbean-bridge/internal/store PropertySink,DefinitionSource
type PropertySink interface {
	// ApplyBatch writes all rows of one sync cycle as a single update
	ApplyBatch(ctx context.Context, target string, rows []attribute.Row) error

	// GetState returns the stored state of one property, or ErrStateNotFound
	GetState(ctx context.Context, target, name string) (*attribute.State, error)

	// ListStates returns the stored state of every property of a target, sorted by name
	ListStates(ctx context.Context, target string) ([]attribute.State, error)
}

// DefinitionSource provides the attribute definitions of targets.
type DefinitionSource interface {
	// ListTargets returns the names of all targets, sorted
	ListTargets(ctx context.Context) ([]string, error)

	// GetDefinitions returns the definitions of a target in category. An empty
	// category returns every definition. Unknown targets yield ErrTargetNotFound.
	GetDefinitions(ctx context.Context, target, category string) ([]attribute.Definition, error)
}

// LastUpdate returns the last update time of a property, or the zero time when
// it has never been written.
func LastUpdate(ctx context.Context, sink PropertySink, target, name string) (time.Time, error) {
	st, err := sink.GetState(ctx, target, name)
	if errors.Is(err, ErrStateNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return st.LastUpdate, nil
}
