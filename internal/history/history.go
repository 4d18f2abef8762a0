// Package history records the values of logged properties over time.
package history

import (
	"context"
	"time"

	"github.com/stacklok/mbean-bridge/internal/attribute"
)

// Entry is one recorded value of a property.
type Entry struct {
	Attribute string          `json:"attribute"`
	Timestamp time.Time       `json:"timestamp"`
	Value     attribute.Value `json:"-"`
}

// Sink stores and queries property history.
type Sink interface {
	// Append records entries of a target
	Append(ctx context.Context, target string, entries []Entry) error

	// Query returns the entries of one property recorded in [from, to], oldest first.
	// A zero to means no upper bound.
	Query(ctx context.Context, target, attribute string, from, to time.Time) ([]Entry, error)

	// Close releases the underlying storage
	Close() error
}

// NopSink discards history. It is used when history is disabled.
type NopSink struct{}

// Append implements Sink
func (NopSink) Append(context.Context, string, []Entry) error { return nil }

// Query implements Sink
func (NopSink) Query(context.Context, string, string, time.Time, time.Time) ([]Entry, error) {
	return nil, nil
}

// Close implements Sink
func (NopSink) Close() error { return nil }

func inRange(ts, from, to time.Time) bool {
	if ts.Before(from) {
		return false
	}
	return to.IsZero() || !ts.After(to)
}
