package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stacklok/mbean-bridge/internal/attribute"
)

// MemorySink keeps property state in process memory.
type MemorySink struct {
	mu      sync.RWMutex
	targets map[string]map[string]attribute.State
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{targets: make(map[string]map[string]attribute.State)}
}

// ApplyBatch implements PropertySink
func (m *MemorySink) ApplyBatch(_ context.Context, target string, rows []attribute.Row) error {
	for _, row := range rows {
		if row.Value == nil {
			return fmt.Errorf("row %s has no value", row.Name)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	states, ok := m.targets[target]
	if !ok {
		states = make(map[string]attribute.State)
		m.targets[target] = states
	}
	for _, row := range rows {
		states[row.Name] = attribute.State{Name: row.Name, Value: row.Value, LastUpdate: row.Timestamp}
	}
	return nil
}

// GetState implements PropertySink
func (m *MemorySink) GetState(_ context.Context, target, name string) (*attribute.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.targets[target][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrStateNotFound, target, name)
	}
	return &st, nil
}

// ListStates implements PropertySink
func (m *MemorySink) ListStates(_ context.Context, target string) ([]attribute.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedStates(m.targets[target]), nil
}

func sortedStates(states map[string]attribute.State) []attribute.State {
	result := make([]attribute.State, 0, len(states))
	for _, st := range states {
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
