package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemorySink keeps history in process memory.
type MemorySink struct {
	mu      sync.RWMutex
	entries map[string]map[string][]Entry
}

// NewMemorySink creates an empty in-memory history.
func NewMemorySink() *MemorySink {
	return &MemorySink{entries: make(map[string]map[string][]Entry)}
}

// Append implements Sink
func (m *MemorySink) Append(_ context.Context, target string, entries []Entry) error {
	for _, e := range entries {
		if _, err := toRecord(e); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	byAttr, ok := m.entries[target]
	if !ok {
		byAttr = make(map[string][]Entry)
		m.entries[target] = byAttr
	}
	for _, e := range entries {
		list := append(byAttr[e.Attribute], e)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.Before(list[j].Timestamp) })
		byAttr[e.Attribute] = list
	}
	return nil
}

// Query implements Sink
func (m *MemorySink) Query(_ context.Context, target, attr string, from, to time.Time) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Entry
	for _, e := range m.entries[target][attr] {
		if inRange(e.Timestamp, from, to) {
			result = append(result, e)
		}
	}
	return result, nil
}

// Close implements Sink
func (*MemorySink) Close() error { return nil }
