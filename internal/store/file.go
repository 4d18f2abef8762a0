package store

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/stacklok/mbean-bridge/internal/attribute"
)

// PropertiesFileName is the name of the per-target property file
const PropertiesFileName = "properties.json"

type persistedState struct {
	Name       string              `json:"name"`
	Value      *attribute.Envelope `json:"value"`
	LastUpdate time.Time           `json:"lastUpdate"`
}

type propertiesFile struct {
	Target     string           `json:"target"`
	Properties []persistedState `json:"properties"`
}

// FileSink stores property state as one JSON file per target. Batches are
// written to a temporary file and renamed into place.
type FileSink struct {
	basePath string

	mu     sync.RWMutex
	cached map[string]map[string]attribute.State
}

// NewFileSink creates a file sink rooted at basePath.
func NewFileSink(basePath string) *FileSink {
	return &FileSink{
		basePath: basePath,
		cached:   make(map[string]map[string]attribute.State),
	}
}

// ApplyBatch implements PropertySink
func (f *FileSink) ApplyBatch(_ context.Context, target string, rows []attribute.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.loadLocked(target)
	if err != nil {
		return err
	}

	next := maps.Clone(current)
	for _, row := range rows {
		if row.Value == nil {
			return fmt.Errorf("row %s has no value", row.Name)
		}
		next[row.Name] = attribute.State{Name: row.Name, Value: row.Value, LastUpdate: row.Timestamp}
	}

	if err := f.write(target, next); err != nil {
		return err
	}
	f.cached[target] = next
	return nil
}

// GetState implements PropertySink
func (f *FileSink) GetState(_ context.Context, target, name string) (*attribute.State, error) {
	states, err := f.states(target)
	if err != nil {
		return nil, err
	}
	st, ok := states[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrStateNotFound, target, name)
	}
	return &st, nil
}

// ListStates implements PropertySink
func (f *FileSink) ListStates(_ context.Context, target string) ([]attribute.State, error) {
	states, err := f.states(target)
	if err != nil {
		return nil, err
	}
	return sortedStates(states), nil
}

// Dir returns the directory holding a target's files
func (f *FileSink) Dir(target string) string {
	return filepath.Join(f.basePath, target)
}

func (f *FileSink) states(target string) (map[string]attribute.State, error) {
	f.mu.RLock()
	states, ok := f.cached[target]
	f.mu.RUnlock()
	if ok {
		return states, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked(target)
}

// loadLocked returns the cached states of a target, reading the file on first use.
// Callers must hold the write lock. The returned map must not be mutated.
func (f *FileSink) loadLocked(target string) (map[string]attribute.State, error) {
	if states, ok := f.cached[target]; ok {
		return states, nil
	}

	filePath := filepath.Join(f.Dir(target), PropertiesFileName)
	// #nosec G304 -- filePath is built from the configured base path and a configured target name
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			states := make(map[string]attribute.State)
			f.cached[target] = states
			return states, nil
		}
		return nil, fmt.Errorf("failed to read properties file for target '%s': %w", target, err)
	}

	var file propertiesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties for target '%s': %w", target, err)
	}

	states := make(map[string]attribute.State, len(file.Properties))
	for _, p := range file.Properties {
		value, err := attribute.Decode(p.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s of target '%s': %w", p.Name, target, err)
		}
		states[p.Name] = attribute.State{Name: p.Name, Value: value, LastUpdate: p.LastUpdate}
	}
	f.cached[target] = states
	return states, nil
}

func (f *FileSink) write(target string, states map[string]attribute.State) error {
	file := propertiesFile{Target: target}
	for _, st := range sortedStates(states) {
		env, err := attribute.Encode(st.Value)
		if err != nil {
			return fmt.Errorf("property %s: %w", st.Name, err)
		}
		file.Properties = append(file.Properties, persistedState{Name: st.Name, Value: env, LastUpdate: st.LastUpdate})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal properties for target '%s': %w", target, err)
	}

	dir := f.Dir(target)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create properties directory for target '%s': %w", target, err)
	}

	filePath := filepath.Join(dir, PropertiesFileName)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary properties file for target '%s': %w", target, err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename properties file for target '%s': %w", target, err)
	}
	return nil
}
