package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/config"
)

// StaticDefinitions serves definitions declared in the configuration file.
type StaticDefinitions struct {
	names   []string
	targets map[string][]attribute.Definition
}

// NewStaticDefinitions builds a definition source from configured targets.
func NewStaticDefinitions(targets []config.TargetConfig) *StaticDefinitions {
	s := &StaticDefinitions{targets: make(map[string][]attribute.Definition, len(targets))}
	for i := range targets {
		s.names = append(s.names, targets[i].Name)
		s.targets[targets[i].Name] = targets[i].Definitions()
	}
	sort.Strings(s.names)
	return s
}

// ListTargets implements DefinitionSource
func (s *StaticDefinitions) ListTargets(_ context.Context) ([]string, error) {
	return append([]string(nil), s.names...), nil
}

// GetDefinitions implements DefinitionSource
func (s *StaticDefinitions) GetDefinitions(_ context.Context, target, category string) ([]attribute.Definition, error) {
	defs, ok := s.targets[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}

	result := make([]attribute.Definition, 0, len(defs))
	for _, def := range defs {
		if category == "" || def.GetCategory() == category {
			result = append(result, def)
		}
	}
	return result, nil
}
