package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/mbean-bridge/internal/objectname"
)

// StaticAttribute is one attribute of a StaticObject.
type StaticAttribute struct {
	Name        string    `yaml:"name"`
	Type        string    `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
	Writable    bool      `yaml:"writable,omitempty"`
	Value       yaml.Node `yaml:"value"`

	// Error makes every read of the attribute fail with this message
	Error string `yaml:"error,omitempty"`
}

// StaticObject is one object of a static registry fixture.
type StaticObject struct {
	Name        string            `yaml:"name"`
	ClassName   string            `yaml:"className,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Attributes  []StaticAttribute `yaml:"attributes"`
}

// staticFixture is the on-disk format of a static registry
type staticFixture struct {
	Objects []StaticObject `yaml:"objects"`
}

type staticEntry struct {
	info   ObjectInfo
	values map[string]RawValue
	errors map[string]string
}

// StaticGateway is an in-memory object registry. It backs local development,
// demos and tests.
type StaticGateway struct {
	name string

	mu      sync.RWMutex
	objects map[string]*staticEntry
}

// NewStaticGateway creates an empty static registry.
func NewStaticGateway(name string) *StaticGateway {
	return &StaticGateway{
		name:    name,
		objects: make(map[string]*staticEntry),
	}
}

// LoadStaticGateway reads a YAML fixture file into a static registry.
func LoadStaticGateway(name, path string) (*StaticGateway, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read static backend file: %w", err)
	}

	var fixture staticFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse static backend file: %w", err)
	}

	g := NewStaticGateway(name)
	for _, obj := range fixture.Objects {
		if err := g.AddObject(obj); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddObject registers an object, replacing any object with the same name.
func (g *StaticGateway) AddObject(obj StaticObject) error {
	if _, err := objectname.Parse(obj.Name); err != nil {
		return err
	}

	entry := &staticEntry{
		info: ObjectInfo{
			ObjectName:  obj.Name,
			ClassName:   obj.ClassName,
			Description: obj.Description,
		},
		values: make(map[string]RawValue, len(obj.Attributes)),
		errors: make(map[string]string),
	}
	for _, attr := range obj.Attributes {
		value, err := rawFromYAML(&attr.Value)
		if err != nil {
			return fmt.Errorf("object %s attribute %s: %w", obj.Name, attr.Name, err)
		}
		entry.info.Attributes = append(entry.info.Attributes, AttributeInfo{
			Name:        attr.Name,
			Type:        attr.Type,
			Description: attr.Description,
			Writable:    attr.Writable,
		})
		entry.values[attr.Name] = value
		if attr.Error != "" {
			entry.errors[attr.Name] = attr.Error
		}
	}
	sort.Slice(entry.info.Attributes, func(i, j int) bool {
		return entry.info.Attributes[i].Name < entry.info.Attributes[j].Name
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[obj.Name] = entry
	return nil
}

// RemoveObject unregisters an object.
func (g *StaticGateway) RemoveObject(objectName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.objects, objectName)
}

// SetValue replaces the value of an existing attribute.
func (g *StaticGateway) SetValue(objectName, attribute string, value RawValue) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.objects[objectName]
	if !ok {
		return fmt.Errorf("%s: %w", objectName, ErrObjectNotFound)
	}
	if _, ok := entry.values[attribute]; !ok {
		return fmt.Errorf("%s of %s: %w", attribute, objectName, ErrAttributeNotFound)
	}
	entry.values[attribute] = value
	delete(entry.errors, attribute)
	return nil
}

// Name returns the configured backend name
func (g *StaticGateway) Name() string {
	return g.name
}

// ListObjects implements Gateway
func (g *StaticGateway) ListObjects(_ context.Context, pattern string) ([]string, error) {
	p, err := objectname.ParsePattern(pattern)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.objects))
	for name := range g.objects {
		if p.Match(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// DescribeObject implements Gateway
func (g *StaticGateway) DescribeObject(_ context.Context, objectName string) (*ObjectInfo, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, ok := g.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("%s: %w", objectName, ErrObjectNotFound)
	}
	info := entry.info
	info.Attributes = append([]AttributeInfo(nil), entry.info.Attributes...)
	return &info, nil
}

// GetAttributeValue implements Gateway
func (g *StaticGateway) GetAttributeValue(_ context.Context, objectName, attribute string) (RawValue, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, ok := g.objects[objectName]
	if !ok {
		return Null(), fmt.Errorf("%s: %w", objectName, ErrObjectNotFound)
	}
	if msg, failing := entry.errors[attribute]; failing {
		return Null(), fmt.Errorf("failed to read %s of %s: %s", attribute, objectName, msg)
	}
	value, ok := entry.values[attribute]
	if !ok {
		return Null(), fmt.Errorf("%s of %s: %w", attribute, objectName, ErrAttributeNotFound)
	}
	return value, nil
}

// rawFromYAML converts a fixture value. Mappings become composites in document
// order, sequences become tables and scalars follow their resolved YAML tag.
func rawFromYAML(node *yaml.Node) (RawValue, error) {
	if node.Kind == 0 {
		return Null(), nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return rawFromYAML(node.Content[0])
	}
	if node.Kind == yaml.AliasNode {
		return rawFromYAML(node.Alias)
	}

	switch node.Kind {
	case yaml.MappingNode:
		keys := make([]string, 0, len(node.Content)/2)
		fields := make(map[string]RawValue, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			value, err := rawFromYAML(node.Content[i+1])
			if err != nil {
				return Null(), err
			}
			keys = append(keys, key)
			fields[key] = value
		}
		typeName := ""
		if node.ShortTag() != "!!map" {
			typeName = node.Tag
		}
		return NewComposite(typeName, keys, fields), nil

	case yaml.SequenceNode:
		var columns []string
		seen := make(map[string]bool)
		rows := make([]map[string]RawValue, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := rawFromYAML(item)
			if err != nil {
				return Null(), err
			}
			row := make(map[string]RawValue)
			if c := value.Composite(); c != nil {
				for _, k := range c.Keys {
					if !seen[k] {
						seen[k] = true
						columns = append(columns, k)
					}
					row[k] = c.Fields[k]
				}
			} else {
				if !seen[TableValueColumn] {
					seen[TableValueColumn] = true
					columns = append(columns, TableValueColumn)
				}
				row[TableValueColumn] = value
			}
			rows = append(rows, row)
		}
		return NewTable(columns, rows), nil

	case yaml.ScalarNode:
		return rawFromScalar(node)
	}

	return Null(), fmt.Errorf("unsupported YAML node at line %d", node.Line)
}

func rawFromScalar(node *yaml.Node) (RawValue, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Null(), err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Null(), err
		}
		return Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			var decoded float64
			if decErr := node.Decode(&decoded); decErr != nil {
				return Null(), decErr
			}
			f = decoded
		}
		return Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return Null(), err
		}
		return Time(t), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(node.Value)
		if err != nil {
			return Null(), err
		}
		return Bytes(b), nil
	default:
		return String(node.Value), nil
	}
}
