// Package backend provides access to management attribute backends: registries of
// named objects exposing typed, readable attributes.
package backend

import (
	"context"
	"errors"
)

const (
	// TypeJolokia is the backend type for JMX agents reached over Jolokia HTTP
	TypeJolokia = "jolokia"

	// TypeStatic is the backend type for in-memory object registries loaded from YAML
	TypeStatic = "static"

	// ProbeObjectName is registered by every JMX agent. Listing it answers
	// whether a backend is reachable.
	ProbeObjectName = "JMImplementation:type=MBeanServerDelegate"
)

var (
	// ErrObjectNotFound is returned when the backend has no object with the given name
	ErrObjectNotFound = errors.New("object not found")

	// ErrAttributeNotFound is returned when the object has no attribute with the given name
	ErrAttributeNotFound = errors.New("attribute not found")
)

// AttributeInfo describes one attribute of an object.
type AttributeInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Writable    bool   `json:"writable"`
}

// ObjectInfo describes an object and its attributes.
type ObjectInfo struct {
	ObjectName  string          `json:"objectName"`
	ClassName   string          `json:"className"`
	Description string          `json:"description"`
	Attributes  []AttributeInfo `json:"attributes"`
}

// Gateway is the read-only view of a management backend.
//
//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/stacklok/mbean-bridge/internal/backend Gateway
type Gateway interface {
	// Name returns the configured backend name
	Name() string

	// ListObjects returns the names of all objects matching the pattern.
	// An empty pattern matches every object.
	ListObjects(ctx context.Context, pattern string) ([]string, error)

	// DescribeObject returns metadata about an object and its attributes
	DescribeObject(ctx context.Context, objectName string) (*ObjectInfo, error)

	// GetAttributeValue reads a single attribute of an object
	GetAttributeValue(ctx context.Context, objectName, attribute string) (RawValue, error)
}
