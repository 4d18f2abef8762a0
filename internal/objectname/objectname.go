// Package objectname parses and matches structured management object names
// of the form "domain:key=value,key=value".
package objectname

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// DomainSeparator separates the domain from the key properties.
	DomainSeparator = ":"

	// PropertySeparator separates key properties from each other.
	PropertySeparator = ","

	// wildcardProperties is the trailing token of a property-list pattern.
	wildcardProperties = "*"
)

// ErrInvalidName is returned for malformed object names and patterns.
var ErrInvalidName = errors.New("invalid object name")

// Property is a single key=value pair of an object name.
type Property struct {
	Key   string
	Value string
}

// Name is a parsed object name. Properties keep their declaration order.
type Name struct {
	Domain     string
	Properties []Property
}

// Parse splits an object name into domain and ordered key properties.
func Parse(raw string) (*Name, error) {
	domain, props, ok := strings.Cut(raw, DomainSeparator)
	if !ok {
		return nil, fmt.Errorf("%w: object name %q has no domain separator", ErrInvalidName, raw)
	}
	if props == "" {
		return nil, fmt.Errorf("%w: object name %q has no key properties", ErrInvalidName, raw)
	}

	name := &Name{Domain: domain}
	for _, part := range strings.Split(props, PropertySeparator) {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: object name %q has malformed property %q", ErrInvalidName, raw, part)
		}
		name.Properties = append(name.Properties, Property{Key: key, Value: value})
	}

	return name, nil
}

// Get returns the value of the named key property.
func (n *Name) Get(key string) (string, bool) {
	for _, p := range n.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// String renders the name back into its canonical textual form.
func (n *Name) String() string {
	parts := make([]string, len(n.Properties))
	for i, p := range n.Properties {
		parts[i] = p.Key + "=" + p.Value
	}
	return n.Domain + DomainSeparator + strings.Join(parts, PropertySeparator)
}

// Pattern matches object names. An empty pattern, "*" and "*:*" match everything.
// Domains and property values may use '*' and '?' wildcards, and a trailing ",*"
// (or a lone "*") in the property list allows extra properties.
type Pattern struct {
	domain     string
	properties []Property
	open       bool
	all        bool
}

// ParsePattern compiles a pattern string.
func ParsePattern(raw string) (*Pattern, error) {
	if raw == "" || raw == "*" || raw == "*:*" {
		return &Pattern{all: true}, nil
	}

	domain, props, ok := strings.Cut(raw, DomainSeparator)
	if !ok {
		return nil, fmt.Errorf("%w: pattern %q has no domain separator", ErrInvalidName, raw)
	}

	p := &Pattern{domain: domain}
	for _, part := range strings.Split(props, PropertySeparator) {
		if part == wildcardProperties {
			p.open = true
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: pattern %q has malformed property %q", ErrInvalidName, raw, part)
		}
		p.properties = append(p.properties, Property{Key: key, Value: value})
	}
	return p, nil
}

// Match reports whether the raw object name matches the pattern.
func (p *Pattern) Match(raw string) bool {
	if p.all {
		return true
	}
	name, err := Parse(raw)
	if err != nil {
		return false
	}
	if !globMatch(p.domain, name.Domain) {
		return false
	}
	if !p.open && len(p.properties) != len(name.Properties) {
		return false
	}
	for _, want := range p.properties {
		got, ok := name.Get(want.Key)
		if !ok || !globMatch(want.Value, got) {
			return false
		}
	}
	return true
}

// Root returns the literal prefix of the pattern before the property wildcard,
// e.g. "com.mchange.v2.c3p0:type=PooledDataSource," for
// "com.mchange.v2.c3p0:type=PooledDataSource,*".
func Root(pattern string) string {
	return strings.TrimSuffix(pattern, wildcardProperties)
}

func globMatch(pattern, value string) bool {
	if pattern == "" {
		return value == ""
	}
	// path.Match treats '/' specially; object name values rarely contain it,
	// fall back to literal comparison when the pattern is not well formed.
	ok, err := path.Match(pattern, value)
	if err != nil {
		return pattern == value
	}
	return ok
}
