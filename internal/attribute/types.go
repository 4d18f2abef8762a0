// Package attribute defines attribute definitions, typed property values and the
// conversion from backend raw values into them.
package attribute

import (
	"fmt"
	"strings"
	"time"
)

// ValueType is the declared type of a property.
type ValueType string

// Supported property value types.
const (
	TypeString    ValueType = "STRING"
	TypeBoolean   ValueType = "BOOLEAN"
	TypeInteger   ValueType = "INTEGER"
	TypeLong      ValueType = "LONG"
	TypeNumber    ValueType = "NUMBER"
	TypeDateTime  ValueType = "DATETIME"
	TypeBlob      ValueType = "BLOB"
	TypeInfoTable ValueType = "INFOTABLE"
	TypeLocation  ValueType = "LOCATION"
	TypeVec2      ValueType = "VEC2"
	TypeVec3      ValueType = "VEC3"
	TypeVec4      ValueType = "VEC4"
	TypeThingCode ValueType = "THINGCODE"
)

var allTypes = []ValueType{
	TypeString, TypeBoolean, TypeInteger, TypeLong, TypeNumber, TypeDateTime, TypeBlob,
	TypeInfoTable, TypeLocation, TypeVec2, TypeVec3, TypeVec4, TypeThingCode,
}

// ParseValueType parses a type name case-insensitively.
func ParseValueType(s string) (ValueType, error) {
	upper := ValueType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range allTypes {
		if t == upper {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown value type %q", s)
}

const (
	// DefaultCategory is the category of properties managed by the bridge
	DefaultCategory = "mbean:attr"

	// CompositeSeparator separates an attribute name from a composite sub-field key
	CompositeSeparator = "_"
)

// Definition describes one property bound to a backend attribute.
type Definition struct {
	// Name is the property name. It may encode "<attribute>_<subfield>".
	Name string `json:"name" yaml:"name"`

	// Object is the object name or a macro token
	Object string `json:"object" yaml:"object"`

	// Type is the declared property type
	Type ValueType `json:"type" yaml:"type"`

	// CacheTime is in milliseconds. nil or 0 means always read, negative means
	// never read automatically, positive means read when older than the value.
	CacheTime *int64 `json:"cacheTimeMs,omitempty" yaml:"cacheTimeMs,omitempty"`

	// Logged marks the property for history recording
	Logged bool `json:"logged" yaml:"logged"`

	// Category groups definitions; only DefaultCategory is synchronized
	Category string `json:"category" yaml:"category"`
}

// GetCategory returns the category, defaulting to DefaultCategory.
func (d *Definition) GetCategory() string {
	if d.Category == "" {
		return DefaultCategory
	}
	return d.Category
}

// SplitName splits a property name on the last composite separator. The split
// only applies when the attribute part is non-empty; otherwise the whole name
// is the attribute and ok is false. A trailing separator splits into an empty
// sub-field key.
func SplitName(name string) (attr, subfield string, ok bool) {
	idx := strings.LastIndex(name, CompositeSeparator)
	if idx > 0 {
		return name[:idx], name[idx+len(CompositeSeparator):], true
	}
	return name, "", false
}

// Row is one property update.
type Row struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Value     Value     `json:"-"`
}

// State is the last stored value of a property.
type State struct {
	Name       string    `json:"name"`
	Value      Value     `json:"-"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// FromJavaType maps a backend attribute type name to a property type.
func FromJavaType(javaType string) ValueType {
	switch javaType {
	case "java.lang.Double", "double", "java.lang.Float", "float":
		return TypeNumber
	case "java.lang.Long", "long":
		return TypeLong
	case "java.lang.Short", "java.lang.Integer", "int":
		return TypeInteger
	case "java.lang.Boolean", "boolean":
		return TypeBoolean
	default:
		return TypeString
	}
}
