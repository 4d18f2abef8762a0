package backend

import (
	"fmt"
	"time"
)

// Kind identifies the shape of a RawValue.
type Kind int

// Raw value kinds reported by a backend.
const (
	KindNull Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindTime
	KindBytes
	KindComposite
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	case KindBytes:
		return "bytes"
	case KindComposite:
		return "composite"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RawValue is an attribute value as reported by a backend, before it is
// converted into a typed property value.
type RawValue struct {
	kind      Kind
	str       string
	b         bool
	i         int64
	f         float64
	t         time.Time
	bytes     []byte
	composite *Composite
	table     *Table
}

// Composite is a struct-like value with named fields, keys in backend order.
type Composite struct {
	Keys   []string
	Fields map[string]RawValue
	// TypeName is the backend's type name for the composite, when known.
	TypeName string
}

// Field returns the sub-value stored under key.
func (c *Composite) Field(key string) (RawValue, bool) {
	if c == nil {
		return Null(), false
	}
	v, ok := c.Fields[key]
	return v, ok
}

// TableValueColumn is the single column of a table built from a list of scalars.
const TableValueColumn = "value"

// Table is a tabular value: an ordered column set and rows keyed by column.
type Table struct {
	Columns []string
	Rows    []map[string]RawValue
}

// Null returns the absent value.
func Null() RawValue { return RawValue{kind: KindNull} }

// String wraps a string.
func String(s string) RawValue { return RawValue{kind: KindString, str: s} }

// Bool wraps a boolean.
func Bool(b bool) RawValue { return RawValue{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) RawValue { return RawValue{kind: KindInt, i: i} }

// Float wraps a floating point number.
func Float(f float64) RawValue { return RawValue{kind: KindFloat, f: f} }

// Time wraps a timestamp.
func Time(t time.Time) RawValue { return RawValue{kind: KindTime, t: t} }

// Bytes wraps binary data.
func Bytes(b []byte) RawValue { return RawValue{kind: KindBytes, bytes: b} }

// NewComposite builds a composite value. keys fixes the field order.
func NewComposite(typeName string, keys []string, fields map[string]RawValue) RawValue {
	return RawValue{kind: KindComposite, composite: &Composite{Keys: keys, Fields: fields, TypeName: typeName}}
}

// NewTable builds a tabular value.
func NewTable(columns []string, rows []map[string]RawValue) RawValue {
	return RawValue{kind: KindTable, table: &Table{Columns: columns, Rows: rows}}
}

// Kind reports the value's kind.
func (v RawValue) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v RawValue) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload.
func (v RawValue) Str() string { return v.str }

// BoolValue returns the boolean payload.
func (v RawValue) BoolValue() bool { return v.b }

// IntValue returns the integer payload.
func (v RawValue) IntValue() int64 { return v.i }

// FloatValue returns the floating point payload.
func (v RawValue) FloatValue() float64 { return v.f }

// TimeValue returns the timestamp payload.
func (v RawValue) TimeValue() time.Time { return v.t }

// BytesValue returns the binary payload.
func (v RawValue) BytesValue() []byte { return v.bytes }

// Composite returns the composite payload, nil for other kinds.
func (v RawValue) Composite() *Composite { return v.composite }

// Table returns the tabular payload, nil for other kinds.
func (v RawValue) Table() *Table { return v.table }

// Interface converts the value into plain Go values (maps, slices, scalars),
// suitable for JSON encoding and previews.
func (v RawValue) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindTime:
		return v.t
	case KindBytes:
		return v.bytes
	case KindComposite:
		out := make(map[string]any, len(v.composite.Keys))
		for _, k := range v.composite.Keys {
			out[k] = v.composite.Fields[k].Interface()
		}
		return out
	case KindTable:
		rows := make([]map[string]any, len(v.table.Rows))
		for i, row := range v.table.Rows {
			r := make(map[string]any, len(row))
			for k, cell := range row {
				r[k] = cell.Interface()
			}
			rows[i] = r
		}
		return rows
	default:
		return nil
	}
}
