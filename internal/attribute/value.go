package attribute

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Value is a typed property value. The set of implementations is closed.
type Value interface {
	Type() ValueType
	isValue()
}

// StringValue is a STRING property value.
type StringValue string

// BoolValue is a BOOLEAN property value.
type BoolValue bool

// IntegerValue is an INTEGER property value.
type IntegerValue int32

// LongValue is a LONG property value.
type LongValue int64

// NumberValue is a NUMBER property value.
type NumberValue float64

// DateTimeValue is a DATETIME property value.
type DateTimeValue time.Time

// BlobValue is a BLOB property value.
type BlobValue []byte

// TableValue is an INFOTABLE property value.
type TableValue struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// LocationValue is a LOCATION property value.
type LocationValue struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// Vec2Value is a VEC2 property value.
type Vec2Value struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3Value is a VEC3 property value.
type Vec3Value struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec4Value is a VEC4 property value.
type Vec4Value struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// ThingCodeValue is a THINGCODE property value.
type ThingCodeValue struct {
	Domain   int32 `json:"domainId"`
	Instance int32 `json:"instanceId"`
}

// Type reports the declared type of each value variant.
func (StringValue) Type() ValueType    { return TypeString }
func (BoolValue) Type() ValueType      { return TypeBoolean }
func (IntegerValue) Type() ValueType   { return TypeInteger }
func (LongValue) Type() ValueType      { return TypeLong }
func (NumberValue) Type() ValueType    { return TypeNumber }
func (DateTimeValue) Type() ValueType  { return TypeDateTime }
func (BlobValue) Type() ValueType      { return TypeBlob }
func (TableValue) Type() ValueType     { return TypeInfoTable }
func (LocationValue) Type() ValueType  { return TypeLocation }
func (Vec2Value) Type() ValueType      { return TypeVec2 }
func (Vec3Value) Type() ValueType      { return TypeVec3 }
func (Vec4Value) Type() ValueType      { return TypeVec4 }
func (ThingCodeValue) Type() ValueType { return TypeThingCode }

func (StringValue) isValue()    {}
func (BoolValue) isValue()      {}
func (IntegerValue) isValue()   {}
func (LongValue) isValue()      {}
func (NumberValue) isValue()    {}
func (DateTimeValue) isValue()  {}
func (BlobValue) isValue()      {}
func (TableValue) isValue()     {}
func (LocationValue) isValue()  {}
func (Vec2Value) isValue()      {}
func (Vec3Value) isValue()      {}
func (Vec4Value) isValue()      {}
func (ThingCodeValue) isValue() {}

// Envelope is the persisted form of a Value.
type Envelope struct {
	Type  ValueType       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Encode wraps a value into its persisted envelope.
func Encode(v Value) (*Envelope, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot encode nil value")
	}
	var payload any = v
	if dt, ok := v.(DateTimeValue); ok {
		payload = time.Time(dt).UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s value: %w", v.Type(), err)
	}
	return &Envelope{Type: v.Type(), Value: data}, nil
}

// Decode restores a value from its persisted envelope.
func Decode(env *Envelope) (Value, error) {
	if env == nil {
		return nil, fmt.Errorf("cannot decode nil envelope")
	}
	var (
		v   Value
		err error
	)
	switch env.Type {
	case TypeString:
		v, err = decodeInto[StringValue](env.Value)
	case TypeBoolean:
		v, err = decodeInto[BoolValue](env.Value)
	case TypeInteger:
		v, err = decodeInto[IntegerValue](env.Value)
	case TypeLong:
		v, err = decodeInto[LongValue](env.Value)
	case TypeNumber:
		v, err = decodeInto[NumberValue](env.Value)
	case TypeDateTime:
		var s string
		if err = json.Unmarshal(env.Value, &s); err == nil {
			var t time.Time
			t, err = time.Parse(time.RFC3339Nano, s)
			v = DateTimeValue(t)
		}
	case TypeBlob:
		v, err = decodeInto[BlobValue](env.Value)
	case TypeInfoTable:
		v, err = decodeInto[TableValue](env.Value)
	case TypeLocation:
		v, err = decodeInto[LocationValue](env.Value)
	case TypeVec2:
		v, err = decodeInto[Vec2Value](env.Value)
	case TypeVec3:
		v, err = decodeInto[Vec3Value](env.Value)
	case TypeVec4:
		v, err = decodeInto[Vec4Value](env.Value)
	case TypeThingCode:
		v, err = decodeInto[ThingCodeValue](env.Value)
	default:
		return nil, fmt.Errorf("unknown value type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s value: %w", env.Type, err)
	}
	return v, nil
}

func decodeInto[T Value](data json.RawMessage) (Value, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Interface returns the value as plain Go data for JSON responses.
func Interface(v Value) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case StringValue:
		return string(tv)
	case BoolValue:
		return bool(tv)
	case IntegerValue:
		return int32(tv)
	case LongValue:
		return int64(tv)
	case NumberValue:
		return float64(tv)
	case DateTimeValue:
		return time.Time(tv)
	case BlobValue:
		return []byte(tv)
	default:
		return tv
	}
}
