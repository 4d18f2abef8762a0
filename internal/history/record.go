package history

import (
	"fmt"
	"time"

	"github.com/stacklok/mbean-bridge/internal/attribute"
)

// record is the stored form of an entry. Exactly one value field is set,
// selected by Type.
type record struct {
	Type      attribute.ValueType `json:"t"`
	Timestamp time.Time           `json:"ts"`

	String   *string                   `json:"s,omitempty"`
	Bool     *bool                     `json:"b,omitempty"`
	Integer  *int32                    `json:"i,omitempty"`
	Long     *int64                    `json:"l,omitempty"`
	Number   *float64                  `json:"n,omitempty"`
	DateTime *time.Time                `json:"dt,omitempty"`
	Blob     []byte                    `json:"blob,omitempty"`
	Table    *attribute.TableValue     `json:"table,omitempty"`
	Location *attribute.LocationValue  `json:"loc,omitempty"`
	Vec2     *attribute.Vec2Value      `json:"v2,omitempty"`
	Vec3     *attribute.Vec3Value      `json:"v3,omitempty"`
	Vec4     *attribute.Vec4Value      `json:"v4,omitempty"`
	Code     *attribute.ThingCodeValue `json:"code,omitempty"`
}

func toRecord(e Entry) (*record, error) {
	r := &record{Timestamp: e.Timestamp.UTC()}
	switch v := e.Value.(type) {
	case attribute.StringValue:
		s := string(v)
		r.String = &s
	case attribute.BoolValue:
		b := bool(v)
		r.Bool = &b
	case attribute.IntegerValue:
		i := int32(v)
		r.Integer = &i
	case attribute.LongValue:
		l := int64(v)
		r.Long = &l
	case attribute.NumberValue:
		n := float64(v)
		r.Number = &n
	case attribute.DateTimeValue:
		t := time.Time(v).UTC()
		r.DateTime = &t
	case attribute.BlobValue:
		r.Blob = append([]byte{}, v...)
	case attribute.TableValue:
		r.Table = &v
	case attribute.LocationValue:
		r.Location = &v
	case attribute.Vec2Value:
		r.Vec2 = &v
	case attribute.Vec3Value:
		r.Vec3 = &v
	case attribute.Vec4Value:
		r.Vec4 = &v
	case attribute.ThingCodeValue:
		r.Code = &v
	default:
		return nil, fmt.Errorf("cannot record value of %s: unsupported type %T", e.Attribute, e.Value)
	}
	r.Type = e.Value.Type()
	return r, nil
}

func (r *record) value() (attribute.Value, error) {
	switch {
	case r.Type == attribute.TypeString && r.String != nil:
		return attribute.StringValue(*r.String), nil
	case r.Type == attribute.TypeBoolean && r.Bool != nil:
		return attribute.BoolValue(*r.Bool), nil
	case r.Type == attribute.TypeInteger && r.Integer != nil:
		return attribute.IntegerValue(*r.Integer), nil
	case r.Type == attribute.TypeLong && r.Long != nil:
		return attribute.LongValue(*r.Long), nil
	case r.Type == attribute.TypeNumber && r.Number != nil:
		return attribute.NumberValue(*r.Number), nil
	case r.Type == attribute.TypeDateTime && r.DateTime != nil:
		return attribute.DateTimeValue(*r.DateTime), nil
	case r.Type == attribute.TypeBlob:
		return attribute.BlobValue(r.Blob), nil
	case r.Type == attribute.TypeInfoTable && r.Table != nil:
		return *r.Table, nil
	case r.Type == attribute.TypeLocation && r.Location != nil:
		return *r.Location, nil
	case r.Type == attribute.TypeVec2 && r.Vec2 != nil:
		return *r.Vec2, nil
	case r.Type == attribute.TypeVec3 && r.Vec3 != nil:
		return *r.Vec3, nil
	case r.Type == attribute.TypeVec4 && r.Vec4 != nil:
		return *r.Vec4, nil
	case r.Type == attribute.TypeThingCode && r.Code != nil:
		return *r.Code, nil
	}
	return nil, fmt.Errorf("corrupt history record of type %q", r.Type)
}
