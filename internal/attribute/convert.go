package attribute

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/stacklok/mbean-bridge/internal/backend"
)

// ErrAbsentValue is returned when a backend reports no value for an attribute.
var ErrAbsentValue = errors.New("attribute value is absent")

// ConversionError reports a raw value that cannot be represented in the
// declared property type.
type ConversionError struct {
	From   backend.Kind
	To     ValueType
	Reason string
}

func (e *ConversionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot convert %s to %s: %s", e.From, e.To, e.Reason)
}

func convErr(raw backend.RawValue, to ValueType, format string, args ...any) error {
	return &ConversionError{From: raw.Kind(), To: to, Reason: fmt.Sprintf(format, args...)}
}

// Convert turns a raw backend value into a value of the declared type. It never
// panics: anything unrepresentable yields a *ConversionError, and a null raw
// value yields ErrAbsentValue.
func Convert(raw backend.RawValue, to ValueType) (Value, error) {
	if raw.IsNull() {
		return nil, ErrAbsentValue
	}

	switch to {
	case TypeString:
		return toString(raw)
	case TypeBoolean:
		return toBool(raw)
	case TypeInteger:
		i, err := toInt64(raw, to)
		if err != nil {
			return nil, err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, convErr(raw, to, "%d overflows 32-bit integer", i)
		}
		return IntegerValue(int32(i)), nil
	case TypeLong:
		i, err := toInt64(raw, to)
		if err != nil {
			return nil, err
		}
		return LongValue(i), nil
	case TypeNumber:
		f, err := toFloat(raw, to)
		if err != nil {
			return nil, err
		}
		return NumberValue(f), nil
	case TypeDateTime:
		return toDateTime(raw)
	case TypeBlob:
		return toBlob(raw)
	case TypeInfoTable:
		return toTable(raw)
	case TypeLocation:
		c, err := toComponents(raw, to, []string{"latitude", "longitude"}, []string{"elevation"})
		if err != nil {
			return nil, err
		}
		return LocationValue{Latitude: c[0], Longitude: c[1], Elevation: c[2]}, nil
	case TypeVec2:
		c, err := toComponents(raw, to, []string{"x", "y"}, nil)
		if err != nil {
			return nil, err
		}
		return Vec2Value{X: c[0], Y: c[1]}, nil
	case TypeVec3:
		c, err := toComponents(raw, to, []string{"x", "y", "z"}, nil)
		if err != nil {
			return nil, err
		}
		return Vec3Value{X: c[0], Y: c[1], Z: c[2]}, nil
	case TypeVec4:
		c, err := toComponents(raw, to, []string{"x", "y", "z", "w"}, nil)
		if err != nil {
			return nil, err
		}
		return Vec4Value{X: c[0], Y: c[1], Z: c[2], W: c[3]}, nil
	case TypeThingCode:
		return toThingCode(raw)
	default:
		return nil, convErr(raw, to, "unsupported target type")
	}
}

func toString(raw backend.RawValue) (Value, error) {
	switch raw.Kind() {
	case backend.KindString:
		return StringValue(raw.Str()), nil
	case backend.KindBool:
		return StringValue(strconv.FormatBool(raw.BoolValue())), nil
	case backend.KindInt:
		return StringValue(strconv.FormatInt(raw.IntValue(), 10)), nil
	case backend.KindFloat:
		return StringValue(strconv.FormatFloat(raw.FloatValue(), 'g', -1, 64)), nil
	case backend.KindTime:
		return StringValue(raw.TimeValue().Format(time.RFC3339Nano)), nil
	case backend.KindBytes:
		return StringValue(base64.StdEncoding.EncodeToString(raw.BytesValue())), nil
	case backend.KindComposite, backend.KindTable:
		data, err := json.Marshal(raw.Interface())
		if err != nil {
			return nil, convErr(raw, TypeString, "%v", err)
		}
		return StringValue(data), nil
	default:
		return nil, convErr(raw, TypeString, "")
	}
}

func toBool(raw backend.RawValue) (Value, error) {
	switch raw.Kind() {
	case backend.KindBool:
		return BoolValue(raw.BoolValue()), nil
	case backend.KindInt:
		return BoolValue(raw.IntValue() != 0), nil
	case backend.KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(raw.Str()))
		if err != nil {
			return nil, convErr(raw, TypeBoolean, "%q is not a boolean", raw.Str())
		}
		return BoolValue(b), nil
	default:
		return nil, convErr(raw, TypeBoolean, "")
	}
}

func toInt64(raw backend.RawValue, to ValueType) (int64, error) {
	switch raw.Kind() {
	case backend.KindInt:
		return raw.IntValue(), nil
	case backend.KindFloat:
		f := raw.FloatValue()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, convErr(raw, to, "%v is not an integral number", f)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, convErr(raw, to, "%v overflows 64-bit integer", f)
		}
		return int64(f), nil
	case backend.KindBool:
		if raw.BoolValue() {
			return 1, nil
		}
		return 0, nil
	case backend.KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(raw.Str()), 10, 64)
		if err != nil {
			return 0, convErr(raw, to, "%q is not an integer", raw.Str())
		}
		return i, nil
	case backend.KindTime:
		return raw.TimeValue().UnixMilli(), nil
	default:
		return 0, convErr(raw, to, "")
	}
}

func toFloat(raw backend.RawValue, to ValueType) (float64, error) {
	switch raw.Kind() {
	case backend.KindFloat:
		return raw.FloatValue(), nil
	case backend.KindInt:
		return float64(raw.IntValue()), nil
	case backend.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw.Str()), 64)
		if err != nil {
			return 0, convErr(raw, to, "%q is not a number", raw.Str())
		}
		return f, nil
	default:
		return 0, convErr(raw, to, "")
	}
}

func toDateTime(raw backend.RawValue) (Value, error) {
	switch raw.Kind() {
	case backend.KindTime:
		return DateTimeValue(raw.TimeValue()), nil
	case backend.KindInt:
		return DateTimeValue(time.UnixMilli(raw.IntValue()).UTC()), nil
	case backend.KindString:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw.Str()))
		if err != nil {
			return nil, convErr(raw, TypeDateTime, "%q is not an RFC 3339 timestamp", raw.Str())
		}
		return DateTimeValue(t), nil
	default:
		return nil, convErr(raw, TypeDateTime, "")
	}
}

func toBlob(raw backend.RawValue) (Value, error) {
	switch raw.Kind() {
	case backend.KindBytes:
		return BlobValue(raw.BytesValue()), nil
	case backend.KindString:
		return BlobValue(raw.Str()), nil
	default:
		return nil, convErr(raw, TypeBlob, "")
	}
}

func toTable(raw backend.RawValue) (Value, error) {
	switch raw.Kind() {
	case backend.KindTable:
		tbl := raw.Table()
		rows := make([]map[string]any, len(tbl.Rows))
		for i, row := range tbl.Rows {
			r := make(map[string]any, len(row))
			for k, cell := range row {
				r[k] = cell.Interface()
			}
			rows[i] = r
		}
		return TableValue{Columns: tbl.Columns, Rows: rows}, nil
	case backend.KindComposite:
		c := raw.Composite()
		row := make(map[string]any, len(c.Keys))
		for _, k := range c.Keys {
			row[k] = c.Fields[k].Interface()
		}
		return TableValue{Columns: c.Keys, Rows: []map[string]any{row}}, nil
	default:
		return nil, convErr(raw, TypeInfoTable, "")
	}
}

// toComponents reads named float components from a composite, or from a
// comma separated string in the same order.
func toComponents(raw backend.RawValue, to ValueType, required, optional []string) ([]float64, error) {
	out := make([]float64, len(required)+len(optional))
	switch raw.Kind() {
	case backend.KindComposite:
		c := raw.Composite()
		for i, key := range append(append([]string{}, required...), optional...) {
			field, ok := c.Field(key)
			if !ok || field.IsNull() {
				if i < len(required) {
					return nil, convErr(raw, to, "missing component %q", key)
				}
				continue
			}
			f, err := toFloat(field, to)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	case backend.KindString:
		parts := strings.Split(raw.Str(), ",")
		if len(parts) < len(required) || len(parts) > len(out) {
			return nil, convErr(raw, to, "expected %d to %d components, got %d", len(required), len(out), len(parts))
		}
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, convErr(raw, to, "component %d %q is not a number", i, p)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, convErr(raw, to, "")
	}
}

func toThingCode(raw backend.RawValue) (Value, error) {
	var domain, instance int64
	switch raw.Kind() {
	case backend.KindComposite:
		c := raw.Composite()
		d, okD := c.Field("domainId")
		i, okI := c.Field("instanceId")
		if !okD || !okI {
			return nil, convErr(raw, TypeThingCode, "missing domainId or instanceId")
		}
		var err error
		if domain, err = toInt64(d, TypeThingCode); err != nil {
			return nil, err
		}
		if instance, err = toInt64(i, TypeThingCode); err != nil {
			return nil, err
		}
	case backend.KindString:
		d, i, ok := strings.Cut(raw.Str(), ":")
		if !ok {
			return nil, convErr(raw, TypeThingCode, "%q is not domain:instance", raw.Str())
		}
		var err error
		if domain, err = strconv.ParseInt(d, 10, 32); err != nil {
			return nil, convErr(raw, TypeThingCode, "invalid domain %q", d)
		}
		if instance, err = strconv.ParseInt(i, 10, 32); err != nil {
			return nil, convErr(raw, TypeThingCode, "invalid instance %q", i)
		}
	default:
		return nil, convErr(raw, TypeThingCode, "")
	}
	if domain < math.MinInt32 || domain > math.MaxInt32 || instance < math.MinInt32 || instance > math.MaxInt32 {
		return nil, convErr(raw, TypeThingCode, "component overflows 32-bit integer")
	}
	return ThingCodeValue{Domain: int32(domain), Instance: int32(instance)}, nil
}
