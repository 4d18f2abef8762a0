package attribute

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mbean-bridge/internal/backend"
)

func TestSplitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantAttr     string
		wantSubfield string
		wantSplit    bool
	}{
		{name: "composite split", input: "Pool_Size", wantAttr: "Pool", wantSubfield: "Size", wantSplit: true},
		{name: "no separator", input: "Heap", wantAttr: "Heap"},
		{name: "leading separator keeps whole name", input: "_X", wantAttr: "_X"},
		{name: "splits on last separator", input: "Heap_Memory_used", wantAttr: "Heap_Memory", wantSubfield: "used", wantSplit: true},
		{name: "trailing separator gives empty subfield", input: "Heap_", wantAttr: "Heap", wantSubfield: "", wantSplit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			attr, sub, ok := SplitName(tt.input)
			assert.Equal(t, tt.wantAttr, attr)
			assert.Equal(t, tt.wantSubfield, sub)
			assert.Equal(t, tt.wantSplit, ok)
		})
	}
}

func TestParseValueType(t *testing.T) {
	t.Parallel()

	vt, err := ParseValueType("number")
	require.NoError(t, err)
	assert.Equal(t, TypeNumber, vt)

	vt, err = ParseValueType(" Vec3 ")
	require.NoError(t, err)
	assert.Equal(t, TypeVec3, vt)

	_, err = ParseValueType("IMAGE")
	assert.Error(t, err)
}

func TestFromJavaType(t *testing.T) {
	t.Parallel()

	tests := map[string]ValueType{
		"java.lang.Double":  TypeNumber,
		"float":             TypeNumber,
		"long":              TypeLong,
		"java.lang.Long":    TypeLong,
		"java.lang.Short":   TypeInteger,
		"int":               TypeInteger,
		"boolean":           TypeBoolean,
		"java.lang.Boolean": TypeBoolean,
		"java.lang.String":  TypeString,
		"javax.management.openmbean.CompositeData": TypeString,
	}

	for javaType, want := range tests {
		assert.Equal(t, want, FromJavaType(javaType), javaType)
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	point := backend.NewComposite("Point", []string{"x", "y", "z"}, map[string]backend.RawValue{
		"x": backend.Float(1), "y": backend.Int(2), "z": backend.String("3.5"),
	})

	tests := []struct {
		name    string
		raw     backend.RawValue
		to      ValueType
		want    Value
		wantErr bool
	}{
		{name: "int to string", raw: backend.Int(42), to: TypeString, want: StringValue("42")},
		{name: "bool to string", raw: backend.Bool(true), to: TypeString, want: StringValue("true")},
		{name: "string to bool", raw: backend.String("false"), to: TypeBoolean, want: BoolValue(false)},
		{name: "garbage to bool", raw: backend.String("maybe"), to: TypeBoolean, wantErr: true},
		{name: "int to integer", raw: backend.Int(7), to: TypeInteger, want: IntegerValue(7)},
		{name: "integer overflow", raw: backend.Int(math.MaxInt32 + 1), to: TypeInteger, wantErr: true},
		{name: "integral float to long", raw: backend.Float(12), to: TypeLong, want: LongValue(12)},
		{name: "fractional float to long", raw: backend.Float(1.5), to: TypeLong, wantErr: true},
		{name: "string to long", raw: backend.String("9000000000"), to: TypeLong, want: LongValue(9000000000)},
		{name: "int to number", raw: backend.Int(3), to: TypeNumber, want: NumberValue(3)},
		{name: "string to number", raw: backend.String("0.25"), to: TypeNumber, want: NumberValue(0.25)},
		{name: "composite to number", raw: point, to: TypeNumber, wantErr: true},
		{name: "time to datetime", raw: backend.Time(ts), to: TypeDateTime, want: DateTimeValue(ts)},
		{name: "millis to datetime", raw: backend.Int(ts.UnixMilli()), to: TypeDateTime, want: DateTimeValue(ts)},
		{name: "string to blob", raw: backend.String("ab"), to: TypeBlob, want: BlobValue("ab")},
		{name: "composite to vec3", raw: point, to: TypeVec3, want: Vec3Value{X: 1, Y: 2, Z: 3.5}},
		{name: "composite missing component", raw: point, to: TypeVec4, wantErr: true},
		{name: "string to vec2", raw: backend.String("1, 2"), to: TypeVec2, want: Vec2Value{X: 1, Y: 2}},
		{name: "string to location", raw: backend.String("48.1,11.5"), to: TypeLocation, want: LocationValue{Latitude: 48.1, Longitude: 11.5}},
		{name: "string to thingcode", raw: backend.String("3:14"), to: TypeThingCode, want: ThingCodeValue{Domain: 3, Instance: 14}},
		{
			name: "composite to infotable",
			raw:  point,
			to:   TypeInfoTable,
			want: TableValue{Columns: []string{"x", "y", "z"}, Rows: []map[string]any{{"x": float64(1), "y": int64(2), "z": "3.5"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Convert(tt.raw, tt.to)
			if tt.wantErr {
				require.Error(t, err)
				var convErr *ConversionError
				assert.ErrorAs(t, err, &convErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.to, got.Type())
		})
	}
}

func TestConvert_NullIsAbsent(t *testing.T) {
	t.Parallel()

	_, err := Convert(backend.Null(), TypeString)
	assert.ErrorIs(t, err, ErrAbsentValue)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	values := []Value{
		StringValue("hello"),
		IntegerValue(-5),
		LongValue(1 << 40),
		NumberValue(2.5),
		DateTimeValue(time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)),
		BlobValue([]byte{0x01, 0x02}),
		Vec4Value{X: 1, Y: 2, Z: 3, W: 4},
		ThingCodeValue{Domain: 1, Instance: 2},
	}

	for _, v := range values {
		env, err := Encode(v)
		require.NoError(t, err)
		assert.Equal(t, v.Type(), env.Type)

		got, err := Decode(env)
		require.NoError(t, err)
		if dt, ok := v.(DateTimeValue); ok {
			assert.True(t, time.Time(dt).Equal(time.Time(got.(DateTimeValue))))
			continue
		}
		assert.Equal(t, v, got)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := Decode(&Envelope{Type: "IMAGE", Value: []byte(`""`)})
	assert.Error(t, err)
}
