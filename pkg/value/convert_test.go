package value

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAnyScalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"nil", nil, Null{}},
		{"bool", true, Bool(true)},
		{"string", "ada", String("ada")},
		{"empty string", "", String("")},
		{"int", 22, Int(22)},
		{"int8", int8(-3), Int(-3)},
		{"int64", int64(math.MaxInt64), Int(math.MaxInt64)},
		{"uint8", uint8(7), Int(7)},
		{"uint64 in range", uint64(9), Int(9)},
		{"integral float", 33.0, Int(33)},
		{"json number", json.Number("10"), Int(10)},
		{"fractional float", 9.99, Float(9.99)},
		{"float32", float32(9.99), Float(9.99)},
		{"fractional json number", json.Number("1.25"), Float(1.25)},
		{"exponent json number", json.Number("1e3"), Int(1000)},
		{"beyond int64", 1e19, Float(1e19)},
		{"value passthrough", String("x"), String("x")},
		{"time", time.Date(2020, 4, 30, 0, 0, 0, 0, time.UTC), String("2020-04-30T00:00:00Z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAnyRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"NaN", math.NaN()},
		{"infinity", math.Inf(1)},
		{"json number overflow", json.Number("1e400")},
		{"uint64 overflow", uint64(math.MaxUint64)},
		{"struct", struct{ A int }{1}},
		{"int-keyed map", map[int]string{1: "a"}},
		{"nested NaN", map[string]any{"x": []any{1, math.NaN()}}},
		{"non-string yaml key", map[any]any{1: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAny(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestFromAnyCollections(t *testing.T) {
	got, err := FromAny(map[string]any{
		"tags":   []string{"a", "b"},
		"scores": []int{1, 2},
		"meta":   map[string]string{"k": "v"},
		"yaml":   map[any]any{"inner": true},
		"nested": []any{map[string]any{"n": 1}},
	})
	require.NoError(t, err)

	want := Object{
		"tags":   Array{String("a"), String("b")},
		"scores": Array{Int(1), Int(2)},
		"meta":   Object{"k": String("v")},
		"yaml":   Object{"inner": Bool(true)},
		"nested": Array{Object{"n": Int(1)}},
	}
	assert.True(t, Equal(want, got), "got %s", MustMarshal(got))
}

func TestFromAnyPointers(t *testing.T) {
	n := 5
	got, err := FromAny(&n)
	require.NoError(t, err)
	assert.Equal(t, Int(5), got)

	var nilPtr *int
	got, err = FromAny(nilPtr)
	require.NoError(t, err)
	assert.Equal(t, Null{}, got)
}

func TestObjectFromMap(t *testing.T) {
	obj, err := ObjectFromMap(nil)
	require.NoError(t, err)
	assert.NotNil(t, obj)
	assert.Empty(t, obj)

	obj, err = ObjectFromMap(map[string]any{"age": 22, "admin": false})
	require.NoError(t, err)
	assert.Equal(t, Object{"age": Int(22), "admin": Bool(false)}, obj)

	obj, err = ObjectFromMap(map[string]any{"ratio": 0.5})
	require.NoError(t, err)
	assert.Equal(t, Object{"ratio": Float(0.5)}, obj)

	_, err = ObjectFromMap(map[string]any{"ratio": math.Inf(-1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ratio"`)
}

func TestToAnyRoundTrip(t *testing.T) {
	obj := Object{
		"name":  String("ada"),
		"age":   Int(36),
		"price": Float(9.99),
		"admin": Bool(false),
		"tags":  Array{String("x"), Null{}},
		"meta":  Object{"k": String("v")},
	}

	native := ToAny(obj)
	back, err := FromAny(native)
	require.NoError(t, err)
	assert.True(t, Equal(obj, back))

	m := native.(map[string]any)
	assert.Equal(t, int64(36), m["age"])
	assert.Equal(t, 9.99, m["price"])
	assert.Equal(t, []any{"x", nil}, m["tags"])
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindNull, KindOf(nil))
	assert.Equal(t, KindNull, KindOf(Null{}))
	assert.Equal(t, KindString, KindOf(String("")))
	assert.Equal(t, KindInt, KindOf(Int(0)))
	assert.Equal(t, KindFloat, KindOf(Float(0.5)))
	assert.Equal(t, KindBool, KindOf(Bool(false)))
	assert.Equal(t, KindArray, KindOf(Array{}))
	assert.Equal(t, KindObject, KindOf(Object{}))

	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"null", "string", "int", "float", "bool", "array", "object"} {
		k, ok := ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, name, k.String())
	}

	for _, name := range []string{"number", "float64", "invalid", ""} {
		_, ok := ParseKind(name)
		assert.False(t, ok, name)
	}
}
