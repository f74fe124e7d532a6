package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysUTF16Order(t *testing.T) {
	obj := Object{
		"a":  Int(1),
		"A":  Int(2),
		"aa": Int(3),
		"aA": Int(4),
		"Aa": Int(5),
		"AA": Int(6),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeys(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"aa", "a", 1},
		{"a", "aa", -1},
		{"", "", 0},
		{"", "a", -1},
		// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FFFD.
		{"\U0001F600", "\uFFFD", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CompareKeys(tt.a, tt.b), "CompareKeys(%q, %q)", tt.a, tt.b)
	}
}

func TestObjectHas(t *testing.T) {
	obj := Object{"present": Null{}, "zero": Int(0)}

	assert.True(t, obj.Has("present"))
	assert.True(t, obj.Has("zero"))
	assert.False(t, obj.Has("absent"))
}

func TestObjectOf(t *testing.T) {
	obj := ObjectOf(P("name", String("ada")), P("age", Int(36)), P("name", String("grace")))

	assert.Len(t, obj, 2)
	assert.Equal(t, String("grace"), obj["name"])
	assert.Equal(t, Int(36), obj["age"])
}

func TestCloneIsDeep(t *testing.T) {
	original := Object{
		"tags": Array{String("a"), String("b")},
		"nested": Object{
			"inner": Object{"n": Int(1)},
		},
	}

	clone := original.Clone()
	require.True(t, Equal(original, clone))

	clone["tags"].(Array)[0] = String("changed")
	clone["nested"].(Object)["inner"].(Object)["n"] = Int(99)
	clone["added"] = Bool(true)

	assert.Equal(t, String("a"), original["tags"].(Array)[0])
	assert.Equal(t, Int(1), original["nested"].(Object)["inner"].(Object)["n"])
	assert.False(t, original.Has("added"))
}

func TestCloneNilObject(t *testing.T) {
	var obj Object
	clone := obj.Clone()

	require.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestCloneScalars(t *testing.T) {
	assert.Equal(t, String("x"), Clone(String("x")))
	assert.Equal(t, Int(0), Clone(Int(0)))
	assert.Equal(t, Float(0.5), Clone(Float(0.5)))
	assert.Equal(t, Null{}, Clone(Null{}))
	assert.Nil(t, Clone(nil))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", String("x"), String("x"), true},
		{"different string", String("x"), String("y"), false},
		{"int vs string", Int(1), String("1"), false},
		{"zero ints", Int(0), Int(0), true},
		{"floats", Float(9.99), Float(9.99), true},
		{"different floats", Float(9.99), Float(9.98), false},
		{"int and integral float", Int(3), Float(3), true},
		{"int and fractional float", Int(3), Float(3.5), false},
		{"float vs string", Float(1.5), String("1.5"), false},
		{"false bools", Bool(false), Bool(false), true},
		{"nil and null", nil, Null{}, true},
		{"null and zero", Null{}, Int(0), false},
		{"arrays", Array{Int(1), Int(2)}, Array{Int(1), Int(2)}, true},
		{"array order", Array{Int(1), Int(2)}, Array{Int(2), Int(1)}, false},
		{"array length", Array{Int(1)}, Array{Int(1), Int(1)}, false},
		{"objects", Object{"a": Int(1)}, Object{"a": Int(1)}, true},
		{"object missing key", Object{"a": Int(1)}, Object{"b": Int(1)}, false},
		{"nested objects", Object{"o": Object{"x": Bool(true)}}, Object{"o": Object{"x": Bool(true)}}, true},
		{"nested differ", Object{"o": Object{"x": Bool(true)}}, Object{"o": Object{"x": Bool(false)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a), "Equal must be symmetric")
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse([]byte(`{"name":"ada","age":36,"admin":false,"tags":["x"],"meta":null}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, String("ada"), obj["name"])
	assert.Equal(t, Int(36), obj["age"])
	assert.Equal(t, Bool(false), obj["admin"])
	assert.Equal(t, Array{String("x")}, obj["tags"])
	assert.Equal(t, Null{}, obj["meta"])
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{`1.5`, Float(1.5)},
		{`{"price":9.99}`, Object{"price": Float(9.99)}},
		{`{"x":1e3}`, Object{"x": Int(1000)}},
		{`[2.0]`, Array{Int(2)}},
		{`-0.25`, Float(-0.25)},
		{`12345678901234567890`, Float(12345678901234567890)},
	}
	for _, tt := range tests {
		got, err := Parse([]byte(tt.input))
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := Parse([]byte(`1e400`))
	assert.Error(t, err)
}

func TestObjectUnmarshalJSON(t *testing.T) {
	var wrapper struct {
		Attrs Object `json:"attrs"`
		Empty Object `json:"empty"`
	}

	err := json.Unmarshal([]byte(`{"attrs":{"a":1,"b":{"c":"d"}},"empty":null}`), &wrapper)
	require.NoError(t, err)

	assert.Equal(t, Int(1), wrapper.Attrs["a"])
	assert.Equal(t, Object{"c": String("d")}, wrapper.Attrs["b"])
	assert.Nil(t, wrapper.Empty)
}

func TestObjectUnmarshalJSONRejectsArray(t *testing.T) {
	var obj Object
	err := json.Unmarshal([]byte(`[1,2]`), &obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON object")
}

func TestArrayUnmarshalJSON(t *testing.T) {
	var arr Array
	require.NoError(t, json.Unmarshal([]byte(`[1,"two",true,null]`), &arr))
	assert.Equal(t, Array{Int(1), String("two"), Bool(true), Null{}}, arr)
}

func TestCheckFinite(t *testing.T) {
	assert.NoError(t, CheckFinite(Object{"price": Float(9.99), "tags": Array{Int(1)}}))
	assert.NoError(t, CheckFinite(nil))

	err := CheckFinite(Object{"a": Object{"b": Array{Float(1), Float(math.NaN())}}})
	require.Error(t, err)
	assert.Equal(t, `["a"]: ["b"]: [1]: number is not finite: NaN`, err.Error())
}
