package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

func TestAccessor_RoundTrip(t *testing.T) {
	e := newUser(t)

	age := e.Attr("age")
	assert.Equal(t, "age", age.Key())
	require.NoError(t, age.Set(value.Int(40)))

	got, ok := age.Get()
	require.True(t, ok)
	assert.Equal(t, value.Int(40), got)

	ns, ok := age.Namespace()
	require.True(t, ok)
	assert.Equal(t, model.Persisted, ns)
}

func TestAccessor_UndeclaredOnSealedEntity(t *testing.T) {
	e := newUser(t)
	before := e.FullString()

	err := e.Attr("nickname").Set(value.String("ada"))
	require.Error(t, err)
	assert.True(t, model.IsUnknownAttribute(err))
	assert.Equal(t, before, e.FullString())

	_, ok := e.Attr("nickname").Namespace()
	assert.False(t, ok)
}

func TestAccessors_SortedAndComplete(t *testing.T) {
	e := newUser(t)

	var keys []string
	for _, a := range e.Accessors() {
		keys = append(keys, a.Key())
	}
	assert.Equal(t, e.Keys(), keys)
}

func TestTypedGetters(t *testing.T) {
	e, err := model.New(model.Raw{
		Persisted: value.Object{
			"name":  value.String("ada"),
			"age":   value.Int(36),
			"price": value.Float(9.99),
			"tags":  value.Array{value.String("x")},
			"meta":  value.Object{"k": value.String("v")},
			"empty": value.Null{},
		},
		Transient: value.Object{"admin": value.Bool(true)},
	})
	require.NoError(t, err)

	name, err := e.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "ada", name)

	age, err := e.GetInt("age")
	require.NoError(t, err)
	assert.Equal(t, int64(36), age)

	price, err := e.GetFloat("price")
	require.NoError(t, err)
	assert.Equal(t, 9.99, price)

	widened, err := e.GetFloat("age")
	require.NoError(t, err)
	assert.Equal(t, 36.0, widened)

	admin, err := e.GetBool("admin")
	require.NoError(t, err)
	assert.True(t, admin)

	tags, err := e.GetArray("tags")
	require.NoError(t, err)
	assert.Equal(t, value.Array{value.String("x")}, tags)

	meta, err := e.GetObject("meta")
	require.NoError(t, err)
	assert.Equal(t, value.Object{"k": value.String("v")}, meta)
}

func TestTypedGetters_Errors(t *testing.T) {
	e, err := model.New(model.Raw{
		Persisted: value.Object{"age": value.Int(36), "empty": value.Null{}},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		read    func() error
		missing bool
	}{
		{"missing string", func() error { _, err := e.GetString("nope"); return err }, true},
		{"missing bool", func() error { _, err := e.GetBool("nope"); return err }, true},
		{"missing float", func() error { _, err := e.GetFloat("nope"); return err }, true},
		{"null as float", func() error { _, err := e.GetFloat("empty"); return err }, false},
		{"int as string", func() error { _, err := e.GetString("age"); return err }, false},
		{"int as bool", func() error { _, err := e.GetBool("age"); return err }, false},
		{"null as int", func() error { _, err := e.GetInt("empty"); return err }, false},
		{"int as array", func() error { _, err := e.GetArray("age"); return err }, false},
		{"int as object", func() error { _, err := e.GetObject("age"); return err }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read()
			require.Error(t, err)
			assert.Equal(t, tt.missing, model.IsMissingAttribute(err))
			assert.Equal(t, !tt.missing, model.IsTypeMismatch(err))
		})
	}
}

func TestTypedGetters_ReturnCopies(t *testing.T) {
	e, err := model.New(model.Raw{
		Persisted: value.Object{"meta": value.Object{"k": value.String("v")}},
	})
	require.NoError(t, err)

	meta, err := e.GetObject("meta")
	require.NoError(t, err)
	meta["k"] = value.String("mutated")

	assert.Equal(t, `{"meta":{"k":"v"}}`, e.DisplayString())
}
