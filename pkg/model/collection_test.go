package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modelkit/internal/testutil"
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

func newAccounts(t *testing.T, raws []model.Raw) *model.Collection[*account] {
	t.Helper()
	c, err := model.NewCollection(raws, model.CollectionConfig[*account]{
		Constructor:   newAccount,
		Logger:        testutil.DiscardLogger(),
		EntityOptions: []model.Option{model.WithLogger(testutil.DiscardLogger())},
	})
	require.NoError(t, err)
	return c
}

func ages(t *testing.T, items []*account) []int64 {
	t.Helper()
	out := make([]int64, 0, len(items))
	for _, a := range items {
		age, err := a.GetInt("age")
		require.NoError(t, err)
		out = append(out, age)
	}
	return out
}

func TestNewCollection_PositionalAccess(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	assert.Equal(t, 3, c.Count())

	first, ok := c.First()
	require.True(t, ok)
	age, _ := first.GetInt("age")
	assert.Equal(t, int64(22), age)

	last, ok := c.Last()
	require.True(t, ok)
	age, _ = last.GetInt("age")
	assert.Equal(t, int64(33), age)

	for _, idx := range []int{99, 3, -1} {
		m, ok := c.At(idx)
		assert.False(t, ok, "index %d", idx)
		assert.Nil(t, m)
	}

	second, ok := c.At(1)
	require.True(t, ok)
	assert.True(t, second.admin())
}

func TestNewCollection_Empty(t *testing.T) {
	for _, raws := range [][]model.Raw{nil, {}} {
		c := newAccounts(t, raws)
		assert.Equal(t, 0, c.Count())

		_, ok := c.First()
		assert.False(t, ok)
		_, ok = c.Last()
		assert.False(t, ok)
		assert.Equal(t, "[]", c.DisplayString())
	}
}

func TestNewCollection_RequiresConstructor(t *testing.T) {
	_, err := model.NewCollection[*model.Entity](nil, model.CollectionConfig[*model.Entity]{})
	require.Error(t, err)

	var me *model.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, model.CodeInvalidConfig, me.Code)
}

func TestNewCollection_ConstructionFailurePropagates(t *testing.T) {
	raws := testutil.UserRaws()
	raws = append(raws, model.Raw{
		Persisted: value.Object{"admin": value.Bool(true)},
		Transient: value.Object{"admin": value.Bool(true)},
	})

	c, err := model.NewCollection(raws, model.CollectionConfig[*account]{Constructor: newAccount})
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, model.IsConstructionFailure(err))
	assert.True(t, model.IsSchemaViolation(err), "the constructor's own error stays reachable")

	var me *model.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 3, me.Index)
}

func TestNewCollection_CustomConstructorError(t *testing.T) {
	boom := errors.New("boom")
	ctor := func(model.Raw, ...model.Option) (*account, error) { return nil, boom }

	_, err := model.NewCollection([]model.Raw{{}}, model.CollectionConfig[*account]{Constructor: ctor})
	assert.ErrorIs(t, err, boom)
}

func TestNewCollection_Owner(t *testing.T) {
	type team struct{ name string }
	owner := &team{name: "analytical engines"}

	c, err := model.NewCollection(nil, model.CollectionConfig[*account]{
		Constructor: newAccount,
		Owner:       owner,
	})
	require.NoError(t, err)
	assert.Same(t, owner, c.Owner())
}

func TestCollection_EntityOptions(t *testing.T) {
	c, err := model.NewCollection(testutil.UserRaws(), model.CollectionConfig[*account]{
		Constructor:   newAccount,
		EntityOptions: []model.Option{model.WithAllowUnknown(true)},
	})
	require.NoError(t, err)

	first, _ := c.First()
	assert.True(t, first.AllowsUnknown())

	added, err := c.Add(testutil.UserRaw("x", "X", "Y", 1, false), model.WithAllowUnknown(false))
	require.NoError(t, err)
	assert.False(t, added.AllowsUnknown(), "per-call options override collection options")
}

func TestCollection_Add(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	added, err := c.Add(testutil.UserRaw("edsger", "Edsger", "Dijkstra", 72, false))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Count())

	last, _ := c.Last()
	assert.Same(t, added, last)
	assert.Equal(t, 3, c.IndexOf(added))
}

func TestCollection_AddFailureAppendsNothing(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	_, err := c.Add(model.Raw{
		Persisted: value.Object{"k": value.Int(1)},
		Transient: value.Object{"k": value.Int(1)},
	})
	require.Error(t, err)
	assert.True(t, model.IsSchemaViolation(err))
	assert.Equal(t, 3, c.Count())
}

func TestCollection_IndexOfByReference(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())
	second, _ := c.At(1)

	assert.Equal(t, 1, c.IndexOf(second))
	assert.True(t, c.Contains(second))

	lookalike, err := newAccount(second.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, -1, c.IndexOf(lookalike), "equal attributes are not identity")
	assert.False(t, c.Contains(lookalike))
}

func TestCollection_NilItemsAreNotFound(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	var missing *account
	assert.Equal(t, -1, c.IndexOf(missing))
	assert.False(t, c.Contains(missing))
	assert.False(t, c.Contains(&account{}), "wrapper without an entity")
	assert.Nil(t, c.RemoveItems(missing, &account{}))
	assert.Equal(t, 3, c.Count())

	base, err := model.NewCollection(testutil.UserRaws(), model.CollectionConfig[*model.Entity]{
		Constructor: model.New,
		Logger:      testutil.DiscardLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, -1, base.IndexOf(nil))
	assert.Nil(t, base.RemoveItems(nil))
}

func TestRemove_ByMatch(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	removed := c.Remove(model.RemoveOptions[*account]{
		Match: &model.Match{Key: "admin", Value: value.Bool(true)},
	})

	require.Len(t, removed, 1)
	assert.True(t, removed[0].admin())
	assert.Equal(t, []int64{22, 33}, ages(t, c.Items()))
}

func TestRemove_ByIndex(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	removed, ok := c.RemoveAt(0)
	require.True(t, ok)
	assert.Equal(t, []int64{22}, ages(t, []*account{removed}))
	assert.Equal(t, []int64{10, 33}, ages(t, c.Items()))

	_, ok = c.RemoveAt(5)
	assert.False(t, ok)
	_, ok = c.RemoveAt(-1)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Count())
}

func TestRemove_ByItems(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())
	first, _ := c.First()
	last, _ := c.Last()
	stranger, err := newAccount(testutil.UserRaw("s", "S", "T", 1, false))
	require.NoError(t, err)

	removed := c.RemoveItems(last, stranger, first)

	assert.Equal(t, []int64{33, 22}, ages(t, removed))
	assert.Equal(t, []int64{10}, ages(t, c.Items()))
}

func TestRemove_CriteriaOrder(t *testing.T) {
	c := newAccounts(t, append(testutil.UserRaws(),
		testutil.UserRaw("barbara", "Barbara", "Liskov", 10, false)))
	last, _ := c.Last()

	// Index 1 is removed first, so the match on age 10 only sees barbara,
	// and the items criterion finds nothing left to remove.
	removed := c.Remove(model.RemoveOptions[*account]{
		Index: model.Index(1),
		Match: &model.Match{Key: "age", Value: value.Int(10)},
		Items: []*account{last},
	})

	require.Len(t, removed, 2)
	assert.Equal(t, []int64{10, 10}, ages(t, removed))
	assert.True(t, removed[0].admin())
	assert.Same(t, last, removed[1])
	assert.Equal(t, []int64{22, 33}, ages(t, c.Items()))
}

func TestRemove_NothingMatched(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	assert.Nil(t, c.Remove(model.RemoveOptions[*account]{}))
	assert.Nil(t, c.RemoveWhere("admin", value.String("true")))
	assert.Nil(t, c.RemoveWhere("nickname", value.Null{}), "entities lacking the key never match")
	assert.Nil(t, c.Remove(model.RemoveOptions[*account]{Index: model.Index(99)}))
	assert.Equal(t, 3, c.Count())
}

func TestRemove_MatchAll(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	removed := c.RemoveWhere("admin", value.Bool(false))
	assert.Equal(t, []int64{22, 33}, ages(t, removed))
	assert.Equal(t, []int64{10}, ages(t, c.Items()))
}

func TestReset(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	require.NoError(t, c.Reset(nil))
	assert.Equal(t, 0, c.Count())

	require.NoError(t, c.Reset([]model.Raw{testutil.UserRaw("one", "O", "N", 1, false)}))
	assert.Equal(t, 1, c.Count())
}

func TestReset_FailureKeepsEntries(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())
	before := c.DisplayString()

	err := c.Reset([]model.Raw{
		testutil.UserRaw("one", "O", "N", 1, false),
		{Persisted: value.Object{"k": value.Int(1)}, Transient: value.Object{"k": value.Int(1)}},
	})
	require.Error(t, err)
	assert.True(t, model.IsConstructionFailure(err))
	assert.Equal(t, before, c.DisplayString())
}

func TestFindWhere(t *testing.T) {
	c := newAccounts(t, append(testutil.UserRaws(),
		testutil.UserRaw("barbara", "Barbara", "Liskov", 84, true)))

	admins := c.FindWhere(value.Object{"admin": value.Bool(true)})
	assert.Equal(t, []int64{10, 84}, ages(t, admins))

	both := c.FindWhere(value.Object{"admin": value.Bool(true), "age": value.Int(84)})
	assert.Equal(t, []int64{84}, ages(t, both))

	assert.Empty(t, c.FindWhere(value.Object{"nickname": value.String("x")}))
	assert.Len(t, c.FindWhere(value.Object{}), 4)

	// Reads current values, not construction-time values.
	first, _ := c.First()
	require.NoError(t, first.Set("admin", value.Bool(true)))
	assert.Equal(t, []int64{22, 10, 84}, ages(t, c.FindWhere(value.Object{"admin": value.Bool(true)})))
}

func TestFilter(t *testing.T) {
	c := newAccounts(t, testutil.UserRaws())

	adults := c.Filter(func(a *account) bool {
		age, _ := a.GetInt("age")
		return age >= 18
	})
	assert.Equal(t, []int64{22, 33}, ages(t, adults))

	none := c.Filter(func(*account) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCollection_Serialization(t *testing.T) {
	c := newAccounts(t, []model.Raw{
		{Persisted: value.Object{"id": value.Int(2)}, Transient: value.Object{"open": value.Bool(true)}},
		{Persisted: value.Object{"id": value.Int(1)}},
	})

	assert.Equal(t, `[{"id":2},{"id":1}]`, c.DisplayString())
	assert.Equal(t, c.DisplayString(), c.String())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2},{"id":1}]`, string(data))

	forms := c.CanonicalForm()
	require.Len(t, forms, 2)
	forms[0]["id"] = value.Int(99)
	assert.Equal(t, `[{"id":2},{"id":1}]`, c.DisplayString())
}

func TestCollection_OfBaseEntities(t *testing.T) {
	c, err := model.NewCollection(testutil.UserRaws(), model.CollectionConfig[*model.Entity]{
		Constructor: model.New,
	})
	require.NoError(t, err)

	admins := c.FindWhere(value.Object{"admin": value.Bool(true)})
	require.Len(t, admins, 1)
	name, err := admins[0].GetString("userName")
	require.NoError(t, err)
	assert.Equal(t, "alan", name)
}
