package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modelkit/internal/testutil"
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

func testCollection(t *testing.T) *model.Collection[*model.Entity] {
	t.Helper()
	logger := testutil.DiscardLogger()
	coll, err := model.NewCollection(testutil.UserRaws(), model.CollectionConfig[*model.Entity]{
		Constructor: model.New,
		Logger:      logger,
		EntityOptions: []model.Option{
			model.WithLogger(logger),
			model.WithIDGenerator(model.NewSequenceGenerator(IDPrefix)),
		},
	})
	require.NoError(t, err)
	return coll
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	coll := testCollection(t)

	assertions := []Assertion{
		{Type: AssertCount, Count: 3},
		{Type: AssertCount, Where: map[string]any{"admin": true}, Count: 1},
		{Type: AssertCount, Where: map[string]any{"nobody": "here"}, Count: 0},
		{Type: AssertOrder, Key: "age", Values: []any{22, 10, 33}},
		{Type: AssertOrder, Key: "nickname", Values: []any{nil, nil, nil}},
		{Type: AssertNamespace, Key: "age", Namespace: "persisted"},
		{Type: AssertNamespace, Item: 1, Key: "admin", Namespace: "transient"},
		{Type: AssertNamespace, Key: "nickname", Namespace: NamespaceAbsent},
		{Type: AssertCanonical, Item: 2, Expect: map[string]any{
			"userName":  "grace",
			"firstName": "Grace",
			"lastName":  "Hopper",
			"age":       33,
			"expires":   "2020-04-30T00:00:00-04:00",
		}},
	}

	assert.Empty(t, EvaluateAssertions(coll, assertions))
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	coll := testCollection(t)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "count",
			assertion: Assertion{Type: AssertCount, Count: 99},
			want:      "Assertion failed: count",
		},
		{
			name:      "order",
			assertion: Assertion{Type: AssertOrder, Key: "nickname", Values: []any{"x"}},
			want:      "Assertion failed: order",
		},
		{
			name:      "canonical",
			assertion: Assertion{Type: AssertCanonical, Expect: map[string]any{"userName": "nobody"}},
			want:      "Assertion failed: canonical",
		},
		{
			name:      "namespace",
			assertion: Assertion{Type: AssertNamespace, Key: "nickname", Namespace: "transient"},
			want:      "nickname in absent",
		},
		{
			name:      "item out of range",
			assertion: Assertion{Type: AssertCanonical, Item: 50, Expect: map[string]any{}},
			want:      "item 50 out of range",
		},
		{
			name:      "unknown type",
			assertion: Assertion{Type: "trace_order"},
			want:      `unknown assertion type "trace_order"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(coll, []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertions[0]: ")
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCount,
		Expected: "2 entities where {}",
		Actual:   "1 entities",
		Final:    []value.Object{{"age": value.Int(3), "userName": value.String("ada")}},
	}

	want := "Assertion failed: count\n" +
		"  Expected: 2 entities where {}\n" +
		"  Actual: 1 entities\n" +
		"\nFinal collection:\n" +
		"  [0] {\"age\":3,\"userName\":\"ada\"}\n"
	assert.Equal(t, want, err.Error())
}

func TestValidateAssertion(t *testing.T) {
	assert.NoError(t, validateAssertion(0, &Assertion{Type: AssertCount}))
	assert.NoError(t, validateAssertion(0, &Assertion{Type: AssertNamespace, Key: "a", Namespace: NamespaceAbsent}))

	assert.ErrorContains(t, validateAssertion(1, &Assertion{}), "assertions[1]: type is required")
	assert.ErrorContains(t, validateAssertion(0, &Assertion{Type: AssertOrder}), "order requires key")
	assert.ErrorContains(t, validateAssertion(0, &Assertion{Type: AssertCanonical}), "canonical requires expect")
	assert.ErrorContains(t, validateAssertion(0, &Assertion{Type: AssertNamespace, Namespace: "persisted"}), "namespace requires key")
}
