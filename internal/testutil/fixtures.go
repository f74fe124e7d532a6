package testutil

import (
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// UserRaw builds a user record: identity and age persisted, admin transient.
func UserRaw(userName, firstName, lastName string, age int64, admin bool) model.Raw {
	return model.Raw{
		Persisted: value.Object{
			"userName":  value.String(userName),
			"firstName": value.String(firstName),
			"lastName":  value.String(lastName),
			"age":       value.Int(age),
			"expires":   value.String("2020-04-30T00:00:00-04:00"),
		},
		Transient: value.Object{
			"admin": value.Bool(admin),
		},
	}
}

// UserRaws returns three users with ages 22, 10, 33 and admin flags
// false, true, false, in that order.
func UserRaws() []model.Raw {
	return []model.Raw{
		UserRaw("ada", "Ada", "Lovelace", 22, false),
		UserRaw("alan", "Alan", "Turing", 10, true),
		UserRaw("grace", "Grace", "Hopper", 33, false),
	}
}

// NestedRaw builds a record with nested object and array attributes.
func NestedRaw() model.Raw {
	return model.Raw{
		Persisted: value.Object{
			"name": value.String("nested"),
			"complexObj": value.Object{
				"a": value.String("A"),
				"b": value.Object{"deep": value.Int(1)},
			},
			"tags": value.Array{value.String("x"), value.String("y")},
		},
		Transient: value.Object{
			"selection": value.Array{value.Int(0)},
		},
	}
}
