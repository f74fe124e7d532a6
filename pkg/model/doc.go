// Package model provides Entity, a record split into persisted and transient
// attribute namespaces, and Collection, an ordered group of entities built
// through an injected constructor.
//
// Entity:
//   - flat access: Get/Set and Attr(key) resolve the owning namespace
//   - sealing: writes to undeclared keys fail unless WithAllowUnknown(true)
//   - caching: Cached memoizes derived values until ClearCached
//   - serialization: CanonicalForm and MarshalJSON expose persisted only
//   - cloning: Clone and CloneAs produce independent deep copies
//
// Derived entities embed *Entity and provide a Constructor:
//
//	type User struct{ *model.Entity }
//
//	func NewUser(raw model.Raw, opts ...model.Option) (*User, error) {
//		e, err := model.New(raw, opts...)
//		if err != nil {
//			return nil, err
//		}
//		return &User{Entity: e}, nil
//	}
//
//	users, err := model.NewCollection(raws, model.CollectionConfig[*User]{
//		Constructor: NewUser,
//	})
//
// Nothing in this package is safe for concurrent mutation.
package model
