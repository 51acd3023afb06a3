package trial

import "reflect"

// FixtureKey identifies a fixture by its Go type. Two keys compare equal
// exactly when the types are identical, so keys are usable as map keys and as
// join identities for fixture resolution.
type FixtureKey struct {
	typ reflect.Type
}

// Key returns the fixture key for type T.
func Key[T any]() FixtureKey {
	return FixtureKey{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// keyForType returns the fixture key for a reflected parameter type.
func keyForType(t reflect.Type) FixtureKey {
	return FixtureKey{typ: t}
}

// Type returns the underlying reflected type.
func (k FixtureKey) Type() reflect.Type {
	return k.typ
}

// String renders the key as the qualified type name, for diagnostics and
// reports.
func (k FixtureKey) String() string {
	if k.typ == nil {
		return "<nil>"
	}
	return k.typ.String()
}
