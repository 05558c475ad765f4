package core

import (
	"encoding"
	"reflect"
)

// unexported variables.
var (
	//nolint:gochecknoglobals // reflect type for text unmarshaling
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	//nolint:gochecknoglobals,inamedparam // reflect type for flag.Value-style setters
	stringSetterType = reflect.TypeFor[interface{ Set(string) error }]()
	//nolint:gochecknoglobals // reflect type for self-validating structs
	selfValidatorType = reflect.TypeFor[interface{ Validate() error }]()
)

// hasCustomConverter reports whether the type converts itself from a single
// string token, via encoding.TextUnmarshaler or a Set(string) error method.
func hasCustomConverter(t reflect.Type) bool {
	if t == nil {
		return false
	}

	ptr := reflect.PointerTo(t)

	return ptr.Implements(textUnmarshalerType) || ptr.Implements(stringSetterType)
}

// customConvert builds a value of target from one raw token using the
// type's own conversion method.
func customConvert(target reflect.Type, value string) (reflect.Value, error) {
	ptr := reflect.New(target)

	if u, ok := ptr.Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(value)); err != nil {
			return reflect.Value{}, err
		}

		return ptr.Elem(), nil
	}

	if s, ok := ptr.Interface().(interface{ Set(s string) error }); ok {
		if err := s.Set(value); err != nil {
			return reflect.Value{}, err
		}

		return ptr.Elem(), nil
	}

	return reflect.Value{}, configError("%s has no conversion method", target)
}

// selfValidator returns the type's own Validate method as a ValidatorFunc,
// or nil when the type does not validate itself.
func selfValidator(t reflect.Type) ValidatorFunc {
	if t == nil || !reflect.PointerTo(t).Implements(selfValidatorType) {
		return nil
	}

	return func(_ reflect.Type, value any) error {
		ptr := reflect.New(t)
		ptr.Elem().Set(reflect.ValueOf(value))

		v, ok := ptr.Interface().(interface{ Validate() error })
		if !ok {
			return nil
		}

		return v.Validate()
	}
}

func isBoolLike(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Bool
}

func isBytes(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// isIterable reports whether the type greedily consumes tokens element by
// element. Byte slices convert from a single token instead.
func isIterable(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Slice && !isBytes(t)
}

// isFixedTuple reports whether the type consumes a fixed token window per
// value.
func isFixedTuple(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Array
}

func isMapLike(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Map
}

// isStructLike reports whether the type expands into named sub-fields.
// Types with their own string conversion stay scalar.
func isStructLike(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Struct && !hasCustomConverter(t)
}

// unionMembers returns the candidate member types when t is an interface
// field configured with explicit member types, otherwise nil.
func unionMembers(t reflect.Type, types []reflect.Type) []reflect.Type {
	if t != nil && t.Kind() == reflect.Interface && len(types) > 0 {
		return types
	}

	return nil
}

// checkMapKey rejects map hints whose keys cannot come from CLI spellings.
func checkMapKey(t reflect.Type) error {
	if t.Key().Kind() != reflect.String {
		return configError("map key type must be a string, got %s", t.Key())
	}

	return nil
}

// emptyInstanceOf builds the implicit value produced by a negative
// spelling: false for bools, an empty container for iterables and maps,
// and a typed nil for pointers.
func emptyInstanceOf(t reflect.Type) any {
	switch {
	case t == nil:
		return nil
	case t.Kind() == reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface()
	case t.Kind() == reflect.Map:
		return reflect.MakeMap(t).Interface()
	default:
		return reflect.Zero(t).Interface()
	}
}
