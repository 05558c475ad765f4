package core

import (
	"reflect"
)

// tokenCountForHint computes how many CLI tokens one value of the hint
// consumes, and whether the argument greedily consumes every remaining
// matching token. An explicit NTokens override replaces the count only;
// the consume-all behavior still derives from the type, unless the
// override is the consume-all sentinel -1.
func tokenCountForHint(t reflect.Type, p Parameter) (int, bool, error) {
	if p.Count {
		return 0, false, nil
	}

	if members := unionMembers(t, p.Types); members != nil {
		return unionTokenCount(members, p)
	}

	count, consumeAll, err := typeTokenCount(t, nil)
	if err != nil {
		return 0, false, err
	}

	if p.NTokens != nil {
		if *p.NTokens == -1 {
			return 1, true, nil
		}

		return *p.NTokens, consumeAll, nil
	}

	return count, consumeAll, nil
}

// unionTokenCount requires every member to consume the same number of
// tokens; a union whose members disagree cannot be bound.
func unionTokenCount(members []reflect.Type, p Parameter) (int, bool, error) {
	count, consumeAll, have := 0, false, false

	for _, member := range members {
		memberCount, memberAll, err := typeTokenCount(member, nil)
		if err != nil {
			return 0, false, err
		}

		if have && memberCount != count {
			return 0, false, configError(
				"union members disagree on token count (%d vs %d)", count, memberCount)
		}

		count, have = memberCount, true
		consumeAll = consumeAll || memberAll
	}

	if !have {
		return 0, false, configError("union has no usable members")
	}

	if p.NTokens != nil {
		if *p.NTokens == -1 {
			return 1, true, nil
		}

		return *p.NTokens, consumeAll, nil
	}

	return count, consumeAll, nil
}

//nolint:cyclop // one case per type shape
func typeTokenCount(t reflect.Type, inProgress map[reflect.Type]bool) (int, bool, error) {
	switch {
	case t == nil:
		return 1, false, nil
	case hasCustomConverter(t):
		return 1, false, nil
	case isBoolLike(t):
		return 0, false, nil
	case t.Kind() == reflect.Pointer:
		return typeTokenCount(t.Elem(), inProgress)
	case isBytes(t):
		return 1, false, nil
	case isIterable(t):
		count, _, err := typeTokenCount(t.Elem(), inProgress)
		if err != nil {
			return 0, false, err
		}

		return count, true, nil
	case isFixedTuple(t):
		count, _, err := typeTokenCount(t.Elem(), inProgress)
		if err != nil {
			return 0, false, err
		}

		return t.Len() * count, false, nil
	case isMapLike(t):
		return 1, true, nil
	case isStructLike(t):
		return structTokenCount(t, inProgress)
	case t.Kind() == reflect.Interface:
		// An interface hint without explicit member types converts as a
		// plain string.
		return 1, false, nil
	case scalarKind(t):
		return 1, false, nil
	default:
		return 0, false, configError("cannot bind %s from tokens", t)
	}
}

// structTokenCount sums the counts of the required fields. A var-positional
// field makes the whole struct consume-all; a struct needing zero tokens
// still consumes one so the argument has a place to bind.
func structTokenCount(t reflect.Type, inProgress map[reflect.Type]bool) (int, bool, error) {
	if inProgress[t] {
		return 0, false, configError("recursive type %s", t)
	}

	if inProgress == nil {
		inProgress = map[reflect.Type]bool{}
	}

	inProgress[t] = true
	defer delete(inProgress, t)

	fields, err := fieldsOf(t)
	if err != nil {
		return 0, false, err
	}

	total, consumeAll := 0, false

	for _, field := range fields {
		if field.Kind == VarPositional {
			consumeAll = true

			continue
		}

		if !field.Required() {
			continue
		}

		count, fieldAll, err := typeTokenCount(field.Type, inProgress)
		if err != nil {
			return 0, false, err
		}

		total += count
		consumeAll = consumeAll || fieldAll
	}

	if total == 0 && !consumeAll {
		return 1, false, nil
	}

	return total, consumeAll, nil
}

func scalarKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}
