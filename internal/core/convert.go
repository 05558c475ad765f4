package core

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// unexported variables.
var (
	truthyWords = map[string]bool{"yes": true, "y": true, "1": true, "true": true, "t": true}  //nolint:gochecknoglobals // fixed vocabulary
	falsyWords  = map[string]bool{"no": true, "n": true, "0": true, "false": true, "f": true}  //nolint:gochecknoglobals // fixed vocabulary

	//nolint:gochecknoglobals // reflect type for duration special-casing
	durationType = reflect.TypeFor[time.Duration]()
)

// convertTokens builds one value of type t from raw tokens, recursively.
// Union, literal, and enum configuration applies at this node only;
// recursion into elements and fields uses plain type-driven rules.
func convertTokens(t reflect.Type, p Parameter, tokens []Token) (reflect.Value, error) {
	if members := unionMembers(t, p.Types); members != nil {
		return convertUnion(t, p, members, tokens)
	}

	if len(p.ChoiceNames) > 0 {
		return convertEnum(t, p, tokens)
	}

	if len(p.Choices) > 0 {
		return convertLiteral(t, p, tokens)
	}

	elem := elemParameter(p)

	switch {
	case hasCustomConverter(t):
		return convertScalar(t, singleToken(tokens))
	case t.Kind() == reflect.Pointer:
		inner, err := convertTokens(t.Elem(), elem, tokens)
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)

		return ptr, nil
	case isIterable(t):
		return convertSlice(t, p, splitOnDelimiter(tokens, p.Delimiter))
	case isFixedTuple(t):
		return convertArray(t, elem, splitOnDelimiter(tokens, p.Delimiter))
	case isMapLike(t):
		return convertMapPairs(t, elem, tokens)
	case isStructLike(t):
		return convertStructPositional(t, tokens)
	default:
		return convertScalar(t, singleToken(tokens))
	}
}

// singleToken collapses the expected one-token case; extra or missing
// tokens surface as a coercion failure carried by a synthetic token.
func singleToken(tokens []Token) Token {
	if len(tokens) == 1 {
		return tokens[0]
	}

	joined := make([]string, len(tokens))
	for i, token := range tokens {
		joined[i] = token.Value
	}

	return Token{Value: strings.Join(joined, " "), Source: SourceCLI}
}

// convertUnion tries each member left to right and keeps the first
// success. Member order is significant.
func convertUnion(t reflect.Type, p Parameter, members []reflect.Type, tokens []Token) (reflect.Value, error) {
	memberParam := elemParameter(p)

	var lastErr error

	for _, member := range members {
		value, err := convertTokens(member, memberParam, tokens)
		if err != nil {
			lastErr = err

			continue
		}

		if !value.Type().AssignableTo(t) {
			lastErr = newCoercionError(tokens, t, fmt.Sprintf("%s does not satisfy %s", member, t))

			continue
		}

		return value, nil
	}

	if lastErr == nil {
		lastErr = newCoercionError(tokens, t, "no union members configured")
	}

	return reflect.Value{}, lastErr
}

// convertEnum matches the token against the configured spellings, with
// both sides run through the name transform.
func convertEnum(t reflect.Type, p Parameter, tokens []Token) (reflect.Value, error) {
	token := singleToken(tokens)
	transform := p.nameTransform()
	want := transform(token.Value)

	for name, choice := range p.ChoiceNames {
		if transform(name) != want {
			continue
		}

		return adoptChoice(t, choice, token)
	}

	names := make([]string, 0, len(p.ChoiceNames))
	for name := range p.ChoiceNames {
		names = append(names, name)
	}

	slices.Sort(names)

	return reflect.Value{}, newCoercionError([]Token{token}, t,
		fmt.Sprintf("expected one of %s", strings.Join(names, ", ")))
}

// convertLiteral coerces the token into each choice's own type in order
// and accepts the first whose value is equal, not merely same-typed.
func convertLiteral(t reflect.Type, p Parameter, tokens []Token) (reflect.Value, error) {
	token := singleToken(tokens)

	for _, choice := range p.Choices {
		choiceType := reflect.TypeOf(choice)
		if choiceType == nil {
			continue
		}

		candidate, err := convertScalar(choiceType, token)
		if err != nil {
			continue
		}

		if candidate.Interface() == choice {
			return adoptChoice(t, choice, token)
		}
	}

	return reflect.Value{}, newCoercionError([]Token{token}, t,
		fmt.Sprintf("%q is not an allowed value", token.Value))
}

// adoptChoice turns a configured choice value into a value of the field
// type.
func adoptChoice(t reflect.Type, choice any, token Token) (reflect.Value, error) {
	value := reflect.ValueOf(choice)

	if value.Type().AssignableTo(t) {
		return value, nil
	}

	if value.Type().ConvertibleTo(t) && value.Kind() == t.Kind() {
		return value.Convert(t), nil
	}

	if s, ok := choice.(string); ok {
		return convertScalar(t, token.Evolve(func(t *Token) { t.Value = s }))
	}

	return reflect.Value{}, newCoercionError([]Token{token}, t,
		fmt.Sprintf("choice %v is not a %s", choice, t))
}

// splitOnDelimiter explodes each plain token's value on the delimiter.
// Tokens carrying implicit values pass through untouched.
func splitOnDelimiter(tokens []Token, delimiter string) []Token {
	if delimiter == "" {
		return tokens
	}

	out := make([]Token, 0, len(tokens))

	for _, token := range tokens {
		if token.Implicit != nil || !strings.Contains(token.Value, delimiter) {
			out = append(out, token)

			continue
		}

		for _, part := range strings.Split(token.Value, delimiter) {
			out = append(out, token.Evolve(func(t *Token) { t.Value = part }))
		}
	}

	return out
}

func convertSlice(t reflect.Type, p Parameter, tokens []Token) (reflect.Value, error) {
	elemType := t.Elem()

	perElem, _, err := typeTokenCount(elemType, nil)
	if err != nil {
		return reflect.Value{}, err
	}

	chunks, err := chunkTokens(t, tokens, perElem)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.MakeSlice(t, 0, len(chunks))
	elemParam := elemParameter(p)

	for _, chunk := range chunks {
		value, err := convertTokens(elemType, elemParam, chunk)
		if err != nil {
			return reflect.Value{}, err
		}

		out = reflect.Append(out, value)
	}

	if p.Set {
		out = dedupSlice(out)
	}

	return out, nil
}

// dedupSlice drops repeated elements, keeping first occurrences in order.
func dedupSlice(slice reflect.Value) reflect.Value {
	out := reflect.MakeSlice(slice.Type(), 0, slice.Len())

	if slice.Type().Elem().Comparable() {
		seen := map[any]bool{}

		for i := range slice.Len() {
			value := slice.Index(i)
			if key := value.Interface(); !seen[key] {
				seen[key] = true
				out = reflect.Append(out, value)
			}
		}

		return out
	}

	for i := range slice.Len() {
		value := slice.Index(i)

		duplicate := false

		for j := range out.Len() {
			if reflect.DeepEqual(out.Index(j).Interface(), value.Interface()) {
				duplicate = true

				break
			}
		}

		if !duplicate {
			out = reflect.Append(out, value)
		}
	}

	return out
}

func convertArray(t reflect.Type, elemParam Parameter, tokens []Token) (reflect.Value, error) {
	elemType := t.Elem()

	perElem, _, err := typeTokenCount(elemType, nil)
	if err != nil {
		return reflect.Value{}, err
	}

	want := t.Len() * perElem
	if len(tokens) != want {
		return reflect.Value{}, newCoercionError(tokens, t,
			fmt.Sprintf("expected %d values, got %d", want, len(tokens)))
	}

	out := reflect.New(t).Elem()

	for i := range t.Len() {
		value, err := convertTokens(elemType, elemParam, tokens[i*perElem:(i+1)*perElem])
		if err != nil {
			return reflect.Value{}, err
		}

		out.Index(i).Set(value)
	}

	return out, nil
}

// convertMapPairs builds a map from key=value tokens. Dotted sub-key
// addressing is handled by the argument tree, not here.
func convertMapPairs(t reflect.Type, elemParam Parameter, tokens []Token) (reflect.Value, error) {
	out := reflect.MakeMap(t)

	for _, token := range tokens {
		key, rawValue, found := strings.Cut(token.Value, "=")
		if !found {
			return reflect.Value{}, newCoercionError([]Token{token}, t,
				"expected key=value")
		}

		value, err := convertTokens(t.Elem(), elemParam,
			[]Token{token.Evolve(func(t *Token) { t.Value = rawValue })})
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), value)
	}

	return out, nil
}

// convertStructPositional distributes a flat token stream across the
// struct's fields in declaration order, each field taking its own token
// count, with a trailing var-positional field consuming the remainder.
func convertStructPositional(t reflect.Type, tokens []Token) (reflect.Value, error) {
	fields, err := fieldsOf(t)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(t).Elem()
	rest := tokens

	for _, field := range fields {
		if field.Kind == VarKeyword {
			continue
		}

		if field.Kind == VarPositional {
			value, err := convertTokens(field.Type, elemParameter(field.Parameter), rest)
			if err != nil {
				return reflect.Value{}, err
			}

			out.FieldByIndex(field.Index).Set(value)
			rest = nil

			continue
		}

		count, consumeAll, err := tokenCountForHint(field.Type, field.Parameter)
		if err != nil {
			return reflect.Value{}, err
		}

		if consumeAll {
			count = len(rest)
		}

		if count > len(rest) {
			if !field.Required() {
				continue
			}

			return reflect.Value{}, newCoercionError(tokens, t,
				fmt.Sprintf("not enough values for %s", field.Name))
		}

		value, err := convertTokens(field.Type, field.Parameter, rest[:count])
		if err != nil {
			return reflect.Value{}, err
		}

		out.FieldByIndex(field.Index).Set(value)
		rest = rest[count:]
	}

	if len(rest) > 0 {
		return reflect.Value{}, newCoercionError(rest, t,
			fmt.Sprintf("%d unexpected extra values", len(rest)))
	}

	return out, nil
}

// convertScalar converts exactly one token into a scalar value, keeping
// named types. Implicit values bypass string coercion entirely.
func convertScalar(t reflect.Type, token Token) (reflect.Value, error) {
	if token.Implicit != nil {
		return adoptImplicit(t, token)
	}

	if hasCustomConverter(t) {
		value, err := customConvert(t, token.Value)
		if err != nil {
			return reflect.Value{}, newCoercionError([]Token{token}, t, err.Error())
		}

		return value, nil
	}

	if t == durationType {
		d, err := time.ParseDuration(token.Value)
		if err != nil {
			return reflect.Value{}, newCoercionError([]Token{token}, t, "expected a duration like 1h30m")
		}

		return reflect.ValueOf(d), nil
	}

	if t.Kind() == reflect.Pointer {
		inner, err := convertScalar(t.Elem(), token)
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)

		return ptr, nil
	}

	return convertScalarKind(t, token)
}

//nolint:cyclop // one case per scalar kind
func convertScalarKind(t reflect.Type, token Token) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	raw := token.Value

	switch t.Kind() {
	case reflect.String:
		out.SetString(raw)
	case reflect.Bool:
		b, err := parseBoolToken(raw)
		if err != nil {
			return reflect.Value{}, newCoercionError([]Token{token}, t, err.Error())
		}

		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := parseIntToken(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, newCoercionError([]Token{token}, t, err.Error())
		}

		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := parseUintToken(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, newCoercionError([]Token{token}, t, err.Error())
		}

		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, newCoercionError([]Token{token}, t, "expected a number")
		}

		out.SetFloat(f)
	case reflect.Complex64, reflect.Complex128:
		c, err := strconv.ParseComplex(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, newCoercionError([]Token{token}, t, "expected a complex number")
		}

		out.SetComplex(c)
	case reflect.Slice:
		if !isBytes(t) {
			return reflect.Value{}, newCoercionError([]Token{token}, t, "cannot convert a single value")
		}

		out.SetBytes([]byte(raw))
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return reflect.Value{}, newCoercionError([]Token{token}, t, "cannot convert a single value")
		}

		out.Set(reflect.ValueOf(raw))
	default:
		return reflect.Value{}, newCoercionError([]Token{token}, t, "cannot convert a single value")
	}

	return out, nil
}

// adoptImplicit uses a token's implicit value directly, checking it fits
// the target type. A nil implicit fills nil-able types and rejects others.
func adoptImplicit(t reflect.Type, token Token) (reflect.Value, error) {
	implicit := token.Implicit.Value

	if implicit == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, newCoercionError([]Token{token}, t, "null is not allowed here")
		}
	}

	value := reflect.ValueOf(implicit)

	if value.Type().AssignableTo(t) {
		return value, nil
	}

	if value.Type().ConvertibleTo(t) && value.Kind() == t.Kind() {
		return value.Convert(t), nil
	}

	return reflect.Value{}, newCoercionError([]Token{token}, t,
		fmt.Sprintf("implicit %v is not a %s", implicit, t))
}

// parseBoolToken accepts a deliberately small vocabulary; anything outside
// it is an error rather than a guess.
func parseBoolToken(raw string) (bool, error) {
	word := strings.ToLower(strings.TrimSpace(raw))

	if truthyWords[word] {
		return true, nil
	}

	if falsyWords[word] {
		return false, nil
	}

	return false, fmt.Errorf("expected one of yes/no, true/false, 1/0, got %q", raw)
}

// parseIntToken parses base-prefixed (0x/0o/0b) and decimal integers, and
// floors floating-point-looking input, so "30.0" reads as 30.
func parseIntToken(raw string, bits int) (int64, error) {
	word := strings.TrimSpace(raw)

	if n, err := strconv.ParseInt(word, 0, bits); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(word, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected an integer, got %q", raw)
	}

	floored := math.Floor(f)
	if floored < math.MinInt64 || floored >= math.MaxInt64 {
		return 0, fmt.Errorf("integer %q out of range", raw)
	}

	n := int64(floored)

	if bits < 64 {
		limit := int64(1) << (bits - 1)
		if n >= limit || n < -limit {
			return 0, fmt.Errorf("integer %q out of range", raw)
		}
	}

	return n, nil
}

func parseUintToken(raw string, bits int) (uint64, error) {
	word := strings.TrimSpace(raw)

	if n, err := strconv.ParseUint(word, 0, bits); err == nil {
		return n, nil
	}

	n, err := parseIntToken(word, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("expected a non-negative integer, got %q", raw)
	}

	return uint64(n), nil
}

// chunkTokens groups a flat token stream into fixed-size element groups.
func chunkTokens(t reflect.Type, tokens []Token, size int) ([][]Token, error) {
	if size <= 1 {
		out := make([][]Token, len(tokens))
		for i := range tokens {
			out[i] = tokens[i : i+1]
		}

		return out, nil
	}

	if len(tokens)%size != 0 {
		return nil, newCoercionError(tokens, t,
			fmt.Sprintf("expected a multiple of %d values, got %d", size, len(tokens)))
	}

	out := make([][]Token, 0, len(tokens)/size)
	for i := 0; i < len(tokens); i += size {
		out = append(out, tokens[i:i+size])
	}

	return out, nil
}

// elemParameter keeps only the configuration that flows into element and
// member conversion.
func elemParameter(p Parameter) Parameter {
	return Parameter{
		NameTransform: p.NameTransform,
		Delimiter:     p.Delimiter,
	}
}

func newCoercionError(tokens []Token, target reflect.Type, msg string) *CoercionError {
	err := &CoercionError{Msg: msg, TargetType: target}

	if len(tokens) > 0 {
		token := tokens[0]
		err.Token = &token
	}

	return err
}
