package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Argument is one bindable node of the tree: a root parameter or a
// structural descendant of one. Tokens accumulate during matching; the
// converted value is computed once and cached.
type Argument struct {
	field     FieldInfo
	parameter Parameter
	hint      reflect.Type
	required  bool

	index *int
	keys  []string

	names     []string
	negatives []string
	display   string

	tokenCount int
	consumeAll bool

	tokens   []Token
	children []*Argument

	value        any
	valueSet     bool
	marked       bool
	markOverride bool
}

// Name returns the primary user-facing spelling.
func (a *Argument) Name() string {
	if len(a.names) > 0 {
		return a.names[0]
	}

	return a.display
}

// Names returns every positive matchable spelling.
func (a *Argument) Names() []string { return a.names }

// Negatives returns the derived negative spellings.
func (a *Argument) Negatives() []string { return a.negatives }

// Keys returns the structural path from the root parameter down to this
// node; empty for roots.
func (a *Argument) Keys() []string { return a.keys }

// Index returns the positional slot, if the argument binds positionally.
func (a *Argument) Index() (int, bool) {
	if a.index == nil {
		return 0, false
	}

	return *a.index, true
}

// Hint returns the resolved target type.
func (a *Argument) Hint() reflect.Type { return a.hint }

// Field returns the originating field description.
func (a *Argument) Field() FieldInfo { return a.field }

// Parameter returns the resolved configuration.
func (a *Argument) Parameter() Parameter { return a.parameter }

// Required reports whether a value must be supplied.
func (a *Argument) Required() bool { return a.required }

// Help returns configured or doc-derived help text.
func (a *Argument) Help() string {
	if a.parameter.Help != "" {
		return a.parameter.Help
	}

	return a.field.Help
}

// Tokens returns the accumulated tokens.
func (a *Argument) Tokens() []Token { return a.tokens }

// HasTokens reports whether this node itself received tokens.
func (a *Argument) HasTokens() bool { return len(a.tokens) > 0 }

// HasTreeTokens reports whether this node or any descendant received
// tokens.
func (a *Argument) HasTreeTokens() bool {
	if a.HasTokens() {
		return true
	}

	for _, child := range a.children {
		if child.HasTreeTokens() {
			return true
		}
	}

	return false
}

// Children returns the direct structural descendants.
func (a *Argument) Children() []*Argument {
	out := make([]*Argument, 0, len(a.children))
	for _, child := range a.children {
		if len(child.keys) == len(a.keys)+1 {
			out = append(out, child)
		}
	}

	return out
}

// Value returns the converted value and whether one was produced.
func (a *Argument) Value() (any, bool) { return a.value, a.valueSet }

// TokenCount returns tokens-per-element and whether the argument greedily
// consumes all remaining matching tokens.
func (a *Argument) TokenCount() (int, bool) {
	return a.tokenCount, a.consumeAll
}

// SubTokenCount resolves the token count for a dotted sub-key path,
// unwrapping map value types per key. Counter arguments always consume
// zero.
func (a *Argument) SubTokenCount(keys ...string) (int, bool, error) {
	if a.parameter.Count {
		return 0, false, nil
	}

	if len(keys) == 0 {
		return a.tokenCount, a.consumeAll, nil
	}

	if len(keys) == 1 {
		if child := a.childByKey(keys[0]); child != nil {
			return child.tokenCount, child.consumeAll, nil
		}
	}

	t := a.hint
	for range keys {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		if t == nil || t.Kind() != reflect.Map {
			break
		}

		t = t.Elem()
	}

	count, consumeAll, err := typeTokenCount(t, nil)
	if err != nil {
		return 0, false, err
	}

	return count, consumeAll, nil
}

func (a *Argument) childByKey(key string) *Argument {
	for _, child := range a.Children() {
		if child.keys[len(child.keys)-1] == key {
			return child
		}
	}

	return nil
}

// acceptsKeywords reports whether the argument takes dotted sub-key
// addressing at all.
func (a *Argument) acceptsKeywords() bool {
	if a.parameter.AcceptsKeys != nil {
		return *a.parameter.AcceptsKeys
	}

	if a.field.Kind == VarKeyword {
		return true
	}

	t := derefType(a.hint)

	return isStructLike(t) || isMapLike(t)
}

// acceptsArbitraryKeywords reports whether sub-keys beyond the known
// children are legal, as for maps and var-keyword catch-alls.
func (a *Argument) acceptsArbitraryKeywords() bool {
	if a.parameter.AcceptsKeys != nil && !*a.parameter.AcceptsKeys {
		return false
	}

	return a.field.Kind == VarKeyword || isMapLike(derefType(a.hint))
}

// Match tests a CLI spelling against this argument's names. On success it
// returns leftover structural keys (for dotted sub-key addressing) and the
// implicit value a bare spelling carries: true for flags, a negated value
// for negative spellings.
func (a *Argument) Match(term string, transform NameTransformFunc) ([]string, *Implicit, bool) {
	if a.field.Kind == PositionalOnly || a.field.Kind == VarPositional {
		return nil, nil, false
	}

	if transform != nil {
		term = transform(term)
	}

	if keys, implicit, ok := a.matchAgainst(term, a.names, a.positiveImplicit()); ok {
		return keys, implicit, true
	}

	if keys, implicit, ok := a.matchAgainst(term, a.negatives, a.negativeImplicit()); ok {
		return keys, implicit, true
	}

	if a.field.Kind == VarKeyword {
		stripped := strings.TrimLeft(term, "-")

		return splitKeys(stripped), nil, true
	}

	return nil, nil, false
}

func (a *Argument) matchAgainst(term string, names []string, implicit *Implicit) ([]string, *Implicit, bool) {
	normalized := normalizeName(term)

	for _, name := range names {
		if name == "" || name == "*" {
			continue
		}

		if normalized == normalizeName(name) {
			return nil, implicit, true
		}

		if !nameStartsWith(term, name+keyDelimiter) {
			continue
		}

		if !a.acceptsArbitraryKeywords() {
			continue
		}

		return splitKeys(term[len(name)+len(keyDelimiter):]), implicit, true
	}

	return nil, nil, false
}

// positiveImplicit returns the value a bare positive spelling supplies:
// true for bool hints, including per-occurrence trues for bool slices.
func (a *Argument) positiveImplicit() *Implicit {
	t := derefType(a.hint)

	if isBoolLike(t) || (isIterable(t) && isBoolLike(t.Elem())) {
		return ImplicitValue(true)
	}

	return nil
}

func (a *Argument) negativeImplicit() *Implicit {
	return ImplicitValue(emptyInstanceOf(derefType(a.hint)))
}

// MatchIndex reports whether this argument binds the given positional
// slot. Var-positional arguments absorb every slot at or beyond their own.
func (a *Argument) MatchIndex(index int) bool {
	if a.index == nil {
		return false
	}

	if a.field.Kind == VarPositional {
		return index >= *a.index
	}

	return index == *a.index
}

// Append adds a token, enforcing the repetition invariant (one physical
// occurrence address feeds a non-repeatable argument once) and the mixing
// invariant (keyed and unkeyed tokens cannot share a node).
func (a *Argument) Append(token Token) error {
	if !a.consumeAll && !a.parameter.Count {
		for _, existing := range a.tokens {
			if existing.Address() == token.Address() {
				err := &RepeatArgumentError{Token: token}
				err.Argument = a

				return err
			}
		}
	}

	if len(a.tokens) > 0 {
		anyKeyed := false
		for _, existing := range a.tokens {
			if len(existing.Keys) > 0 {
				anyKeyed = true

				break
			}
		}

		if (len(token.Keys) > 0) != anyKeyed {
			err := &MixedArgumentError{}
			err.Argument = a

			return err
		}
	}

	a.tokens = append(a.tokens, token)

	return nil
}

// prependTokens inserts tokens ahead of any already appended, used when a
// later parse pass supplies earlier-positioned values.
func (a *Argument) prependTokens(tokens []Token) {
	a.tokens = append(append([]Token{}, tokens...), a.tokens...)
}

// ConvertAndValidate converts accumulated tokens and runs validators,
// once: repeated calls are no-ops after the first, unless an override is
// armed.
func (a *Argument) ConvertAndValidate() error {
	if a.marked && !a.markOverride {
		return nil
	}

	a.marked = true
	a.markOverride = false

	value, set, err := a.convert()
	if err != nil {
		attachArgument(err, a)

		return err
	}

	if !set {
		value, set, err = a.defaultValue()
		if err != nil {
			attachArgument(err, a)

			return err
		}

		if !set {
			return nil
		}
	}

	if err := a.Validate(value); err != nil {
		return err
	}

	a.value, a.valueSet = value, true

	// A parent that converted covers its whole subtree.
	if len(a.children) > 0 {
		a.markTree()
	}

	return nil
}

// defaultValue produces the configured default, if any, so validators see
// it exactly as a supplied value would be seen.
func (a *Argument) defaultValue() (any, bool, error) {
	if a.field.DefaultText != nil {
		token := Token{Value: *a.field.DefaultText, Source: SourceDefault}

		value, err := convertTokens(a.hint, a.parameter, []Token{token})
		if err != nil {
			return nil, false, err
		}

		return value.Interface(), true, nil
	}

	if a.field.HasDefault && a.field.Default.IsValid() {
		return a.field.Default.Interface(), true, nil
	}

	return nil, false, nil
}

// convert dispatches between leaf and parent conversion and enriches any
// failure with this argument's identity.
func (a *Argument) convert() (any, bool, error) {
	value, set, err := a.convertInner()
	if err != nil {
		var coercion *CoercionError
		if errors.As(err, &coercion) && coercion.TargetType == nil {
			coercion.TargetType = a.hint
		}

		attachArgument(err, a)

		return nil, false, err
	}

	return value, set, nil
}

//nolint:cyclop // ordered fallthrough of conversion strategies
func (a *Argument) convertInner() (any, bool, error) {
	if a.parameter.Count {
		return a.convertCount()
	}

	if len(a.Children()) > 0 {
		return a.convertParent()
	}

	tokens := a.tokens

	if a.shouldAttemptJSONList(tokens) {
		expanded, err := expandJSONList(tokens)
		if err != nil {
			return nil, false, err
		}

		tokens = expanded
	}

	if len(tokens) == 1 && tokens[0].Implicit != nil {
		if value := tokens[0].Implicit.Value; implicitSatisfies(value, a.hint) {
			return value, true, nil
		}
	}

	positional, keyed := partitionTokens(tokens)

	switch {
	case len(keyed) > 0 && len(positional) == 0:
		value, err := a.convertKeyedTokens(derefType(a.hint), keyed)
		if err != nil {
			return nil, false, err
		}

		return value.Interface(), true, nil
	case len(positional) > 0:
		if a.parameter.Converter != nil {
			value, err := a.parameter.Converter(a.hint, positional)
			if err != nil {
				return nil, false, &CoercionError{Msg: err.Error(), TargetType: a.hint}
			}

			return value, true, nil
		}

		value, err := a.convertPositional(positional)
		if err != nil {
			return nil, false, err
		}

		return value.Interface(), true, nil
	case a.required:
		err := &MissingArgumentError{}
		err.Argument = a

		return nil, false, err
	default:
		return nil, false, nil
	}
}

// convertCount sums flag occurrences. Tokens carrying explicit values, as
// from an environment variable, contribute their parsed amount instead.
func (a *Argument) convertCount() (any, bool, error) {
	if len(a.tokens) == 0 {
		return nil, false, nil
	}

	total := int64(0)

	for _, token := range a.tokens {
		if token.Implicit != nil {
			if n, ok := token.Implicit.Value.(int); ok {
				total += int64(n)

				continue
			}
		}

		n, err := parseIntToken(token.Value, 64)
		if err != nil {
			return nil, false, newCoercionError([]Token{token}, a.hint, err.Error())
		}

		total += n
	}

	out := reflect.New(derefType(a.hint)).Elem()
	if out.Kind() == reflect.Bool {
		out.SetBool(total > 0)
	} else {
		out.SetInt(total)
	}

	return wrapPointer(a.hint, out).Interface(), true, nil
}

// convertPositional converts this node's own tokens against the hint,
// chunking per element for var-positional roots.
func (a *Argument) convertPositional(tokens []Token) (reflect.Value, error) {
	if a.field.Kind == VarPositional && len(a.keys) == 0 {
		perElem, _, err := a.SubTokenCount()
		if err != nil {
			return reflect.Value{}, err
		}

		chunks, err := chunkTokens(a.hint, tokens, perElem)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.MakeSlice(a.hint, 0, len(chunks))

		for _, chunk := range chunks {
			value, err := convertTokens(a.hint.Elem(), elemParameter(a.parameter), chunk)
			if err != nil {
				return reflect.Value{}, err
			}

			out = reflect.Append(out, value)
		}

		return out, nil
	}

	return convertTokens(a.hint, a.parameter, tokens)
}

// convertKeyedTokens assembles a map value from dotted sub-key tokens,
// grouping by leading key and recursing into nested map levels.
func (a *Argument) convertKeyedTokens(t reflect.Type, tokens []Token) (reflect.Value, error) {
	if t == nil || t.Kind() != reflect.Map {
		return reflect.Value{}, newCoercionError(tokens, t, "sub-keys are not accepted here")
	}

	type group struct {
		key    string
		tokens []Token
	}

	var groups []group

	seen := map[string]int{}

	for _, token := range tokens {
		key := token.Keys[0]

		rest := token.Evolve(func(t *Token) { t.Keys = t.Keys[1:] })

		if at, ok := seen[key]; ok {
			groups[at].tokens = append(groups[at].tokens, rest)
		} else {
			seen[key] = len(groups)
			groups = append(groups, group{key: key, tokens: []Token{rest}})
		}
	}

	out := reflect.MakeMap(t)
	elemParam := elemParameter(a.parameter)

	for _, g := range groups {
		deeper := false

		for _, token := range g.tokens {
			if len(token.Keys) > 0 {
				deeper = true

				break
			}
		}

		var (
			value reflect.Value
			err   error
		)

		if deeper {
			value, err = a.convertKeyedTokens(derefType(t.Elem()), g.tokens)
			if err == nil {
				value = wrapPointer(t.Elem(), value)
			}
		} else {
			value, err = convertTokens(t.Elem(), elemParam, g.tokens)
		}

		if err != nil {
			return reflect.Value{}, err
		}

		out.SetMapIndex(reflect.ValueOf(g.key).Convert(t.Key()), value)
	}

	return out, nil
}

// convertParent resolves a structured argument: JSON object fan-out, then
// whole-value positional conversion, then per-child assembly.
func (a *Argument) convertParent() (any, bool, error) {
	positional, _ := partitionTokens(a.tokens)

	if a.shouldAttemptJSONDict(positional) {
		if err := a.fanOutJSONDict(positional[0]); err != nil {
			return nil, false, err
		}

		positional = positional[1:]
	}

	if len(positional) > 0 {
		value, err := convertTokens(a.hint, a.parameter, positional)
		if err != nil {
			return nil, false, err
		}

		return value.Interface(), true, nil
	}

	data := map[string]any{}

	for _, child := range a.Children() {
		key := child.keys[len(child.keys)-1]

		if child.HasTreeTokens() || child.hasDefault() {
			if err := child.ConvertAndValidate(); err != nil {
				return nil, false, err
			}

			if value, ok := child.Value(); ok {
				data[key] = value
			}

			continue
		}

		if child.required {
			err := &MissingArgumentError{}
			err.Argument = child

			return nil, false, err
		}
	}

	if err := a.checkMissingKeys(data); err != nil {
		return nil, false, err
	}

	if len(data) == 0 {
		if a.required {
			err := &MissingArgumentError{}
			err.Argument = a

			return nil, false, err
		}

		return nil, false, nil
	}

	value, err := a.instantiate(data)
	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

func (a *Argument) hasDefault() bool {
	return a.field.HasDefault || a.field.DefaultText != nil
}

// checkMissingKeys reports the first required child absent from the
// assembled data, in declaration order, so the error names the most
// specific missing slot.
func (a *Argument) checkMissingKeys(data map[string]any) error {
	for _, child := range a.Children() {
		if !child.required {
			continue
		}

		if _, ok := data[child.keys[len(child.keys)-1]]; !ok {
			err := &MissingArgumentError{}
			err.Argument = child

			return err
		}
	}

	return nil
}

// instantiate builds the struct or map value from converted child values.
func (a *Argument) instantiate(data map[string]any) (any, error) {
	t := derefType(a.hint)

	if isMapLike(t) {
		out := reflect.MakeMap(t)
		for key, value := range data {
			out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), reflect.ValueOf(value))
		}

		return wrapPointer(a.hint, out).Interface(), nil
	}

	out := reflect.New(t).Elem()

	for _, child := range a.Children() {
		value, ok := data[child.keys[len(child.keys)-1]]
		if !ok {
			continue
		}

		field := out.FieldByIndex(child.field.Index)
		if !reflect.ValueOf(value).Type().AssignableTo(field.Type()) {
			return nil, newCoercionError(nil, field.Type(),
				fmt.Sprintf("cannot assign %T to %s", value, field.Type()))
		}

		field.Set(reflect.ValueOf(value))
	}

	return wrapPointer(a.hint, out).Interface(), nil
}

// Validate runs the configured validators. Catch-all arguments validate
// per element rather than once for the whole collection.
func (a *Argument) Validate(value any) error {
	var validators []ValidatorFunc

	validators = append(validators, a.parameter.Validators...)

	if self := selfValidator(derefType(a.hint)); self != nil {
		validators = append(validators, self)
	}

	if len(validators) == 0 {
		return nil
	}

	run := func(t reflect.Type, v any) error {
		for _, validator := range validators {
			if err := validator(t, v); err != nil {
				return a.wrapValidation(err)
			}
		}

		return nil
	}

	rv := reflect.ValueOf(value)

	switch {
	case a.field.Kind == VarKeyword && rv.Kind() == reflect.Map:
		for _, key := range rv.MapKeys() {
			if err := run(a.hint.Elem(), rv.MapIndex(key).Interface()); err != nil {
				return err
			}
		}

		return nil
	case a.field.Kind == VarPositional && rv.Kind() == reflect.Slice:
		for i := range rv.Len() {
			if err := run(a.hint.Elem(), rv.Index(i).Interface()); err != nil {
				return err
			}
		}

		return nil
	default:
		return run(a.hint, value)
	}
}

func (a *Argument) wrapValidation(err error) error {
	var validation *ValidationError
	if errors.As(err, &validation) {
		validation.attachArgument(a)

		return err
	}

	out := &ValidationError{Msg: err.Error()}
	out.Argument = a

	return out
}

// MarkForReconversion arms a one-shot override of the converted-value
// cache.
func (a *Argument) MarkForReconversion() {
	a.markOverride = true
}

func (a *Argument) resetMark() {
	a.marked = false
}

// markTree marks this argument and every descendant as converted, for
// conversion paths that consume children wholesale.
func (a *Argument) markTree() {
	a.marked = true

	for _, child := range a.children {
		child.markTree()
	}
}

// shouldAttemptJSONDict decides the JSON object shortcut: forced by the
// tri-state when set, otherwise auto-detected unless a string field could
// legitimately hold the literal.
func (a *Argument) shouldAttemptJSONDict(tokens []Token) bool {
	if len(tokens) == 0 || tokens[0].Implicit != nil {
		return false
	}

	if !strings.HasPrefix(strings.TrimSpace(tokens[0].Value), "{") {
		return false
	}

	if a.parameter.JSONDict != nil {
		return *a.parameter.JSONDict
	}

	return a.acceptsKeywords() && !containsStringType(a.hint)
}

// shouldAttemptJSONList decides the JSON array shortcut for consume-all
// arguments.
func (a *Argument) shouldAttemptJSONList(tokens []Token) bool {
	if !a.consumeAll || len(tokens) == 0 || tokens[0].Implicit != nil {
		return false
	}

	if !strings.HasPrefix(strings.TrimSpace(tokens[0].Value), "[") {
		return false
	}

	if a.parameter.JSONList != nil {
		return *a.parameter.JSONList
	}

	t := derefType(a.hint)
	if !isIterable(t) {
		return false
	}

	return !containsStringType(t.Elem())
}

// fanOutJSONDict parses a JSON object token and feeds its entries to the
// children as synthetic tokens, subject to normal name matching.
func (a *Argument) fanOutJSONDict(token Token) error {
	decoder := json.NewDecoder(strings.NewReader(token.Value))
	decoder.UseNumber()

	var parsed map[string]any
	if err := decoder.Decode(&parsed); err != nil {
		return newCoercionError([]Token{token}, a.hint, "invalid JSON object")
	}

	name := strings.TrimLeft(a.Name(), "-")

	return updateTreeFromMap(a.collection(), map[string]any{name: parsed}, token.Source, false)
}

// collection views this argument and its descendants as a collection, for
// map-driven updates.
func (a *Argument) collection() *ArgumentCollection {
	out := &ArgumentCollection{arguments: []*Argument{a}}
	out.arguments = append(out.arguments, a.children...)

	return out
}

// expandJSONList parses a JSON array token into one synthetic token per
// element. Null elements become explicit empty tokens carrying an implicit
// nil so they cannot collide with a real "null" string.
func expandJSONList(tokens []Token) ([]Token, error) {
	first := tokens[0]

	decoder := json.NewDecoder(strings.NewReader(first.Value))
	decoder.UseNumber()

	var parsed []any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, newCoercionError([]Token{first}, nil, "invalid JSON array")
	}

	out := make([]Token, 0, len(parsed)+len(tokens)-1)

	for _, element := range parsed {
		token, err := jsonElementToken(first, element)
		if err != nil {
			return nil, err
		}

		out = append(out, token)
	}

	return append(out, tokens[1:]...), nil
}

func jsonElementToken(base Token, element any) (Token, error) {
	switch v := element.(type) {
	case nil:
		return base.Evolve(func(t *Token) {
			t.Value = ""
			t.Implicit = ImplicitValue(nil)
		}), nil
	case map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return Token{}, newCoercionError([]Token{base}, nil, "invalid JSON element")
		}

		return base.Evolve(func(t *Token) { t.Value = string(encoded) }), nil
	case json.Number:
		return base.Evolve(func(t *Token) { t.Value = v.String() }), nil
	case string:
		return base.Evolve(func(t *Token) { t.Value = v }), nil
	default:
		return base.Evolve(func(t *Token) { t.Value = fmt.Sprint(v) }), nil
	}
}

// partitionTokens splits tokens into plain positional ones and those
// carrying structural keys.
func partitionTokens(tokens []Token) (positional, keyed []Token) {
	for _, token := range tokens {
		if len(token.Keys) > 0 {
			keyed = append(keyed, token)
		} else {
			positional = append(positional, token)
		}
	}

	return positional, keyed
}

// implicitSatisfies reports whether an implicit value already is a value
// of the hint, allowing conversion to short-circuit.
func implicitSatisfies(value any, t reflect.Type) bool {
	if t == nil {
		return false
	}

	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			return true
		default:
			return false
		}
	}

	vt := reflect.TypeOf(value)

	return vt.AssignableTo(t) || (vt.ConvertibleTo(t) && vt.Kind() == t.Kind())
}

// containsStringType reports whether a plain string hides anywhere a
// direct value for this type could live, which makes JSON auto-detection
// ambiguous.
func containsStringType(t reflect.Type) bool {
	switch {
	case t == nil:
		return false
	case hasCustomConverter(t):
		return true
	case t.Kind() == reflect.String:
		return true
	case t.Kind() == reflect.Pointer:
		return containsStringType(t.Elem())
	case t.Kind() == reflect.Interface:
		return true
	case isBytes(t):
		return true
	case t.Kind() == reflect.Slice, t.Kind() == reflect.Array:
		return containsStringType(t.Elem())
	case t.Kind() == reflect.Map:
		return containsStringType(t.Elem())
	case t.Kind() == reflect.Struct:
		for i := range t.NumField() {
			if !t.Field(i).IsExported() {
				continue
			}

			if containsStringType(t.Field(i).Type) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// wrapPointer re-wraps a built value to match a pointer hint.
func wrapPointer(t reflect.Type, value reflect.Value) reflect.Value {
	if t == nil || t.Kind() != reflect.Pointer {
		return value
	}

	inner := wrapPointer(t.Elem(), value)

	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(inner)

	return ptr
}

