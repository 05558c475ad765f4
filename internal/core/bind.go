package core

import (
	"context"
	"reflect"
	"slices"
	"strings"
)

// endOfOptions terminates keyword parsing; everything after it is a value.
const endOfOptions = "--"

// unexported variables.
var (
	//nolint:gochecknoglobals // reflect type for error returns
	errType = reflect.TypeFor[error]()
)

// EnvLookupFunc resolves an environment variable by name.
type EnvLookupFunc func(name string) (string, bool)

// ConfigSource feeds values from an external source into a collection,
// typically via UpdateFromMap. Sources run after the CLI and environment
// passes, so arguments that already have tokens keep them.
type ConfigSource func(collection *ArgumentCollection) error

// ParseOptions adjusts token parsing.
type ParseOptions struct {
	// Transform normalizes keyword spellings before matching.
	Transform NameTransformFunc

	// LookupEnv resolves environment variables. Nil disables the
	// environment pass.
	LookupEnv EnvLookupFunc

	// Configs run in order as the lowest-precedence source.
	Configs []ConfigSource
}

// positionalToken is a CLI token destined for positional matching. Tokens
// after the end-of-options delimiter are values even when they look like
// options.
type positionalToken struct {
	value  string
	forced bool
}

// ParseTokens runs the full parse: keyword pass, positional pass,
// environment, configuration sources, then conversion. It returns any
// trailing tokens no argument could consume.
func ParseTokens(collection *ArgumentCollection, argv []string, opts ParseOptions) ([]string, error) {
	unused, err := parseTokensInner(collection, argv, opts)
	if err != nil {
		attachInputTokens(err, argv, unused)

		return unused, err
	}

	return unused, nil
}

func parseTokensInner(collection *ArgumentCollection, argv []string, opts ParseOptions) ([]string, error) {
	positional, err := parseKeywordTokens(collection, argv, opts.Transform)
	if err != nil {
		return nil, err
	}

	unused, err := parsePositionalTokens(collection, positional)
	if err != nil {
		return unused, err
	}

	if err := applyEnvironment(collection, opts.LookupEnv); err != nil {
		return unused, err
	}

	for _, source := range opts.Configs {
		if err := source(collection); err != nil {
			return unused, err
		}
	}

	if err := collection.Convert(); err != nil {
		return unused, err
	}

	return unused, nil
}

// parseKeywordTokens consumes option spellings and their values, leaving
// everything else for positional matching.
func parseKeywordTokens(collection *ArgumentCollection, argv []string, transform NameTransformFunc) ([]positionalToken, error) {
	var positional []positionalToken

	i := 0
	for i < len(argv) {
		raw := argv[i]

		if raw == endOfOptions {
			for _, rest := range argv[i+1:] {
				positional = append(positional, positionalToken{value: rest, forced: true})
			}

			break
		}

		if !isOptionLike(raw) {
			positional = append(positional, positionalToken{value: raw})
			i++

			continue
		}

		consumed, err := consumeKeyword(collection, argv, i, transform)
		if err != nil {
			return nil, err
		}

		if consumed == 0 {
			consumed, err = consumeCombinedShorts(collection, raw, transform)
			if err != nil {
				return nil, err
			}
		}

		if consumed == 0 {
			positional = append(positional, positionalToken{value: raw})
			i++

			continue
		}

		i += consumed
	}

	return positional, nil
}

// consumeKeyword handles one matched option spelling starting at argv[at].
// It reports how many argv entries it consumed; zero means no argument
// matched.
func consumeKeyword(collection *ArgumentCollection, argv []string, at int, transform NameTransformFunc) (int, error) {
	keyword, inline, hasInline := strings.Cut(argv[at], "=")

	argument, keys, implicit, ok := collection.Match(keyword, transform)
	if !ok {
		return 0, nil
	}

	if argument.parameter.Count {
		return 1, appendCountToken(argument, keyword, keys, inline, hasInline)
	}

	if implicit != nil {
		return 1, appendFlagToken(argument, keyword, keys, implicit, inline, hasInline)
	}

	return consumeValuedKeyword(argument, argv, at, keyword, keys, inline, hasInline)
}

// appendCountToken records one occurrence of a counter flag. An inline
// value replaces the occurrence tally outright.
func appendCountToken(argument *Argument, keyword string, keys []string, inline string, hasInline bool) error {
	token := Token{Keyword: keyword, Source: SourceCLI, Keys: keys}

	if hasInline {
		token.Value = inline
	} else {
		token.Implicit = ImplicitValue(1)
	}

	return argument.Append(token)
}

// appendFlagToken records a flag occurrence. An inline value coerces as a
// boolean: false cancels a positive spelling and re-inverts a negative
// one; a falsified container spelling is a no-op.
func appendFlagToken(argument *Argument, keyword string, keys []string, implicit *Implicit, inline string, hasInline bool) error {
	token := Token{Keyword: keyword, Source: SourceCLI, Keys: keys, Implicit: implicit}

	if hasInline {
		token.Value = inline

		on, err := parseBoolToken(inline)
		if err != nil {
			coercion := newCoercionError([]Token{token}, reflect.TypeFor[bool](), err.Error())
			coercion.Argument = argument

			return coercion
		}

		if flagValue, isBool := implicit.Value.(bool); isBool {
			token.Implicit = ImplicitValue(flagValue == on)
		} else if !on {
			return nil
		}
	}

	return argument.Append(token)
}

// consumeValuedKeyword gathers value tokens for a keyword, stopping at
// option-like tokens unless leading hyphens are allowed. A consume-all
// argument takes one element's worth of tokens per occurrence unless its
// parameter opts into consuming multiple, in which case it takes
// everything available; a self-contained JSON list satisfies it with a
// single token.
//
//nolint:cyclop // straight-line token gathering with several stop conditions
func consumeValuedKeyword(
	argument *Argument,
	argv []string,
	at int,
	keyword string,
	keys []string,
	inline string,
	hasInline bool,
) (int, error) {
	count, consumeAll, err := argument.SubTokenCount(keys...)
	if err != nil {
		return 0, err
	}

	greedy := consumeAll && argument.parameter.consumeMultiple()

	var values []string
	if hasInline {
		values = append(values, inline)
	}

	consumed := 1
	leadingHyphen := argument.parameter.allowLeadingHyphen()

	for at+consumed < len(argv) {
		candidate := argv[at+consumed]

		if candidate == endOfOptions {
			break
		}

		if !leadingHyphen && isOptionLike(candidate) {
			break
		}

		if len(values) >= count && !greedy {
			break
		}

		if consumeAll && len(values) == 0 && !hasInline &&
			argument.shouldAttemptJSONList([]Token{{Value: candidate, Source: SourceCLI}}) {
			values = append(values, candidate)
			consumed++

			break
		}

		values = append(values, candidate)
		consumed++
	}

	if len(values) < count && !greedy {
		err := &MissingArgumentError{Keyword: keyword, TokensSoFar: values}
		err.Argument = argument

		return 0, err
	}

	if len(values) == 0 {
		if greedy && len(keys) == 0 {
			token := Token{
				Keyword:  keyword,
				Source:   SourceCLI,
				Implicit: ImplicitValue(emptyInstanceOf(derefType(argument.hint))),
			}

			return consumed, argument.Append(token)
		}

		err := &MissingArgumentError{Keyword: keyword}
		err.Argument = argument

		return 0, err
	}

	for idx, value := range values {
		token := Token{Keyword: keyword, Value: value, Source: SourceCLI, Index: idx, Keys: keys}

		if err := argument.Append(token); err != nil {
			return 0, err
		}
	}

	return consumed, nil
}

// consumeCombinedShorts explodes a short-option cluster like -abc into
// individual flags. Every letter must resolve to a flag or counter; a
// cluster that resolves only partially is an error rather than a value.
func consumeCombinedShorts(collection *ArgumentCollection, raw string, transform NameTransformFunc) (int, error) {
	keyword, _, hasInline := strings.Cut(raw, "=")

	if hasInline || len(keyword) < 3 || strings.HasPrefix(keyword, longPrefix) {
		return 0, nil
	}

	type flagMatch struct {
		argument *Argument
		keyword  string
		keys     []string
		implicit *Implicit
	}

	matches := make([]flagMatch, 0, len(keyword)-1)
	misses := 0

	for _, letter := range keyword[1:] {
		short := "-" + string(letter)

		argument, keys, implicit, ok := collection.Match(short, transform)
		if !ok {
			misses++

			continue
		}

		if implicit == nil && !argument.parameter.Count {
			return 0, &CombinedShortOptionError{Token: raw}
		}

		matches = append(matches, flagMatch{argument, short, keys, implicit})
	}

	if len(matches) == 0 {
		return 0, nil
	}

	if misses > 0 {
		return 0, &CombinedShortOptionError{Token: raw}
	}

	for _, match := range matches {
		token := Token{Keyword: match.keyword, Source: SourceCLI, Keys: match.keys}

		if match.argument.parameter.Count {
			token.Implicit = ImplicitValue(1)
		} else {
			token.Implicit = match.implicit
		}

		if err := match.argument.Append(token); err != nil {
			return 0, err
		}
	}

	return 1, nil
}

// parsePositionalTokens assigns leftover tokens to positional slots in
// order. Unconsumed trailing tokens are returned rather than erroring, so
// the caller decides their fate.
//
//nolint:cyclop,funlen // one slot-filling loop with ordered error checks
func parsePositionalTokens(collection *ArgumentCollection, tokens []positionalToken) ([]string, error) {
	var unused []string

	done := map[*Argument]bool{}
	slot := 0
	i := 0

	for i < len(tokens) {
		current := tokens[i]

		if !current.forced && isOptionLike(current.value) {
			return unused, unknownOption(collection, current.value)
		}

		argument, ok := matchPositionalSlot(collection, slot, done)
		if !ok {
			for _, leftover := range tokens[i:] {
				unused = append(unused, leftover.value)
			}

			break
		}

		if blockers := keywordBlockers(argument); len(blockers) > 0 {
			err := &ArgumentOrderError{Token: current.value, PriorKeywords: blockers}
			err.Argument = argument

			return unused, err
		}

		count, consumeAll, err := argument.SubTokenCount()
		if err != nil {
			return unused, err
		}

		take := count
		remaining := len(tokens) - i

		if consumeAll {
			take = max(remaining-reservedTokenCount(collection, slot), 0)
		} else if remaining < count {
			values := make([]string, 0, remaining)
			for _, t := range tokens[i:] {
				values = append(values, t.value)
			}

			missing := &MissingArgumentError{Keyword: argument.Name(), TokensSoFar: values}
			missing.Argument = argument

			return unused, missing
		}

		batch := make([]Token, 0, take)

		for j := range take {
			t := tokens[i+j]
			if !t.forced && isOptionLike(t.value) {
				return unused, unknownOption(collection, t.value)
			}

			batch = append(batch, Token{Value: t.value, Source: SourceCLI, Index: j})
		}

		if len(batch) > 0 {
			argument.prependTokens(batch)
		}

		done[argument] = true
		i += take
		slot++
	}

	return unused, nil
}

// matchPositionalSlot finds the argument bound to a slot, skipping greedy
// arguments that already took their batch.
func matchPositionalSlot(collection *ArgumentCollection, slot int, done map[*Argument]bool) (*Argument, bool) {
	for _, argument := range collection.arguments {
		if !argument.parameter.parse() || done[argument] {
			continue
		}

		if argument.MatchIndex(slot) {
			return argument, true
		}
	}

	return nil, false
}

// keywordBlockers reports keyword-supplied tokens already on the argument
// a positional token is about to target; filling it positionally now
// would bind one parameter two ways.
func keywordBlockers(argument *Argument) []*Argument {
	for _, token := range argument.Tokens() {
		if token.Keyword != "" && token.Source == SourceCLI {
			return []*Argument{argument}
		}
	}

	return nil
}

// reservedTokenCount counts tokens that positional-only arguments after
// the given slot still need, so a greedy argument leaves room for them.
func reservedTokenCount(collection *ArgumentCollection, slot int) int {
	total := 0

	for _, argument := range collection.arguments {
		if argument.index == nil || *argument.index <= slot {
			continue
		}

		if argument.field.Kind != PositionalOnly {
			continue
		}

		count, _, err := argument.SubTokenCount()
		if err != nil {
			continue
		}

		total += count
	}

	return total
}

func unknownOption(collection *ArgumentCollection, raw string) error {
	keyword, _, _ := strings.Cut(raw, "=")

	return &UnknownOptionError{
		Token:       Token{Keyword: keyword, Value: raw, Source: SourceCLI},
		Suggestions: suggestOptions(collection, keyword),
	}
}

// suggestOptions finds near-miss spellings for an unknown option.
func suggestOptions(collection *ArgumentCollection, keyword string) []string {
	normalized := normalizeName(keyword)

	var out []string

	for _, argument := range collection.arguments {
		for _, name := range argument.Names() {
			if editDistance(normalized, normalizeName(name)) <= 2 {
				out = append(out, name)
			}
		}
	}

	slices.Sort(out)

	return slices.Compact(out)
}

// editDistance is the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i

		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// applyEnvironment fills token-less arguments from their environment
// variables. The first variable that is set wins.
func applyEnvironment(collection *ArgumentCollection, lookup EnvLookupFunc) error {
	if lookup == nil {
		return nil
	}

	for _, argument := range collection.arguments {
		if !argument.parameter.parse() || argument.HasTokens() {
			continue
		}

		for _, name := range argument.parameter.EnvVar {
			raw, ok := lookup(name)
			if !ok {
				continue
			}

			for i, piece := range splitEnvValue(argument, raw) {
				token := Token{Keyword: name, Value: piece, Source: SourceEnv, Index: i}

				if err := argument.Append(token); err != nil {
					return err
				}
			}

			break
		}
	}

	return nil
}

// BindStruct writes converted root values into a struct.
func BindStruct(collection *ArgumentCollection, target reflect.Value) error {
	target = reflect.Indirect(target)

	if target.Kind() != reflect.Struct {
		return configError("bind target must be a struct, got %s", target.Type())
	}

	for _, root := range collection.Roots().arguments {
		value, ok := root.Value()
		if !ok {
			continue
		}

		field := target.FieldByIndex(root.field.Index)

		if value == nil {
			field.SetZero()

			continue
		}

		rv := reflect.ValueOf(value)
		if !rv.Type().AssignableTo(field.Type()) {
			return configError("cannot assign %s to field %s (%s)", rv.Type(), root.field.Name, field.Type())
		}

		field.Set(rv)
	}

	return nil
}

// BindFuncArgs assembles the call arguments for a function from converted
// root values. Slots without a value, including a leading context
// parameter, are zero-filled for the caller to override.
func BindFuncArgs(collection *ArgumentCollection, fnType reflect.Type) ([]reflect.Value, error) {
	args := make([]reflect.Value, fnType.NumIn())

	for _, root := range collection.Roots().arguments {
		position := root.field.Index[0]

		value, ok := root.Value()
		if !ok || value == nil {
			continue
		}

		rv := reflect.ValueOf(value)
		if !rv.Type().AssignableTo(fnType.In(position)) {
			return nil, configError("cannot pass %s as parameter %d (%s)", rv.Type(), position, fnType.In(position))
		}

		args[position] = rv
	}

	for i, arg := range args {
		if !arg.IsValid() {
			args[i] = reflect.Zero(fnType.In(i))
		}
	}

	return args, nil
}

// Call invokes fn with converted argument values, supplying ctx when the
// function's first parameter takes one. Functions may return nothing, one
// value, an error, or a value and an error.
func Call(ctx context.Context, fn any, collection *ArgumentCollection) (any, error) {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		return nil, configError("call target must be a function, got %T", fn)
	}

	fnType := fnValue.Type()

	args, err := BindFuncArgs(collection, fnType)
	if err != nil {
		return nil, err
	}

	if fnType.NumIn() > 0 && fnType.In(0) == contextType {
		if ctx == nil {
			ctx = context.Background()
		}

		args[0] = reflect.ValueOf(ctx)
	}

	var results []reflect.Value
	if fnType.IsVariadic() {
		results = fnValue.CallSlice(args)
	} else {
		results = fnValue.Call(args)
	}

	return interpretResults(results)
}

func interpretResults(results []reflect.Value) (any, error) {
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		if err, ok := resultError(results[0]); ok {
			return nil, err
		}

		return results[0].Interface(), nil
	case 2:
		value := results[0].Interface()

		err, ok := resultError(results[1])
		if !ok {
			return nil, configError("second return value must be an error")
		}

		return value, err
	default:
		return nil, configError("functions may return at most two values")
	}
}

func resultError(v reflect.Value) (error, bool) {
	if !v.Type().Implements(errType) {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, true
		}
	default:
	}

	err, _ := v.Interface().(error)

	return err, true
}
