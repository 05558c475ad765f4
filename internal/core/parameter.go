package core

import (
	"reflect"
	"slices"
)

// ConverterFunc fully replaces builtin conversion for an argument. It
// receives the resolved target type and every token accumulated for the
// argument.
type ConverterFunc func(target reflect.Type, tokens []Token) (any, error)

// ValidatorFunc inspects a converted value. A non-nil error rejects it.
type ValidatorFunc func(target reflect.Type, value any) error

// EnvVarSplitFunc splits a raw environment variable value into tokens.
type EnvVarSplitFunc func(target reflect.Type, raw string, delimiter string) []string

// NameTransformFunc converts a Go field name into a CLI spelling.
type NameTransformFunc func(string) string

// Parameter is the per-argument configuration, merged from the struct tag,
// an optional Parameters() provider, and inherited defaults. Nil-valued
// fields mean "unset" and fall through during combination; see Combine.
type Parameter struct {
	// Name lists explicit CLI spellings. A name starting with "-" is
	// absolute and ignores any inherited dotted prefix; a trailing "*"
	// drops this component from descendant names.
	Name []string

	// Alias lists additional spellings appended after Name.
	Alias []string

	// Short is a single-character spelling registered as "-x".
	Short string

	// Help overrides derived field documentation.
	Help string

	// Group names the help groups this argument belongs to.
	Group []string

	// Show controls help-page visibility.
	Show *bool

	// ShowDefault controls rendering of the default value in help.
	ShowDefault *bool

	// ShowEnvVar controls rendering of env var names in help.
	ShowEnvVar *bool

	// ShowChoices controls rendering of choice lists in help.
	ShowChoices *bool

	// Required overrides the signature-derived required state.
	Required *bool

	// Parse disables all token parsing for this argument when false; the
	// field keeps its default.
	Parse *bool

	// Converter replaces builtin conversion at this node.
	Converter ConverterFunc

	// Validators run in order after successful conversion.
	Validators []ValidatorFunc

	// Negative gives explicit negative spellings. Entries starting with
	// "-" are absolute; bare entries replace the final name component.
	// An empty (non-nil) slice disables negation.
	Negative []string

	// NegativeBool prefixes derive boolean negatives. Defaults to "no-".
	NegativeBool []string

	// NegativeIterable prefixes derive container negatives. Defaults to
	// "empty-".
	NegativeIterable []string

	// NegativeNone prefixes derive nil negatives for pointer hints.
	// Defaults to none.
	NegativeNone []string

	// EnvVar lists fallback environment variables, first set wins.
	EnvVar []string

	// EnvVarSplit splits env values into tokens; nil uses EnvVarSplit.
	EnvVarSplit EnvVarSplitFunc

	// AcceptsKeys forces (true) or forbids (false) treating the argument
	// as dict-like with addressable sub-keys.
	AcceptsKeys *bool

	// ConsumeMultiple lets a keyword greedily consume every following
	// non-option token for consume-all arguments.
	ConsumeMultiple *bool

	// AllowLeadingHyphen accepts values that look like options.
	AllowLeadingHyphen *bool

	// JSONDict controls the JSON object shortcut: nil auto-detects,
	// otherwise forces the behavior.
	JSONDict *bool

	// JSONList controls the JSON array shortcut for consume-all
	// arguments: nil auto-detects, otherwise forces the behavior.
	JSONList *bool

	// NTokens overrides the per-element token count. -1 means
	// consume-all.
	NTokens *int

	// Count turns an int field into an occurrence counter.
	Count bool

	// NameTransform converts field names to CLI spellings; nil uses the
	// kebab-case default. Also used for enum name comparison.
	NameTransform NameTransformFunc

	// Types lists union member types tried left-to-right for interface
	// fields.
	Types []reflect.Type

	// Choices restricts the value to these literals, matched by coercing
	// the token into each choice's type and comparing for equality.
	Choices []any

	// ChoiceNames maps normalized spellings to values, for enum-style
	// fields.
	ChoiceNames map[string]any

	// Discriminator names the sub-field used to distinguish overlapping
	// union branches.
	Discriminator string

	// Set deduplicates converted slice elements, keeping first
	// occurrences.
	Set bool

	// Delimiter splits single tokens into elements (env values, config).
	Delimiter string
}

// unexported variables.
var (
	defaultNegativeBool     = []string{"no-"}
	defaultNegativeIterable = []string{"empty-"}
)

// Ptr returns a pointer to v, for filling tri-state Parameter fields.
func Ptr[T any](v T) *T {
	return &v
}

// CombineParameters merges parameters left to right: later parameters'
// explicitly-set fields override earlier ones, unset fields fall through.
func CombineParameters(params ...Parameter) Parameter {
	var out Parameter

	for _, p := range params {
		if p.Name != nil {
			out.Name = p.Name
		}

		if p.Alias != nil {
			out.Alias = p.Alias
		}

		if p.Short != "" {
			out.Short = p.Short
		}

		if p.Help != "" {
			out.Help = p.Help
		}

		if p.Group != nil {
			out.Group = p.Group
		}

		if p.Show != nil {
			out.Show = p.Show
		}

		if p.ShowDefault != nil {
			out.ShowDefault = p.ShowDefault
		}

		if p.ShowEnvVar != nil {
			out.ShowEnvVar = p.ShowEnvVar
		}

		if p.ShowChoices != nil {
			out.ShowChoices = p.ShowChoices
		}

		if p.Required != nil {
			out.Required = p.Required
		}

		if p.Parse != nil {
			out.Parse = p.Parse
		}

		if p.Converter != nil {
			out.Converter = p.Converter
		}

		if p.Validators != nil {
			out.Validators = p.Validators
		}

		if p.Negative != nil {
			out.Negative = p.Negative
		}

		if p.NegativeBool != nil {
			out.NegativeBool = p.NegativeBool
		}

		if p.NegativeIterable != nil {
			out.NegativeIterable = p.NegativeIterable
		}

		if p.NegativeNone != nil {
			out.NegativeNone = p.NegativeNone
		}

		if p.EnvVar != nil {
			out.EnvVar = p.EnvVar
		}

		if p.EnvVarSplit != nil {
			out.EnvVarSplit = p.EnvVarSplit
		}

		if p.AcceptsKeys != nil {
			out.AcceptsKeys = p.AcceptsKeys
		}

		if p.ConsumeMultiple != nil {
			out.ConsumeMultiple = p.ConsumeMultiple
		}

		if p.AllowLeadingHyphen != nil {
			out.AllowLeadingHyphen = p.AllowLeadingHyphen
		}

		if p.JSONDict != nil {
			out.JSONDict = p.JSONDict
		}

		if p.JSONList != nil {
			out.JSONList = p.JSONList
		}

		if p.NTokens != nil {
			out.NTokens = p.NTokens
		}

		if p.Count {
			out.Count = true
		}

		if p.NameTransform != nil {
			out.NameTransform = p.NameTransform
		}

		if p.Types != nil {
			out.Types = p.Types
		}

		if p.Choices != nil {
			out.Choices = p.Choices
		}

		if p.ChoiceNames != nil {
			out.ChoiceNames = p.ChoiceNames
		}

		if p.Discriminator != "" {
			out.Discriminator = p.Discriminator
		}

		if p.Set {
			out.Set = true
		}

		if p.Delimiter != "" {
			out.Delimiter = p.Delimiter
		}
	}

	return out
}

// blockSubkeyInheritance strips the fields a child argument must not
// inherit from its parent: names, converters, validators, key acceptance,
// greedy consumption, and env vars all describe the parent slot only.
func blockSubkeyInheritance(p Parameter) Parameter {
	p.Name = nil
	p.Alias = nil
	p.Short = ""
	p.Converter = nil
	p.Validators = nil
	p.AcceptsKeys = nil
	p.ConsumeMultiple = nil
	p.EnvVar = nil

	return p
}

// parse reports whether this argument participates in parsing.
func (p Parameter) parse() bool {
	return p.Parse == nil || *p.Parse
}

func (p Parameter) show() bool {
	if p.Show != nil {
		return *p.Show
	}

	return p.parse()
}

func (p Parameter) consumeMultiple() bool {
	return p.ConsumeMultiple != nil && *p.ConsumeMultiple
}

func (p Parameter) allowLeadingHyphen() bool {
	return p.AllowLeadingHyphen != nil && *p.AllowLeadingHyphen
}

func (p Parameter) nameTransform() NameTransformFunc {
	if p.NameTransform != nil {
		return p.NameTransform
	}

	return defaultNameTransform
}

func (p Parameter) negativeBool() []string {
	if p.NegativeBool != nil {
		return p.NegativeBool
	}

	return defaultNegativeBool
}

func (p Parameter) negativeIterable() []string {
	if p.NegativeIterable != nil {
		return p.NegativeIterable
	}

	return defaultNegativeIterable
}

// GetNegatives derives the negative spellings of this parameter for the
// given type. Only long "--" names grow negatives; dotted prefixes are
// preserved so "--config.flag" negates as "--config.no-flag".
func (p Parameter) GetNegatives(t reflect.Type) []string {
	if t == nil {
		return nil
	}

	if members := unionMembers(t, p.Types); members != nil {
		var out []string
		for _, member := range members {
			out = append(out, p.GetNegatives(member)...)
		}

		return out
	}

	prefixes, eligible := p.negativePrefixesFor(t)
	if !eligible {
		return nil
	}

	out, userNegatives := []string{}, []string{}

	for _, negative := range p.Negative {
		if negativeIsAbsolute(negative) {
			out = append(out, negative)
		} else {
			userNegatives = append(userNegatives, negative)
		}
	}

	if p.Negative != nil && len(userNegatives) == 0 {
		return out
	}

	for _, name := range p.Name {
		if !nameIsLong(name) {
			continue
		}

		components := splitKeys(name[len(longPrefix):])
		prefix := ""

		if len(components) > 1 {
			prefix = joinKeys(components[:len(components)-1]) + keyDelimiter
		}

		last := components[len(components)-1]

		if p.Negative == nil {
			for _, negativePrefix := range prefixes {
				out = append(out, longPrefix+prefix+negativePrefix+last)
			}
		} else {
			for _, negative := range userNegatives {
				out = append(out, longPrefix+prefix+negative)
			}
		}
	}

	return out
}

// negativePrefixesFor returns the prefix set for a type and whether the
// type supports negation at all.
func (p Parameter) negativePrefixesFor(t reflect.Type) ([]string, bool) {
	switch {
	case isBoolLike(t):
		return p.negativeBool(), true
	case t.Kind() == reflect.Pointer:
		// A pointer behaves like a union of its element type and nil, so
		// the element's prefixes and the nil prefixes both apply.
		inner, _ := p.negativePrefixesFor(t.Elem())

		return slices.Concat(inner, p.NegativeNone), true
	case isIterable(t), t.Kind() == reflect.Map:
		return p.negativeIterable(), true
	default:
		return nil, false
	}
}

func negativeIsAbsolute(name string) bool {
	return len(name) > 0 && name[0] == '-'
}

func nameIsLong(name string) bool {
	return len(name) > len(longPrefix) && name[:len(longPrefix)] == longPrefix
}
