package core

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Kind classifies how a field receives its value.
type Kind int8

// Exported constants.
const (
	// PositionalOnly fields bind by position and have no keyword spelling.
	PositionalOnly Kind = iota

	// PositionalOrKeyword fields bind by position or by keyword.
	PositionalOrKeyword

	// VarPositional fields absorb all remaining positional tokens.
	VarPositional

	// KeywordOnly fields bind by keyword spelling only.
	KeywordOnly

	// VarKeyword fields absorb keywords no other field claims.
	VarKeyword
)

func (k Kind) String() string {
	switch k {
	case PositionalOnly:
		return "positional-only"
	case PositionalOrKeyword:
		return "positional-or-keyword"
	case VarPositional:
		return "var-positional"
	case KeywordOnly:
		return "keyword-only"
	case VarKeyword:
		return "var-keyword"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

// FieldInfo describes one bindable slot of a target: a struct field or a
// function parameter.
type FieldInfo struct {
	// Name is the Go field name, or a display name for unnamed function
	// parameters.
	Name string

	Kind Kind

	Type reflect.Type

	// Index locates the slot: a struct field index chain, or a one-element
	// parameter position for functions.
	Index []int

	// Parameter is the tag- and provider-derived configuration.
	Parameter Parameter

	// Default is the seed or zero default, valid when HasDefault.
	Default reflect.Value

	HasDefault bool

	// DefaultText is an unconverted default from the tag, coerced on
	// demand.
	DefaultText *string

	// Help is documentation derived from the field's doc comment.
	Help string
}

// Required reports whether the field must receive a value, absent an
// explicit override.
func (f FieldInfo) Required() bool {
	if f.Kind == VarPositional || f.Kind == VarKeyword {
		return false
	}

	return !f.HasDefault && f.DefaultText == nil
}

// ParameterProvider supplies configuration that the tag grammar cannot
// express. Keys are Go field names; entries combine over (and win against)
// the tag-derived configuration.
type ParameterProvider interface {
	Parameters() map[string]Parameter
}

// unexported variables.
var (
	//nolint:gochecknoglobals // reflect type for provider detection
	parameterProviderType = reflect.TypeFor[ParameterProvider]()
	//nolint:gochecknoglobals // reflect type for context-parameter skipping
	contextType = reflect.TypeFor[context.Context]()

	fieldCacheLock sync.Mutex //nolint:gochecknoglobals // introspection cache
	fieldCache     = map[reflect.Type][]FieldInfo{} //nolint:gochecknoglobals // introspection cache
)

// ClearCache empties the introspection cache. Mostly useful in tests that
// redefine types or measure extraction work.
func ClearCache() {
	fieldCacheLock.Lock()
	defer fieldCacheLock.Unlock()

	clear(fieldCache)

	clearDocCache()
}

// fieldsOf extracts the bindable slots of a struct or function type.
// Results are memoized per type; callers receive a copy they may mutate.
func fieldsOf(t reflect.Type) ([]FieldInfo, error) {
	fieldCacheLock.Lock()
	if cached, ok := fieldCache[t]; ok {
		fieldCacheLock.Unlock()

		return slices.Clone(cached), nil
	}
	fieldCacheLock.Unlock()

	var (
		fields []FieldInfo
		err    error
	)

	switch t.Kind() {
	case reflect.Struct:
		fields, err = structFields(t, nil)
	case reflect.Func:
		fields, err = funcFields(t)
	case reflect.Map:
		// Dict-like targets have no fixed fields; the owning argument
		// accepts arbitrary keys instead.
		err = checkMapKey(t)
	default:
		err = configError("cannot extract fields from %s", t)
	}

	if err != nil {
		return nil, err
	}

	fieldCacheLock.Lock()
	fieldCache[t] = fields
	fieldCacheLock.Unlock()

	return slices.Clone(fields), nil
}

func structFields(t reflect.Type, indexPrefix []int) ([]FieldInfo, error) {
	docs := fieldDocs(t)

	var out []FieldInfo

	skipped := map[string]bool{}

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		info, err := parseFieldTag(field)
		if err != nil {
			return nil, err
		}

		if info.Skip {
			skipped[field.Name] = true

			continue
		}

		index := append(slices.Clone(indexPrefix), i)

		if flattensInline(field) {
			embedded, err := structFields(field.Type, index)
			if err != nil {
				return nil, err
			}

			out = append(out, embedded...)
			skipped[field.Name] = true

			continue
		}

		fi := FieldInfo{
			Name:        field.Name,
			Kind:        info.Kind,
			Type:        field.Type,
			Index:       index,
			Parameter:   info.Parameter,
			DefaultText: info.Default,
			Help:        docs[field.Name],
		}

		if info.Optional {
			fi.Default = reflect.Zero(field.Type)
			fi.HasDefault = true
		}

		if err := checkFieldShape(fi); err != nil {
			return nil, err
		}

		out = append(out, fi)
	}

	// This level's provider entries apply over everything visible here,
	// promoted embedded fields included, and win against deeper levels.
	provided := providerParameters(t)

	for i := range out {
		if p, ok := provided[out[i].Name]; ok {
			out[i].Parameter = CombineParameters(out[i].Parameter, p)
			delete(provided, out[i].Name)
		}
	}

	for name := range provided {
		if !skipped[name] {
			return nil, configError("%s has no field %q named by Parameters()", t, name)
		}
	}

	return out, nil
}

// flattensInline reports whether an embedded struct's fields promote to the
// embedding level. A tagged embed stays a named slot of its own.
func flattensInline(field reflect.StructField) bool {
	return field.Anonymous &&
		field.Type.Kind() == reflect.Struct &&
		field.Tag.Get(tagName) == "" &&
		!hasCustomConverter(field.Type)
}

func checkFieldShape(fi FieldInfo) error {
	switch fi.Kind {
	case VarPositional:
		if fi.Type.Kind() != reflect.Slice {
			return configError("rest field %s must be a slice, got %s", fi.Name, fi.Type)
		}
	case VarKeyword:
		if fi.Type.Kind() != reflect.Map {
			return configError("extra field %s must be a map, got %s", fi.Name, fi.Type)
		}
	case PositionalOnly, PositionalOrKeyword, KeywordOnly:
	}

	if fi.Type.Kind() == reflect.Map {
		return checkMapKey(fi.Type)
	}

	return nil
}

// funcFields derives slots from a function signature. Struct parameters
// flatten their fields to the top level; scalars bind positionally under
// display names; a trailing variadic absorbs the rest. A leading
// context.Context is the caller's to supply and yields no slot.
func funcFields(t reflect.Type) ([]FieldInfo, error) {
	var out []FieldInfo

	for i := range t.NumIn() {
		paramType := t.In(i)

		if i == 0 && paramType == contextType {
			continue
		}

		switch {
		case t.IsVariadic() && i == t.NumIn()-1:
			out = append(out, FieldInfo{
				Name:  "ARGS",
				Kind:  VarPositional,
				Type:  paramType,
				Index: []int{i},
			})
		case isStructLike(paramType):
			out = append(out, FieldInfo{
				Name:  paramType.Name(),
				Kind:  PositionalOrKeyword,
				Type:  paramType,
				Index: []int{i},
				Parameter: Parameter{
					// Flatten: sub-fields surface under their own names.
					Name: []string{"*"},
				},
			})
		default:
			out = append(out, FieldInfo{
				Name:  fmt.Sprintf("ARG%d", len(out)+1),
				Kind:  PositionalOnly,
				Type:  paramType,
				Index: []int{i},
			})
		}
	}

	return out, nil
}

func providerParameters(t reflect.Type) map[string]Parameter {
	if !reflect.PointerTo(t).Implements(parameterProviderType) {
		return nil
	}

	provider, ok := reflect.New(t).Interface().(ParameterProvider)
	if !ok {
		return nil
	}

	// Copy so per-field deletion during the walk cannot touch a map the
	// provider might share.
	out := make(map[string]Parameter)
	for name, p := range provider.Parameters() {
		out[name] = p
	}

	return out
}

func applySeedDefaults(fields []FieldInfo, seed reflect.Value) []FieldInfo {
	if !seed.IsValid() || seed.Kind() != reflect.Struct {
		return fields
	}

	for i := range fields {
		if fields[i].Kind == VarPositional || fields[i].Kind == VarKeyword {
			continue
		}

		value := seed.FieldByIndex(fields[i].Index)
		if value.IsZero() {
			continue
		}

		fields[i].Default = value
		fields[i].HasDefault = true
	}

	return fields
}
