// Package argot binds command-line arguments to Go values through
// reflection. Struct fields and function parameters become a tree of
// arguments; tokens from the CLI, environment variables, and configuration
// files feed the tree; converted values fill the struct or invoke the
// function.
package argot

import (
	"context"
	"io"
	"os"
	"reflect"

	"github.com/toejough/argot/internal/config"
	"github.com/toejough/argot/internal/core"
	"github.com/toejough/argot/internal/help"
)

// --- Re-exported types from core ---

// Argument is one bindable parameter in the flattened tree.
type Argument = core.Argument

// ArgumentCollection is the flattened pre-order argument tree.
type ArgumentCollection = core.ArgumentCollection

// ConfigSource feeds values from an external source into a collection.
type ConfigSource = core.ConfigSource

// ConverterFunc fully replaces builtin conversion for an argument.
type ConverterFunc = core.ConverterFunc

// EnvVarSplitFunc splits a raw environment variable value into tokens.
type EnvVarSplitFunc = core.EnvVarSplitFunc

// FieldInfo describes one bindable field or function parameter.
type FieldInfo = core.FieldInfo

// Kind classifies how a parameter binds: positionally, by keyword, or both.
type Kind = core.Kind

// NameTransformFunc converts a Go field name into a CLI spelling.
type NameTransformFunc = core.NameTransformFunc

// Parameter is user-supplied binding metadata for one field.
type Parameter = core.Parameter

// ParameterProvider supplies per-field Parameters from a struct.
type ParameterProvider = core.ParameterProvider

// Path is a filesystem path; iterable Path parameters split environment
// values on the platform path-list separator.
type Path = core.Path

// Source identifies where a token originated.
type Source = core.Source

// Token is one unconverted input value with provenance.
type Token = core.Token

// ValidatorFunc inspects a converted value; a non-nil error rejects it.
type ValidatorFunc = core.ValidatorFunc

// Re-export Kind constants.
const (
	PositionalOnly      = core.PositionalOnly
	PositionalOrKeyword = core.PositionalOrKeyword
	VarPositional       = core.VarPositional
	KeywordOnly         = core.KeywordOnly
	VarKeyword          = core.VarKeyword
)

// Re-export token source constants.
const (
	SourceCLI     = core.SourceCLI
	SourceEnv     = core.SourceEnv
	SourceConfig  = core.SourceConfig
	SourceDefault = core.SourceDefault
)

// Re-export error sentinels, for errors.Is checks.
var (
	ErrArgumentOrder   = core.ErrArgumentOrder
	ErrCoercion        = core.ErrCoercion
	ErrCombinedShort   = core.ErrCombinedShort
	ErrConfig          = core.ErrConfig
	ErrMissingArgument = core.ErrMissingArgument
	ErrMixedArgument   = core.ErrMixedArgument
	ErrRepeatArgument  = core.ErrRepeatArgument
	ErrUnknownOption   = core.ErrUnknownOption
	ErrUnusedTokens    = core.ErrUnusedTokens
	ErrValidation      = core.ErrValidation
)

// Re-export error types, for errors.As checks.
type (
	// ArgumentOrderError reports a positional token arriving after the
	// same parameter was already supplied by keyword.
	ArgumentOrderError = core.ArgumentOrderError

	// CoercionError reports a token that could not convert to its target.
	CoercionError = core.CoercionError

	// CombinedShortOptionError reports a short-option cluster that only
	// partially resolves to flags.
	CombinedShortOptionError = core.CombinedShortOptionError

	// MissingArgumentError reports a required argument with no value.
	MissingArgumentError = core.MissingArgumentError

	// MixedArgumentError reports keyed and unkeyed values on one argument.
	MixedArgumentError = core.MixedArgumentError

	// RepeatArgumentError reports a non-repeatable argument given twice.
	RepeatArgumentError = core.RepeatArgumentError

	// UnknownOptionError reports a keyword matching no argument.
	UnknownOptionError = core.UnknownOptionError

	// UnusedTokensError reports leftover tokens after parsing.
	UnusedTokensError = core.UnusedTokensError

	// ValidationError reports a validator rejecting a converted value.
	ValidationError = core.ValidationError
)

// Ptr returns a pointer to v, for the tri-state Parameter fields.
func Ptr[T any](v T) *T { return core.Ptr(v) }

// --- Options ---

// Option adjusts parsing behavior.
type Option func(*settings)

type settings struct {
	command     string
	description string
	transform   core.NameTransformFunc
	lookupEnv   core.EnvLookupFunc
	configs     []core.ConfigSource
	defaults    core.Parameter
	allowExtra  bool
}

func newSettings(opts []Option) settings {
	s := settings{
		command:   commandName(),
		lookupEnv: os.LookupEnv,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

func commandName() string {
	if len(os.Args) > 0 {
		return os.Args[0]
	}

	return "app"
}

// WithCommand sets the program name used on usage pages.
func WithCommand(name string) Option {
	return func(s *settings) { s.command = name }
}

// WithDescription sets the summary shown at the top of usage pages.
func WithDescription(text string) Option {
	return func(s *settings) { s.description = text }
}

// WithNameTransform replaces the default field-name-to-kebab-case
// spelling derivation.
func WithNameTransform(transform NameTransformFunc) Option {
	return func(s *settings) { s.transform = transform }
}

// WithEnvLookup replaces os.LookupEnv for the environment pass. Pass nil
// to disable environment variables entirely.
func WithEnvLookup(lookup func(name string) (string, bool)) Option {
	return func(s *settings) { s.lookupEnv = lookup }
}

// WithConfig appends configuration sources, tried in order after the CLI
// and environment passes.
func WithConfig(sources ...ConfigSource) Option {
	return func(s *settings) { s.configs = append(s.configs, sources...) }
}

// WithDefaults supplies Parameter metadata inherited by every argument,
// the way an annotation default would apply across a whole signature.
func WithDefaults(defaults Parameter) Option {
	return func(s *settings) { s.defaults = defaults }
}

// AllowExtraArgs keeps unconsumed trailing tokens from being an error.
func AllowExtraArgs() Option {
	return func(s *settings) { s.allowExtra = true }
}

// --- Config sources ---

// ConfigOptions control how a file feeds values.
type ConfigOptions = config.Options

// LoadFile reads one configuration file (.toml, .yaml, .yml, or .json).
// Missing files are skipped unless MustExist is set.
func LoadFile(path string, opts ConfigOptions) ConfigSource {
	return config.File(path, opts)
}

// LoadGlob reads every file matching a doublestar pattern, earliest match
// winning per argument.
func LoadGlob(pattern string, opts ConfigOptions) ConfigSource {
	return config.Glob(pattern, opts)
}

// --- Public API ---

// Parse fills target, a pointer to a struct, from argv. Current non-zero
// field values act as defaults. argv excludes the program name.
func Parse(target any, argv []string, opts ...Option) error {
	s := newSettings(opts)

	collection, value, err := structCollection(target, s)
	if err != nil {
		return err
	}

	if err := runParse(collection, argv, s); err != nil {
		return err
	}

	return core.BindStruct(collection, value)
}

// Call parses argv and invokes fn with the converted values. A leading
// context.Context parameter receives ctx. The function may return
// nothing, one value, an error, or a value and an error.
func Call(ctx context.Context, fn any, argv []string, opts ...Option) (any, error) {
	s := newSettings(opts)

	collection, err := funcCollection(fn, s)
	if err != nil {
		return nil, err
	}

	if err := runParse(collection, argv, s); err != nil {
		return nil, err
	}

	return core.Call(ctx, fn, collection)
}

// Collect builds the argument tree for a struct pointer or function
// without parsing anything, for inspection and custom drivers.
func Collect(target any, opts ...Option) (*ArgumentCollection, error) {
	s := newSettings(opts)

	if reflect.ValueOf(target).Kind() == reflect.Func {
		return funcCollection(target, s)
	}

	collection, _, err := structCollection(target, s)

	return collection, err
}

// Bind writes a converted collection's root values into target, a pointer
// to a struct. Most callers want Parse; Bind serves custom parse drivers.
func Bind(collection *ArgumentCollection, target any) error {
	return core.BindStruct(collection, reflect.ValueOf(target))
}

// Usage writes the help page for target, a struct pointer or function.
func Usage(w io.Writer, target any, opts ...Option) error {
	s := newSettings(opts)

	collection, err := Collect(target, opts...)
	if err != nil {
		return err
	}

	page := help.BuildPage(s.command, s.description, collection)

	return help.Render(w, page, help.DefaultStyles())
}

func runParse(collection *ArgumentCollection, argv []string, s settings) error {
	unused, err := core.ParseTokens(collection, argv, core.ParseOptions{
		Transform: s.transform,
		LookupEnv: s.lookupEnv,
		Configs:   s.configs,
	})
	if err != nil {
		return err
	}

	if len(unused) > 0 && !s.allowExtra {
		return &UnusedTokensError{Tokens: unused}
	}

	return nil
}

func structCollection(target any, s settings) (*ArgumentCollection, reflect.Value, error) {
	value := reflect.ValueOf(target)

	if value.Kind() != reflect.Pointer || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return nil, reflect.Value{}, core.ConfigErrorf("parse target must be a non-nil struct pointer, got %T", target)
	}

	elem := value.Elem()

	collection, err := core.NewCollectionForType(elem.Type(), elem, s.defaults)
	if err != nil {
		return nil, reflect.Value{}, err
	}

	return collection, elem, nil
}

func funcCollection(fn any, s settings) (*ArgumentCollection, error) {
	t := reflect.TypeOf(fn)

	if t == nil || t.Kind() != reflect.Func {
		return nil, core.ConfigErrorf("call target must be a function, got %T", fn)
	}

	return core.NewCollectionForType(t, reflect.Value{}, s.defaults)
}
